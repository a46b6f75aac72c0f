package websearch

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/bfforex/EvolveUI/pkg/types"
)

// Provider ids
const (
	ProviderDuckDuckGo = "duckduckgo"
	ProviderSearXNG    = "searxng"
	ProviderGoogle     = "google"
	ProviderBing       = "bing"
)

// Defaults applied by ProviderConfig.applyDefaults
const (
	DefaultMinRequestInterval = 1 * time.Second
	DefaultProviderTimeout    = 10 * time.Second
)

// ProviderConfig describes one registered provider. Identity is ID; the
// struct is copied on registry construction so callers can reuse slices.
type ProviderConfig struct {
	ID          string `mapstructure:"id"`
	DisplayName string `mapstructure:"display_name"`
	Enabled     bool   `mapstructure:"enabled"`

	// Credentials; which fields apply depends on the provider kind.
	APIKey      string `mapstructure:"api_key"`
	EngineID    string `mapstructure:"engine_id"`    // Google programmable search engine id (cx)
	InstanceURL string `mapstructure:"instance_url"` // SearXNG instance base URL

	// Priority orders fallback; lower values are tried first.
	Priority           int           `mapstructure:"priority"`
	MinRequestInterval time.Duration `mapstructure:"min_request_interval"`
	Timeout            time.Duration `mapstructure:"timeout"`
}

func (c *ProviderConfig) applyDefaults() {
	if c.DisplayName == "" {
		c.DisplayName = c.ID
	}
	if c.MinRequestInterval <= 0 {
		c.MinRequestInterval = DefaultMinRequestInterval
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultProviderTimeout
	}
}

// RequiresCredential reports whether the provider kind needs an API key or
// instance URL before it can be used.
func (c *ProviderConfig) RequiresCredential() bool {
	switch c.ID {
	case ProviderGoogle, ProviderBing:
		return true
	case ProviderSearXNG:
		return true // instance URL
	default:
		return false
	}
}

// configured reports whether the credential requirement is satisfied.
func (c *ProviderConfig) configured() bool {
	switch c.ID {
	case ProviderGoogle:
		return c.APIKey != "" && c.EngineID != ""
	case ProviderBing:
		return c.APIKey != ""
	case ProviderSearXNG:
		return c.InstanceURL != ""
	default:
		return true
	}
}

// Provider is the uniform interface over one external search backend.
type Provider interface {
	// ID returns the stable provider identifier.
	ID() string

	// Search returns up to limit results for the query. Failures are
	// reported as *ProviderError.
	Search(ctx context.Context, query string, limit int) ([]types.SearchResult, error)

	// Configured reports whether the provider has the credentials it needs.
	Configured() bool
}

// Registry holds the constructed providers for one configuration snapshot.
// A registry is immutable after construction; reconfiguration builds a new
// one and swaps it atomically at the engine level.
type Registry struct {
	configs   map[string]ProviderConfig
	providers map[string]Provider
	order     []string // provider ids by ascending priority
}

// NewRegistry validates the configs and constructs one adapter per entry.
// An enabled provider with missing credentials is a configuration error,
// surfaced immediately rather than at search time.
func NewRegistry(configs []ProviderConfig) (*Registry, error) {
	r := &Registry{
		configs:   make(map[string]ProviderConfig, len(configs)),
		providers: make(map[string]Provider, len(configs)),
	}

	httpClient := &http.Client{} // timeouts come from per-call contexts

	for _, cfg := range configs {
		cfg.applyDefaults()

		if _, dup := r.configs[cfg.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateProvider, cfg.ID)
		}

		if cfg.Enabled && !cfg.configured() {
			return nil, fmt.Errorf("%w: %s", ErrMissingCredential, cfg.ID)
		}

		var p Provider
		switch cfg.ID {
		case ProviderDuckDuckGo:
			p = newDuckDuckGo(cfg, httpClient)
		case ProviderSearXNG:
			p = newSearXNG(cfg, httpClient)
		case ProviderGoogle:
			p = newGoogle(cfg, httpClient)
		case ProviderBing:
			p = newBing(cfg, httpClient)
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.ID)
		}

		r.configs[cfg.ID] = cfg
		r.providers[cfg.ID] = p
		r.order = append(r.order, cfg.ID)
	}

	sort.SliceStable(r.order, func(i, j int) bool {
		return r.configs[r.order[i]].Priority < r.configs[r.order[j]].Priority
	})

	return r, nil
}

// DefaultConfigs returns the standard provider set with only the
// credential-free engine enabled, mirroring a fresh installation.
func DefaultConfigs() []ProviderConfig {
	return []ProviderConfig{
		{ID: ProviderDuckDuckGo, DisplayName: "DuckDuckGo", Enabled: true, Priority: 1},
		{ID: ProviderSearXNG, DisplayName: "SearXNG", Priority: 2},
		{ID: ProviderGoogle, DisplayName: "Google Custom Search", Priority: 3},
		{ID: ProviderBing, DisplayName: "Bing Web Search", Priority: 4},
	}
}

// Enabled returns the enabled providers in priority order. If ids is
// non-empty, only those providers are considered.
func (r *Registry) Enabled(ids []string) []Provider {
	allow := make(map[string]bool, len(ids))
	for _, id := range ids {
		allow[id] = true
	}

	out := make([]Provider, 0, len(r.order))
	for _, id := range r.order {
		cfg := r.configs[id]
		if !cfg.Enabled {
			continue
		}
		if len(ids) > 0 && !allow[id] {
			continue
		}
		out = append(out, r.providers[id])
	}
	return out
}

// Config returns the configuration for a provider id.
func (r *Registry) Config(id string) (ProviderConfig, bool) {
	cfg, ok := r.configs[id]
	return cfg, ok
}

// Configs returns all configurations in priority order.
func (r *Registry) Configs() []ProviderConfig {
	out := make([]ProviderConfig, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.configs[id])
	}
	return out
}
