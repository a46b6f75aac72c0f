package websearch

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bfforex/EvolveUI/internal/metrics"
	"github.com/bfforex/EvolveUI/internal/rescache"
	"github.com/bfforex/EvolveUI/pkg/types"
)

// Orchestrator defaults
const (
	DefaultPerProviderLimit = 5
	DefaultOverallTimeout   = 15 * time.Second
)

// SearchOptions tunes one SearchAll invocation.
type SearchOptions struct {
	// ProviderIDs restricts the fan-out; empty means all enabled providers.
	ProviderIDs      []string
	PerProviderLimit int
	OverallTimeout   time.Duration
	// SkipCache bypasses the result cache for this request.
	SkipCache bool
}

func (o *SearchOptions) applyDefaults() {
	if o.PerProviderLimit <= 0 {
		o.PerProviderLimit = DefaultPerProviderLimit
	}
	if o.OverallTimeout <= 0 {
		o.OverallTimeout = DefaultOverallTimeout
	}
}

// Orchestrator fans a query out to the enabled providers, each gated by the
// limiter and wrapped in its own timeout, and merges the results in
// provider priority order. Completion order never affects the merge.
type Orchestrator struct {
	registry *Registry
	limiter  *Limiter
	cache    rescache.Cache // Optional
	cacheTTL time.Duration
	log      *zap.Logger
}

// NewOrchestrator creates an Orchestrator. cache may be nil to disable
// search result caching.
func NewOrchestrator(registry *Registry, limiter *Limiter, cache rescache.Cache, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		registry: registry,
		limiter:  limiter,
		cache:    cache,
		cacheTTL: rescache.DefaultSearchTTL,
		log:      log,
	}
}

// Registry returns the configuration snapshot this orchestrator serves.
func (o *Orchestrator) Registry() *Registry {
	return o.registry
}

// Limiter returns the shared rate limiter, used for status reporting.
func (o *Orchestrator) Limiter() *Limiter {
	return o.limiter
}

// Cache returns the result cache, shared across reconfigurations.
func (o *Orchestrator) Cache() rescache.Cache {
	return o.cache
}

// CacheTTL returns the search result cache TTL.
func (o *Orchestrator) CacheTTL() time.Duration {
	return o.cacheTTL
}

// SetCacheTTL overrides the search result cache TTL. Non-positive values
// are ignored.
func (o *Orchestrator) SetCacheTTL(ttl time.Duration) {
	if ttl > 0 {
		o.cacheTTL = ttl
	}
}

// providerOutcome collects one provider's contribution, indexed by its
// position in the priority order so merging is deterministic.
type providerOutcome struct {
	results []types.SearchResult
	err     *ProviderError
}

// SearchAll queries the enabled providers concurrently. It returns the
// merged, deduplicated results plus every provider error collected along
// the way. Total provider failure yields an empty slice and the errors;
// it is never a hard failure.
func (o *Orchestrator) SearchAll(ctx context.Context, query string, opts SearchOptions) ([]types.SearchResult, []*ProviderError) {
	opts.applyDefaults()

	providers := o.registry.Enabled(opts.ProviderIDs)
	if len(providers) == 0 {
		return nil, nil
	}

	cacheKey := "search:" + types.NormalizeQuery(query)
	if o.cache != nil && !opts.SkipCache {
		var cached []types.SearchResult
		if found, err := o.cache.Get(ctx, cacheKey, &cached); err == nil && found {
			metrics.CacheLookups.WithLabelValues("search", "hit").Inc()
			return cached, nil
		}
		metrics.CacheLookups.WithLabelValues("search", "miss").Inc()
	}

	ctx, cancel := context.WithTimeout(ctx, opts.OverallTimeout)
	defer cancel()

	// Each goroutine writes only its own slot, keyed by priority position.
	outcomes := make([]providerOutcome, len(providers))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range providers {
		g.Go(func() error {
			outcomes[i] = o.callProvider(gctx, p, query, opts.PerProviderLimit)
			return nil // Provider failures are collected, never propagated.
		})
	}
	_ = g.Wait()

	// Merge post-hoc in priority order so concurrent completion order
	// cannot affect the ranking contract.
	merged := make([]types.SearchResult, 0, len(providers)*opts.PerProviderLimit)
	var errs []*ProviderError
	seen := make(map[string]bool)

	for _, outcome := range outcomes {
		if outcome.err != nil {
			errs = append(errs, outcome.err)
			continue
		}
		for _, r := range outcome.results {
			key := types.NormalizeURL(r.URL)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, r)
		}
	}

	if o.cache != nil && !opts.SkipCache && len(merged) > 0 {
		if err := o.cache.Set(ctx, cacheKey, merged, o.cacheTTL); err != nil {
			o.log.Warn("search cache population failed", zap.Error(err))
		}
	}

	return merged, errs
}

// callProvider runs one gated, timeout-wrapped provider call and updates
// the circuit state from its outcome.
func (o *Orchestrator) callProvider(ctx context.Context, p Provider, query string, limit int) providerOutcome {
	cfg, _ := o.registry.Config(p.ID())

	if !o.limiter.TryAcquire(p.ID(), cfg.MinRequestInterval) {
		metrics.ProviderSearches.WithLabelValues(p.ID(), "rate_limited").Inc()
		return providerOutcome{err: newProviderError(p.ID(), KindRateLimited, nil)}
	}

	callCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	results, err := p.Search(callCtx, query, limit)
	if err != nil {
		pe := classifyError(p.ID(), err)
		// Permanent configuration problems are not upstream failures and
		// must not trip the circuit.
		if pe.Transient() {
			o.limiter.RecordFailure(p.ID(), pe)
		}
		metrics.ProviderSearches.WithLabelValues(p.ID(), string(pe.Kind)).Inc()
		o.log.Warn("provider search failed",
			zap.String("provider", p.ID()),
			zap.String("kind", string(pe.Kind)),
			zap.Error(pe.Err))
		return providerOutcome{err: pe}
	}

	o.limiter.RecordSuccess(p.ID())
	metrics.ProviderSearches.WithLabelValues(p.ID(), "success").Inc()
	o.log.Debug("provider search succeeded",
		zap.String("provider", p.ID()),
		zap.Int("results", len(results)))

	return providerOutcome{results: results}
}
