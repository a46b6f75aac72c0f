package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bfforex/EvolveUI/pkg/types"
)

// searXNG queries a self-hosted SearXNG aggregator instance over its JSON
// search API. The instance URL is the only required configuration.
type searXNG struct {
	cfg        ProviderConfig
	httpClient *http.Client
}

func newSearXNG(cfg ProviderConfig, client *http.Client) *searXNG {
	return &searXNG{cfg: cfg, httpClient: client}
}

func (s *searXNG) ID() string { return ProviderSearXNG }

func (s *searXNG) Configured() bool { return s.cfg.InstanceURL != "" }

type searxngResult struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Content       string `json:"content"`
	PublishedDate string `json:"publishedDate"`
}

type searxngResponse struct {
	Results []searxngResult `json:"results"`
}

func (s *searXNG) Search(ctx context.Context, query string, limit int) ([]types.SearchResult, error) {
	if !s.Configured() {
		return nil, newProviderError(s.ID(), KindNotConfigured, fmt.Errorf("instance URL not set"))
	}

	endpoint := fmt.Sprintf("%s/search?q=%s&format=json",
		strings.TrimRight(s.cfg.InstanceURL, "/"), url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, newProviderError(s.ID(), KindUpstream, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, classifyError(s.ID(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(s.ID(), resp.StatusCode)
	}

	var body searxngResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, newProviderError(s.ID(), KindUpstream, fmt.Errorf("decode response: %w", err))
	}

	results := make([]types.SearchResult, 0, limit)
	for _, r := range body.Results {
		if len(results) >= limit {
			break
		}
		sr := types.SearchResult{
			Title:      r.Title,
			URL:        r.URL,
			Snippet:    r.Content,
			ProviderID: s.ID(),
		}
		if r.PublishedDate != "" {
			if ts, err := time.Parse(time.RFC3339, r.PublishedDate); err == nil {
				sr.PublishedAt = &ts
			}
		}
		results = append(results, sr)
	}

	return results, nil
}
