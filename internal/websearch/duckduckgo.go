package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bfforex/EvolveUI/pkg/types"
)

const defaultDuckDuckGoURL = "https://api.duckduckgo.com"

// duckDuckGo queries the DuckDuckGo instant-answer API. It needs no
// credential and serves as the default provider.
type duckDuckGo struct {
	cfg        ProviderConfig
	httpClient *http.Client
	baseURL    string
}

func newDuckDuckGo(cfg ProviderConfig, client *http.Client) *duckDuckGo {
	return &duckDuckGo{cfg: cfg, httpClient: client, baseURL: defaultDuckDuckGoURL}
}

func (d *duckDuckGo) ID() string { return ProviderDuckDuckGo }

func (d *duckDuckGo) Configured() bool { return true }

type ddgTopic struct {
	FirstURL string     `json:"FirstURL"`
	Text     string     `json:"Text"`
	Topics   []ddgTopic `json:"Topics"` // Nested topic groups
}

type ddgResponse struct {
	Heading       string     `json:"Heading"`
	AbstractText  string     `json:"AbstractText"`
	AbstractURL   string     `json:"AbstractURL"`
	RelatedTopics []ddgTopic `json:"RelatedTopics"`
}

func (d *duckDuckGo) Search(ctx context.Context, query string, limit int) ([]types.SearchResult, error) {
	endpoint := fmt.Sprintf("%s/?q=%s&format=json&no_html=1&skip_disambig=1",
		d.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, newProviderError(d.ID(), KindUpstream, err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, classifyError(d.ID(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(d.ID(), resp.StatusCode)
	}

	var body ddgResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, newProviderError(d.ID(), KindUpstream, fmt.Errorf("decode response: %w", err))
	}

	results := make([]types.SearchResult, 0, limit)
	if body.AbstractURL != "" && body.AbstractText != "" {
		results = append(results, types.SearchResult{
			Title:      body.Heading,
			URL:        body.AbstractURL,
			Snippet:    body.AbstractText,
			ProviderID: d.ID(),
		})
	}

	results = appendTopics(results, body.RelatedTopics, limit, d.ID())
	return results, nil
}

// appendTopics flattens nested topic groups breadth-preserving until limit.
func appendTopics(results []types.SearchResult, topics []ddgTopic, limit int, providerID string) []types.SearchResult {
	for _, t := range topics {
		if len(results) >= limit {
			break
		}
		if t.FirstURL != "" && t.Text != "" {
			results = append(results, types.SearchResult{
				Title:      t.Text,
				URL:        t.FirstURL,
				Snippet:    t.Text,
				ProviderID: providerID,
			})
			continue
		}
		if len(t.Topics) > 0 {
			results = appendTopics(results, t.Topics, limit, providerID)
		}
	}
	return results
}

// statusError maps an HTTP status to a classified provider error.
func statusError(provider string, status int) *ProviderError {
	err := fmt.Errorf("unexpected status %d", status)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return newProviderError(provider, KindAuthFailed, err)
	case status == http.StatusTooManyRequests:
		return newProviderError(provider, KindRateLimited, err)
	case status >= 400 && status < 500:
		return newProviderError(provider, KindBadRequest, err)
	default:
		return newProviderError(provider, KindUpstream, err)
	}
}
