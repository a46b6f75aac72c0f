package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/bfforex/EvolveUI/pkg/types"
)

const defaultBingURL = "https://api.bing.microsoft.com/v7.0/search"

// bingSearch queries the Bing Web Search API using a subscription key.
type bingSearch struct {
	cfg        ProviderConfig
	httpClient *http.Client
	baseURL    string
}

func newBing(cfg ProviderConfig, client *http.Client) *bingSearch {
	return &bingSearch{cfg: cfg, httpClient: client, baseURL: defaultBingURL}
}

func (b *bingSearch) ID() string { return ProviderBing }

func (b *bingSearch) Configured() bool { return b.cfg.APIKey != "" }

type bingPage struct {
	Name          string `json:"name"`
	URL           string `json:"url"`
	Snippet       string `json:"snippet"`
	DatePublished string `json:"datePublished"`
}

type bingResponse struct {
	WebPages struct {
		Value []bingPage `json:"value"`
	} `json:"webPages"`
}

func (b *bingSearch) Search(ctx context.Context, query string, limit int) ([]types.SearchResult, error) {
	if !b.Configured() {
		return nil, newProviderError(b.ID(), KindNotConfigured, fmt.Errorf("api key not set"))
	}

	endpoint := fmt.Sprintf("%s?q=%s&count=%d", b.baseURL, url.QueryEscape(query), limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, newProviderError(b.ID(), KindUpstream, err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", b.cfg.APIKey)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, classifyError(b.ID(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(b.ID(), resp.StatusCode)
	}

	var body bingResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, newProviderError(b.ID(), KindUpstream, fmt.Errorf("decode response: %w", err))
	}

	results := make([]types.SearchResult, 0, len(body.WebPages.Value))
	for _, page := range body.WebPages.Value {
		if len(results) >= limit {
			break
		}
		sr := types.SearchResult{
			Title:      page.Name,
			URL:        page.URL,
			Snippet:    page.Snippet,
			ProviderID: b.ID(),
		}
		if page.DatePublished != "" {
			if ts, err := time.Parse(time.RFC3339, page.DatePublished); err == nil {
				sr.PublishedAt = &ts
			}
		}
		results = append(results, sr)
	}

	return results, nil
}
