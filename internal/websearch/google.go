package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bfforex/EvolveUI/pkg/types"
)

const defaultGoogleURL = "https://www.googleapis.com/customsearch/v1"

// googleSearch queries the Google Programmable Search JSON API. It needs
// both an API key and a search engine id (cx).
type googleSearch struct {
	cfg        ProviderConfig
	httpClient *http.Client
	baseURL    string
}

func newGoogle(cfg ProviderConfig, client *http.Client) *googleSearch {
	return &googleSearch{cfg: cfg, httpClient: client, baseURL: defaultGoogleURL}
}

func (g *googleSearch) ID() string { return ProviderGoogle }

func (g *googleSearch) Configured() bool {
	return g.cfg.APIKey != "" && g.cfg.EngineID != ""
}

type googleItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type googleResponse struct {
	Items []googleItem `json:"items"`
}

func (g *googleSearch) Search(ctx context.Context, query string, limit int) ([]types.SearchResult, error) {
	if !g.Configured() {
		return nil, newProviderError(g.ID(), KindNotConfigured, fmt.Errorf("api key or engine id not set"))
	}

	// The API caps num at 10 per request.
	num := limit
	if num > 10 {
		num = 10
	}

	endpoint := fmt.Sprintf("%s?key=%s&cx=%s&q=%s&num=%d",
		g.baseURL, url.QueryEscape(g.cfg.APIKey), url.QueryEscape(g.cfg.EngineID),
		url.QueryEscape(query), num)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, newProviderError(g.ID(), KindUpstream, err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, classifyError(g.ID(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(g.ID(), resp.StatusCode)
	}

	var body googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, newProviderError(g.ID(), KindUpstream, fmt.Errorf("decode response: %w", err))
	}

	results := make([]types.SearchResult, 0, len(body.Items))
	for _, item := range body.Items {
		if len(results) >= limit {
			break
		}
		results = append(results, types.SearchResult{
			Title:      item.Title,
			URL:        item.Link,
			Snippet:    item.Snippet,
			ProviderID: g.ID(),
		})
	}

	return results, nil
}
