package embedder

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiProvider embeds text through the Google Gemini API, which has
// native batch support.
type GeminiProvider struct {
	client *genai.Client
	model  string
	cache  *Cache
}

// NewGeminiProvider creates a Gemini embedder. The API key is required.
func NewGeminiProvider(ctx context.Context, apiKey, model string, cache *Cache) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: gemini", ErrMissingAPIKey)
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiProvider{client: client, model: model, cache: cache}, nil
}

func (g *GeminiProvider) GenerateEmbedding(ctx context.Context, req EmbeddingRequest) (*Embedding, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	hash := ComputeHash(req.Text)
	if g.cache != nil {
		if emb, ok := g.cache.Get(hash); ok {
			return emb, nil
		}
	}

	resp, err := g.GenerateBatch(ctx, BatchEmbeddingRequest{Texts: []string{req.Text}, Model: req.Model})
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned", ErrProviderFailed)
	}
	return resp.Embeddings[0], nil
}

func (g *GeminiProvider) GenerateBatch(ctx context.Context, req BatchEmbeddingRequest) (*BatchEmbeddingResponse, error) {
	if err := ValidateBatchRequest(req); err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = g.model
	}

	contents := make([]*genai.Content, len(req.Texts))
	for i, text := range req.Texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := retryWithBackoff(ctx, DefaultRetryConfig(), func() (*genai.EmbedContentResponse, error) {
		return g.client.Models.EmbedContent(ctx, model, contents, &genai.EmbedContentConfig{
			TaskType: "SEMANTIC_SIMILARITY",
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w after %d retries: %v", ErrProviderFailed, MaxRetries, err)
	}
	if len(result.Embeddings) != len(req.Texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts",
			ErrProviderFailed, len(result.Embeddings), len(req.Texts))
	}

	embeddings := make([]*Embedding, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		hash := ComputeHash(req.Texts[i])
		embeddings[i] = &Embedding{
			Vector:    emb.Values,
			Dimension: len(emb.Values),
			Provider:  ProviderGemini,
			Model:     model,
			Hash:      hash,
		}
		if g.cache != nil {
			g.cache.Set(hash, embeddings[i])
		}
	}

	return &BatchEmbeddingResponse{
		Embeddings: embeddings,
		Provider:   ProviderGemini,
		Model:      model,
	}, nil
}

func (g *GeminiProvider) Dimension() int {
	return GeminiDimension
}

func (g *GeminiProvider) Provider() string {
	return ProviderGemini
}

func (g *GeminiProvider) Model() string {
	return g.model
}

func (g *GeminiProvider) Close() error {
	return nil
}
