package embedder

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Config selects and parameterizes an embedding provider.
type Config struct {
	Provider  string
	Model     string
	APIKey    string
	BaseURL   string // Ollama instance URL
	CacheSize int
}

// New creates an embedder from explicit configuration.
func New(ctx context.Context, cfg Config) (Embedder, error) {
	cache := NewCache(cfg.CacheSize)

	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cache)
	case ProviderOllama:
		return NewOllamaProvider(cfg.BaseURL, cfg.Model, cache)
	case ProviderGemini:
		return NewGeminiProvider(ctx, cfg.APIKey, cfg.Model, cache)
	case ProviderLocal, "":
		return NewLocalProvider(cache)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, cfg.Provider)
	}
}

// NewFromEnv creates an embedder from environment variables alone.
// EVOLVEUI_EMBEDDING_PROVIDER selects explicitly; otherwise the first
// available API key wins and the local provider is the fallback.
func NewFromEnv(ctx context.Context) (Embedder, error) {
	if provider := os.Getenv("EVOLVEUI_EMBEDDING_PROVIDER"); provider != "" {
		return New(ctx, Config{
			Provider: provider,
			APIKey:   apiKeyFor(provider),
			BaseURL:  os.Getenv("OLLAMA_BASE_URL"),
		})
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return New(ctx, Config{Provider: ProviderOpenAI, APIKey: key})
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return New(ctx, Config{Provider: ProviderGemini, APIKey: key})
	}
	if url := os.Getenv("OLLAMA_BASE_URL"); url != "" {
		return New(ctx, Config{Provider: ProviderOllama, BaseURL: url})
	}

	return New(ctx, Config{Provider: ProviderLocal})
}

func apiKeyFor(provider string) string {
	switch strings.ToLower(provider) {
	case ProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	case ProviderGemini:
		return os.Getenv("GEMINI_API_KEY")
	default:
		return ""
	}
}
