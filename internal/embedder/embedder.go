// Package embedder generates vector embeddings for knowledge retrieval.
// Four providers are supported: OpenAI, Ollama, Gemini and a deterministic
// local fallback that needs no external service. All providers share an
// LRU cache keyed by content hash and retry transient API failures with
// exponential backoff.
package embedder

import (
	"context"
	"errors"
	"fmt"
)

// Common errors
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrProviderFailed      = errors.New("embedding provider failed")
	ErrUnsupportedProvider = errors.New("unsupported embedding provider")
	ErrEmptyText           = errors.New("text cannot be empty")
	ErrBatchTooLarge       = errors.New("batch size exceeds limit")
	ErrMissingAPIKey       = errors.New("embedding api key not set")
)

// Provider names
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
	ProviderLocal  = "local"
)

// Default models and dimensions
const (
	DefaultOpenAIModel = "text-embedding-3-small"
	DefaultOllamaModel = "nomic-embed-text"
	DefaultGeminiModel = "gemini-embedding-001"

	OpenAIDimension = 1536
	OllamaDimension = 768
	GeminiDimension = 3072
	LocalDimension  = 384

	MaxBatchSize = 100
)

// Embedding is a vector with its provenance.
type Embedding struct {
	Vector    []float32
	Dimension int
	Provider  string
	Model     string
	Hash      string // Content hash, set when the embedding is cached
}

// EmbeddingRequest asks for one embedding.
type EmbeddingRequest struct {
	Text  string
	Model string // Optional override of the provider default
}

// BatchEmbeddingRequest asks for embeddings of multiple texts.
type BatchEmbeddingRequest struct {
	Texts []string
	Model string
}

// BatchEmbeddingResponse carries the embeddings in input order.
type BatchEmbeddingResponse struct {
	Embeddings []*Embedding
	Provider   string
	Model      string
}

// Embedder is the uniform interface over one embedding backend.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, req EmbeddingRequest) (*Embedding, error)

	// GenerateBatch embeds multiple texts, batched where the API allows.
	GenerateBatch(ctx context.Context, req BatchEmbeddingRequest) (*BatchEmbeddingResponse, error)

	// Dimension returns the vector length this provider produces.
	Dimension() int

	Provider() string
	Model() string

	// Close releases held resources.
	Close() error
}

// ValidateRequest rejects empty input before any network call.
func ValidateRequest(req EmbeddingRequest) error {
	if req.Text == "" {
		return ErrEmptyText
	}
	return nil
}

// ValidateBatchRequest rejects empty batches and empty members.
func ValidateBatchRequest(req BatchEmbeddingRequest) error {
	if len(req.Texts) == 0 {
		return fmt.Errorf("%w: no texts provided", ErrInvalidInput)
	}
	if len(req.Texts) > MaxBatchSize {
		return fmt.Errorf("%w: max %d texts allowed", ErrBatchTooLarge, MaxBatchSize)
	}
	for i, text := range req.Texts {
		if text == "" {
			return fmt.Errorf("%w: text at index %d is empty", ErrInvalidInput, i)
		}
	}
	return nil
}
