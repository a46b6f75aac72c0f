package embedder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRequest(t *testing.T) {
	assert.ErrorIs(t, ValidateRequest(EmbeddingRequest{}), ErrEmptyText)
	assert.NoError(t, ValidateRequest(EmbeddingRequest{Text: "hello"}))
}

func TestValidateBatchRequest(t *testing.T) {
	assert.ErrorIs(t, ValidateBatchRequest(BatchEmbeddingRequest{}), ErrInvalidInput)
	assert.ErrorIs(t, ValidateBatchRequest(BatchEmbeddingRequest{Texts: []string{"a", ""}}), ErrInvalidInput)

	big := make([]string, MaxBatchSize+1)
	for i := range big {
		big[i] = "x"
	}
	assert.ErrorIs(t, ValidateBatchRequest(BatchEmbeddingRequest{Texts: big}), ErrBatchTooLarge)

	assert.NoError(t, ValidateBatchRequest(BatchEmbeddingRequest{Texts: []string{"a", "b"}}))
}

func TestCacheReturnsDeepCopy(t *testing.T) {
	cache := NewCache(10)
	hash := ComputeHash("some text")
	cache.Set(hash, &Embedding{
		Vector:    []float32{1, 2, 3},
		Dimension: 3,
		Provider:  ProviderLocal,
		Hash:      hash,
	})

	first, ok := cache.Get(hash)
	require.True(t, ok)
	first.Vector[0] = 99

	second, ok := cache.Get(hash)
	require.True(t, ok)
	assert.Equal(t, float32(1), second.Vector[0], "mutation must not reach the cached value")
}

func TestCacheEviction(t *testing.T) {
	cache := NewCache(2)
	cache.Set("a", &Embedding{Hash: "a"})
	cache.Set("b", &Embedding{Hash: "b"})
	cache.Set("c", &Embedding{Hash: "c"})

	assert.Equal(t, 2, cache.Size())
	_, ok := cache.Get("a")
	assert.False(t, ok, "oldest entry must be evicted")
}

func TestNormalizeVector(t *testing.T) {
	v := NormalizeVector([]float32{3, 4})
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)

	zero := []float32{0, 0}
	assert.Equal(t, zero, NormalizeVector(zero))
}

func TestLocalProviderDeterministic(t *testing.T) {
	p, err := NewLocalProvider(nil)
	require.NoError(t, err)
	ctx := context.Background()

	first, err := p.GenerateEmbedding(ctx, EmbeddingRequest{Text: "same input"})
	require.NoError(t, err)
	second, err := p.GenerateEmbedding(ctx, EmbeddingRequest{Text: "same input"})
	require.NoError(t, err)
	other, err := p.GenerateEmbedding(ctx, EmbeddingRequest{Text: "different input"})
	require.NoError(t, err)

	assert.Equal(t, first.Vector, second.Vector)
	assert.NotEqual(t, first.Vector, other.Vector)
	assert.Len(t, first.Vector, LocalDimension)
}

func TestLocalProviderBatchOrder(t *testing.T) {
	p, err := NewLocalProvider(NewCache(10))
	require.NoError(t, err)

	resp, err := p.GenerateBatch(context.Background(), BatchEmbeddingRequest{
		Texts: []string{"one", "two", "three"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Embeddings, 3)

	for i, text := range []string{"one", "two", "three"} {
		assert.Equal(t, ComputeHash(text), resp.Embeddings[i].Hash)
	}
}

func TestNewSelectsProvider(t *testing.T) {
	ctx := context.Background()

	local, err := New(ctx, Config{Provider: "local"})
	require.NoError(t, err)
	assert.Equal(t, ProviderLocal, local.Provider())

	_, err = New(ctx, Config{Provider: "openai"})
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = New(ctx, Config{Provider: "huggingface"})
	assert.ErrorIs(t, err, ErrUnsupportedProvider)

	ollama, err := New(ctx, Config{Provider: "ollama"})
	require.NoError(t, err)
	assert.Equal(t, ProviderOllama, ollama.Provider())
}
