package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bfforex/EvolveUI/internal/assembler"
	"github.com/bfforex/EvolveUI/internal/embedder"
	"github.com/bfforex/EvolveUI/internal/engine"
	"github.com/bfforex/EvolveUI/internal/intent"
	"github.com/bfforex/EvolveUI/internal/knowledge"
	"github.com/bfforex/EvolveUI/internal/websearch"
)

type constantEmbedder struct{}

func (constantEmbedder) GenerateEmbedding(context.Context, embedder.EmbeddingRequest) (*embedder.Embedding, error) {
	return &embedder.Embedding{Vector: []float32{1, 0, 0}, Dimension: 3, Provider: "test", Model: "test"}, nil
}

func (c constantEmbedder) GenerateBatch(ctx context.Context, req embedder.BatchEmbeddingRequest) (*embedder.BatchEmbeddingResponse, error) {
	resp := &embedder.BatchEmbeddingResponse{Provider: "test", Model: "test"}
	for range req.Texts {
		emb, _ := c.GenerateEmbedding(ctx, embedder.EmbeddingRequest{})
		resp.Embeddings = append(resp.Embeddings, emb)
	}
	return resp, nil
}

func (constantEmbedder) Dimension() int { return 3 }

func (constantEmbedder) Provider() string { return "test" }

func (constantEmbedder) Model() string { return "test" }

func (constantEmbedder) Close() error { return nil }

func newTestServer(t *testing.T) *Server {
	t.Helper()

	registry, err := websearch.NewRegistry([]websearch.ProviderConfig{
		{ID: websearch.ProviderDuckDuckGo, Priority: 1}, // disabled
	})
	require.NoError(t, err)
	orchestrator := websearch.NewOrchestrator(registry, websearch.NewLimiter(websearch.LimiterConfig{}), nil, nil)

	index, err := knowledge.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	emb := constantEmbedder{}
	eng := engine.New(engine.Options{
		Orchestrator: orchestrator,
		Detector:     intent.NewDetector(intent.Options{}),
		Retriever:    knowledge.NewRetriever(index, emb, knowledge.RetrieverOptions{}),
		Ingestor:     knowledge.NewIngestor(index, emb, nil),
		Assembler:    assembler.New(assembler.Options{}),
		Index:        index,
	})
	return NewServer(eng, nil)
}

func toolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func textContent(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "expected text content")

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &payload))
	return payload
}

func TestAssembleContextTool(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleAssembleContext(context.Background(), toolRequest("assemble_context", map[string]interface{}{
		"query": "what's the latest bitcoin price today",
	}))
	require.NoError(t, err)

	payload := textContent(t, result)
	intentPayload, ok := payload["intent"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, intentPayload["should_search"])
	// No providers enabled, so search contributes nothing.
	assert.Equal(t, false, payload["search_used"])
	assert.Equal(t, false, payload["rag_used"])
}

func TestAssembleContextToolRequiresQuery(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleAssembleContext(context.Background(), toolRequest("assemble_context", map[string]interface{}{}))

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeEmptyQuery, mcpErr.Code)
}

func TestAddAndSearchKnowledgeTools(t *testing.T) {
	s := newTestServer(t)

	addResult, err := s.handleAddKnowledge(context.Background(), toolRequest("add_knowledge", map[string]interface{}{
		"content": "The rollout plan ships the new UI behind a feature flag.",
		"metadata": map[string]interface{}{
			"source":  "wiki",
			"version": float64(2),
			"draft":   false,
		},
	}))
	require.NoError(t, err)

	addPayload := textContent(t, addResult)
	assert.Equal(t, true, addPayload["indexed"])
	assert.Equal(t, float64(1), addPayload["chunks"])

	searchResult, err := s.handleSearchKnowledge(context.Background(), toolRequest("search_knowledge", map[string]interface{}{
		"query": "how does the rollout work?",
	}))
	require.NoError(t, err)

	searchPayload := textContent(t, searchResult)
	hits, ok := searchPayload["hits"].([]interface{})
	require.True(t, ok)
	require.Len(t, hits, 1)
	hit := hits[0].(map[string]interface{})
	assert.Contains(t, hit["text"], "rollout plan")
	metadata := hit["metadata"].(map[string]interface{})
	assert.Equal(t, "wiki", metadata["source"])
	assert.Equal(t, float64(2), metadata["version"])
	assert.Equal(t, false, metadata["draft"])
}

func TestAddKnowledgeToolRejectsNestedMetadata(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleAddKnowledge(context.Background(), toolRequest("add_knowledge", map[string]interface{}{
		"content": "some content",
		"metadata": map[string]interface{}{
			"nested": map[string]interface{}{"not": "allowed"},
		},
	}))

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestSearchWebToolValidatesLimit(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleSearchWeb(context.Background(), toolRequest("search_web", map[string]interface{}{
		"query": "anything",
		"limit": float64(50),
	}))

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestProviderStatusTool(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleProviderStatus(context.Background(), toolRequest("provider_status", map[string]interface{}{}))
	require.NoError(t, err)

	payload := textContent(t, result)
	providers, ok := payload["providers"].([]interface{})
	require.True(t, ok)
	require.Len(t, providers, 1)
	entry := providers[0].(map[string]interface{})
	assert.Equal(t, "duckduckgo", entry["id"])
	assert.Equal(t, false, entry["enabled"])
	assert.Equal(t, true, entry["available"])
}

func TestConfigureProvidersTool(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleConfigureProviders(context.Background(), toolRequest("configure_providers", map[string]interface{}{
		"providers": []interface{}{
			map[string]interface{}{"id": "duckduckgo", "enabled": true, "priority": float64(1)},
			map[string]interface{}{"id": "bing", "enabled": true, "priority": float64(2), "api_key": "key"},
		},
	}))
	require.NoError(t, err)

	payload := textContent(t, result)
	assert.Equal(t, true, payload["configured"])
	assert.Equal(t, float64(2), payload["providers"])

	statusResult, err := s.handleProviderStatus(context.Background(), toolRequest("provider_status", map[string]interface{}{}))
	require.NoError(t, err)
	statusPayload := textContent(t, statusResult)
	assert.Len(t, statusPayload["providers"], 2)
}

func TestConfigureProvidersToolRejectsMissingCredential(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleConfigureProviders(context.Background(), toolRequest("configure_providers", map[string]interface{}{
		"providers": []interface{}{
			map[string]interface{}{"id": "google", "enabled": true},
		},
	}))

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeConfigRejected, mcpErr.Code)
}

func TestEngineStatusTool(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleAddKnowledge(context.Background(), toolRequest("add_knowledge", map[string]interface{}{
		"content": "a document",
	}))
	require.NoError(t, err)

	result, err := s.handleEngineStatus(context.Background(), toolRequest("engine_status", map[string]interface{}{}))
	require.NoError(t, err)

	payload := textContent(t, result)
	knowledgePayload, ok := payload["knowledge"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), knowledgePayload["documents"])
	assert.Equal(t, float64(0), knowledgePayload["conversations"])
}
