package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/bfforex/EvolveUI/internal/websearch"
	"github.com/bfforex/EvolveUI/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams  = -32602 // Invalid method parameters
	ErrorCodeInternalError  = -32603 // Internal JSON-RPC error
	ErrorCodeEmptyQuery     = -32001 // Query parameter is empty
	ErrorCodeEmptyContent   = -32002 // Content parameter is empty
	ErrorCodeConfigRejected = -32003 // Provider configuration failed validation
)

// handleAssembleContext handles the assemble_context tool invocation
func (s *Server) handleAssembleContext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	raw, ok := args["query"].(string)
	if !ok || raw == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}
	conversationID := getStringDefault(args, "conversation_id", "")

	query := types.NewQuery(raw, conversationID)
	decision, assembled := s.engine.DetectAndSearch(ctx, query)

	sources := make([]map[string]interface{}, 0, len(assembled.Sources))
	for _, src := range assembled.Sources {
		entry := map[string]interface{}{
			"type":      string(src.Type),
			"title":     src.Title,
			"snippet":   src.Snippet,
			"relevance": src.Relevance,
		}
		if src.URL != "" {
			entry["url"] = src.URL
		}
		sources = append(sources, entry)
	}

	response := map[string]interface{}{
		"intent": map[string]interface{}{
			"should_search":      decision.ShouldSearch,
			"confidence":         decision.Confidence,
			"matched_indicators": decision.MatchedIndicators,
			"suggested_query":    decision.SuggestedQuery,
		},
		"sources":          sources,
		"search_used":      assembled.SearchUsed,
		"rag_used":         assembled.RAGUsed,
		"total_characters": assembled.TotalCharacters,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchWeb handles the search_web tool invocation
func (s *Server) handleSearchWeb(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", websearch.DefaultPerProviderLimit)
	if limit < 1 || limit > 20 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 20", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	var providerIDs []string
	if rawIDs, ok := args["providers"].([]interface{}); ok {
		for _, rawID := range rawIDs {
			if id, ok := rawID.(string); ok && id != "" {
				providerIDs = append(providerIDs, id)
			}
		}
	}

	results, provErrs := s.engine.SearchWeb(ctx, query, websearch.SearchOptions{
		ProviderIDs:      providerIDs,
		PerProviderLimit: limit,
	})

	resultList := make([]map[string]interface{}, 0, len(results))
	for _, r := range results {
		entry := map[string]interface{}{
			"title":    r.Title,
			"url":      r.URL,
			"snippet":  r.Snippet,
			"provider": r.ProviderID,
		}
		if r.PublishedAt != nil {
			entry["published_at"] = r.PublishedAt.Format(time.RFC3339)
		}
		resultList = append(resultList, entry)
	}

	errorList := make([]map[string]interface{}, 0, len(provErrs))
	for _, pe := range provErrs {
		errorList = append(errorList, map[string]interface{}{
			"provider": pe.Provider,
			"kind":     string(pe.Kind),
			"error":    pe.Error(),
		})
	}

	response := map[string]interface{}{
		"results": resultList,
		"errors":  errorList,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchKnowledge handles the search_knowledge tool invocation
func (s *Server) handleSearchKnowledge(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	hits := s.engine.SearchKnowledge(ctx, query)

	hitList := make([]map[string]interface{}, 0, len(hits))
	for _, hit := range hits {
		hitList = append(hitList, map[string]interface{}{
			"document_id": hit.DocumentID,
			"text":        hit.Text,
			"similarity":  hit.SimilarityScore,
			"source_type": string(hit.SourceType),
			"metadata":    metadataToJSON(hit.Metadata),
			"indexed_at":  hit.IndexedAt.Format(time.RFC3339),
		})
	}

	response := map[string]interface{}{
		"hits": hitList,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleAddKnowledge handles the add_knowledge tool invocation
func (s *Server) handleAddKnowledge(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	content, ok := args["content"].(string)
	if !ok || content == "" {
		return nil, newMCPError(ErrorCodeEmptyContent, "content parameter is required and cannot be empty", map[string]interface{}{
			"param":  "content",
			"reason": "missing or empty",
		})
	}

	var metadata map[string]types.MetadataValue
	if rawMeta, ok := args["metadata"].(map[string]interface{}); ok {
		metadata = make(map[string]types.MetadataValue, len(rawMeta))
		for key, val := range rawMeta {
			switch v := val.(type) {
			case string:
				metadata[key] = types.StringValue(v)
			case float64:
				metadata[key] = types.NumberValue(v)
			case bool:
				metadata[key] = types.BoolValue(v)
			default:
				return nil, newMCPError(ErrorCodeInvalidParams, "metadata values must be string, number, or bool", map[string]interface{}{
					"param": "metadata",
					"key":   key,
				})
			}
		}
	}

	ids, err := s.engine.AddKnowledge(ctx, content, metadata)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "indexing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"indexed":      true,
		"document_ids": ids,
		"chunks":       len(ids),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleProviderStatus handles the provider_status tool invocation
func (s *Server) handleProviderStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	statuses := s.engine.ProviderStatuses()

	providerList := make([]map[string]interface{}, 0, len(statuses))
	for _, st := range statuses {
		entry := map[string]interface{}{
			"id":           st.ID,
			"display_name": st.DisplayName,
			"enabled":      st.Enabled,
			"available":    st.Available,
			"failures":     st.Failures,
		}
		if st.LastError != "" {
			entry["last_error"] = st.LastError
		}
		providerList = append(providerList, entry)
	}

	response := map[string]interface{}{
		"providers": providerList,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleConfigureProviders handles the configure_providers tool invocation
func (s *Server) handleConfigureProviders(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	rawProviders, ok := args["providers"].([]interface{})
	if !ok || len(rawProviders) == 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "providers parameter is required and cannot be empty", map[string]interface{}{
			"param":  "providers",
			"reason": "missing or empty",
		})
	}

	configs := make([]websearch.ProviderConfig, 0, len(rawProviders))
	for i, raw := range rawProviders {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			return nil, newMCPError(ErrorCodeInvalidParams, "provider entries must be objects", map[string]interface{}{
				"param": "providers",
				"index": i,
			})
		}
		id, ok := entry["id"].(string)
		if !ok || id == "" {
			return nil, newMCPError(ErrorCodeInvalidParams, "provider id is required", map[string]interface{}{
				"param": "providers",
				"index": i,
			})
		}
		configs = append(configs, websearch.ProviderConfig{
			ID:          id,
			Enabled:     getBoolDefault(entry, "enabled", false),
			Priority:    getIntDefault(entry, "priority", i+1),
			APIKey:      getStringDefault(entry, "api_key", ""),
			EngineID:    getStringDefault(entry, "engine_id", ""),
			InstanceURL: getStringDefault(entry, "instance_url", ""),
		})
	}

	if err := s.engine.ConfigureProviders(configs); err != nil {
		return nil, newMCPError(ErrorCodeConfigRejected, "provider configuration rejected", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"configured": true,
		"providers":  len(configs),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleEngineStatus handles the engine_status tool invocation
func (s *Server) handleEngineStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := s.engine.Status(ctx)

	providerList := make([]map[string]interface{}, 0, len(status.Providers))
	for _, st := range status.Providers {
		providerList = append(providerList, map[string]interface{}{
			"id":        st.ID,
			"enabled":   st.Enabled,
			"available": st.Available,
		})
	}

	response := map[string]interface{}{
		"providers": providerList,
		"knowledge": map[string]interface{}{
			"documents":     status.Documents,
			"conversations": status.Conversations,
		},
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// metadataToJSON flattens typed metadata values for the wire.
func metadataToJSON(metadata map[string]types.MetadataValue) map[string]interface{} {
	if len(metadata) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(metadata))
	for key, val := range metadata {
		switch val.Kind {
		case types.MetadataNumber:
			out[key] = val.Num
		case types.MetadataBool:
			out[key] = val.Bool
		default:
			out[key] = val.Str
		}
	}
	return out
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
