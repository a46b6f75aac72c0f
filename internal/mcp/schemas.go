package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// assembleContextTool returns the tool definition for assemble_context
func assembleContextTool() mcp.Tool {
	return mcp.Tool{
		Name:        "assemble_context",
		Description: "Detect search intent for a query and assemble ranked context from web search, the knowledge store, and conversation history",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "The user query to assemble context for",
				},
				"conversation_id": map[string]interface{}{
					"type":        "string",
					"description": "Conversation identifier; enables history retrieval when set",
				},
			},
			Required: []string{"query"},
		},
	}
}

// searchWebTool returns the tool definition for search_web
func searchWebTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_web",
		Description: "Search the web through the configured providers, bypassing intent detection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum results per provider (1-20)",
					"default":     5,
					"minimum":     1,
					"maximum":     20,
				},
				"providers": map[string]interface{}{
					"type":        "array",
					"description": "Restrict the fan-out to these provider ids",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"duckduckgo", "searxng", "google", "bing"},
					},
				},
			},
			Required: []string{"query"},
		},
	}
}

// searchKnowledgeTool returns the tool definition for search_knowledge
func searchKnowledgeTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_knowledge",
		Description: "Query the vector knowledge store for documents and conversation turns similar to the query",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Natural language query",
				},
			},
			Required: []string{"query"},
		},
	}
}

// addKnowledgeTool returns the tool definition for add_knowledge
func addKnowledgeTool() mcp.Tool {
	return mcp.Tool{
		Name:        "add_knowledge",
		Description: "Chunk, embed, and index a document into the knowledge store",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"content": map[string]interface{}{
					"type":        "string",
					"description": "Document text to index",
				},
				"metadata": map[string]interface{}{
					"type":        "object",
					"description": "Optional string/number/bool metadata attached to every chunk",
				},
			},
			Required: []string{"content"},
		},
	}
}

// providerStatusTool returns the tool definition for provider_status
func providerStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "provider_status",
		Description: "Report each search provider's configuration and circuit breaker state",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// configureProvidersTool returns the tool definition for configure_providers
func configureProvidersTool() mcp.Tool {
	return mcp.Tool{
		Name:        "configure_providers",
		Description: "Replace the web search provider configuration; takes effect on the next request",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"providers": map[string]interface{}{
					"type":        "array",
					"description": "Full provider list; omitted providers are removed",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"id": map[string]interface{}{
								"type": "string",
								"enum": []string{"duckduckgo", "searxng", "google", "bing"},
							},
							"enabled": map[string]interface{}{
								"type":    "boolean",
								"default": false,
							},
							"priority": map[string]interface{}{
								"type":        "integer",
								"description": "Fallback order; lower values are tried first",
							},
							"api_key": map[string]interface{}{
								"type":        "string",
								"description": "API key for google and bing",
							},
							"engine_id": map[string]interface{}{
								"type":        "string",
								"description": "Google programmable search engine id",
							},
							"instance_url": map[string]interface{}{
								"type":        "string",
								"description": "SearXNG instance base URL",
							},
						},
						"required": []string{"id"},
					},
				},
			},
			Required: []string{"providers"},
		},
	}
}

// engineStatusTool returns the tool definition for engine_status
func engineStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "engine_status",
		Description: "Report provider health and knowledge index statistics",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
