// Package mcp implements the Model Context Protocol (MCP) server for
// EvolveUI's context assembly engine.
//
// The server exposes the engine to MCP clients over stdio:
//   - assemble_context: Detect search intent and assemble ranked context for a query
//   - search_web: Fan a query out to the configured web search providers
//   - search_knowledge: Query the vector knowledge store directly
//   - add_knowledge: Chunk, embed, and index a knowledge document
//   - provider_status: Report per-provider availability and circuit state
//   - configure_providers: Replace the web search provider configuration
//   - engine_status: Report provider health and index statistics
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The server listens on stdin for protocol messages and writes responses
// to stdout, so any MCP-compatible client can drive it.
//
// # Tool: assemble_context
//
// The primary entry point. One call runs intent detection, the provider
// fan-out, and the knowledge lookup, and returns the merged context:
//
//	Request:
//	{
//	  "name": "assemble_context",
//	  "arguments": {
//	    "query": "what's the weather in Paris today",
//	    "conversation_id": "conv-42"
//	  }
//	}
//
//	Response:
//	{
//	  "intent": {"should_search": true, "confidence": 1.0},
//	  "search_used": true,
//	  "rag_used": false,
//	  "sources": [{"type": "search", "title": "...", "url": "...", "snippet": "...", "relevance": 0.8}]
//	}
//
// Tool errors use JSON-RPC error codes: -32602 for invalid parameters,
// -32603 for internal failures, and server-specific codes in the -32000
// range for domain errors such as an empty query or a rejected provider
// configuration.
package mcp
