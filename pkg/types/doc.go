// Package types provides shared type definitions for the EvolveUI context
// assembly engine.
//
// It defines the value types that flow between the engine's components:
// queries, intent decisions, web search results, knowledge hits, and the
// assembled context handed to the chat layer. All types here are plain
// values; components that produce them own their construction rules.
//
// # Core Types
//
// Query wraps a raw user message with its normalized form:
//
//	q := types.NewQuery("  What's the weather in Paris TODAY? ", convID)
//	q.Normalized // "what's the weather in paris today?"
//
// AssembledContext is the engine's single output type:
//
//	ctx := engine.DetectAndSearch(ctx, q)
//	for _, src := range ctx.Sources {
//	    // src.Type, src.Title, src.Snippet, src.Relevance
//	}
package types
