// Package websearch drives external web search providers for the context
// assembly engine.
//
// Four provider adapters are supported behind a single interface:
//   - DuckDuckGo: no credential, instant-answer API
//   - SearXNG: self-hosted aggregator, needs an instance URL
//   - Google: Programmable Search, needs an API key and engine id
//   - Bing: Web Search API, needs an API key
//
// Every provider call is gated by a per-provider rate limiter with a
// circuit breaker (Limiter). The Orchestrator fans out over enabled
// providers concurrently, merges results in configured priority order,
// and deduplicates by normalized URL. One successful provider is enough:
// individual provider failures are collected as *ProviderError values and
// never fail the request.
//
//	reg, _ := websearch.NewRegistry(configs)
//	orch := websearch.NewOrchestrator(reg, websearch.NewLimiter(websearch.LimiterConfig{}), nil, logger)
//	results, errs := orch.SearchAll(ctx, "latest go release", websearch.SearchOptions{})
package websearch
