// Package metrics registers the engine's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderSearches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evolveui_provider_searches_total",
			Help: "Web search attempts by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evolveui_cache_lookups_total",
			Help: "Result cache lookups by consumer and outcome",
		},
		[]string{"consumer", "outcome"},
	)

	KnowledgeRetrievals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evolveui_knowledge_retrievals_total",
			Help: "Vector knowledge store retrievals by outcome",
		},
		[]string{"outcome"},
	)

	AssemblyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "evolveui_context_assembly_duration_seconds",
			Help: "End-to-end duration of context assembly requests",
		},
	)
)
