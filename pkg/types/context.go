package types

// ContextSourceType identifies the origin of a ContextSource.
type ContextSourceType string

const (
	ContextSourceSearch       ContextSourceType = "search"
	ContextSourceKnowledge    ContextSourceType = "knowledge"
	ContextSourceConversation ContextSourceType = "conversation"
)

// ContextSource is the unified shape every contribution is normalized to
// before ranking. Ordering in AssembledContext.Sources is the ranking
// contract: index 0 is the most relevant source.
type ContextSource struct {
	Type      ContextSourceType
	Title     string
	URL       string // Empty for knowledge and conversation sources
	Snippet   string
	Relevance float64 // [0,1], comparable across source types
}

// AssembledContext is the engine's output: a ranked, deduplicated,
// budget-constrained set of context sources for one request. It is created
// fresh per request and never persisted by the engine.
type AssembledContext struct {
	Sources         []ContextSource
	SearchUsed      bool // Orchestrator invoked and returned >= 1 result
	RAGUsed         bool // >= 1 knowledge hit survived truncation
	TotalCharacters int
}

// Empty reports whether no usable context was assembled.
func (ac *AssembledContext) Empty() bool {
	return len(ac.Sources) == 0
}
