package types

import "strings"

// Query represents a user message under consideration for context assembly.
// It is immutable once created; Normalized is the canonical cache key form.
type Query struct {
	Raw            string
	Normalized     string
	ConversationID string
}

// NewQuery builds a Query with its normalized form: lowercased, trimmed,
// inner whitespace collapsed to single spaces.
func NewQuery(raw, conversationID string) Query {
	return Query{
		Raw:            raw,
		Normalized:     NormalizeQuery(raw),
		ConversationID: conversationID,
	}
}

// NormalizeQuery lowercases, trims, and collapses whitespace.
func NormalizeQuery(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), " ")
}

// IntentDecision is the result of classifying a query as search-worthy.
type IntentDecision struct {
	ShouldSearch      bool
	Confidence        float64 // [0,1]
	MatchedIndicators []string
	SuggestedQuery    string
}

// ConversationTurn is a single message from the conversation history.
type ConversationTurn struct {
	Role      string // "user" or "assistant"
	Content   string
	Timestamp int64 // Unix milliseconds
}
