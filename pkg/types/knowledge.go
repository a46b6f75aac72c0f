package types

import "time"

// SourceType classifies where a knowledge hit originated.
type SourceType string

const (
	// SourceKnowledge marks hits from ingested knowledge documents.
	SourceKnowledge SourceType = "knowledge"
	// SourceConversation marks hits from indexed conversation turns.
	SourceConversation SourceType = "conversation"
)

// MetadataValue is one value of a knowledge document's metadata map.
// The variant set is closed: exactly one of the typed fields is populated
// according to Kind.
type MetadataValue struct {
	Kind MetadataKind
	Str  string
	Num  float64
	Bool bool
}

// MetadataKind discriminates MetadataValue variants.
type MetadataKind int

const (
	MetadataString MetadataKind = iota
	MetadataNumber
	MetadataBool
)

// StringValue returns a MetadataValue holding a string.
func StringValue(s string) MetadataValue { return MetadataValue{Kind: MetadataString, Str: s} }

// NumberValue returns a MetadataValue holding a number.
func NumberValue(n float64) MetadataValue { return MetadataValue{Kind: MetadataNumber, Num: n} }

// BoolValue returns a MetadataValue holding a bool.
func BoolValue(b bool) MetadataValue { return MetadataValue{Kind: MetadataBool, Bool: b} }

// KnowledgeHit is a single nearest-neighbor match from the vector index.
// SimilarityScore is 1 - distance and is comparable across hits from the
// same query.
type KnowledgeHit struct {
	DocumentID      string
	Text            string
	SimilarityScore float64 // [0,1]
	SourceType      SourceType
	Metadata        map[string]MetadataValue
	IndexedAt       time.Time // Tie-break: most recent first
}

// Validate checks if the knowledge hit is well formed
func (kh *KnowledgeHit) Validate() error {
	if kh.DocumentID == "" {
		return ErrMissingDocumentID
	}
	if kh.SimilarityScore < 0 || kh.SimilarityScore > 1 {
		return ErrInvalidScore
	}
	return nil
}
