package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuery(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"lowercases", "What Is GO", "what is go"},
		{"trims", "  hello  ", "hello"},
		{"collapses whitespace", "a\t b\n\nc", "a b c"},
		{"empty", "", ""},
		{"only whitespace", " \t\n ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQuery(tt.raw, "conv-1")
			assert.Equal(t, tt.want, q.Normalized)
			assert.Equal(t, tt.raw, q.Raw)
			assert.Equal(t, "conv-1", q.ConversationID)
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"lowercases host", "https://Example.COM/Path", "https://example.com/Path"},
		{"strips trailing slash", "https://example.com/a/", "https://example.com/a"},
		{"strips fragment", "https://example.com/a#section", "https://example.com/a"},
		{"preserves query", "https://example.com/a?q=1", "https://example.com/a?q=1"},
		{"trims whitespace", "  https://example.com ", "https://example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeURL(tt.raw))
		})
	}
}

func TestSearchResultValidate(t *testing.T) {
	sr := SearchResult{Title: "t", URL: "https://example.com", Snippet: "s", ProviderID: "duckduckgo"}
	require.NoError(t, sr.Validate())

	missing := sr
	missing.URL = ""
	assert.ErrorIs(t, missing.Validate(), ErrMissingURL)

	noProvider := sr
	noProvider.ProviderID = ""
	assert.ErrorIs(t, noProvider.Validate(), ErrMissingProvider)
}

func TestKnowledgeHitValidate(t *testing.T) {
	kh := KnowledgeHit{DocumentID: "doc-1", Text: "x", SimilarityScore: 0.7, SourceType: SourceKnowledge}
	require.NoError(t, kh.Validate())

	kh.SimilarityScore = 1.2
	assert.ErrorIs(t, kh.Validate(), ErrInvalidScore)

	kh.SimilarityScore = 0.7
	kh.DocumentID = ""
	assert.ErrorIs(t, kh.Validate(), ErrMissingDocumentID)
}

func TestMetadataValueVariants(t *testing.T) {
	assert.Equal(t, MetadataString, StringValue("a").Kind)
	assert.Equal(t, MetadataNumber, NumberValue(1.5).Kind)
	assert.Equal(t, MetadataBool, BoolValue(true).Kind)
	assert.Equal(t, 1.5, NumberValue(1.5).Num)
}
