package assembler

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bfforex/EvolveUI/pkg/types"
)

func searchResult(title, url string) types.SearchResult {
	return types.SearchResult{
		Title:      title,
		URL:        url,
		Snippet:    "snippet for " + title,
		ProviderID: "duckduckgo",
	}
}

func knowledgeHit(id string, score float64) types.KnowledgeHit {
	return types.KnowledgeHit{
		DocumentID:      id,
		Text:            "text for " + id,
		SimilarityScore: score,
		SourceType:      types.SourceKnowledge,
	}
}

func TestAssembleInterleavesByRelevance(t *testing.T) {
	a := New(Options{})

	ctx := a.Assemble(
		[]types.SearchResult{searchResult("Fresh News", "https://example.com/news")},
		[]types.KnowledgeHit{
			knowledgeHit("doc-strong", 0.95),
			knowledgeHit("doc-weak", 0.65),
		},
		nil,
		true,
	)

	require.Len(t, ctx.Sources, 3)
	assert.Equal(t, "doc-strong", ctx.Sources[0].Title)
	assert.Equal(t, types.ContextSourceSearch, ctx.Sources[1].Type)
	assert.Equal(t, "doc-weak", ctx.Sources[2].Title)
	assert.True(t, ctx.SearchUsed)
	assert.True(t, ctx.RAGUsed)
}

func TestAssembleFiltersLowSimilarityHits(t *testing.T) {
	a := New(Options{})

	ctx := a.Assemble(nil, []types.KnowledgeHit{
		knowledgeHit("doc-kept", 0.7),
		knowledgeHit("doc-dropped", 0.4),
	}, nil, false)

	require.Len(t, ctx.Sources, 1)
	assert.Equal(t, "doc-kept", ctx.Sources[0].Title)
	assert.False(t, ctx.SearchUsed)
	assert.True(t, ctx.RAGUsed)
}

func TestAssembleTruncatesOnRuneBoundary(t *testing.T) {
	a := New(Options{})

	// Three-byte runes so the 500-byte snippet limit lands mid-rune.
	hit := types.KnowledgeHit{
		DocumentID:      "doc-utf8",
		Text:            strings.Repeat("界", 200),
		SimilarityScore: 0.9,
		SourceType:      types.SourceKnowledge,
	}

	ctx := a.Assemble(nil, []types.KnowledgeHit{hit}, nil, false)

	require.Len(t, ctx.Sources, 1)
	snippet := ctx.Sources[0].Snippet
	assert.True(t, strings.HasSuffix(snippet, "..."))
	assert.True(t, utf8.ValidString(snippet))
	body := strings.TrimSuffix(snippet, "...")
	assert.Equal(t, 498, len(body), "cut must back up to the previous rune start")
}

func TestAssembleNeverExceedsSourceBudget(t *testing.T) {
	a := New(Options{Budget: Budget{MaxSources: 2}})

	ctx := a.Assemble(
		[]types.SearchResult{
			searchResult("One", "https://example.com/1"),
			searchResult("Two", "https://example.com/2"),
		},
		[]types.KnowledgeHit{
			knowledgeHit("doc-top", 0.9),
			knowledgeHit("doc-mid", 0.85),
		},
		nil,
		true,
	)

	// Truncation drops the lowest-ranked entries: the 0.8 search
	// results go before the higher-scoring knowledge hits.
	require.Len(t, ctx.Sources, 2)
	assert.Equal(t, "doc-top", ctx.Sources[0].Title)
	assert.Equal(t, "doc-mid", ctx.Sources[1].Title)
	assert.True(t, ctx.SearchUsed, "orchestrator returned results even if truncated away")
}

func TestAssembleSearchUsedSurvivesTruncation(t *testing.T) {
	// SearchUsed reflects the orchestrator outcome, not whether a
	// search source survived the budget.
	a := New(Options{Budget: Budget{MaxSources: 1}})

	ctx := a.Assemble(
		[]types.SearchResult{searchResult("One", "https://example.com/1")},
		[]types.KnowledgeHit{knowledgeHit("doc-top", 0.9)},
		nil,
		true,
	)

	require.Len(t, ctx.Sources, 1)
	assert.Equal(t, "doc-top", ctx.Sources[0].Title)
	assert.True(t, ctx.SearchUsed)
}

func TestAssembleCharacterBudget(t *testing.T) {
	a := New(Options{Budget: Budget{MaxSources: 10, MaxCharacters: 40}})

	long := types.KnowledgeHit{
		DocumentID:      "doc-long",
		Text:            strings.Repeat("x", 30),
		SimilarityScore: 0.9,
		SourceType:      types.SourceKnowledge,
	}
	alsoLong := types.KnowledgeHit{
		DocumentID:      "doc-overflow",
		Text:            strings.Repeat("y", 30),
		SimilarityScore: 0.8,
		SourceType:      types.SourceKnowledge,
	}

	ctx := a.Assemble(nil, []types.KnowledgeHit{long, alsoLong}, nil, false)

	require.Len(t, ctx.Sources, 1)
	assert.Equal(t, "doc-long", ctx.Sources[0].Title)
	assert.LessOrEqual(t, ctx.TotalCharacters, 40)
}

func TestAssembleConversationTurnsRankLast(t *testing.T) {
	a := New(Options{})

	ctx := a.Assemble(
		[]types.SearchResult{searchResult("Result", "https://example.com/r")},
		[]types.KnowledgeHit{knowledgeHit("doc", 0.65)},
		[]types.ConversationTurn{
			{Role: "user", Content: "what did we decide yesterday?"},
			{Role: "assistant", Content: "   "},
		},
		true,
	)

	require.Len(t, ctx.Sources, 3)
	last := ctx.Sources[2]
	assert.Equal(t, types.ContextSourceConversation, last.Type)
	assert.Equal(t, "user", last.Title)
}

func TestAssembleConversationHitsUseConversationType(t *testing.T) {
	a := New(Options{})

	hit := types.KnowledgeHit{
		DocumentID:      "turn-1",
		Text:            strings.Repeat("z", 400),
		SimilarityScore: 0.9,
		SourceType:      types.SourceConversation,
	}
	ctx := a.Assemble(nil, []types.KnowledgeHit{hit}, nil, false)

	require.Len(t, ctx.Sources, 1)
	assert.Equal(t, types.ContextSourceConversation, ctx.Sources[0].Type)
	assert.Len(t, ctx.Sources[0].Snippet, 303) // 300 chars plus ellipsis
	assert.True(t, ctx.RAGUsed, "conversation hits come from the vector store")
}

func TestAssembleEmptyInputs(t *testing.T) {
	a := New(Options{})

	ctx := a.Assemble(nil, nil, nil, true)

	assert.True(t, ctx.Empty())
	assert.False(t, ctx.SearchUsed)
	assert.False(t, ctx.RAGUsed)
	assert.Zero(t, ctx.TotalCharacters)
}

func TestFormatPrompt(t *testing.T) {
	a := New(Options{})
	ctx := a.Assemble(
		[]types.SearchResult{searchResult("Result", "https://example.com/r")},
		[]types.KnowledgeHit{knowledgeHit("doc", 0.9)},
		nil,
		true,
	)

	prompt := FormatPrompt(ctx, "what is the answer?")

	assert.True(t, strings.HasPrefix(prompt, "Context Information:\n"))
	assert.Contains(t, prompt, "Knowledge: text for doc")
	assert.Contains(t, prompt, "Web result (https://example.com/r): snippet for Result")
	assert.Contains(t, prompt, "User Question: what is the answer?")
	assert.Contains(t, prompt, "answer based on your general knowledge")
}

func TestFormatPromptEmptyContext(t *testing.T) {
	assert.Equal(t, "hello", FormatPrompt(nil, "hello"))
	assert.Equal(t, "hello", FormatPrompt(&types.AssembledContext{}, "hello"))
}
