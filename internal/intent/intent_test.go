package intent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bfforex/EvolveUI/internal/rescache"
	"github.com/bfforex/EvolveUI/pkg/types"
)

func detect(t *testing.T, raw string) types.IntentDecision {
	t.Helper()
	d := NewDetector(Options{})
	return d.Detect(context.Background(), types.NewQuery(raw, "conv-1"))
}

func TestTemporalIndicatorTriggersSearch(t *testing.T) {
	for _, q := range []string{
		"latest go release",
		"what happened today",
		"current exchange rate",
	} {
		decision := detect(t, q)
		assert.True(t, decision.ShouldSearch, "query %q", q)
		assert.GreaterOrEqual(t, decision.Confidence, 0.5, "query %q", q)
		assert.NotEmpty(t, decision.MatchedIndicators, "query %q", q)
	}
}

func TestNoIndicatorsMeansNoSearch(t *testing.T) {
	for _, q := range []string{
		"summarize our earlier discussion about concurrency",
		"rewrite this paragraph more formally",
		"thanks, that was helpful",
	} {
		decision := detect(t, q)
		assert.False(t, decision.ShouldSearch, "query %q", q)
		assert.Zero(t, decision.Confidence, "query %q", q)
		assert.Empty(t, decision.MatchedIndicators, "query %q", q)
		assert.Empty(t, decision.SuggestedQuery, "query %q", q)
	}
}

func TestQuestionPatternRecordsIndicator(t *testing.T) {
	// Patterns without a phrase-indicator counterpart still report what
	// they matched; positive confidence always comes with indicators.
	decision := detect(t, "why is the sky blue")

	assert.InDelta(t, 1.0/3.0, decision.Confidence, 1e-9)
	assert.Equal(t, []string{"why is"}, decision.MatchedIndicators)
	assert.False(t, decision.ShouldSearch)
}

func TestPhraseAndPatternMatchReportedOnce(t *testing.T) {
	decision := detect(t, "what is a goroutine")

	// Phrase and regex both score, but the indicator is listed once.
	assert.InDelta(t, 2.0/3.0, decision.Confidence, 1e-9)
	assert.Equal(t, []string{"what is"}, decision.MatchedIndicators)
	assert.True(t, decision.ShouldSearch)
}

func TestWeatherQueryScoresHigh(t *testing.T) {
	decision := detect(t, "what's the weather in Paris today")

	assert.True(t, decision.ShouldSearch)
	assert.GreaterOrEqual(t, decision.Confidence, 0.5)
	assert.Contains(t, decision.MatchedIndicators, "weather")
	assert.Contains(t, decision.MatchedIndicators, "today")
}

func TestConfidenceCappedAtOne(t *testing.T) {
	decision := detect(t, "latest breaking news update on the stock market today")
	assert.Equal(t, 1.0, decision.Confidence)
}

func TestSuggestQueryStripsFiller(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"can you tell me the latest bitcoin price?", "the latest bitcoin price"},
		{"please tell me about the weather in Oslo", "the weather in Oslo"},
		{"what is Go? (the language)", "what is Go the language"},
		{"c++ vs go-lang", "c++ vs go-lang"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SuggestQuery(tt.raw), "raw %q", tt.raw)
	}
}

func TestDetectUsesCache(t *testing.T) {
	cache := rescache.NewMemory(16)
	d := NewDetector(Options{Cache: cache})
	ctx := context.Background()

	first := d.Detect(ctx, types.NewQuery("latest news", "conv-1"))
	require.True(t, first.ShouldSearch)

	// Same normalized text hits the cache regardless of conversation.
	second := d.Detect(ctx, types.NewQuery("  Latest   NEWS ", "conv-2"))
	assert.Equal(t, first, second)
}

func TestCustomThreshold(t *testing.T) {
	strict := NewDetector(Options{Threshold: 0.9})
	decision := strict.Detect(context.Background(), types.NewQuery("latest release", "c"))

	// One temporal match alone does not clear a 0.9 bar.
	assert.False(t, decision.ShouldSearch)
	assert.InDelta(t, 2.0/3.0, decision.Confidence, 1e-9)
}
