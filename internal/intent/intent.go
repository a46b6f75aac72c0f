// Package intent classifies queries as search-worthy or not using lexical
// scoring over fixed indicator classes. Detection is pure computation with
// an optional TTL cache in front keyed by normalized query text.
package intent

import (
	"context"
	"regexp"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bfforex/EvolveUI/internal/metrics"
	"github.com/bfforex/EvolveUI/internal/rescache"
	"github.com/bfforex/EvolveUI/pkg/types"
)

// DefaultThreshold is the minimum confidence for shouldSearch.
const DefaultThreshold = 0.5

// scoreDivisor normalizes the raw indicator score to [0,1].
const scoreDivisor = 3.0

// Indicator classes. Temporal and topic matches weigh double because they
// signal information that goes stale, which phrasing alone does not.
var (
	temporalIndicators = []string{
		"current", "latest", "recent", "today", "now", "breaking", "update",
	}

	topicIndicators = []string{
		"weather", "news", "stock", "cryptocurrency", "bitcoin",
		"election", "sports", "market",
	}

	phraseIndicators = []string{
		"what is", "who is", "where is", "when did", "how to",
		"price of", "cost of", "definition of", "meaning of",
		"search for", "lookup", "research",
	}

	questionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bwhat\s+is\b`),
		regexp.MustCompile(`\bwho\s+is\b`),
		regexp.MustCompile(`\bwhere\s+is\b`),
		regexp.MustCompile(`\bwhen\s+did\b`),
		regexp.MustCompile(`\bhow\s+to\b`),
		regexp.MustCompile(`\bhow\s+much\b`),
		regexp.MustCompile(`\bwhy\s+is\b`),
	}
)

// fillerPrefixes are conversational lead-ins stripped from the suggested
// query. Longer phrases come first so they win over their own prefixes.
var fillerPrefixes = []string{
	"can you tell me about",
	"can you tell me",
	"could you tell me",
	"please tell me about",
	"please tell me",
	"tell me about",
	"i would like to know",
	"i want to know",
	"please",
}

var queryCleaner = regexp.MustCompile(`[^\w\s\-+]`)

// Detector scores queries against the indicator classes.
type Detector struct {
	threshold float64
	cache     rescache.Cache // Optional
	cacheTTL  time.Duration
	log       *zap.Logger
}

// Options tunes a Detector. Zero values fall back to defaults.
type Options struct {
	Threshold float64
	Cache     rescache.Cache
	CacheTTL  time.Duration
	Log       *zap.Logger
}

// NewDetector creates a Detector.
func NewDetector(opts Options) *Detector {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = rescache.DefaultIntentTTL
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &Detector{
		threshold: opts.Threshold,
		cache:     opts.Cache,
		cacheTTL:  opts.CacheTTL,
		log:       opts.Log,
	}
}

// Detect classifies a query. It never fails: a cache error degrades to a
// fresh computation and the zero decision is returned for empty input.
func (d *Detector) Detect(ctx context.Context, query types.Query) types.IntentDecision {
	if query.Normalized == "" {
		return types.IntentDecision{}
	}

	cacheKey := "intent:" + query.Normalized
	if d.cache != nil {
		var cached types.IntentDecision
		if found, err := d.cache.Get(ctx, cacheKey, &cached); err == nil && found {
			metrics.CacheLookups.WithLabelValues("intent", "hit").Inc()
			return cached
		}
		metrics.CacheLookups.WithLabelValues("intent", "miss").Inc()
	}

	decision := d.score(query)

	if d.cache != nil {
		if err := d.cache.Set(ctx, cacheKey, decision, d.cacheTTL); err != nil {
			d.log.Debug("intent cache population failed", zap.Error(err))
		}
	}

	return decision
}

func (d *Detector) score(query types.Query) types.IntentDecision {
	text := query.Normalized

	score := 0
	var matched []string

	for _, w := range temporalIndicators {
		if strings.Contains(text, w) {
			score += 2
			matched = append(matched, w)
		}
	}

	for _, w := range topicIndicators {
		if strings.Contains(text, w) {
			score += 2
			matched = append(matched, w)
		}
	}

	for _, w := range phraseIndicators {
		if strings.Contains(text, w) {
			score++
			matched = append(matched, w)
		}
	}

	for _, p := range questionPatterns {
		m := p.FindString(text)
		if m == "" {
			continue
		}
		score++
		if !slices.Contains(matched, m) {
			matched = append(matched, m)
		}
	}

	confidence := float64(score) / scoreDivisor
	if confidence > 1 {
		confidence = 1
	}

	decision := types.IntentDecision{
		Confidence:        confidence,
		MatchedIndicators: matched,
		ShouldSearch:      confidence >= d.threshold,
	}
	if decision.ShouldSearch {
		decision.SuggestedQuery = SuggestQuery(query.Raw)
	}
	return decision
}

// SuggestQuery strips conversational filler and punctuation from raw query
// text, leaving the terms worth sending to a search engine.
func SuggestQuery(raw string) string {
	text := strings.TrimSpace(raw)

	lower := strings.ToLower(text)
	for _, prefix := range fillerPrefixes {
		if strings.HasPrefix(lower, prefix) {
			text = strings.TrimSpace(text[len(prefix):])
			lower = strings.ToLower(text)
		}
	}

	text = queryCleaner.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(text), " ")
}
