// Package assembler merges search results, knowledge hits, and recent
// conversation turns into a single ranked, budget-constrained context.
package assembler

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/bfforex/EvolveUI/pkg/types"
)

const (
	// DefaultMaxSources caps the number of context sources per request.
	DefaultMaxSources = 5
	// DefaultMaxCharacters caps the total snippet characters per request.
	DefaultMaxCharacters = 4000
	// DefaultMinSimilarity filters knowledge hits before merging.
	DefaultMinSimilarity = 0.6
	// SearchRelevance is the fixed relevance assigned to fresh search
	// results so they rank on the same scale as similarity scores.
	SearchRelevance = 0.8

	knowledgeSnippetLimit    = 500
	conversationSnippetLimit = 300
)

// Budget bounds the size of an assembled context.
type Budget struct {
	MaxSources    int
	MaxCharacters int
}

func (b Budget) withDefaults() Budget {
	if b.MaxSources <= 0 {
		b.MaxSources = DefaultMaxSources
	}
	if b.MaxCharacters <= 0 {
		b.MaxCharacters = DefaultMaxCharacters
	}
	return b
}

// Options configures an Assembler.
type Options struct {
	Budget        Budget
	MinSimilarity float64
	Logger        *zap.Logger
}

// Assembler ranks and truncates context contributions. It is pure
// computation and safe for concurrent use.
type Assembler struct {
	budget        Budget
	minSimilarity float64
	log           *zap.Logger
}

// New creates an Assembler from options, applying defaults for any
// unset field.
func New(opts Options) *Assembler {
	if opts.MinSimilarity <= 0 {
		opts.MinSimilarity = DefaultMinSimilarity
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Assembler{
		budget:        opts.Budget.withDefaults(),
		minSimilarity: opts.MinSimilarity,
		log:           opts.Logger,
	}
}

// Assemble merges the contributions into one ranked context. Knowledge
// hits below the similarity threshold are dropped; the rest interleave
// with search results by relevance on a shared [0,1] scale. Conversation
// turns always rank below both. The merged list is truncated to the
// budget by dropping the lowest-ranked sources first.
//
// searchInvoked reports whether the orchestrator ran for this request;
// SearchUsed is true only when it ran and produced at least one result.
func (a *Assembler) Assemble(searchResults []types.SearchResult, knowledgeHits []types.KnowledgeHit, recentTurns []types.ConversationTurn, searchInvoked bool) *types.AssembledContext {
	ranked := make([]types.ContextSource, 0, len(searchResults)+len(knowledgeHits))

	for _, hit := range knowledgeHits {
		// Conversation hits pass a looser gate in the retriever.
		if hit.SourceType == types.SourceKnowledge && hit.SimilarityScore < a.minSimilarity {
			continue
		}
		srcType := types.ContextSourceKnowledge
		limit := knowledgeSnippetLimit
		if hit.SourceType == types.SourceConversation {
			srcType = types.ContextSourceConversation
			limit = conversationSnippetLimit
		}
		ranked = append(ranked, types.ContextSource{
			Type:      srcType,
			Title:     hit.DocumentID,
			Snippet:   truncate(hit.Text, limit),
			Relevance: hit.SimilarityScore,
		})
	}
	for _, result := range searchResults {
		ranked = append(ranked, types.ContextSource{
			Type:      types.ContextSourceSearch,
			Title:     result.Title,
			URL:       result.URL,
			Snippet:   truncate(result.Snippet, knowledgeSnippetLimit),
			Relevance: SearchRelevance,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Relevance > ranked[j].Relevance
	})

	// Recent turns rank below everything else regardless of score.
	for _, turn := range recentTurns {
		if strings.TrimSpace(turn.Content) == "" {
			continue
		}
		ranked = append(ranked, types.ContextSource{
			Type:      types.ContextSourceConversation,
			Title:     turn.Role,
			Snippet:   truncate(turn.Content, conversationSnippetLimit),
			Relevance: 0,
		})
	}

	sources, total := a.applyBudget(ranked)

	// Recent turns carry zero relevance, so any conversation source
	// with a positive score came out of the vector store.
	ragUsed := false
	for _, src := range sources {
		if src.Type == types.ContextSourceKnowledge ||
			(src.Type == types.ContextSourceConversation && src.Relevance > 0) {
			ragUsed = true
			break
		}
	}

	ctx := &types.AssembledContext{
		Sources:         sources,
		SearchUsed:      searchInvoked && len(searchResults) > 0,
		RAGUsed:         ragUsed,
		TotalCharacters: total,
	}
	a.log.Debug("context assembled",
		zap.Int("sources", len(sources)),
		zap.Int("characters", total),
		zap.Bool("search_used", ctx.SearchUsed),
		zap.Bool("rag_used", ctx.RAGUsed))
	return ctx
}

// applyBudget keeps the highest-ranked prefix that fits both the source
// count and the character cap.
func (a *Assembler) applyBudget(ranked []types.ContextSource) ([]types.ContextSource, int) {
	sources := make([]types.ContextSource, 0, a.budget.MaxSources)
	total := 0
	for _, src := range ranked {
		if len(sources) >= a.budget.MaxSources {
			break
		}
		if total+len(src.Snippet) > a.budget.MaxCharacters {
			break
		}
		sources = append(sources, src)
		total += len(src.Snippet)
	}
	return sources, total
}

// FormatPrompt renders an assembled context into the prompt text handed
// to the chat model. An empty context yields the bare user message.
func FormatPrompt(ctx *types.AssembledContext, userMessage string) string {
	if ctx == nil || ctx.Empty() {
		return userMessage
	}

	parts := make([]string, 0, len(ctx.Sources))
	for _, src := range ctx.Sources {
		switch src.Type {
		case types.ContextSourceSearch:
			parts = append(parts, fmt.Sprintf("Web result (%s): %s", src.URL, src.Snippet))
		case types.ContextSourceConversation:
			parts = append(parts, "Previous conversation: "+src.Snippet)
		default:
			parts = append(parts, "Knowledge: "+src.Snippet)
		}
	}
	contextText := strings.Join(parts, "\n\n")

	return fmt.Sprintf(`Context Information:
%s

User Question: %s

Please answer the user's question using the provided context when relevant. If the context doesn't contain relevant information, answer based on your general knowledge.`, contextText, userMessage)
}

// truncate cuts s at the last rune boundary at or below limit bytes.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
