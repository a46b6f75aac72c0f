package knowledge

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/bfforex/EvolveUI/internal/embedder"
	"github.com/bfforex/EvolveUI/internal/metrics"
	"github.com/bfforex/EvolveUI/pkg/types"
)

// Retriever defaults
const (
	DefaultMaxDocuments          = 3
	DefaultMaxConversations      = 2
	DefaultDocumentThreshold     = 0.6
	DefaultConversationThreshold = 0.2
)

// RetrieverOptions tunes retrieval limits and thresholds.
type RetrieverOptions struct {
	MaxDocuments          int
	MaxConversations      int
	DocumentThreshold     float64
	ConversationThreshold float64
	Log                   *zap.Logger
}

func (o *RetrieverOptions) applyDefaults() {
	if o.MaxDocuments <= 0 {
		o.MaxDocuments = DefaultMaxDocuments
	}
	if o.MaxConversations <= 0 {
		o.MaxConversations = DefaultMaxConversations
	}
	if o.DocumentThreshold <= 0 {
		o.DocumentThreshold = DefaultDocumentThreshold
	}
	if o.ConversationThreshold <= 0 {
		o.ConversationThreshold = DefaultConversationThreshold
	}
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
}

// Retriever embeds a query and pulls the closest knowledge documents and
// conversation turns from the index. Retrieval failures are soft: the
// request proceeds with an empty hit list.
type Retriever struct {
	index *Index
	emb   embedder.Embedder
	opts  RetrieverOptions
}

// NewRetriever creates a Retriever over an index and embedding provider.
func NewRetriever(index *Index, emb embedder.Embedder, opts RetrieverOptions) *Retriever {
	opts.applyDefaults()
	return &Retriever{index: index, emb: emb, opts: opts}
}

// Retrieve returns knowledge and conversation hits above their thresholds,
// sorted by similarity descending with recency breaking ties. It never
// returns an error; failures degrade to an empty result.
func (r *Retriever) Retrieve(ctx context.Context, query string) []types.KnowledgeHit {
	start := time.Now()

	emb, err := r.emb.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: query})
	if err != nil {
		metrics.KnowledgeRetrievals.WithLabelValues("embed_error").Inc()
		r.opts.Log.Warn("query embedding failed, skipping knowledge retrieval", zap.Error(err))
		return nil
	}

	docs := r.retrieveSource(ctx, emb.Vector, types.SourceKnowledge,
		r.opts.MaxDocuments, r.opts.DocumentThreshold)
	turns := r.retrieveSource(ctx, emb.Vector, types.SourceConversation,
		r.opts.MaxConversations, r.opts.ConversationThreshold)

	hits := append(docs, turns...)
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].SimilarityScore != hits[j].SimilarityScore {
			return hits[i].SimilarityScore > hits[j].SimilarityScore
		}
		return hits[i].IndexedAt.After(hits[j].IndexedAt)
	})

	if len(hits) > 0 {
		metrics.KnowledgeRetrievals.WithLabelValues("hit").Inc()
	} else {
		metrics.KnowledgeRetrievals.WithLabelValues("empty").Inc()
	}
	r.opts.Log.Debug("knowledge retrieval complete",
		zap.Int("hits", len(hits)),
		zap.Duration("elapsed", time.Since(start)))

	return hits
}

func (r *Retriever) retrieveSource(ctx context.Context, vector []float32, source types.SourceType, topK int, threshold float64) []types.KnowledgeHit {
	hits, err := r.index.Query(ctx, vector, topK, source)
	if err != nil {
		metrics.KnowledgeRetrievals.WithLabelValues("index_error").Inc()
		r.opts.Log.Warn("index lookup failed",
			zap.String("source", string(source)),
			zap.Error(err))
		return nil
	}

	filtered := hits[:0]
	for _, hit := range hits {
		if hit.SimilarityScore >= threshold {
			filtered = append(filtered, hit)
		}
	}
	return filtered
}
