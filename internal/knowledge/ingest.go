package knowledge

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bfforex/EvolveUI/internal/embedder"
	"github.com/bfforex/EvolveUI/pkg/types"
)

// Ingestor writes knowledge documents and conversation turns into the
// index, embedding them on the way in. Long documents are chunked and each
// chunk becomes its own indexed unit.
type Ingestor struct {
	index *Index
	emb   embedder.Embedder
	log   *zap.Logger
}

// NewIngestor creates an Ingestor.
func NewIngestor(index *Index, emb embedder.Embedder, log *zap.Logger) *Ingestor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ingestor{index: index, emb: emb, log: log}
}

// AddDocument embeds and indexes a knowledge document, chunking it when
// it exceeds the chunk window. It returns the ids of the indexed units.
func (in *Ingestor) AddDocument(ctx context.Context, content string, metadata map[string]types.MetadataValue) ([]string, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}

	chunks := ChunkText(content, DefaultChunkWords, DefaultChunkOverlap)
	if len(chunks) == 0 {
		return nil, ErrEmptyContent
	}

	batch, err := in.emb.GenerateBatch(ctx, embedder.BatchEmbeddingRequest{Texts: chunks})
	if err != nil {
		return nil, fmt.Errorf("embed document: %w", err)
	}

	now := time.Now().UTC()
	ids := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		doc := Document{
			ID:         uuid.NewString(),
			SourceType: types.SourceKnowledge,
			Content:    chunk,
			Metadata:   chunkMetadata(metadata, i, len(chunks)),
			IndexedAt:  now,
		}
		emb := batch.Embeddings[i]
		if err := in.index.Upsert(ctx, doc, emb.Vector, emb.Provider, emb.Model); err != nil {
			return ids, fmt.Errorf("index chunk %d: %w", i, err)
		}
		ids = append(ids, doc.ID)
	}

	in.log.Info("document indexed",
		zap.Int("chunks", len(chunks)),
		zap.Int("characters", len(content)))
	return ids, nil
}

// IndexTurn embeds and indexes one conversation turn so later queries can
// recall prior discussion.
func (in *Ingestor) IndexTurn(ctx context.Context, conversationID string, turn types.ConversationTurn) (string, error) {
	if turn.Content == "" {
		return "", ErrEmptyContent
	}

	emb, err := in.emb.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: turn.Content})
	if err != nil {
		return "", fmt.Errorf("embed turn: %w", err)
	}

	indexedAt := time.Now().UTC()
	if turn.Timestamp > 0 {
		indexedAt = time.Unix(turn.Timestamp, 0).UTC()
	}

	doc := Document{
		ID:             uuid.NewString(),
		SourceType:     types.SourceConversation,
		ConversationID: conversationID,
		Content:        turn.Content,
		Metadata: map[string]types.MetadataValue{
			"role": types.StringValue(turn.Role),
		},
		IndexedAt: indexedAt,
	}

	if err := in.index.Upsert(ctx, doc, emb.Vector, emb.Provider, emb.Model); err != nil {
		return "", fmt.Errorf("index turn: %w", err)
	}
	return doc.ID, nil
}

// chunkMetadata copies the document metadata and records chunk position
// when the document was split.
func chunkMetadata(metadata map[string]types.MetadataValue, i, total int) map[string]types.MetadataValue {
	out := make(map[string]types.MetadataValue, len(metadata)+2)
	for k, v := range metadata {
		out[k] = v
	}
	if total > 1 {
		out["chunk"] = types.NumberValue(float64(i))
		out["chunk_total"] = types.NumberValue(float64(total))
	}
	return out
}
