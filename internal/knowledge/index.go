// Package knowledge persists embedded documents and conversation turns in
// SQLite and serves nearest-neighbor lookups over them. With the sqlite_vec
// build tag, distance is computed in SQL; the pure Go build loads candidate
// vectors and ranks them in process.
package knowledge

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bfforex/EvolveUI/pkg/types"
)

// Common errors
var (
	ErrNotFound     = errors.New("document not found")
	ErrEmptyContent = errors.New("document content cannot be empty")
	ErrNoVector     = errors.New("document has no embedding vector")
)

// Document is one indexed unit: a knowledge chunk or a conversation turn.
type Document struct {
	ID             string
	SourceType     types.SourceType
	ConversationID string // Only for conversation turns
	Content        string
	Metadata       map[string]types.MetadataValue
	IndexedAt      time.Time
}

// Index is the SQLite-backed vector store.
type Index struct {
	db *sql.DB
}

// Open opens (or creates) the index database and applies migrations.
// Use ":memory:" for an ephemeral index.
func Open(dbPath string) (*Index, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL for read concurrency, single writer for SQLite's benefit.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return &Index{db: db}, nil
}

// Close closes the underlying database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Upsert stores a document and its embedding atomically, replacing any
// previous version with the same id.
func (ix *Index) Upsert(ctx context.Context, doc Document, vector []float32, provider, model string) error {
	if doc.Content == "" {
		return ErrEmptyContent
	}
	if len(vector) == 0 {
		return ErrNoVector
	}
	if doc.IndexedAt.IsZero() {
		doc.IndexedAt = time.Now().UTC()
	}

	metadataJSON, err := encodeMetadata(doc.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	hash := sha256.Sum256([]byte(doc.Content))

	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, source_type, conversation_id, content, content_hash, metadata, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_type = excluded.source_type,
			conversation_id = excluded.conversation_id,
			content = excluded.content,
			content_hash = excluded.content_hash,
			metadata = excluded.metadata,
			indexed_at = excluded.indexed_at`,
		doc.ID, string(doc.SourceType), nullable(doc.ConversationID),
		doc.Content, hash[:], metadataJSON, doc.IndexedAt)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO embeddings (document_id, vector, dimension, provider, model)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			vector = excluded.vector,
			dimension = excluded.dimension,
			provider = excluded.provider,
			model = excluded.model`,
		doc.ID, serializeVector(vector), len(vector), provider, model)
	if err != nil {
		return fmt.Errorf("upsert embedding: %w", err)
	}

	return tx.Commit()
}

// Query runs a nearest-neighbor lookup. sourceFilter narrows by source
// type; empty means both. Hits are sorted by similarity descending with
// recency breaking ties.
func (ix *Index) Query(ctx context.Context, vector []float32, topK int, sourceFilter types.SourceType) ([]types.KnowledgeHit, error) {
	if topK <= 0 {
		return nil, nil
	}

	if VectorExtensionAvailable {
		return ix.queryOptimized(ctx, vector, topK, sourceFilter)
	}
	return ix.queryFallback(ctx, vector, topK, sourceFilter)
}

// queryOptimized computes cosine distance in SQL via sqlite-vec.
func (ix *Index) queryOptimized(ctx context.Context, vector []float32, topK int, sourceFilter types.SourceType) ([]types.KnowledgeHit, error) {
	query := `
		SELECT d.id, d.content, d.source_type, d.metadata, d.indexed_at,
		       1.0 - vec_distance_cosine(e.vector, ?) AS similarity
		FROM documents d
		INNER JOIN embeddings e ON d.id = e.document_id`
	args := []interface{}{serializeVector(vector)}

	if sourceFilter != "" {
		query += " WHERE d.source_type = ?"
		args = append(args, string(sourceFilter))
	}

	query += " ORDER BY similarity DESC, d.indexed_at DESC LIMIT ?"
	args = append(args, topK)

	rows, err := ix.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanHits(rows)
}

// queryFallback loads candidate vectors and ranks them in Go.
func (ix *Index) queryFallback(ctx context.Context, vector []float32, topK int, sourceFilter types.SourceType) ([]types.KnowledgeHit, error) {
	query := `
		SELECT d.id, d.content, d.source_type, d.metadata, d.indexed_at, e.vector
		FROM documents d
		INNER JOIN embeddings e ON d.id = e.document_id`
	args := []interface{}{}

	if sourceFilter != "" {
		query += " WHERE d.source_type = ?"
		args = append(args, string(sourceFilter))
	}

	rows, err := ix.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load embeddings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var hits []types.KnowledgeHit
	for rows.Next() {
		var (
			hit          types.KnowledgeHit
			sourceType   string
			metadataJSON sql.NullString
			blob         []byte
		)
		if err := rows.Scan(&hit.DocumentID, &hit.Text, &sourceType, &metadataJSON, &hit.IndexedAt, &blob); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}

		candidate := deserializeVector(blob)
		if len(candidate) != len(vector) {
			continue // Dimension mismatch, likely an embedder change
		}

		similarity := cosineSimilarity(vector, candidate)
		if similarity < 0 {
			similarity = 0
		}

		hit.SourceType = types.SourceType(sourceType)
		hit.SimilarityScore = similarity
		if metadataJSON.Valid {
			hit.Metadata, err = decodeMetadata(metadataJSON.String)
			if err != nil {
				return nil, fmt.Errorf("decode metadata: %w", err)
			}
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].SimilarityScore != hits[j].SimilarityScore {
			return hits[i].SimilarityScore > hits[j].SimilarityScore
		}
		return hits[i].IndexedAt.After(hits[j].IndexedAt)
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// scanHits collects pre-ranked rows from the SQL distance path.
func scanHits(rows *sql.Rows) ([]types.KnowledgeHit, error) {
	var hits []types.KnowledgeHit
	for rows.Next() {
		var (
			hit          types.KnowledgeHit
			sourceType   string
			metadataJSON sql.NullString
		)
		if err := rows.Scan(&hit.DocumentID, &hit.Text, &sourceType, &metadataJSON,
			&hit.IndexedAt, &hit.SimilarityScore); err != nil {
			return nil, fmt.Errorf("scan hit: %w", err)
		}

		hit.SourceType = types.SourceType(sourceType)
		if hit.SimilarityScore < 0 {
			hit.SimilarityScore = 0
		}
		if metadataJSON.Valid {
			var err error
			hit.Metadata, err = decodeMetadata(metadataJSON.String)
			if err != nil {
				return nil, fmt.Errorf("decode metadata: %w", err)
			}
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

// Delete removes a document and, via cascade, its embedding.
func (ix *Index) Delete(ctx context.Context, documentID string) error {
	result, err := ix.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", documentID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByConversation removes every turn indexed for a conversation.
func (ix *Index) DeleteByConversation(ctx context.Context, conversationID string) error {
	_, err := ix.db.ExecContext(ctx,
		"DELETE FROM documents WHERE conversation_id = ?", conversationID)
	if err != nil {
		return fmt.Errorf("delete conversation documents: %w", err)
	}
	return nil
}

// Count returns the number of documents per source type.
func (ix *Index) Count(ctx context.Context, sourceFilter types.SourceType) (int, error) {
	query := "SELECT COUNT(*) FROM documents"
	args := []interface{}{}
	if sourceFilter != "" {
		query += " WHERE source_type = ?"
		args = append(args, string(sourceFilter))
	}

	var count int
	if err := ix.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}

func encodeMetadata(metadata map[string]types.MetadataValue) (sql.NullString, error) {
	if len(metadata) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeMetadata(data string) (map[string]types.MetadataValue, error) {
	var metadata map[string]types.MetadataValue
	if err := json.Unmarshal([]byte(data), &metadata); err != nil {
		return nil, err
	}
	return metadata, nil
}

func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
