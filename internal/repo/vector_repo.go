package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/fundscope/fundscope/internal/ai"
	"github.com/fundscope/fundscope/internal/model"
)

// ivfflat needs a populated table to build useful lists; below this row count
// queries run as exact scans instead.
const ivfflatMinRows = 100

// VectorRepo owns the document_embeddings collection: one row per embedded
// chunk, tagged with document and fund ids for filtered retrieval. Rows are
// insert-only; cleanup happens in bulk per document or fund.
type VectorRepo struct {
	db        *sql.DB
	embedder  ai.IEmbedder
	dimension int
}

func NewVectorRepo(db *sql.DB, embedder ai.IEmbedder, dimension int) *VectorRepo {
	return &VectorRepo{db: db, embedder: embedder, dimension: dimension}
}

// EnsureSchema creates the pgvector extension and the embeddings table at the
// configured dimensionality, and builds the ivfflat index once the collection
// is big enough for it to help. Index creation is idempotent; two processes
// racing through here both succeed.
func (r *VectorRepo) EnsureSchema(ctx context.Context) error {
	logger := logutil.GetLogger(ctx)
	if _, err := r.db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("ensure pgvector extension: %w", err)
	}
	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS document_embeddings (
			id BIGSERIAL PRIMARY KEY,
			document_id BIGINT,
			fund_id BIGINT,
			content TEXT NOT NULL,
			embedding vector(%d),
			metadata JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, r.dimension)
	if _, err := r.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("create embeddings table: %w", err)
	}

	if err := r.EnsureIndex(ctx); err != nil {
		return err
	}
	logger.Info("vector store initialized", zap.Int("dimension", r.dimension))
	return nil
}

// EnsureIndex builds the ivfflat index once the collection has grown past the
// exact-scan threshold. It is idempotent and cheap below the threshold, so
// callers re-run it after each ingestion; a process that starts on a small
// collection still picks the index up once the table fills.
func (r *VectorRepo) EnsureIndex(ctx context.Context) error {
	logger := logutil.GetLogger(ctx)
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM document_embeddings`).Scan(&count); err != nil {
		return err
	}
	if count <= ivfflatMinRows {
		logger.Debug("skipping ivfflat index, not enough rows", zap.Int64("rows", count), zap.Int("min", ivfflatMinRows))
		return nil
	}
	const createIndex = `
		CREATE INDEX IF NOT EXISTS document_embeddings_embedding_idx
		ON document_embeddings USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = 100)
	`
	if _, err := r.db.ExecContext(ctx, createIndex); err != nil {
		return fmt.Errorf("create ivfflat index: %w", err)
	}
	logger.Info("ivfflat index ensured", zap.Int64("rows", count))
	return nil
}

// Add embeds content and inserts one durable row, returning its id.
// Embedding and insert failures propagate; the caller decides whether to
// abort its chunk loop.
func (r *VectorRepo) Add(ctx context.Context, content string, meta model.ChunkMetadata) (int64, error) {
	embedding, err := r.embedder.Embed(ctx, content)
	if err != nil {
		return 0, fmt.Errorf("embed content: %w", err)
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return 0, err
	}
	const query = `
		INSERT INTO document_embeddings (document_id, fund_id, content, embedding, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	var id int64
	err = r.db.QueryRowContext(ctx, query,
		meta.DocumentID, meta.FundID, content, pgvector.NewVector(embedding), metaJSON,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert embedding row: %w", err)
	}
	return id, nil
}

// Search embeds the query and returns the k nearest rows by cosine distance,
// optionally restricted by equality filters. Score is 1 - distance. Any
// failure degrades to an empty result set; retrieval is best effort and no
// minimum score is enforced here.
func (r *VectorRepo) Search(ctx context.Context, query string, k int, filter model.SearchFilter) []model.SearchResult {
	logger := logutil.GetLogger(ctx)
	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		logger.Error("query embedding failed", zap.Error(err))
		return nil
	}

	where := ""
	args := []interface{}{pgvector.NewVector(embedding)}
	if filter.DocumentID != nil {
		args = append(args, *filter.DocumentID)
		where += fmt.Sprintf(" AND document_id = $%d", len(args))
	}
	if filter.FundID != nil {
		args = append(args, *filter.FundID)
		where += fmt.Sprintf(" AND fund_id = $%d", len(args))
	}
	args = append(args, k)
	searchQuery := fmt.Sprintf(`
		SELECT id, document_id, fund_id, content, metadata,
		       1 - (embedding <=> $1) AS score
		FROM document_embeddings
		WHERE TRUE%s
		ORDER BY embedding <=> $1
		LIMIT $%d
	`, where, len(args))

	rows, err := r.db.QueryContext(ctx, searchQuery, args...)
	if err != nil {
		logger.Error("similarity search failed", zap.Error(err))
		return nil
	}
	defer rows.Close()

	var results []model.SearchResult
	for rows.Next() {
		var res model.SearchResult
		var metaJSON []byte
		if err := rows.Scan(&res.ID, &res.DocumentID, &res.FundID, &res.Content, &metaJSON, &res.Score); err != nil {
			logger.Error("similarity search scan failed", zap.Error(err))
			return nil
		}
		if len(metaJSON) > 0 {
			if err := json.Unmarshal(metaJSON, &res.Metadata); err != nil {
				logger.Warn("bad metadata on embedding row", zap.Int64("id", res.ID), zap.Error(err))
			}
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		logger.Error("similarity search failed", zap.Error(err))
		return nil
	}
	return results
}

// Clear deletes every row, or only a fund's rows when fundID is non-nil.
func (r *VectorRepo) Clear(ctx context.Context, fundID *int64) error {
	if fundID != nil {
		_, err := r.db.ExecContext(ctx, `DELETE FROM document_embeddings WHERE fund_id = $1`, *fundID)
		return err
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM document_embeddings`)
	return err
}

// ClearDocument drops a single document's rows, used when a document is
// deleted or re-ingested.
func (r *VectorRepo) ClearDocument(ctx context.Context, documentID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM document_embeddings WHERE document_id = $1`, documentID)
	return err
}
