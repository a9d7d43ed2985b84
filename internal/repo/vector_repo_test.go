package repo_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fundscope/fundscope/internal/model"
	"github.com/fundscope/fundscope/internal/repo"
)

// fakeEmbedder maps known texts onto fixed directions so nearest-neighbor
// ordering is deterministic.
type fakeEmbedder struct {
	vectors map[string][]float32
}

func (e *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return []float32{1, 1, 1}, nil
}

func (e *fakeEmbedder) ModelName() string {
	return "fake-embedder"
}

func newTestVectorRepo(t *testing.T) (*repo.VectorRepo, func()) {
	t.Helper()
	conn, cleanup := openTestDB(t)
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"capital was called":  {1, 0, 0},
		"money went back out": {0, 1, 0},
		"about capital calls": {0.9, 0.1, 0},
	}}
	vectors := repo.NewVectorRepo(conn, embedder, 3)
	if err := vectors.EnsureSchema(context.Background()); err != nil {
		cleanup()
		t.Skipf("pgvector not available: %v", err)
	}
	if err := vectors.Clear(context.Background(), nil); err != nil {
		cleanup()
		t.Fatalf("clear: %v", err)
	}
	return vectors, cleanup
}

func TestVectorRepoAddAndSearch(t *testing.T) {
	vectors, cleanup := newTestVectorRepo(t)
	defer cleanup()
	ctx := context.Background()

	id1, err := vectors.Add(ctx, "capital was called", model.ChunkMetadata{
		DocumentID: 1, FundID: 10, Page: 2, ChunkIndex: 0, Source: "q1.pdf",
	})
	require.NoError(t, err)
	require.NotZero(t, id1)

	_, err = vectors.Add(ctx, "money went back out", model.ChunkMetadata{
		DocumentID: 2, FundID: 20, Page: 1, ChunkIndex: 0, Source: "q2.pdf",
	})
	require.NoError(t, err)

	results := vectors.Search(ctx, "about capital calls", 5, model.SearchFilter{})
	require.Len(t, results, 2)
	require.Equal(t, "capital was called", results[0].Content)
	require.Greater(t, results[0].Score, results[1].Score)
	require.Equal(t, int64(10), results[0].FundID)
	require.Equal(t, 2, results[0].Metadata.Page)
	require.Equal(t, "q1.pdf", results[0].Metadata.Source)
}

func TestVectorRepoSearchFilters(t *testing.T) {
	vectors, cleanup := newTestVectorRepo(t)
	defer cleanup()
	ctx := context.Background()

	_, err := vectors.Add(ctx, "capital was called", model.ChunkMetadata{DocumentID: 1, FundID: 10})
	require.NoError(t, err)
	_, err = vectors.Add(ctx, "money went back out", model.ChunkMetadata{DocumentID: 2, FundID: 20})
	require.NoError(t, err)

	fundID := int64(20)
	results := vectors.Search(ctx, "about capital calls", 5, model.SearchFilter{FundID: &fundID})
	require.Len(t, results, 1)
	require.Equal(t, int64(20), results[0].FundID)

	docID := int64(1)
	results = vectors.Search(ctx, "about capital calls", 5, model.SearchFilter{DocumentID: &docID})
	require.Len(t, results, 1)
	require.Equal(t, int64(1), results[0].DocumentID)

	missing := int64(-5)
	require.Empty(t, vectors.Search(ctx, "about capital calls", 5, model.SearchFilter{FundID: &missing}))
}

func TestVectorRepoEnsureIndexAfterGrowth(t *testing.T) {
	conn, cleanup := openTestDB(t)
	defer cleanup()
	ctx := context.Background()

	vectors := repo.NewVectorRepo(conn, &fakeEmbedder{}, 3)
	if err := vectors.EnsureSchema(ctx); err != nil {
		t.Skipf("pgvector not available: %v", err)
	}
	require.NoError(t, vectors.Clear(ctx, nil))
	_, err := conn.ExecContext(ctx, `DROP INDEX IF EXISTS document_embeddings_embedding_idx`)
	require.NoError(t, err)

	indexExists := func() bool {
		var n int
		err := conn.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM pg_indexes WHERE indexname = 'document_embeddings_embedding_idx'`,
		).Scan(&n)
		require.NoError(t, err)
		return n > 0
	}

	require.NoError(t, vectors.EnsureIndex(ctx))
	require.False(t, indexExists())

	for i := 0; i < 120; i++ {
		_, err := vectors.Add(ctx, fmt.Sprintf("chunk body %d", i), model.ChunkMetadata{DocumentID: 1, FundID: 30})
		require.NoError(t, err)
	}
	require.NoError(t, vectors.EnsureIndex(ctx))
	require.True(t, indexExists())

	require.NoError(t, vectors.Clear(ctx, nil))
}

func TestVectorRepoClear(t *testing.T) {
	vectors, cleanup := newTestVectorRepo(t)
	defer cleanup()
	ctx := context.Background()

	_, err := vectors.Add(ctx, "capital was called", model.ChunkMetadata{DocumentID: 1, FundID: 10})
	require.NoError(t, err)
	_, err = vectors.Add(ctx, "money went back out", model.ChunkMetadata{DocumentID: 2, FundID: 20})
	require.NoError(t, err)

	fundID := int64(10)
	require.NoError(t, vectors.Clear(ctx, &fundID))
	require.Len(t, vectors.Search(ctx, "about capital calls", 5, model.SearchFilter{}), 1)

	require.NoError(t, vectors.ClearDocument(ctx, 2))
	require.Empty(t, vectors.Search(ctx, "about capital calls", 5, model.SearchFilter{}))
}
