package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fundscope/fundscope/internal/ai"
	"github.com/fundscope/fundscope/internal/config"
	"github.com/fundscope/fundscope/internal/db"
	"github.com/fundscope/fundscope/internal/extract"
	"github.com/fundscope/fundscope/internal/model"
	"github.com/fundscope/fundscope/internal/repo"
)

func openTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping postgres test")
	}
	conn, err := db.Open(config.DatabaseConfig{
		Host:     host,
		Port:     5432,
		User:     "fundscope",
		Password: "fundscope_pass",
		DBName:   "fundscope_test",
		SSLMode:  "disable",
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return conn, func() {
		_ = conn.Close()
	}
}

type fakeExtractor struct {
	pages []model.Page
	err   error
}

func (e *fakeExtractor) Extract(ctx context.Context, path string) ([]model.Page, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.pages, nil
}

type fakeStore struct{}

func (fakeStore) Save(ctx context.Context, key string, r io.Reader, size int64) error { return nil }
func (fakeStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("%PDF-1.4 stub")), nil
}
func (fakeStore) Delete(ctx context.Context, key string) error { return nil }

type countingGenerator struct {
	reply string
	calls int
}

func (g *countingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls++
	return g.reply, nil
}

type staticEmbedder struct{}

func (staticEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}
func (staticEmbedder) ModelName() string { return "static" }

type failingEmbedder struct{}

func (failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, fmt.Errorf("embedding backend down")
}
func (failingEmbedder) ModelName() string { return "failing" }

type ingestFixture struct {
	conn      *sql.DB
	service   *IngestService
	documents *repo.DocumentRepo
	txns      *repo.TransactionRepo
	vectors   *repo.VectorRepo
	gen       *countingGenerator
	fundID    int64
	docID     int64
}

func newIngestFixture(t *testing.T, extractor *fakeExtractor, reply string) (*ingestFixture, func()) {
	return newIngestFixtureEmbedder(t, extractor, reply, staticEmbedder{})
}

func newIngestFixtureEmbedder(t *testing.T, extractor *fakeExtractor, reply string, embedder ai.IEmbedder) (*ingestFixture, func()) {
	t.Helper()
	conn, cleanup := openTestDB(t)

	funds := repo.NewFundRepo(conn)
	fund := &model.Fund{
		Name:        fmt.Sprintf("Ingest Fund %d", time.Now().UnixNano()),
		GPName:      "GP",
		FundType:    "Buyout",
		VintageYear: 2022,
	}
	require.NoError(t, funds.Create(context.Background(), fund))

	documents := repo.NewDocumentRepo(conn)
	doc := &model.Document{
		FundID:        fund.ID,
		FileName:      "report.pdf",
		FileKey:       "funds/report.pdf",
		ParsingStatus: model.ParsingStatusPending,
	}
	require.NoError(t, documents.Create(context.Background(), doc))

	txns := repo.NewTransactionRepo(conn)
	vectors := repo.NewVectorRepo(conn, embedder, 3)
	if err := vectors.EnsureSchema(context.Background()); err != nil {
		cleanup()
		t.Skipf("pgvector not available: %v", err)
	}

	gen := &countingGenerator{reply: reply}
	svc := NewIngestService(
		documents, txns, vectors, fakeStore{}, extractor,
		ai.NewChunker(1000, 200), extract.NewTextExtractor(gen),
	)
	fixture := &ingestFixture{
		conn:      conn,
		service:   svc,
		documents: documents,
		txns:      txns,
		vectors:   vectors,
		gen:       gen,
		fundID:    fund.ID,
		docID:     doc.ID,
	}
	return fixture, func() {
		_ = funds.Delete(context.Background(), fund.ID)
		_ = vectors.Clear(context.Background(), &fund.ID)
		cleanup()
	}
}

func TestIngestRunWithTables(t *testing.T) {
	extractor := &fakeExtractor{pages: []model.Page{
		{
			Number: 1,
			Text:   "Capital call notice. The fund called capital twice this period.",
			Tables: []model.RawTable{{
				Page:       1,
				TableIndex: 1,
				Headers:    []string{"Date", "Call Number", "Amount", "Description"},
				Rows: [][]string{
					{"2023-01-15", "Initial", "$1,000,000", "First call"},
					{"2023-06-30", "Second", "$500,000", ""},
				},
			}},
		},
		{
			Number: 2,
			Text:   "Nothing structured on this page. Just narrative.",
			Tables: []model.RawTable{{
				Page:       2,
				TableIndex: 1,
				Headers:    []string{"Portfolio Company", "Sector", "Ownership"},
				Rows: [][]string{
					{"Acme Widgets", "Industrials", "35%"},
				},
			}},
		},
	}}
	fixture, cleanup := newIngestFixture(t, extractor, "")
	defer cleanup()

	stats, err := fixture.service.Run(context.Background(), fixture.docID)
	require.NoError(t, err)

	require.Equal(t, 2, stats.PagesProcessed)
	// The unclassified portfolio table counts as found but yields no records.
	require.Equal(t, 2, stats.TablesFound)
	require.Equal(t, 2, stats.CapitalCalls)
	require.Zero(t, stats.Distributions)
	require.Zero(t, stats.Adjustments)
	require.Empty(t, stats.Errors)
	require.Greater(t, stats.TextChunks, 0)

	// Structured extraction succeeded, so the fallback never fires.
	require.Zero(t, fixture.gen.calls)

	doc, err := fixture.documents.GetByID(context.Background(), fixture.docID)
	require.NoError(t, err)
	require.Equal(t, model.ParsingStatusCompleted, doc.ParsingStatus)
	require.Empty(t, doc.ErrorMessage)

	calls, err := fixture.txns.ListCapitalCalls(context.Background(), fixture.fundID)
	require.NoError(t, err)
	require.Len(t, calls, 2)
	require.Equal(t, "Initial", calls[0].CallType)

	results := fixture.vectors.Search(context.Background(), "capital", 10, model.SearchFilter{FundID: &fixture.fundID})
	require.Len(t, results, stats.TextChunks)
	require.Equal(t, "report.pdf", results[0].Metadata.Source)
}

func TestIngestRunFallsBackWithoutTables(t *testing.T) {
	extractor := &fakeExtractor{pages: []model.Page{
		{Number: 1, Text: "On January 10, 2025 the fund called $1,000,000 from investors."},
	}}
	reply := `{
	  "capital_calls": [
	    {"date": "2025-01-10", "amount": 1000000, "call_type": "Initial", "description": "first close"}
	  ],
	  "distributions": []
	}`
	fixture, cleanup := newIngestFixture(t, extractor, reply)
	defer cleanup()

	stats, err := fixture.service.Run(context.Background(), fixture.docID)
	require.NoError(t, err)

	require.Equal(t, 1, fixture.gen.calls)
	require.Zero(t, stats.TablesFound)
	require.Equal(t, 1, stats.CapitalCalls)

	calls, err := fixture.txns.ListCapitalCalls(context.Background(), fixture.fundID)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	require.Equal(t, "Initial", calls[0].CallType)

	doc, err := fixture.documents.GetByID(context.Background(), fixture.docID)
	require.NoError(t, err)
	require.Equal(t, model.ParsingStatusCompleted, doc.ParsingStatus)
}

func TestIngestRunExtractionFailure(t *testing.T) {
	extractor := &fakeExtractor{err: fmt.Errorf("corrupt pdf")}
	fixture, cleanup := newIngestFixture(t, extractor, "")
	defer cleanup()

	_, err := fixture.service.Run(context.Background(), fixture.docID)
	require.Error(t, err)

	doc, err := fixture.documents.GetByID(context.Background(), fixture.docID)
	require.NoError(t, err)
	require.Equal(t, model.ParsingStatusFailed, doc.ParsingStatus)
	require.Contains(t, doc.ErrorMessage, "pdf extraction failed")
}

func TestIngestRunIndexingFailureMarksFailed(t *testing.T) {
	extractor := &fakeExtractor{pages: []model.Page{
		{Number: 1, Text: "Quarterly letter to limited partners. Performance was flat."},
	}}
	fixture, cleanup := newIngestFixtureEmbedder(t, extractor, "", failingEmbedder{})
	defer cleanup()

	_, err := fixture.service.Run(context.Background(), fixture.docID)
	require.Error(t, err)
	require.Contains(t, err.Error(), "embedding backend down")

	doc, err := fixture.documents.GetByID(context.Background(), fixture.docID)
	require.NoError(t, err)
	require.Equal(t, model.ParsingStatusFailed, doc.ParsingStatus)
	require.Contains(t, doc.ErrorMessage, "chunk indexing failed")
}
