package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/fundscope/fundscope/internal/ai"
	"github.com/fundscope/fundscope/internal/extract"
	"github.com/fundscope/fundscope/internal/filestore"
	"github.com/fundscope/fundscope/internal/model"
	"github.com/fundscope/fundscope/internal/pdf"
	"github.com/fundscope/fundscope/internal/repo"
)

// IngestService drives one document through the full pipeline: fetch the
// stored PDF, extract pages and tables, classify and parse transactions,
// fall back to the language model when tables yield nothing, then chunk and
// index the text for retrieval. Row-level problems are recorded in the run
// stats and never abort the run; extraction failures and indexing failures
// mark the document failed.
type IngestService struct {
	documents *repo.DocumentRepo
	txns      *repo.TransactionRepo
	vectors   *repo.VectorRepo
	store     filestore.Store
	extractor pdf.Extractor
	chunker   *ai.Chunker
	fallback  *extract.TextExtractor
}

func NewIngestService(
	documents *repo.DocumentRepo,
	txns *repo.TransactionRepo,
	vectors *repo.VectorRepo,
	store filestore.Store,
	extractor pdf.Extractor,
	chunker *ai.Chunker,
	fallback *extract.TextExtractor,
) *IngestService {
	return &IngestService{
		documents: documents,
		txns:      txns,
		vectors:   vectors,
		store:     store,
		extractor: extractor,
		chunker:   chunker,
		fallback:  fallback,
	}
}

// Run processes one pending document end to end and moves it to a terminal
// status. The returned stats describe the run even when it fails.
func (s *IngestService) Run(ctx context.Context, documentID int64) (model.IngestStats, error) {
	logger := logutil.GetLogger(ctx).With(zap.Int64("document_id", documentID))
	stats := model.IngestStats{}

	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		logger.Error("document not found for ingestion", zap.Error(err))
		return stats, err
	}
	if err := s.documents.SetStatus(ctx, doc.ID, model.ParsingStatusProcessing, ""); err != nil {
		logger.Error("failed to mark document processing", zap.Error(err))
		return stats, err
	}

	pages, err := s.extractPages(ctx, doc)
	if err != nil {
		logger.Error("pdf extraction failed", zap.Error(err))
		s.fail(ctx, doc.ID, fmt.Sprintf("pdf extraction failed: %v", err))
		return stats, err
	}
	stats.PagesProcessed = len(pages)

	s.ingestTables(ctx, doc, pages, &stats)
	if stats.TablesFound == 0 || (stats.CapitalCalls == 0 && stats.Distributions == 0) {
		s.ingestFallback(ctx, doc, pages, &stats)
	}
	if err := s.indexChunks(ctx, doc, pages, &stats); err != nil {
		logger.Error("chunk indexing failed", zap.Error(err))
		s.fail(ctx, doc.ID, fmt.Sprintf("chunk indexing failed: %v", err))
		return stats, err
	}
	if err := s.vectors.EnsureIndex(ctx); err != nil {
		logger.Warn("failed to refresh vector index", zap.Error(err))
	}

	// Row-level problems stay in the stats and the logs; a completed
	// document carries no error message.
	if err := s.documents.SetStatus(ctx, doc.ID, model.ParsingStatusCompleted, ""); err != nil {
		logger.Error("failed to mark document completed", zap.Error(err))
		return stats, err
	}
	logger.Info("document ingestion completed",
		zap.Int("pages", stats.PagesProcessed),
		zap.Int("tables", stats.TablesFound),
		zap.Int("capital_calls", stats.CapitalCalls),
		zap.Int("distributions", stats.Distributions),
		zap.Int("adjustments", stats.Adjustments),
		zap.Int("text_chunks", stats.TextChunks),
		zap.Int("row_errors", len(stats.Errors)),
	)
	return stats, nil
}

func (s *IngestService) fail(ctx context.Context, documentID int64, message string) {
	if err := s.documents.SetStatus(ctx, documentID, model.ParsingStatusFailed, message); err != nil {
		logutil.GetLogger(ctx).Error("failed to mark document failed",
			zap.Int64("document_id", documentID), zap.Error(err))
	}
}

// extractPages materializes the stored PDF to a temp file for the parser.
// The parser needs random access, which object stores do not give us.
func (s *IngestService) extractPages(ctx context.Context, doc *model.Document) ([]model.Page, error) {
	rc, err := s.store.Open(ctx, doc.FileKey)
	if err != nil {
		return nil, fmt.Errorf("open stored file: %w", err)
	}
	defer rc.Close()

	tmp, err := os.CreateTemp("", "fundscope-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, rc); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("stage file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("stage file: %w", err)
	}
	return s.extractor.Extract(ctx, tmp.Name())
}

func (s *IngestService) ingestTables(ctx context.Context, doc *model.Document, pages []model.Page, stats *model.IngestStats) {
	logger := logutil.GetLogger(ctx).With(zap.Int64("document_id", doc.ID))
	for _, page := range pages {
		for _, table := range page.Tables {
			stats.TablesFound++
			category := extract.Classify(table)
			if err := s.ingestTable(ctx, doc.FundID, category, table, stats); err != nil {
				msg := fmt.Sprintf("page %d table %d (%s): %v", table.Page, table.TableIndex, category, err)
				stats.Errors = append(stats.Errors, msg)
				logger.Warn("table ingestion failed, continuing", zap.String("detail", msg))
			}
		}
	}
}

func (s *IngestService) ingestTable(ctx context.Context, fundID int64, category model.TableCategory, table model.RawTable, stats *model.IngestStats) error {
	switch category {
	case model.TableCapitalCalls:
		records := extract.ValidateCapitalCalls(ctx, extract.ParseCapitalCalls(ctx, table))
		if err := s.txns.SaveCapitalCalls(ctx, fundID, records); err != nil {
			return err
		}
		stats.CapitalCalls += len(records)
	case model.TableDistributions:
		records := extract.ValidateDistributions(ctx, extract.ParseDistributions(ctx, table))
		if err := s.txns.SaveDistributions(ctx, fundID, records); err != nil {
			return err
		}
		stats.Distributions += len(records)
	case model.TableAdjustments:
		records := extract.ValidateAdjustments(ctx, extract.ParseAdjustments(ctx, table))
		if err := s.txns.SaveAdjustments(ctx, fundID, records); err != nil {
			return err
		}
		stats.Adjustments += len(records)
	default:
		logutil.GetLogger(ctx).Warn("skipping unclassified table",
			zap.Int("page", table.Page), zap.Int("table_index", table.TableIndex))
	}
	return nil
}

func (s *IngestService) ingestFallback(ctx context.Context, doc *model.Document, pages []model.Page, stats *model.IngestStats) {
	logger := logutil.GetLogger(ctx).With(zap.Int64("document_id", doc.ID))
	logger.Info("structured extraction found no transactions, trying text fallback")

	texts := make([]string, 0, len(pages))
	for _, page := range pages {
		texts = append(texts, page.Text)
	}
	result := s.fallback.Extract(ctx, strings.Join(texts, "\n"))

	calls := extract.ValidateCapitalCalls(ctx, result.CapitalCalls)
	if len(calls) > 0 {
		if err := s.txns.SaveCapitalCalls(ctx, doc.FundID, calls); err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("save fallback capital calls: %v", err))
			logger.Warn("failed to save fallback capital calls", zap.Error(err))
		} else {
			stats.CapitalCalls += len(calls)
		}
	}
	dists := extract.ValidateDistributions(ctx, result.Distributions)
	if len(dists) > 0 {
		if err := s.txns.SaveDistributions(ctx, doc.FundID, dists); err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("save fallback distributions: %v", err))
			logger.Warn("failed to save fallback distributions", zap.Error(err))
		} else {
			stats.Distributions += len(dists)
		}
	}
}

// indexChunks embeds each chunk and stores it in the vector index. An Add
// failure means the embedder or the store is down, so the first one aborts
// the run instead of looping through every remaining chunk.
func (s *IngestService) indexChunks(ctx context.Context, doc *model.Document, pages []model.Page, stats *model.IngestStats) error {
	for _, chunk := range s.chunker.Chunk(ctx, pages) {
		meta := model.ChunkMetadata{
			DocumentID: doc.ID,
			FundID:     doc.FundID,
			Page:       chunk.Page,
			ChunkIndex: chunk.ChunkIndex,
			Source:     doc.FileName,
		}
		if _, err := s.vectors.Add(ctx, chunk.Text, meta); err != nil {
			return fmt.Errorf("index chunk page %d #%d: %w", chunk.Page, chunk.ChunkIndex, err)
		}
		stats.TextChunks++
	}
	return nil
}
