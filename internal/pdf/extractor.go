package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/fundscope/fundscope/internal/model"
)

// Extractor yields a PDF's ordered pages, each with its extractable text and
// zero-or-more detected tables. Implementations do not attempt OCR or layout
// reconstruction; a scanned page simply produces no text.
type Extractor interface {
	Extract(ctx context.Context, path string) ([]model.Page, error)
}

// FileExtractor reads PDFs from the local filesystem. Table detection is a
// positional heuristic over text rows, see tables.go.
type FileExtractor struct {
	detector *tableDetector
}

func NewFileExtractor() *FileExtractor {
	return &FileExtractor{detector: newTableDetector()}
}

func (e *FileExtractor) Extract(ctx context.Context, path string) ([]model.Page, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("path", path))
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	pages := make([]model.Page, 0, reader.NumPage())
	tableCount := 0
	for num := 1; num <= reader.NumPage(); num++ {
		p := reader.Page(num)
		if p.V.IsNull() {
			continue
		}
		page := model.Page{Number: num}

		text, err := p.GetPlainText(nil)
		if err != nil {
			logger.Warn("page text extraction failed", zap.Int("page", num), zap.Error(err))
		} else {
			page.Text = strings.TrimSpace(text)
		}

		rows, err := p.GetTextByRow()
		if err != nil {
			logger.Warn("page row extraction failed", zap.Int("page", num), zap.Error(err))
		} else {
			page.Tables = e.detector.detect(num, rows)
			tableCount += len(page.Tables)
		}
		pages = append(pages, page)
	}
	logger.Info("pdf extracted", zap.Int("pages", len(pages)), zap.Int("tables", tableCount))
	return pages, nil
}
