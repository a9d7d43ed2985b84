package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/fundscope/fundscope/internal/filestore"
	"github.com/fundscope/fundscope/internal/model"
	appErr "github.com/fundscope/fundscope/internal/pkg/errors"
	"github.com/fundscope/fundscope/internal/repo"
)

// IngestDispatcher hands a pending document to the background workers.
type IngestDispatcher interface {
	Submit(documentID int64) error
}

// DocumentService owns the upload lifecycle: persist the file, create the
// pending record, and queue it for ingestion. A document whose dispatch
// fails stays pending and is retried by the reaper cycle through re-upload.
type DocumentService struct {
	documents  *repo.DocumentRepo
	funds      *repo.FundRepo
	vectors    *repo.VectorRepo
	store      filestore.Store
	dispatcher IngestDispatcher
	maxSize    int64
}

func NewDocumentService(
	documents *repo.DocumentRepo,
	funds *repo.FundRepo,
	vectors *repo.VectorRepo,
	store filestore.Store,
	dispatcher IngestDispatcher,
	maxSize int64,
) *DocumentService {
	return &DocumentService{
		documents:  documents,
		funds:      funds,
		vectors:    vectors,
		store:      store,
		dispatcher: dispatcher,
		maxSize:    maxSize,
	}
}

// Upload stores a PDF, records it as pending and queues ingestion. A zero
// fundID attaches the document to the default fund.
func (s *DocumentService) Upload(ctx context.Context, fundID int64, fileName string, r io.Reader, size int64) (*model.Document, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("file_name", fileName))
	if !strings.EqualFold(filepath.Ext(fileName), ".pdf") {
		return nil, fmt.Errorf("%w: only pdf files are accepted", appErr.ErrInvalidFile)
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: empty upload", appErr.ErrInvalidFile)
	}
	if s.maxSize > 0 && size > s.maxSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit %d", appErr.ErrFileTooBig, size, s.maxSize)
	}

	if fundID == 0 {
		fund, err := s.funds.GetOrCreateDefault(ctx, time.Now().Year())
		if err != nil {
			return nil, err
		}
		fundID = fund.ID
	} else if _, err := s.funds.GetByID(ctx, fundID); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("funds/%d/%d-%s", fundID, time.Now().UnixNano(), filepath.Base(fileName))
	if err := s.store.Save(ctx, key, r, size); err != nil {
		logger.Error("failed to store upload", zap.Error(err))
		return nil, err
	}

	doc := &model.Document{
		FundID:        fundID,
		FileName:      filepath.Base(fileName),
		FileKey:       key,
		ParsingStatus: model.ParsingStatusPending,
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		logger.Error("failed to create document record", zap.Error(err))
		if rmErr := s.store.Delete(ctx, key); rmErr != nil {
			logger.Warn("failed to clean up stored file", zap.Error(rmErr))
		}
		return nil, err
	}

	if err := s.dispatcher.Submit(doc.ID); err != nil {
		logger.Error("failed to queue document for ingestion", zap.Int64("document_id", doc.ID), zap.Error(err))
		s.setFailed(ctx, doc.ID, fmt.Sprintf("queue ingestion: %v", err))
		doc.ParsingStatus = model.ParsingStatusFailed
	}
	logger.Info("document uploaded", zap.Int64("document_id", doc.ID), zap.Int64("fund_id", fundID))
	return doc, nil
}

func (s *DocumentService) setFailed(ctx context.Context, documentID int64, message string) {
	if err := s.documents.SetStatus(ctx, documentID, model.ParsingStatusFailed, message); err != nil {
		logutil.GetLogger(ctx).Warn("failed to mark document failed",
			zap.Int64("document_id", documentID), zap.Error(err))
	}
}

func (s *DocumentService) Get(ctx context.Context, id int64) (*model.Document, error) {
	return s.documents.GetByID(ctx, id)
}

func (s *DocumentService) List(ctx context.Context, fundID *int64) ([]model.Document, error) {
	return s.documents.List(ctx, fundID)
}

// Delete removes the document record, its stored file and its indexed
// chunks. Extracted transactions stay; they belong to the fund.
func (s *DocumentService) Delete(ctx context.Context, id int64) error {
	logger := logutil.GetLogger(ctx).With(zap.Int64("document_id", id))
	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.vectors.ClearDocument(ctx, id); err != nil {
		logger.Warn("failed to clear document embeddings", zap.Error(err))
	}
	if err := s.store.Delete(ctx, doc.FileKey); err != nil {
		logger.Warn("failed to delete stored file", zap.Error(err))
	}
	return s.documents.Delete(ctx, id)
}
