package task

import (
	"context"
	"fmt"

	"github.com/panjf2000/ants/v2"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/fundscope/fundscope/internal/model"
	"github.com/fundscope/fundscope/internal/repo"
	"github.com/fundscope/fundscope/internal/service"
)

// Dispatcher runs document ingestion on a bounded worker pool so uploads
// return immediately while parsing happens in the background. A panicking
// run marks its document failed instead of taking a worker down.
type Dispatcher struct {
	pool      *ants.Pool
	ingest    *service.IngestService
	documents *repo.DocumentRepo
}

func NewDispatcher(workers int, ingest *service.IngestService, documents *repo.DocumentRepo) (*Dispatcher, error) {
	if workers < 1 {
		workers = 1
	}
	d := &Dispatcher{ingest: ingest, documents: documents}
	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(v interface{}) {
		logutil.GetLogger(context.Background()).Error("ingestion worker panicked", zap.Any("panic", v))
	}))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	d.pool = pool
	return d, nil
}

// Submit queues one document for ingestion. It blocks only while the pool
// is saturated and returns once the job is accepted.
func (d *Dispatcher) Submit(documentID int64) error {
	return d.pool.Submit(func() {
		d.run(documentID)
	})
}

func (d *Dispatcher) run(documentID int64) {
	ctx := context.Background()
	logger := logutil.GetLogger(ctx).With(zap.Int64("document_id", documentID))
	defer func() {
		if v := recover(); v != nil {
			logger.Error("ingestion run panicked", zap.Any("panic", v))
			if err := d.documents.SetStatus(ctx, documentID, model.ParsingStatusFailed, fmt.Sprintf("ingestion panicked: %v", v)); err != nil {
				logger.Error("failed to mark panicked document failed", zap.Error(err))
			}
		}
	}()
	if _, err := d.ingest.Run(ctx, documentID); err != nil {
		logger.Error("ingestion run failed", zap.Error(err))
	}
}

// Release drains the pool. In-flight runs finish; queued ones are dropped.
func (d *Dispatcher) Release() {
	d.pool.Release()
}
