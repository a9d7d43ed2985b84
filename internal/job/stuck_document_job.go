package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/fundscope/fundscope/internal/repo"
)

// StuckDocumentJob fails documents that have sat in processing longer than
// the TTL. A worker that died mid-run leaves its document in processing
// forever otherwise.
type StuckDocumentJob struct {
	documents *repo.DocumentRepo
	ttl       time.Duration
}

func NewStuckDocumentJob(documents *repo.DocumentRepo, ttl time.Duration) *StuckDocumentJob {
	return &StuckDocumentJob{documents: documents, ttl: ttl}
}

func (j *StuckDocumentJob) Name() string {
	return "stuck_document_reaper"
}

func (j *StuckDocumentJob) Run(ctx context.Context) error {
	cutoff := time.Now().Add(-j.ttl)
	affected, err := j.documents.FailStuckProcessing(ctx, cutoff)
	if err != nil {
		return err
	}
	if affected > 0 {
		logutil.GetLogger(ctx).Warn("failed stuck documents", zap.Int64("count", affected))
	}
	return nil
}
