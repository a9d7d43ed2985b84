package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fundscope/fundscope/internal/model"
	appErr "github.com/fundscope/fundscope/internal/pkg/errors"
	"github.com/fundscope/fundscope/internal/repo"
)

func TestDocumentRepoLifecycle(t *testing.T) {
	conn, cleanup := openTestDB(t)
	defer cleanup()

	fund := createTestFund(t, conn)
	docs := repo.NewDocumentRepo(conn)

	doc := &model.Document{
		FundID:        fund.ID,
		FileName:      "q1-report.pdf",
		FileKey:       "funds/1/q1-report.pdf",
		ParsingStatus: model.ParsingStatusPending,
	}
	require.NoError(t, docs.Create(context.Background(), doc))
	require.NotZero(t, doc.ID)
	require.False(t, doc.UploadedAt.IsZero())

	require.NoError(t, docs.SetStatus(context.Background(), doc.ID, model.ParsingStatusProcessing, ""))
	require.NoError(t, docs.SetStatus(context.Background(), doc.ID, model.ParsingStatusFailed, "boom"))

	fetched, err := docs.GetByID(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Equal(t, model.ParsingStatusFailed, fetched.ParsingStatus)
	require.Equal(t, "boom", fetched.ErrorMessage)

	listed, err := docs.List(context.Background(), &fund.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	otherFund := int64(-1)
	empty, err := docs.List(context.Background(), &otherFund)
	require.NoError(t, err)
	require.Empty(t, empty)

	require.NoError(t, docs.Delete(context.Background(), doc.ID))
	_, err = docs.GetByID(context.Background(), doc.ID)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestDocumentRepoSetStatusMissing(t *testing.T) {
	conn, cleanup := openTestDB(t)
	defer cleanup()

	docs := repo.NewDocumentRepo(conn)
	err := docs.SetStatus(context.Background(), -1, model.ParsingStatusCompleted, "")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestDocumentRepoFailStuckProcessing(t *testing.T) {
	conn, cleanup := openTestDB(t)
	defer cleanup()

	fund := createTestFund(t, conn)
	docs := repo.NewDocumentRepo(conn)

	doc := &model.Document{
		FundID:        fund.ID,
		FileName:      "stuck.pdf",
		FileKey:       "funds/1/stuck.pdf",
		ParsingStatus: model.ParsingStatusPending,
	}
	require.NoError(t, docs.Create(context.Background(), doc))
	require.NoError(t, docs.SetStatus(context.Background(), doc.ID, model.ParsingStatusProcessing, ""))

	// Cutoff in the past: the fresh document must survive.
	affected, err := docs.FailStuckProcessing(context.Background(), time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Zero(t, affected)

	// Cutoff in the future: the processing document is reaped.
	affected, err = docs.FailStuckProcessing(context.Background(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)

	fetched, err := docs.GetByID(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Equal(t, model.ParsingStatusFailed, fetched.ParsingStatus)
}
