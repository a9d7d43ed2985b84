package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/didi/gendry/builder"

	"github.com/fundscope/fundscope/internal/model"
	"github.com/fundscope/fundscope/internal/pkg/dbutil"
	appErr "github.com/fundscope/fundscope/internal/pkg/errors"
)

var documentColumns = []string{
	"id", "fund_id", "file_name", "file_key", "parsing_status", "error_message", "uploaded_at",
}

type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func (r *DocumentRepo) Create(ctx context.Context, doc *model.Document) error {
	const query = `
		INSERT INTO documents (fund_id, file_name, file_key, parsing_status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, uploaded_at
	`
	row := r.db.QueryRowContext(ctx, query, doc.FundID, doc.FileName, doc.FileKey, doc.ParsingStatus)
	return row.Scan(&doc.ID, &doc.UploadedAt)
}

func (r *DocumentRepo) scanOne(row *sql.Row) (*model.Document, error) {
	var doc model.Document
	err := row.Scan(&doc.ID, &doc.FundID, &doc.FileName, &doc.FileKey,
		&doc.ParsingStatus, &doc.ErrorMessage, &doc.UploadedAt)
	if err == sql.ErrNoRows {
		return nil, appErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepo) GetByID(ctx context.Context, id int64) (*model.Document, error) {
	where := map[string]interface{}{"id": id}
	sqlStr, args, err := builder.BuildSelect("documents", where, documentColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	return r.scanOne(r.db.QueryRowContext(ctx, sqlStr, args...))
}

func (r *DocumentRepo) List(ctx context.Context, fundID *int64) ([]model.Document, error) {
	where := map[string]interface{}{"_orderby": "uploaded_at desc"}
	if fundID != nil {
		where["fund_id"] = *fundID
	}
	sqlStr, args, err := builder.BuildSelect("documents", where, documentColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var docs []model.Document
	for rows.Next() {
		var doc model.Document
		if err := rows.Scan(&doc.ID, &doc.FundID, &doc.FileName, &doc.FileKey,
			&doc.ParsingStatus, &doc.ErrorMessage, &doc.UploadedAt); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// SetStatus is the status collaborator for the ingestion run: called once at
// run start (processing) and once at run end (completed or failed).
func (r *DocumentRepo) SetStatus(ctx context.Context, id int64, status string, errorMessage string) error {
	const query = `UPDATE documents SET parsing_status = $1, error_message = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, status, errorMessage, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

// FailStuckProcessing marks documents stuck in processing since before the
// cutoff as failed. Wall-clock enforcement lives here, not inside the
// ingestion run.
func (r *DocumentRepo) FailStuckProcessing(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `
		UPDATE documents
		SET parsing_status = $1, error_message = $2
		WHERE parsing_status = $3 AND uploaded_at < $4
	`
	res, err := r.db.ExecContext(ctx, query,
		model.ParsingStatusFailed, "processing timed out", model.ParsingStatusProcessing, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *DocumentRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}
