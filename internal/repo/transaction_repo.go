package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/fundscope/fundscope/internal/model"
	"github.com/fundscope/fundscope/internal/pkg/dbutil"
)

// TransactionRepo persists the parsed transaction records. Batches commit
// independently per category; there is no multi-table transaction across an
// ingestion run.
type TransactionRepo struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *TransactionRepo {
	return &TransactionRepo{db: db}
}

func (r *TransactionRepo) SaveCapitalCalls(ctx context.Context, fundID int64, records []model.CapitalCall) error {
	if len(records) == 0 {
		return nil
	}
	data := make([]map[string]interface{}, 0, len(records))
	for _, rec := range records {
		data = append(data, map[string]interface{}{
			"fund_id":     fundID,
			"call_date":   rec.CallDate,
			"call_type":   rec.CallType,
			"amount":      rec.Amount,
			"description": rec.Description,
		})
	}
	sqlStr, args, err := builder.BuildInsert("capital_calls", data)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *TransactionRepo) SaveDistributions(ctx context.Context, fundID int64, records []model.Distribution) error {
	if len(records) == 0 {
		return nil
	}
	data := make([]map[string]interface{}, 0, len(records))
	for _, rec := range records {
		data = append(data, map[string]interface{}{
			"fund_id":           fundID,
			"distribution_date": rec.DistributionDate,
			"distribution_type": rec.DistributionType,
			"amount":            rec.Amount,
			"is_recallable":     rec.IsRecallable,
			"description":       rec.Description,
		})
	}
	sqlStr, args, err := builder.BuildInsert("distributions", data)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *TransactionRepo) SaveAdjustments(ctx context.Context, fundID int64, records []model.Adjustment) error {
	if len(records) == 0 {
		return nil
	}
	data := make([]map[string]interface{}, 0, len(records))
	for _, rec := range records {
		data = append(data, map[string]interface{}{
			"fund_id":                    fundID,
			"adjustment_date":            rec.AdjustmentDate,
			"adjustment_type":            rec.AdjustmentType,
			"category":                   string(rec.Category),
			"amount":                     rec.Amount,
			"is_contribution_adjustment": rec.IsContributionAdjustment,
			"description":                rec.Description,
		})
	}
	sqlStr, args, err := builder.BuildInsert("adjustments", data)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *TransactionRepo) ListCapitalCalls(ctx context.Context, fundID int64) ([]model.CapitalCall, error) {
	const query = `
		SELECT id, fund_id, call_date, call_type, amount, description
		FROM capital_calls WHERE fund_id = $1 ORDER BY call_date ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, fundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []model.CapitalCall
	for rows.Next() {
		var rec model.CapitalCall
		if err := rows.Scan(&rec.ID, &rec.FundID, &rec.CallDate, &rec.CallType, &rec.Amount, &rec.Description); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *TransactionRepo) ListDistributions(ctx context.Context, fundID int64) ([]model.Distribution, error) {
	const query = `
		SELECT id, fund_id, distribution_date, distribution_type, amount, is_recallable, description
		FROM distributions WHERE fund_id = $1 ORDER BY distribution_date ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, fundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []model.Distribution
	for rows.Next() {
		var rec model.Distribution
		if err := rows.Scan(&rec.ID, &rec.FundID, &rec.DistributionDate, &rec.DistributionType,
			&rec.Amount, &rec.IsRecallable, &rec.Description); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *TransactionRepo) ListAdjustments(ctx context.Context, fundID int64) ([]model.Adjustment, error) {
	const query = `
		SELECT id, fund_id, adjustment_date, adjustment_type, category, amount, is_contribution_adjustment, description
		FROM adjustments WHERE fund_id = $1 ORDER BY adjustment_date ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, fundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []model.Adjustment
	for rows.Next() {
		var rec model.Adjustment
		var category string
		if err := rows.Scan(&rec.ID, &rec.FundID, &rec.AdjustmentDate, &rec.AdjustmentType,
			&category, &rec.Amount, &rec.IsContributionAdjustment, &rec.Description); err != nil {
			return nil, err
		}
		rec.Category = model.AdjustmentCategory(category)
		records = append(records, rec)
	}
	return records, rows.Err()
}
