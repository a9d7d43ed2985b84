package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/fundscope/fundscope/internal/model"
	"github.com/fundscope/fundscope/internal/pkg/dbutil"
	appErr "github.com/fundscope/fundscope/internal/pkg/errors"
)

const defaultFundName = "Default Fund"

type FundRepo struct {
	db *sql.DB
}

func NewFundRepo(db *sql.DB) *FundRepo {
	return &FundRepo{db: db}
}

func (r *FundRepo) Create(ctx context.Context, fund *model.Fund) error {
	const query = `
		INSERT INTO funds (name, gp_name, fund_type, vintage_year)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	row := r.db.QueryRowContext(ctx, query, fund.Name, fund.GPName, fund.FundType, fund.VintageYear)
	return row.Scan(&fund.ID, &fund.CreatedAt)
}

func (r *FundRepo) GetByID(ctx context.Context, id int64) (*model.Fund, error) {
	where := map[string]interface{}{"id": id}
	sqlStr, args, err := builder.BuildSelect("funds", where,
		[]string{"id", "name", "gp_name", "fund_type", "vintage_year", "created_at"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	var fund model.Fund
	err = r.db.QueryRowContext(ctx, sqlStr, args...).
		Scan(&fund.ID, &fund.Name, &fund.GPName, &fund.FundType, &fund.VintageYear, &fund.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, appErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &fund, nil
}

func (r *FundRepo) List(ctx context.Context) ([]model.Fund, error) {
	where := map[string]interface{}{"_orderby": "id asc"}
	sqlStr, args, err := builder.BuildSelect("funds", where,
		[]string{"id", "name", "gp_name", "fund_type", "vintage_year", "created_at"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var funds []model.Fund
	for rows.Next() {
		var fund model.Fund
		if err := rows.Scan(&fund.ID, &fund.Name, &fund.GPName, &fund.FundType, &fund.VintageYear, &fund.CreatedAt); err != nil {
			return nil, err
		}
		funds = append(funds, fund)
	}
	return funds, rows.Err()
}

// GetOrCreateDefault backs uploads that arrive without a fund id.
func (r *FundRepo) GetOrCreateDefault(ctx context.Context, vintageYear int) (*model.Fund, error) {
	where := map[string]interface{}{"name": defaultFundName}
	sqlStr, args, err := builder.BuildSelect("funds", where,
		[]string{"id", "name", "gp_name", "fund_type", "vintage_year", "created_at"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	var fund model.Fund
	err = r.db.QueryRowContext(ctx, sqlStr, args...).
		Scan(&fund.ID, &fund.Name, &fund.GPName, &fund.FundType, &fund.VintageYear, &fund.CreatedAt)
	if err == nil {
		return &fund, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}
	fund = model.Fund{
		Name:        defaultFundName,
		GPName:      "Unknown GP",
		FundType:    "Unknown",
		VintageYear: vintageYear,
	}
	if err := r.Create(ctx, &fund); err != nil {
		return nil, err
	}
	return &fund, nil
}

func (r *FundRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM funds WHERE id = $1`, id)
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
