package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/fundscope/fundscope/internal/model"
	"github.com/fundscope/fundscope/internal/repo"
)

// ExportService produces an XLSX workbook for one fund: a metrics summary
// plus one sheet per transaction category.
type ExportService struct {
	funds   *repo.FundRepo
	txns    *repo.TransactionRepo
	metrics *MetricsService
}

func NewExportService(funds *repo.FundRepo, txns *repo.TransactionRepo, metrics *MetricsService) *ExportService {
	return &ExportService{funds: funds, txns: txns, metrics: metrics}
}

func (s *ExportService) ExportFundXLSX(ctx context.Context, fundID int64) ([]byte, string, error) {
	fund, err := s.funds.GetByID(ctx, fundID)
	if err != nil {
		return nil, "", err
	}
	calls, err := s.txns.ListCapitalCalls(ctx, fundID)
	if err != nil {
		return nil, "", err
	}
	dists, err := s.txns.ListDistributions(ctx, fundID)
	if err != nil {
		return nil, "", err
	}
	adjs, err := s.txns.ListAdjustments(ctx, fundID)
	if err != nil {
		return nil, "", err
	}
	metrics, err := s.metrics.Compute(ctx, fundID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := s.writeSummarySheet(f, fund, metrics); err != nil {
		return nil, "", err
	}
	if err := writeTableSheet(f, "Capital Calls",
		[]string{"Date", "Call Type", "Amount", "Description"},
		len(calls), func(i int) []interface{} {
			c := calls[i]
			return []interface{}{c.CallDate.Format("2006-01-02"), c.CallType, c.Amount.String(), c.Description}
		}); err != nil {
		return nil, "", err
	}
	if err := writeTableSheet(f, "Distributions",
		[]string{"Date", "Distribution Type", "Amount", "Recallable", "Description"},
		len(dists), func(i int) []interface{} {
			d := dists[i]
			return []interface{}{d.DistributionDate.Format("2006-01-02"), d.DistributionType, d.Amount.String(), d.IsRecallable, d.Description}
		}); err != nil {
		return nil, "", err
	}
	if err := writeTableSheet(f, "Adjustments",
		[]string{"Date", "Adjustment Type", "Category", "Amount", "Description"},
		len(adjs), func(i int) []interface{} {
			a := adjs[i]
			return []interface{}{a.AdjustmentDate.Format("2006-01-02"), a.AdjustmentType, string(a.Category), a.Amount.String(), a.Description}
		}); err != nil {
		return nil, "", err
	}

	// excelize creates a default "Sheet1" that we never write to.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, "", err
	}
	if index, err := f.GetSheetIndex("Summary"); err == nil && index >= 0 {
		f.SetActiveSheet(index)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), fmt.Sprintf("%s.xlsx", fund.Name), nil
}

func (s *ExportService) writeSummarySheet(f *excelize.File, fund *model.Fund, m *model.FundMetrics) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	rows := [][]interface{}{
		{"Fund", fund.Name},
		{"GP", fund.GPName},
		{"Type", fund.FundType},
		{"Vintage Year", fund.VintageYear},
		{},
		{"Total Capital Calls", m.TotalCalls.String()},
		{"Total Distributions", m.TotalDistributions.String()},
		{"Total Adjustments", m.TotalAdjustments.String()},
		{"Paid-In Capital", m.PaidInCapital.String()},
		{"NAV", m.NAV.String()},
		{"DPI", m.DPI},
		{"RVPI", m.RVPI},
		{"TVPI", m.TVPI},
		{"IRR", m.IRR},
	}
	for r, cols := range rows {
		for c, v := range cols {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return f.SetColWidth(sheet, "A", "B", 24)
}

func writeTableSheet(f *excelize.File, sheet string, headers []string, n int, rowAt func(i int) []interface{}) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	for c, h := range headers {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for i := 0; i < n; i++ {
		for c, v := range rowAt(i) {
			cell, err := excelize.CoordinatesToCellName(c+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	last, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", last, 18)
}
