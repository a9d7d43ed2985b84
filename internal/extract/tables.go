package extract

import (
	"context"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/fundscope/fundscope/internal/model"
)

// Category defaults applied when a type column is absent or blank.
const (
	defaultCallType         = "Standard Call"
	defaultDistributionType = "Distribution"
	defaultAdjustmentType   = "Adjustment"
)

// findColumn returns the index of the first header containing any of the
// keywords, or -1 when no header matches. Headers are compared lowercased.
func findColumn(headers []string, keywords []string) int {
	for idx, header := range headers {
		lower := strings.ToLower(strings.TrimSpace(header))
		for _, keyword := range keywords {
			if strings.Contains(lower, keyword) {
				return idx
			}
		}
	}
	return -1
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func cellOrDefault(row []string, idx int, def string) string {
	if v := cellAt(row, idx); v != "" {
		return v
	}
	return def
}

func rowIsBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ParseCapitalCalls maps a capital-call table onto records. Rows whose date
// or amount fail to parse are dropped with a warning; a malformed row never
// aborts the table.
func ParseCapitalCalls(ctx context.Context, table model.RawTable) []model.CapitalCall {
	logger := logutil.GetLogger(ctx).With(zap.Int("page", table.Page), zap.Int("table", table.TableIndex))
	dateIdx := findColumn(table.Headers, []string{"date"})
	amountIdx := findColumn(table.Headers, []string{"amount"})
	typeIdx := findColumn(table.Headers, []string{"call number", "type", "call"})
	descIdx := findColumn(table.Headers, []string{"description", "desc", "notes"})

	var results []model.CapitalCall
	for _, row := range table.Rows {
		if rowIsBlank(row) {
			continue
		}
		date, dateOK := ParseDate(ctx, cellAt(row, dateIdx))
		amount, amountOK := ParseAmount(ctx, cellAt(row, amountIdx))
		if !dateOK || !amountOK {
			logger.Warn("skipping invalid capital call row", zap.Strings("row", row))
			continue
		}
		results = append(results, model.CapitalCall{
			CallDate:    date,
			CallType:    cellOrDefault(row, typeIdx, defaultCallType),
			Amount:      amount,
			Description: cellAt(row, descIdx),
		})
	}
	logger.Info("parsed capital call entries", zap.Int("count", len(results)))
	return results
}

// ParseDistributions maps a distribution table onto records.
func ParseDistributions(ctx context.Context, table model.RawTable) []model.Distribution {
	logger := logutil.GetLogger(ctx).With(zap.Int("page", table.Page), zap.Int("table", table.TableIndex))
	dateIdx := findColumn(table.Headers, []string{"date"})
	amountIdx := findColumn(table.Headers, []string{"amount"})
	typeIdx := findColumn(table.Headers, []string{"type", "distribution type"})
	recallableIdx := findColumn(table.Headers, []string{"recallable", "recall"})
	descIdx := findColumn(table.Headers, []string{"description", "desc", "notes"})

	var results []model.Distribution
	for _, row := range table.Rows {
		if rowIsBlank(row) {
			continue
		}
		date, dateOK := ParseDate(ctx, cellAt(row, dateIdx))
		amount, amountOK := ParseAmount(ctx, cellAt(row, amountIdx))
		if !dateOK || !amountOK {
			logger.Warn("skipping invalid distribution row", zap.Strings("row", row))
			continue
		}
		results = append(results, model.Distribution{
			DistributionDate: date,
			DistributionType: cellOrDefault(row, typeIdx, defaultDistributionType),
			Amount:           amount,
			IsRecallable:     ParseBool(cellAt(row, recallableIdx)),
			Description:      cellAt(row, descIdx),
		})
	}
	logger.Info("parsed distribution entries", zap.Int("count", len(results)))
	return results
}

// ParseAdjustments maps an adjustment table onto records, deriving the
// category and contribution flag from the type string.
func ParseAdjustments(ctx context.Context, table model.RawTable) []model.Adjustment {
	logger := logutil.GetLogger(ctx).With(zap.Int("page", table.Page), zap.Int("table", table.TableIndex))
	dateIdx := findColumn(table.Headers, []string{"date"})
	amountIdx := findColumn(table.Headers, []string{"amount"})
	typeIdx := findColumn(table.Headers, []string{"type", "adjustment type"})
	descIdx := findColumn(table.Headers, []string{"description", "desc", "notes"})

	var results []model.Adjustment
	for _, row := range table.Rows {
		if rowIsBlank(row) {
			continue
		}
		date, dateOK := ParseDate(ctx, cellAt(row, dateIdx))
		amount, amountOK := ParseAmount(ctx, cellAt(row, amountIdx))
		if !dateOK || !amountOK {
			logger.Warn("skipping invalid adjustment row", zap.Strings("row", row))
			continue
		}
		adjType := strings.ToLower(cellAt(row, typeIdx))
		results = append(results, model.Adjustment{
			AdjustmentDate:           date,
			AdjustmentType:           cellOrDefault(row, typeIdx, defaultAdjustmentType),
			Category:                 AdjustmentCategoryOf(adjType),
			Amount:                   amount,
			IsContributionAdjustment: strings.Contains(adjType, "capital call") || strings.Contains(adjType, "contribution"),
			Description:              cellAt(row, descIdx),
		})
	}
	logger.Info("parsed adjustment entries", zap.Int("count", len(results)))
	return results
}

// AdjustmentCategoryOf buckets a lowercased adjustment type. First match in
// this order wins.
func AdjustmentCategoryOf(adjType string) model.AdjustmentCategory {
	switch {
	case strings.Contains(adjType, "recallable") || strings.Contains(adjType, "recalled"):
		return model.AdjustmentRecallableDistribution
	case strings.Contains(adjType, "capital call"):
		return model.AdjustmentCapitalCall
	case strings.Contains(adjType, "contribution"):
		return model.AdjustmentContribution
	case strings.Contains(adjType, "fee"):
		return model.AdjustmentFee
	case strings.Contains(adjType, "expense"):
		return model.AdjustmentExpense
	default:
		return model.AdjustmentOther
	}
}
