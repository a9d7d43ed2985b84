package extract

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/fundscope/fundscope/internal/model"
)

// Validation is advisory for signs: a non-positive capital call or
// distribution is logged but retained, since negative recorded amounts can be
// legitimate corrections. Records without a date are dropped regardless of
// where they came from.

func ValidateCapitalCalls(ctx context.Context, records []model.CapitalCall) []model.CapitalCall {
	logger := logutil.GetLogger(ctx)
	cleaned := make([]model.CapitalCall, 0, len(records))
	for _, rec := range records {
		if rec.CallDate.IsZero() {
			continue
		}
		if !rec.Amount.IsPositive() {
			logger.Warn("capital call with non-positive amount",
				zap.Time("date", rec.CallDate),
				zap.String("amount", rec.Amount.String()),
			)
		}
		cleaned = append(cleaned, rec)
	}
	return cleaned
}

func ValidateDistributions(ctx context.Context, records []model.Distribution) []model.Distribution {
	logger := logutil.GetLogger(ctx)
	cleaned := make([]model.Distribution, 0, len(records))
	for _, rec := range records {
		if rec.DistributionDate.IsZero() {
			continue
		}
		if !rec.Amount.IsPositive() {
			logger.Warn("distribution with non-positive amount",
				zap.Time("date", rec.DistributionDate),
				zap.String("amount", rec.Amount.String()),
			)
		}
		cleaned = append(cleaned, rec)
	}
	return cleaned
}

func ValidateAdjustments(ctx context.Context, records []model.Adjustment) []model.Adjustment {
	cleaned := make([]model.Adjustment, 0, len(records))
	for _, rec := range records {
		if rec.AdjustmentDate.IsZero() {
			continue
		}
		// Adjustments are signed by nature; any amount passes.
		cleaned = append(cleaned, rec)
	}
	return cleaned
}
