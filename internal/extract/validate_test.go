package extract

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fundscope/fundscope/internal/model"
)

func TestValidateCapitalCallsDropsDateless(t *testing.T) {
	records := []model.CapitalCall{
		{CallDate: time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(100)},
		{Amount: decimal.NewFromInt(200)},
	}
	got := ValidateCapitalCalls(context.Background(), records)
	require.Len(t, got, 1)
	require.Equal(t, records[0].CallDate, got[0].CallDate)
}

func TestValidateCapitalCallsRetainsNonPositive(t *testing.T) {
	records := []model.CapitalCall{
		{CallDate: time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(-100)},
		{CallDate: time.Date(2023, 1, 16, 0, 0, 0, 0, time.UTC), Amount: decimal.Zero},
	}
	got := ValidateCapitalCalls(context.Background(), records)
	require.Len(t, got, 2)
}

func TestValidateDistributionsDropsDateless(t *testing.T) {
	records := []model.Distribution{
		{Amount: decimal.NewFromInt(100)},
		{DistributionDate: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(100)},
	}
	got := ValidateDistributions(context.Background(), records)
	require.Len(t, got, 1)
}

func TestValidateAdjustmentsAcceptsAnySign(t *testing.T) {
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []model.Adjustment{
		{AdjustmentDate: date, Amount: decimal.NewFromInt(-500)},
		{AdjustmentDate: date, Amount: decimal.NewFromInt(500)},
		{Amount: decimal.NewFromInt(1)},
	}
	got := ValidateAdjustments(context.Background(), records)
	require.Len(t, got, 2)
}
