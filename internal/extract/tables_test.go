package extract

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fundscope/fundscope/internal/model"
)

func TestParseCapitalCalls(t *testing.T) {
	table := model.RawTable{
		Page:       1,
		TableIndex: 1,
		Headers:    []string{"Date", "Call Number", "Amount", "Description"},
		Rows: [][]string{
			{"2023-01-15", "Initial", "$1,000,000", "First call"},
			{"2023-06-30", "", "$500,000.50", ""},
		},
	}
	got := ParseCapitalCalls(context.Background(), table)
	require.Len(t, got, 2)

	require.Equal(t, "Initial", got[0].CallType)
	require.True(t, got[0].Amount.Equal(decimal.RequireFromString("1000000")))
	require.Equal(t, "First call", got[0].Description)
	require.Equal(t, 2023, got[0].CallDate.Year())

	require.Equal(t, defaultCallType, got[1].CallType)
	require.True(t, got[1].Amount.Equal(decimal.RequireFromString("500000.50")))
}

func TestParseCapitalCallsSkipsBadRows(t *testing.T) {
	table := model.RawTable{
		Headers: []string{"Date", "Amount"},
		Rows: [][]string{
			{"not-a-date", "$100"},
			{"2023-01-15", "n/a"},
			{"", ""},
			{"2023-01-15", "$100"},
		},
	}
	got := ParseCapitalCalls(context.Background(), table)
	require.Len(t, got, 1)
	require.True(t, got[0].Amount.Equal(decimal.RequireFromString("100")))
}

func TestParseDistributions(t *testing.T) {
	table := model.RawTable{
		Headers: []string{"Date", "Distribution Type", "Amount", "Recallable", "Notes"},
		Rows: [][]string{
			{"2024-03-31", "Return of Capital", "(2,000,000)", "Yes", "Q1"},
			{"2024-06-30", "", "1,500,000", "no", ""},
		},
	}
	got := ParseDistributions(context.Background(), table)
	require.Len(t, got, 2)

	require.Equal(t, "Return of Capital", got[0].DistributionType)
	require.True(t, got[0].Amount.Equal(decimal.RequireFromString("-2000000")))
	require.True(t, got[0].IsRecallable)
	require.Equal(t, "Q1", got[0].Description)

	require.Equal(t, defaultDistributionType, got[1].DistributionType)
	require.False(t, got[1].IsRecallable)
}

func TestParseAdjustments(t *testing.T) {
	table := model.RawTable{
		Headers: []string{"Date", "Adjustment Type", "Amount", "Description"},
		Rows: [][]string{
			{"2024-01-01", "Recallable Distribution", "250,000", ""},
			{"2024-01-02", "Capital Call Rebate", "(50,000)", ""},
			{"2024-01-03", "Management Fee", "10,000", ""},
			{"2024-01-04", "Misc", "1,000", ""},
		},
	}
	got := ParseAdjustments(context.Background(), table)
	require.Len(t, got, 4)

	require.Equal(t, model.AdjustmentRecallableDistribution, got[0].Category)
	require.False(t, got[0].IsContributionAdjustment)

	require.Equal(t, model.AdjustmentCapitalCall, got[1].Category)
	require.True(t, got[1].IsContributionAdjustment)
	require.True(t, got[1].Amount.Equal(decimal.RequireFromString("-50000")))

	require.Equal(t, model.AdjustmentFee, got[2].Category)
	require.Equal(t, model.AdjustmentOther, got[3].Category)
}

func TestAdjustmentCategoryOrder(t *testing.T) {
	// "recallable" beats "capital call", "capital call" beats
	// "contribution".
	require.Equal(t, model.AdjustmentRecallableDistribution, AdjustmentCategoryOf("recallable capital call"))
	require.Equal(t, model.AdjustmentCapitalCall, AdjustmentCategoryOf("capital call contribution"))
	require.Equal(t, model.AdjustmentContribution, AdjustmentCategoryOf("contribution true-up"))
	require.Equal(t, model.AdjustmentExpense, AdjustmentCategoryOf("partnership expense"))
	require.Equal(t, model.AdjustmentOther, AdjustmentCategoryOf(""))
}

func TestFindColumn(t *testing.T) {
	headers := []string{"Call Date", "Call Number", "Amount ($)"}
	require.Equal(t, 0, findColumn(headers, []string{"date"}))
	require.Equal(t, 1, findColumn(headers, []string{"call number", "type", "call"}))
	require.Equal(t, 2, findColumn(headers, []string{"amount"}))
	require.Equal(t, -1, findColumn(headers, []string{"description"}))
}
