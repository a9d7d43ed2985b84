package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fundscope/fundscope/internal/model"
)

func TestWriteSummarySheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	svc := &ExportService{}
	fund := &model.Fund{Name: "Fund I", GPName: "Acme GP", FundType: "Buyout", VintageYear: 2021}
	metrics := &model.FundMetrics{
		TotalCalls:         decimal.NewFromInt(2_500_000),
		TotalDistributions: decimal.NewFromInt(800_000),
		PaidInCapital:      decimal.NewFromInt(2_200_000),
		NAV:                decimal.NewFromInt(1_300_000),
		DPI:                0.36,
	}
	require.NoError(t, svc.writeSummarySheet(f, fund, metrics))

	name, err := f.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	require.Equal(t, "Fund I", name)

	pic, err := f.GetCellValue("Summary", "B9")
	require.NoError(t, err)
	require.Equal(t, "2200000", pic)
}

func TestWriteTableSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]interface{}{
		{"2023-01-15", "Initial", "1000000"},
		{"2023-06-30", "Second", "500000"},
	}
	err := writeTableSheet(f, "Capital Calls", []string{"Date", "Type", "Amount"},
		len(rows), func(i int) []interface{} { return rows[i] })
	require.NoError(t, err)

	header, err := f.GetCellValue("Capital Calls", "A1")
	require.NoError(t, err)
	require.Equal(t, "Date", header)

	amount, err := f.GetCellValue("Capital Calls", "C3")
	require.NoError(t, err)
	require.Equal(t, "500000", amount)
}
