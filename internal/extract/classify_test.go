package extract

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fundscope/fundscope/internal/model"
)

func TestClassifyByHeaders(t *testing.T) {
	cases := []struct {
		name    string
		headers []string
		want    model.TableCategory
	}{
		{"capital calls", []string{"Date", "Call Number", "Amount"}, model.TableCapitalCalls},
		{"drawdown", []string{"Capital Drawdown", "Amount"}, model.TableCapitalCalls},
		{"distributions", []string{"Date", "Distribution Type", "Amount"}, model.TableDistributions},
		{"dividend", []string{"Dividend Date", "Amount"}, model.TableDistributions},
		{"adjustments", []string{"Adjustment Type", "Amount"}, model.TableAdjustments},
		{"unknown", []string{"Name", "Address", "Phone"}, model.TableUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(model.RawTable{Headers: tc.headers})
			require.Equal(t, tc.want, got)
		})
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	// Mentions capital calls and distributions; capital calls are
	// checked first.
	table := model.RawTable{
		Headers: []string{"Capital Call and Distribution Summary"},
	}
	require.Equal(t, model.TableCapitalCalls, Classify(table))
}

func TestClassifyReadsLeadingRows(t *testing.T) {
	table := model.RawTable{
		Headers: []string{"Date", "Type", "Amount"},
		Rows: [][]string{
			{"2023-01-15", "Recallable", "100"},
		},
	}
	require.Equal(t, model.TableDistributions, Classify(table))
}

func TestClassifyIgnoresDeepRows(t *testing.T) {
	rows := make([][]string, 0, classifySampleRows+1)
	for i := 0; i < classifySampleRows; i++ {
		rows = append(rows, []string{"2023-01-15", "x", "100"})
	}
	rows = append(rows, []string{"2023-01-15", "distribution", "100"})
	table := model.RawTable{Headers: []string{"Date", "Type", "Amount"}, Rows: rows}
	require.Equal(t, model.TableUnknown, Classify(table))
}

func TestClassifyIsIdempotent(t *testing.T) {
	table := model.RawTable{Headers: []string{"Distribution Date", "Amount"}}
	first := Classify(table)
	require.Equal(t, first, Classify(table))
}
