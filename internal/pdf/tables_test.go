package pdf

import (
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/require"
)

// textRow builds a positional row from (text, x) pairs, one glyph run per
// cell, 6pt wide per character at font size 10.
func textRow(cells ...struct {
	s string
	x float64
}) *pdf.Row {
	content := make(pdf.TextHorizontal, 0, len(cells))
	for _, c := range cells {
		content = append(content, pdf.Text{
			S:        c.s,
			X:        c.x,
			W:        float64(len(c.s)) * 6,
			FontSize: 10,
		})
	}
	return &pdf.Row{Content: content}
}

func cell(s string, x float64) struct {
	s string
	x float64
} {
	return struct {
		s string
		x float64
	}{s, x}
}

func TestSplitCellsByGap(t *testing.T) {
	d := newTableDetector()
	row := textRow(cell("Date", 10), cell("Amount", 120), cell("Description", 260))
	require.Equal(t, []string{"Date", "Amount", "Description"}, d.splitCells(row))
}

func TestSplitCellsMergesAdjacentRuns(t *testing.T) {
	d := newTableDetector()
	// "Capital" ends at 10+42=52; "Call" starts at 55, gap 3 < threshold.
	row := textRow(cell("Capital ", 10), cell("Call", 58), cell("Amount", 200))
	require.Equal(t, []string{"Capital Call", "Amount"}, d.splitCells(row))
}

func TestSplitCellsUnsortedInput(t *testing.T) {
	d := newTableDetector()
	row := textRow(cell("Amount", 120), cell("Date", 10))
	require.Equal(t, []string{"Date", "Amount"}, d.splitCells(row))
}

func TestDetectGroupsConsecutiveRows(t *testing.T) {
	d := newTableDetector()
	rows := pdf.Rows{
		textRow(cell("Quarterly Report Narrative Text", 10)),
		textRow(cell("Date", 10), cell("Call Number", 120), cell("Amount", 260)),
		textRow(cell("2023-01-15", 10), cell("Initial", 120), cell("$1,000,000", 260)),
		textRow(cell("2023-06-30", 10), cell("Second", 120), cell("$500,000", 260)),
		textRow(cell("Footer text paragraph here", 10)),
	}
	tables := d.detect(3, rows)
	require.Len(t, tables, 1)

	table := tables[0]
	require.Equal(t, 3, table.Page)
	require.Equal(t, 1, table.TableIndex)
	require.Equal(t, []string{"Date", "Call Number", "Amount"}, table.Headers)
	require.Len(t, table.Rows, 2)
	require.Equal(t, []string{"2023-01-15", "Initial", "$1,000,000"}, table.Rows[0])
}

func TestDetectSplitsOnColumnCountChange(t *testing.T) {
	d := newTableDetector()
	rows := pdf.Rows{
		textRow(cell("Date", 10), cell("Amount", 200)),
		textRow(cell("2023-01-15", 10), cell("$100", 200)),
		textRow(cell("Date", 10), cell("Type", 120), cell("Amount", 260)),
		textRow(cell("2024-03-31", 10), cell("Dividend", 120), cell("$200", 260)),
	}
	tables := d.detect(1, rows)
	require.Len(t, tables, 2)
	require.Len(t, tables[0].Headers, 2)
	require.Len(t, tables[1].Headers, 3)
	require.Equal(t, 2, tables[1].TableIndex)
}

func TestDetectIgnoresShortRuns(t *testing.T) {
	d := newTableDetector()
	rows := pdf.Rows{
		textRow(cell("Date", 10), cell("Amount", 200)),
		textRow(cell("Narrative text", 10)),
	}
	require.Empty(t, d.detect(1, rows))
}
