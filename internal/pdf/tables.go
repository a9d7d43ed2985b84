package pdf

import (
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/fundscope/fundscope/internal/model"
)

// Table detection works on positional text rows: glyphs in a row are merged
// into cells wherever the horizontal gap exceeds a threshold, and consecutive
// rows with the same cell count form a table whose first row is taken as the
// header. This recovers the ruled-grid tables that fund reports use; anything
// fancier is out of reach without layout analysis.
type tableDetector struct {
	minCellGap float64
	minColumns int
	minRows    int
}

func newTableDetector() *tableDetector {
	return &tableDetector{
		minCellGap: 12,
		minColumns: 2,
		minRows:    2, // header plus at least one data row
	}
}

func (d *tableDetector) detect(pageNum int, rows pdf.Rows) []model.RawTable {
	cellRows := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := d.splitCells(row)
		cellRows = append(cellRows, cells)
	}

	var tables []model.RawTable
	tableIndex := 0
	run := [][]string{}
	flush := func() {
		if len(run) >= d.minRows {
			tableIndex++
			tables = append(tables, model.RawTable{
				Page:       pageNum,
				TableIndex: tableIndex,
				Headers:    run[0],
				Rows:       run[1:],
			})
		}
		run = nil
	}
	for _, cells := range cellRows {
		if len(cells) < d.minColumns {
			flush()
			continue
		}
		if len(run) > 0 && len(cells) != len(run[0]) {
			flush()
		}
		run = append(run, cells)
	}
	flush()
	return tables
}

// splitCells merges a row's glyphs left-to-right, starting a new cell when
// the horizontal gap to the previous glyph exceeds the threshold.
func (d *tableDetector) splitCells(row *pdf.Row) []string {
	glyphs := make([]pdf.Text, len(row.Content))
	copy(glyphs, row.Content)
	sort.Slice(glyphs, func(i, j int) bool { return glyphs[i].X < glyphs[j].X })

	var cells []string
	var current strings.Builder
	lastEnd := 0.0
	for i, g := range glyphs {
		gap := d.minCellGap
		if g.FontSize > gap {
			gap = g.FontSize
		}
		if i > 0 && g.X-lastEnd > gap {
			if cell := strings.TrimSpace(current.String()); cell != "" {
				cells = append(cells, cell)
			}
			current.Reset()
		}
		current.WriteString(g.S)
		lastEnd = g.X + g.W
	}
	if cell := strings.TrimSpace(current.String()); cell != "" {
		cells = append(cells, cell)
	}
	return cells
}
