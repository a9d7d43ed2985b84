package extract

import (
	"strings"

	"github.com/fundscope/fundscope/internal/model"
)

// Keyword rules are checked in declaration order and the first matching
// category wins; a table mentioning both capital calls and distributions is a
// capital-call table. The order is load-bearing.
var classifyRules = []struct {
	category model.TableCategory
	keywords []string
}{
	{model.TableCapitalCalls, []string{"capital call", "call number", "capital contribution", "capital drawdown"}},
	{model.TableDistributions, []string{"distribution", "return of capital", "dividend", "recallable"}},
	{model.TableAdjustments, []string{"adjustment", "rebalance", "recalled distribution", "capital call adjustment"}},
}

// Sample depth for classification: headers plus the first few data rows.
const classifySampleRows = 5

// Classify assigns a semantic category to a table by keyword matching over
// its headers and leading rows. Pure function of its input.
func Classify(table model.RawTable) model.TableCategory {
	var sb strings.Builder
	for _, h := range table.Headers {
		sb.WriteString(h)
		sb.WriteByte(' ')
	}
	for i, row := range table.Rows {
		if i >= classifySampleRows {
			break
		}
		for _, cell := range row {
			sb.WriteString(cell)
			sb.WriteByte(' ')
		}
	}
	blob := strings.ToLower(sb.String())

	for _, rule := range classifyRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(blob, keyword) {
				return rule.category
			}
		}
	}
	return model.TableUnknown
}
