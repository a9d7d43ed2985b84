package extract

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// Date formats are tried strictly in order; the first successful parse wins.
// That makes ambiguous inputs like "05-04-2023" resolve month-first, which
// matches the reports this system ingests. Reordering the list changes
// behavior for day-first locales.
var dateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
	"2006/01/02",
	"01-02-2006",
	"02-01-2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"20060102",
}

// ParseDate parses a cell value against the fixed format list. Returns false
// on blank input or when every format fails, logging a warning in the latter
// case.
func ParseDate(ctx context.Context, value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, format := range dateFormats {
		if t, err := time.Parse(format, value); err == nil {
			return t, true
		}
	}
	logutil.GetLogger(ctx).Warn("could not parse date", zap.String("value", value))
	return time.Time{}, false
}

var amountStripper = strings.NewReplacer("$", "", ",", "", "(", "", ")", "")

// ParseAmount parses a monetary cell value. Parenthesized values and a
// leading minus sign are both treated as negating; combined they still negate
// once, never cancel out.
func ParseAmount(ctx context.Context, value string) (decimal.Decimal, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Decimal{}, false
	}
	negative := strings.HasPrefix(value, "(") && strings.HasSuffix(value, ")")
	cleaned := strings.TrimSpace(amountStripper.Replace(value))
	if strings.HasPrefix(cleaned, "-") {
		negative = true
		cleaned = cleaned[1:]
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		logutil.GetLogger(ctx).Warn("could not parse amount", zap.String("value", value), zap.Error(err))
		return decimal.Decimal{}, false
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, true
}

// ParseBool treats the usual affirmative spellings as true and anything else,
// including blank, as false.
func ParseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "true", "1", "y", "t":
		return true
	}
	return false
}
