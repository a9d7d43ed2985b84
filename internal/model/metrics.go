package model

import "github.com/shopspring/decimal"

// FundMetrics are the standard private equity performance figures derived
// from a fund's extracted transactions. Ratios are zero when paid-in capital
// is zero.
type FundMetrics struct {
	FundID             int64           `json:"fund_id"`
	TotalCalls         decimal.Decimal `json:"total_calls"`
	TotalDistributions decimal.Decimal `json:"total_distributions"`
	TotalAdjustments   decimal.Decimal `json:"total_adjustments"`
	PaidInCapital      decimal.Decimal `json:"paid_in_capital"`
	NAV                decimal.Decimal `json:"nav"`
	DPI                float64         `json:"dpi"`
	RVPI               float64         `json:"rvpi"`
	TVPI               float64         `json:"tvpi"`
	IRR                float64         `json:"irr"`
}
