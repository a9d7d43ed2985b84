package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type AdjustmentCategory string

const (
	AdjustmentRecallableDistribution AdjustmentCategory = "recallable_distribution"
	AdjustmentCapitalCall            AdjustmentCategory = "capital_call_adjustment"
	AdjustmentContribution           AdjustmentCategory = "contribution_adjustment"
	AdjustmentFee                    AdjustmentCategory = "fee_adjustment"
	AdjustmentExpense                AdjustmentCategory = "expense_adjustment"
	AdjustmentOther                  AdjustmentCategory = "other"
)

type CapitalCall struct {
	ID          int64           `json:"id"`
	FundID      int64           `json:"fund_id"`
	CallDate    time.Time       `json:"call_date"`
	CallType    string          `json:"call_type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type Distribution struct {
	ID               int64           `json:"id"`
	FundID           int64           `json:"fund_id"`
	DistributionDate time.Time       `json:"distribution_date"`
	DistributionType string          `json:"distribution_type"`
	Amount           decimal.Decimal `json:"amount"`
	IsRecallable     bool            `json:"is_recallable"`
	Description      string          `json:"description"`
}

type Adjustment struct {
	ID                       int64              `json:"id"`
	FundID                   int64              `json:"fund_id"`
	AdjustmentDate           time.Time          `json:"adjustment_date"`
	AdjustmentType           string             `json:"adjustment_type"`
	Category                 AdjustmentCategory `json:"category"`
	Amount                   decimal.Decimal    `json:"amount"`
	IsContributionAdjustment bool               `json:"is_contribution_adjustment"`
	Description              string             `json:"description"`
}
