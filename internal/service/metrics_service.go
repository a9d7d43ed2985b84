package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fundscope/fundscope/internal/model"
	"github.com/fundscope/fundscope/internal/repo"
)

const (
	irrMaxIterations = 200
	irrTolerance     = 1e-7
)

// MetricsService derives fund performance figures from extracted
// transactions. Nothing here is persisted; metrics are always recomputed
// from the current transaction set.
type MetricsService struct {
	txns *repo.TransactionRepo
}

func NewMetricsService(txns *repo.TransactionRepo) *MetricsService {
	return &MetricsService{txns: txns}
}

// Compute returns the metrics for one fund. Contribution-type adjustments
// reduce paid-in capital; all adjustments reduce NAV.
func (s *MetricsService) Compute(ctx context.Context, fundID int64) (*model.FundMetrics, error) {
	calls, err := s.txns.ListCapitalCalls(ctx, fundID)
	if err != nil {
		return nil, err
	}
	dists, err := s.txns.ListDistributions(ctx, fundID)
	if err != nil {
		return nil, err
	}
	adjs, err := s.txns.ListAdjustments(ctx, fundID)
	if err != nil {
		return nil, err
	}
	return computeMetrics(fundID, calls, dists, adjs), nil
}

func computeMetrics(fundID int64, calls []model.CapitalCall, dists []model.Distribution, adjs []model.Adjustment) *model.FundMetrics {
	totalCalls := decimal.Zero
	for _, c := range calls {
		totalCalls = totalCalls.Add(c.Amount)
	}
	totalDists := decimal.Zero
	for _, d := range dists {
		totalDists = totalDists.Add(d.Amount)
	}
	totalAdjs := decimal.Zero
	contribAdjs := decimal.Zero
	for _, a := range adjs {
		totalAdjs = totalAdjs.Add(a.Amount)
		if a.IsContributionAdjustment {
			contribAdjs = contribAdjs.Add(a.Amount)
		}
	}

	pic := totalCalls.Sub(contribAdjs)
	nav := totalCalls.Sub(totalDists).Sub(totalAdjs)

	m := &model.FundMetrics{
		FundID:             fundID,
		TotalCalls:         totalCalls,
		TotalDistributions: totalDists,
		TotalAdjustments:   totalAdjs,
		PaidInCapital:      pic,
		NAV:                nav,
	}
	if !pic.IsZero() {
		picF, _ := pic.Float64()
		distF, _ := totalDists.Float64()
		navF, _ := nav.Float64()
		m.DPI = distF / picF
		m.RVPI = navF / picF
		m.TVPI = (distF + navF) / picF
	}
	m.IRR = irr(cashFlows(calls, dists))
	return m
}

type cashFlow struct {
	date   time.Time
	amount float64
}

// cashFlows orders the fund's dated flows for IRR: capital calls are money
// out (negative), distributions money in (positive).
func cashFlows(calls []model.CapitalCall, dists []model.Distribution) []cashFlow {
	flows := make([]cashFlow, 0, len(calls)+len(dists))
	for _, c := range calls {
		amt, _ := c.Amount.Float64()
		flows = append(flows, cashFlow{date: c.CallDate, amount: -amt})
	}
	for _, d := range dists {
		amt, _ := d.Amount.Float64()
		flows = append(flows, cashFlow{date: d.DistributionDate, amount: amt})
	}
	sort.Slice(flows, func(i, j int) bool { return flows[i].date.Before(flows[j].date) })
	return flows
}

// irr finds the annualized rate where the net present value of the dated
// flows is zero, by bisection. It returns 0 unless there is at least one
// inflow and one outflow.
func irr(flows []cashFlow) float64 {
	hasNeg, hasPos := false, false
	for _, f := range flows {
		if f.amount < 0 {
			hasNeg = true
		}
		if f.amount > 0 {
			hasPos = true
		}
	}
	if !hasNeg || !hasPos {
		return 0
	}

	npv := func(rate float64) float64 {
		start := flows[0].date
		total := 0.0
		for _, f := range flows {
			years := f.date.Sub(start).Hours() / 24 / 365
			total += f.amount / math.Pow(1+rate, years)
		}
		return total
	}

	lo, hi := -0.9999, 10.0
	fLo := npv(lo)
	if fLo*npv(hi) > 0 {
		return 0
	}
	for i := 0; i < irrMaxIterations; i++ {
		mid := (lo + hi) / 2
		fMid := npv(mid)
		if math.Abs(fMid) < irrTolerance || hi-lo < irrTolerance {
			return mid
		}
		if fLo*fMid < 0 {
			hi = mid
		} else {
			lo = mid
			fLo = fMid
		}
	}
	return (lo + hi) / 2
}
