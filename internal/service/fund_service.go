package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/fundscope/fundscope/internal/model"
	"github.com/fundscope/fundscope/internal/repo"
)

// FundService is thin CRUD over funds plus cleanup of the derived state a
// fund drags along (indexed chunks).
type FundService struct {
	funds   *repo.FundRepo
	txns    *repo.TransactionRepo
	vectors *repo.VectorRepo
}

func NewFundService(funds *repo.FundRepo, txns *repo.TransactionRepo, vectors *repo.VectorRepo) *FundService {
	return &FundService{funds: funds, txns: txns, vectors: vectors}
}

func (s *FundService) Create(ctx context.Context, fund *model.Fund) error {
	fund.Name = strings.TrimSpace(fund.Name)
	if fund.Name == "" {
		return fmt.Errorf("fund name is required")
	}
	if fund.FundType == "" {
		fund.FundType = "Unknown"
	}
	return s.funds.Create(ctx, fund)
}

func (s *FundService) Get(ctx context.Context, id int64) (*model.Fund, error) {
	return s.funds.GetByID(ctx, id)
}

func (s *FundService) List(ctx context.Context) ([]model.Fund, error) {
	return s.funds.List(ctx)
}

// Delete removes the fund and its indexed chunks. Documents and
// transactions go with it through the schema's cascade rules.
func (s *FundService) Delete(ctx context.Context, id int64) error {
	if err := s.vectors.Clear(ctx, &id); err != nil {
		logutil.GetLogger(ctx).Warn("failed to clear fund embeddings",
			zap.Int64("fund_id", id), zap.Error(err))
	}
	return s.funds.Delete(ctx, id)
}

func (s *FundService) Transactions(ctx context.Context, fundID int64) ([]model.CapitalCall, []model.Distribution, []model.Adjustment, error) {
	if _, err := s.funds.GetByID(ctx, fundID); err != nil {
		return nil, nil, nil, err
	}
	calls, err := s.txns.ListCapitalCalls(ctx, fundID)
	if err != nil {
		return nil, nil, nil, err
	}
	dists, err := s.txns.ListDistributions(ctx, fundID)
	if err != nil {
		return nil, nil, nil, err
	}
	adjs, err := s.txns.ListAdjustments(ctx, fundID)
	if err != nil {
		return nil, nil, nil, err
	}
	return calls, dists, adjs, nil
}
