package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/fundscope/fundscope/internal/model"
	appErr "github.com/fundscope/fundscope/internal/pkg/errors"
	"github.com/fundscope/fundscope/internal/pkg/response"
	"github.com/fundscope/fundscope/internal/service"
)

type FundHandler struct {
	funds   *service.FundService
	metrics *service.MetricsService
}

func NewFundHandler(funds *service.FundService, metrics *service.MetricsService) *FundHandler {
	return &FundHandler{funds: funds, metrics: metrics}
}

type createFundRequest struct {
	Name        string `json:"name"`
	GPName      string `json:"gp_name"`
	FundType    string `json:"fund_type"`
	VintageYear int    `json:"vintage_year"`
}

func (h *FundHandler) Create(c *gin.Context) {
	var req createFundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, appErr.ErrInvalid)
		return
	}
	fund := &model.Fund{
		Name:        req.Name,
		GPName:      req.GPName,
		FundType:    req.FundType,
		VintageYear: req.VintageYear,
	}
	if err := h.funds.Create(c.Request.Context(), fund); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, fund)
}

func (h *FundHandler) List(c *gin.Context) {
	funds, err := h.funds.List(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, funds)
}

func (h *FundHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		handleError(c, err)
		return
	}
	fund, err := h.funds.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, fund)
}

func (h *FundHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		handleError(c, err)
		return
	}
	if err := h.funds.Delete(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": id})
}

func (h *FundHandler) Transactions(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		handleError(c, err)
		return
	}
	calls, dists, adjs, err := h.funds.Transactions(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"capital_calls": calls,
		"distributions": dists,
		"adjustments":   adjs,
	})
}

func (h *FundHandler) Metrics(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		handleError(c, err)
		return
	}
	metrics, err := h.metrics.Compute(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, metrics)
}
