package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/fundscope/fundscope/internal/model"
	appErr "github.com/fundscope/fundscope/internal/pkg/errors"
	"github.com/fundscope/fundscope/internal/pkg/response"
	"github.com/fundscope/fundscope/internal/service"
)

type ChatHandler struct {
	search *service.SearchService
}

func NewChatHandler(search *service.SearchService) *ChatHandler {
	return &ChatHandler{search: search}
}

type askRequest struct {
	FundID         int64  `json:"fund_id"`
	ConversationID string `json:"conversation_id"`
	Question       string `json:"question"`
}

func (h *ChatHandler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.FundID <= 0 || req.Question == "" {
		handleError(c, appErr.ErrInvalid)
		return
	}
	answer, err := h.search.Ask(c.Request.Context(), req.FundID, req.ConversationID, req.Question)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, answer)
}

type searchRequest struct {
	Query      string `json:"query"`
	FundID     *int64 `json:"fund_id"`
	DocumentID *int64 `json:"document_id"`
}

func (h *ChatHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == "" {
		handleError(c, appErr.ErrInvalid)
		return
	}
	results := h.search.Search(c.Request.Context(), req.Query, model.SearchFilter{
		FundID:     req.FundID,
		DocumentID: req.DocumentID,
	})
	response.Success(c, results)
}

func (h *ChatHandler) History(c *gin.Context) {
	conversationID := c.Param("id")
	if conversationID == "" {
		handleError(c, appErr.ErrInvalid)
		return
	}
	messages, err := h.search.History(c.Request.Context(), conversationID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, messages)
}
