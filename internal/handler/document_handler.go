package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appErr "github.com/fundscope/fundscope/internal/pkg/errors"
	"github.com/fundscope/fundscope/internal/pkg/response"
	"github.com/fundscope/fundscope/internal/service"
)

type DocumentHandler struct {
	documents *service.DocumentService
}

func NewDocumentHandler(documents *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// Upload accepts a multipart PDF. fund_id is optional; without it the
// document lands on the default fund.
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		handleError(c, appErr.ErrInvalidFile)
		return
	}
	var fundID int64
	if raw := c.PostForm("fund_id"); raw != "" {
		fundID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || fundID <= 0 {
			handleError(c, appErr.ErrInvalid)
			return
		}
	}
	src, err := file.Open()
	if err != nil {
		handleError(c, appErr.ErrInvalidFile)
		return
	}
	defer src.Close()

	doc, err := h.documents.Upload(c.Request.Context(), fundID, file.Filename, src, file.Size)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, doc)
}

func (h *DocumentHandler) List(c *gin.Context) {
	fundID, err := queryID(c, "fund_id")
	if err != nil {
		handleError(c, err)
		return
	}
	docs, err := h.documents.List(c.Request.Context(), fundID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, docs)
}

// Get reports a document including its parsing status, which is how clients
// poll an upload to completion.
func (h *DocumentHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		handleError(c, err)
		return
	}
	doc, err := h.documents.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, doc)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		handleError(c, err)
		return
	}
	if err := h.documents.Delete(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": id})
}
