package handler

import (
	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Funds     *FundHandler
	Documents *DocumentHandler
	Chat      *ChatHandler
	Export    *ExportHandler
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/funds", deps.Funds.Create)
	api.GET("/funds", deps.Funds.List)
	api.GET("/funds/:id", deps.Funds.Get)
	api.DELETE("/funds/:id", deps.Funds.Delete)
	api.GET("/funds/:id/transactions", deps.Funds.Transactions)
	api.GET("/funds/:id/metrics", deps.Funds.Metrics)
	api.GET("/funds/:id/export", deps.Export.ExportFund)

	api.POST("/documents", deps.Documents.Upload)
	api.GET("/documents", deps.Documents.List)
	api.GET("/documents/:id", deps.Documents.Get)
	api.DELETE("/documents/:id", deps.Documents.Delete)

	api.POST("/chat/ask", deps.Chat.Ask)
	api.POST("/chat/search", deps.Chat.Search)
	api.GET("/chat/conversations/:id", deps.Chat.History)
}
