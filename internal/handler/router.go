package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/AMV0027/gcn-final/internal/metrics"
)

type RouterDeps struct {
	Query     *QueryHandler
	Chats     *ChatHandler
	Documents *DocumentHandler
	// QueryLimit guards the query endpoint; nil disables it.
	QueryLimit gin.HandlerFunc
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	queryChain := []gin.HandlerFunc{}
	if deps.QueryLimit != nil {
		queryChain = append(queryChain, deps.QueryLimit)
	}
	queryChain = append(queryChain, deps.Query.Query)
	api.POST("/query", queryChain...)

	api.GET("/documents", deps.Documents.List)
	api.GET("/documents/file", deps.Documents.File)

	api.GET("/chats", deps.Chats.List)
	api.GET("/chats/:chat_id", deps.Chats.History)
	api.DELETE("/chats/:chat_id", deps.Chats.Delete)

	api.GET("/metrics", metrics.Handler())
}
