package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/AMV0027/gcn-final/internal/pkg/errcode"
	"github.com/AMV0027/gcn-final/internal/pkg/response"
	"github.com/AMV0027/gcn-final/internal/service"
)

type QueryHandler struct {
	chats *service.ChatService
}

func NewQueryHandler(chats *service.ChatService) *QueryHandler {
	return &QueryHandler{chats: chats}
}

type queryRequest struct {
	Query  string `json:"query"`
	ChatID string `json:"chat_id"`
}

// Query answers a compliance question. Empty retrieval comes back as a
// successful response whose data only carries "error".
func (h *QueryHandler) Query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	res, err := h.chats.Ask(c.Request.Context(), req.ChatID, req.Query)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, res)
}
