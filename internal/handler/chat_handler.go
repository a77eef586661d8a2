package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/AMV0027/gcn-final/internal/pkg/response"
	"github.com/AMV0027/gcn-final/internal/service"
)

type ChatHandler struct {
	chats *service.ChatService
}

func NewChatHandler(chats *service.ChatService) *ChatHandler {
	return &ChatHandler{chats: chats}
}

func (h *ChatHandler) List(c *gin.Context) {
	items, err := h.chats.ListChats(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": items})
}

func (h *ChatHandler) History(c *gin.Context) {
	items, err := h.chats.History(c.Request.Context(), c.Param("chat_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": items})
}

func (h *ChatHandler) Delete(c *gin.Context) {
	if err := h.chats.DeleteChat(c.Request.Context(), c.Param("chat_id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}
