package controllers

import (
	"net/http"

	"github.com/hieuit01/BTL-CCNLTHD/services"

	"github.com/gin-gonic/gin"
)

type ChatController struct {
	Chats *services.ChatService
}

func NewChatController(chats *services.ChatService) *ChatController {
	return &ChatController{Chats: chats}
}

// List serves /chats/?with=<user id>.
func (h *ChatController) List(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	with, ok := queryID(c, "with")
	if !ok {
		return
	}
	out, err := h.Chats.List(c.Request.Context(), caller, with)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *ChatController) Send(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	var input services.ChatInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	out, err := h.Chats.Send(c.Request.Context(), caller, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *ChatController) MarkRead(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.Chats.MarkRead(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *ChatController) Revoke(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.Chats.Revoke(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
