package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type chatContentRequest struct {
	Content string `json:"content"`
}

func (h *Handler) chatView() gin.H {
	return gin.H{
		"messages":  h.Chat.Messages(),
		"is_typing": h.Chat.IsTyping(),
		"selected":  h.Chat.SelectedMessages(),
	}
}

func (h *Handler) GetChatMessages(c *gin.Context) {
	c.JSON(http.StatusOK, h.chatView())
}

// SendChatMessage records the user's message. The reply is appended later;
// clients poll GetChatMessages while is_typing is true.
func (h *Handler) SendChatMessage(c *gin.Context) {
	var req chatContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	msg, err := h.Chat.SendMessage(req.Content)
	if err != nil {
		h.fail(c, err, "Failed to send message")
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *Handler) ClearChat(c *gin.Context) {
	h.Chat.ClearChat()
	c.JSON(http.StatusOK, h.chatView())
}

func (h *Handler) DeleteChatMessage(c *gin.Context) {
	deleted := h.Chat.DeleteMessage(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (h *Handler) EditChatMessage(c *gin.Context) {
	var req chatContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	h.respondChat(c, h.Chat.EditMessage(c.Param("id"), req.Content))
}

func (h *Handler) StartEditing(c *gin.Context) {
	h.respondChat(c, h.Chat.StartEditing(c.Param("id")))
}

func (h *Handler) StageEdit(c *gin.Context) {
	var req chatContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	h.respondChat(c, h.Chat.StageEdit(c.Param("id"), req.Content))
}

func (h *Handler) CommitEdit(c *gin.Context) {
	h.respondChat(c, h.Chat.CommitEdit(c.Param("id")))
}

func (h *Handler) CancelEditing(c *gin.Context) {
	h.respondChat(c, h.Chat.CancelEditing(c.Param("id")))
}

func (h *Handler) GetChatSelection(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"selected": h.Chat.SelectedMessages()})
}

func (h *Handler) ToggleChatSelection(c *gin.Context) {
	selected, err := h.Chat.ToggleSelection(c.Param("id"))
	if err != nil {
		h.fail(c, err, "Failed to toggle selection")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":       c.Param("id"),
		"selected": selected,
	})
}

func (h *Handler) ClearChatSelection(c *gin.Context) {
	h.Chat.ClearSelection()
	c.JSON(http.StatusOK, gin.H{"selected": h.Chat.SelectedMessages()})
}

func (h *Handler) DeleteSelectedChatMessages(c *gin.Context) {
	removed := h.Chat.DeleteSelectedMessages()
	c.JSON(http.StatusOK, gin.H{"deleted": removed})
}

func (h *Handler) respondChat(c *gin.Context, err error) {
	if err != nil {
		h.fail(c, err, "Failed to update message")
		return
	}
	c.JSON(http.StatusOK, h.chatView())
}
