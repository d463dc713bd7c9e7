package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/avelinag/medlink/internal/database"
	"github.com/avelinag/medlink/internal/handlers/dto"
	"github.com/avelinag/medlink/internal/models"
	"github.com/avelinag/medlink/internal/service"
)

type ChatHandler struct {
	db           *database.Database
	consultation *service.Consultation
}

func NewChatHandler(db *database.Database, consultation *service.Consultation) *ChatHandler {
	return &ChatHandler{db: db, consultation: consultation}
}

// ListMyChats возвращает чаты пользователя с последним сообщением
// и количеством непрочитанного в каждом
func (h *ChatHandler) ListMyChats(c *gin.Context) {
	actor := actorFromContext(c)

	var chats []models.Chat
	var err error

	if actor.Role.IsDoctor() {
		chats, err = h.db.ListDoctorChats(actor.Doctor.ID.String())
	} else {
		chats, err = h.db.ListPatientChats(actor.UserID.String())
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get chats"})
		return
	}

	result := make([]gin.H, len(chats))
	for i, chat := range chats {
		entry := gin.H{
			"id":         chat.ID,
			"request":    formatRequestResponse(&chat.Request),
			"created_at": chat.CreatedAt,
			"updated_at": chat.UpdatedAt,
		}

		if last, err := h.db.LastMessage(chat.ID.String()); err == nil && last != nil {
			entry["last_message"] = gin.H{
				"id":         last.ID,
				"sender_id":  last.SenderID,
				"text":       last.Preview(),
				"created_at": last.CreatedAt,
			}
		}

		if count, err := h.db.UnreadCount(chat.ID.String(), actor.UserID.String()); err == nil {
			entry["unread_count"] = count
		}

		result[i] = entry
	}

	c.JSON(http.StatusOK, gin.H{"chats": result})
}

// GetChat возвращает чат с сообщениями. Открытие детального вида
// отмечает все чужие сообщения прочитанными.
func (h *ChatHandler) GetChat(c *gin.Context) {
	actor := actorFromContext(c)
	chatID := c.Param("id")

	chat, err := h.db.GetChat(chatID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
		return
	}

	if !service.IsParticipant(chat, actor) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	if err := h.consultation.MarkChatRead(chatID, actor); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark chat read"})
		return
	}

	messages, err := h.db.GetChatMessages(chatID, 50, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get messages"})
		return
	}

	result := make([]gin.H, len(messages))
	for i, msg := range messages {
		result[i] = formatMessageResponse(&msg)
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         chat.ID,
		"request":    formatRequestResponse(&chat.Request),
		"created_at": chat.CreatedAt,
		"updated_at": chat.UpdatedAt,
		"messages":   result,
	})
}

// GetChatMessages получает историю сообщений чата с пагинацией
func (h *ChatHandler) GetChatMessages(c *gin.Context) {
	actor := actorFromContext(c)
	chatID := c.Param("id")

	chat, err := h.db.GetChat(chatID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
		return
	}

	if !service.IsParticipant(chat, actor) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	// Параметры пагинации
	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	var beforeID *uuid.UUID
	if before := c.Query("before"); before != "" {
		if id, err := uuid.Parse(before); err == nil {
			beforeID = &id
		}
	}

	messages, err := h.db.GetChatMessages(chatID, limit, beforeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get messages"})
		return
	}

	result := make([]gin.H, len(messages))
	for i, msg := range messages {
		result[i] = formatMessageResponse(&msg)
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": result,
		"has_more": len(messages) == limit,
	})
}

// SendMessage отправляет сообщение через HTTP (альтернатива WebSocket)
func (h *ChatHandler) SendMessage(c *gin.Context) {
	actor := actorFromContext(c)
	chatID := c.Param("id")

	var req dto.SendMessage
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.consultation.SendMessage(chatID, actor, req.Text, req.FileURL, req.FileName)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrChatNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
		case errors.Is(err, service.ErrAccessDenied):
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		case errors.Is(err, service.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "message must contain text or a file"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		}
		return
	}

	c.JSON(http.StatusCreated, formatMessageResponse(message))
}

// formatMessageResponse форматирует ответ для сообщения
func formatMessageResponse(msg *models.Message) gin.H {
	response := gin.H{
		"id":         msg.ID,
		"chat_id":    msg.ChatID,
		"sender_id":  msg.SenderID,
		"text":       msg.Text,
		"is_read":    msg.IsRead,
		"created_at": msg.CreatedAt,
	}

	if msg.FileURL != "" {
		response["file_url"] = msg.FileURL
		response["file_name"] = msg.FileName
	}

	if msg.ReadAt != nil {
		response["read_at"] = msg.ReadAt
	}

	if msg.Sender.ID != uuid.Nil {
		response["sender"] = gin.H{
			"id":       msg.Sender.ID,
			"username": msg.Sender.Username,
		}
	}

	return response
}
