package handlers

import (
	"errors"
	"log"
	"path"

	"github.com/avelinag/medlink/internal/database"
	"github.com/avelinag/medlink/internal/service"
	"github.com/avelinag/medlink/internal/websocket"
)

// ChatEventHandler обрабатывает входящие сообщения WebSocket клиентов:
// отправку сообщений, индикаторы набора и отметки о прочтении
type ChatEventHandler struct {
	consultation *service.Consultation
	delivery     *websocket.Delivery
}

func NewChatEventHandler(consultation *service.Consultation, delivery *websocket.Delivery) *ChatEventHandler {
	return &ChatEventHandler{
		consultation: consultation,
		delivery:     delivery,
	}
}

func (h *ChatEventHandler) HandleMessage(client *websocket.Client, msg *websocket.Inbound) error {
	switch msg.Type {
	case websocket.TypeChatMessage:
		return h.handleChatMessage(client, msg)

	case websocket.TypeTyping:
		return h.handleTyping(client, msg)

	case websocket.TypeReadMessages:
		return h.handleReadMessages(client, msg)

	case websocket.TypeMarkChatRead:
		return h.handleMarkChatRead(client, msg)

	default:
		log.Printf("Unknown message type: %s", msg.Type)
		return nil
	}
}

func clientActor(client *websocket.Client) service.Actor {
	return service.Actor{
		UserID:   client.UserID,
		Username: client.Username,
		Role:     client.Role,
		Doctor:   client.Doctor,
	}
}

func (h *ChatEventHandler) handleChatMessage(client *websocket.Client, msg *websocket.Inbound) error {
	if client.ChatID == nil {
		return websocket.ErrInvalidMessage
	}

	// Клиент шлёт только url файла, имя восстанавливается из него
	fileName := ""
	if msg.FileURL != "" {
		fileName = path.Base(msg.FileURL)
	}

	_, err := h.consultation.SendMessage(client.ChatID.String(), clientActor(client), msg.Text, msg.FileURL, fileName)
	if err != nil {
		if errors.Is(err, database.ErrChatNotFound) {
			return websocket.ErrChatNotFound
		}
		if errors.Is(err, service.ErrAccessDenied) {
			return websocket.ErrAccessDenied
		}
		return err
	}

	// Подтверждение отправителю и рассылка остальным уже ушли через Delivery
	return nil
}

// handleTyping рассылает индикатор набора всем в чате, ничего не персистит
func (h *ChatEventHandler) handleTyping(client *websocket.Client, msg *websocket.Inbound) error {
	if client.ChatID == nil {
		return websocket.ErrInvalidMessage
	}

	h.delivery.Typing(*client.ChatID, client.UserID, client.Username, msg.IsTyping)
	return nil
}

func (h *ChatEventHandler) handleReadMessages(client *websocket.Client, msg *websocket.Inbound) error {
	if client.ChatID == nil {
		return websocket.ErrInvalidMessage
	}

	return h.consultation.ReadMessages(client.ChatID.String(), clientActor(client), msg.MessageIDs)
}

// handleMarkChatRead приходит с соединения списка чатов, chat_id в payload
func (h *ChatEventHandler) handleMarkChatRead(client *websocket.Client, msg *websocket.Inbound) error {
	if msg.ChatID == nil {
		return websocket.ErrInvalidMessage
	}

	return h.consultation.MarkChatRead(msg.ChatID.String(), clientActor(client))
}
