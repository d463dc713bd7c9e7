package websocket

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/avelinag/medlink/internal/models"
)

// NewMessagePayload полное сообщение для открытого чата получателя
type NewMessagePayload struct {
	Type           MessageType `json:"type"`
	MessageID      uuid.UUID   `json:"message_id"`
	SenderID       uuid.UUID   `json:"sender_id"`
	SenderUsername string      `json:"sender_username"`
	SenderFullName string      `json:"sender_full_name"`
	SenderIsDoctor bool        `json:"sender_is_doctor"`
	Text           string      `json:"text"`
	FileURL        string      `json:"file_url,omitempty"`
	FileName       string      `json:"file_name,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	IsRead         bool        `json:"is_read"`
}

// MessageSentPayload подтверждение отправителю вместо эха собственного сообщения
type MessageSentPayload struct {
	Type      MessageType `json:"type"`
	MessageID uuid.UUID   `json:"message_id"`
	CreatedAt time.Time   `json:"created_at"`
}

// ChatListPayload компактное уведомление для списка чатов
type ChatListPayload struct {
	Type           MessageType `json:"type"`
	ChatID         uuid.UUID   `json:"chat_id"`
	MessageID      uuid.UUID   `json:"message_id"`
	SenderID       uuid.UUID   `json:"sender_id"`
	SenderUsername string      `json:"sender_username"`
	Text           string      `json:"text"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
	UnreadCount    int64       `json:"unread_count"`
}

// TypingPayload индикатор набора текста, не персистится
type TypingPayload struct {
	Type     MessageType `json:"type"`
	UserID   uuid.UUID   `json:"user_id"`
	Username string      `json:"username"`
	IsTyping bool        `json:"is_typing"`
}

// Delivery разносит события консультаций по каналам hub.
// Все методы best-effort: ошибка рассылки логируется и не возвращается.
type Delivery struct {
	hub *Hub
}

func NewDelivery(hub *Hub) *Delivery {
	return &Delivery{hub: hub}
}

// MessageCreated рассылает сохранённое сообщение: полный payload всем в чате
// кроме отправителя, подтверждение отправителю, уведомление со счётчиком
// непрочитанного в канал списка чатов каждого участника.
func (d *Delivery) MessageCreated(chat *models.Chat, message *models.Message, senderUsername, senderFullName string, senderRole models.Role, unread map[uuid.UUID]int64) {
	full := NewMessagePayload{
		Type:           TypeNewMessage,
		MessageID:      message.ID,
		SenderID:       message.SenderID,
		SenderUsername: senderUsername,
		SenderFullName: senderFullName,
		SenderIsDoctor: senderRole.IsDoctor(),
		Text:           message.Text,
		FileURL:        message.FileURL,
		FileName:       message.FileName,
		CreatedAt:      message.CreatedAt,
		IsRead:         message.IsRead,
	}

	if data, err := json.Marshal(full); err == nil {
		d.hub.SendToChat(chat.ID, data, message.SenderID)
	} else {
		log.Printf("Failed to marshal message payload: %v", err)
	}

	ack := MessageSentPayload{
		Type:      TypeMessageSent,
		MessageID: message.ID,
		CreatedAt: message.CreatedAt,
	}

	if data, err := json.Marshal(ack); err == nil {
		d.hub.SendToChatUser(chat.ID, message.SenderID, data)
	}

	for userID, count := range unread {
		notification := ChatListPayload{
			Type:           TypeNewChatMessage,
			ChatID:         chat.ID,
			MessageID:      message.ID,
			SenderID:       message.SenderID,
			SenderUsername: senderUsername,
			Text:           message.Preview(),
			CreatedAt:      message.CreatedAt,
			UpdatedAt:      chat.UpdatedAt,
			UnreadCount:    count,
		}

		data, err := json.Marshal(notification)
		if err != nil {
			log.Printf("Failed to marshal chat list payload: %v", err)
			continue
		}
		d.hub.SendToUser(userID, data)
	}
}

// Typing рассылает индикатор набора всем в чате, кроме самого пользователя
func (d *Delivery) Typing(chatID, userID uuid.UUID, username string, isTyping bool) {
	payload := TypingPayload{
		Type:     TypeTyping,
		UserID:   userID,
		Username: username,
		IsTyping: isTyping,
	}

	if data, err := json.Marshal(payload); err == nil {
		d.hub.SendToChat(chatID, data, userID)
	}
}
