package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/avelinag/medlink/internal/models"
)

// MessageType определяет типы сообщений
type MessageType string

const (
	// Системные типы
	TypeConnectionEstablished MessageType = "connection_established"
	TypePing                  MessageType = "ping"
	TypePong                  MessageType = "pong"
	TypeError                 MessageType = "error"

	// Входящие типы
	TypeChatMessage  MessageType = "chat_message"
	TypeTyping       MessageType = "typing"
	TypeReadMessages MessageType = "read_messages"
	TypeMarkChatRead MessageType = "mark_chat_read"

	// Исходящие типы
	TypeNewMessage     MessageType = "new_message"
	TypeMessageSent    MessageType = "message_sent"
	TypeNewChatMessage MessageType = "new_chat_message"
)

// Inbound сообщение от клиента, вид определяется дискриминатором type
type Inbound struct {
	Type       MessageType `json:"type"`
	Text       string      `json:"text"`
	FileURL    string      `json:"file_url"`
	IsTyping   bool        `json:"is_typing"`
	MessageIDs []uuid.UUID `json:"message_ids"`
	ChatID     *uuid.UUID  `json:"chat_id"`
}

type Client struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Username string
	Role     models.Role

	// Карточка доктора, не nil только для роли доктора.
	// Заполняется один раз при установке соединения.
	Doctor *models.Doctor

	// ChatID чата, к которому привязано соединение;
	// nil - соединение со списком чатов (канал пользователя)
	ChatID *uuid.UUID

	Conn *websocket.Conn
	Send chan []byte
	Hub  *Hub
}

type Hub struct {
	clients map[uuid.UUID]*Client

	// Соединения, открытые на конкретный чат (chat_{id})
	chats map[uuid.UUID]map[uuid.UUID]*Client

	// Соединения списка чатов по пользователю (user_{id}_chats)
	users map[uuid.UUID]map[uuid.UUID]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Контекст для graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub создает новый Hub
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[uuid.UUID]*Client),
		chats:      make(map[uuid.UUID]map[uuid.UUID]*Client),
		users:      make(map[uuid.UUID]map[uuid.UUID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run запускает hub
func (h *Hub) Run() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ticker.C:
			h.ping()
		}
	}
}

// Stop останавливает hub
func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		close(client.Send)
		if client.Conn != nil {
			client.Conn.Close()
		}
	}
}

// Register регистрирует нового клиента.
// После остановки hub вызов не блокируется.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

// Unregister отменяет регистрацию клиента.
// После остановки hub вызов не блокируется, соединения закрыл Stop.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client

	if client.ChatID != nil {
		chatID := *client.ChatID
		if _, ok := h.chats[chatID]; !ok {
			h.chats[chatID] = make(map[uuid.UUID]*Client)
		}
		h.chats[chatID][client.ID] = client
	} else {
		if _, ok := h.users[client.UserID]; !ok {
			h.users[client.UserID] = make(map[uuid.UUID]*Client)
		}
		h.users[client.UserID][client.ID] = client
	}

	log.Printf("Client registered: %s (User: %s)", client.ID, client.UserID)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}

	if client.ChatID != nil {
		chatID := *client.ChatID
		if chat, ok := h.chats[chatID]; ok {
			delete(chat, client.ID)
			if len(chat) == 0 {
				delete(h.chats, chatID)
			}
		}
	} else {
		if conns, ok := h.users[client.UserID]; ok {
			delete(conns, client.ID)
			if len(conns) == 0 {
				delete(h.users, client.UserID)
			}
		}
	}

	delete(h.clients, client.ID)
	close(client.Send)

	log.Printf("Client unregistered: %s (User: %s)", client.ID, client.UserID)
}

// SendToChat отправляет сообщение всем соединениям чата, кроме соединений excludeUser
func (h *Hub) SendToChat(chatID uuid.UUID, message []byte, excludeUser uuid.UUID) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if chat, ok := h.chats[chatID]; ok {
		for _, client := range chat {
			if client.UserID == excludeUser {
				continue
			}
			select {
			case client.Send <- message:
			default:
				log.Printf("Client %s send channel full", client.ID)
			}
		}
	}
}

// SendToChatUser отправляет сообщение соединениям конкретного пользователя внутри чата
func (h *Hub) SendToChatUser(chatID, userID uuid.UUID, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if chat, ok := h.chats[chatID]; ok {
		for _, client := range chat {
			if client.UserID != userID {
				continue
			}
			select {
			case client.Send <- message:
			default:
				log.Printf("Client %s send channel full", client.ID)
			}
		}
	}
}

// SendToUser отправляет уведомление соединениям списка чатов пользователя
func (h *Hub) SendToUser(userID uuid.UUID, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if conns, ok := h.users[userID]; ok {
		for _, client := range conns {
			select {
			case client.Send <- message:
			default:
				log.Printf("Client %s send channel full", client.ID)
			}
		}
	}
}

func (h *Hub) ping() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	msg := map[string]interface{}{
		"type":      TypePing,
		"timestamp": time.Now(),
	}

	if data, err := json.Marshal(msg); err == nil {
		for _, client := range h.clients {
			select {
			case client.Send <- data:
			default:
			}
		}
	}
}

// ChatUsers возвращает пользователей с открытым соединением на чат
func (h *Hub) ChatUsers(chatID uuid.UUID) []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	userMap := make(map[uuid.UUID]bool)
	if chat, ok := h.chats[chatID]; ok {
		for _, client := range chat {
			userMap[client.UserID] = true
		}
	}

	users := make([]uuid.UUID, 0, len(userMap))
	for userID := range userMap {
		users = append(users, userID)
	}
	return users
}
