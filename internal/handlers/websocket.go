package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/avelinag/medlink/internal/database"
	"github.com/avelinag/medlink/internal/service"
	ws "github.com/avelinag/medlink/internal/websocket"
)

// WebSocketHandler управляет WebSocket соединениями чатов и списка чатов
type WebSocketHandler struct {
	hub          *ws.Hub
	db           *database.Database
	eventHandler *ChatEventHandler
	upgrader     websocket.Upgrader
}

func NewWebSocketHandler(hub *ws.Hub, db *database.Database, eventHandler *ChatEventHandler) *WebSocketHandler {
	return &WebSocketHandler{
		hub:          hub,
		db:           db,
		eventHandler: eventHandler,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// TODO: Проверить origin в prod
				return true
			},
		},
	}
}

// HandleChatWS подключает участника к каналу конкретного чата.
// Доступ проверяется один раз при подключении; чужие и несуществующие чаты
// закрываются одинаково, без причины в payload.
func (h *WebSocketHandler) HandleChatWS(c *gin.Context) {
	actor := actorFromContext(c)

	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	chat, err := h.db.GetChat(chatID.String())
	if err != nil || !service.IsParticipant(chat, actor) {
		conn.Close()
		return
	}

	client := ws.NewClient(h.hub, conn, actor.UserID, actor.Username, actor.Role, actor.Doctor, &chatID)

	h.hub.Register(client)

	client.SendPayload(map[string]interface{}{
		"type":    ws.TypeConnectionEstablished,
		"message": "connected to chat",
	})

	go client.WritePump()
	go client.ReadPump(h.eventHandler)
}

// HandleChatListWS подключает пользователя к каналу обновлений его списка чатов
func (h *WebSocketHandler) HandleChatListWS(c *gin.Context) {
	actor := actorFromContext(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := ws.NewClient(h.hub, conn, actor.UserID, actor.Username, actor.Role, actor.Doctor, nil)

	h.hub.Register(client)

	client.SendPayload(map[string]interface{}{
		"type":    ws.TypeConnectionEstablished,
		"message": "connected to chat list updates",
	})

	go client.WritePump()
	go client.ReadPump(h.eventHandler)
}
