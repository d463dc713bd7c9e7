package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelinag/medlink/internal/models"
)

func newTestClient(userID uuid.UUID, chatID *uuid.UUID) *Client {
	return &Client{
		ID:     uuid.New(),
		UserID: userID,
		Role:   models.RolePatient,
		ChatID: chatID,
		Send:   make(chan []byte, 8),
	}
}

func drain(c *Client) [][]byte {
	var got [][]byte
	for {
		select {
		case data := <-c.Send:
			got = append(got, data)
		default:
			return got
		}
	}
}

func TestHub_RegisterRoutesByConnectionKind(t *testing.T) {
	hub := NewHub()

	chatID := uuid.New()
	userID := uuid.New()

	chatClient := newTestClient(userID, &chatID)
	listClient := newTestClient(userID, nil)

	hub.registerClient(chatClient)
	hub.registerClient(listClient)

	assert.Len(t, hub.clients, 2)
	assert.Contains(t, hub.chats[chatID], chatClient.ID)
	assert.Contains(t, hub.users[userID], listClient.ID)
	assert.NotContains(t, hub.chats[chatID], listClient.ID)
}

func TestHub_UnregisterCleansUpAndClosesSend(t *testing.T) {
	hub := NewHub()

	chatID := uuid.New()
	client := newTestClient(uuid.New(), &chatID)

	hub.registerClient(client)
	hub.unregisterClient(client)

	assert.Empty(t, hub.clients)
	assert.NotContains(t, hub.chats, chatID)

	_, open := <-client.Send
	assert.False(t, open, "send channel must be closed on unregister")

	// Повторная дерегистрация не паникует на закрытом канале
	hub.unregisterClient(client)
}

func TestHub_SendToChatExcludesUser(t *testing.T) {
	hub := NewHub()

	chatID := uuid.New()
	otherChatID := uuid.New()

	sender := newTestClient(uuid.New(), &chatID)
	recipient := newTestClient(uuid.New(), &chatID)
	outsider := newTestClient(uuid.New(), &otherChatID)

	hub.registerClient(sender)
	hub.registerClient(recipient)
	hub.registerClient(outsider)

	hub.SendToChat(chatID, []byte("hello"), sender.UserID)

	assert.Empty(t, drain(sender), "sender must not receive its own broadcast")
	require.Len(t, drain(recipient), 1)
	assert.Empty(t, drain(outsider))
}

func TestHub_SendToChatUserHitsOnlyThatUser(t *testing.T) {
	hub := NewHub()

	chatID := uuid.New()
	sender := newTestClient(uuid.New(), &chatID)
	senderSecondTab := newTestClient(sender.UserID, &chatID)
	recipient := newTestClient(uuid.New(), &chatID)

	hub.registerClient(sender)
	hub.registerClient(senderSecondTab)
	hub.registerClient(recipient)

	hub.SendToChatUser(chatID, sender.UserID, []byte("ack"))

	assert.Len(t, drain(sender), 1)
	assert.Len(t, drain(senderSecondTab), 1)
	assert.Empty(t, drain(recipient))
}

func TestHub_SendToUserTargetsListConnectionsOnly(t *testing.T) {
	hub := NewHub()

	chatID := uuid.New()
	userID := uuid.New()

	listClient := newTestClient(userID, nil)
	chatClient := newTestClient(userID, &chatID)
	otherList := newTestClient(uuid.New(), nil)

	hub.registerClient(listClient)
	hub.registerClient(chatClient)
	hub.registerClient(otherList)

	hub.SendToUser(userID, []byte("notification"))

	assert.Len(t, drain(listClient), 1)
	assert.Empty(t, drain(chatClient), "chat connections do not receive list notifications")
	assert.Empty(t, drain(otherList))
}

func TestHub_SendToFullQueueDoesNotBlock(t *testing.T) {
	hub := NewHub()

	chatID := uuid.New()
	slow := &Client{
		ID:     uuid.New(),
		UserID: uuid.New(),
		ChatID: &chatID,
		Send:   make(chan []byte), // без буфера, всегда полон
	}
	hub.registerClient(slow)

	// Сообщение для переполненной очереди отбрасывается, вызов не блокируется
	hub.SendToChat(chatID, []byte("dropped"), uuid.New())
	hub.SendToUser(slow.UserID, []byte("dropped"))
}

func TestHub_UnregisterAfterStopDoesNotBlock(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := newTestClient(uuid.New(), nil)
	hub.Register(client)
	hub.Stop()

	done := make(chan struct{})
	go func() {
		hub.Unregister(client)
		hub.Register(newTestClient(uuid.New(), nil))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("register/unregister blocked after hub stop")
	}
}

func TestHub_ChatUsers(t *testing.T) {
	hub := NewHub()

	chatID := uuid.New()
	patient := uuid.New()
	doctor := uuid.New()

	hub.registerClient(newTestClient(patient, &chatID))
	hub.registerClient(newTestClient(patient, &chatID))
	hub.registerClient(newTestClient(doctor, &chatID))

	assert.ElementsMatch(t, []uuid.UUID{patient, doctor}, hub.ChatUsers(chatID))
	assert.Empty(t, hub.ChatUsers(uuid.New()))
}
