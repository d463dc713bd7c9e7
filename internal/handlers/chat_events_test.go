package handlers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelinag/medlink/internal/models"
	"github.com/avelinag/medlink/internal/service"
	ws "github.com/avelinag/medlink/internal/websocket"
)

type stubConsultationStore struct {
	chat *models.Chat
}

func (s *stubConsultationStore) GetRequest(id string) (*models.Request, error) {
	return &s.chat.Request, nil
}

func (s *stubConsultationStore) AcceptRequest(requestID string, doctor *models.Doctor) (*models.Chat, error) {
	return s.chat, nil
}

func (s *stubConsultationStore) GetChat(id string) (*models.Chat, error) {
	return s.chat, nil
}

func (s *stubConsultationStore) SaveChatMessage(message *models.Message, requestID uuid.UUID, newStatus models.RequestStatus) error {
	message.ID = uuid.New()
	message.CreatedAt = time.Now()
	return nil
}

func (s *stubConsultationStore) UnreadCount(chatID, viewerID string) (int64, error) {
	return 0, nil
}

func (s *stubConsultationStore) MarkChatRead(chatID, viewerID string) error { return nil }

func (s *stubConsultationStore) MarkMessagesRead(chatID, viewerID string, messageIDs []uuid.UUID) error {
	return nil
}

func (s *stubConsultationStore) GetProfile(userID string) (*models.UserProfile, error) {
	return &models.UserProfile{FirstName: "Анна", LastName: "Иванова"}, nil
}

func TestChatEventHandler_FileMessageCarriesFileName(t *testing.T) {
	chatID := uuid.New()
	patientID := uuid.New()
	doctor := &models.Doctor{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		Specialization: models.SpecPsychologist,
		FirstName:      "Пётр",
		LastName:       "Смирнов",
	}
	doctorID := doctor.ID

	chat := &models.Chat{
		ID:        chatID,
		RequestID: uuid.New(),
		Request: models.Request{
			PatientID:      patientID,
			DoctorID:       &doctorID,
			Doctor:         doctor,
			Specialization: models.SpecPsychologist,
			Status:         models.StatusAssigned,
		},
	}
	chat.Request.ID = chat.RequestID

	hub := ws.NewHub()
	go hub.Run()
	defer hub.Stop()

	delivery := ws.NewDelivery(hub)
	consultation := service.NewConsultation(&stubConsultationStore{chat: chat}, delivery)
	handler := NewChatEventHandler(consultation, delivery)

	sender := ws.NewClient(hub, nil, patientID, "anna", models.RolePatient, nil, &chatID)
	recipient := ws.NewClient(hub, nil, doctor.UserID, "dr_petr", models.RoleDoctor, doctor, &chatID)
	hub.Register(sender)
	hub.Register(recipient)

	require.Eventually(t, func() bool {
		return len(hub.ChatUsers(chatID)) == 2
	}, time.Second, 10*time.Millisecond)

	err := handler.HandleMessage(sender, &ws.Inbound{
		Type:    ws.TypeChatMessage,
		FileURL: "/uploads/chat/scan.pdf",
	})
	require.NoError(t, err)

	var payload ws.NewMessagePayload
	require.NoError(t, json.Unmarshal(<-recipient.Send, &payload))
	assert.Equal(t, ws.TypeNewMessage, payload.Type)
	assert.Equal(t, "/uploads/chat/scan.pdf", payload.FileURL)
	assert.Equal(t, "scan.pdf", payload.FileName)

	// Отправитель получает подтверждение вместо эха
	var ack ws.MessageSentPayload
	require.NoError(t, json.Unmarshal(<-sender.Send, &ack))
	assert.Equal(t, ws.TypeMessageSent, ack.Type)
}
