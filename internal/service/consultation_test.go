package service

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelinag/medlink/internal/database"
	"github.com/avelinag/medlink/internal/models"
)

type fakeStore struct {
	requests map[uuid.UUID]*models.Request
	chats    map[uuid.UUID]*models.Chat
	messages []*models.Message
	profiles map[uuid.UUID]*models.UserProfile

	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		requests: make(map[uuid.UUID]*models.Request),
		chats:    make(map[uuid.UUID]*models.Chat),
		profiles: make(map[uuid.UUID]*models.UserProfile),
	}
}

func (s *fakeStore) GetRequest(id string) (*models.Request, error) {
	request, ok := s.requests[uuid.MustParse(id)]
	if !ok {
		return nil, database.ErrRequestNotFound
	}
	return request, nil
}

func (s *fakeStore) AcceptRequest(requestID string, doctor *models.Doctor) (*models.Chat, error) {
	request, ok := s.requests[uuid.MustParse(requestID)]
	if !ok {
		return nil, database.ErrRequestNotFound
	}
	if request.Status != models.StatusWaiting {
		return nil, database.ErrRequestNotWaiting
	}

	request.DoctorID = &doctor.ID
	request.Doctor = doctor
	request.Status = models.StatusAssigned

	chat := &models.Chat{
		ID:        uuid.New(),
		RequestID: request.ID,
		Request:   *request,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	s.chats[chat.ID] = chat
	return chat, nil
}

func (s *fakeStore) GetChat(id string) (*models.Chat, error) {
	chat, ok := s.chats[uuid.MustParse(id)]
	if !ok {
		return nil, database.ErrChatNotFound
	}
	// Заявка в фейке хранится отдельно и может быть уже обновлена
	if request, ok := s.requests[chat.RequestID]; ok {
		chat.Request = *request
	}
	return chat, nil
}

func (s *fakeStore) SaveChatMessage(message *models.Message, requestID uuid.UUID, newStatus models.RequestStatus) error {
	if s.saveErr != nil {
		return s.saveErr
	}

	message.ID = uuid.New()
	message.CreatedAt = time.Now()
	s.messages = append(s.messages, message)

	if chat, ok := s.chats[message.ChatID]; ok {
		chat.UpdatedAt = message.CreatedAt
	}
	if request, ok := s.requests[requestID]; ok {
		request.Status = newStatus
	}
	return nil
}

func (s *fakeStore) UnreadCount(chatID, viewerID string) (int64, error) {
	chat := uuid.MustParse(chatID)
	viewer := uuid.MustParse(viewerID)

	var count int64
	for _, msg := range s.messages {
		if msg.ChatID == chat && !msg.IsRead && msg.SenderID != viewer {
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) MarkChatRead(chatID, viewerID string) error {
	chat := uuid.MustParse(chatID)
	viewer := uuid.MustParse(viewerID)

	for _, msg := range s.messages {
		if msg.ChatID == chat && msg.SenderID != viewer {
			msg.MarkRead(time.Now())
		}
	}
	return nil
}

func (s *fakeStore) MarkMessagesRead(chatID, viewerID string, messageIDs []uuid.UUID) error {
	chat := uuid.MustParse(chatID)
	viewer := uuid.MustParse(viewerID)

	ids := make(map[uuid.UUID]bool, len(messageIDs))
	for _, id := range messageIDs {
		ids[id] = true
	}

	for _, msg := range s.messages {
		if msg.ChatID == chat && msg.SenderID != viewer && ids[msg.ID] {
			msg.MarkRead(time.Now())
		}
	}
	return nil
}

func (s *fakeStore) GetProfile(userID string) (*models.UserProfile, error) {
	profile, ok := s.profiles[uuid.MustParse(userID)]
	if !ok {
		return nil, errors.New("profile not found")
	}
	return profile, nil
}

type notifyEvent struct {
	chat           *models.Chat
	message        *models.Message
	senderUsername string
	senderFullName string
	senderRole     models.Role
	unread         map[uuid.UUID]int64
}

type recordingNotifier struct {
	events []notifyEvent
}

func (n *recordingNotifier) MessageCreated(chat *models.Chat, message *models.Message, senderUsername, senderFullName string, senderRole models.Role, unread map[uuid.UUID]int64) {
	n.events = append(n.events, notifyEvent{
		chat:           chat,
		message:        message,
		senderUsername: senderUsername,
		senderFullName: senderFullName,
		senderRole:     senderRole,
		unread:         unread,
	})
}

type fixture struct {
	store    *fakeStore
	notifier *recordingNotifier
	svc      *Consultation

	patient Actor
	doctor  Actor
	request *models.Request
}

func newFixture(t *testing.T, spec models.Specialization) *fixture {
	t.Helper()

	store := newFakeStore()
	notifier := &recordingNotifier{}

	patientID := uuid.New()
	store.profiles[patientID] = &models.UserProfile{
		UserID:    patientID,
		FirstName: "Анна",
		LastName:  "Иванова",
	}

	doctorUserID := uuid.New()
	doctor := &models.Doctor{
		ID:             uuid.New(),
		UserID:         doctorUserID,
		Specialization: spec,
		FirstName:      "Пётр",
		LastName:       "Смирнов",
	}

	request := &models.Request{
		ID:             uuid.New(),
		PatientID:      patientID,
		Title:          "Консультация",
		Description:    "Нужна консультация",
		Specialization: spec,
		Status:         models.StatusWaiting,
	}
	store.requests[request.ID] = request

	return &fixture{
		store:    store,
		notifier: notifier,
		svc:      NewConsultation(store, notifier),
		patient:  Actor{UserID: patientID, Username: "anna", Role: models.RolePatient},
		doctor:   Actor{UserID: doctorUserID, Username: "dr_petr", Role: models.RoleDoctor, Doctor: doctor},
		request:  request,
	}
}

func (f *fixture) acceptedChat(t *testing.T) *models.Chat {
	t.Helper()
	chat, err := f.svc.Accept(f.request.ID.String(), f.doctor.Doctor)
	require.NoError(t, err)
	return chat
}

func TestAccept_SpecializationMismatch(t *testing.T) {
	f := newFixture(t, models.SpecPsychologist)

	wrongDoctor := &models.Doctor{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		Specialization: models.SpecNutritionist,
	}

	chat, err := f.svc.Accept(f.request.ID.String(), wrongDoctor)
	assert.ErrorIs(t, err, ErrSpecializationMismatch)
	assert.Nil(t, chat)

	// Заявка остаётся нетронутой
	assert.Equal(t, models.StatusWaiting, f.request.Status)
	assert.Nil(t, f.request.DoctorID)
}

func TestAccept_AssignsDoctorAndCreatesChat(t *testing.T) {
	f := newFixture(t, models.SpecPsychologist)

	chat := f.acceptedChat(t)

	assert.Equal(t, models.StatusAssigned, f.request.Status)
	require.NotNil(t, f.request.DoctorID)
	assert.Equal(t, f.doctor.Doctor.ID, *f.request.DoctorID)
	assert.Equal(t, f.request.ID, chat.RequestID)
	assert.Len(t, f.store.chats, 1)
}

func TestAccept_RepeatedAcceptRejected(t *testing.T) {
	f := newFixture(t, models.SpecSportsDoctor)

	f.acceptedChat(t)

	chat, err := f.svc.Accept(f.request.ID.String(), f.doctor.Doctor)
	assert.ErrorIs(t, err, database.ErrRequestNotWaiting)
	assert.Nil(t, chat)
	assert.Len(t, f.store.chats, 1)
}

func TestAccept_RequestNotFound(t *testing.T) {
	f := newFixture(t, models.SpecPsychologist)

	_, err := f.svc.Accept(uuid.NewString(), f.doctor.Doctor)
	assert.ErrorIs(t, err, database.ErrRequestNotFound)
}

func TestSendMessage_EmptyRejected(t *testing.T) {
	f := newFixture(t, models.SpecPsychologist)
	chat := f.acceptedChat(t)

	msg, err := f.svc.SendMessage(chat.ID.String(), f.patient, "   ", "", "")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Nil(t, msg)
	assert.Empty(t, f.store.messages)
	assert.Empty(t, f.notifier.events)
}

func TestSendMessage_FileOnlyAllowed(t *testing.T) {
	f := newFixture(t, models.SpecPsychologist)
	chat := f.acceptedChat(t)

	msg, err := f.svc.SendMessage(chat.ID.String(), f.patient, "", "/uploads/chat/scan.pdf", "scan.pdf")
	require.NoError(t, err)
	assert.Equal(t, "", msg.Text)
	assert.Equal(t, "/uploads/chat/scan.pdf", msg.FileURL)
	assert.Len(t, f.store.messages, 1)
}

func TestSendMessage_AccessDenied(t *testing.T) {
	f := newFixture(t, models.SpecPsychologist)
	chat := f.acceptedChat(t)

	stranger := Actor{UserID: uuid.New(), Username: "stranger", Role: models.RolePatient}
	msg, err := f.svc.SendMessage(chat.ID.String(), stranger, "привет", "", "")
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Nil(t, msg)
	assert.Empty(t, f.store.messages)

	otherDoctor := Actor{
		UserID: uuid.New(),
		Role:   models.RoleDoctor,
		Doctor: &models.Doctor{ID: uuid.New(), Specialization: models.SpecPsychologist},
	}
	_, err = f.svc.SendMessage(chat.ID.String(), otherDoctor, "привет", "", "")
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestSendMessage_ChatNotFound(t *testing.T) {
	f := newFixture(t, models.SpecPsychologist)

	_, err := f.svc.SendMessage(uuid.NewString(), f.patient, "привет", "", "")
	assert.ErrorIs(t, err, database.ErrChatNotFound)
}

func TestSendMessage_StatusTransitions(t *testing.T) {
	f := newFixture(t, models.SpecPsychologist)
	chat := f.acceptedChat(t)

	_, err := f.svc.SendMessage(chat.ID.String(), f.doctor, "Здравствуйте, чем могу помочь?", "", "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDoctorReplied, f.request.Status)

	_, err = f.svc.SendMessage(chat.ID.String(), f.patient, "Здравствуйте, доктор", "", "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusWaitingDoctor, f.request.Status)
}

func TestSendMessage_FanOutUnreadPerRecipient(t *testing.T) {
	f := newFixture(t, models.SpecPsychologist)
	chat := f.acceptedChat(t)

	_, err := f.svc.SendMessage(chat.ID.String(), f.doctor, "Первое сообщение", "", "")
	require.NoError(t, err)

	require.Len(t, f.notifier.events, 1)
	event := f.notifier.events[0]

	assert.Equal(t, "dr_petr", event.senderUsername)
	assert.Equal(t, "Смирнов Пётр", event.senderFullName)
	assert.Equal(t, models.RoleDoctor, event.senderRole)

	// updated_at чата в рассылке совпадает с created_at сообщения
	assert.True(t, event.chat.UpdatedAt.Equal(event.message.CreatedAt))

	// Своё сообщение не считается непрочитанным для отправителя
	assert.Equal(t, int64(1), event.unread[f.patient.UserID])
	assert.Equal(t, int64(0), event.unread[f.doctor.UserID])

	_, err = f.svc.SendMessage(chat.ID.String(), f.patient, "Ответ пациента", "", "")
	require.NoError(t, err)

	require.Len(t, f.notifier.events, 2)
	event = f.notifier.events[1]
	assert.Equal(t, "Иванова Анна", event.senderFullName)
	assert.Equal(t, int64(1), event.unread[f.patient.UserID])
	assert.Equal(t, int64(1), event.unread[f.doctor.UserID])
}

func TestSendMessage_StoreErrorSkipsFanOut(t *testing.T) {
	f := newFixture(t, models.SpecPsychologist)
	chat := f.acceptedChat(t)

	f.store.saveErr = errors.New("connection reset")

	msg, err := f.svc.SendMessage(chat.ID.String(), f.patient, "привет", "", "")
	assert.Error(t, err)
	assert.Nil(t, msg)
	assert.Empty(t, f.notifier.events, "fan-out must not run when persistence failed")
}

func TestMarkChatRead_ClearsUnreadAndSetsReadAtOnce(t *testing.T) {
	f := newFixture(t, models.SpecPsychologist)
	chat := f.acceptedChat(t)

	_, err := f.svc.SendMessage(chat.ID.String(), f.doctor, "Первое", "", "")
	require.NoError(t, err)
	_, err = f.svc.SendMessage(chat.ID.String(), f.doctor, "Второе", "", "")
	require.NoError(t, err)

	count, err := f.store.UnreadCount(chat.ID.String(), f.patient.UserID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, f.svc.MarkChatRead(chat.ID.String(), f.patient))

	count, err = f.store.UnreadCount(chat.ID.String(), f.patient.UserID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	var readAts []time.Time
	for _, msg := range f.store.messages {
		assert.True(t, msg.IsRead)
		require.NotNil(t, msg.ReadAt)
		readAts = append(readAts, *msg.ReadAt)
	}

	// Повторная отметка ничего не меняет, read_at выставляется один раз
	require.NoError(t, f.svc.MarkChatRead(chat.ID.String(), f.patient))
	for i, msg := range f.store.messages {
		assert.Equal(t, readAts[i], *msg.ReadAt)
	}

	// Сообщения, отправленные позже, снова непрочитанные
	_, err = f.svc.SendMessage(chat.ID.String(), f.doctor, "Третье", "", "")
	require.NoError(t, err)

	count, err = f.store.UnreadCount(chat.ID.String(), f.patient.UserID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMarkChatRead_AccessDenied(t *testing.T) {
	f := newFixture(t, models.SpecPsychologist)
	chat := f.acceptedChat(t)

	stranger := Actor{UserID: uuid.New(), Role: models.RolePatient}
	assert.ErrorIs(t, f.svc.MarkChatRead(chat.ID.String(), stranger), ErrAccessDenied)
}

func TestReadMessages_IgnoresMissingAndOwn(t *testing.T) {
	f := newFixture(t, models.SpecPsychologist)
	chat := f.acceptedChat(t)

	own, err := f.svc.SendMessage(chat.ID.String(), f.patient, "моё", "", "")
	require.NoError(t, err)
	foreign, err := f.svc.SendMessage(chat.ID.String(), f.doctor, "чужое", "", "")
	require.NoError(t, err)

	ids := []uuid.UUID{own.ID, foreign.ID, uuid.New()}
	require.NoError(t, f.svc.ReadMessages(chat.ID.String(), f.patient, ids))

	assert.False(t, own.IsRead, "own messages are never marked by their author")
	assert.True(t, foreign.IsRead)
	require.NotNil(t, foreign.ReadAt)
}

func TestParticipants(t *testing.T) {
	f := newFixture(t, models.SpecPsychologist)

	chatBefore := &models.Chat{Request: *f.request}
	assert.Equal(t, []uuid.UUID{f.patient.UserID}, Participants(chatBefore))

	chat := f.acceptedChat(t)
	got, err := f.store.GetChat(chat.ID.String())
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{f.patient.UserID, f.doctor.UserID}, Participants(got))
}
