package service

import (
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/avelinag/medlink/internal/models"
)

var (
	ErrAccessDenied           = errors.New("access denied")
	ErrEmptyMessage           = errors.New("message must contain text or a file")
	ErrSpecializationMismatch = errors.New("request does not match doctor specialization")
)

// Store персистентные операции консультаций. Методы, меняющие несколько
// строк, атомарны на стороне хранилища.
type Store interface {
	GetRequest(id string) (*models.Request, error)
	AcceptRequest(requestID string, doctor *models.Doctor) (*models.Chat, error)
	GetChat(id string) (*models.Chat, error)
	SaveChatMessage(message *models.Message, requestID uuid.UUID, newStatus models.RequestStatus) error
	UnreadCount(chatID, viewerID string) (int64, error)
	MarkChatRead(chatID, viewerID string) error
	MarkMessagesRead(chatID, viewerID string, messageIDs []uuid.UUID) error
	GetProfile(userID string) (*models.UserProfile, error)
}

// Notifier рассылает события подключённым клиентам. Вызывается строго после
// успешного коммита, рассылка best-effort и не влияет на результат операции.
type Notifier interface {
	MessageCreated(chat *models.Chat, message *models.Message, senderUsername, senderFullName string, senderRole models.Role, unread map[uuid.UUID]int64)
}

// Actor пользователь, от имени которого выполняется операция.
// Роль и карточка доктора вычислены один раз при аутентификации.
type Actor struct {
	UserID   uuid.UUID
	Username string
	Role     models.Role
	Doctor   *models.Doctor
}

type Consultation struct {
	store    Store
	notifier Notifier
}

func NewConsultation(store Store, notifier Notifier) *Consultation {
	return &Consultation{store: store, notifier: notifier}
}

// Accept принимает ожидающую заявку доктором. Специализация заявки должна
// совпадать со специализацией доктора. Чат создаётся атомарно вместе
// с переводом заявки в assigned.
func (s *Consultation) Accept(requestID string, doctor *models.Doctor) (*models.Chat, error) {
	request, err := s.store.GetRequest(requestID)
	if err != nil {
		return nil, err
	}

	if request.Specialization != doctor.Specialization {
		return nil, ErrSpecializationMismatch
	}

	return s.store.AcceptRequest(requestID, doctor)
}

// IsParticipant проверяет, что actor является пациентом заявки или назначенным доктором
func IsParticipant(chat *models.Chat, actor Actor) bool {
	if actor.Role.IsDoctor() {
		return actor.Doctor != nil &&
			chat.Request.DoctorID != nil &&
			*chat.Request.DoctorID == actor.Doctor.ID
	}
	return chat.Request.PatientID == actor.UserID
}

// SendMessage сохраняет сообщение участника чата и переводит статус заявки.
// Сообщение без текста и файла отклоняется. Рассылка запускается только
// после того, как транзакция сохранения вернулась без ошибки.
func (s *Consultation) SendMessage(chatID string, actor Actor, text, fileURL, fileName string) (*models.Message, error) {
	chat, err := s.store.GetChat(chatID)
	if err != nil {
		return nil, err
	}

	if !IsParticipant(chat, actor) {
		return nil, ErrAccessDenied
	}

	text = strings.TrimSpace(text)
	message := &models.Message{
		ChatID:   chat.ID,
		SenderID: actor.UserID,
		Text:     text,
		FileURL:  fileURL,
		FileName: fileName,
	}
	if message.Empty() {
		return nil, ErrEmptyMessage
	}

	newStatus := models.NextStatusAfterMessage(actor.Role)
	if err := s.store.SaveChatMessage(message, chat.RequestID, newStatus); err != nil {
		return nil, err
	}

	// updated_at чата поднят транзакцией вместе с сообщением
	chat.UpdatedAt = message.CreatedAt

	s.fanOut(chat, message, actor)

	return message, nil
}

// fanOut разносит сохранённое сообщение: полный payload в канал чата,
// уведомления со свежими счётчиками непрочитанного в каналы обоих участников.
// Счётчик считается отдельно на получателя, свои сообщения не учитываются.
func (s *Consultation) fanOut(chat *models.Chat, message *models.Message, actor Actor) {
	if s.notifier == nil {
		return
	}

	unread := make(map[uuid.UUID]int64)
	for _, userID := range Participants(chat) {
		count, err := s.store.UnreadCount(chat.ID.String(), userID.String())
		if err != nil {
			log.Printf("Failed to count unread for user %s: %v", userID, err)
			continue
		}
		unread[userID] = count
	}

	s.notifier.MessageCreated(chat, message, actor.Username, s.senderFullName(actor), actor.Role, unread)
}

// Participants возвращает id пользователей-участников чата:
// пациент и, если назначен, доктор
func Participants(chat *models.Chat) []uuid.UUID {
	participants := []uuid.UUID{chat.Request.PatientID}
	if chat.Request.Doctor != nil {
		participants = append(participants, chat.Request.Doctor.UserID)
	}
	return participants
}

func (s *Consultation) senderFullName(actor Actor) string {
	if actor.Role.IsDoctor() && actor.Doctor != nil {
		return actor.Doctor.FullName()
	}

	profile, err := s.store.GetProfile(actor.UserID.String())
	if err != nil || profile.FullName() == "" {
		return actor.Username
	}
	return profile.FullName()
}

// MarkChatRead отмечает прочитанными все чужие сообщения чата.
// Вызывается при открытии детального вида чата.
func (s *Consultation) MarkChatRead(chatID string, actor Actor) error {
	chat, err := s.store.GetChat(chatID)
	if err != nil {
		return err
	}

	if !IsParticipant(chat, actor) {
		return ErrAccessDenied
	}

	return s.store.MarkChatRead(chatID, actor.UserID.String())
}

// ReadMessages отмечает прочитанными перечисленные сообщения,
// несуществующие id молча пропускаются
func (s *Consultation) ReadMessages(chatID string, actor Actor, messageIDs []uuid.UUID) error {
	chat, err := s.store.GetChat(chatID)
	if err != nil {
		return err
	}

	if !IsParticipant(chat, actor) {
		return ErrAccessDenied
	}

	return s.store.MarkMessagesRead(chatID, actor.UserID.String(), messageIDs)
}
