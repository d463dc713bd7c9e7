package models

import (
	"github.com/google/uuid"
	"time"
)

// Chat чат между пациентом и доктором, создаётся при принятии заявки.
// Уникальный индекс по request_id гарантирует не больше одного чата на заявку.
type Chat struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RequestID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// Связи
	Request  Request   `gorm:"foreignKey:RequestID"`
	Messages []Message `gorm:"foreignKey:ChatID"`
}

type Message struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ChatID   uuid.UUID `gorm:"type:uuid;not null;index"`
	SenderID uuid.UUID `gorm:"type:uuid;not null"`

	Text     string
	FileURL  string
	FileName string

	IsRead    bool `gorm:"default:false"`
	CreatedAt time.Time
	ReadAt    *time.Time

	// Связи
	Sender User `gorm:"foreignKey:SenderID"`
	Chat   Chat `gorm:"foreignKey:ChatID"`
}

// Empty сообщение без текста и без файла не имеет смысла
func (m *Message) Empty() bool {
	return m.Text == "" && m.FileURL == ""
}

// MarkRead переводит сообщение в прочитанное; повторный вызов ничего не меняет,
// read_at выставляется ровно один раз.
func (m *Message) MarkRead(now time.Time) bool {
	if m.IsRead {
		return false
	}
	m.IsRead = true
	m.ReadAt = &now
	return true
}

const previewLimit = 100

// Preview возвращает первые 100 символов текста для уведомления в списке чатов
func (m *Message) Preview() string {
	runes := []rune(m.Text)
	if len(runes) <= previewLimit {
		return m.Text
	}
	return string(runes[:previewLimit])
}
