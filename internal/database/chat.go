package database

import (
	"errors"

	"github.com/avelinag/medlink/internal/models"
	"gorm.io/gorm"
)

var ErrChatNotFound = errors.New("chat does not exist")

// GetChat возвращает чат вместе с заявкой и её участниками
func (d *Database) GetChat(id string) (*models.Chat, error) {
	chat := models.Chat{}
	err := d.db.
		Preload("Request").
		Preload("Request.Patient").
		Preload("Request.Doctor").
		First(&chat, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (d *Database) GetChatByRequest(requestID string) (*models.Chat, error) {
	chat := models.Chat{}
	err := d.db.First(&chat, "request_id = ?", requestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// ListPatientChats возвращает чаты пациента, недавно обновлённые первыми
func (d *Database) ListPatientChats(patientID string) ([]models.Chat, error) {
	var chats []models.Chat
	err := d.db.
		Joins("JOIN requests ON requests.id = chats.request_id").
		Where("requests.patient_id = ?", patientID).
		Order("chats.updated_at DESC").
		Preload("Request").
		Preload("Request.Doctor").
		Find(&chats).Error
	return chats, err
}

// ListDoctorChats возвращает чаты доктора, недавно обновлённые первыми
func (d *Database) ListDoctorChats(doctorID string) ([]models.Chat, error) {
	var chats []models.Chat
	err := d.db.
		Joins("JOIN requests ON requests.id = chats.request_id").
		Where("requests.doctor_id = ?", doctorID).
		Order("chats.updated_at DESC").
		Preload("Request").
		Preload("Request.Patient").
		Find(&chats).Error
	return chats, err
}

// LastMessage возвращает последнее сообщение чата, nil если сообщений нет
func (d *Database) LastMessage(chatID string) (*models.Message, error) {
	message := models.Message{}
	err := d.db.
		Where("chat_id = ?", chatID).
		Order("created_at DESC").
		Preload("Sender").
		First(&message).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &message, nil
}
