package database

import (
	"time"

	"github.com/avelinag/medlink/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SaveChatMessage сохраняет сообщение, обновляет updated_at чата и переводит
// статус заявки в одной транзакции. Рассылка события выполняется вызывающей
// стороной только после успешного возврата отсюда.
func (d *Database) SaveChatMessage(message *models.Message, requestID uuid.UUID, newStatus models.RequestStatus) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}

		// updated_at чата совпадает с created_at сообщения,
		// рассылка отдаёт то же значение, что лежит в строке
		if err := tx.Model(&models.Chat{}).
			Where("id = ?", message.ChatID).
			Update("updated_at", message.CreatedAt).Error; err != nil {
			return err
		}

		return tx.Model(&models.Request{}).
			Where("id = ?", requestID).
			Update("status", newStatus).Error
	})
}

// GetChatMessages получает сообщения чата с пагинацией, старые первыми
func (d *Database) GetChatMessages(chatID string, limit int, beforeID *uuid.UUID) ([]models.Message, error) {
	var messages []models.Message

	query := d.db.Where("chat_id = ?", chatID)

	if beforeID != nil {
		var beforeMsg models.Message
		if err := d.db.First(&beforeMsg, "id = ?", beforeID).Error; err == nil {
			query = query.Where("created_at < ?", beforeMsg.CreatedAt)
		}
	}

	err := query.
		Order("created_at DESC").
		Limit(limit).
		Preload("Sender").
		Find(&messages).Error

	if err != nil {
		return nil, err
	}

	// Разворачиваем порядок, чтобы старые сообщения были первыми
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// UnreadCount считает непрочитанные сообщения чата, написанные не этим пользователем
func (d *Database) UnreadCount(chatID, viewerID string) (int64, error) {
	var count int64
	err := d.db.Model(&models.Message{}).
		Where("chat_id = ? AND is_read = ? AND sender_id <> ?", chatID, false, viewerID).
		Count(&count).Error
	return count, err
}

// MarkChatRead отмечает прочитанными все чужие сообщения чата.
// read_at выставляется только у тех, что переходят из непрочитанных.
func (d *Database) MarkChatRead(chatID, viewerID string) error {
	return d.db.Model(&models.Message{}).
		Where("chat_id = ? AND is_read = ? AND sender_id <> ?", chatID, false, viewerID).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": time.Now(),
		}).Error
}

// MarkMessagesRead отмечает прочитанными перечисленные чужие сообщения чата.
// Несуществующие id молча пропускаются.
func (d *Database) MarkMessagesRead(chatID, viewerID string, messageIDs []uuid.UUID) error {
	if len(messageIDs) == 0 {
		return nil
	}
	return d.db.Model(&models.Message{}).
		Where("chat_id = ? AND id IN ? AND is_read = ? AND sender_id <> ?", chatID, messageIDs, false, viewerID).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": time.Now(),
		}).Error
}
