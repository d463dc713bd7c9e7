package database

import (
	"errors"

	"github.com/avelinag/medlink/internal/models"
	"gorm.io/gorm"
)

var (
	ErrRequestNotFound   = errors.New("request does not exist")
	ErrRequestNotWaiting = errors.New("request is not waiting for a doctor")
)

func (d *Database) CreateRequest(request *models.Request) error {
	return d.db.Create(request).Error
}

func (d *Database) GetRequest(id string) (*models.Request, error) {
	request := models.Request{}
	err := d.db.Preload("Patient").Preload("Doctor").First(&request, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// ListPatientRequests возвращает все заявки пациента, новые первыми
func (d *Database) ListPatientRequests(patientID string) ([]models.Request, error) {
	var requests []models.Request
	err := d.db.
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Preload("Doctor").
		Find(&requests).Error
	return requests, err
}

// ListAvailableRequests возвращает ожидающие заявки по специализации доктора
func (d *Database) ListAvailableRequests(spec models.Specialization) ([]models.Request, error) {
	var requests []models.Request
	err := d.db.
		Where("specialization = ? AND status = ?", spec, models.StatusWaiting).
		Order("created_at DESC").
		Preload("Patient").
		Find(&requests).Error
	return requests, err
}

// ListDoctorRequests возвращает заявки, принятые этим доктором
func (d *Database) ListDoctorRequests(doctorID string) ([]models.Request, error) {
	var requests []models.Request
	err := d.db.
		Where("doctor_id = ?", doctorID).
		Order("created_at DESC").
		Preload("Patient").
		Find(&requests).Error
	return requests, err
}

// AcceptRequest назначает доктора на ожидающую заявку и создаёт чат
// в той же транзакции. Повторное принятие отклоняется по статусу,
// второй чат на заявку невозможен из-за уникального индекса по request_id.
func (d *Database) AcceptRequest(requestID string, doctor *models.Doctor) (*models.Chat, error) {
	chat := models.Chat{}

	err := d.db.Transaction(func(tx *gorm.DB) error {
		request := models.Request{}
		if err := tx.First(&request, "id = ?", requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}

		if request.Status != models.StatusWaiting {
			return ErrRequestNotWaiting
		}

		res := tx.Model(&models.Request{}).
			Where("id = ? AND status = ?", requestID, models.StatusWaiting).
			Updates(map[string]interface{}{
				"doctor_id": doctor.ID,
				"status":    models.StatusAssigned,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRequestNotWaiting
		}

		chat.RequestID = request.ID
		return tx.Create(&chat).Error
	})

	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (d *Database) UpdateRequestStatus(requestID string, status models.RequestStatus) error {
	return d.db.Model(&models.Request{}).
		Where("id = ?", requestID).
		Update("status", status).Error
}
