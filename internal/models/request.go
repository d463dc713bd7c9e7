package models

import (
	"github.com/google/uuid"
	"time"
)

// RequestStatus статус заявки пациента
type RequestStatus string

const (
	StatusWaiting       RequestStatus = "waiting"
	StatusAssigned      RequestStatus = "assigned"
	StatusWaitingDoctor RequestStatus = "waiting_doctor"
	StatusDoctorReplied RequestStatus = "doctor_replied"
	StatusClosed        RequestStatus = "closed"
)

// Specialization специализация доктора
type Specialization string

const (
	SpecNutritionist Specialization = "nutritionist"
	SpecSportsDoctor Specialization = "sports_doctor"
	SpecPsychologist Specialization = "psychologist"
)

// ValidSpecialization проверяет, что значение входит в список специализаций
func ValidSpecialization(s Specialization) bool {
	switch s {
	case SpecNutritionist, SpecSportsDoctor, SpecPsychologist:
		return true
	}
	return false
}

// Request заявка пациента на консультацию
type Request struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PatientID uuid.UUID  `gorm:"type:uuid;not null;index"`
	DoctorID  *uuid.UUID `gorm:"type:uuid;index"`

	Title          string         `gorm:"not null"`
	Description    string         `gorm:"not null"`
	Specialization Specialization `gorm:"not null"`
	Status         RequestStatus  `gorm:"not null;default:'waiting'"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// Связи
	Patient User    `gorm:"foreignKey:PatientID"`
	Doctor  *Doctor `gorm:"foreignKey:DoctorID"`
}

// NextStatusAfterMessage возвращает статус заявки после сообщения от участника:
// ответ доктора переводит заявку в doctor_replied, сообщение пациента в waiting_doctor.
func NextStatusAfterMessage(senderRole Role) RequestStatus {
	if senderRole.IsDoctor() {
		return StatusDoctorReplied
	}
	return StatusWaitingDoctor
}
