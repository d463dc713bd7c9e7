package models

import (
	"github.com/google/uuid"
	"time"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	LastSeenAt   time.Time
	CreatedAt    time.Time
}

// UserProfile расширенный профиль пациента
type UserProfile struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	FirstName  string
	LastName   string
	MiddleName string

	DateOfBirth *time.Time
	HeightCm    *int     `gorm:"check:height_cm IS NULL OR (height_cm >= 50 AND height_cm <= 250)"`
	WeightKg    *float64 `gorm:"check:weight_kg IS NULL OR (weight_kg >= 10 AND weight_kg <= 500)"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// Связи
	User User `gorm:"foreignKey:UserID"`
}

// FullName возвращает полное ФИО пациента
func (p *UserProfile) FullName() string {
	return joinName(p.LastName, p.FirstName, p.MiddleName)
}

type Doctor struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null"`
	Specialization Specialization `gorm:"not null;check:specialization IN ('nutritionist','sports_doctor','psychologist')"`
	Description    string

	FirstName  string `gorm:"not null"`
	LastName   string `gorm:"not null"`
	MiddleName string

	IsActive  bool `gorm:"default:true"`
	CreatedAt time.Time

	// Связи
	User User `gorm:"foreignKey:UserID"`
}

// FullName возвращает полное ФИО доктора
func (d *Doctor) FullName() string {
	return joinName(d.LastName, d.FirstName, d.MiddleName)
}

func joinName(parts ...string) string {
	name := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if name != "" {
			name += " "
		}
		name += p
	}
	return name
}
