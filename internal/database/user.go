package database

import (
	"errors"
	"time"

	"github.com/avelinag/medlink/internal/models"
	"gorm.io/gorm"
)

// RegisterPatient создаёт пользователя вместе с профилем пациента в одной транзакции.
// Аккаунт создаётся либо с профилем, либо с карточкой доктора, состояние
// "и то и другое" сконструировать нельзя.
func (d *Database) RegisterPatient(user *models.User, profile *models.UserProfile) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		profile.UserID = user.ID
		return tx.Create(profile).Error
	})
}

// RegisterDoctor создаёт пользователя вместе с карточкой доктора в одной транзакции
func (d *Database) RegisterDoctor(user *models.User, doctor *models.Doctor) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		doctor.UserID = user.ID
		return tx.Create(doctor).Error
	})
}

func (d *Database) GetUser(id string) (*models.User, error) {
	user := models.User{}
	if err := d.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) FindUserByEmail(email string) (*models.User, error) {
	user := models.User{}
	if err := d.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) UpdateLastSeen(id string) error {
	return d.db.Model(&models.User{}).Where("id = ?", id).Update("last_seen_at", time.Now()).Error
}

// ResolveRole определяет роль пользователя одним запросом: есть карточка
// доктора - доктор, иначе пациент. Вызывается при входе, роль попадает
// в claims токена и дальше передаётся явно.
func (d *Database) ResolveRole(userID string) (models.Role, *models.Doctor, error) {
	doctor, err := d.GetDoctorByUser(userID)
	if err == nil {
		return models.RoleDoctor, doctor, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RolePatient, nil, nil
	}
	return "", nil, err
}

func (d *Database) GetDoctorByUser(userID string) (*models.Doctor, error) {
	doctor := models.Doctor{}
	if err := d.db.Where("user_id = ?", userID).First(&doctor).Error; err != nil {
		return nil, err
	}
	return &doctor, nil
}

func (d *Database) GetProfile(userID string) (*models.UserProfile, error) {
	profile := models.UserProfile{}
	if err := d.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (d *Database) UpdateProfile(profile *models.UserProfile) error {
	return d.db.Save(profile).Error
}

func (d *Database) UpdateDoctor(doctor *models.Doctor) error {
	return d.db.Save(doctor).Error
}

// ListDoctors возвращает активных докторов, опционально по специализации
func (d *Database) ListDoctors(spec models.Specialization) ([]models.Doctor, error) {
	var doctors []models.Doctor

	query := d.db.Where("is_active = ?", true)
	if spec != "" {
		query = query.Where("specialization = ?", spec)
	}

	err := query.Order("last_name, first_name").Preload("User").Find(&doctors).Error
	return doctors, err
}
