package database

import (
	"errors"
	"os"

	"github.com/avelinag/medlink/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect открывает соединение с Postgres по DATABASE_URL и прогоняет миграции
func Connect() (*Database, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.Doctor{},
		&models.Request{},
		&models.Chat{},
		&models.Message{},
		&models.Category{},
		&models.Tag{},
		&models.News{},
		&models.Poll{},
		&models.Feedback{},
	)
	if err != nil {
		return nil, err
	}

	return NewDatabase(db), nil
}
