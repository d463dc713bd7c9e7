package models

import (
	"github.com/google/uuid"
	"time"
)

type NewsStatus string

const (
	NewsDraft     NewsStatus = "draft"
	NewsPublished NewsStatus = "published"
)

type Category struct {
	ID   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name string    `gorm:"not null"`
	Slug string    `gorm:"uniqueIndex;not null"`
}

type Tag struct {
	ID   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name string    `gorm:"not null"`
	Slug string    `gorm:"uniqueIndex;not null"`
}

type News struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string     `gorm:"not null"`
	Slug        string     `gorm:"uniqueIndex;not null"`
	Description string     `gorm:"not null"`
	ImageURL    string
	CategoryID  *uuid.UUID `gorm:"type:uuid"`
	Status      NewsStatus `gorm:"not null;default:'draft'"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// Связи
	Category *Category `gorm:"foreignKey:CategoryID"`
	Tags     []Tag     `gorm:"many2many:news_tags"`
	Poll     *Poll     `gorm:"foreignKey:NewsID"`
}

// Poll опрос лайк/дизлайк, ровно один на новость
type Poll struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	NewsID   uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Likes    int       `gorm:"default:0"`
	Dislikes int       `gorm:"default:0"`
}

type Feedback struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"not null"`
	Email     string    `gorm:"not null"`
	Message   string    `gorm:"not null"`
	CreatedAt time.Time
}
