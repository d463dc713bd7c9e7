package database

import (
	"errors"

	"github.com/avelinag/medlink/internal/models"
	"gorm.io/gorm"
)

var (
	ErrNewsNotFound = errors.New("news does not exist")
	ErrPollNotFound = errors.New("poll does not exist")
)

// CreateNews создаёт новость вместе с опросом
func (d *Database) CreateNews(news *models.News) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(news).Error; err != nil {
			return err
		}
		return tx.Create(&models.Poll{NewsID: news.ID}).Error
	})
}

func (d *Database) GetNews(id string) (*models.News, error) {
	news := models.News{}
	err := d.db.
		Preload("Category").
		Preload("Tags").
		Preload("Poll").
		First(&news, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNewsNotFound
	}
	if err != nil {
		return nil, err
	}
	return &news, nil
}

// ListNews возвращает опубликованные новости с фильтром по названию
func (d *Database) ListNews(nameFilter, ordering string) ([]models.News, error) {
	var news []models.News

	query := d.db.Where("status = ?", models.NewsPublished)

	if nameFilter != "" {
		query = query.Where("name ILIKE ?", "%"+nameFilter+"%")
	}

	switch ordering {
	case "name":
		query = query.Order("name")
	case "-name":
		query = query.Order("name DESC")
	case "created_at":
		query = query.Order("created_at")
	default:
		query = query.Order("created_at DESC")
	}

	err := query.
		Preload("Category").
		Preload("Tags").
		Preload("Poll").
		Find(&news).Error
	return news, err
}

func (d *Database) UpdateNews(news *models.News) error {
	return d.db.Save(news).Error
}

func (d *Database) DeleteNews(id string) error {
	res := d.db.Delete(&models.News{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNewsNotFound
	}
	return nil
}

// VotePoll увеличивает счётчик лайков или дизлайков опроса новости
func (d *Database) VotePoll(newsID string, like bool) (*models.Poll, error) {
	column := "dislikes"
	if like {
		column = "likes"
	}

	res := d.db.Model(&models.Poll{}).
		Where("news_id = ?", newsID).
		Update(column, gorm.Expr(column+" + 1"))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrPollNotFound
	}

	poll := models.Poll{}
	if err := d.db.Where("news_id = ?", newsID).First(&poll).Error; err != nil {
		return nil, err
	}
	return &poll, nil
}

func (d *Database) SaveFeedback(feedback *models.Feedback) error {
	return d.db.Create(feedback).Error
}
