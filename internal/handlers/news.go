package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avelinag/medlink/internal/database"
	"github.com/avelinag/medlink/internal/handlers/dto"
	"github.com/avelinag/medlink/internal/models"
)

type NewsHandler struct {
	db *database.Database
}

func NewNewsHandler(db *database.Database) *NewsHandler {
	return &NewsHandler{db: db}
}

// ListNews возвращает опубликованные новости,
// поддерживает фильтр по названию и сортировку
func (h *NewsHandler) ListNews(c *gin.Context) {
	news, err := h.db.ListNews(c.Query("name"), c.Query("ordering"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get news"})
		return
	}

	result := make([]gin.H, len(news))
	for i, n := range news {
		result[i] = formatNewsResponse(&n)
	}

	c.JSON(http.StatusOK, gin.H{"news": result})
}

// GetNews возвращает новость по id
func (h *NewsHandler) GetNews(c *gin.Context) {
	news, err := h.db.GetNews(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "news not found"})
		return
	}

	c.JSON(http.StatusOK, formatNewsResponse(news))
}

// CreateNews создаёт новость вместе с опросом
func (h *NewsHandler) CreateNews(c *gin.Context) {
	var req dto.CreateNews
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := models.NewsDraft
	if req.Status != "" {
		status = models.NewsStatus(req.Status)
	}

	news := &models.News{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Status:      status,
		CreatedAt:   time.Now(),
	}

	if err := h.db.CreateNews(news); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to create news"})
		return
	}

	c.JSON(http.StatusCreated, formatNewsResponse(news))
}

// UpdateNews обновляет переданные поля новости
func (h *NewsHandler) UpdateNews(c *gin.Context) {
	news, err := h.db.GetNews(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "news not found"})
		return
	}

	var req dto.UpdateNews
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != "" {
		news.Name = req.Name
	}
	if req.Description != "" {
		news.Description = req.Description
	}
	if req.ImageURL != "" {
		news.ImageURL = req.ImageURL
	}
	if req.Status != "" {
		news.Status = models.NewsStatus(req.Status)
	}

	if err := h.db.UpdateNews(news); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update news"})
		return
	}

	c.JSON(http.StatusOK, formatNewsResponse(news))
}

// DeleteNews удаляет новость
func (h *NewsHandler) DeleteNews(c *gin.Context) {
	if err := h.db.DeleteNews(c.Param("id")); err != nil {
		if errors.Is(err, database.ErrNewsNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "news not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete news"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "news deleted"})
}

// VotePoll засчитывает лайк или дизлайк в опросе новости
func (h *NewsHandler) VotePoll(c *gin.Context) {
	var req dto.PollVote
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	poll, err := h.db.VotePoll(c.Param("id"), req.Vote == "like")
	if err != nil {
		if errors.Is(err, database.ErrPollNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "poll not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to vote"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"likes":    poll.Likes,
		"dislikes": poll.Dislikes,
	})
}

// CreateFeedback сохраняет сообщение обратной связи
func (h *NewsHandler) CreateFeedback(c *gin.Context) {
	var req dto.CreateFeedback
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	feedback := &models.Feedback{
		Name:      req.Name,
		Email:     req.Email,
		Message:   req.Message,
		CreatedAt: time.Now(),
	}

	if err := h.db.SaveFeedback(feedback); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save feedback"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "feedback received"})
}

func formatNewsResponse(news *models.News) gin.H {
	response := gin.H{
		"id":          news.ID,
		"name":        news.Name,
		"slug":        news.Slug,
		"description": news.Description,
		"status":      news.Status,
		"created_at":  news.CreatedAt,
		"updated_at":  news.UpdatedAt,
	}

	if news.ImageURL != "" {
		response["image_url"] = news.ImageURL
	}

	if news.Category != nil {
		response["category"] = gin.H{
			"name": news.Category.Name,
			"slug": news.Category.Slug,
		}
	}

	if len(news.Tags) > 0 {
		tags := make([]gin.H, len(news.Tags))
		for i, tag := range news.Tags {
			tags[i] = gin.H{"name": tag.Name, "slug": tag.Slug}
		}
		response["tags"] = tags
	}

	if news.Poll != nil {
		response["poll"] = gin.H{
			"likes":    news.Poll.Likes,
			"dislikes": news.Poll.Dislikes,
		}
	}

	return response
}
