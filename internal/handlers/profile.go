package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avelinag/medlink/internal/database"
	"github.com/avelinag/medlink/internal/models"
)

type ProfileHandler struct {
	db *database.Database
}

func NewProfileHandler(db *database.Database) *ProfileHandler {
	return &ProfileHandler{db: db}
}

// GetMe возвращает информацию о текущем пользователе вместе с его ролью
func (h *ProfileHandler) GetMe(c *gin.Context) {
	actor := actorFromContext(c)

	response := gin.H{
		"id":       actor.UserID,
		"username": actor.Username,
		"role":     actor.Role,
	}

	if actor.Role.IsDoctor() {
		response["doctor"] = gin.H{
			"id":             actor.Doctor.ID,
			"full_name":      actor.Doctor.FullName(),
			"specialization": actor.Doctor.Specialization,
			"description":    actor.Doctor.Description,
			"is_active":      actor.Doctor.IsActive,
		}
	} else {
		profile, err := h.db.GetProfile(actor.UserID.String())
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		response["profile"] = formatProfileResponse(profile)
	}

	c.JSON(http.StatusOK, response)
}

// UpdateMe обновляет профиль пациента или описание доктора
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	actor := actorFromContext(c)

	if actor.Role.IsDoctor() {
		var req struct {
			Description string `json:"description"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if req.Description != "" {
			actor.Doctor.Description = req.Description
		}
		if err := h.db.UpdateDoctor(actor.Doctor); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update doctor"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "doctor updated"})
		return
	}

	var req struct {
		FirstName   string   `json:"first_name"`
		LastName    string   `json:"last_name"`
		MiddleName  string   `json:"middle_name"`
		DateOfBirth string   `json:"date_of_birth"`
		HeightCm    *int     `json:"height_cm"`
		WeightKg    *float64 `json:"weight_kg"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.db.GetProfile(actor.UserID.String())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}

	// Обновляем только переданные поля
	if req.FirstName != "" {
		profile.FirstName = req.FirstName
	}
	if req.LastName != "" {
		profile.LastName = req.LastName
	}
	if req.MiddleName != "" {
		profile.MiddleName = req.MiddleName
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date_of_birth, expected YYYY-MM-DD"})
			return
		}
		profile.DateOfBirth = &dob
	}
	if req.HeightCm != nil {
		if *req.HeightCm < 50 || *req.HeightCm > 250 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "height_cm must be between 50 and 250"})
			return
		}
		profile.HeightCm = req.HeightCm
	}
	if req.WeightKg != nil {
		if *req.WeightKg < 10 || *req.WeightKg > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "weight_kg must be between 10 and 500"})
			return
		}
		profile.WeightKg = req.WeightKg
	}

	if err := h.db.UpdateProfile(profile); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, formatProfileResponse(profile))
}

// ListDoctors возвращает активных докторов, опционально по специализации
func (h *ProfileHandler) ListDoctors(c *gin.Context) {
	spec := models.Specialization(c.Query("specialization"))
	if spec != "" && !models.ValidSpecialization(spec) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown specialization"})
		return
	}

	doctors, err := h.db.ListDoctors(spec)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get doctors"})
		return
	}

	result := make([]gin.H, len(doctors))
	for i, doctor := range doctors {
		result[i] = gin.H{
			"id":             doctor.ID,
			"full_name":      doctor.FullName(),
			"specialization": doctor.Specialization,
			"description":    doctor.Description,
		}
	}

	c.JSON(http.StatusOK, gin.H{"doctors": result})
}

func formatProfileResponse(profile *models.UserProfile) gin.H {
	response := gin.H{
		"first_name":  profile.FirstName,
		"last_name":   profile.LastName,
		"middle_name": profile.MiddleName,
		"full_name":   profile.FullName(),
	}

	if profile.DateOfBirth != nil {
		response["date_of_birth"] = profile.DateOfBirth.Format("2006-01-02")
	}
	if profile.HeightCm != nil {
		response["height_cm"] = *profile.HeightCm
	}
	if profile.WeightKg != nil {
		response["weight_kg"] = *profile.WeightKg
	}

	return response
}
