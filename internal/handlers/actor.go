package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/avelinag/medlink/internal/middleware"
	"github.com/avelinag/medlink/internal/models"
	"github.com/avelinag/medlink/internal/service"
)

// actorFromContext собирает Actor из значений, положенных auth middleware.
// Роль уже определена, здесь она никогда не вычисляется заново.
func actorFromContext(c *gin.Context) service.Actor {
	user := c.MustGet(middleware.UserKey).(*models.User)
	role := c.MustGet(middleware.RoleKey).(models.Role)

	actor := service.Actor{
		UserID:   user.ID,
		Username: user.Username,
		Role:     role,
	}

	if doctor, ok := c.Get(middleware.DoctorKey); ok {
		actor.Doctor = doctor.(*models.Doctor)
	}

	return actor
}
