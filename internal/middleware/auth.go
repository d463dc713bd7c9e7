package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/avelinag/medlink/internal/database"
	"github.com/avelinag/medlink/internal/models"
	"github.com/avelinag/medlink/pkg/auth"
)

const (
	UserKey   = "user"
	RoleKey   = "role"
	DoctorKey = "doctor"
)

// AuthMiddleware проверяет JWT токен. Роль зафиксирована в claims при входе,
// обработчики берут её из контекста и никогда не выводят заново.
func AuthMiddleware(jwtManager *auth.JWTManager, redisClient *redis.Client, db *database.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractTokenFromHeader(c.Request)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			c.Abort()
			return
		}

		authenticate(c, token, jwtManager, redisClient, db)
	}
}

// WSAuthMiddleware специальный middleware для WebSocket: браузерный клиент
// не может выставить Authorization header, поэтому токен принимается и из query
func WSAuthMiddleware(jwtManager *auth.JWTManager, redisClient *redis.Client, db *database.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
					token = parts[1]
				}
			}
		}

		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		authenticate(c, token, jwtManager, redisClient, db)
	}
}

func authenticate(c *gin.Context, token string, jwtManager *auth.JWTManager, redisClient *redis.Client, db *database.Database) {
	// Проверяем, не в черном списке ли токен
	exists, err := redisClient.Exists(context.Background(), "blacklist:"+token).Result()
	if err != nil || exists > 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token is blacklisted"})
		c.Abort()
		return
	}

	claims, err := jwtManager.Verify(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		c.Abort()
		return
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
		c.Abort()
		return
	}

	user, err := db.GetUser(userID.String())
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		c.Abort()
		return
	}

	// Роль взята из claims, база запрашивается только за карточкой доктора
	role := models.Role(claims.Role)
	switch role {
	case models.RoleDoctor:
		doctor, err := db.GetDoctorByUser(userID.String())
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "doctor not found"})
			c.Abort()
			return
		}
		c.Set(DoctorKey, doctor)
	case models.RolePatient:
	default:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		c.Abort()
		return
	}

	c.Set(UserKey, user)
	c.Set(RoleKey, role)
	c.Next()
}

// DoctorRequired пускает дальше только докторов
func DoctorRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.MustGet(RoleKey).(models.Role)
		if !role.IsDoctor() {
			c.JSON(http.StatusForbidden, gin.H{"error": "doctors only"})
			c.Abort()
			return
		}
		c.Next()
	}
}
