package main

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/avelinag/medlink/internal/database"
	"github.com/avelinag/medlink/internal/handlers"
	"github.com/avelinag/medlink/internal/middleware"
	"github.com/avelinag/medlink/pkg/auth"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Profile   *handlers.ProfileHandler
	Request   *handlers.RequestHandler
	Chat      *handlers.ChatHandler
	News      *handlers.NewsHandler
	WebSocket *handlers.WebSocketHandler
}

func APIEndpoints(r *gin.Engine, h *Handlers, jwtMgr *auth.JWTManager, rdb *redis.Client, db *database.Database) {
	// Auth endpoints
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/register/doctor", h.Auth.RegisterDoctor)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/logout", h.Auth.Logout)
	}

	// Публичные endpoints
	r.GET("/api/news", h.News.ListNews)
	r.GET("/api/news/:id", h.News.GetNews)
	r.POST("/api/news/:id/vote", h.News.VotePoll)
	r.POST("/api/feedback", h.News.CreateFeedback)
	r.GET("/api/doctors", h.Profile.ListDoctors)

	// API endpoints
	api := r.Group("/api", middleware.AuthMiddleware(jwtMgr, rdb, db))
	{
		api.GET("/me", h.Profile.GetMe)
		api.PUT("/me", h.Profile.UpdateMe)

		api.POST("/requests", h.Request.CreateRequest)
		api.GET("/requests", h.Request.ListMyRequests)
		api.GET("/requests/:id", h.Request.GetRequest)
		api.POST("/requests/:id/close", h.Request.CloseRequest)

		api.GET("/chats", h.Chat.ListMyChats)
		api.GET("/chats/:id", h.Chat.GetChat)
		api.GET("/chats/:id/messages", h.Chat.GetChatMessages)
		api.POST("/chats/:id/messages", h.Chat.SendMessage)

		doctor := api.Group("", middleware.DoctorRequired())
		{
			doctor.GET("/doctor/requests", h.Request.ListDoctorRequests)
			doctor.POST("/requests/:id/accept", h.Request.AcceptRequest)

			doctor.POST("/news", h.News.CreateNews)
			doctor.PUT("/news/:id", h.News.UpdateNews)
			doctor.DELETE("/news/:id", h.News.DeleteNews)
		}
	}

	// WebSocket endpoints
	wsGroup := r.Group("/ws", middleware.WSAuthMiddleware(jwtMgr, rdb, db))
	{
		wsGroup.GET("/chats", h.WebSocket.HandleChatListWS)
		wsGroup.GET("/chats/:id", h.WebSocket.HandleChatWS)
	}
}
