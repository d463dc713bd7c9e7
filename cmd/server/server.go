package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/avelinag/medlink/internal/database"
	"github.com/avelinag/medlink/internal/handlers"
	"github.com/avelinag/medlink/internal/service"
	"github.com/avelinag/medlink/internal/websocket"
	"github.com/avelinag/medlink/pkg/auth"
)

type Server struct {
	Router     *gin.Engine
	DB         *database.Database
	Redis      *redis.Client
	JWTManager *auth.JWTManager
	Hub        *websocket.Hub
}

func NewServer() *Server {
	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Println(".env not found, using environment variables")
		}
	}

	dbConn, err := database.Connect()
	if err != nil {
		log.Fatalf("Postgres connect failed: %v", err)
	}

	redisOpts, err := redis.ParseURL(os.Getenv("REDIS_URL"))
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Redis connect failed: %v", err)
	}

	jwtMgr := auth.NewJWTManager(
		os.Getenv("JWT_SECRET"),
		24*time.Hour,
	)

	hub := websocket.NewHub()
	go hub.Run()

	delivery := websocket.NewDelivery(hub)
	consultation := service.NewConsultation(dbConn, delivery)

	authH := handlers.NewAuthHandler(dbConn, jwtMgr, rdb)
	profileH := handlers.NewProfileHandler(dbConn)
	requestH := handlers.NewRequestHandler(dbConn, consultation)
	chatH := handlers.NewChatHandler(dbConn, consultation)
	newsH := handlers.NewNewsHandler(dbConn)

	eventH := handlers.NewChatEventHandler(consultation, delivery)
	wsH := handlers.NewWebSocketHandler(hub, dbConn, eventH)

	router := gin.Default()
	APIEndpoints(router, &Handlers{
		Auth:      authH,
		Profile:   profileH,
		Request:   requestH,
		Chat:      chatH,
		News:      newsH,
		WebSocket: wsH,
	}, jwtMgr, rdb, dbConn)

	return &Server{
		Router:     router,
		DB:         dbConn,
		Redis:      rdb,
		JWTManager: jwtMgr,
		Hub:        hub,
	}
}

func (s *Server) Run() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server starting on port %s", port)
	if err := s.Router.Run(":" + port); err != nil {
		log.Fatalf("Server run error: %v", err)
	}
}
