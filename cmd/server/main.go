package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"agri_chat/internal/config"
	"agri_chat/internal/handler"
	"agri_chat/internal/middleware"
	"agri_chat/internal/repository"
	"agri_chat/internal/service"
	"agri_chat/internal/ws"
	"agri_chat/pkg/logger"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	appLogger := logger.New(cfg.Log.Level)

	// Подключение к PostgreSQL
	dbPool, err := pgxpool.New(context.Background(), cfg.Database.DSN)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", "error", err)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(context.Background()); err != nil {
		appLogger.Fatal("Failed to ping database", "error", err)
	}
	appLogger.Info("Database connection established")

	// Подключение к Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		appLogger.Fatal("Failed to connect to Redis", "error", err)
	}
	appLogger.Info("Redis connection established")

	// Репозитории
	repos := repository.NewRepositories(dbPool, rdb, appLogger)

	// Регистр живых каналов и диспетчер рассылки: единственное изменяемое
	// состояние процесса, живёт от старта до остановки
	registry := ws.NewRegistry(appLogger)
	dispatcher := ws.NewDispatcher(repos.Membership, registry, appLogger)

	// Сервисы
	services := service.NewServices(repos, cfg, dispatcher, appLogger)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(services.Auth, appLogger)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(services.RateLimit, appLogger)

	// Handlers
	handlers := handler.NewHandlers(services, registry, cfg, appLogger)

	router := setupRouter(handlers, authMiddleware, rateLimitMiddleware, cfg, appLogger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		appLogger.Info("Starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	registry.CloseAll()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", "error", err)
	}

	appLogger.Info("Server exited")
}

func setupRouter(
	handlers *handler.Handlers,
	authMiddleware *middleware.AuthMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
	cfg *config.Config,
	log logger.Logger,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler())

	// Health check
	router.GET("/health", handlers.Health.Check)

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Публичные endpoints
		public := v1.Group("/auth")
		{
			public.POST("/register", rateLimitMiddleware.Limit(), handlers.Auth.Register)
			public.POST("/login", rateLimitMiddleware.Limit(), handlers.Auth.Login)
		}

		// Защищённые endpoints
		protected := v1.Group("")
		protected.Use(authMiddleware.RequireAuth())
		{
			chat := protected.Group("/chat")
			{
				chat.POST("/rooms/direct", handlers.Chat.CreateDirectRoom)
				chat.POST("/rooms/group", handlers.Chat.CreateGroupRoom)
				chat.GET("/rooms", handlers.Chat.ListRooms)
				chat.GET("/rooms/:id/messages", handlers.Chat.GetMessages)
				chat.POST("/rooms/:id/messages", rateLimitMiddleware.Limit(), handlers.Chat.SendMessage)
				chat.POST("/messages/:messageId/recall", handlers.Chat.RecallMessage)
				chat.DELETE("/messages/:messageId", handlers.Chat.DeleteMessage)
			}

			admin := protected.Group("/admin")
			admin.Use(authMiddleware.RequireAdmin())
			{
				admin.POST("/announcements", handlers.Announce.Publish)
			}
		}
	}

	// WebSocket endpoint чата
	router.GET("/ws/chat", handlers.WebSocket.HandleChat)

	return router
}
