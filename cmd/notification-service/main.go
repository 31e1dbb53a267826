package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"travel-system/internal/api/handlers"
	"travel-system/internal/config"
	"travel-system/internal/infrastructure/auth"
	"travel-system/internal/infrastructure/mysql"
	"travel-system/internal/infrastructure/redis"
	"travel-system/internal/infrastructure/websocket"
	"travel-system/internal/services"
	"travel-system/pkg/logger"

	redisClient "github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	log := logger.New()
	log.Info("Starting Notification Service")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize Redis
	rdb := redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to Redis", "address", cfg.Redis.Address)

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		log.Error("Failed to connect to MySQL", "error", err)
		os.Exit(1)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			log.Error("Failed to close MySQL connection", "error", err)
		}
	}(db)

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	// Test MySQL connection
	if err := db.PingContext(ctx); err != nil {
		log.Error("Failed to ping MySQL", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to MySQL")

	// Initialize repositories
	bookingRepo := mysql.NewMySQLBookingRepository(db)
	notificationRepo := mysql.NewMySQLNotificationRepository(db)

	// Initialize Redis based components
	eventPublisher := redis.NewEventPublisher(rdb)
	eventSubscriber := redis.NewEventSubscriber(rdb, log)

	// Initialize token verifier
	if cfg.JWT.Secret == "" {
		log.Error("JWT secret is not configured")
		os.Exit(1)
	}
	verifier := auth.NewJWTVerifier(cfg.JWT.Secret, cfg.JWT.Issuer)

	// Initialize the hub: registry, dispatcher, liveness monitor, upgrade gate
	registry := websocket.NewRegistry(log)
	dispatcher := websocket.NewDispatcher(registry, bookingRepo, log)
	monitor := websocket.NewMonitor(registry, cfg.Hub.PingInterval, log)
	wsHandler := websocket.NewHandler(verifier, registry, dispatcher, bookingRepo, notificationRepo, log)

	// Initialize event relay
	eventRelay := services.NewEventRelay(dispatcher, notificationRepo, log)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			echo.GET, echo.HEAD, echo.PUT, echo.PATCH,
			echo.POST, echo.DELETE, echo.OPTIONS,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
		},
	}))

	// Initialize handlers
	wsHandlers := handlers.NewWebSocketHandlers(wsHandler)
	eventHandler := handlers.NewEventHandler(eventPublisher, log)

	// Routes
	e.GET("/ws", wsHandlers.HandleConnection)

	api := e.Group("/api/v1")
	api.POST("/events/booking", eventHandler.IngestBookingEvent)

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":      "ok",
			"service":     "notification-service",
			"timestamp":   time.Now().Format(time.RFC3339),
			"connections": registry.Len(),
		})
	})

	// Start liveness monitor
	if err := monitor.Start(); err != nil {
		log.Error("Failed to start liveness monitor", "error", err)
		os.Exit(1)
	}

	// Start event relay
	relayCtx, relayCancel := context.WithCancel(context.Background())
	defer relayCancel()
	go func() {
		if err := eventRelay.Start(relayCtx, eventSubscriber); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Event relay stopped", "error", err)
		}
	}()

	// Start server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("Starting notification server", "address", serverAddr)

	go func() {
		if err := e.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down notification service...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	relayCancel()
	monitor.Stop()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Notification service stopped")
}
