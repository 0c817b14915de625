package router

import (
	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/openwaterlog/backend/internal/handlers"
	"github.com/openwaterlog/backend/internal/middleware"
	"github.com/openwaterlog/backend/internal/models"
	"github.com/openwaterlog/backend/internal/repositories"
	"github.com/openwaterlog/backend/internal/services"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
}

// SetupRoutes configures all application routes and injects dependencies.
// It returns the notification service so the caller can attach the purge
// worker to it.
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mgClient *mongo.Client, firebaseAuthClient *auth.Client, log zerolog.Logger) (*services.NotificationService, error) {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Notification{},
		&models.NotificationWhitelist{},
	)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("PostgreSQL auto-migrations completed")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)
	whitelistRepo := repositories.NewPostgresWhitelistRepository(pgdb)
	eventLogRepo := repositories.NewMongoEventLogRepository(mgClient.Database("openwaterlog"))

	// --- Initialize Services ---
	notificationService := services.NewNotificationService(notificationRepo, whitelistRepo, log)
	eventService := services.NewEventService(notificationService, eventLogRepo, log)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient)
	authHandler.RegisterAuthRoutes(authGroup)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api")
	api.Use(middleware.JWTAuthMiddleware())

	// Notification lifecycle routes
	notificationHandler := handlers.NewNotificationHandler(notificationService, userRepo)
	notificationHandler.RegisterNotificationRoutes(api)

	// Per-channel whitelist routes
	whitelistHandler := handlers.NewWhitelistHandler(notificationService, userRepo)
	whitelistHandler.RegisterWhitelistRoutes(api)

	// Internal event intake, rate-limited
	internalGroup := api.Group("/internal", eMiddleware.RateLimiterWithConfig(eMiddleware.RateLimiterConfig{
		Store: eMiddleware.NewRateLimiterMemoryStore(rate.Limit(20)),
	}))
	eventHandler := handlers.NewEventHandler(eventService)
	eventHandler.RegisterEventRoutes(internalGroup)

	log.Info().Msg("All routes configured")
	return notificationService, nil
}
