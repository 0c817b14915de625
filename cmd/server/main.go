package main

import (
	"context"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/openwaterlog/backend/internal/router"
	"github.com/openwaterlog/backend/internal/services"
	"github.com/openwaterlog/backend/pkg/config"
	"github.com/openwaterlog/backend/pkg/firebase"
	"github.com/openwaterlog/backend/pkg/logger"
	"github.com/openwaterlog/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.Env)

	// Initialize database connections
	db, err := config.InitDB()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize databases")
	}
	defer db.CloseDB()

	// Initialize Firebase when credentials are configured; without them the
	// firebase-login flow stays disabled and local JWT auth still works.
	var firebaseAuthClient *auth.Client
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(context.Background(), cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Firebase")
		}
		firebaseAuthClient = firebaseApp.AuthClient
	} else {
		log.Warn().Msg("Firebase credentials not configured; firebase-login disabled")
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Validator
	e.Validator = validators.NewValidator()

	// Setup routes and dependencies
	notificationService, err := router.SetupRoutes(e, db.Postgres, db.Mongo, firebaseAuthClient, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up routes")
	}

	// Periodic expiry sweep
	purgeWorker := services.NewPurgeWorker(notificationService, cfg.PurgeSchedule, log)
	if err := purgeWorker.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start purge worker")
	}
	defer purgeWorker.Stop()

	// Start server
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
