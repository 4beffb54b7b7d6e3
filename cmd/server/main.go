package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/hermon-k/roomshare/backend/internal/router"
	"github.com/hermon-k/roomshare/backend/internal/sweeper"
	"github.com/hermon-k/roomshare/backend/pkg/config"
	"github.com/hermon-k/roomshare/backend/pkg/firebase"
	"github.com/hermon-k/roomshare/backend/pkg/logging"
	"github.com/hermon-k/roomshare/backend/validators"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Structured logging
	logging.Setup()
	logger := slog.Default()

	// Initialize database connections
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Initialize Firebase
	ctx := context.Background()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	eng := router.SetupRoutes(e, db.Postgres, db.Mongo, firebaseApp.AuthClient, cfg, logger)

	// Validator
	e.Validator = validators.NewValidator()

	// Payment deadline sweeper
	sw := sweeper.New(eng, logger, cfg.SweepSchedule)
	sw.Start()
	defer func() {
		<-sw.Stop().Done()
	}()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
