package router

import (
	"log"
	"log/slog"

	"firebase.google.com/go/v4/auth"
	"github.com/hermon-k/roomshare/backend/internal/engine"
	"github.com/hermon-k/roomshare/backend/internal/handlers"
	"github.com/hermon-k/roomshare/backend/internal/middleware"
	"github.com/hermon-k/roomshare/backend/internal/models"
	"github.com/hermon-k/roomshare/backend/internal/repositories"
	"github.com/hermon-k/roomshare/backend/pkg/chapa"
	"github.com/hermon-k/roomshare/backend/pkg/config"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies.
// It returns the matching engine so the caller can hook up the sweep
// scheduler.
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mgClient *mongo.Client, firebaseAuthClient *auth.Client, cfg *config.Config, logger *slog.Logger) *engine.Engine {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.MatchGroup{},
		&models.GroupMember{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	roomRepo := repositories.NewPostgresRoomRepository(pgdb)
	groupRepo := repositories.NewPostgresGroupRepository(pgdb)
	notificationRepo := repositories.NewMongoNotificationRepository(mgClient.Database("roomshare"))

	// --- Matching engine ---
	notifier := engine.NewNotifier(notificationRepo, userRepo, groupRepo, logger)
	eng := engine.New(groupRepo, userRepo, roomRepo, notifier, logger)

	chapaClient := chapa.NewClient(cfg.ChapaBaseURL, cfg.ChapaSecretKey)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Provider webhooks (verified against the provider, not a JWT) ---
	paymentHandler := handlers.NewPaymentHandler(eng, chapaClient, userRepo, cfg.BaseURL)
	webhookGroup := e.Group("/api/v1")
	paymentHandler.RegisterWebhookRoutes(webhookGroup)
	log.Println("Payment webhook routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	// User profile routes
	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterProfileRoutes(api)
	log.Println("User profile routes configured.")

	// Room routes
	roomHandler := handlers.NewRoomHandler(roomRepo)
	roomHandler.RegisterRoomRoutes(api)
	log.Println("Room routes configured.")

	// Matching and group lifecycle routes
	matchingHandler := handlers.NewMatchingHandler(eng)
	matchingHandler.RegisterMatchingRoutes(api)
	log.Println("Matching routes configured.")

	// Payment routes
	paymentHandler.RegisterPaymentRoutes(api)
	log.Println("Payment routes configured.")

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	log.Println("All routes configured.")

	return eng
}
