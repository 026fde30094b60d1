package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rivermart/storefront-backend/internal/db"
	"github.com/rivermart/storefront-backend/internal/handlers"
	"github.com/rivermart/storefront-backend/internal/logger"
	"github.com/rivermart/storefront-backend/internal/middleware"
	"github.com/rivermart/storefront-backend/internal/observability"
	"github.com/rivermart/storefront-backend/internal/repos"
	"github.com/rivermart/storefront-backend/internal/server"
	"github.com/rivermart/storefront-backend/internal/services"
	"github.com/rivermart/storefront-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	serviceName := utils.GetEnv("SERVICE_NAME", "storefront-backend", log)
	port := utils.GetEnv("PORT", "8080", log)

	// Tracing
	shutdownOtel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: utils.GetEnv("DEPLOY_ENV", "development", log),
		Version:     utils.GetEnv("SERVICE_VERSION", "dev", log),
	})
	if shutdownOtel != nil {
		defer func() { _ = shutdownOtel(context.Background()) }()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Page-cache invalidation; optional, degrades to a no-op
	revalidator, err := services.NewRedisRevalidator(log)
	if err != nil {
		log.Warn("Redis revalidator unavailable, cart mutations will not invalidate cached renders", "error", err)
		revalidator = services.NewNoopRevalidator()
	}

	// Repos
	cartRepo := repos.NewCartRepo(thePG, log)
	cartItemRepo := repos.NewCartItemRepo(thePG, log)
	variantRepo := repos.NewVariantRepo(thePG, log)

	// Services
	cartService := services.NewCartService(thePG, log, cartRepo, cartItemRepo, variantRepo, revalidator)
	sessionService := services.NewSessionService(log, jwtSecretKey)

	// Handlers + middleware + router
	cartHandler := handlers.NewCartHandler(cartService)
	authMiddleware := middleware.NewAuthMiddleware(log, sessionService)
	router := server.NewRouter(server.RouterConfig{
		ServiceName:    serviceName,
		CartHandler:    cartHandler,
		AuthMiddleware: authMiddleware,
	})

	log.Info("Starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
