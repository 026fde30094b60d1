package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/rivermart/storefront-backend/internal/handlers"
	"github.com/rivermart/storefront-backend/internal/middleware"
)

type RouterConfig struct {
	ServiceName    string
	CartHandler    *handlers.CartHandler
	AuthMiddleware *middleware.AuthMiddleware
	AllowOrigins   []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware(cfg.ServiceName))

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")

	// Reads degrade to empty results for guests.
	reads := api.Group("/")
	reads.Use(cfg.AuthMiddleware.OptionalAuth())
	reads.GET("/cart", cfg.CartHandler.GetCart)
	reads.GET("/cart/details", cfg.CartHandler.GetCartDetails)
	reads.GET("/cart/count", cfg.CartHandler.GetCartItemCount)

	// Mutations require a resolved identity.
	writes := api.Group("/")
	writes.Use(cfg.AuthMiddleware.RequireAuth())
	writes.POST("/cart/items", cfg.CartHandler.AddToCart)
	writes.PATCH("/cart/items/:item_id", cfg.CartHandler.UpdateCartItemQuantity)
	writes.DELETE("/cart/items/:item_id", cfg.CartHandler.RemoveFromCart)
	writes.DELETE("/cart", cfg.CartHandler.ClearCart)
	writes.POST("/cart/migrate", cfg.CartHandler.MigrateGuestCart)

	return router
}
