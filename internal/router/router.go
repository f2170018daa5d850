package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/config"
	"github.com/ikkim/storefront-backend/internal/app/controller"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/metrics"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

type Router struct {
	authController   *controller.AuthController
	itemController   *controller.ItemController
	cartController   *controller.CartController
	uploadController *controller.UploadController
	authMiddleware   *middleware.AuthMiddleware
	metrics          *metrics.Metrics
	config           *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	itemController *controller.ItemController,
	cartController *controller.CartController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	m *metrics.Metrics,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:   authController,
		itemController:   itemController,
		cartController:   cartController,
		uploadController: uploadController,
		authMiddleware:   authMiddleware,
		metrics:          m,
		config:           cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))
	if r.metrics != nil {
		router.Use(r.metrics.Middleware())
		router.GET("/metrics", gin.WrapH(r.metrics.Handler()))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Storefront API is running",
		})
	})

	adminOnly := []gin.HandlerFunc{
		r.authMiddleware.Authenticate(),
		r.authMiddleware.RequireRole(model.RoleAdmin),
	}

	api := router.Group("/api")
	{
		items := api.Group("/items")
		{
			items.GET("", r.itemController.ListItems)
			items.GET("/:id", r.itemController.GetItem)
			items.POST("", append(adminOnly, r.itemController.CreateItem)...)
			items.POST("/images", append(adminOnly, r.uploadController.PresignItemImage)...)
		}

		users := api.Group("/users")
		{
			users.POST("/register", r.authController.Register)
			users.POST("/login", r.authController.Login)
			users.POST("/logout", r.authController.Logout)

			session := users.Group("", r.authMiddleware.Authenticate())
			{
				session.GET("/me", r.authController.Me)
				session.GET("/cart", r.cartController.GetCart)
				session.POST("/cart", r.cartController.AddToCart)
				session.DELETE("/cart", r.cartController.ClearCart)
				session.DELETE("/cart/:productId", r.cartController.RemoveFromCart)
			}
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		// credentialed requests need the concrete origin echoed back
		if allowed && origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-Request-ID, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
