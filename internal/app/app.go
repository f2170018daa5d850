package app

import (
	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/config"
	"github.com/ikkim/storefront-backend/internal/app/controller"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/metrics"
	"github.com/ikkim/storefront-backend/internal/middleware"
	"github.com/ikkim/storefront-backend/internal/router"
	"github.com/ikkim/storefront-backend/pkg/util"
	"gorm.io/gorm"
)

// App holds the wired services and the HTTP engine.
type App struct {
	Engine         *gin.Engine
	AuthService    service.AuthService
	CatalogService service.CatalogService
	CartService    service.CartService
}

// New wires repositories, services, controllers and routes on top of an open
// database. presigner may be nil when image uploads are not configured.
func New(cfg *config.Config, db *gorm.DB, presigner controller.ImagePresigner) *App {
	userRepo := repository.NewUserRepository(db)
	itemRepo := repository.NewItemRepository(db)

	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiry)
	catalogService := service.NewCatalogService(itemRepo)
	cartService := service.NewCartService(userRepo, itemRepo)

	cookie := util.CookieOptions{
		Name:   cfg.JWT.CookieName,
		MaxAge: cfg.JWT.Expiry,
		Secure: !cfg.Server.IsDevelopment(),
	}

	authController := controller.NewAuthController(authService, cookie)
	itemController := controller.NewItemController(catalogService)
	cartController := controller.NewCartController(cartService)
	uploadController := controller.NewUploadController(presigner)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, cfg.JWT.CookieName, userRepo)

	r := router.NewRouter(
		authController,
		itemController,
		cartController,
		uploadController,
		authMiddleware,
		metrics.New(),
		cfg,
	)

	return &App{
		Engine:         r.Setup(),
		AuthService:    authService,
		CatalogService: catalogService,
		CartService:    cartService,
	}
}
