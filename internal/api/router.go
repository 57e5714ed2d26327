package api

import (
	"database/sql"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/storefront/commerce-system/internal/api/handler"
	"github.com/storefront/commerce-system/internal/api/middleware"
	"github.com/storefront/commerce-system/internal/core/domain"
	"github.com/storefront/commerce-system/internal/core/service"
	"github.com/storefront/commerce-system/internal/infrastructure/config"
	"github.com/storefront/commerce-system/internal/infrastructure/db/postgres"
	"github.com/storefront/commerce-system/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *sql.DB, rdb *goredis.Client, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.BodyLimit(cfg.UploadLimit))
	e.Use(echoprometheus.NewMiddleware("commerce"))

	// --- Dependencies ---
	userRepo := postgres.NewUserRepository(db)
	productRepo := postgres.NewProductRepository(db)
	orderRepo := postgres.NewOrderRepository(db)
	catalogCache := redis.NewCatalogCache(rdb)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL, log)
	userService := service.NewUserService(userRepo, log)
	productService := service.NewProductService(productRepo, catalogCache, log)
	orderService := service.NewOrderService(userRepo, productRepo, orderRepo, catalogCache, log)

	authHandler := handler.NewAuthHandler(authService, cfg.TokenTTL)
	userHandler := handler.NewUserHandler(userService)
	productHandler := handler.NewProductHandler(productService)
	orderHandler := handler.NewOrderHandler(orderService)

	auth := middleware.Auth(cfg.JWTSecret)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/register", authHandler.Register)
	e.POST("/login", authHandler.Login)
	e.GET("/logout", authHandler.Logout, auth)

	// --- User routes ---
	e.GET("/users", userHandler.List, auth, adminOnly)
	e.DELETE("/user", userHandler.Delete, auth, adminOnly)
	e.PUT("/user/role", userHandler.UpdateRole, auth, adminOnly)
	e.PUT("/user/adddeposite", userHandler.AddDeposit, auth)
	e.PUT("/user/minusdeposite", userHandler.SubtractDeposit, auth)

	// --- Product routes ---
	e.GET("/products", productHandler.List, auth)
	e.PUT("/product", productHandler.Create, auth, adminOnly)
	e.PUT("/product/inventory", productHandler.AdjustInventory, auth)
	e.PUT("/product/price", productHandler.UpdatePrice, auth, adminOnly)
	e.DELETE("/product", productHandler.Delete, auth, adminOnly)

	// --- Order routes ---
	e.GET("/orders", orderHandler.ListAll, auth, adminOnly)
	e.GET("/user/orders", orderHandler.ListForUser, auth)
	e.POST("/purchase", orderHandler.Purchase, auth)
	e.DELETE("/order", orderHandler.Delete, auth, adminOnly)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
