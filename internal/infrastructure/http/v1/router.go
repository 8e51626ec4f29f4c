// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/ItsEgzix/Tasto-backend/internal/domain/analytics"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/catalogs/category"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/catalogs/ingredient"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/catalogs/location"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/catalogs/supplier"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/catalogs/unit"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/costing"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/ledger"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/recipes"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/stock"
	"github.com/ItsEgzix/Tasto-backend/internal/infrastructure/http/v1/handlers"
	"github.com/ItsEgzix/Tasto-backend/internal/infrastructure/http/v1/middleware"
	"github.com/ItsEgzix/Tasto-backend/internal/infrastructure/storage/postgres"
	"github.com/ItsEgzix/Tasto-backend/internal/infrastructure/storage/postgres/catalog_repo"
	"github.com/ItsEgzix/Tasto-backend/internal/infrastructure/storage/postgres/ledger_repo"
	"github.com/ItsEgzix/Tasto-backend/internal/infrastructure/storage/postgres/recipe_repo"
	"github.com/ItsEgzix/Tasto-backend/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the shared database connection pool
	Pool *postgres.Pool

	// TxManager runs transactional work over the pool
	TxManager *postgres.TxManager

	// Audit records accepted ledger writes
	Audit *postgres.AuditService

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// Dispatcher queues ingredient analytics recomputes after ledger writes
	Dispatcher *analytics.ChannelDispatcher

	// Analytics is the aggregation service (already wired to the dispatcher)
	Analytics *analytics.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1, all tenant-scoped behind JWT auth
	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(cfg.JWTValidator))

	base := handlers.NewBaseHandler()

	// Repositories
	categoryRepo := catalog_repo.NewCategoryRepo(cfg.TxManager)
	unitRepo := catalog_repo.NewUnitRepo(cfg.TxManager)
	supplierRepo := catalog_repo.NewSupplierRepo(cfg.TxManager)
	locationRepo := catalog_repo.NewLocationRepo(cfg.TxManager)
	ingredientRepo := catalog_repo.NewIngredientRepo(cfg.TxManager)
	ledgerRepo := ledger_repo.NewLedgerRepo(cfg.TxManager)
	recipeRepo := recipe_repo.NewRecipeRepo(cfg.TxManager)
	menuRepo := recipe_repo.NewMenuRepo(cfg.TxManager)

	// Services
	categoryService := category.NewService(categoryRepo, cfg.TxManager)
	unitService := unit.NewService(unitRepo, cfg.TxManager)
	supplierService := supplier.NewService(supplierRepo, cfg.TxManager)
	locationService := location.NewService(locationRepo, cfg.TxManager)
	ingredientService := ingredient.NewService(ingredientRepo, categoryRepo, unitRepo, cfg.TxManager)
	ledgerService := ledger.NewService(ledgerRepo, ingredientRepo, locationRepo, supplierRepo,
		cfg.TxManager, cfg.Audit, cfg.Dispatcher)
	stockCalc := stock.NewCalculator(ledgerRepo, ingredientRepo)
	recipeService := recipes.NewService(recipeRepo, menuRepo, ledgerRepo, ingredientRepo,
		cfg.TxManager, cfg.Audit, cfg.Dispatcher)
	costingService := costing.NewService(ledgerRepo, recipeRepo, menuRepo)

	// Reference directories
	registerDirectoryRoutes(v1.Group("/catalog/categories"), handlers.NewCategoryHandler(base, categoryService))
	registerDirectoryRoutes(v1.Group("/catalog/units"), handlers.NewUnitHandler(base, unitService))
	registerDirectoryRoutes(v1.Group("/catalog/suppliers"), handlers.NewSupplierHandler(base, supplierService))
	registerDirectoryRoutes(v1.Group("/catalog/locations"), handlers.NewLocationHandler(base, locationService))
	registerDirectoryRoutes(v1.Group("/catalog/ingredients"), handlers.NewIngredientHandler(base, ingredientService))

	// Ledger
	ledgerHandler := handlers.NewLedgerHandler(base, ledgerService, ledgerRepo, cfg.Audit)
	ledgerGroup := v1.Group("/ledger")
	{
		ledgerGroup.POST("/purchases", ledgerHandler.RecordPurchase)
		ledgerGroup.POST("/usage", ledgerHandler.RecordUsage)
		ledgerGroup.POST("/spoilage", ledgerHandler.RecordSpoilage)
		ledgerGroup.GET("/lots", ledgerHandler.ListLots)
		ledgerGroup.GET("/lots/:id", ledgerHandler.GetLot)
		ledgerGroup.GET("/lots/:id/history", ledgerHandler.LotHistory)
	}

	// Derived stock state
	stockHandler := handlers.NewStockHandler(base, stockCalc)
	stockGroup := v1.Group("/stock")
	{
		stockGroup.GET("/lots/remaining", stockHandler.GetRemainingBatch)
		stockGroup.GET("/lots/:id/remaining", stockHandler.GetRemaining)
		stockGroup.GET("/ingredients", stockHandler.GetStockByIngredient)
		stockGroup.GET("/low", stockHandler.GetLowStock)
		stockGroup.GET("/expiring", stockHandler.GetExpiring)
	}

	// Recipes and menu plans
	recipeHandler := handlers.NewRecipeHandler(base, recipeService)
	recipeGroup := v1.Group("/recipes")
	{
		recipeGroup.GET("", recipeHandler.List)
		recipeGroup.POST("", recipeHandler.Create)
		recipeGroup.GET("/:id", recipeHandler.Get)
		recipeGroup.PUT("/:id", recipeHandler.Update)
		recipeGroup.DELETE("/:id", recipeHandler.Delete)
		recipeGroup.POST("/:id/complete", recipeHandler.Complete)
	}
	menuGroup := v1.Group("/menus")
	{
		menuGroup.GET("", recipeHandler.ListMenus)
		menuGroup.POST("", recipeHandler.CreateMenu)
		menuGroup.GET("/:id", recipeHandler.GetMenu)
		menuGroup.PUT("/:id", recipeHandler.UpdateMenu)
		menuGroup.DELETE("/:id", recipeHandler.DeleteMenu)
	}

	// Cost engine
	costingHandler := handlers.NewCostingHandler(base, costingService)
	costingGroup := v1.Group("/costing")
	{
		costingGroup.GET("/recipes", costingHandler.GetRecipeCosts)
		costingGroup.GET("/recipes/:id", costingHandler.GetRecipeCost)
		costingGroup.GET("/menus/:id", costingHandler.GetMenuCost)
	}

	// Analytics
	analyticsHandler := handlers.NewAnalyticsHandler(base, cfg.Analytics)
	analyticsGroup := v1.Group("/analytics")
	{
		analyticsGroup.GET("/statistics", analyticsHandler.GetOverallStatistics)
		analyticsGroup.GET("/ingredients/:id", analyticsHandler.GetIngredientAnalytics)
		analyticsGroup.GET("/value-trend", analyticsHandler.GetValueTrend)
		analyticsGroup.GET("/snapshots", analyticsHandler.ListSnapshots)
		analyticsGroup.POST("/snapshots", analyticsHandler.SaveSnapshot)
	}

	return router
}

// DirectoryRouteHandler is the CRUD surface every directory handler exposes.
type DirectoryRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

// registerDirectoryRoutes registers standard CRUD routes for a directory.
func registerDirectoryRoutes(group *gin.RouterGroup, handler DirectoryRouteHandler) {
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/:id", handler.Get)
	group.PUT("/:id", handler.Update)
	group.DELETE("/:id", handler.Delete)
}
