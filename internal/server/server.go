// Package server wires the record store, services and handlers into a gin
// router.
package server

import (
	"fmt"
	"net/http"

	"github.com/fernet/fernet-go"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"vestora/internal/config"
	"vestora/internal/handlers"
	"vestora/internal/logger"
	"vestora/internal/middleware"
	"vestora/internal/reconcile"
	"vestora/internal/services"
	"vestora/internal/store"
	"vestora/internal/store/rest"
	"vestora/internal/validator"

	_ "vestora/internal/docs" // Import swagger docs
)

// Record store states reported by the health endpoint.
const (
	StoreStatusDatabase     = "database"
	StoreStatusREST         = "rest"
	StoreStatusUnconfigured = "unconfigured"
)

// Server holds the assembled HTTP surface and the components the entry
// points drive directly.
type Server struct {
	Router      *gin.Engine
	Store       store.Store
	StoreStatus string
	Reconciler  *reconcile.Reconciler
	Sync        services.BalanceServicer
}

// NewStore selects the record store backend. A REST backend missing its
// URL or key yields the unconfigured store instead of an error, so the
// service still starts.
func NewStore(cfg *config.Config, db *gorm.DB) (store.Store, string) {
	if cfg.StoreBackend != config.StoreBackendREST {
		return store.NewGormStore(db), StoreStatusDatabase
	}
	if !cfg.RecordStoreConfigured() {
		logger.Named("store").Warnw("record store is not configured",
			"backend", cfg.StoreBackend,
			"service_url_set", cfg.ServiceURL != "",
			"public_key_set", cfg.ServicePublicKey != "",
		)
		return store.NewUnconfigured("SERVICE_URL and SERVICE_PUBLIC_KEY must be set"), StoreStatusUnconfigured
	}
	httpClient := &http.Client{Timeout: cfg.StoreTimeout}
	return rest.New(cfg.ServiceURL, cfg.ServicePublicKey, httpClient), StoreStatusREST
}

// New builds the router. db holds identity data and the audit log in every
// configuration; asset data goes to the store NewStore selects.
func New(cfg *config.Config, db *gorm.DB) (*Server, error) {
	st, status := NewStore(cfg, db)
	return NewWithStore(cfg, db, st, status)
}

// NewWithStore builds the router over an explicit record store.
func NewWithStore(cfg *config.Config, db *gorm.DB, st store.Store, status string) (*Server, error) {
	var resetKey *fernet.Key
	if cfg.ResetTokenKey != "" {
		key, err := fernet.DecodeKey(cfg.ResetTokenKey)
		if err != nil {
			return nil, fmt.Errorf("invalid RESET_TOKEN_KEY: %w", err)
		}
		resetKey = key
	}

	validator.Register()

	tokens := middleware.NewTokenManager(cfg.JWTSecret, cfg.JWTExpirationDur, cfg.AdminSessionTTL)
	if !tokens.Available() {
		logger.Get().Warn("JWT_SECRET is not set, authentication is unavailable")
	}

	// Services
	userService := services.NewUserService(db, st, resetKey)
	auditService := services.NewAuditService(db)
	balanceService := services.NewBalanceService(st, st)
	assetService := services.NewAssetService(st, balanceService)
	dashboardService := services.NewDashboardService(st, st)
	transactionService := services.NewTransactionService(st, st)
	adminService := services.NewAdminService(st, balanceService, transactionService, userService, auditService, services.AdminConfig{
		Emails:    cfg.AdminEmails,
		Passcodes: cfg.AdminPasscodes,
		Currency:  cfg.Currency,
	})
	reconciler := reconcile.New(st, balanceService)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, tokens, adminService, auditService, !cfg.IsProduction())
	assetHandler := handlers.NewAssetHandler(assetService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, balanceService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	adminHandler := handlers.NewAdminHandler(adminService, userService, tokens)
	opsHandler := handlers.NewOpsHandler(reconciler)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		auth := "available"
		if !tokens.Available() {
			auth = "unavailable"
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "record_store": status, "auth": auth})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/password-reset/request", authHandler.RequestPasswordReset)
	auth.POST("/password-reset/confirm", authHandler.ConfirmPasswordReset)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(tokens))

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/profile", authHandler.GetProfile)

	// Asset routes
	assets := protected.Group("/assets")
	assets.GET("", assetHandler.ListAssets)
	assets.POST("", assetHandler.CreateAsset)
	assets.GET("/:id", assetHandler.GetAsset)
	assets.PUT("/:id", assetHandler.UpdateAsset)
	assets.DELETE("/:id", assetHandler.DeleteAsset)

	// Dashboard and balance routes
	protected.GET("/dashboard", dashboardHandler.GetDashboard)
	protected.GET("/balance", dashboardHandler.GetBalance)
	protected.POST("/balance/sync", dashboardHandler.SyncBalance)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.POST("", transactionHandler.CreateTransaction)

	// Admin unlock takes an access token; everything else needs the admin session
	protected.POST("/admin/unlock", adminHandler.Unlock)

	admin := v1.Group("/admin")
	admin.Use(middleware.AdminMiddleware(tokens, userService, adminService))
	admin.GET("/owners", adminHandler.ListOwners)
	admin.GET("/owners/:ownerID/assets", adminHandler.GetOwnerAssets)
	admin.POST("/owners/:ownerID/assets", adminHandler.CreateAsset)
	admin.PUT("/owners/:ownerID/assets/:id", adminHandler.UpdateAsset)
	admin.DELETE("/owners/:ownerID/assets/:id", adminHandler.DeleteAsset)
	admin.POST("/owners/:ownerID/sync", adminHandler.SyncOwner)
	admin.PUT("/owners/:ownerID/cash", adminHandler.SetAvailableCash)
	admin.GET("/owners/:ownerID/transactions", adminHandler.ListOwnerTransactions)
	admin.POST("/owners/:ownerID/transactions", adminHandler.CreateOwnerTransaction)
	admin.PUT("/profiles/:userID", adminHandler.SetProfileAdmin)

	// Operator routes
	ops := v1.Group("/ops")
	ops.Use(middleware.OpsKeyMiddleware(cfg.OpsAPIKey))
	ops.POST("/reconcile", opsHandler.Reconcile)

	return &Server{
		Router:      router,
		Store:       st,
		StoreStatus: status,
		Reconciler:  reconciler,
		Sync:        balanceService,
	}, nil
}

// cors allows browser clients from any origin.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
