package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"investclub/internal/config"
	"investclub/internal/database"
	"investclub/internal/handlers"
	"investclub/internal/logger"
	"investclub/internal/middleware"
	"investclub/internal/scheduler"
	"investclub/internal/services"
	"investclub/internal/validator"

	_ "investclub/internal/docs" // Import swagger docs
)

// @title           Investclub API
// @version         1.0
// @description     Investclub is an investment-club platform with tiered plans, daily return crediting, and a three-level referral commission system.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	referralService := services.NewReferralService(db, appConfig.Commission)
	planService := services.NewPlanService(db)
	investmentService := services.NewInvestmentService(db, planService)
	transactionService := services.NewTransactionService(db)
	accrualService := services.NewAccrualService(db, referralService)
	auditService := services.NewAuditService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, referralService, auditService)
	planHandler := handlers.NewPlanHandler(planService, auditService)
	investmentHandler := handlers.NewInvestmentHandler(investmentService, auditService)
	walletHandler := handlers.NewWalletHandler(transactionService, auditService)
	referralHandler := handlers.NewReferralHandler(referralService)
	adminHandler := handlers.NewAdminHandler(accrualService, userService, transactionService, auditService)

	// Optional in-process daily accrual schedule
	if appConfig.AccrualSchedule {
		sched, err := scheduler.StartDailyAccrual(accrualService, appConfig.AccrualHourUTC)
		if err != nil {
			return fmt.Errorf("failed to start accrual scheduler: %w", err)
		}
		defer func() { _ = sched.Shutdown() }()
	}

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	v1.GET("/plans", planHandler.ListActivePlans)

	// Ops routes (external scheduler, X-API-Key)
	ops := v1.Group("/ops")
	ops.Use(middleware.OpsAuthMiddleware(appConfig.AccrualAPIKey))
	ops.POST("/accrual/run", adminHandler.RunAccrualOps)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Referral overview
	protected.GET("/referrals", referralHandler.GetOverview)

	// Investment routes
	investments := protected.Group("/investments")
	investments.POST("", investmentHandler.Invest)
	investments.GET("", investmentHandler.ListInvestments)

	// Wallet routes
	wallet := protected.Group("/wallet")
	wallet.POST("/deposits", walletHandler.RequestDeposit)
	wallet.POST("/withdrawals", walletHandler.RequestWithdrawal)
	wallet.GET("/transactions", walletHandler.ListTransactions)

	// Superadmin routes
	admin := protected.Group("/admin")
	admin.Use(middleware.SuperadminMiddleware())
	admin.POST("/accrual/run", adminHandler.RunAccrual)
	admin.GET("/users", adminHandler.ListUsers)
	admin.GET("/transactions", adminHandler.ListTransactions)
	admin.POST("/transactions/:id/review", adminHandler.ReviewTransaction)
	admin.POST("/plans", planHandler.CreatePlan)
	admin.GET("/plans", planHandler.ListPlans)
	admin.PUT("/plans/:id", planHandler.UpdatePlan)
	admin.DELETE("/plans/:id", planHandler.DeletePlan)

	log.Infof("Starting Investclub backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
