package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"finwell/internal/amqp"
	"finwell/internal/config"
	"finwell/internal/database"
	"finwell/internal/handlers"
	"finwell/internal/logger"
	"finwell/internal/middleware"
	"finwell/internal/services"
	"finwell/internal/validator"

	_ "finwell/internal/docs" // Import swagger docs
)

// @title           FinWell API
// @version         1.0
// @description     FinWell tracks spending, schedules recurring obligations, and reports budget health.

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
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Optional notification broker
	var publisher *amqp.Client
	if appConfig.AMQPURL != "" {
		publisher, err = amqp.NewClient(appConfig.AMQPURL, appConfig.AMQPExchange, appConfig.AMQPQueue)
		if err != nil {
			return fmt.Errorf("failed to connect to message broker: %w", err)
		}
		defer publisher.Close()
		log.Infof("Notification publishing enabled on exchange %s", appConfig.AMQPExchange)
	}

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	notificationService := services.NewNotificationService(db, publisher)
	categoryService := services.NewCategoryService(db)
	transactionService := services.NewTransactionService(db)
	budgetService := services.NewBudgetService(db)
	analyticsService := services.NewAnalyticsService(db, budgetService)
	insightService := services.NewInsightService(db, budgetService, analyticsService)
	obligationService := services.NewObligationService(db, notificationService)
	healthService := services.NewHealthService(db, analyticsService, budgetService, obligationService, insightService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	userHandler := handlers.NewUserHandler(userService, notificationService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, analyticsService, insightService)
	obligationHandler := handlers.NewObligationHandler(obligationService)
	dashboardHandler := handlers.NewDashboardHandler(healthService)

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
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// Profile
	protected.GET("/auth/me", authHandler.Me)
	protected.PUT("/users/me", userHandler.UpdateProfile)
	protected.POST("/users/me/income-sources", userHandler.AddIncomeSource)
	protected.GET("/users/me/income-sources", userHandler.GetIncomeSources)
	protected.DELETE("/users/me/income-sources/:id", userHandler.DeleteIncomeSource)

	// Category routes
	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/suggest", categoryHandler.SuggestCategory)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Budget routes
	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/overview", budgetHandler.GetOverview)
	budgets.GET("/trend", budgetHandler.GetTrend)
	budgets.GET("/breakdown", budgetHandler.GetBreakdown)
	budgets.GET("/alerts", budgetHandler.GetAlerts)
	budgets.GET("/recommendations", budgetHandler.GetRecommendations)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	// Obligation routes
	obligations := protected.Group("/obligations")
	obligations.POST("", obligationHandler.CreateObligation)
	obligations.GET("", obligationHandler.GetObligations)
	obligations.GET("/upcoming", obligationHandler.Upcoming)
	obligations.POST("/scan", obligationHandler.Scan)
	obligations.GET("/:id", obligationHandler.GetObligation)
	obligations.PUT("/:id", obligationHandler.UpdateObligation)
	obligations.DELETE("/:id", obligationHandler.DeleteObligation)
	obligations.POST("/:id/pause", obligationHandler.PauseObligation)
	obligations.POST("/:id/resume", obligationHandler.ResumeObligation)
	obligations.POST("/:id/generate-now", obligationHandler.GenerateNow)
	obligations.POST("/:id/paid", obligationHandler.MarkPaid)

	// Dashboard routes
	dashboard := protected.Group("/dashboard")
	dashboard.GET("/health", dashboardHandler.GetHealth)
	dashboard.GET("/summary", dashboardHandler.GetSummary)

	// Notification routes
	notifications := protected.Group("/notifications")
	notifications.GET("", userHandler.GetNotifications)
	notifications.POST("/:id/read", userHandler.MarkNotificationRead)

	log.Infof("Starting FinWell backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
