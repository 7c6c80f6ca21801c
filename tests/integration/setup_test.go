package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"finwell/internal/handlers"
	"finwell/internal/logger"
	"finwell/internal/middleware"
	"finwell/internal/models"
	"finwell/internal/services"
	"finwell/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Category{},
		&models.Transaction{},
		&models.Obligation{},
		&models.Budget{},
		&models.IncomeSource{},
		&models.Notification{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	notificationService := services.NewNotificationService(db, nil)
	categoryService := services.NewCategoryService(db)
	transactionService := services.NewTransactionService(db)
	budgetService := services.NewBudgetService(db)
	analyticsService := services.NewAnalyticsService(db, budgetService)
	insightService := services.NewInsightService(db, budgetService, analyticsService)
	obligationService := services.NewObligationService(db, notificationService)
	healthService := services.NewHealthService(db, analyticsService, budgetService, obligationService, insightService)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	userHandler := handlers.NewUserHandler(userService, notificationService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, analyticsService, insightService)
	obligationHandler := handlers.NewObligationHandler(obligationService)
	dashboardHandler := handlers.NewDashboardHandler(healthService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/auth/me", authHandler.Me)
	protected.PUT("/users/me", userHandler.UpdateProfile)
	protected.POST("/users/me/income-sources", userHandler.AddIncomeSource)
	protected.GET("/users/me/income-sources", userHandler.GetIncomeSources)
	protected.DELETE("/users/me/income-sources/:id", userHandler.DeleteIncomeSource)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/suggest", categoryHandler.SuggestCategory)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

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

	dashboard := protected.Group("/dashboard")
	dashboard.GET("/health", dashboardHandler.GetHealth)
	dashboard.GET("/summary", dashboardHandler.GetSummary)

	notifications := protected.Group("/notifications")
	notifications.GET("", userHandler.GetNotifications)
	notifications.POST("/:id/read", userHandler.MarkNotificationRead)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken string, userID float64) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(float64)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["access_token"].(string), result["refresh_token"].(string)
}

// createCategory creates a category and returns its ID.
func (app *testApp) createCategory(t *testing.T, token, name string) float64 {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q}`, name)
	rec := app.request("POST", "/api/v1/categories", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	category := result["category"].(map[string]interface{})
	return category["id"].(float64)
}
