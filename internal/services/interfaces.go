package services

import (
	"context"
	"time"

	"finwell/internal/models"
	"finwell/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID uint, tokenHash string) error
	GetRefreshTokenHash(userID uint) (string, error)
	UpdateProfile(userID uint, firstName, lastName *string, monthlyIncome, savingsAmount, savingsTarget *int64) (*models.User, error)
	AddIncomeSource(userID uint, name string, amount int64, frequency models.IncomeFrequency) (*models.IncomeSource, error)
	GetIncomeSources(userID uint) ([]models.IncomeSource, error)
	DeleteIncomeSource(userID, sourceID uint) error
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID uint, name, keywords, color, icon string) (*models.Category, error)
	GetUserCategories(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID uint) (*models.Category, error)
	UpdateCategory(userID, categoryID uint, name, keywords, color, icon string) (*models.Category, error)
	DeleteCategory(userID, categoryID uint) error
	SuggestCategory(userID uint, description string) (*models.Category, error)
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate    *time.Time
	ToDate      *time.Time
	Type        *models.TransactionType
	CategoryID  *uint
	MinAmount   *int64
	MaxAmount   *int64
	IsRecurring *bool
	Search      string
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID uint, categoryID *uint, transactionType models.TransactionType, amount int64, description string, date time.Time, notes string, tags map[string]string) (*models.Transaction, error)
	GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID uint) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID uint, categoryID *uint, amount *int64, description, notes *string, date *time.Time) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID uint) error
}

// BudgetProgress contains derived spending vs limit data for one budget.
type BudgetProgress struct {
	BudgetID     uint      `json:"budget_id"`
	CategoryID   uint      `json:"category_id"`
	CategoryName string    `json:"category_name"`
	Month        time.Time `json:"month"`
	Limit        int64     `json:"limit"`
	Spent        int64     `json:"spent"`
	Remaining    int64     `json:"remaining"`
	Percentage   float64   `json:"percentage"`
	OverLimit    bool      `json:"over_limit"`
}

// BudgetOverview aggregates all of a user's budgets for one month.
type BudgetOverview struct {
	Month          time.Time        `json:"month"`
	TotalLimit     int64            `json:"total_limit"`
	TotalSpent     int64            `json:"total_spent"`
	TotalRemaining int64            `json:"total_remaining"`
	Budgets        []BudgetProgress `json:"budgets"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID, categoryID uint, limit int64, month time.Time, recurrence models.BudgetRecurrence, notify bool) (*models.Budget, error)
	GetUserBudgets(userID uint, page pagination.PageRequest, active *bool, month *time.Time) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(userID, budgetID uint) (*models.Budget, error)
	UpdateBudget(userID, budgetID uint, limit *int64, recurrence *models.BudgetRecurrence, active, notify *bool) (*models.Budget, error)
	DeleteBudget(userID, budgetID uint) error
	GetBudgetProgress(userID, budgetID uint, now time.Time) (*BudgetProgress, error)
	GetOverview(userID uint, now time.Time) (*BudgetOverview, error)
	EffectiveLimit(userID uint, month time.Time, categoryID *uint) (int64, error)
}

// MaterializeResult reports what a scan produced.
type MaterializeResult struct {
	Generated []models.Transaction `json:"generated"`
	Completed int                  `json:"completed"`
}

// ObligationServicer defines the contract for recurring obligations.
type ObligationServicer interface {
	CreateObligation(userID uint, categoryID *uint, description string, amount int64, frequency string, startDate time.Time, endDate *time.Time, dayOfMonth *int, notes string) (*models.Obligation, error)
	GetUserObligations(userID uint, page pagination.PageRequest, status *models.ObligationStatus) (*pagination.PageResponse[models.Obligation], error)
	GetObligationByID(userID, obligationID uint) (*models.Obligation, error)
	UpdateObligation(userID, obligationID uint, categoryID *uint, description *string, amount *int64, endDate *time.Time, dayOfMonth *int, notes *string) (*models.Obligation, error)
	DeleteObligation(userID, obligationID uint) error
	PauseObligation(userID, obligationID uint) (*models.Obligation, error)
	ResumeObligation(userID, obligationID uint, now time.Time) (*models.Obligation, error)
	GenerateNow(userID, obligationID uint, now time.Time) (*models.Transaction, error)
	MarkPaid(userID, obligationID uint, now time.Time) (*models.Transaction, error)
	ScanUser(userID uint, today time.Time) (*MaterializeResult, error)
	ScanAllUsers(ctx context.Context, today time.Time) (int, error)
	UpcomingObligations(userID uint, today time.Time, days int) ([]models.Obligation, error)
}

// MonthPoint is one month's expense and budget totals in a trend series.
type MonthPoint struct {
	Month  time.Time `json:"month"`
	Label  string    `json:"label"`
	Total  int64     `json:"total"`
	Budget int64     `json:"budget"`
}

// CategorySlice is one category's share of spending in a window.
type CategorySlice struct {
	CategoryID   *uint   `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Color        string  `json:"color"`
	Total        int64   `json:"total"`
	Percentage   float64 `json:"percentage"`
}

// MonthComparison compares the current month's spending with the previous one.
type MonthComparison struct {
	Current   int64   `json:"current"`
	Previous  int64   `json:"previous"`
	Delta     int64   `json:"delta"`
	DeltaPct  float64 `json:"delta_pct"`
	Increased bool    `json:"increased"`
}

// AnalyticsServicer derives spending aggregates from the ledger.
type AnalyticsServicer interface {
	SumExpenses(userID uint, from, to time.Time, categoryID *uint) (int64, error)
	MonthlySeries(userID uint, anchor time.Time, months int, categoryID *uint) ([]MonthPoint, error)
	CategoryBreakdown(userID uint, from, to time.Time) ([]CategorySlice, error)
	MonthOverMonth(userID uint, anchor time.Time) (*MonthComparison, error)
}

// AlertLevel indicates alert severity.
type AlertLevel string

const (
	AlertLevelInfo    AlertLevel = "info"
	AlertLevelWarning AlertLevel = "warning"
	AlertLevelDanger  AlertLevel = "danger"
)

// Alert is a budget threshold or anomaly warning.
type Alert struct {
	Level        AlertLevel `json:"level"`
	CategoryID   *uint      `json:"category_id"`
	CategoryName string     `json:"category_name"`
	Message      string     `json:"message"`
	Spent        int64      `json:"spent"`
	Limit        int64      `json:"limit,omitempty"`
}

// Recommendation is an actionable spending suggestion.
type Recommendation struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// InsightServicer produces alerts and recommendations from aggregates.
type InsightServicer interface {
	BudgetAlerts(userID uint, now time.Time) ([]Alert, error)
	Recommendations(userID uint, now time.Time) ([]Recommendation, error)
}

// HealthScore is the composite financial health result.
type HealthScore struct {
	Score           int     `json:"score"`
	SavingsRate     float64 `json:"savings_rate"`
	SavingsPoints   int     `json:"savings_points"`
	AdherencePoints int     `json:"adherence_points"`
	StreakPoints    int     `json:"streak_points"`
	Label           string  `json:"label"`
}

// DashboardSummary is the aggregate view for the dashboard endpoint.
type DashboardSummary struct {
	MonthExpenses int64               `json:"month_expenses"`
	MonthIncome   int64               `json:"month_income"`
	Comparison    *MonthComparison    `json:"comparison"`
	TopCategories []CategorySlice     `json:"top_categories"`
	Upcoming      []models.Obligation `json:"upcoming_obligations"`
	ActiveBudgets int                 `json:"active_budgets"`
	AlertCount    int                 `json:"alert_count"`
}

// HealthServicer computes the financial health score and dashboard summary.
type HealthServicer interface {
	Score(userID uint, now time.Time) (*HealthScore, error)
	Summary(userID uint, now time.Time) (*DashboardSummary, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID uint, action, detail, ipAddress string)
}

// NotificationServicer creates in-app notifications and optionally
// publishes them to a message broker.
type NotificationServicer interface {
	Notify(userID uint, notificationType models.NotificationType, title, message string)
	GetUserNotifications(userID uint, page pagination.PageRequest, unreadOnly bool) (*pagination.PageResponse[models.Notification], error)
	MarkRead(userID, notificationID uint) error
}
