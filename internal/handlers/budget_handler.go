package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "finwell/internal/errors"
	"finwell/internal/models"
	"finwell/internal/pagination"
	"finwell/internal/schedule"
	"finwell/internal/services"
)

// defaultTrendMonths is the number of points in the trend series when
// the caller does not specify one.
const defaultTrendMonths = 6

// maxTrendMonths bounds the trend query.
const maxTrendMonths = 24

// BudgetHandler handles budget and budget-analytics requests.
type BudgetHandler struct {
	budgetService    services.BudgetServicer
	analyticsService services.AnalyticsServicer
	insightService   services.InsightServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, analyticsService services.AnalyticsServicer, insightService services.InsightServicer) *BudgetHandler {
	return &BudgetHandler{
		budgetService:    budgetService,
		analyticsService: analyticsService,
		insightService:   insightService,
	}
}

// CreateBudgetRequest represents the request payload for creating a budget.
type CreateBudgetRequest struct {
	CategoryID uint      `json:"category_id" binding:"required"`
	Limit      int64     `json:"limit" binding:"required,gt=0"`
	Month      time.Time `json:"month" binding:"required"`
	Recurrence string    `json:"recurrence" binding:"omitempty,budget_recurrence"`
	Notify     *bool     `json:"notify"`
}

// UpdateBudgetRequest represents the request payload for updating a budget.
type UpdateBudgetRequest struct {
	Limit      *int64  `json:"limit" binding:"omitempty,gt=0"`
	Recurrence *string `json:"recurrence" binding:"omitempty,budget_recurrence"`
	Active     *bool   `json:"active"`
	Notify     *bool   `json:"notify"`
}

// CreateBudget handles the creation of a new budget.
// @Summary     Create a budget
// @Description Create a spending limit for a category and month
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} models.Budget "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Duplicate budget"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	recurrence := models.BudgetRecurrenceMonthly
	if req.Recurrence != "" {
		recurrence = models.BudgetRecurrence(req.Recurrence)
	}
	notify := true
	if req.Notify != nil {
		notify = *req.Notify
	}

	budget, err := h.budgetService.CreateBudget(userID, req.CategoryID, req.Limit, req.Month, recurrence, notify)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"budget": budget})
}

// GetBudgets handles listing budgets for the authenticated user.
// @Summary     Get budgets
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       active    query bool   false "Filter by active status"
// @Param       month     query string false "Filter by month (YYYY-MM-DD)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Budget] "Paginated budgets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var active *bool
	if v := c.Query("active"); v != "" {
		switch v {
		case "true":
			b := true
			active = &b
		case "false":
			b := false
			active = &b
		default:
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "active must be 'true' or 'false'"))
			return
		}
	}

	month, err := parseQueryDate(c, "month")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.budgetService.GetUserBudgets(userID, page, active, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBudget handles retrieving a specific budget with its progress.
// @Summary     Get budget by ID
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Success     200 {object} map[string]interface{} "Budget and progress"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudgetByID(userID, budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	progress, err := h.budgetService.GetBudgetProgress(userID, budgetID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget, "progress": progress})
}

// UpdateBudget handles updating a budget.
// @Summary     Update a budget
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                 true "Budget ID"
// @Param       request body UpdateBudgetRequest true "Fields to update"
// @Success     200 {object} models.Budget "Updated budget"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var recurrence *models.BudgetRecurrence
	if req.Recurrence != nil {
		r := models.BudgetRecurrence(*req.Recurrence)
		recurrence = &r
	}

	budget, err := h.budgetService.UpdateBudget(userID, budgetID, req.Limit, recurrence, req.Active, req.Notify)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// DeleteBudget handles deleting a budget.
// @Summary     Delete a budget
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Success     204 "Deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteBudget(userID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetOverview returns progress for all budgets effective this month.
// @Summary     Budget overview
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.BudgetOverview "Overview"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/overview [get]
func (h *BudgetHandler) GetOverview(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	overview, err := h.budgetService.GetOverview(userID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

// GetTrend returns the monthly expense series.
// @Summary     Spending trend
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       months query int false "Number of months (default 6, max 24)"
// @Param       category_id query int false "Restrict the series to one category"
// @Success     200 {object} map[string]interface{} "Monthly series"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/trend [get]
func (h *BudgetHandler) GetTrend(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	months := defaultTrendMonths
	if v := c.Query("months"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > maxTrendMonths {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "months must be between 1 and 24"))
			return
		}
		months = parsed
	}

	var categoryID *uint
	if v := c.Query("category_id"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "category_id must be a positive integer"))
			return
		}
		id := uint(parsed)
		categoryID = &id
	}

	series, err := h.analyticsService.MonthlySeries(userID, time.Now(), months, categoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trend": series})
}

// GetBreakdown returns per-category spending for the current month.
// @Summary     Category breakdown
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Month to break down (YYYY-MM-DD, default current)"
// @Success     200 {object} map[string]interface{} "Category slices"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/breakdown [get]
func (h *BudgetHandler) GetBreakdown(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	anchor := time.Now()
	if month, err := parseQueryDate(c, "month"); err != nil {
		respondWithError(c, err)
		return
	} else if month != nil {
		anchor = *month
	}

	window := schedule.MonthWindow(anchor)
	breakdown, err := h.analyticsService.CategoryBreakdown(userID, window.Start, window.End)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"month": window.Start, "breakdown": breakdown})
}

// GetAlerts returns budget threshold and anomaly alerts.
// @Summary     Budget alerts
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]interface{} "Alerts"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/alerts [get]
func (h *BudgetHandler) GetAlerts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	alerts, err := h.insightService.BudgetAlerts(userID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// GetRecommendations returns spending recommendations.
// @Summary     Spending recommendations
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]interface{} "Recommendations"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/recommendations [get]
func (h *BudgetHandler) GetRecommendations(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	recommendations, err := h.insightService.Recommendations(userID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendations": recommendations})
}
