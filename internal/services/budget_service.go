package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "finwell/internal/errors"
	"finwell/internal/models"
	"finwell/internal/pagination"
	"finwell/internal/schedule"
)

// budgetService handles budget-related business logic. Spend against a
// budget is always derived from the ledger at read time, never stored.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// CreateBudget creates a budget for a category and month. At most one
// active budget may exist per (category, month).
func (s *budgetService) CreateBudget(userID, categoryID uint, limit int64, month time.Time, recurrence models.BudgetRecurrence, notify bool) (*models.Budget, error) {
	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	monthStart := schedule.MonthStart(month)

	var count int64
	err := s.db.Model(&models.Budget{}).
		Where("user_id = ? AND category_id = ? AND month = ? AND active = ?", userID, categoryID, monthStart, true).
		Count(&count).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateBudget
	}

	budget := &models.Budget{
		UserID:      userID,
		CategoryID:  categoryID,
		LimitAmount: limit,
		Month:       monthStart,
		Recurrence:  recurrence,
		Active:      true,
		Notify:      notify,
	}

	if err := s.db.Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budget, nil
}

// GetUserBudgets returns a paginated list of budgets with optional filters.
func (s *budgetService) GetUserBudgets(userID uint, page pagination.PageRequest, active *bool, month *time.Time) (*pagination.PageResponse[models.Budget], error) {
	page.Defaults()

	base := s.db.Model(&models.Budget{}).Where("user_id = ?", userID)
	if active != nil {
		base = base.Where("active = ?", *active)
	}
	if month != nil {
		base = base.Where("month = ?", schedule.MonthStart(*month))
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Preload("Category").Order("month DESC, id").Scopes(pagination.Paginate(page)).Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetService) GetBudgetByID(userID, budgetID uint) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Preload("Category").Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget updates an existing budget's fields.
func (s *budgetService) UpdateBudget(userID, budgetID uint, limit *int64, recurrence *models.BudgetRecurrence, active, notify *bool) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if limit != nil {
		updates["limit_amount"] = *limit
	}
	if recurrence != nil {
		updates["recurrence"] = *recurrence
	}
	if active != nil {
		updates["active"] = *active
	}
	if notify != nil {
		updates["notify"] = *notify
	}

	if len(updates) > 0 {
		if err := s.db.Model(budget).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return budget, nil
}

// DeleteBudget soft-deletes a budget.
func (s *budgetService) DeleteBudget(userID, budgetID uint) error {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetBudgetProgress derives spending vs limit for one budget's month.
func (s *budgetService) GetBudgetProgress(userID, budgetID uint, now time.Time) (*BudgetProgress, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}
	return s.progressFor(budget)
}

// GetOverview derives progress for every budget effective in now's month.
// Recurring budgets from earlier months are rolled into the current month
// when no month-specific budget shadows them for the same category.
func (s *budgetService) GetOverview(userID uint, now time.Time) (*BudgetOverview, error) {
	monthStart := schedule.MonthStart(now)

	budgets, err := s.effectiveBudgets(userID, monthStart)
	if err != nil {
		return nil, err
	}

	overview := &BudgetOverview{
		Month:   monthStart,
		Budgets: make([]BudgetProgress, 0, len(budgets)),
	}
	for i := range budgets {
		progress, err := s.progressForMonth(&budgets[i], monthStart)
		if err != nil {
			return nil, err
		}
		overview.TotalLimit += progress.Limit
		overview.TotalSpent += progress.Spent
		overview.Budgets = append(overview.Budgets, *progress)
	}
	overview.TotalRemaining = overview.TotalLimit - overview.TotalSpent

	return overview, nil
}

// EffectiveLimit sums the limits of the budgets effective in the given
// month, optionally restricted to one category. Zero when no budget
// applies.
func (s *budgetService) EffectiveLimit(userID uint, month time.Time, categoryID *uint) (int64, error) {
	budgets, err := s.effectiveBudgets(userID, schedule.MonthStart(month))
	if err != nil {
		return 0, err
	}

	var total int64
	for i := range budgets {
		if categoryID != nil && budgets[i].CategoryID != *categoryID {
			continue
		}
		total += budgets[i].LimitAmount
	}
	return total, nil
}

// effectiveBudgets returns the active budgets that apply to the given
// month: those set for the month itself, plus recurring budgets created
// in earlier months whose category has no budget this month.
func (s *budgetService) effectiveBudgets(userID uint, monthStart time.Time) ([]models.Budget, error) {
	var current []models.Budget
	err := s.db.Preload("Category").
		Where("user_id = ? AND active = ? AND month = ?", userID, true, monthStart).
		Find(&current).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	covered := make(map[uint]bool, len(current))
	for i := range current {
		covered[current[i].CategoryID] = true
	}

	var recurring []models.Budget
	err = s.db.Preload("Category").
		Where("user_id = ? AND active = ? AND month < ? AND recurrence <> ?",
			userID, true, monthStart, models.BudgetRecurrenceOneTime).
		Order("month DESC").
		Find(&recurring).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i := range recurring {
		b := recurring[i]
		if covered[b.CategoryID] {
			continue
		}
		// Yearly budgets only roll over on the anniversary month.
		if b.Recurrence == models.BudgetRecurrenceYearly && b.Month.Month() != monthStart.Month() {
			continue
		}
		covered[b.CategoryID] = true
		current = append(current, b)
	}

	return current, nil
}

func (s *budgetService) progressFor(budget *models.Budget) (*BudgetProgress, error) {
	return s.progressForMonth(budget, budget.Month)
}

func (s *budgetService) progressForMonth(budget *models.Budget, monthStart time.Time) (*BudgetProgress, error) {
	window := schedule.MonthWindow(monthStart)

	var spent int64
	err := s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND category_id = ? AND type = ? AND date >= ? AND date < ?",
			budget.UserID, budget.CategoryID, models.TransactionTypeExpense, window.Start, window.End).
		Scan(&spent).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var percentage float64
	if budget.LimitAmount > 0 {
		percentage = float64(spent) / float64(budget.LimitAmount) * 100
	}

	categoryName := ""
	if budget.Category != nil {
		categoryName = budget.Category.Name
	}

	return &BudgetProgress{
		BudgetID:     budget.ID,
		CategoryID:   budget.CategoryID,
		CategoryName: categoryName,
		Month:        monthStart,
		Limit:        budget.LimitAmount,
		Spent:        spent,
		Remaining:    budget.LimitAmount - spent,
		Percentage:   percentage,
		OverLimit:    spent > budget.LimitAmount,
	}, nil
}
