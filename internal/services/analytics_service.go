package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "finwell/internal/errors"
	"finwell/internal/models"
	"finwell/internal/schedule"
)

// analyticsService derives spending aggregates from the ledger. Nothing
// here is ever cached or stored; every figure is computed from
// transactions at call time.
type analyticsService struct {
	db      *gorm.DB
	budgets BudgetServicer
}

// NewAnalyticsService creates a new AnalyticsServicer.
func NewAnalyticsService(db *gorm.DB, budgets BudgetServicer) AnalyticsServicer {
	return &analyticsService{db: db, budgets: budgets}
}

// SumExpenses totals expense transactions in [from, to), optionally
// restricted to one category.
func (s *analyticsService) SumExpenses(userID uint, from, to time.Time, categoryID *uint) (int64, error) {
	query := s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND type = ? AND date >= ? AND date < ?",
			userID, models.TransactionTypeExpense, from, to)
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}

	var total int64
	if err := query.Scan(&total).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return total, nil
}

// MonthlySeries returns expense and budget totals for the last months
// calendar months including the anchor's, oldest first, optionally
// restricted to one category. The series always has exactly months
// points; months with no spending contribute zero.
func (s *analyticsService) MonthlySeries(userID uint, anchor time.Time, months int, categoryID *uint) ([]MonthPoint, error) {
	points := make([]MonthPoint, 0, months)
	for i := months - 1; i >= 0; i-- {
		window := schedule.MonthWindowsBack(anchor, i)
		total, err := s.SumExpenses(userID, window.Start, window.End, categoryID)
		if err != nil {
			return nil, err
		}
		budget, err := s.budgets.EffectiveLimit(userID, window.Start, categoryID)
		if err != nil {
			return nil, err
		}
		points = append(points, MonthPoint{
			Month:  window.Start,
			Label:  window.Label(),
			Total:  total,
			Budget: budget,
		})
	}
	return points, nil
}

// CategoryBreakdown groups expense totals by category for [from, to),
// largest first, with each category's share of the overall total.
// Transactions without a category are reported as "Uncategorized".
func (s *analyticsService) CategoryBreakdown(userID uint, from, to time.Time) ([]CategorySlice, error) {
	type row struct {
		CategoryID *uint
		Name       *string
		Color      *string
		Total      int64
	}

	var rows []row
	err := s.db.Model(&models.Transaction{}).
		Select("transactions.category_id, categories.name, categories.color, COALESCE(SUM(transactions.amount), 0) AS total").
		Joins("LEFT JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.user_id = ? AND transactions.type = ? AND transactions.date >= ? AND transactions.date < ?",
			userID, models.TransactionTypeExpense, from, to).
		Group("transactions.category_id, categories.name, categories.color").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var grand int64
	for _, r := range rows {
		grand += r.Total
	}

	slices := make([]CategorySlice, 0, len(rows))
	for _, r := range rows {
		slice := CategorySlice{
			CategoryID:   r.CategoryID,
			CategoryName: "Uncategorized",
			Color:        "#999999",
			Total:        r.Total,
		}
		if r.Name != nil {
			slice.CategoryName = *r.Name
		}
		if r.Color != nil {
			slice.Color = *r.Color
		}
		if grand > 0 {
			slice.Percentage = float64(r.Total) / float64(grand) * 100
		}
		slices = append(slices, slice)
	}
	return slices, nil
}

// MonthOverMonth compares the anchor month's spending to the previous
// month's. When the previous month had no spending the percentage delta
// is reported as zero rather than infinite.
func (s *analyticsService) MonthOverMonth(userID uint, anchor time.Time) (*MonthComparison, error) {
	currentWindow := schedule.MonthWindow(anchor)
	previousWindow := schedule.MonthWindowsBack(anchor, 1)

	current, err := s.SumExpenses(userID, currentWindow.Start, currentWindow.End, nil)
	if err != nil {
		return nil, err
	}
	previous, err := s.SumExpenses(userID, previousWindow.Start, previousWindow.End, nil)
	if err != nil {
		return nil, err
	}

	comparison := &MonthComparison{
		Current:   current,
		Previous:  previous,
		Delta:     current - previous,
		Increased: current > previous,
	}
	if previous > 0 {
		comparison.DeltaPct = float64(current-previous) / float64(previous) * 100
	}
	return comparison, nil
}
