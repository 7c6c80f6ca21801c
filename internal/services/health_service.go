package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "finwell/internal/errors"
	"finwell/internal/models"
	"finwell/internal/schedule"
)

// upcomingWindowDays is how far ahead the dashboard looks for obligations.
const upcomingWindowDays = 14

// healthService computes the composite financial health score and the
// dashboard summary. The score starts from a neutral base of 50 and
// adds points for savings rate, budget adherence, and streaks, clamped
// to [0, 100].
type healthService struct {
	db          *gorm.DB
	analytics   AnalyticsServicer
	budgets     BudgetServicer
	obligations ObligationServicer
	insights    InsightServicer
}

// NewHealthService creates a new HealthServicer.
func NewHealthService(db *gorm.DB, analytics AnalyticsServicer, budgets BudgetServicer, obligations ObligationServicer, insights InsightServicer) HealthServicer {
	return &healthService{
		db:          db,
		analytics:   analytics,
		budgets:     budgets,
		obligations: obligations,
		insights:    insights,
	}
}

// Score computes the user's financial health for the current month.
func (s *healthService) Score(userID uint, now time.Time) (*HealthScore, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := &HealthScore{}

	// Savings rate: up to 30 points, 1.5 per percentage point of income
	// held as savings.
	if user.MonthlyIncome > 0 && user.SavingsAmount > 0 {
		result.SavingsRate = float64(user.SavingsAmount) / float64(user.MonthlyIncome) * 100
		points := int(result.SavingsRate * 1.5)
		if points > 30 {
			points = 30
		}
		result.SavingsPoints = points
	}

	// Budget adherence: 25 points when within limits, reduced by a
	// quarter point per percentage point over, none without budgets.
	overview, err := s.budgets.GetOverview(userID, now)
	if err != nil {
		return nil, err
	}
	if len(overview.Budgets) > 0 {
		points := 25
		if overview.TotalLimit > 0 && overview.TotalSpent > overview.TotalLimit {
			overPct := (overview.TotalSpent - overview.TotalLimit) * 100 / overview.TotalLimit
			points = 25 - int(overPct)/4
			if points < 0 {
				points = 0
			}
		}
		result.AdherencePoints = points
	}

	// Streaks: one point per consecutive month, capped at 25.
	streak := user.BillPaymentStreak + user.SavingsStreak
	if streak > 25 {
		streak = 25
	}
	result.StreakPoints = streak

	score := 50 + result.SavingsPoints + result.AdherencePoints + result.StreakPoints
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	result.Score = score
	result.Label = scoreLabel(score)

	return result, nil
}

func scoreLabel(score int) string {
	switch {
	case score >= 80:
		return "excellent"
	case score >= 60:
		return "good"
	case score >= 40:
		return "fair"
	default:
		return "needs attention"
	}
}

// Summary assembles the dashboard view for the current month.
func (s *healthService) Summary(userID uint, now time.Time) (*DashboardSummary, error) {
	window := schedule.MonthWindow(now)

	expenses, err := s.analytics.SumExpenses(userID, window.Start, window.End, nil)
	if err != nil {
		return nil, err
	}

	var income int64
	err = s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND type = ? AND date >= ? AND date < ?",
			userID, models.TransactionTypeIncome, window.Start, window.End).
		Scan(&income).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	comparison, err := s.analytics.MonthOverMonth(userID, now)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.analytics.CategoryBreakdown(userID, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	if len(breakdown) > 5 {
		breakdown = breakdown[:5]
	}

	upcoming, err := s.obligations.UpcomingObligations(userID, now, upcomingWindowDays)
	if err != nil {
		return nil, err
	}

	var activeBudgets int64
	err = s.db.Model(&models.Budget{}).
		Where("user_id = ? AND active = ?", userID, true).
		Count(&activeBudgets).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	alerts, err := s.insights.BudgetAlerts(userID, now)
	if err != nil {
		return nil, err
	}

	return &DashboardSummary{
		MonthExpenses: expenses,
		MonthIncome:   income,
		Comparison:    comparison,
		TopCategories: breakdown,
		Upcoming:      upcoming,
		ActiveBudgets: int(activeBudgets),
		AlertCount:    len(alerts),
	}, nil
}
