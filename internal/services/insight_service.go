package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "finwell/internal/errors"
	"finwell/internal/models"
	"finwell/internal/schedule"
)

// trailingMonths is how many prior months feed the trailing averages
// used for anomaly detection and budget-sizing recommendations.
const trailingMonths = 3

// maxRecommendations caps how many suggestions one call returns.
const maxRecommendations = 3

// insightService turns budget progress and spending aggregates into
// alerts and recommendations. All threshold math is integer arithmetic
// on cents to avoid float comparison edge cases.
type insightService struct {
	db        *gorm.DB
	budgets   BudgetServicer
	analytics AnalyticsServicer
}

// NewInsightService creates a new InsightServicer.
func NewInsightService(db *gorm.DB, budgets BudgetServicer, analytics AnalyticsServicer) InsightServicer {
	return &insightService{db: db, budgets: budgets, analytics: analytics}
}

// BudgetAlerts returns threshold and anomaly alerts for the current
// month. A budget past its limit is danger; one past 90% of its limit
// is a warning. A category whose spend exceeds 1.5x its trailing
// average is flagged as unusual at info level.
func (s *insightService) BudgetAlerts(userID uint, now time.Time) ([]Alert, error) {
	overview, err := s.budgets.GetOverview(userID, now)
	if err != nil {
		return nil, err
	}

	alerts := []Alert{}
	for _, progress := range overview.Budgets {
		categoryID := progress.CategoryID
		switch {
		case progress.Spent > progress.Limit:
			over := progress.Spent - progress.Limit
			alerts = append(alerts, Alert{
				Level:        AlertLevelDanger,
				CategoryID:   &categoryID,
				CategoryName: progress.CategoryName,
				Message: fmt.Sprintf("You have exceeded your %s budget by %s (%.0f%% used).",
					progress.CategoryName, formatCents(over), progress.Percentage),
				Spent: progress.Spent,
				Limit: progress.Limit,
			})
		case progress.Spent*10 > progress.Limit*9:
			alerts = append(alerts, Alert{
				Level:        AlertLevelWarning,
				CategoryID:   &categoryID,
				CategoryName: progress.CategoryName,
				Message: fmt.Sprintf("You have used %.0f%% of your %s budget (%s of %s).",
					progress.Percentage, progress.CategoryName, formatCents(progress.Spent), formatCents(progress.Limit)),
				Spent: progress.Spent,
				Limit: progress.Limit,
			})
		}
	}

	anomalies, err := s.anomalyAlerts(userID, now)
	if err != nil {
		return nil, err
	}
	alerts = append(alerts, anomalies...)

	return alerts, nil
}

// anomalyAlerts flags categories whose current-month spending exceeds
// 1.5x their average over the prior months with any spending. The check
// is 2*n*current > 3*sum, which is the same comparison without
// division. Categories with no history are skipped.
func (s *insightService) anomalyAlerts(userID uint, now time.Time) ([]Alert, error) {
	currentWindow := schedule.MonthWindow(now)
	current, err := s.analytics.CategoryBreakdown(userID, currentWindow.Start, currentWindow.End)
	if err != nil {
		return nil, err
	}

	alerts := []Alert{}
	for _, slice := range current {
		if slice.CategoryID == nil || slice.Total == 0 {
			continue
		}

		sum, n, err := s.trailingSpend(userID, now, *slice.CategoryID)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			continue
		}

		if 2*n*slice.Total > 3*sum {
			average := sum / n
			alerts = append(alerts, Alert{
				Level:        AlertLevelInfo,
				CategoryID:   slice.CategoryID,
				CategoryName: slice.CategoryName,
				Message: fmt.Sprintf("%s spending is unusually high this month (%s vs %s average).",
					slice.CategoryName, formatCents(slice.Total), formatCents(average)),
				Spent: slice.Total,
			})
		}
	}
	return alerts, nil
}

// trailingSpend sums a category's expenses over the prior months,
// counting only months that had any spending.
func (s *insightService) trailingSpend(userID uint, now time.Time, categoryID uint) (sum, n int64, err error) {
	for i := 1; i <= trailingMonths; i++ {
		window := schedule.MonthWindowsBack(now, i)
		total, err := s.analytics.SumExpenses(userID, window.Start, window.End, &categoryID)
		if err != nil {
			return 0, 0, err
		}
		if total > 0 {
			sum += total
			n++
		}
	}
	return sum, n, nil
}

// Recommendations returns up to three budget-adjustment suggestions in
// the order found: unbudgeted spending first, then budgets whose
// trailing average utilization runs over 120% or under 70%, then a
// savings-rate nudge when room remains.
func (s *insightService) Recommendations(userID uint, now time.Time) ([]Recommendation, error) {
	recommendations := []Recommendation{}

	overview, err := s.budgets.GetOverview(userID, now)
	if err != nil {
		return nil, err
	}

	budgeted := make(map[uint]bool, len(overview.Budgets))
	for _, progress := range overview.Budgets {
		budgeted[progress.CategoryID] = true
	}

	// Spend this month in a category with no budget: suggest one sized
	// to the current spend.
	window := schedule.MonthWindow(now)
	breakdown, err := s.analytics.CategoryBreakdown(userID, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	for _, slice := range breakdown {
		if len(recommendations) >= maxRecommendations {
			return recommendations, nil
		}
		if slice.CategoryID == nil || slice.Total == 0 || budgeted[*slice.CategoryID] {
			continue
		}
		recommendations = append(recommendations, Recommendation{
			Title: fmt.Sprintf("Create a budget for %s", slice.CategoryName),
			Message: fmt.Sprintf("You spent %s on %s this month without a budget. Start with a %s limit.",
				formatCents(slice.Total), slice.CategoryName, formatCents(slice.Total)),
		})
	}

	// Budgets whose trailing average runs far over or under the limit:
	// suggest resizing toward the average. avg > 1.2*limit is
	// 5*sum > 6*n*limit; avg < 0.7*limit is 10*sum < 7*n*limit.
	for _, progress := range overview.Budgets {
		if len(recommendations) >= maxRecommendations {
			return recommendations, nil
		}
		sum, n, err := s.trailingSpend(userID, now, progress.CategoryID)
		if err != nil {
			return nil, err
		}
		if n == 0 || progress.Limit == 0 {
			continue
		}
		average := sum / n
		switch {
		case 5*sum > 6*n*progress.Limit:
			recommendations = append(recommendations, Recommendation{
				Title: fmt.Sprintf("Raise your %s budget", progress.CategoryName),
				Message: fmt.Sprintf("You average %s a month on %s against a %s limit. Raising the limit to %s would match your actual spending.",
					formatCents(average), progress.CategoryName, formatCents(progress.Limit), formatCents(average)),
			})
		case 10*sum < 7*n*progress.Limit:
			recommendations = append(recommendations, Recommendation{
				Title: fmt.Sprintf("Lower your %s budget", progress.CategoryName),
				Message: fmt.Sprintf("You average %s a month on %s against a %s limit. Lowering the limit to %s frees up budget elsewhere.",
					formatCents(average), progress.CategoryName, formatCents(progress.Limit), formatCents(average)),
			})
		}
	}

	if len(recommendations) < maxRecommendations && len(overview.Budgets) == 0 && len(breakdown) == 0 {
		recommendations = append(recommendations, Recommendation{
			Title:   "Set up your first budget",
			Message: "Budgets help you catch overspending early. Pick your biggest expense category and set a monthly limit.",
		})
	}

	if len(recommendations) < maxRecommendations {
		var user models.User
		if err := s.db.First(&user, userID).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if user.MonthlyIncome > 0 {
			spent, err := s.analytics.SumExpenses(userID, window.Start, window.End, nil)
			if err != nil {
				return nil, err
			}
			saved := user.MonthlyIncome - spent
			// Flag a savings rate under 20% of income.
			if saved*5 < user.MonthlyIncome {
				recommendations = append(recommendations, Recommendation{
					Title: "Grow your savings rate",
					Message: fmt.Sprintf("You have saved %s of %s income this month. Aim to keep at least 20%% aside.",
						formatCents(maxInt64(saved, 0)), formatCents(user.MonthlyIncome)),
				})
			}
		}
	}

	return recommendations, nil
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
