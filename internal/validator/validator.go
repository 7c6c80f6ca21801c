// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"finwell/internal/schedule"
)

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("hex_color", validateHexColor)
		_ = v.RegisterValidation("frequency", validateFrequency)
		_ = v.RegisterValidation("obligation_status", validateObligationStatus)
		_ = v.RegisterValidation("budget_recurrence", validateBudgetRecurrence)
		_ = v.RegisterValidation("income_frequency", validateIncomeFrequency)
		_ = v.RegisterValidation("day_of_month", validateDayOfMonth)
	}
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}

func validateFrequency(fl validator.FieldLevel) bool {
	return schedule.Frequency(fl.Field().String()).IsValid()
}

func validateObligationStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "active", "paused", "completed":
		return true
	}
	return false
}

func validateBudgetRecurrence(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "one-time", "monthly", "yearly":
		return true
	}
	return false
}

func validateIncomeFrequency(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "daily", "weekly", "monthly", "quarterly", "yearly":
		return true
	}
	return false
}

func validateDayOfMonth(fl validator.FieldLevel) bool {
	day := fl.Field().Int()
	return day >= 1 && day <= 31
}
