package models

import "time"

// BudgetRecurrence controls whether a budget rolls forward to new periods.
type BudgetRecurrence string

const (
	BudgetRecurrenceOneTime BudgetRecurrence = "one-time"
	BudgetRecurrenceMonthly BudgetRecurrence = "monthly"
	BudgetRecurrenceYearly  BudgetRecurrence = "yearly"
)

// Budget is a per-category spending limit for a calendar month. Month is
// always normalized to the first day of the month. Spend against a budget
// is never stored; it is derived from transactions at read time.
type Budget struct {
	Base
	UserID      uint             `gorm:"index;not null" json:"user_id"`
	CategoryID  uint             `gorm:"index;not null" json:"category_id"`
	LimitAmount int64            `gorm:"not null" json:"limit_amount"`
	Month       time.Time        `gorm:"index;not null" json:"month"`
	Recurrence  BudgetRecurrence `gorm:"not null;default:monthly" json:"recurrence"`
	Active      bool             `gorm:"default:true" json:"active"`
	Notify      bool             `gorm:"default:true" json:"notify"`

	User     *User     `gorm:"foreignKey:UserID" json:"-"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
