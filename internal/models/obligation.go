package models

import (
	"time"

	"finwell/internal/schedule"
)

// ObligationStatus is the lifecycle state of a recurring obligation.
type ObligationStatus string

const (
	ObligationStatusActive    ObligationStatus = "active"
	ObligationStatusPaused    ObligationStatus = "paused"
	ObligationStatusCompleted ObligationStatus = "completed"
)

// Obligation is a recurring commitment (rent, subscription, loan payment)
// that is materialized into ledger transactions as its due dates arrive.
// Amounts are stored in cents.
type Obligation struct {
	Base
	UserID      uint               `gorm:"index;not null" json:"user_id"`
	CategoryID  *uint              `gorm:"index" json:"category_id"`
	Description string             `gorm:"not null" json:"description"`
	Amount      int64              `gorm:"not null" json:"amount"`
	Frequency   schedule.Frequency `gorm:"not null" json:"frequency"`
	Status      ObligationStatus   `gorm:"not null;default:active;index" json:"status"`

	StartDate time.Time  `gorm:"not null" json:"start_date"`
	EndDate   *time.Time `json:"end_date"`

	// NextDate is the next due date; the scheduler's cursor.
	NextDate time.Time `gorm:"index;not null" json:"next_date"`

	// DayOfMonth pins month-based frequencies to a preferred day (1-31,
	// clamped to 28 when advancing).
	DayOfMonth *int `json:"day_of_month"`

	LastGenerated *time.Time `json:"last_generated"`
	Notes         string     `json:"notes"`

	User     *User     `gorm:"foreignKey:UserID" json:"-"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// IsDue reports whether the obligation should be materialized as of today.
// An obligation is due when it is active, its next date has arrived, and
// its end date (if any) has not passed.
func (o *Obligation) IsDue(today time.Time) bool {
	if o.Status != ObligationStatusActive {
		return false
	}
	if o.NextDate.After(today) {
		return false
	}
	if o.EndDate != nil && o.EndDate.Before(today) {
		return false
	}
	return true
}

// AdvanceSchedule moves NextDate to the following due date and marks the
// obligation completed once the schedule passes its end date.
func (o *Obligation) AdvanceSchedule() {
	preferred := 0
	if o.DayOfMonth != nil {
		preferred = *o.DayOfMonth
	}
	o.NextDate = schedule.Advance(o.NextDate, o.Frequency, preferred)
	if o.EndDate != nil && o.NextDate.After(*o.EndDate) {
		o.Status = ObligationStatusCompleted
	}
}
