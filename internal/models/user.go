package models

import "time"

// User represents an account holder. Monetary amounts are stored in cents.
type User struct {
	Base
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`

	// Financial profile used by the health scorer.
	MonthlyIncome int64 `gorm:"default:0" json:"monthly_income"`
	SavingsAmount int64 `gorm:"default:0" json:"savings_amount"`
	SavingsTarget int64 `gorm:"default:0" json:"savings_target"`

	// Streaks in consecutive months.
	BillPaymentStreak int `gorm:"default:0" json:"bill_payment_streak"`
	SavingsStreak     int `gorm:"default:0" json:"savings_streak"`

	// Account lockout after repeated failed logins.
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time `json:"-"`

	// Hash of the currently valid refresh token, rotated on refresh.
	RefreshTokenHash string `json:"-"`

	Categories    []Category     `gorm:"foreignKey:UserID" json:"-"`
	Transactions  []Transaction  `gorm:"foreignKey:UserID" json:"-"`
	Obligations   []Obligation   `gorm:"foreignKey:UserID" json:"-"`
	Budgets       []Budget       `gorm:"foreignKey:UserID" json:"-"`
	IncomeSources []IncomeSource `gorm:"foreignKey:UserID" json:"-"`
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Email
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// IsLocked reports whether the account is currently locked out.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}
