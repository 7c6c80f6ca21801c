package models

// IncomeFrequency is how often an income source pays out.
type IncomeFrequency string

const (
	IncomeFrequencyDaily     IncomeFrequency = "daily"
	IncomeFrequencyWeekly    IncomeFrequency = "weekly"
	IncomeFrequencyMonthly   IncomeFrequency = "monthly"
	IncomeFrequencyQuarterly IncomeFrequency = "quarterly"
	IncomeFrequencyYearly    IncomeFrequency = "yearly"
)

// IncomeSource is a named income stream. Amounts are stored in cents.
type IncomeSource struct {
	Base
	UserID    uint            `gorm:"index;not null" json:"user_id"`
	Name      string          `gorm:"not null" json:"name"`
	Amount    int64           `gorm:"not null" json:"amount"`
	Frequency IncomeFrequency `gorm:"not null;default:monthly" json:"frequency"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

// MonthlyEquivalent converts the source amount to an approximate monthly
// figure in cents.
func (s *IncomeSource) MonthlyEquivalent() int64 {
	switch s.Frequency {
	case IncomeFrequencyDaily:
		return s.Amount * 30
	case IncomeFrequencyWeekly:
		// 52 weeks / 12 months
		return s.Amount * 433 / 100
	case IncomeFrequencyQuarterly:
		return s.Amount / 3
	case IncomeFrequencyYearly:
		return s.Amount / 12
	default:
		return s.Amount
	}
}
