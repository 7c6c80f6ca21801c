package models

import (
	"encoding/json"
	"time"
)

// TransactionType distinguishes money in from money out.
type TransactionType string

const (
	TransactionTypeExpense TransactionType = "expense"
	TransactionTypeIncome  TransactionType = "income"
)

// Transaction is a single ledger entry. Amounts are stored in cents.
// Recurring transactions carry a back-reference to the obligation that
// produced them; the unique index on (obligation_id, date) guarantees an
// obligation materializes at most once per due date.
type Transaction struct {
	Base
	UserID      uint            `gorm:"index;not null" json:"user_id"`
	CategoryID  *uint           `gorm:"index" json:"category_id"`
	Type        TransactionType `gorm:"not null;default:expense" json:"type"`
	Amount      int64           `gorm:"not null" json:"amount"`
	Description string          `gorm:"not null" json:"description"`
	Date        time.Time       `gorm:"index;not null;uniqueIndex:idx_obligation_date" json:"date"`
	Notes       string          `json:"notes"`

	IsRecurring  bool  `gorm:"default:false" json:"is_recurring"`
	ObligationID *uint `gorm:"uniqueIndex:idx_obligation_date" json:"obligation_id"`

	// Tags is a JSON object mapping tag name to display color.
	Tags string `gorm:"default:'{}'" json:"-"`

	User       *User       `gorm:"foreignKey:UserID" json:"-"`
	Category   *Category   `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Obligation *Obligation `gorm:"foreignKey:ObligationID" json:"-"`
}

// TagMap decodes the stored tags into a name-to-color map.
func (t *Transaction) TagMap() map[string]string {
	tags := map[string]string{}
	if t.Tags == "" {
		return tags
	}
	_ = json.Unmarshal([]byte(t.Tags), &tags)
	return tags
}

// SetTags encodes and stores the given tag map.
func (t *Transaction) SetTags(tags map[string]string) error {
	if tags == nil {
		tags = map[string]string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	t.Tags = string(raw)
	return nil
}
