package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"finwell/internal/models"
	"finwell/internal/schedule"
)

var fixtureCounter atomic.Int64

// nextID returns a unique suffix for fixture names and emails.
func nextID() int64 {
	return fixtureCounter.Add(1)
}

// CreateTestUser inserts a user with a unique email and the password "password123".
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:        fmt.Sprintf("user%d@example.com", nextID()),
		PasswordHash: string(hash),
		FirstName:    "Test",
		LastName:     "User",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory inserts a category for the given user.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID uint) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   fmt.Sprintf("Category %d", nextID()),
		Color:  "#667eea",
		Icon:   "fa-tag",
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction inserts an expense transaction.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID uint, categoryID *uint, amount int64, date time.Time) *models.Transaction {
	t.Helper()

	txn := &models.Transaction{
		UserID:      userID,
		CategoryID:  categoryID,
		Type:        models.TransactionTypeExpense,
		Amount:      amount,
		Description: fmt.Sprintf("Transaction %d", nextID()),
		Date:        date,
		Tags:        "{}",
	}
	if err := db.Create(txn).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return txn
}

// CreateTestObligation inserts an active obligation due on nextDate.
func CreateTestObligation(t *testing.T, db *gorm.DB, userID uint, frequency schedule.Frequency, amount int64, nextDate time.Time) *models.Obligation {
	t.Helper()

	obligation := &models.Obligation{
		UserID:      userID,
		Description: fmt.Sprintf("Obligation %d", nextID()),
		Amount:      amount,
		Frequency:   frequency,
		Status:      models.ObligationStatusActive,
		StartDate:   nextDate,
		NextDate:    nextDate,
	}
	if err := db.Create(obligation).Error; err != nil {
		t.Fatalf("failed to create test obligation: %v", err)
	}
	return obligation
}

// CreateTestBudget inserts an active monthly budget for the given category and month.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, categoryID uint, limit int64, month time.Time) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:      userID,
		CategoryID:  categoryID,
		LimitAmount: limit,
		Month:       schedule.MonthStart(month),
		Recurrence:  models.BudgetRecurrenceMonthly,
		Active:      true,
		Notify:      true,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}
