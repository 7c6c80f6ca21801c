package services

import (
	"testing"
	"time"

	"finwell/internal/models"
	"finwell/internal/pagination"
	"finwell/internal/testutil"
)

func TestTransactionService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	service := NewTransactionService(db)
	user := testutil.CreateTestUser(t, db)
	category := testutil.CreateTestCategory(t, db, user.ID)
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("creates with tags", func(t *testing.T) {
		txn, err := service.CreateTransaction(user.ID, &category.ID, models.TransactionTypeExpense,
			4500, "Lunch", date, "", map[string]string{"work": "#00ff00"})
		testutil.AssertNoError(t, err)
		if txn.TagMap()["work"] != "#00ff00" {
			t.Errorf("expected tag to round-trip, got %v", txn.TagMap())
		}
	})

	t.Run("rejects another user's category", func(t *testing.T) {
		other := testutil.CreateTestUser(t, db)
		otherCategory := testutil.CreateTestCategory(t, db, other.ID)

		_, err := service.CreateTransaction(user.ID, &otherCategory.ID, models.TransactionTypeExpense,
			1000, "Sneaky", date, "", nil)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("allows uncategorized entries", func(t *testing.T) {
		txn, err := service.CreateTransaction(user.ID, nil, models.TransactionTypeIncome,
			250000, "Salary", date, "", nil)
		testutil.AssertNoError(t, err)
		if txn.CategoryID != nil {
			t.Errorf("expected nil category, got %v", txn.CategoryID)
		}
	})
}

func TestTransactionService_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	service := NewTransactionService(db)
	user := testutil.CreateTestUser(t, db)
	groceries := testutil.CreateTestCategory(t, db, user.ID)
	transport := testutil.CreateTestCategory(t, db, user.ID)

	jan := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	testutil.CreateTestTransaction(t, db, user.ID, &groceries.ID, 12000, jan)
	testutil.CreateTestTransaction(t, db, user.ID, &groceries.ID, 30000, feb)
	testutil.CreateTestTransaction(t, db, user.ID, &transport.ID, 5000, mar)

	list := func(filter TransactionFilter) *pagination.PageResponse[models.Transaction] {
		t.Helper()
		result, err := service.GetUserTransactions(user.ID, pagination.PageRequest{}, filter)
		testutil.AssertNoError(t, err)
		return result
	}

	t.Run("no filter returns newest first", func(t *testing.T) {
		result := list(TransactionFilter{})
		if result.TotalItems != 3 {
			t.Fatalf("expected 3 transactions, got %d", result.TotalItems)
		}
		if !result.Data[0].Date.Equal(mar) {
			t.Errorf("expected newest first, got %v", result.Data[0].Date)
		}
	})

	t.Run("date range", func(t *testing.T) {
		result := list(TransactionFilter{FromDate: &feb, ToDate: &feb})
		if result.TotalItems != 1 || result.Data[0].Amount != 30000 {
			t.Fatalf("expected only the February entry, got %d items", result.TotalItems)
		}
	})

	t.Run("category filter", func(t *testing.T) {
		result := list(TransactionFilter{CategoryID: &transport.ID})
		if result.TotalItems != 1 || result.Data[0].Amount != 5000 {
			t.Fatalf("expected only the transport entry, got %d items", result.TotalItems)
		}
	})

	t.Run("amount bounds", func(t *testing.T) {
		lower := int64(10000)
		upper := int64(20000)
		result := list(TransactionFilter{MinAmount: &lower, MaxAmount: &upper})
		if result.TotalItems != 1 || result.Data[0].Amount != 12000 {
			t.Fatalf("expected only the 12000 entry, got %d items", result.TotalItems)
		}
	})

	t.Run("isolated per user", func(t *testing.T) {
		other := testutil.CreateTestUser(t, db)
		result, err := service.GetUserTransactions(other.ID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 0 {
			t.Fatalf("expected no transactions for other user, got %d", result.TotalItems)
		}
	})
}

func TestTransactionService_UpdateDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	service := NewTransactionService(db)
	user := testutil.CreateTestUser(t, db)
	category := testutil.CreateTestCategory(t, db, user.ID)
	date := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	txn := testutil.CreateTestTransaction(t, db, user.ID, &category.ID, 9000, date)

	t.Run("partial update", func(t *testing.T) {
		amount := int64(9500)
		updated, err := service.UpdateTransaction(user.ID, txn.ID, nil, &amount, nil, nil, nil)
		testutil.AssertNoError(t, err)
		if updated.Amount != 9500 {
			t.Errorf("expected amount 9500, got %d", updated.Amount)
		}
		if updated.CategoryID == nil || *updated.CategoryID != category.ID {
			t.Errorf("category changed unexpectedly")
		}
	})

	t.Run("update rejects foreign category", func(t *testing.T) {
		other := testutil.CreateTestUser(t, db)
		otherCategory := testutil.CreateTestCategory(t, db, other.ID)

		_, err := service.UpdateTransaction(user.ID, txn.ID, &otherCategory.ID, nil, nil, nil, nil)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("delete then fetch fails", func(t *testing.T) {
		testutil.AssertNoError(t, service.DeleteTransaction(user.ID, txn.ID))
		_, err := service.GetTransactionByID(user.ID, txn.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}
