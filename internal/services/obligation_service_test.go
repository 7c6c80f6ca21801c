package services

import (
	"context"
	"testing"
	"time"

	"finwell/internal/models"
	"finwell/internal/pagination"
	"finwell/internal/schedule"
	"finwell/internal/testutil"
)

func midnight(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestCreateObligation(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewObligationService(db, nil)
		user := testutil.CreateTestUser(t, db)

		start := midnight(2025, time.March, 1)
		obligation, err := svc.CreateObligation(user.ID, nil, "Rent", 120000, "monthly", start, nil, nil, "")
		testutil.AssertNoError(t, err)

		if obligation.ID == 0 {
			t.Fatal("expected non-zero obligation ID")
		}
		if obligation.Status != models.ObligationStatusActive {
			t.Errorf("expected active status, got %s", obligation.Status)
		}
		if !obligation.NextDate.Equal(start) {
			t.Errorf("expected next date %v, got %v", start, obligation.NextDate)
		}
	})

	t.Run("invalid_frequency", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewObligationService(db, nil)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateObligation(user.ID, nil, "Rent", 120000, "hourly", midnight(2025, time.March, 1), nil, nil, "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("end_before_start", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewObligationService(db, nil)
		user := testutil.CreateTestUser(t, db)

		end := midnight(2025, time.February, 1)
		_, err := svc.CreateObligation(user.ID, nil, "Rent", 120000, "monthly", midnight(2025, time.March, 1), &end, nil, "")
		testutil.AssertAppError(t, err, "INVALID_DATE_RANGE")
	})

	t.Run("wrong_user_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewObligationService(db, nil)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user2.ID)

		_, err := svc.CreateObligation(user1.ID, &cat.ID, "Rent", 120000, "monthly", midnight(2025, time.March, 1), nil, nil, "")
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestScanUser(t *testing.T) {
	t.Run("materializes_due_obligation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewObligationService(db, nil)
		user := testutil.CreateTestUser(t, db)

		due := midnight(2025, time.March, 5)
		obligation := testutil.CreateTestObligation(t, db, user.ID, schedule.FrequencyMonthly, 5000, due)

		result, err := svc.ScanUser(user.ID, due)
		testutil.AssertNoError(t, err)

		if len(result.Generated) != 1 {
			t.Fatalf("expected 1 generated transaction, got %d", len(result.Generated))
		}
		txn := result.Generated[0]
		if txn.Amount != 5000 {
			t.Errorf("expected amount 5000, got %d", txn.Amount)
		}
		if !txn.IsRecurring {
			t.Error("expected recurring flag on generated transaction")
		}
		if txn.ObligationID == nil || *txn.ObligationID != obligation.ID {
			t.Error("expected back-reference to obligation")
		}
		if !txn.Date.Equal(due) {
			t.Errorf("expected transaction dated %v, got %v", due, txn.Date)
		}

		var reloaded models.Obligation
		testutil.AssertNoError(t, db.First(&reloaded, obligation.ID).Error)
		if !reloaded.NextDate.Equal(midnight(2025, time.April, 5)) {
			t.Errorf("expected next date advanced to Apr 5, got %v", reloaded.NextDate)
		}
		if reloaded.LastGenerated == nil {
			t.Error("expected last generated to be set")
		}
	})

	t.Run("second_scan_is_idempotent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewObligationService(db, nil)
		user := testutil.CreateTestUser(t, db)

		due := midnight(2025, time.March, 5)
		obligation := testutil.CreateTestObligation(t, db, user.ID, schedule.FrequencyMonthly, 5000, due)

		_, err := svc.ScanUser(user.ID, due)
		testutil.AssertNoError(t, err)
		result, err := svc.ScanUser(user.ID, due)
		testutil.AssertNoError(t, err)

		if len(result.Generated) != 0 {
			t.Fatalf("expected no new transactions on second scan, got %d", len(result.Generated))
		}

		var count int64
		db.Model(&models.Transaction{}).Where("obligation_id = ?", obligation.ID).Count(&count)
		if count != 1 {
			t.Errorf("expected exactly 1 transaction, got %d", count)
		}
	})

	t.Run("catches_up_multiple_periods", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewObligationService(db, nil)
		user := testutil.CreateTestUser(t, db)

		// Weekly obligation three weeks behind.
		due := midnight(2025, time.March, 3)
		obligation := testutil.CreateTestObligation(t, db, user.ID, schedule.FrequencyWeekly, 2500, due)

		result, err := svc.ScanUser(user.ID, midnight(2025, time.March, 18))
		testutil.AssertNoError(t, err)

		if len(result.Generated) != 3 {
			t.Fatalf("expected 3 generated transactions, got %d", len(result.Generated))
		}

		var reloaded models.Obligation
		testutil.AssertNoError(t, db.First(&reloaded, obligation.ID).Error)
		if !reloaded.NextDate.Equal(midnight(2025, time.March, 24)) {
			t.Errorf("expected next date Mar 24, got %v", reloaded.NextDate)
		}
	})

	t.Run("skips_paused", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewObligationService(db, nil)
		user := testutil.CreateTestUser(t, db)

		due := midnight(2025, time.March, 5)
		obligation := testutil.CreateTestObligation(t, db, user.ID, schedule.FrequencyMonthly, 5000, due)
		testutil.AssertNoError(t, db.Model(obligation).Update("status", models.ObligationStatusPaused).Error)

		result, err := svc.ScanUser(user.ID, due)
		testutil.AssertNoError(t, err)
		if len(result.Generated) != 0 {
			t.Errorf("expected paused obligation to be skipped, got %d transactions", len(result.Generated))
		}
	})

	t.Run("completes_past_end_date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewObligationService(db, nil)
		user := testutil.CreateTestUser(t, db)

		due := midnight(2025, time.March, 5)
		obligation := testutil.CreateTestObligation(t, db, user.ID, schedule.FrequencyMonthly, 5000, due)
		end := midnight(2025, time.March, 31)
		testutil.AssertNoError(t, db.Model(obligation).Update("end_date", end).Error)

		result, err := svc.ScanUser(user.ID, due)
		testutil.AssertNoError(t, err)

		if len(result.Generated) != 1 {
			t.Fatalf("expected final occurrence to be generated, got %d", len(result.Generated))
		}
		if result.Completed != 1 {
			t.Errorf("expected 1 completion, got %d", result.Completed)
		}

		var reloaded models.Obligation
		testutil.AssertNoError(t, db.First(&reloaded, obligation.ID).Error)
		if reloaded.Status != models.ObligationStatusCompleted {
			t.Errorf("expected completed status, got %s", reloaded.Status)
		}
	})
}

func TestScanAllUsers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewObligationService(db, nil)

	due := midnight(2025, time.March, 5)
	user1 := testutil.CreateTestUser(t, db)
	user2 := testutil.CreateTestUser(t, db)
	testutil.CreateTestObligation(t, db, user1.ID, schedule.FrequencyMonthly, 5000, due)
	testutil.CreateTestObligation(t, db, user2.ID, schedule.FrequencyMonthly, 7000, due)
	// Not yet due.
	testutil.CreateTestObligation(t, db, user2.ID, schedule.FrequencyMonthly, 9000, midnight(2025, time.April, 1))

	total, err := svc.ScanAllUsers(context.Background(), due)
	testutil.AssertNoError(t, err)

	if total != 2 {
		t.Errorf("expected 2 transactions generated, got %d", total)
	}
}

func TestPauseResumeObligation(t *testing.T) {
	t.Run("pause_then_resume_fast_forwards", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewObligationService(db, nil)
		user := testutil.CreateTestUser(t, db)

		obligation := testutil.CreateTestObligation(t, db, user.ID, schedule.FrequencyMonthly, 5000, midnight(2025, time.January, 10))

		paused, err := svc.PauseObligation(user.ID, obligation.ID)
		testutil.AssertNoError(t, err)
		if paused.Status != models.ObligationStatusPaused {
			t.Fatalf("expected paused, got %s", paused.Status)
		}

		resumed, err := svc.ResumeObligation(user.ID, obligation.ID, midnight(2025, time.April, 20))
		testutil.AssertNoError(t, err)
		if resumed.Status != models.ObligationStatusActive {
			t.Fatalf("expected active, got %s", resumed.Status)
		}
		// Jan 10 -> Feb 10 -> Mar 10 -> Apr 10 -> May 10; first date on or
		// after Apr 20 is May 10.
		if !resumed.NextDate.Equal(midnight(2025, time.May, 10)) {
			t.Errorf("expected next date May 10, got %v", resumed.NextDate)
		}

		// No transactions were back-filled for the paused stretch.
		var count int64
		db.Model(&models.Transaction{}).Where("obligation_id = ?", obligation.ID).Count(&count)
		if count != 0 {
			t.Errorf("expected no back-filled transactions, got %d", count)
		}
	})

	t.Run("pause_requires_active", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewObligationService(db, nil)
		user := testutil.CreateTestUser(t, db)

		obligation := testutil.CreateTestObligation(t, db, user.ID, schedule.FrequencyMonthly, 5000, midnight(2025, time.March, 10))
		_, err := svc.PauseObligation(user.ID, obligation.ID)
		testutil.AssertNoError(t, err)

		_, err = svc.PauseObligation(user.ID, obligation.ID)
		testutil.AssertAppError(t, err, "OBLIGATION_NOT_ACTIVE")
	})

	t.Run("resume_requires_paused", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewObligationService(db, nil)
		user := testutil.CreateTestUser(t, db)

		obligation := testutil.CreateTestObligation(t, db, user.ID, schedule.FrequencyMonthly, 5000, midnight(2025, time.March, 10))
		_, err := svc.ResumeObligation(user.ID, obligation.ID, midnight(2025, time.March, 15))
		testutil.AssertAppError(t, err, "OBLIGATION_NOT_PAUSED")
	})
}

func TestGenerateNow(t *testing.T) {
	t.Run("generates_off_schedule", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewObligationService(db, nil)
		user := testutil.CreateTestUser(t, db)

		// Not due until April.
		obligation := testutil.CreateTestObligation(t, db, user.ID, schedule.FrequencyMonthly, 5000, midnight(2025, time.April, 10))

		today := midnight(2025, time.March, 20)
		txn, err := svc.GenerateNow(user.ID, obligation.ID, today)
		testutil.AssertNoError(t, err)

		if txn == nil {
			t.Fatal("expected a transaction")
		}
		if !txn.Date.Equal(today) {
			t.Errorf("expected transaction dated today, got %v", txn.Date)
		}

		var reloaded models.Obligation
		testutil.AssertNoError(t, db.First(&reloaded, obligation.ID).Error)
		// Schedule advances from today, not from the old next date.
		if !reloaded.NextDate.Equal(midnight(2025, time.April, 20)) {
			t.Errorf("expected next date Apr 20, got %v", reloaded.NextDate)
		}
	})

	t.Run("rejects_paused", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewObligationService(db, nil)
		user := testutil.CreateTestUser(t, db)

		obligation := testutil.CreateTestObligation(t, db, user.ID, schedule.FrequencyMonthly, 5000, midnight(2025, time.April, 10))
		testutil.AssertNoError(t, db.Model(obligation).Update("status", models.ObligationStatusPaused).Error)

		_, err := svc.GenerateNow(user.ID, obligation.ID, midnight(2025, time.March, 20))
		testutil.AssertAppError(t, err, "OBLIGATION_NOT_ACTIVE")
	})
}

func TestMarkPaid(t *testing.T) {
	t.Run("materializes_and_extends_streak", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewObligationService(db, nil)
		user := testutil.CreateTestUser(t, db)

		due := midnight(2025, time.March, 5)
		obligation := testutil.CreateTestObligation(t, db, user.ID, schedule.FrequencyMonthly, 5000, due)

		txn, err := svc.MarkPaid(user.ID, obligation.ID, due)
		testutil.AssertNoError(t, err)
		if txn == nil {
			t.Fatal("expected a transaction")
		}

		var reloadedUser models.User
		testutil.AssertNoError(t, db.First(&reloadedUser, user.ID).Error)
		if reloadedUser.BillPaymentStreak != 1 {
			t.Errorf("expected streak 1, got %d", reloadedUser.BillPaymentStreak)
		}
	})

	t.Run("rejects_not_due", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewObligationService(db, nil)
		user := testutil.CreateTestUser(t, db)

		obligation := testutil.CreateTestObligation(t, db, user.ID, schedule.FrequencyMonthly, 5000, midnight(2025, time.April, 10))
		_, err := svc.MarkPaid(user.ID, obligation.ID, midnight(2025, time.March, 20))
		testutil.AssertAppError(t, err, "OBLIGATION_NOT_ACTIVE")
	})
}

func TestUpcomingObligations(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewObligationService(db, nil)
	user := testutil.CreateTestUser(t, db)

	today := midnight(2025, time.March, 1)
	testutil.CreateTestObligation(t, db, user.ID, schedule.FrequencyMonthly, 5000, midnight(2025, time.March, 5))
	testutil.CreateTestObligation(t, db, user.ID, schedule.FrequencyMonthly, 5000, midnight(2025, time.March, 25))

	upcoming, err := svc.UpcomingObligations(user.ID, today, 14)
	testutil.AssertNoError(t, err)

	if len(upcoming) != 1 {
		t.Fatalf("expected 1 upcoming obligation, got %d", len(upcoming))
	}
}

func TestGetUserObligations(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewObligationService(db, nil)
	user1 := testutil.CreateTestUser(t, db)
	user2 := testutil.CreateTestUser(t, db)

	testutil.CreateTestObligation(t, db, user1.ID, schedule.FrequencyMonthly, 5000, midnight(2025, time.March, 5))
	testutil.CreateTestObligation(t, db, user1.ID, schedule.FrequencyWeekly, 2000, midnight(2025, time.March, 3))
	testutil.CreateTestObligation(t, db, user2.ID, schedule.FrequencyMonthly, 9000, midnight(2025, time.March, 7))

	page := pagination.PageRequest{Page: 1, PageSize: 20}
	result, err := svc.GetUserObligations(user1.ID, page, nil)
	testutil.AssertNoError(t, err)

	if result.TotalItems != 2 {
		t.Errorf("expected 2 obligations, got %d", result.TotalItems)
	}
	if len(result.Data) != 2 || !result.Data[0].NextDate.Before(result.Data[1].NextDate) {
		t.Error("expected obligations ordered soonest first")
	}
}
