package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	apperrors "finwell/internal/errors"
	"finwell/internal/logger"
	"finwell/internal/models"
	"finwell/internal/pagination"
	"finwell/internal/schedule"
)

// scanConcurrency bounds how many users are scanned in parallel.
const scanConcurrency = 4

// resumeAdvanceCap bounds catch-up iterations when resuming a long-paused
// obligation, so a bad schedule can never loop forever.
const resumeAdvanceCap = 1000

// obligationService handles recurring obligations and their
// materialization into ledger transactions.
type obligationService struct {
	db       *gorm.DB
	notifier NotificationServicer

	// Per-user locks serialize materialization so a scheduler scan and a
	// manual generate-now cannot race for the same user.
	locksMu sync.Mutex
	locks   map[uint]*sync.Mutex
}

// NewObligationService creates a new ObligationServicer.
func NewObligationService(db *gorm.DB, notifier NotificationServicer) ObligationServicer {
	return &obligationService{
		db:       db,
		notifier: notifier,
		locks:    make(map[uint]*sync.Mutex),
	}
}

func (s *obligationService) userLock(userID uint) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

// CreateObligation registers a new recurring obligation. The first due
// date is the start date.
func (s *obligationService) CreateObligation(
	userID uint,
	categoryID *uint,
	description string,
	amount int64,
	frequency string,
	startDate time.Time,
	endDate *time.Time,
	dayOfMonth *int,
	notes string,
) (*models.Obligation, error) {
	freq := schedule.Frequency(frequency)
	if !freq.IsValid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("unknown frequency %q", frequency))
	}
	if endDate != nil && endDate.Before(startDate) {
		return nil, apperrors.ErrInvalidDateRange
	}

	if categoryID != nil {
		var category models.Category
		if err := s.db.Where("id = ? AND user_id = ?", *categoryID, userID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	obligation := &models.Obligation{
		UserID:      userID,
		CategoryID:  categoryID,
		Description: description,
		Amount:      amount,
		Frequency:   freq,
		Status:      models.ObligationStatusActive,
		StartDate:   dateOnly(startDate),
		EndDate:     endDate,
		NextDate:    dateOnly(startDate),
		DayOfMonth:  dayOfMonth,
		Notes:       notes,
	}

	if err := s.db.Create(obligation).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return obligation, nil
}

// GetUserObligations returns a paginated list of obligations with an
// optional status filter, soonest due first.
func (s *obligationService) GetUserObligations(userID uint, page pagination.PageRequest, status *models.ObligationStatus) (*pagination.PageResponse[models.Obligation], error) {
	page.Defaults()

	base := s.db.Model(&models.Obligation{}).Where("user_id = ?", userID)
	if status != nil {
		base = base.Where("status = ?", *status)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var obligations []models.Obligation
	if err := base.Preload("Category").Order("next_date, id").Scopes(pagination.Paginate(page)).Find(&obligations).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(obligations, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetObligationByID returns an obligation by ID if it belongs to the user.
func (s *obligationService) GetObligationByID(userID, obligationID uint) (*models.Obligation, error) {
	var obligation models.Obligation
	if err := s.db.Preload("Category").Where("id = ? AND user_id = ?", obligationID, userID).First(&obligation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrObligationNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &obligation, nil
}

// UpdateObligation updates editable fields. Frequency and start date are
// immutable once created; delete and recreate to change the schedule shape.
func (s *obligationService) UpdateObligation(
	userID, obligationID uint,
	categoryID *uint,
	description *string,
	amount *int64,
	endDate *time.Time,
	dayOfMonth *int,
	notes *string,
) (*models.Obligation, error) {
	obligation, err := s.GetObligationByID(userID, obligationID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if categoryID != nil {
		var category models.Category
		if err := s.db.Where("id = ? AND user_id = ?", *categoryID, userID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		updates["category_id"] = *categoryID
	}
	if description != nil {
		updates["description"] = *description
	}
	if amount != nil {
		updates["amount"] = *amount
	}
	if endDate != nil {
		if endDate.Before(obligation.StartDate) {
			return nil, apperrors.ErrInvalidDateRange
		}
		updates["end_date"] = *endDate
	}
	if dayOfMonth != nil {
		updates["day_of_month"] = *dayOfMonth
	}
	if notes != nil {
		updates["notes"] = *notes
	}

	if len(updates) > 0 {
		if err := s.db.Model(obligation).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return obligation, nil
}

// DeleteObligation soft-deletes an obligation. Transactions it already
// produced remain in the ledger.
func (s *obligationService) DeleteObligation(userID, obligationID uint) error {
	obligation, err := s.GetObligationByID(userID, obligationID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(obligation).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// PauseObligation transitions an active obligation to paused. A paused
// obligation is never materialized.
func (s *obligationService) PauseObligation(userID, obligationID uint) (*models.Obligation, error) {
	obligation, err := s.GetObligationByID(userID, obligationID)
	if err != nil {
		return nil, err
	}

	switch obligation.Status {
	case models.ObligationStatusCompleted:
		return nil, apperrors.ErrObligationCompleted
	case models.ObligationStatusPaused:
		return nil, apperrors.ErrObligationNotActive
	}

	if err := s.db.Model(obligation).Update("status", models.ObligationStatusPaused).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	obligation.Status = models.ObligationStatusPaused
	return obligation, nil
}

// ResumeObligation transitions a paused obligation back to active and
// fast-forwards its next date past today, skipping the occurrences that
// fell inside the pause instead of back-filling them.
func (s *obligationService) ResumeObligation(userID, obligationID uint, now time.Time) (*models.Obligation, error) {
	obligation, err := s.GetObligationByID(userID, obligationID)
	if err != nil {
		return nil, err
	}

	if obligation.Status != models.ObligationStatusPaused {
		return nil, apperrors.ErrObligationNotPaused
	}

	today := dateOnly(now)
	preferred := 0
	if obligation.DayOfMonth != nil {
		preferred = *obligation.DayOfMonth
	}

	status := models.ObligationStatusActive
	next := obligation.NextDate
	for i := 0; next.Before(today) && i < resumeAdvanceCap; i++ {
		next = schedule.Advance(next, obligation.Frequency, preferred)
	}
	if obligation.EndDate != nil && next.After(*obligation.EndDate) {
		status = models.ObligationStatusCompleted
	}

	updates := map[string]interface{}{
		"status":    status,
		"next_date": next,
	}
	if err := s.db.Model(obligation).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	obligation.Status = status
	obligation.NextDate = next
	return obligation, nil
}

// GenerateNow materializes an obligation immediately, outside its
// schedule. The transaction is dated today and the schedule advances
// from today rather than from the skipped due date.
func (s *obligationService) GenerateNow(userID, obligationID uint, now time.Time) (*models.Transaction, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	obligation, err := s.GetObligationByID(userID, obligationID)
	if err != nil {
		return nil, err
	}
	if obligation.Status != models.ObligationStatusActive {
		return nil, apperrors.ErrObligationNotActive
	}

	today := dateOnly(now)
	preferred := 0
	if obligation.DayOfMonth != nil {
		preferred = *obligation.DayOfMonth
	}

	var txn *models.Transaction
	err = s.db.Transaction(func(tx *gorm.DB) error {
		created, err := s.materializeOn(tx, obligation, today)
		if err != nil {
			return err
		}
		txn = created

		return tx.Model(obligation).Updates(map[string]interface{}{
			"last_generated": today,
			"next_date":      schedule.Advance(today, obligation.Frequency, preferred),
		}).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return txn, nil
}

// MarkPaid materializes a due obligation and extends the user's bill
// payment streak.
func (s *obligationService) MarkPaid(userID, obligationID uint, now time.Time) (*models.Transaction, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	obligation, err := s.GetObligationByID(userID, obligationID)
	if err != nil {
		return nil, err
	}

	today := dateOnly(now)
	if !obligation.IsDue(today) {
		return nil, apperrors.ErrObligationNotActive
	}

	var txn *models.Transaction
	err = s.db.Transaction(func(tx *gorm.DB) error {
		created, err := s.materializeDue(tx, obligation, today)
		if err != nil {
			return err
		}
		txn = created

		return tx.Model(&models.User{}).Where("id = ?", userID).
			Update("bill_payment_streak", gorm.Expr("bill_payment_streak + 1")).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if obligation.Status == models.ObligationStatusCompleted {
		s.notifyCompleted(obligation)
	}
	return txn, nil
}

// ScanUser materializes every due obligation for one user. Each
// obligation is processed in its own database transaction so one failure
// does not roll back the rest of the scan.
func (s *obligationService) ScanUser(userID uint, today time.Time) (*MaterializeResult, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	today = dateOnly(today)

	var due []models.Obligation
	err := s.db.
		Where("user_id = ? AND status = ? AND next_date <= ?", userID, models.ObligationStatusActive, today).
		Where("end_date IS NULL OR end_date >= ?", today).
		Order("next_date, id").
		Find(&due).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := &MaterializeResult{Generated: []models.Transaction{}}
	for i := range due {
		obligation := &due[i]

		// Loop so an obligation overdue by several periods catches up in
		// one scan. Each occurrence commits independently.
		for attempts := 0; obligation.IsDue(today) && attempts < resumeAdvanceCap; attempts++ {
			var txn *models.Transaction
			err := s.db.Transaction(func(tx *gorm.DB) error {
				created, err := s.materializeDue(tx, obligation, today)
				if err != nil {
					return err
				}
				txn = created
				return nil
			})
			if err != nil {
				logger.Get().Errorw("failed to materialize obligation",
					"obligation_id", obligation.ID,
					"user_id", userID,
					"error", err.Error(),
				)
				break
			}

			if txn != nil {
				result.Generated = append(result.Generated, *txn)
				s.notifyGenerated(obligation, txn)
			}
			if obligation.Status == models.ObligationStatusCompleted {
				result.Completed++
				s.notifyCompleted(obligation)
			}
		}
	}

	return result, nil
}

// ScanAllUsers materializes due obligations for every user with at least
// one due obligation, fanning out across users with bounded concurrency.
// Returns the total number of transactions generated.
func (s *obligationService) ScanAllUsers(ctx context.Context, today time.Time) (int, error) {
	today = dateOnly(today)

	var userIDs []uint
	err := s.db.Model(&models.Obligation{}).
		Distinct("user_id").
		Where("status = ? AND next_date <= ?", models.ObligationStatusActive, today).
		Where("end_date IS NULL OR end_date >= ?", today).
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var total int64
	var totalMu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(scanConcurrency)
	for _, userID := range userIDs {
		userID := userID
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := s.ScanUser(userID, today)
			if err != nil {
				logger.Get().Errorw("user scan failed",
					"user_id", userID,
					"error", err.Error(),
				)
				return nil
			}
			totalMu.Lock()
			total += int64(len(result.Generated))
			totalMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(total), err
	}

	return int(total), nil
}

// UpcomingObligations lists active obligations due within the next days.
func (s *obligationService) UpcomingObligations(userID uint, today time.Time, days int) ([]models.Obligation, error) {
	start := dateOnly(today)
	end := start.AddDate(0, 0, days)

	var obligations []models.Obligation
	err := s.db.Preload("Category").
		Where("user_id = ? AND status = ? AND next_date >= ? AND next_date < ?",
			userID, models.ObligationStatusActive, start, end).
		Order("next_date, id").
		Find(&obligations).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return obligations, nil
}

// materializeDue creates the ledger transaction for the obligation's
// current due date and advances the schedule. The caller's obligation is
// updated in place. Returns nil when the due date was already
// materialized; the schedule still advances so the scan makes progress.
func (s *obligationService) materializeDue(tx *gorm.DB, obligation *models.Obligation, today time.Time) (*models.Transaction, error) {
	txn, err := s.materializeOn(tx, obligation, obligation.NextDate)
	if err != nil {
		return nil, err
	}

	obligation.LastGenerated = &today
	obligation.AdvanceSchedule()

	updates := map[string]interface{}{
		"last_generated": today,
		"next_date":      obligation.NextDate,
		"status":         obligation.Status,
	}
	if err := tx.Model(&models.Obligation{}).Where("id = ?", obligation.ID).Updates(updates).Error; err != nil {
		return nil, err
	}

	return txn, nil
}

// materializeOn inserts the transaction row for one occurrence date.
// The unique index on (obligation_id, date) makes this at-most-once; an
// existing row means a concurrent or earlier run already did it.
func (s *obligationService) materializeOn(tx *gorm.DB, obligation *models.Obligation, date time.Time) (*models.Transaction, error) {
	var count int64
	err := tx.Model(&models.Transaction{}).
		Where("obligation_id = ? AND date = ?", obligation.ID, date).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, nil
	}

	obligationID := obligation.ID
	txn := &models.Transaction{
		UserID:       obligation.UserID,
		CategoryID:   obligation.CategoryID,
		Type:         models.TransactionTypeExpense,
		Amount:       obligation.Amount,
		Description:  obligation.Description,
		Date:         date,
		Notes:        obligation.Notes,
		IsRecurring:  true,
		ObligationID: &obligationID,
		Tags:         "{}",
	}
	if err := tx.Create(txn).Error; err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *obligationService) notifyGenerated(obligation *models.Obligation, txn *models.Transaction) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(obligation.UserID, models.NotificationTypeObligationDue,
		"Recurring payment recorded",
		fmt.Sprintf("%s (%s) was added to your transactions.", obligation.Description, formatCents(txn.Amount)),
	)
}

func (s *obligationService) notifyCompleted(obligation *models.Obligation) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(obligation.UserID, models.NotificationTypeObligationDone,
		"Recurring obligation completed",
		fmt.Sprintf("%s has reached its end date and will no longer recur.", obligation.Description),
	)
}

// dateOnly truncates a time to midnight in its location.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// formatCents renders a cent amount as a dollar string for messages.
func formatCents(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s$%d.%02d", sign, amount/100, amount%100)
}
