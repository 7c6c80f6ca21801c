package services

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "finwell/internal/errors"
	"finwell/internal/logger"
	"finwell/internal/models"
)

const (
	maxFailedLogins = 5
	lockoutDuration = 15 * time.Minute
)

// userService handles user-related business logic.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// CreateUser registers a new user with a bcrypt-hashed password.
func (s *userService) CreateUser(email, password, firstName, lastName string) (*models.User, error) {
	var existing models.User
	err := s.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, apperrors.ErrDuplicateEmail
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return user, nil
}

// GetUserByEmail returns a user by email.
func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByID returns a user by ID.
func (s *userService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// VerifyPassword checks a plaintext password against the stored hash.
func (s *userService) VerifyPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// AttemptLogin verifies credentials with account lockout after repeated
// failures. A wrong password and an unknown email return the same error
// so the endpoint does not reveal which emails exist.
func (s *userService) AttemptLogin(email, password string) (*models.User, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	now := time.Now()
	if user.IsLocked(now) {
		return nil, apperrors.ErrAccountLocked
	}

	if !s.VerifyPassword(user, password) {
		updates := map[string]interface{}{
			"failed_login_attempts": user.FailedLoginAttempts + 1,
		}
		if user.FailedLoginAttempts+1 >= maxFailedLogins {
			lockedUntil := now.Add(lockoutDuration)
			updates["locked_until"] = lockedUntil
			logger.Get().Warnw("account locked after failed logins",
				"user_id", user.ID,
			)
		}
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil, apperrors.ErrInvalidCredentials
	}

	// Successful login resets the failure counter and lock.
	if user.FailedLoginAttempts > 0 || user.LockedUntil != nil {
		updates := map[string]interface{}{
			"failed_login_attempts": 0,
			"locked_until":          nil,
		}
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return user, nil
}

// StoreRefreshTokenHash saves the hash of the user's current refresh token.
func (s *userService) StoreRefreshTokenHash(userID uint, tokenHash string) error {
	result := s.db.Model(&models.User{}).Where("id = ?", userID).Update("refresh_token_hash", tokenHash)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// GetRefreshTokenHash returns the stored refresh token hash for a user.
func (s *userService) GetRefreshTokenHash(userID uint) (string, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return "", err
	}
	return user.RefreshTokenHash, nil
}

// UpdateProfile updates name and financial profile fields.
func (s *userService) UpdateProfile(userID uint, firstName, lastName *string, monthlyIncome, savingsAmount, savingsTarget *int64) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if firstName != nil {
		updates["first_name"] = *firstName
	}
	if lastName != nil {
		updates["last_name"] = *lastName
	}
	if monthlyIncome != nil {
		updates["monthly_income"] = *monthlyIncome
	}
	if savingsAmount != nil {
		updates["savings_amount"] = *savingsAmount
	}
	if savingsTarget != nil {
		updates["savings_target"] = *savingsTarget
	}

	if len(updates) > 0 {
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return user, nil
}

// AddIncomeSource adds a named income stream and refreshes the user's
// monthly income to the sum of all sources' monthly equivalents.
func (s *userService) AddIncomeSource(userID uint, name string, amount int64, frequency models.IncomeFrequency) (*models.IncomeSource, error) {
	source := &models.IncomeSource{
		UserID:    userID,
		Name:      name,
		Amount:    amount,
		Frequency: frequency,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(source).Error; err != nil {
			return err
		}
		return s.recomputeMonthlyIncome(tx, userID)
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return source, nil
}

// GetIncomeSources lists the user's income sources.
func (s *userService) GetIncomeSources(userID uint) ([]models.IncomeSource, error) {
	var sources []models.IncomeSource
	if err := s.db.Where("user_id = ?", userID).Order("created_at").Find(&sources).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return sources, nil
}

// DeleteIncomeSource removes an income source and refreshes monthly income.
func (s *userService) DeleteIncomeSource(userID, sourceID uint) error {
	var source models.IncomeSource
	if err := s.db.Where("id = ? AND user_id = ?", sourceID, userID).First(&source).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrIncomeSourceNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&source).Error; err != nil {
			return err
		}
		return s.recomputeMonthlyIncome(tx, userID)
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *userService) recomputeMonthlyIncome(tx *gorm.DB, userID uint) error {
	var sources []models.IncomeSource
	if err := tx.Where("user_id = ?", userID).Find(&sources).Error; err != nil {
		return err
	}
	var total int64
	for i := range sources {
		total += sources[i].MonthlyEquivalent()
	}
	return tx.Model(&models.User{}).Where("id = ?", userID).Update("monthly_income", total).Error
}
