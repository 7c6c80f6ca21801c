package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"finwell/internal/amqp"
	apperrors "finwell/internal/errors"
	"finwell/internal/logger"
	"finwell/internal/models"
	"finwell/internal/pagination"
)

// notificationService stores in-app notifications and, when a broker
// client is configured, publishes them for external delivery.
type notificationService struct {
	db        *gorm.DB
	publisher *amqp.Client
}

// NewNotificationService creates a new NotificationServicer. publisher
// may be nil, in which case notifications are stored but not published.
func NewNotificationService(db *gorm.DB, publisher *amqp.Client) NotificationServicer {
	return &notificationService{db: db, publisher: publisher}
}

// notificationEvent is the broker payload for one notification.
type notificationEvent struct {
	UserID  uint      `json:"user_id"`
	Type    string    `json:"type"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

// Notify stores a notification and publishes it asynchronously.
// Delivery is best-effort; a broker failure is logged and does not
// affect the stored notification.
func (s *notificationService) Notify(userID uint, notificationType models.NotificationType, title, message string) {
	notification := &models.Notification{
		UserID:  userID,
		Type:    notificationType,
		Title:   title,
		Message: message,
	}
	if err := s.db.Create(notification).Error; err != nil {
		logger.Get().Errorw("failed to store notification",
			"user_id", userID,
			"type", string(notificationType),
			"error", err.Error(),
		)
		return
	}

	if s.publisher == nil {
		return
	}
	go func() {
		event := notificationEvent{
			UserID:  userID,
			Type:    string(notificationType),
			Title:   title,
			Message: message,
			SentAt:  time.Now(),
		}
		if err := s.publisher.Publish(context.Background(), event); err != nil {
			logger.Get().Errorw("failed to publish notification",
				"user_id", userID,
				"type", string(notificationType),
				"error", err.Error(),
			)
		}
	}()
}

// GetUserNotifications returns a paginated list of the user's
// notifications, newest first.
func (s *notificationService) GetUserNotifications(userID uint, page pagination.PageRequest, unreadOnly bool) (*pagination.PageResponse[models.Notification], error) {
	page.Defaults()

	base := s.db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		base = base.Where("read = ?", false)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var notifications []models.Notification
	if err := base.Order("created_at DESC, id DESC").Scopes(pagination.Paginate(page)).Find(&notifications).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(notifications, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// MarkRead marks one notification as read.
func (s *notificationService) MarkRead(userID, notificationID uint) error {
	var notification models.Notification
	if err := s.db.Where("id = ? AND user_id = ?", notificationID, userID).First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Model(&notification).Update("read", true).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
