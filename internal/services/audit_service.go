package services

import (
	"gorm.io/gorm"

	"finwell/internal/logger"
	"finwell/internal/models"
)

// auditService records security-relevant events. Writes are
// fire-and-forget so auditing never blocks or fails a request.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log writes an audit entry asynchronously. Failures are logged and
// swallowed.
func (s *auditService) Log(userID uint, action, detail, ipAddress string) {
	entry := &models.AuditLog{
		UserID:    userID,
		Action:    action,
		Detail:    detail,
		IPAddress: ipAddress,
	}

	go func() {
		if err := s.db.Create(entry).Error; err != nil {
			logger.Get().Errorw("failed to write audit log",
				"action", action,
				"user_id", userID,
				"error", err.Error(),
			)
		}
	}()
}
