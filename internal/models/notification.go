package models

// NotificationType categorizes in-app notifications.
type NotificationType string

const (
	NotificationTypeBudgetAlert    NotificationType = "budget_alert"
	NotificationTypeObligationDue  NotificationType = "obligation_due"
	NotificationTypeObligationDone NotificationType = "obligation_completed"
)

// Notification is an in-app message for a user.
type Notification struct {
	Base
	UserID  uint             `gorm:"index;not null" json:"user_id"`
	Type    NotificationType `gorm:"not null" json:"type"`
	Title   string           `gorm:"not null" json:"title"`
	Message string           `json:"message"`
	Read    bool             `gorm:"default:false;index" json:"read"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}
