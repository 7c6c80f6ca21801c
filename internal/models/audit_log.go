package models

// AuditLog records security-relevant account events.
type AuditLog struct {
	Base
	UserID    uint   `gorm:"index" json:"user_id"`
	Action    string `gorm:"not null" json:"action"`
	Detail    string `json:"detail"`
	IPAddress string `json:"ip_address"`
}

// Audit actions.
const (
	AuditActionRegister      = "register"
	AuditActionLogin         = "login"
	AuditActionLoginFailed   = "login_failed"
	AuditActionAccountLocked = "account_locked"
	AuditActionTokenRefresh  = "token_refresh"
	AuditActionLogout        = "logout"
)
