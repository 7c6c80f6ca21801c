package models

// Category groups transactions and budgets for a user.
type Category struct {
	Base
	UserID   uint   `gorm:"index;not null" json:"user_id"`
	Name     string `gorm:"not null" json:"name"`
	Keywords string `json:"keywords"`
	Color    string `gorm:"default:#667eea" json:"color"`
	Icon     string `gorm:"default:fa-tag" json:"icon"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}
