package models

import "time"

// User represents a customer interacting with the bot.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	TelegramID   int64     `json:"telegram_id" gorm:"uniqueIndex;not null"`
	Username     string    `json:"username" gorm:"size:64"`
	FirstName    string    `json:"first_name" gorm:"size:128"`
	PasswordHash string    `json:"-" gorm:"size:255"` // set only for dashboard admins
	IsAdmin      bool      `json:"is_admin" gorm:"default:false"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
