package models

import "time"

// Merchant represents a service provider listed in the marketplace.
// ChatID is the Telegram chat the merchant is bound to; it is the
// identity used when the merchant reviews a customer.
type Merchant struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	ChatID    string    `json:"chat_id" gorm:"type:varchar(64);index"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the Merchant model
func (Merchant) TableName() string {
	return "merchants"
}
