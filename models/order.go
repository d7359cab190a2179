package models

import "time"

// OrderStatus represents the current status of a marketplace order
type OrderStatus string

const (
	OrderStatusAttempted OrderStatus = "attempted"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order connects a customer and a merchant for one transaction.
// The review flow reads it and may transition attempted -> completed,
// but never creates or destroys it.
type Order struct {
	ID             uint        `json:"id" gorm:"primaryKey"`
	CustomerUserID int64       `json:"customer_user_id" gorm:"not null;index"`
	MerchantID     uint        `json:"merchant_id" gorm:"not null;index"`
	Merchant       *Merchant   `json:"merchant,omitempty" gorm:"foreignKey:MerchantID"`
	MerchantChatID string      `json:"merchant_chat_id" gorm:"type:varchar(64);not null"`
	Status         OrderStatus `json:"status" gorm:"type:varchar(20);not null;default:'attempted'"`
	CompletedAt    *time.Time  `json:"completed_at"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}
