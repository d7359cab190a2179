package services

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"marketplace-review-server/models"
)

// OrderService is the gate the review flow authorizes against. It only
// reads orders and performs the single attempted -> completed transition.
type OrderService struct {
	db *gorm.DB
}

// NewOrderService creates an order gate over the given database handle.
func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

// GetOrder loads one order, or nil if it does not exist.
func (s *OrderService) GetOrder(orderID uint) *models.Order {
	var order models.Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("❌ order service: failed to load order %d: %v", orderID, err)
		}
		return nil
	}
	return &order
}

// UpdateOrderStatus transitions the order to the given status.
func (s *OrderService) UpdateOrderStatus(orderID uint, status models.OrderStatus) bool {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if status == models.OrderStatusCompleted {
		updates["completed_at"] = time.Now()
	}
	if err := s.db.Model(&models.Order{}).Where("id = ?", orderID).Updates(updates).Error; err != nil {
		log.Printf("❌ order service: failed to update order %d to %s: %v", orderID, status, err)
		return false
	}
	return true
}
