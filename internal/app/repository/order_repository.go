package repository

import (
	"github.com/prasetyo/tokobarang-backend/internal/app/model"
	"github.com/prasetyo/tokobarang-backend/pkg/logger"
	"gorm.io/gorm"
)

type OrderRepository interface {
	FindByID(id uint) (*model.Order, error)
	FindByUserID(userID uint) ([]model.Order, error)
	FindAll(status model.OrderStatus) ([]model.Order, error)
	UpdateStatusConditional(id uint, from, to model.OrderStatus, payment model.PaymentStatus) (bool, error)
	UpdatePaymentStatus(id uint, status model.PaymentStatus) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	var order model.Order
	if err := r.db.Preload("Lines").Preload("Lines.Product").Preload("User").
		First(&order, id).Error; err != nil {
		logger.Error("Failed to find order by ID in database", err, map[string]interface{}{
			"order_id": id,
		})
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByUserID(userID uint) ([]model.Order, error) {
	var orders []model.Order
	if err := r.db.Preload("Lines").Preload("Lines.Product").
		Where("user_id = ?", userID).Order("created_at DESC").
		Find(&orders).Error; err != nil {
		logger.Error("Failed to list user orders in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) FindAll(status model.OrderStatus) ([]model.Order, error) {
	var orders []model.Order
	query := r.db.Preload("Lines").Preload("User").Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&orders).Error; err != nil {
		logger.Error("Failed to list orders in database", err, map[string]interface{}{
			"status": status,
		})
		return nil, err
	}
	return orders, nil
}

// UpdateStatusConditional moves an order from one status to another only if
// it is still in the expected status. Returns false when a concurrent
// transition already moved the order away. A non-empty payment status is
// written in the same statement, so the order never ends up with the new
// status but the old payment state.
func (r *orderRepository) UpdateStatusConditional(id uint, from, to model.OrderStatus, payment model.PaymentStatus) (bool, error) {
	updates := map[string]interface{}{"status": to}
	if payment != "" {
		updates["payment_status"] = payment
	}

	result := r.db.Model(&model.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		logger.Error("Failed to update order status in database", result.Error, map[string]interface{}{
			"order_id": id,
			"from":     from,
			"to":       to,
		})
		return false, result.Error
	}

	logger.Debug("Order status update applied", map[string]interface{}{
		"order_id":      id,
		"from":          from,
		"to":            to,
		"rows_affected": result.RowsAffected,
	})
	return result.RowsAffected > 0, nil
}

func (r *orderRepository) UpdatePaymentStatus(id uint, status model.PaymentStatus) error {
	if err := r.db.Model(&model.Order{}).Where("id = ?", id).
		Update("payment_status", status).Error; err != nil {
		logger.Error("Failed to update payment status in database", err, map[string]interface{}{
			"order_id": id,
			"status":   status,
		})
		return err
	}
	return nil
}
