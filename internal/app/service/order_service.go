package service

import (
	"errors"
	"fmt"

	"github.com/prasetyo/tokobarang-backend/internal/app/model"
	"github.com/prasetyo/tokobarang-backend/internal/app/repository"
	"github.com/prasetyo/tokobarang-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrMissingAddress       = errors.New("shipping address is required")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidAction        = errors.New("unknown order action")
	ErrIllegalTransition    = errors.New("action not allowed for current order status")
	ErrNotOrderOwner        = errors.New("order belongs to another user")
)

type OrderService interface {
	Checkout(userID uint, paymentMethod model.PaymentMethod, shippingAddress string) (*model.Order, error)
	GetUserOrders(userID uint) ([]model.Order, error)
	GetOrderByID(caller model.Caller, orderID uint) (*model.Order, error)
	ListOrders(caller model.Caller, status model.OrderStatus) ([]model.Order, error)
	Transition(caller model.Caller, orderID uint, action model.OrderAction) (*model.Order, error)
	UpdatePaymentStatus(caller model.Caller, orderID uint, status model.PaymentStatus) error
}

type orderService struct {
	orderRepo    repository.OrderRepository
	cartRepo     repository.CartRepository
	userRepo     repository.UserRepository
	notification NotificationService
	db           *gorm.DB
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	userRepo repository.UserRepository,
	notification NotificationService,
	db *gorm.DB,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		cartRepo:     cartRepo,
		userRepo:     userRepo,
		notification: notification,
		db:           db,
	}
}

// Checkout converts the user's cart into an order in a single transaction.
// The cart row is locked so two concurrent checkouts cannot both consume the
// same lines. Line prices are the prices captured when the product was added
// to the cart. On success the cart is left empty.
func (s *orderService) Checkout(userID uint, paymentMethod model.PaymentMethod, shippingAddress string) (*model.Order, error) {
	logger.Info("Starting checkout", map[string]interface{}{
		"user_id":        userID,
		"payment_method": paymentMethod,
	})

	if paymentMethod != model.PaymentMethodCOD && paymentMethod != model.PaymentMethodTransfer {
		logger.Warn("Checkout failed: invalid payment method", map[string]interface{}{
			"user_id":        userID,
			"payment_method": paymentMethod,
		})
		return nil, ErrInvalidPaymentMethod
	}
	if shippingAddress == "" {
		logger.Warn("Checkout failed: missing shipping address", map[string]interface{}{
			"user_id": userID,
		})
		return nil, ErrMissingAddress
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during checkout, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"user_id": userID,
			})
		}
	}()

	var cart model.Cart
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&cart).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Checkout failed: cart is empty", map[string]interface{}{
				"user_id": userID,
			})
			return nil, ErrEmptyCart
		}
		logger.Error("Failed to lock cart during checkout", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	var lines []model.CartLine
	if err := tx.Preload("Product").Where("cart_id = ?", cart.ID).
		Order("id").Find(&lines).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to fetch cart lines during checkout", err, map[string]interface{}{
			"user_id": userID,
			"cart_id": cart.ID,
		})
		return nil, err
	}

	if len(lines) == 0 {
		tx.Rollback()
		logger.Warn("Checkout failed: cart is empty", map[string]interface{}{
			"user_id": userID,
			"cart_id": cart.ID,
		})
		return nil, ErrEmptyCart
	}

	var (
		total      float64
		orderLines []model.OrderLine
	)
	for _, line := range lines {
		name := ""
		if line.Product != nil {
			name = line.Product.Name
		}

		total += line.Subtotal()
		orderLines = append(orderLines, model.OrderLine{
			ProductID:     &line.ProductID,
			NameSnapshot:  name,
			PriceSnapshot: line.PriceAtAdd,
			Quantity:      line.Quantity,
		})
	}

	order := &model.Order{
		UserID:          &userID,
		Status:          model.OrderStatusNew,
		Total:           total,
		PaymentMethod:   paymentMethod,
		PaymentStatus:   model.PaymentStatusPending,
		ShippingAddress: shippingAddress,
		Lines:           orderLines,
	}

	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create order during checkout", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	if err := tx.Where("cart_id = ?", cart.ID).Delete(&model.CartLine{}).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to clear cart during checkout", err, map[string]interface{}{
			"user_id": userID,
			"cart_id": cart.ID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit checkout transaction", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("Checkout completed", map[string]interface{}{
		"user_id":    userID,
		"order_id":   order.ID,
		"total":      total,
		"line_count": len(orderLines),
	})

	// Confirmation mail happens outside the transaction and never fails
	// the checkout
	if s.notification != nil {
		if user, err := s.userRepo.FindByID(userID); err == nil {
			s.notification.SendOrderConfirmation(user, order)
		}
	}

	return order, nil
}

func (s *orderService) GetUserOrders(userID uint) ([]model.Order, error) {
	return s.orderRepo.FindByUserID(userID)
}

func (s *orderService) GetOrderByID(caller model.Caller, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	// Admins may inspect any order, users only their own
	if !caller.IsAdmin() {
		if order.UserID == nil || *order.UserID != caller.UserID {
			return nil, ErrNotOrderOwner
		}
	}
	return order, nil
}

func (s *orderService) ListOrders(caller model.Caller, status model.OrderStatus) ([]model.Order, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.orderRepo.FindAll(status)
}

// Transition applies an admin action to an order. The status update is
// conditional on the status the decision was made against, so two admins
// acting at once cannot double-apply a transition.
func (s *orderService) Transition(caller model.Caller, orderID uint, action model.OrderAction) (*model.Order, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbidden
	}

	logger.Info("Applying order action", map[string]interface{}{
		"order_id": orderID,
		"action":   action,
		"admin_id": caller.UserID,
	})

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	next, known, allowed := model.NextStatus(order.Status, action)
	if !known {
		logger.Warn("Unknown order action", map[string]interface{}{
			"order_id": orderID,
			"action":   action,
		})
		return nil, ErrInvalidAction
	}
	if !allowed {
		logger.Warn("Order action rejected for current status", map[string]interface{}{
			"order_id": orderID,
			"action":   action,
			"status":   order.Status,
		})
		return nil, ErrIllegalTransition
	}

	// Cash on delivery settles on completion and is voided on cancellation.
	// The payment change rides on the same conditional update as the status
	// change, so both land or neither does.
	var payment model.PaymentStatus
	if order.PaymentMethod == model.PaymentMethodCOD && order.PaymentStatus == model.PaymentStatusPending {
		switch next {
		case model.OrderStatusCompleted:
			payment = model.PaymentStatusPaid
		case model.OrderStatusCancelled:
			payment = model.PaymentStatusCancelled
		}
	}

	applied, err := s.orderRepo.UpdateStatusConditional(orderID, order.Status, next, payment)
	if err != nil {
		return nil, err
	}
	if !applied {
		logger.Warn("Order status changed concurrently, action rejected", map[string]interface{}{
			"order_id": orderID,
			"action":   action,
		})
		return nil, ErrIllegalTransition
	}

	updated, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		return nil, err
	}

	logger.Info("Order action applied", map[string]interface{}{
		"order_id": orderID,
		"action":   action,
		"from":     order.Status,
		"to":       updated.Status,
	})

	if s.notification != nil && updated.UserID != nil {
		if user, err := s.userRepo.FindByID(*updated.UserID); err == nil {
			s.notification.SendOrderStatusUpdate(user, updated)
		}
	}

	return updated, nil
}

func (s *orderService) UpdatePaymentStatus(caller model.Caller, orderID uint, status model.PaymentStatus) error {
	if !caller.IsAdmin() {
		return ErrForbidden
	}

	switch status {
	case model.PaymentStatusPending, model.PaymentStatusPaid, model.PaymentStatusCancelled:
	default:
		return fmt.Errorf("invalid payment status: %s", status)
	}

	if _, err := s.orderRepo.FindByID(orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}

	return s.orderRepo.UpdatePaymentStatus(orderID, status)
}
