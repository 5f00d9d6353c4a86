package service

import (
	"errors"

	"github.com/prasetyo/tokobarang-backend/internal/app/model"
	"github.com/prasetyo/tokobarang-backend/internal/app/repository"
	"github.com/prasetyo/tokobarang-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCartLineNotFound = errors.New("cart line not found")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
	ErrNotLineOwner     = errors.New("cart line belongs to another user")
)

// CartSummary is a cart with its lines and the running total. The total is
// computed from the captured prices, not the live product prices.
type CartSummary struct {
	CartID uint             `json:"cart_id"`
	Lines  []model.CartLine `json:"items"`
	Total  float64          `json:"total"`
}

type CartService interface {
	GetCart(userID uint) (*CartSummary, error)
	AddToCart(userID, productID uint, quantity int) (*model.CartLine, error)
	UpdateLine(userID, lineID uint, quantity int) (*model.CartLine, error)
	RemoveLine(userID, lineID uint) error
	ClearCart(userID uint) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func (s *cartService) GetCart(userID uint) (*CartSummary, error) {
	cart, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No cart yet means an empty cart, not an error
			return &CartSummary{Lines: []model.CartLine{}}, nil
		}
		return nil, err
	}

	lines, err := s.cartRepo.FindLines(cart.ID)
	if err != nil {
		return nil, err
	}

	var total float64
	for _, line := range lines {
		total += line.Subtotal()
	}

	return &CartSummary{
		CartID: cart.ID,
		Lines:  lines,
		Total:  total,
	}, nil
}

// AddToCart puts a product into the user's cart, capturing the current
// product price. Adding a product that is already in the cart increases the
// quantity and keeps the originally captured price.
func (s *cartService) AddToCart(userID, productID uint, quantity int) (*model.CartLine, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	cart, err := s.cartRepo.FindOrCreateByUserID(userID)
	if err != nil {
		return nil, err
	}

	line, err := s.cartRepo.FindLine(cart.ID, productID)
	if err == nil {
		line.Quantity += quantity
		if err := s.cartRepo.UpdateLine(line); err != nil {
			return nil, err
		}

		logger.Info("Cart line quantity increased", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
			"quantity":   line.Quantity,
		})
		return line, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	line = &model.CartLine{
		CartID:     cart.ID,
		ProductID:  productID,
		Quantity:   quantity,
		PriceAtAdd: product.Price,
	}
	if err := s.cartRepo.CreateLine(line); err != nil {
		return nil, err
	}

	logger.Info("Product added to cart", map[string]interface{}{
		"user_id":      userID,
		"product_id":   productID,
		"quantity":     quantity,
		"price_at_add": line.PriceAtAdd,
	})
	return line, nil
}

// UpdateLine sets a line's quantity. A quantity of zero or less removes the
// line from the cart.
func (s *cartService) UpdateLine(userID, lineID uint, quantity int) (*model.CartLine, error) {
	line, err := s.findOwnedLine(userID, lineID)
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		if err := s.cartRepo.DeleteLine(line.ID); err != nil {
			return nil, err
		}
		logger.Info("Cart line removed via zero quantity", map[string]interface{}{
			"user_id": userID,
			"line_id": lineID,
		})
		return nil, nil
	}

	line.Quantity = quantity
	if err := s.cartRepo.UpdateLine(line); err != nil {
		return nil, err
	}

	logger.Info("Cart line updated", map[string]interface{}{
		"user_id":  userID,
		"line_id":  lineID,
		"quantity": quantity,
	})
	return line, nil
}

func (s *cartService) RemoveLine(userID, lineID uint) error {
	line, err := s.findOwnedLine(userID, lineID)
	if err != nil {
		return err
	}

	if err := s.cartRepo.DeleteLine(line.ID); err != nil {
		return err
	}

	logger.Info("Cart line removed", map[string]interface{}{
		"user_id": userID,
		"line_id": lineID,
	})
	return nil
}

func (s *cartService) ClearCart(userID uint) error {
	cart, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if err := s.cartRepo.DeleteLines(cart.ID); err != nil {
		return err
	}

	logger.Info("Cart cleared", map[string]interface{}{
		"user_id": userID,
		"cart_id": cart.ID,
	})
	return nil
}

func (s *cartService) findOwnedLine(userID, lineID uint) (*model.CartLine, error) {
	line, err := s.cartRepo.FindLineByID(lineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartLineNotFound
		}
		return nil, err
	}
	if line.Cart == nil || line.Cart.UserID != userID {
		return nil, ErrNotLineOwner
	}
	return line, nil
}
