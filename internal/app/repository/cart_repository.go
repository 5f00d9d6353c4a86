package repository

import (
	"github.com/prasetyo/tokobarang-backend/internal/app/model"
	"github.com/prasetyo/tokobarang-backend/pkg/logger"
	"gorm.io/gorm"
)

type CartRepository interface {
	FindByUserID(userID uint) (*model.Cart, error)
	FindOrCreateByUserID(userID uint) (*model.Cart, error)
	FindLines(cartID uint) ([]model.CartLine, error)
	FindLine(cartID, productID uint) (*model.CartLine, error)
	FindLineByID(lineID uint) (*model.CartLine, error)
	CreateLine(line *model.CartLine) error
	UpdateLine(line *model.CartLine) error
	DeleteLine(lineID uint) error
	DeleteLines(cartID uint) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) FindByUserID(userID uint) (*model.Cart, error) {
	var cart model.Cart
	if err := r.db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindOrCreateByUserID returns the user's cart, creating an empty one the
// first time anything is added. Each user has at most one cart.
func (r *cartRepository) FindOrCreateByUserID(userID uint) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.Where("user_id = ?", userID).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if err != gorm.ErrRecordNotFound {
		logger.Error("Failed to find cart in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	cart = model.Cart{UserID: userID}
	if err := r.db.Create(&cart).Error; err != nil {
		logger.Error("Failed to create cart in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Cart created in database", map[string]interface{}{
		"cart_id": cart.ID,
		"user_id": userID,
	})
	return &cart, nil
}

func (r *cartRepository) FindLines(cartID uint) ([]model.CartLine, error) {
	var lines []model.CartLine
	if err := r.db.Preload("Product").Where("cart_id = ?", cartID).
		Order("id").Find(&lines).Error; err != nil {
		logger.Error("Failed to list cart lines in database", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return nil, err
	}
	return lines, nil
}

func (r *cartRepository) FindLine(cartID, productID uint) (*model.CartLine, error) {
	var line model.CartLine
	if err := r.db.Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&line).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *cartRepository) FindLineByID(lineID uint) (*model.CartLine, error) {
	var line model.CartLine
	if err := r.db.Preload("Cart").First(&line, lineID).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *cartRepository) CreateLine(line *model.CartLine) error {
	logger.Debug("Creating cart line in database", map[string]interface{}{
		"cart_id":      line.CartID,
		"product_id":   line.ProductID,
		"quantity":     line.Quantity,
		"price_at_add": line.PriceAtAdd,
	})

	if err := r.db.Create(line).Error; err != nil {
		logger.Error("Failed to create cart line in database", err, map[string]interface{}{
			"cart_id":    line.CartID,
			"product_id": line.ProductID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) UpdateLine(line *model.CartLine) error {
	if err := r.db.Save(line).Error; err != nil {
		logger.Error("Failed to update cart line in database", err, map[string]interface{}{
			"line_id": line.ID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) DeleteLine(lineID uint) error {
	if err := r.db.Delete(&model.CartLine{}, lineID).Error; err != nil {
		logger.Error("Failed to delete cart line from database", err, map[string]interface{}{
			"line_id": lineID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) DeleteLines(cartID uint) error {
	if err := r.db.Where("cart_id = ?", cartID).Delete(&model.CartLine{}).Error; err != nil {
		logger.Error("Failed to clear cart lines in database", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return err
	}
	return nil
}
