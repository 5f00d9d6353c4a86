package service

import (
	"errors"

	"github.com/prasetyo/tokobarang-backend/internal/app/model"
	"github.com/prasetyo/tokobarang-backend/internal/app/repository"
	"github.com/prasetyo/tokobarang-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidPrice    = errors.New("price must not be negative")
)

type ProductService interface {
	GetAllProducts(keyword string) ([]model.Product, error)
	GetProductByID(id uint) (*model.Product, error)
	CreateProduct(caller model.Caller, name string, price float64, description, imageURL string) (*model.Product, error)
	UpdateProduct(caller model.Caller, id uint, name string, price *float64, description, imageURL *string) (*model.Product, error)
	DeleteProduct(caller model.Caller, id uint) error
}

type productService struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func (s *productService) GetAllProducts(keyword string) ([]model.Product, error) {
	if keyword != "" {
		return s.productRepo.Search(keyword)
	}
	return s.productRepo.FindAll()
}

func (s *productService) GetProductByID(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) CreateProduct(caller model.Caller, name string, price float64, description, imageURL string) (*model.Product, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	if price < 0 {
		return nil, ErrInvalidPrice
	}

	product := &model.Product{
		Name:        name,
		Price:       price,
		Description: description,
		ImageURL:    imageURL,
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"name":       name,
		"admin_id":   caller.UserID,
	})
	return product, nil
}

// UpdateProduct applies a partial update. Nil pointer fields are left
// untouched so a client can change the price without resending the image.
func (s *productService) UpdateProduct(caller model.Caller, id uint, name string, price *float64, description, imageURL *string) (*model.Product, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbidden
	}

	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if name != "" {
		product.Name = name
	}
	if price != nil {
		if *price < 0 {
			return nil, ErrInvalidPrice
		}
		product.Price = *price
	}
	if description != nil {
		product.Description = *description
	}
	if imageURL != nil {
		product.ImageURL = *imageURL
	}

	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}

	logger.Info("Product updated", map[string]interface{}{
		"product_id": product.ID,
		"admin_id":   caller.UserID,
	})
	return product, nil
}

func (s *productService) DeleteProduct(caller model.Caller, id uint) error {
	if !caller.IsAdmin() {
		return ErrForbidden
	}

	if _, err := s.productRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	if err := s.productRepo.Delete(id); err != nil {
		return err
	}

	logger.Info("Product deleted", map[string]interface{}{
		"product_id": id,
		"admin_id":   caller.UserID,
	})
	return nil
}
