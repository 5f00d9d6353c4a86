package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prasetyo/tokobarang-backend/internal/app/service"
	apperrors "github.com/prasetyo/tokobarang-backend/internal/errors"
	"github.com/prasetyo/tokobarang-backend/internal/middleware"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

type CreateProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Price       float64 `json:"price" binding:"required,gte=0"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url"` // S3 URL from upload API
}

type UpdateProductRequest struct {
	Name        string   `json:"name"`
	Price       *float64 `json:"price"`
	Description *string  `json:"description"`
	ImageURL    *string  `json:"image_url"`
}

// GetProducts returns the catalog, optionally filtered by keyword
// GET /api/v1/products
func (ctrl *ProductController) GetProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	keyword := c.Query("q")
	products, err := ctrl.productService.GetAllProducts(keyword)
	if err != nil {
		log.Error("Failed to list products", err, map[string]interface{}{
			"keyword": keyword,
		})
		apperrors.InternalError(c, "Terjadi kesalahan pada server. Coba lagi nanti")
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProduct returns one product
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "ID barang tidak valid")
		return
	}

	product, err := ctrl.productService.GetProductByID(id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Barang tidak ditemukan")
			return
		}
		log.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		apperrors.InternalError(c, "Terjadi kesalahan pada server. Coba lagi nanti")
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// CreateProduct adds a product to the catalog (admin only)
// POST /api/v1/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	caller, ok := middleware.GetCaller(c)
	if !ok {
		apperrors.Unauthorized(c, "Silakan login terlebih dahulu")
		return
	}

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid product creation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Data barang tidak valid")
		return
	}

	product, err := ctrl.productService.CreateProduct(caller, req.Name, req.Price, req.Description, req.ImageURL)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			apperrors.Forbidden(c, "Akses tidak diizinkan")
		case errors.Is(err, service.ErrInvalidPrice):
			apperrors.BadRequest(c, apperrors.ProductInvalidPrice, "Harga barang tidak valid")
		default:
			log.Error("Failed to create product", err, map[string]interface{}{
				"name": req.Name,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "product")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Barang berhasil ditambahkan",
		"product": product,
	})
}

// UpdateProduct applies a partial update to a product (admin only)
// PUT /api/v1/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	caller, ok := middleware.GetCaller(c)
	if !ok {
		apperrors.Unauthorized(c, "Silakan login terlebih dahulu")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "ID barang tidak valid")
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Data barang tidak valid")
		return
	}

	product, err := ctrl.productService.UpdateProduct(caller, id, req.Name, req.Price, req.Description, req.ImageURL)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			apperrors.Forbidden(c, "Akses tidak diizinkan")
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "Barang tidak ditemukan")
		case errors.Is(err, service.ErrInvalidPrice):
			apperrors.BadRequest(c, apperrors.ProductInvalidPrice, "Harga barang tidak valid")
		default:
			log.Error("Failed to update product", err, map[string]interface{}{
				"product_id": id,
			})
			apperrors.InternalError(c, "Terjadi kesalahan pada server. Coba lagi nanti")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Barang berhasil diperbarui",
		"product": product,
	})
}

// DeleteProduct removes a product from the catalog (admin only)
// DELETE /api/v1/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	caller, ok := middleware.GetCaller(c)
	if !ok {
		apperrors.Unauthorized(c, "Silakan login terlebih dahulu")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "ID barang tidak valid")
		return
	}

	if err := ctrl.productService.DeleteProduct(caller, id); err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			apperrors.Forbidden(c, "Akses tidak diizinkan")
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "Barang tidak ditemukan")
		default:
			log.Error("Failed to delete product", err, map[string]interface{}{
				"product_id": id,
			})
			apperrors.InternalError(c, "Terjadi kesalahan pada server. Coba lagi nanti")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Barang berhasil dihapus"})
}
