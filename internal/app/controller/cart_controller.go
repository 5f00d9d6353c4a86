package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prasetyo/tokobarang-backend/internal/app/service"
	apperrors "github.com/prasetyo/tokobarang-backend/internal/errors"
	"github.com/prasetyo/tokobarang-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{cartService: cartService}
}

type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0"`
}

type UpdateCartLineRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// GetCart returns the caller's cart with its running total
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Silakan login terlebih dahulu")
		return
	}

	summary, err := ctrl.cartService.GetCart(userID)
	if err != nil {
		log.Error("Failed to fetch cart", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Terjadi kesalahan pada server. Coba lagi nanti")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// AddToCart puts a product into the caller's cart
// POST /api/v1/cart/items
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Silakan login terlebih dahulu")
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Data yang dimasukkan tidak valid")
		return
	}

	line, err := ctrl.cartService.AddToCart(userID, req.ProductID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "Barang tidak ditemukan")
		case errors.Is(err, service.ErrInvalidQuantity):
			apperrors.BadRequest(c, apperrors.CartInvalidQuantity, "Jumlah barang tidak valid")
		default:
			log.Error("Failed to add to cart", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": req.ProductID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "cart")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Barang berhasil ditambahkan ke keranjang",
		"item":    line,
	})
}

// UpdateCartLine sets a line's quantity, removing the line at zero
// PUT /api/v1/cart/items/:id
func (ctrl *CartController) UpdateCartLine(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Silakan login terlebih dahulu")
		return
	}

	lineID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "ID item tidak valid")
		return
	}

	var req UpdateCartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Data yang dimasukkan tidak valid")
		return
	}

	line, err := ctrl.cartService.UpdateLine(userID, lineID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCartLineNotFound):
			apperrors.NotFound(c, apperrors.CartLineNotFound, "Item keranjang tidak ditemukan")
		case errors.Is(err, service.ErrNotLineOwner):
			apperrors.Forbidden(c, "Akses tidak diizinkan")
		default:
			log.Error("Failed to update cart line", err, map[string]interface{}{
				"user_id": userID,
				"line_id": lineID,
			})
			apperrors.InternalError(c, "Terjadi kesalahan pada server. Coba lagi nanti")
		}
		return
	}

	if line == nil {
		c.JSON(http.StatusOK, gin.H{"message": "Item berhasil dihapus dari keranjang"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Keranjang berhasil diperbarui",
		"item":    line,
	})
}

// RemoveCartLine deletes a line from the caller's cart
// DELETE /api/v1/cart/items/:id
func (ctrl *CartController) RemoveCartLine(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Silakan login terlebih dahulu")
		return
	}

	lineID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "ID item tidak valid")
		return
	}

	if err := ctrl.cartService.RemoveLine(userID, lineID); err != nil {
		switch {
		case errors.Is(err, service.ErrCartLineNotFound):
			apperrors.NotFound(c, apperrors.CartLineNotFound, "Item keranjang tidak ditemukan")
		case errors.Is(err, service.ErrNotLineOwner):
			apperrors.Forbidden(c, "Akses tidak diizinkan")
		default:
			log.Error("Failed to remove cart line", err, map[string]interface{}{
				"user_id": userID,
				"line_id": lineID,
			})
			apperrors.InternalError(c, "Terjadi kesalahan pada server. Coba lagi nanti")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item berhasil dihapus dari keranjang"})
}

// ClearCart removes every line from the caller's cart
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Silakan login terlebih dahulu")
		return
	}

	if err := ctrl.cartService.ClearCart(userID); err != nil {
		log.Error("Failed to clear cart", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Terjadi kesalahan pada server. Coba lagi nanti")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Keranjang berhasil dikosongkan"})
}
