package controller

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prasetyo/tokobarang-backend/internal/app/model"
	"github.com/prasetyo/tokobarang-backend/internal/app/service"
	apperrors "github.com/prasetyo/tokobarang-backend/internal/errors"
	"github.com/prasetyo/tokobarang-backend/internal/middleware"
	"github.com/xuri/excelize/v2"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

type CheckoutRequest struct {
	PaymentMethod   string `json:"payment_method" binding:"required"`
	ShippingAddress string `json:"shipping_address" binding:"required"`
}

type OrderActionRequest struct {
	Action string `json:"action" binding:"required"`
}

type UpdatePaymentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Checkout converts the caller's cart into an order
// POST /api/v1/orders/checkout
func (ctrl *OrderController) Checkout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Silakan login terlebih dahulu")
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid checkout request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Data yang dimasukkan tidak valid")
		return
	}

	order, err := ctrl.orderService.Checkout(userID, model.PaymentMethod(req.PaymentMethod), req.ShippingAddress)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			apperrors.BadRequest(c, apperrors.CartEmpty, "Keranjang masih kosong")
		case errors.Is(err, service.ErrMissingAddress):
			apperrors.BadRequest(c, apperrors.OrderMissingAddress, "Alamat pengiriman wajib diisi")
		case errors.Is(err, service.ErrInvalidPaymentMethod):
			apperrors.BadRequest(c, apperrors.OrderInvalidPayment, "Metode pembayaran tidak valid")
		default:
			log.Error("Checkout failed", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "order")
		}
		return
	}

	log.Info("Checkout succeeded", map[string]interface{}{
		"user_id":  userID,
		"order_id": order.ID,
		"total":    order.Total,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Pesanan berhasil dibuat",
		"order":   order,
	})
}

// GetMyOrders lists the caller's orders, newest first
// GET /api/v1/orders
func (ctrl *OrderController) GetMyOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Silakan login terlebih dahulu")
		return
	}

	orders, err := ctrl.orderService.GetUserOrders(userID)
	if err != nil {
		log.Error("Failed to list orders", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Terjadi kesalahan pada server. Coba lagi nanti")
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetOrder returns one order, owners and admins only
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	caller, ok := middleware.GetCaller(c)
	if !ok {
		apperrors.Unauthorized(c, "Silakan login terlebih dahulu")
		return
	}

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "ID pesanan tidak valid")
		return
	}

	order, err := ctrl.orderService.GetOrderByID(caller, orderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "Pesanan tidak ditemukan")
		case errors.Is(err, service.ErrNotOrderOwner):
			apperrors.Forbidden(c, "Akses tidak diizinkan")
		default:
			log.Error("Failed to fetch order", err, map[string]interface{}{
				"order_id": orderID,
			})
			apperrors.InternalError(c, "Terjadi kesalahan pada server. Coba lagi nanti")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// ListOrders lists every order with an optional status filter (admin only)
// GET /api/v1/admin/orders?status=baru
func (ctrl *OrderController) ListOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	caller, ok := middleware.GetCaller(c)
	if !ok {
		apperrors.Unauthorized(c, "Silakan login terlebih dahulu")
		return
	}

	status := model.OrderStatus(c.Query("status"))
	orders, err := ctrl.orderService.ListOrders(caller, status)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			apperrors.Forbidden(c, "Akses tidak diizinkan")
			return
		}
		log.Error("Failed to list all orders", err, map[string]interface{}{
			"status": status,
		})
		apperrors.InternalError(c, "Terjadi kesalahan pada server. Coba lagi nanti")
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// ApplyAction applies a workflow action to an order (admin only)
// POST /api/v1/admin/orders/:id/action
func (ctrl *OrderController) ApplyAction(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	caller, ok := middleware.GetCaller(c)
	if !ok {
		apperrors.Unauthorized(c, "Silakan login terlebih dahulu")
		return
	}

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "ID pesanan tidak valid")
		return
	}

	var req OrderActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Data yang dimasukkan tidak valid")
		return
	}

	order, err := ctrl.orderService.Transition(caller, orderID, model.OrderAction(req.Action))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			apperrors.Forbidden(c, "Akses tidak diizinkan")
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "Pesanan tidak ditemukan")
		case errors.Is(err, service.ErrInvalidAction):
			apperrors.BadRequest(c, apperrors.OrderInvalidAction, "Aksi tidak dikenal")
		case errors.Is(err, service.ErrIllegalTransition):
			apperrors.Conflict(c, apperrors.OrderIllegalTransition, "Aksi tidak diizinkan untuk status pesanan saat ini")
		default:
			log.Error("Failed to apply order action", err, map[string]interface{}{
				"order_id": orderID,
				"action":   req.Action,
			})
			apperrors.InternalError(c, "Terjadi kesalahan pada server. Coba lagi nanti")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Status pesanan berhasil diperbarui",
		"order":   order,
	})
}

// UpdatePaymentStatus sets an order's payment status (admin only)
// PUT /api/v1/admin/orders/:id/payment
func (ctrl *OrderController) UpdatePaymentStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	caller, ok := middleware.GetCaller(c)
	if !ok {
		apperrors.Unauthorized(c, "Silakan login terlebih dahulu")
		return
	}

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "ID pesanan tidak valid")
		return
	}

	var req UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Data yang dimasukkan tidak valid")
		return
	}

	if err := ctrl.orderService.UpdatePaymentStatus(caller, orderID, model.PaymentStatus(req.Status)); err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			apperrors.Forbidden(c, "Akses tidak diizinkan")
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "Pesanan tidak ditemukan")
		default:
			log.Error("Failed to update payment status", err, map[string]interface{}{
				"order_id": orderID,
			})
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Status pembayaran tidak valid")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Status pembayaran berhasil diperbarui"})
}

// ExportOrders streams all orders as an XLSX workbook (admin only)
// GET /api/v1/admin/orders/export
func (ctrl *OrderController) ExportOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	caller, ok := middleware.GetCaller(c)
	if !ok {
		apperrors.Unauthorized(c, "Silakan login terlebih dahulu")
		return
	}

	status := model.OrderStatus(c.Query("status"))
	orders, err := ctrl.orderService.ListOrders(caller, status)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			apperrors.Forbidden(c, "Akses tidak diizinkan")
			return
		}
		log.Error("Failed to load orders for export", err, nil)
		apperrors.InternalError(c, "Terjadi kesalahan pada server. Coba lagi nanti")
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Pesanan"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Pemesan", "Status", "Total", "Metode Pembayaran", "Status Pembayaran", "Alamat", "Tanggal"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, order := range orders {
		owner := ""
		if order.User != nil {
			owner = order.User.Username
		}
		values := []interface{}{
			order.ID,
			owner,
			string(order.Status),
			order.Total,
			string(order.PaymentMethod),
			string(order.PaymentStatus),
			order.ShippingAddress,
			order.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		log.Error("Failed to build orders workbook", err, nil)
		apperrors.InternalError(c, "Terjadi kesalahan pada server. Coba lagi nanti")
		return
	}

	filename := fmt.Sprintf("pesanan-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}
