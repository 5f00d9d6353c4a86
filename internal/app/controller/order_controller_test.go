package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prasetyo/tokobarang-backend/internal/app/model"
	"github.com/prasetyo/tokobarang-backend/internal/app/repository"
	"github.com/prasetyo/tokobarang-backend/internal/app/service"
	"github.com/prasetyo/tokobarang-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupOrderControllerTest(t *testing.T) (*OrderController, *gin.Engine, *gorm.DB, *model.User, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	orderRepo := repository.NewOrderRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)
	orderService := service.NewOrderService(orderRepo, cartRepo, userRepo, nil, testDB)
	orderController := NewOrderController(orderService)

	user := &model.User{
		Username:     "budi",
		Email:        "budi@example.com",
		PasswordHash: "hash",
		Name:         "Budi Santoso",
		Role:         model.RoleUser,
	}
	testDB.Create(user)

	product := &model.Product{
		Name:  "Kopi Arabika",
		Price: 10000,
	}
	testDB.Create(product)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	return orderController, router, testDB, user, product
}

// Injects the identity the auth middleware would have set
func asUser(userID uint, role model.UserRole, handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("user_role", role)
		handler(c)
	}
}

func seedCart(t *testing.T, testDB *gorm.DB, userID, productID uint, quantity int, price float64) {
	t.Helper()

	cart := &model.Cart{UserID: userID}
	require.NoError(t, testDB.Create(cart).Error)
	require.NoError(t, testDB.Create(&model.CartLine{
		CartID:     cart.ID,
		ProductID:  productID,
		Quantity:   quantity,
		PriceAtAdd: price,
	}).Error)
}

func TestOrderController_Checkout_Success(t *testing.T) {
	controller, router, testDB, user, product := setupOrderControllerTest(t)
	seedCart(t, testDB, user.ID, product.ID, 2, 10000)

	router.POST("/orders/checkout", asUser(user.ID, model.RoleUser, controller.Checkout))

	body, _ := json.Marshal(CheckoutRequest{
		PaymentMethod:   "COD",
		ShippingAddress: "Jl. Merdeka 1",
	})
	req := httptest.NewRequest(http.MethodPost, "/orders/checkout", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Order model.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(20000), resp.Order.Total)
	assert.Equal(t, model.OrderStatusNew, resp.Order.Status)
	assert.Equal(t, model.PaymentStatusPending, resp.Order.PaymentStatus)
}

func TestOrderController_Checkout_EmptyCart(t *testing.T) {
	controller, router, _, user, _ := setupOrderControllerTest(t)

	router.POST("/orders/checkout", asUser(user.ID, model.RoleUser, controller.Checkout))

	body, _ := json.Marshal(CheckoutRequest{
		PaymentMethod:   "COD",
		ShippingAddress: "Jl. Merdeka 1",
	})
	req := httptest.NewRequest(http.MethodPost, "/orders/checkout", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "CART_EMPTY")
}

func TestOrderController_Checkout_InvalidPaymentMethod(t *testing.T) {
	controller, router, testDB, user, product := setupOrderControllerTest(t)
	seedCart(t, testDB, user.ID, product.ID, 1, 10000)

	router.POST("/orders/checkout", asUser(user.ID, model.RoleUser, controller.Checkout))

	body, _ := json.Marshal(CheckoutRequest{
		PaymentMethod:   "PULSA",
		ShippingAddress: "Jl. Merdeka 1",
	})
	req := httptest.NewRequest(http.MethodPost, "/orders/checkout", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ORDER_INVALID_PAYMENT_METHOD")
}

func TestOrderController_ApplyAction_Success(t *testing.T) {
	controller, router, testDB, user, product := setupOrderControllerTest(t)
	seedCart(t, testDB, user.ID, product.ID, 1, 10000)

	orderRepo := repository.NewOrderRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)
	orderService := service.NewOrderService(orderRepo, cartRepo, userRepo, nil, testDB)
	order, err := orderService.Checkout(user.ID, model.PaymentMethodCOD, "Jl. Merdeka 1")
	require.NoError(t, err)

	router.POST("/admin/orders/:id/action", asUser(99, model.RoleAdmin, controller.ApplyAction))

	body, _ := json.Marshal(OrderActionRequest{Action: "terima"})
	req := httptest.NewRequest(http.MethodPost, "/admin/orders/"+itoa(order.ID)+"/action", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "diproses")
}

func TestOrderController_ApplyAction_IllegalTransition(t *testing.T) {
	controller, router, testDB, user, product := setupOrderControllerTest(t)
	seedCart(t, testDB, user.ID, product.ID, 1, 10000)

	orderRepo := repository.NewOrderRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)
	orderService := service.NewOrderService(orderRepo, cartRepo, userRepo, nil, testDB)
	order, err := orderService.Checkout(user.ID, model.PaymentMethodCOD, "Jl. Merdeka 1")
	require.NoError(t, err)

	admin := model.Caller{UserID: 99, Role: model.RoleAdmin}
	_, err = orderService.Transition(admin, order.ID, model.ActionAccept)
	require.NoError(t, err)
	_, err = orderService.Transition(admin, order.ID, model.ActionComplete)
	require.NoError(t, err)

	router.POST("/admin/orders/:id/action", asUser(99, model.RoleAdmin, controller.ApplyAction))

	body, _ := json.Marshal(OrderActionRequest{Action: "batal"})
	req := httptest.NewRequest(http.MethodPost, "/admin/orders/"+itoa(order.ID)+"/action", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "ORDER_ILLEGAL_TRANSITION")
}

func TestOrderController_ApplyAction_UnknownAction(t *testing.T) {
	controller, router, testDB, user, product := setupOrderControllerTest(t)
	seedCart(t, testDB, user.ID, product.ID, 1, 10000)

	orderRepo := repository.NewOrderRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)
	orderService := service.NewOrderService(orderRepo, cartRepo, userRepo, nil, testDB)
	order, err := orderService.Checkout(user.ID, model.PaymentMethodCOD, "Jl. Merdeka 1")
	require.NoError(t, err)

	router.POST("/admin/orders/:id/action", asUser(99, model.RoleAdmin, controller.ApplyAction))

	body, _ := json.Marshal(OrderActionRequest{Action: "kirim"})
	req := httptest.NewRequest(http.MethodPost, "/admin/orders/"+itoa(order.ID)+"/action", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ORDER_INVALID_ACTION")
}

func TestOrderController_GetOrder_ForbiddenForOtherUser(t *testing.T) {
	controller, router, testDB, user, product := setupOrderControllerTest(t)
	seedCart(t, testDB, user.ID, product.ID, 1, 10000)

	orderRepo := repository.NewOrderRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)
	orderService := service.NewOrderService(orderRepo, cartRepo, userRepo, nil, testDB)
	order, err := orderService.Checkout(user.ID, model.PaymentMethodCOD, "Jl. Merdeka 1")
	require.NoError(t, err)

	router.GET("/orders/:id", asUser(user.ID+100, model.RoleUser, controller.GetOrder))

	req := httptest.NewRequest(http.MethodGet, "/orders/"+itoa(order.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOrderController_ExportOrders(t *testing.T) {
	controller, router, testDB, user, product := setupOrderControllerTest(t)
	seedCart(t, testDB, user.ID, product.ID, 2, 10000)

	orderRepo := repository.NewOrderRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)
	orderService := service.NewOrderService(orderRepo, cartRepo, userRepo, nil, testDB)
	_, err := orderService.Checkout(user.ID, model.PaymentMethodCOD, "Jl. Merdeka 1")
	require.NoError(t, err)

	router.GET("/admin/orders/export", asUser(99, model.RoleAdmin, controller.ExportOrders))

	req := httptest.NewRequest(http.MethodGet, "/admin/orders/export", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		w.Header().Get("Content-Type"))
	assert.NotZero(t, w.Body.Len())
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
