package service

import (
	"testing"
	"time"

	"github.com/prasetyo/tokobarang-backend/internal/app/model"
	"github.com/prasetyo/tokobarang-backend/internal/app/repository"
	"github.com/prasetyo/tokobarang-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "test-secret-key"

func setupAuthServiceTest(t *testing.T) (AuthService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	authService := NewAuthService(userRepo, testJWTSecret, 15*time.Minute, 7*24*time.Hour)

	return authService, testDB
}

func TestAuthService_Register_Success(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	user, tokens, err := authService.Register("budi", "budi@example.com", "rahasia123", "Budi Santoso", "0812000111")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "budi", user.Username)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.NotEqual(t, "rahasia123", user.PasswordHash)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, _, err := authService.Register("budi", "budi@example.com", "rahasia123", "Budi Santoso", "")
	require.NoError(t, err)

	_, _, err = authService.Register("budi", "other@example.com", "rahasia123", "Budi Kedua", "")
	assert.ErrorIs(t, err, ErrUsernameAlreadyExists)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, _, err := authService.Register("budi", "budi@example.com", "rahasia123", "Budi Santoso", "")
	require.NoError(t, err)

	_, _, err = authService.Register("budi2", "budi@example.com", "rahasia123", "Budi Kedua", "")
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestAuthService_Login(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, _, err := authService.Register("budi", "budi@example.com", "rahasia123", "Budi Santoso", "")
	require.NoError(t, err)

	user, tokens, err := authService.Login("budi", "rahasia123")
	require.NoError(t, err)
	assert.Equal(t, "budi", user.Username)
	assert.NotEmpty(t, tokens.AccessToken)

	_, _, err = authService.Login("budi", "salah")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = authService.Login("nobody", "rahasia123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_BootstrapAdmin_EmptyDatabase(t *testing.T) {
	authService, testDB := setupAuthServiceTest(t)

	require.NoError(t, authService.BootstrapAdmin("admin", "admin@example.com", "sangat-rahasia", "Administrator"))

	var admin model.User
	require.NoError(t, testDB.Where("username = ?", "admin").First(&admin).Error)
	assert.Equal(t, model.RoleAdmin, admin.Role)
}

func TestAuthService_BootstrapAdmin_SkippedWhenUsersExist(t *testing.T) {
	authService, testDB := setupAuthServiceTest(t)

	_, _, err := authService.Register("budi", "budi@example.com", "rahasia123", "Budi Santoso", "")
	require.NoError(t, err)

	// A later bootstrap must not add the admin account
	require.NoError(t, authService.BootstrapAdmin("admin", "admin@example.com", "sangat-rahasia", "Administrator"))

	var count int64
	testDB.Model(&model.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestAuthService_BootstrapAdmin_SkippedWhenUnconfigured(t *testing.T) {
	authService, testDB := setupAuthServiceTest(t)

	require.NoError(t, authService.BootstrapAdmin("", "", "", ""))

	var count int64
	testDB.Model(&model.User{}).Count(&count)
	assert.Zero(t, count)
}

func TestAuthService_UpdateRole(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	user, _, err := authService.Register("budi", "budi@example.com", "rahasia123", "Budi Santoso", "")
	require.NoError(t, err)

	admin := model.Caller{UserID: user.ID + 1, Role: model.RoleAdmin}

	updated, err := authService.UpdateRole(admin, user.ID, model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, updated.Role)

	// Non-admin callers are rejected
	_, err = authService.UpdateRole(model.Caller{UserID: user.ID, Role: model.RoleUser}, user.ID, model.RoleAdmin)
	assert.ErrorIs(t, err, ErrForbidden)

	// Unknown roles are rejected
	_, err = authService.UpdateRole(admin, user.ID, model.UserRole("superuser"))
	assert.ErrorIs(t, err, ErrInvalidRole)

	// Admins cannot change their own role
	_, err = authService.UpdateRole(model.Caller{UserID: user.ID, Role: model.RoleAdmin}, user.ID, model.RoleUser)
	assert.ErrorIs(t, err, ErrSelfDemotion)
}

func TestAuthService_DeleteUser_CascadesCart(t *testing.T) {
	authService, testDB := setupAuthServiceTest(t)

	user, _, err := authService.Register("budi", "budi@example.com", "rahasia123", "Budi Santoso", "")
	require.NoError(t, err)

	product := &model.Product{Name: "Kopi Arabika", Price: 10000}
	require.NoError(t, testDB.Create(product).Error)

	cart := &model.Cart{UserID: user.ID}
	require.NoError(t, testDB.Create(cart).Error)
	require.NoError(t, testDB.Create(&model.CartLine{
		CartID:     cart.ID,
		ProductID:  product.ID,
		Quantity:   1,
		PriceAtAdd: 10000,
	}).Error)

	admin := model.Caller{UserID: user.ID + 1, Role: model.RoleAdmin}
	require.NoError(t, authService.DeleteUser(admin, user.ID))

	var carts, lines int64
	testDB.Model(&model.Cart{}).Count(&carts)
	testDB.Model(&model.CartLine{}).Count(&lines)
	assert.Zero(t, carts)
	assert.Zero(t, lines)
}

func TestAuthService_DeleteUser_OrdersKeepHistory(t *testing.T) {
	authService, testDB := setupAuthServiceTest(t)

	user, _, err := authService.Register("budi", "budi@example.com", "rahasia123", "Budi Santoso", "")
	require.NoError(t, err)

	order := &model.Order{
		UserID:          &user.ID,
		Status:          model.OrderStatusNew,
		Total:           45000,
		PaymentMethod:   model.PaymentMethodCOD,
		PaymentStatus:   model.PaymentStatusPending,
		ShippingAddress: "Jl. Merdeka 1",
	}
	require.NoError(t, testDB.Create(order).Error)

	admin := model.Caller{UserID: user.ID + 1, Role: model.RoleAdmin}
	require.NoError(t, authService.DeleteUser(admin, user.ID))

	var stored model.Order
	require.NoError(t, testDB.First(&stored, order.ID).Error)
	assert.Nil(t, stored.UserID)
	assert.Equal(t, float64(45000), stored.Total)
}
