package service

import (
	"testing"

	"github.com/prasetyo/tokobarang-backend/internal/app/model"
	"github.com/prasetyo/tokobarang-backend/internal/app/repository"
	"github.com/prasetyo/tokobarang-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCartServiceTest(t *testing.T) (CartService, *gorm.DB, *model.User, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	cartService := NewCartService(cartRepo, productRepo)

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

	return cartService, testDB, user, product
}

func TestCartService_AddToCart_CreatesCartLazily(t *testing.T) {
	cartService, testDB, user, product := setupCartServiceTest(t)

	line, err := cartService.AddToCart(user.ID, product.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, float64(10000), line.PriceAtAdd)

	var cart model.Cart
	require.NoError(t, testDB.Where("user_id = ?", user.ID).First(&cart).Error)
	assert.Equal(t, cart.ID, line.CartID)
}

func TestCartService_AddToCart_DuplicateIncreasesQuantity(t *testing.T) {
	cartService, testDB, user, product := setupCartServiceTest(t)

	_, err := cartService.AddToCart(user.ID, product.ID, 2)
	require.NoError(t, err)

	line, err := cartService.AddToCart(user.ID, product.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, line.Quantity)

	// Still a single line for the product
	var count int64
	testDB.Model(&model.CartLine{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCartService_AddToCart_PriceFrozenAtAddTime(t *testing.T) {
	cartService, testDB, user, product := setupCartServiceTest(t)

	line, err := cartService.AddToCart(user.ID, product.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, float64(10000), line.PriceAtAdd)

	// Catalog price change must not touch the captured price
	product.Price = 17500
	require.NoError(t, testDB.Save(product).Error)

	summary, err := cartService.GetCart(user.ID)
	require.NoError(t, err)
	require.Len(t, summary.Lines, 1)
	assert.Equal(t, float64(10000), summary.Lines[0].PriceAtAdd)
	assert.Equal(t, float64(10000), summary.Total)
}

func TestCartService_AddToCart_ProductNotFound(t *testing.T) {
	cartService, _, user, _ := setupCartServiceTest(t)

	line, err := cartService.AddToCart(user.ID, 9999, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Nil(t, line)
}

func TestCartService_AddToCart_InvalidQuantity(t *testing.T) {
	cartService, _, user, product := setupCartServiceTest(t)

	line, err := cartService.AddToCart(user.ID, product.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Nil(t, line)
}

func TestCartService_GetCart_EmptyWithoutCartRow(t *testing.T) {
	cartService, _, user, _ := setupCartServiceTest(t)

	summary, err := cartService.GetCart(user.ID)
	require.NoError(t, err)
	assert.Empty(t, summary.Lines)
	assert.Zero(t, summary.Total)
}

func TestCartService_GetCart_TotalFromCapturedPrices(t *testing.T) {
	cartService, testDB, user, product := setupCartServiceTest(t)

	second := &model.Product{Name: "Teh Melati", Price: 25000}
	require.NoError(t, testDB.Create(second).Error)

	_, err := cartService.AddToCart(user.ID, product.ID, 2)
	require.NoError(t, err)
	_, err = cartService.AddToCart(user.ID, second.ID, 1)
	require.NoError(t, err)

	summary, err := cartService.GetCart(user.ID)
	require.NoError(t, err)
	assert.Len(t, summary.Lines, 2)
	assert.Equal(t, float64(45000), summary.Total)
}

func TestCartService_GetCart_LinesCarryProduct(t *testing.T) {
	cartService, _, user, product := setupCartServiceTest(t)

	_, err := cartService.AddToCart(user.ID, product.ID, 1)
	require.NoError(t, err)

	summary, err := cartService.GetCart(user.ID)
	require.NoError(t, err)
	require.Len(t, summary.Lines, 1)
	require.NotNil(t, summary.Lines[0].Product)
	assert.Equal(t, product.Name, summary.Lines[0].Product.Name)
}

func TestCartService_UpdateLine_ZeroQuantityRemoves(t *testing.T) {
	cartService, testDB, user, product := setupCartServiceTest(t)

	line, err := cartService.AddToCart(user.ID, product.ID, 2)
	require.NoError(t, err)

	updated, err := cartService.UpdateLine(user.ID, line.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, updated)

	var count int64
	testDB.Model(&model.CartLine{}).Count(&count)
	assert.Zero(t, count)
}

func TestCartService_UpdateLine_SetsQuantity(t *testing.T) {
	cartService, _, user, product := setupCartServiceTest(t)

	line, err := cartService.AddToCart(user.ID, product.ID, 2)
	require.NoError(t, err)

	updated, err := cartService.UpdateLine(user.ID, line.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, updated.Quantity)
	// Captured price stays put
	assert.Equal(t, float64(10000), updated.PriceAtAdd)
}

func TestCartService_UpdateLine_OwnershipEnforced(t *testing.T) {
	cartService, testDB, user, product := setupCartServiceTest(t)

	line, err := cartService.AddToCart(user.ID, product.ID, 2)
	require.NoError(t, err)

	other := &model.User{
		Username:     "siti",
		Email:        "siti@example.com",
		PasswordHash: "hash",
		Name:         "Siti Rahma",
		Role:         model.RoleUser,
	}
	require.NoError(t, testDB.Create(other).Error)

	_, err = cartService.UpdateLine(other.ID, line.ID, 5)
	assert.ErrorIs(t, err, ErrNotLineOwner)

	err = cartService.RemoveLine(other.ID, line.ID)
	assert.ErrorIs(t, err, ErrNotLineOwner)
}

func TestCartService_RemoveLine(t *testing.T) {
	cartService, testDB, user, product := setupCartServiceTest(t)

	line, err := cartService.AddToCart(user.ID, product.ID, 1)
	require.NoError(t, err)

	require.NoError(t, cartService.RemoveLine(user.ID, line.ID))

	var count int64
	testDB.Model(&model.CartLine{}).Count(&count)
	assert.Zero(t, count)

	err = cartService.RemoveLine(user.ID, line.ID)
	assert.ErrorIs(t, err, ErrCartLineNotFound)
}

func TestCartService_ClearCart(t *testing.T) {
	cartService, testDB, user, product := setupCartServiceTest(t)

	_, err := cartService.AddToCart(user.ID, product.ID, 2)
	require.NoError(t, err)

	require.NoError(t, cartService.ClearCart(user.ID))

	var count int64
	testDB.Model(&model.CartLine{}).Count(&count)
	assert.Zero(t, count)

	// Clearing a user without a cart is a no-op
	require.NoError(t, cartService.ClearCart(4242))
}
