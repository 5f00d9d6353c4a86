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

func setupProductServiceTest(t *testing.T) (ProductService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	productRepo := repository.NewProductRepository(testDB)
	return NewProductService(productRepo), testDB
}

func TestProductService_CreateProduct(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	product, err := productService.CreateProduct(adminCaller(), "Kopi Arabika", 10000, "Kopi asli Gayo", "https://cdn.example.com/kopi.jpg")
	require.NoError(t, err)
	assert.NotZero(t, product.ID)
	assert.Equal(t, "Kopi Arabika", product.Name)
	assert.Equal(t, float64(10000), product.Price)
}

func TestProductService_CreateProduct_AdminOnly(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	caller := model.Caller{UserID: 1, Role: model.RoleUser}
	product, err := productService.CreateProduct(caller, "Kopi Arabika", 10000, "", "")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Nil(t, product)
}

func TestProductService_CreateProduct_NegativePrice(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	product, err := productService.CreateProduct(adminCaller(), "Kopi Arabika", -1, "", "")
	assert.ErrorIs(t, err, ErrInvalidPrice)
	assert.Nil(t, product)
}

func TestProductService_UpdateProduct_PartialFields(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	product, err := productService.CreateProduct(adminCaller(), "Kopi Arabika", 10000, "Kopi asli", "https://cdn.example.com/kopi.jpg")
	require.NoError(t, err)

	newPrice := 12500.0
	updated, err := productService.UpdateProduct(adminCaller(), product.ID, "", &newPrice, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, float64(12500), updated.Price)
	// Untouched fields survive
	assert.Equal(t, "Kopi Arabika", updated.Name)
	assert.Equal(t, "Kopi asli", updated.Description)
	assert.Equal(t, "https://cdn.example.com/kopi.jpg", updated.ImageURL)
}

func TestProductService_UpdateProduct_NotFound(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	updated, err := productService.UpdateProduct(adminCaller(), 9999, "Baru", nil, nil, nil)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Nil(t, updated)
}

func TestProductService_DeleteProduct_RemovesCartLines(t *testing.T) {
	productService, testDB := setupProductServiceTest(t)

	product, err := productService.CreateProduct(adminCaller(), "Kopi Arabika", 10000, "", "")
	require.NoError(t, err)

	user := &model.User{
		Username:     "budi",
		Email:        "budi@example.com",
		PasswordHash: "hash",
		Name:         "Budi Santoso",
		Role:         model.RoleUser,
	}
	require.NoError(t, testDB.Create(user).Error)
	cart := &model.Cart{UserID: user.ID}
	require.NoError(t, testDB.Create(cart).Error)
	require.NoError(t, testDB.Create(&model.CartLine{
		CartID:     cart.ID,
		ProductID:  product.ID,
		Quantity:   1,
		PriceAtAdd: 10000,
	}).Error)

	require.NoError(t, productService.DeleteProduct(adminCaller(), product.ID))

	var lines int64
	testDB.Model(&model.CartLine{}).Count(&lines)
	assert.Zero(t, lines)

	_, err = productService.GetProductByID(product.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_Search(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	_, err := productService.CreateProduct(adminCaller(), "Kopi Arabika", 10000, "", "")
	require.NoError(t, err)
	_, err = productService.CreateProduct(adminCaller(), "Kopi Robusta", 8000, "", "")
	require.NoError(t, err)
	_, err = productService.CreateProduct(adminCaller(), "Teh Melati", 25000, "", "")
	require.NoError(t, err)

	all, err := productService.GetAllProducts("")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	kopi, err := productService.GetAllProducts("Kopi")
	require.NoError(t, err)
	assert.Len(t, kopi, 2)

	none, err := productService.GetAllProducts("Susu")
	require.NoError(t, err)
	assert.Empty(t, none)
}
