package model

import (
	"time"
)

// Cart is one-per-user, created lazily on the first add and never deleted;
// emptying a cart means deleting its lines.
type Cart struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	Lines []CartLine `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"lines,omitempty"`
}

func (Cart) TableName() string {
	return "carts"
}

// CartLine holds the quantity and the unit price captured when the product
// first entered the cart. PriceAtAdd is never refreshed from the live
// product price; a later catalog edit does not touch it.
type CartLine struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CartID     uint      `gorm:"not null;index;uniqueIndex:idx_cart_product" json:"cart_id"`
	ProductID  uint      `gorm:"not null;index;uniqueIndex:idx_cart_product" json:"product_id"`
	Quantity   int       `gorm:"not null;check:quantity > 0" json:"quantity"`
	PriceAtAdd float64   `gorm:"not null" json:"price_at_add"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Cart    *Cart    `gorm:"foreignKey:CartID" json:"-"`
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (CartLine) TableName() string {
	return "cart_lines"
}

// Subtotal is quantity times the captured unit price.
func (l CartLine) Subtotal() float64 {
	return float64(l.Quantity) * l.PriceAtAdd
}
