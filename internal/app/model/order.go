package model

import (
	"time"
)

type OrderStatus string
type PaymentStatus string
type PaymentMethod string
type OrderAction string

const (
	OrderStatusNew        OrderStatus = "baru"     // order received
	OrderStatusProcessing OrderStatus = "diproses" // accepted and being handled
	OrderStatusCompleted  OrderStatus = "selesai"  // fulfilled, terminal
	OrderStatusCancelled  OrderStatus = "batal"    // cancelled, terminal

	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusCancelled PaymentStatus = "cancelled"

	PaymentMethodCOD      PaymentMethod = "COD"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"

	// Admin actions. "terima" and "proses" are aliases: both move a new
	// order into processing.
	ActionAccept   OrderAction = "terima"
	ActionProcess  OrderAction = "proses"
	ActionComplete OrderAction = "selesai"
	ActionCancel   OrderAction = "batal"
)

// transitions is the closed state machine for admin order actions. An
// action missing from the current state's row is rejected; terminal states
// (selesai, batal) have no row at all.
var transitions = map[OrderStatus]map[OrderAction]OrderStatus{
	OrderStatusNew: {
		ActionAccept:  OrderStatusProcessing,
		ActionProcess: OrderStatusProcessing,
		ActionCancel:  OrderStatusCancelled,
	},
	OrderStatusProcessing: {
		ActionComplete: OrderStatusCompleted,
		ActionCancel:   OrderStatusCancelled,
	},
}

// NextStatus resolves an action against the transition table. The second
// return reports whether the action is recognized at all, the third whether
// it is legal from the given state.
func NextStatus(current OrderStatus, action OrderAction) (OrderStatus, bool, bool) {
	known := action == ActionAccept || action == ActionProcess ||
		action == ActionComplete || action == ActionCancel
	if !known {
		return "", false, false
	}
	next, ok := transitions[current][action]
	return next, true, ok
}

// IsTerminal reports whether no further transition is permitted.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// Order is an immutable snapshot of a cart at checkout time. Only Status,
// PaymentStatus and UpdatedAt change afterwards. UserID is nullable so the
// order survives deletion of its owner.
type Order struct {
	ID              uint          `gorm:"primarykey" json:"id"`
	UserID          *uint         `gorm:"index" json:"user_id,omitempty"`
	Status          OrderStatus   `gorm:"type:varchar(20);default:'baru';index" json:"status"`
	Total           float64       `gorm:"not null" json:"total"`
	PaymentMethod   PaymentMethod `gorm:"type:varchar(20)" json:"payment_method"`
	PaymentStatus   PaymentStatus `gorm:"type:varchar(20);default:'pending'" json:"payment_status"`
	ShippingAddress string        `gorm:"type:text" json:"shipping_address"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`

	User  *User       `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"user,omitempty"`
	Lines []OrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"lines,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderLine freezes product name, unit price and quantity at checkout.
// ProductID is nullable so the snapshot outlives catalog deletions.
type OrderLine struct {
	ID            uint    `gorm:"primarykey" json:"id"`
	OrderID       uint    `gorm:"not null;index" json:"order_id"`
	ProductID     *uint   `gorm:"index" json:"product_id,omitempty"`
	NameSnapshot  string  `gorm:"not null" json:"name_snapshot"`
	PriceSnapshot float64 `gorm:"not null" json:"price_snapshot"`
	Quantity      int     `gorm:"not null;check:quantity > 0" json:"quantity"`

	Order   Order    `gorm:"foreignKey:OrderID" json:"-"`
	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:SET NULL" json:"-"`
}

func (OrderLine) TableName() string {
	return "order_lines"
}
