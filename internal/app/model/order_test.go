package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextStatus(t *testing.T) {
	tests := []struct {
		name    string
		current OrderStatus
		action  OrderAction
		want    OrderStatus
		known   bool
		allowed bool
	}{
		{"accept new order", OrderStatusNew, ActionAccept, OrderStatusProcessing, true, true},
		{"process new order", OrderStatusNew, ActionProcess, OrderStatusProcessing, true, true},
		{"cancel new order", OrderStatusNew, ActionCancel, OrderStatusCancelled, true, true},
		{"complete new order rejected", OrderStatusNew, ActionComplete, "", true, false},
		{"complete processing order", OrderStatusProcessing, ActionComplete, OrderStatusCompleted, true, true},
		{"cancel processing order", OrderStatusProcessing, ActionCancel, OrderStatusCancelled, true, true},
		{"accept processing order rejected", OrderStatusProcessing, ActionAccept, "", true, false},
		{"cancel completed order rejected", OrderStatusCompleted, ActionCancel, "", true, false},
		{"accept cancelled order rejected", OrderStatusCancelled, ActionAccept, "", true, false},
		{"unknown action", OrderStatusNew, OrderAction("kirim"), "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, known, allowed := NextStatus(tt.current, tt.action)
			assert.Equal(t, tt.known, known)
			assert.Equal(t, tt.allowed, allowed)
			if tt.allowed {
				assert.Equal(t, tt.want, next)
			}
		})
	}
}

func TestOrderStatusIsTerminal(t *testing.T) {
	assert.False(t, OrderStatusNew.IsTerminal())
	assert.False(t, OrderStatusProcessing.IsTerminal())
	assert.True(t, OrderStatusCompleted.IsTerminal())
	assert.True(t, OrderStatusCancelled.IsTerminal())
}

func TestCartLineSubtotal(t *testing.T) {
	line := CartLine{Quantity: 3, PriceAtAdd: 12500}
	assert.Equal(t, float64(37500), line.Subtotal())
}
