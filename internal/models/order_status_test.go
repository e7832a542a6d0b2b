package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{StatusPendingApproval, StatusConfirmed, true},
		{StatusPendingApproval, StatusCancelled, true},
		{StatusPendingApproval, StatusShipped, false},
		{StatusConfirmed, StatusShipped, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusDelivered, false},
		{StatusShipped, StatusOutForDelivery, true},
		{StatusShipped, StatusCancelled, false},
		{StatusOutForDelivery, StatusDelivered, true},
		{StatusOutForDelivery, StatusCancelled, false},
		{StatusDelivered, StatusConfirmed, false},
		{StatusCancelled, StatusConfirmed, false},
		// No backwards moves.
		{StatusShipped, StatusConfirmed, false},
		{StatusDelivered, StatusOutForDelivery, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{
		StatusPendingApproval, StatusConfirmed, StatusShipped,
		StatusOutForDelivery, StatusDelivered, StatusCancelled,
	} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, OrderStatus("approved").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusPendingApproval.Terminal())
	assert.False(t, StatusOutForDelivery.Terminal())
}
