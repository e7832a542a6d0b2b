package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name    string
		display string
		want    Money
	}{
		{"rupee symbol", "₹45.00", 4500},
		{"no symbol", "45", 4500},
		{"decimal", "₹12.50", 1250},
		{"thousands", "₹1,299.99", 129999},
		{"blank", "", 0},
		{"garbage", "price on request", 0},
		{"sub-paisa rounds", "₹0.555", 56},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePrice(tt.display))
		})
	}
}

func TestMoneyDisplay(t *testing.T) {
	assert.Equal(t, "₹45.00", Money(4500).Display())
	assert.Equal(t, "₹0.00", Money(0).Display())
	assert.Equal(t, "₹1299.99", Money(129999).Display())
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(Money(4550))
	require.NoError(t, err)
	assert.Equal(t, "45.5", string(data))

	var m Money
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, Money(4550), m)
}

func TestMoneyArithmeticStaysExact(t *testing.T) {
	// 3 × ₹0.10 must be exactly ₹0.30.
	total := ParsePrice("₹0.10") * 3
	assert.Equal(t, Money(30), total)
}
