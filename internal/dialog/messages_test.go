package dialog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	tests := map[string]string{
		"500":       "₹500",
		"1000":      "₹1,000",
		"1234567.5": "₹1,234,567.5",
		"-250.25":   "₹-250.25",
		"0":         "₹0",
	}

	for in, want := range tests {
		assert.Equal(t, want, formatAmount("₹", decimal.RequireFromString(in)), in)
	}
}
