package render

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		want     string
	}{
		{"INR symbol", "1180", "INR", "₹1180.00"},
		{"USD symbol", "1234.5", "USD", "$1234.50"},
		{"EUR symbol", "99.999", "EUR", "€100.00"},
		{"GBP symbol", "0.5", "GBP", "£0.50"},
		{"unknown code falls back to prefix", "12", "XYZ", "XYZ 12.00"},
		{"zero renders with two places", "0", "INR", "₹0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := decimal.NewFromString(tt.amount)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, FormatAmount(amount, tt.currency))
		})
	}
}

func TestAmountHeader(t *testing.T) {
	assert.Equal(t, "Amount (Rs)", AmountHeader("INR"))
	assert.Equal(t, "Amount ($)", AmountHeader("USD"))
	assert.Equal(t, "Amount (€)", AmountHeader("EUR"))
	assert.Equal(t, "Amount (£)", AmountHeader("GBP"))
	assert.Equal(t, "Amount (AUD)", AmountHeader("AUD"))
}

func TestCurrencyPhrase(t *testing.T) {
	assert.Equal(t, "In Rupees", CurrencyPhrase("INR"))
	assert.Equal(t, "In Dollars", CurrencyPhrase("USD"))
	assert.Equal(t, "In EUR", CurrencyPhrase("EUR"))
	assert.Equal(t, "In XYZ", CurrencyPhrase("XYZ"))
}
