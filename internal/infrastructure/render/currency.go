package render

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// currencySymbols maps the known currency codes to their display symbol.
// Any other ISO-like code falls back to the code itself as a textual prefix.
var currencySymbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

// FormatAmount formats a monetary value for the given currency code,
// always with exactly two decimal places. Known codes use their symbol
// as prefix ("₹1180.00"); unknown codes prefix the code itself
// ("XYZ 12.00"). The zero value renders as "₹0.00", never as blank.
func FormatAmount(amount decimal.Decimal, currency string) string {
	if symbol, ok := currencySymbols[currency]; ok {
		return symbol + amount.StringFixed(2)
	}
	return currency + " " + amount.StringFixed(2)
}

// AmountHeader returns the amount-column header label for a currency.
func AmountHeader(currency string) string {
	switch currency {
	case "INR":
		return "Amount (Rs)"
	case "USD":
		return "Amount ($)"
	case "EUR":
		return "Amount (€)"
	case "GBP":
		return "Amount (£)"
	default:
		return fmt.Sprintf("Amount (%s)", currency)
	}
}

// CurrencyPhrase returns the descriptive phrase used on the grand-total
// row, e.g. "Total (In Rupees)".
func CurrencyPhrase(currency string) string {
	switch currency {
	case "INR":
		return "In Rupees"
	case "USD":
		return "In Dollars"
	default:
		return "In " + currency
	}
}
