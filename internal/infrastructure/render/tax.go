package render

import (
	"github.com/quotemint/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// TaxLine is one itemized tax entry on the document.
type TaxLine struct {
	Label  string
	Amount decimal.Decimal
}

// TaxBreakdown is the result of the tax computation for one render.
type TaxBreakdown struct {
	Subtotal   decimal.Decimal
	Lines      []TaxLine
	GrandTotal decimal.Decimal
	// Degraded is set when a regime was declared but its required rates
	// were missing, so the document rendered with no tax applied.
	Degraded bool
}

// ComputeTax computes the itemized tax lines and grand total for a
// subtotal under the record's regime and rates.
//
// GST applies only when the currency is the domestic currency and a
// regime is set. Intrastate requires both CGST and SGST rates;
// interstate requires IGST. A declared regime whose required rates are
// missing or zero degrades silently to "no tax applied", matching the
// upstream data-entry behavior; the breakdown flags the degradation so
// callers can log it. Each tax amount is subtotal x rate/100 rounded
// half-up to two places.
func ComputeTax(subtotal decimal.Decimal, currency string, regime billing.TaxRegime, cgst, sgst, igst *decimal.Decimal) (*TaxBreakdown, error) {
	if subtotal.IsNegative() {
		return nil, NewValidationError("subtotal", "must be non-negative")
	}
	for _, rate := range []struct {
		field string
		value *decimal.Decimal
	}{
		{"cgst_rate", cgst},
		{"sgst_rate", sgst},
		{"igst_rate", igst},
	} {
		if rate.value != nil && rate.value.IsNegative() {
			return nil, NewValidationError(rate.field, "tax rate cannot be negative")
		}
	}

	breakdown := &TaxBreakdown{
		Subtotal:   subtotal,
		GrandTotal: subtotal,
	}

	if currency != billing.DomesticCurrency || regime == billing.TaxRegimeNone {
		return breakdown, nil
	}

	switch regime {
	case billing.TaxRegimeIntrastate:
		if !ratePresent(cgst) || !ratePresent(sgst) {
			breakdown.Degraded = true
			return breakdown, nil
		}
		cgstAmount := taxAmount(subtotal, *cgst)
		sgstAmount := taxAmount(subtotal, *sgst)
		breakdown.Lines = []TaxLine{
			{Label: "CGST (" + cgst.String() + "%)", Amount: cgstAmount},
			{Label: "SGST (" + sgst.String() + "%)", Amount: sgstAmount},
		}
		breakdown.GrandTotal = subtotal.Add(cgstAmount).Add(sgstAmount).Round(2)
	case billing.TaxRegimeInterstate:
		if !ratePresent(igst) {
			breakdown.Degraded = true
			return breakdown, nil
		}
		igstAmount := taxAmount(subtotal, *igst)
		breakdown.Lines = []TaxLine{
			{Label: "IGST (" + igst.String() + "%)", Amount: igstAmount},
		}
		breakdown.GrandTotal = subtotal.Add(igstAmount).Round(2)
	default:
		return nil, NewValidationError("tax_regime", "unknown regime "+regime.String())
	}

	return breakdown, nil
}

// ratePresent reports whether a rate participates in the computation.
// A zero rate counts as absent, matching upstream behavior.
func ratePresent(rate *decimal.Decimal) bool {
	return rate != nil && !rate.IsZero()
}

// taxAmount is subtotal x rate/100 rounded half-up to two places.
func taxAmount(subtotal, rate decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)
}
