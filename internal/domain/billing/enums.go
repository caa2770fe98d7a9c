package billing

// DocKind represents the kind of billing document
type DocKind string

const (
	DocKindQuotation DocKind = "quotation"
	DocKindInvoice   DocKind = "invoice"
)

// IsValid checks if the DocKind is a valid value
func (k DocKind) IsValid() bool {
	switch k {
	case DocKindQuotation, DocKindInvoice:
		return true
	}
	return false
}

// String returns the string representation of DocKind
func (k DocKind) String() string {
	return string(k)
}

// Title returns the uppercase document title used in rendered output
func (k DocKind) Title() string {
	if k == DocKindQuotation {
		return "QUOTATION"
	}
	return "INVOICE"
}

// Label returns the document-number label used in rendered output
func (k DocKind) Label() string {
	if k == DocKindQuotation {
		return "Quotation"
	}
	return "Invoice"
}

// AllDocKinds returns all valid DocKind values
func AllDocKinds() []DocKind {
	return []DocKind{DocKindQuotation, DocKindInvoice}
}

// TaxRegime represents the GST regime applied to a document.
// Intrastate splits tax into equal CGST and SGST components;
// interstate applies a single consolidated IGST rate.
type TaxRegime string

const (
	TaxRegimeNone       TaxRegime = ""
	TaxRegimeIntrastate TaxRegime = "intrastate"
	TaxRegimeInterstate TaxRegime = "interstate"
)

// IsValid checks if the TaxRegime is a valid value
func (r TaxRegime) IsValid() bool {
	switch r {
	case TaxRegimeNone, TaxRegimeIntrastate, TaxRegimeInterstate:
		return true
	}
	return false
}

// String returns the string representation of TaxRegime
func (r TaxRegime) String() string {
	return string(r)
}

// DomesticCurrency is the only currency GST applies to.
const DomesticCurrency = "INR"
