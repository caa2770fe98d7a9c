package billing

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/quotemint/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LineItem is one billable row of a document.
// Classification code, period label, and rate label are optional and
// render as empty cells when absent.
type LineItem struct {
	Description string          `json:"description"`
	HSNCode     string          `json:"hsn_code,omitempty"`
	Period      string          `json:"month,omitempty"`
	RateLabel   string          `json:"rate,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
}

// PaymentProfile holds the owning party's payment details printed on
// invoices. All fields are optional; absent fields render as empty.
type PaymentProfile struct {
	BankName      string `json:"bank_name,omitempty"`
	Branch        string `json:"branch_name,omitempty"`
	AccountName   string `json:"account_name,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	IFSCCode      string `json:"ifsc_code,omitempty"`
	UPIHandle     string `json:"gpay_phonepe,omitempty"`
}

// CleanAccountNumber returns the account number with the leading
// non-digit prefix stripped. Upstream data entry prepends a marker
// character to some account numbers; it must never reach the document.
func (p PaymentProfile) CleanAccountNumber() string {
	s := strings.TrimSpace(p.AccountNumber)
	if s == "" {
		return ""
	}
	if !unicode.IsDigit(rune(s[0])) {
		s = s[1:]
	}
	return strings.TrimSpace(s)
}

// BillingRecord represents a quotation or invoice document.
// It is the aggregate root of the billing context and is read-only for
// the duration of a render.
type BillingRecord struct {
	shared.BaseEntity
	OwnerID    uuid.UUID
	Kind       DocKind
	Number     string
	IssueDate  time.Time
	ToAddress  string // free-form; first non-blank line is the party name
	Currency   string
	Regime     TaxRegime
	CGSTRate   *decimal.Decimal
	SGSTRate   *decimal.Decimal
	IGSTRate   *decimal.Decimal
	Items      []LineItem
	Total      decimal.Decimal // stored display total; final totals are recomputed
	ShareToken string
	Payment    PaymentProfile
}

// NewBillingRecord creates a new billing record owned by ownerID.
func NewBillingRecord(ownerID uuid.UUID, kind DocKind, number string, issueDate time.Time, toAddress, currency string, items []LineItem) (*BillingRecord, error) {
	r := &BillingRecord{
		BaseEntity: shared.NewBaseEntity(),
		OwnerID:    ownerID,
		Kind:       kind,
		Number:     strings.TrimSpace(number),
		IssueDate:  issueDate,
		ToAddress:  toAddress,
		Currency:   strings.ToUpper(strings.TrimSpace(currency)),
		Items:      items,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	r.Total = r.Subtotal()
	return r, nil
}

// Validate checks the record's structural invariants.
func (r *BillingRecord) Validate() error {
	if r.OwnerID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Record owner is required")
	}
	if !r.Kind.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", "Invalid document kind")
	}
	if r.Number == "" {
		return shared.NewDomainError("INVALID_INPUT", "Document number is required")
	}
	if strings.TrimSpace(r.ToAddress) == "" {
		return shared.NewDomainError("INVALID_INPUT", "Recipient address is required")
	}
	if r.Currency == "" {
		return shared.NewDomainError("INVALID_INPUT", "Currency code is required")
	}
	if !r.Regime.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", "Invalid tax regime")
	}
	for _, rate := range []struct {
		name  string
		value *decimal.Decimal
	}{
		{"cgst_rate", r.CGSTRate},
		{"sgst_rate", r.SGSTRate},
		{"igst_rate", r.IGSTRate},
	} {
		if rate.value != nil && rate.value.IsNegative() {
			return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Tax rate %s cannot be negative", rate.name))
		}
	}
	for i, item := range r.Items {
		if strings.TrimSpace(item.Description) == "" {
			return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Item %d is missing a description", i+1))
		}
		if item.Amount.IsNegative() {
			return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Item %d has a negative amount", i+1))
		}
	}
	return nil
}

// Subtotal returns the sum of item amounts. It is always recomputed;
// the stored total is display-only and never trusted for final totals.
func (r *BillingRecord) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range r.Items {
		sum = sum.Add(item.Amount)
	}
	return sum
}

// TaxApplies reports whether GST is applied for this record:
// domestic currency with a regime set.
func (r *BillingRecord) TaxApplies() bool {
	return r.Currency == DomesticCurrency && r.Regime != TaxRegimeNone
}

// RecipientName returns the first non-blank line of the address text.
func (r *BillingRecord) RecipientName() string {
	lines := r.AddressLines()
	if len(lines) == 0 {
		return strings.TrimSpace(r.ToAddress)
	}
	return lines[0]
}

// RecipientAddress returns the address body: every non-blank line
// after the party name, in order.
func (r *BillingRecord) RecipientAddress() []string {
	lines := r.AddressLines()
	if len(lines) <= 1 {
		return nil
	}
	return lines[1:]
}

// AddressLines returns all non-blank, trimmed lines of the address text.
func (r *BillingRecord) AddressLines() []string {
	var lines []string
	for _, line := range strings.Split(r.ToAddress, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

// EnsureShareToken generates the anonymous-access token if the record
// does not have one yet, and returns it.
func (r *BillingRecord) EnsureShareToken() string {
	if r.ShareToken != "" {
		return r.ShareToken
	}
	nonce := make([]byte, 16)
	_, _ = rand.Read(nonce)
	sum := sha256.Sum256(fmt.Appendf(nil, "%s-%s-%s", r.ID, r.Number, hex.EncodeToString(nonce)))
	r.ShareToken = hex.EncodeToString(sum[:])[:32]
	r.Touch()
	return r.ShareToken
}

// UpdateDetails replaces the mutable document fields and revalidates.
func (r *BillingRecord) UpdateDetails(kind DocKind, number string, issueDate time.Time, toAddress, currency string, items []LineItem) error {
	prev := *r
	r.Kind = kind
	r.Number = strings.TrimSpace(number)
	r.IssueDate = issueDate
	r.ToAddress = toAddress
	r.Currency = strings.ToUpper(strings.TrimSpace(currency))
	r.Items = items
	if err := r.Validate(); err != nil {
		*r = prev
		return err
	}
	r.Total = r.Subtotal()
	r.Touch()
	return nil
}

// SetTaxes sets the tax regime and rates and revalidates.
func (r *BillingRecord) SetTaxes(regime TaxRegime, cgst, sgst, igst *decimal.Decimal) error {
	prev := *r
	r.Regime = regime
	r.CGSTRate = cgst
	r.SGSTRate = sgst
	r.IGSTRate = igst
	if err := r.Validate(); err != nil {
		*r = prev
		return err
	}
	r.Touch()
	return nil
}

// SetPayment replaces the payment profile printed on invoices.
func (r *BillingRecord) SetPayment(p PaymentProfile) {
	r.Payment = p
	r.Touch()
}
