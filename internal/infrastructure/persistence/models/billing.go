package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quotemint/backend/internal/domain/billing"
)

// BillingRecordModel is the GORM model for the billing_records table.
// Line items are stored denormalized as a JSON column; they are only
// ever read and written as part of their record.
type BillingRecordModel struct {
	BaseModel
	OwnerID    uuid.UUID        `gorm:"type:uuid;not null;index;uniqueIndex:idx_billing_owner_number"`
	Kind       string           `gorm:"type:varchar(20);not null"`
	Number     string           `gorm:"type:varchar(100);not null;uniqueIndex:idx_billing_owner_number"`
	IssueDate  time.Time        `gorm:"column:issue_date;not null"`
	ToAddress  string           `gorm:"column:to_address;type:text;not null"`
	Currency   string           `gorm:"type:varchar(10);not null"`
	Regime     string           `gorm:"type:varchar(20);not null;default:''"`
	CGSTRate   *decimal.Decimal `gorm:"column:cgst_rate;type:decimal(6,3)"`
	SGSTRate   *decimal.Decimal `gorm:"column:sgst_rate;type:decimal(6,3)"`
	IGSTRate   *decimal.Decimal `gorm:"column:igst_rate;type:decimal(6,3)"`
	ItemsJSON  string           `gorm:"column:items;type:jsonb;not null"`
	Total      decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	ShareToken string           `gorm:"column:share_token;type:varchar(64);index"`

	BankName      string `gorm:"column:bank_name;type:varchar(100)"`
	BankBranch    string `gorm:"column:bank_branch;type:varchar(100)"`
	AccountName   string `gorm:"column:account_name;type:varchar(100)"`
	AccountNumber string `gorm:"column:account_number;type:varchar(50)"`
	IFSCCode      string `gorm:"column:ifsc_code;type:varchar(20)"`
	UPIHandle     string `gorm:"column:upi_handle;type:varchar(100)"`
}

// TableName returns the table name for BillingRecordModel
func (BillingRecordModel) TableName() string {
	return "billing_records"
}

// ToDomain converts BillingRecordModel to a domain BillingRecord
func (m *BillingRecordModel) ToDomain() (*billing.BillingRecord, error) {
	var items []billing.LineItem
	if m.ItemsJSON != "" {
		if err := json.Unmarshal([]byte(m.ItemsJSON), &items); err != nil {
			return nil, fmt.Errorf("unmarshal items for record %s: %w", m.ID, err)
		}
	}

	return &billing.BillingRecord{
		BaseEntity: m.BaseModel.ToDomain(),
		OwnerID:    m.OwnerID,
		Kind:       billing.DocKind(m.Kind),
		Number:     m.Number,
		IssueDate:  m.IssueDate,
		ToAddress:  m.ToAddress,
		Currency:   m.Currency,
		Regime:     billing.TaxRegime(m.Regime),
		CGSTRate:   m.CGSTRate,
		SGSTRate:   m.SGSTRate,
		IGSTRate:   m.IGSTRate,
		Items:      items,
		Total:      m.Total,
		ShareToken: m.ShareToken,
		Payment: billing.PaymentProfile{
			BankName:      m.BankName,
			Branch:        m.BankBranch,
			AccountName:   m.AccountName,
			AccountNumber: m.AccountNumber,
			IFSCCode:      m.IFSCCode,
			UPIHandle:     m.UPIHandle,
		},
	}, nil
}

// BillingRecordModelFromDomain creates a BillingRecordModel from a domain BillingRecord
func BillingRecordModelFromDomain(r *billing.BillingRecord) (*BillingRecordModel, error) {
	itemsJSON, err := json.Marshal(r.Items)
	if err != nil {
		return nil, fmt.Errorf("marshal items for record %s: %w", r.ID, err)
	}

	m := &BillingRecordModel{
		OwnerID:       r.OwnerID,
		Kind:          string(r.Kind),
		Number:        r.Number,
		IssueDate:     r.IssueDate,
		ToAddress:     r.ToAddress,
		Currency:      r.Currency,
		Regime:        string(r.Regime),
		CGSTRate:      r.CGSTRate,
		SGSTRate:      r.SGSTRate,
		IGSTRate:      r.IGSTRate,
		ItemsJSON:     string(itemsJSON),
		Total:         r.Total,
		ShareToken:    r.ShareToken,
		BankName:      r.Payment.BankName,
		BankBranch:    r.Payment.Branch,
		AccountName:   r.Payment.AccountName,
		AccountNumber: r.Payment.AccountNumber,
		IFSCCode:      r.Payment.IFSCCode,
		UPIHandle:     r.Payment.UPIHandle,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m, nil
}
