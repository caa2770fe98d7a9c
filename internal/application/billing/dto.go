package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/quotemint/backend/internal/domain/billing"
)

// =============================================================================
// Request DTOs
// =============================================================================

// LineItemDTO is one line item in a create or update request
type LineItemDTO struct {
	Description string          `json:"description" binding:"required"`
	HSNCode     string          `json:"hsn_code"`
	Period      string          `json:"month"`
	RateLabel   string          `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// PaymentDTO carries the bank details printed on invoices
type PaymentDTO struct {
	BankName      string `json:"bank_name"`
	Branch        string `json:"branch"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	IFSCCode      string `json:"ifsc_code"`
	UPIHandle     string `json:"upi_handle"`
}

// CreateDocumentRequest represents a request to create a billing document
type CreateDocumentRequest struct {
	Kind      string           `json:"kind" binding:"required,oneof=quotation invoice"`
	Number    string           `json:"number" binding:"required,max=100"`
	IssueDate string           `json:"issue_date" binding:"required"`
	ToAddress string           `json:"to_address" binding:"required"`
	Currency  string           `json:"currency" binding:"required,max=10"`
	Regime    string           `json:"gst_type" binding:"omitempty,oneof=intrastate interstate"`
	CGSTRate  *decimal.Decimal `json:"cgst_rate"`
	SGSTRate  *decimal.Decimal `json:"sgst_rate"`
	IGSTRate  *decimal.Decimal `json:"igst_rate"`
	Items     []LineItemDTO    `json:"items" binding:"required,min=1,dive"`
	Payment   *PaymentDTO      `json:"payment"`
}

// UpdateDocumentRequest represents a request to replace a document's content
type UpdateDocumentRequest struct {
	Kind      string           `json:"kind" binding:"required,oneof=quotation invoice"`
	Number    string           `json:"number" binding:"required,max=100"`
	IssueDate string           `json:"issue_date" binding:"required"`
	ToAddress string           `json:"to_address" binding:"required"`
	Currency  string           `json:"currency" binding:"required,max=10"`
	Regime    string           `json:"gst_type" binding:"omitempty,oneof=intrastate interstate"`
	CGSTRate  *decimal.Decimal `json:"cgst_rate"`
	SGSTRate  *decimal.Decimal `json:"sgst_rate"`
	IGSTRate  *decimal.Decimal `json:"igst_rate"`
	Items     []LineItemDTO    `json:"items" binding:"required,min=1,dive"`
	Payment   *PaymentDTO      `json:"payment"`
}

// ListDocumentsRequest represents a request to list an owner's documents
type ListDocumentsRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string `form:"search"`
	Kind     string `form:"kind" binding:"omitempty,oneof=quotation invoice"`
}

// ExportDocumentsRequest names the documents to render in one batch
type ExportDocumentsRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,max=50,dive,uuid"`
}

// =============================================================================
// Response DTOs
// =============================================================================

// DocumentResponse represents a billing document
type DocumentResponse struct {
	ID         string           `json:"id"`
	Kind       string           `json:"kind"`
	Number     string           `json:"number"`
	IssueDate  string           `json:"issue_date"`
	ToAddress  string           `json:"to_address"`
	Currency   string           `json:"currency"`
	Regime     string           `json:"gst_type,omitempty"`
	CGSTRate   *decimal.Decimal `json:"cgst_rate,omitempty"`
	SGSTRate   *decimal.Decimal `json:"sgst_rate,omitempty"`
	IGSTRate   *decimal.Decimal `json:"igst_rate,omitempty"`
	Items      []LineItemDTO    `json:"items"`
	Total      decimal.Decimal  `json:"total"`
	ShareToken string           `json:"share_token,omitempty"`
	Payment    *PaymentDTO      `json:"payment,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// ListDocumentsResponse is a paginated list of documents
type ListDocumentsResponse struct {
	Items      []DocumentResponse `json:"items"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
}

// ShareResponse carries the anonymous share token for a document
type ShareResponse struct {
	Token string `json:"token"`
}

// ExportResultResponse reports the outcome of one document in a batch export
type ExportResultResponse struct {
	ID       string `json:"id"`
	Number   string `json:"number,omitempty"`
	FileName string `json:"file_name,omitempty"`
	Error    string `json:"error,omitempty"`
}

// =============================================================================
// Mapping
// =============================================================================

func toLineItemDTOs(items []billing.LineItem) []LineItemDTO {
	dtos := make([]LineItemDTO, len(items))
	for i, item := range items {
		dtos[i] = LineItemDTO{
			Description: item.Description,
			HSNCode:     item.HSNCode,
			Period:      item.Period,
			RateLabel:   item.RateLabel,
			Amount:      item.Amount,
		}
	}
	return dtos
}

func toDomainItems(dtos []LineItemDTO) []billing.LineItem {
	items := make([]billing.LineItem, len(dtos))
	for i, dto := range dtos {
		items[i] = billing.LineItem{
			Description: dto.Description,
			HSNCode:     dto.HSNCode,
			Period:      dto.Period,
			RateLabel:   dto.RateLabel,
			Amount:      dto.Amount,
		}
	}
	return items
}

func toDocumentResponse(r *billing.BillingRecord) *DocumentResponse {
	resp := &DocumentResponse{
		ID:         r.ID.String(),
		Kind:       string(r.Kind),
		Number:     r.Number,
		IssueDate:  r.IssueDate.Format(issueDateLayout),
		ToAddress:  r.ToAddress,
		Currency:   r.Currency,
		Regime:     string(r.Regime),
		CGSTRate:   r.CGSTRate,
		SGSTRate:   r.SGSTRate,
		IGSTRate:   r.IGSTRate,
		Items:      toLineItemDTOs(r.Items),
		Total:      r.Total,
		ShareToken: r.ShareToken,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if r.Payment != (billing.PaymentProfile{}) {
		resp.Payment = &PaymentDTO{
			BankName:      r.Payment.BankName,
			Branch:        r.Payment.Branch,
			AccountName:   r.Payment.AccountName,
			AccountNumber: r.Payment.AccountNumber,
			IFSCCode:      r.Payment.IFSCCode,
			UPIHandle:     r.Payment.UPIHandle,
		}
	}
	return resp
}
