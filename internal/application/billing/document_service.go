package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quotemint/backend/internal/domain/billing"
	"github.com/quotemint/backend/internal/domain/shared"
)

// issueDateLayout is the wire format for issue dates.
const issueDateLayout = "2006-01-02"

// DocumentService handles billing document CRUD operations
type DocumentService struct {
	repo   billing.BillingRecordRepository
	logger *zap.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(repo billing.BillingRecordRepository, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		repo:   repo,
		logger: logger,
	}
}

// CreateDocument creates a new billing document for the owner
func (s *DocumentService) CreateDocument(ctx context.Context, ownerID uuid.UUID, req CreateDocumentRequest) (*DocumentResponse, error) {
	issueDate, err := time.Parse(issueDateLayout, req.IssueDate)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "issue_date must use YYYY-MM-DD")
	}

	exists, err := s.repo.ExistsByNumber(ctx, ownerID, req.Number, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check document number: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A document with this number already exists")
	}

	record, err := billing.NewBillingRecord(
		ownerID,
		billing.DocKind(req.Kind),
		req.Number,
		issueDate,
		req.ToAddress,
		req.Currency,
		toDomainItems(req.Items),
	)
	if err != nil {
		return nil, err
	}

	if err := record.SetTaxes(billing.TaxRegime(req.Regime), req.CGSTRate, req.SGSTRate, req.IGSTRate); err != nil {
		return nil, err
	}
	if req.Payment != nil {
		record.SetPayment(billing.PaymentProfile{
			BankName:      req.Payment.BankName,
			Branch:        req.Payment.Branch,
			AccountName:   req.Payment.AccountName,
			AccountNumber: req.Payment.AccountNumber,
			IFSCCode:      req.Payment.IFSCCode,
			UPIHandle:     req.Payment.UPIHandle,
		})
	}

	if err := s.repo.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	s.logger.Info("billing document created",
		zap.String("id", record.ID.String()),
		zap.String("kind", string(record.Kind)),
		zap.String("number", record.Number))

	return toDocumentResponse(record), nil
}

// GetDocument retrieves a document by ID
func (s *DocumentService) GetDocument(ctx context.Context, ownerID, id uuid.UUID) (*DocumentResponse, error) {
	record, err := s.repo.FindByIDForOwner(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Document not found")
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return toDocumentResponse(record), nil
}

// ListDocuments retrieves a paginated list of the owner's documents
func (s *DocumentService) ListDocuments(ctx context.Context, ownerID uuid.UUID, req ListDocumentsRequest) (*ListDocumentsResponse, error) {
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	filter.Search = req.Search
	if req.Kind != "" {
		filter.Filters["kind"] = req.Kind
	}

	records, err := s.repo.FindAllForOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	total, err := s.repo.CountForOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	items := make([]DocumentResponse, len(records))
	for i := range records {
		items[i] = *toDocumentResponse(&records[i])
	}

	totalPages := int((total + int64(filter.Limit()) - 1) / int64(filter.Limit()))
	return &ListDocumentsResponse{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.Limit(),
		TotalPages: totalPages,
	}, nil
}

// UpdateDocument replaces the content of an existing document
func (s *DocumentService) UpdateDocument(ctx context.Context, ownerID, id uuid.UUID, req UpdateDocumentRequest) (*DocumentResponse, error) {
	record, err := s.repo.FindByIDForOwner(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Document not found")
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	issueDate, err := time.Parse(issueDateLayout, req.IssueDate)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "issue_date must use YYYY-MM-DD")
	}

	exists, err := s.repo.ExistsByNumber(ctx, ownerID, req.Number, &id)
	if err != nil {
		return nil, fmt.Errorf("failed to check document number: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A document with this number already exists")
	}

	if err := record.UpdateDetails(
		billing.DocKind(req.Kind),
		req.Number,
		issueDate,
		req.ToAddress,
		req.Currency,
		toDomainItems(req.Items),
	); err != nil {
		return nil, err
	}
	if err := record.SetTaxes(billing.TaxRegime(req.Regime), req.CGSTRate, req.SGSTRate, req.IGSTRate); err != nil {
		return nil, err
	}
	if req.Payment != nil {
		record.SetPayment(billing.PaymentProfile{
			BankName:      req.Payment.BankName,
			Branch:        req.Payment.Branch,
			AccountName:   req.Payment.AccountName,
			AccountNumber: req.Payment.AccountNumber,
			IFSCCode:      req.Payment.IFSCCode,
			UPIHandle:     req.Payment.UPIHandle,
		})
	}

	if err := s.repo.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	s.logger.Info("billing document updated",
		zap.String("id", record.ID.String()),
		zap.String("number", record.Number))

	return toDocumentResponse(record), nil
}

// DeleteDocument removes a document
func (s *DocumentService) DeleteDocument(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("NOT_FOUND", "Document not found")
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}

	s.logger.Info("billing document deleted", zap.String("id", id.String()))
	return nil
}

// ShareDocument issues (or returns the existing) anonymous share token
func (s *DocumentService) ShareDocument(ctx context.Context, ownerID, id uuid.UUID) (*ShareResponse, error) {
	record, err := s.repo.FindByIDForOwner(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Document not found")
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	token := record.EnsureShareToken()
	if err := s.repo.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save share token: %w", err)
	}

	s.logger.Info("share token issued", zap.String("id", record.ID.String()))
	return &ShareResponse{Token: token}, nil
}
