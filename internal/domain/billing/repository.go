package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/quotemint/backend/internal/domain/shared"
)

// BillingRecordRepository defines the persistence operations for billing records.
// Every owner-scoped method returns shared.ErrNotFound when the record does not
// exist or belongs to a different owner.
type BillingRecordRepository interface {
	// FindByIDForOwner finds a record by ID scoped to its owner
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*BillingRecord, error)
	// FindByShareToken finds a record by its anonymous share token
	FindByShareToken(ctx context.Context, token string) (*BillingRecord, error)
	// FindAllForOwner lists an owner's records; filter.Filters["kind"]
	// restricts the document kind
	FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]BillingRecord, error)
	// CountForOwner counts an owner's records for the same filter
	CountForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (int64, error)
	// ExistsByNumber reports whether the owner already has a record with
	// this document number, excluding excludeID when non-nil
	ExistsByNumber(ctx context.Context, ownerID uuid.UUID, number string, excludeID *uuid.UUID) (bool, error)
	// Save creates or updates a record
	Save(ctx context.Context, record *BillingRecord) error
	// Delete removes a record
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}
