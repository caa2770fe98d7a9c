package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/quotemint/backend/internal/domain/billing"
	"github.com/quotemint/backend/internal/domain/shared"
	"github.com/quotemint/backend/internal/infrastructure/persistence/models"
)

// BillingRecordSortFields defines allowed sort fields for billing records
var BillingRecordSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"issue_date": true,
	"number":     true,
	"kind":       true,
}

// GormBillingRecordRepository implements billing.BillingRecordRepository using GORM
type GormBillingRecordRepository struct {
	db *gorm.DB
}

// NewGormBillingRecordRepository creates a new GormBillingRecordRepository
func NewGormBillingRecordRepository(db *gorm.DB) *GormBillingRecordRepository {
	return &GormBillingRecordRepository{db: db}
}

// FindByIDForOwner finds a record by ID scoped to its owner
func (r *GormBillingRecordRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*billing.BillingRecord, error) {
	var model models.BillingRecordModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByShareToken finds a record by its anonymous share token
func (r *GormBillingRecordRepository) FindByShareToken(ctx context.Context, token string) (*billing.BillingRecord, error) {
	if token == "" {
		return nil, shared.ErrNotFound
	}
	var model models.BillingRecordModel
	if err := r.db.WithContext(ctx).
		Where("share_token = ?", token).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindAllForOwner lists an owner's records with pagination and optional kind filter
func (r *GormBillingRecordRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]billing.BillingRecord, error) {
	var recordModels []models.BillingRecordModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.BillingRecordModel{}).Where("owner_id = ?", ownerID), filter)

	if err := query.
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&recordModels).Error; err != nil {
		return nil, err
	}

	records := make([]billing.BillingRecord, 0, len(recordModels))
	for _, model := range recordModels {
		record, err := model.ToDomain()
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, nil
}

// CountForOwner counts an owner's records for the same filter
func (r *GormBillingRecordRepository) CountForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyKindFilter(r.db.WithContext(ctx).Model(&models.BillingRecordModel{}).Where("owner_id = ?", ownerID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByNumber reports whether the owner already has a record with this number
func (r *GormBillingRecordRepository) ExistsByNumber(ctx context.Context, ownerID uuid.UUID, number string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&models.BillingRecordModel{}).
		Where("owner_id = ? AND number = ?", ownerID, number)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a record
func (r *GormBillingRecordRepository) Save(ctx context.Context, record *billing.BillingRecord) error {
	model, err := models.BillingRecordModelFromDomain(record)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// Delete removes a record
func (r *GormBillingRecordRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Delete(&models.BillingRecordModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyKindFilter narrows the query to a document kind when requested
func (r *GormBillingRecordRepository) applyKindFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if kind, ok := filter.Filters["kind"].(string); ok && kind != "" {
		query = query.Where("kind = ?", kind)
	}
	return query
}

// applyFilter applies kind filtering, search, and ordering
func (r *GormBillingRecordRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyKindFilter(query, filter)

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(number) LIKE ? OR LOWER(to_address) LIKE ?", pattern, pattern)
	}

	orderBy := ValidateSortField(filter.OrderBy, BillingRecordSortFields, "created_at")
	direction := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + direction)
}

// Ensure GormBillingRecordRepository implements BillingRecordRepository
var _ billing.BillingRecordRepository = (*GormBillingRecordRepository)(nil)
