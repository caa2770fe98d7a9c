package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/quotemint/backend/internal/domain/billing"
	"github.com/quotemint/backend/internal/domain/shared"
	"github.com/quotemint/backend/internal/infrastructure/persistence/models"
)

func setupBillingTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.BillingRecordModel{}))
	return db
}

func newTestRecord(t *testing.T, ownerID uuid.UUID, number string) *billing.BillingRecord {
	t.Helper()
	record, err := billing.NewBillingRecord(
		ownerID,
		billing.DocKindInvoice,
		number,
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		"Acme Corp\nChennai 600001",
		"INR",
		[]billing.LineItem{
			{Description: "Consulting", HSNCode: "9983", Period: "Mar-2026", RateLabel: "Fixed", Amount: decimal.NewFromInt(1000)},
			{Description: "Support", Amount: decimal.NewFromInt(500)},
		},
	)
	require.NoError(t, err)
	return record
}

func TestGormBillingRecordRepository_SaveAndFind(t *testing.T) {
	repo := NewGormBillingRecordRepository(setupBillingTestDB(t))
	ctx := context.Background()
	ownerID := uuid.New()

	record := newTestRecord(t, ownerID, "INV-001")
	require.NoError(t, repo.Save(ctx, record))

	found, err := repo.FindByIDForOwner(ctx, ownerID, record.ID)
	require.NoError(t, err)

	assert.Equal(t, record.ID, found.ID)
	assert.Equal(t, billing.DocKindInvoice, found.Kind)
	assert.Equal(t, "INV-001", found.Number)
	assert.Equal(t, "INR", found.Currency)
	require.Len(t, found.Items, 2)
	assert.Equal(t, "Consulting", found.Items[0].Description)
	assert.True(t, found.Items[0].Amount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, found.Total.Equal(decimal.NewFromInt(1500)))
}

func TestGormBillingRecordRepository_FindScopedToOwner(t *testing.T) {
	repo := NewGormBillingRecordRepository(setupBillingTestDB(t))
	ctx := context.Background()
	ownerID := uuid.New()

	record := newTestRecord(t, ownerID, "INV-001")
	require.NoError(t, repo.Save(ctx, record))

	_, err := repo.FindByIDForOwner(ctx, uuid.New(), record.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormBillingRecordRepository_SaveUpdatesExisting(t *testing.T) {
	repo := NewGormBillingRecordRepository(setupBillingTestDB(t))
	ctx := context.Background()
	ownerID := uuid.New()

	record := newTestRecord(t, ownerID, "INV-001")
	require.NoError(t, repo.Save(ctx, record))

	cgst := decimal.RequireFromString("9")
	sgst := decimal.RequireFromString("9")
	require.NoError(t, record.SetTaxes(billing.TaxRegimeIntrastate, &cgst, &sgst, nil))
	require.NoError(t, repo.Save(ctx, record))

	found, err := repo.FindByIDForOwner(ctx, ownerID, record.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.TaxRegimeIntrastate, found.Regime)
	require.NotNil(t, found.CGSTRate)
	assert.True(t, found.CGSTRate.Equal(cgst))

	var count int64
	require.NoError(t, repo.db.Model(&models.BillingRecordModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGormBillingRecordRepository_FindByShareToken(t *testing.T) {
	repo := NewGormBillingRecordRepository(setupBillingTestDB(t))
	ctx := context.Background()
	ownerID := uuid.New()

	record := newTestRecord(t, ownerID, "INV-001")
	token := record.EnsureShareToken()
	require.NoError(t, repo.Save(ctx, record))

	found, err := repo.FindByShareToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, record.ID, found.ID)

	_, err = repo.FindByShareToken(ctx, "does-not-exist")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	// Records without a token must not match an empty lookup.
	_, err = repo.FindByShareToken(ctx, "")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormBillingRecordRepository_FindAllForOwner(t *testing.T) {
	repo := NewGormBillingRecordRepository(setupBillingTestDB(t))
	ctx := context.Background()
	ownerID := uuid.New()

	invoice := newTestRecord(t, ownerID, "INV-001")
	require.NoError(t, repo.Save(ctx, invoice))

	quotation := newTestRecord(t, ownerID, "QTN-001")
	quotation.Kind = billing.DocKindQuotation
	require.NoError(t, repo.Save(ctx, quotation))

	other := newTestRecord(t, uuid.New(), "INV-999")
	require.NoError(t, repo.Save(ctx, other))

	all, err := repo.FindAllForOwner(ctx, ownerID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filter := shared.DefaultFilter()
	filter.Filters["kind"] = string(billing.DocKindQuotation)
	quotations, err := repo.FindAllForOwner(ctx, ownerID, filter)
	require.NoError(t, err)
	require.Len(t, quotations, 1)
	assert.Equal(t, "QTN-001", quotations[0].Number)

	count, err := repo.CountForOwner(ctx, ownerID, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGormBillingRecordRepository_FindAllForOwner_Search(t *testing.T) {
	repo := NewGormBillingRecordRepository(setupBillingTestDB(t))
	ctx := context.Background()
	ownerID := uuid.New()

	require.NoError(t, repo.Save(ctx, newTestRecord(t, ownerID, "INV-2026-042")))
	require.NoError(t, repo.Save(ctx, newTestRecord(t, ownerID, "QTN-2026-007")))

	filter := shared.DefaultFilter()
	filter.Search = "inv-2026"
	found, err := repo.FindAllForOwner(ctx, ownerID, filter)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "INV-2026-042", found[0].Number)
}

func TestGormBillingRecordRepository_ExistsByNumber(t *testing.T) {
	repo := NewGormBillingRecordRepository(setupBillingTestDB(t))
	ctx := context.Background()
	ownerID := uuid.New()

	record := newTestRecord(t, ownerID, "INV-001")
	require.NoError(t, repo.Save(ctx, record))

	exists, err := repo.ExistsByNumber(ctx, ownerID, "INV-001", nil)
	require.NoError(t, err)
	assert.True(t, exists)

	// The record itself is excluded when updating.
	exists, err = repo.ExistsByNumber(ctx, ownerID, "INV-001", &record.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	// Other owners may reuse the number.
	exists, err = repo.ExistsByNumber(ctx, uuid.New(), "INV-001", nil)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGormBillingRecordRepository_Delete(t *testing.T) {
	repo := NewGormBillingRecordRepository(setupBillingTestDB(t))
	ctx := context.Background()
	ownerID := uuid.New()

	record := newTestRecord(t, ownerID, "INV-001")
	require.NoError(t, repo.Save(ctx, record))

	assert.ErrorIs(t, repo.Delete(ctx, uuid.New(), record.ID), shared.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, ownerID, record.ID))
	_, err := repo.FindByIDForOwner(ctx, ownerID, record.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
