package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoice-pipeline/internal/common"
	"invoice-pipeline/internal/logging"
	"invoice-pipeline/internal/server/auditlog"
	"invoice-pipeline/internal/server/models"
)

type fakeRepo struct {
	saved      []*models.InvoiceRecord
	batches    [][]*models.InvoiceRecord
	deleted    []int64
	restored   []int64
	listed     []*models.InvoiceRecord
	saveErr    error
	batchErr   error
	deleteErr  error
	restoreErr error
	gotLimit   int
	gotDeleted bool
	gotSource  models.SourceType
}

func (f *fakeRepo) Save(ctx context.Context, rec *models.InvoiceRecord) (int64, error) {
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	f.saved = append(f.saved, rec)
	rec.ID = int64(len(f.saved))
	return rec.ID, nil
}

func (f *fakeRepo) SaveBatch(ctx context.Context, recs []*models.InvoiceRecord) (int, error) {
	if f.batchErr != nil {
		return 0, f.batchErr
	}
	f.batches = append(f.batches, recs)
	return len(recs), nil
}

func (f *fakeRepo) SoftDelete(ctx context.Context, id int64, reason, actor string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRepo) Restore(ctx context.Context, id int64, actor string) error {
	if f.restoreErr != nil {
		return f.restoreErr
	}
	f.restored = append(f.restored, id)
	return nil
}

func (f *fakeRepo) List(ctx context.Context, limit int, includeDeleted bool) ([]*models.InvoiceRecord, error) {
	f.gotLimit, f.gotDeleted = limit, includeDeleted
	return f.listed, nil
}

func (f *fakeRepo) ListBySource(ctx context.Context, source models.SourceType, limit int) ([]*models.InvoiceRecord, error) {
	f.gotSource, f.gotLimit = source, limit
	return f.listed, nil
}

type fakeAudit struct {
	entries []auditlog.Entry
}

func (f *fakeAudit) Record(ctx context.Context, e auditlog.Entry) {
	f.entries = append(f.entries, e)
}

var fixedNow = time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC)

func newService(repo *fakeRepo, audit *fakeAudit) *InvoiceService {
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewInvoiceService(repo, audit, log, func() time.Time { return fixedNow })
}

func TestCreateManual_AppliesDefaults(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(repo, &fakeAudit{})

	rec, err := svc.CreateManual(context.Background(), ManualInvoiceParams{
		Amount:          decimal.RequireFromString("99.99"),
		TransactionType: " expense ",
	})
	require.NoError(t, err)

	assert.Regexp(t, `^AUTO-[0-9a-f]{8}$`, rec.InvoiceNumber)
	assert.Equal(t, models.DefaultVendorName, rec.VendorName)
	assert.Equal(t, models.DefaultCategory, rec.Category)
	assert.Equal(t, models.SourceManualEntry, rec.SourceType)
	assert.Equal(t, "manual", rec.CreatedBy)
	assert.Equal(t, models.TransactionExpense, rec.TransactionType)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), rec.InvoiceDate)
	assert.Equal(t, fixedNow, rec.IngestedAt)
	assert.Equal(t, int64(1), rec.ID)
	require.Len(t, repo.saved, 1)
}

func TestCreateManual_KeepsCallerValues(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(repo, &fakeAudit{})

	rec, err := svc.CreateManual(context.Background(), ManualInvoiceParams{
		InvoiceNumber: "INV-7",
		VendorName:    "Acme Corp",
		InvoiceDate:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Amount:        decimal.RequireFromString("10"),
		Category:      "Office",
		CreatedBy:     "clerk",
		Notes:         "paper",
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-7", rec.InvoiceNumber)
	assert.Equal(t, "Acme Corp", rec.VendorName)
	assert.Equal(t, "Office", rec.Category)
	assert.Equal(t, "clerk", rec.CreatedBy)
	assert.Equal(t, models.TransactionType(""), rec.TransactionType)
}

func TestCreateManual_SaveError(t *testing.T) {
	repo := &fakeRepo{saveErr: errors.New("db down")}
	svc := newService(repo, &fakeAudit{})

	_, err := svc.CreateManual(context.Background(), ManualInvoiceParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error creating invoice")
}

func TestImportRows_MapsAndCounts(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(repo, &fakeAudit{})

	rows := []ImportRow{
		{Vendor: "Acme Corp", Date: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), Amount: decimal.RequireFromString("5"), TransactionType: "income"},
		{InvoiceNumber: "INV-2", Vendor: "Beta LLC", Date: time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC), Amount: decimal.RequireFromString("7.50"), Category: "Travel"},
	}

	n, err := svc.ImportRows(context.Background(), rows, "q1.xlsx", "importer")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Len(t, repo.batches, 1)
	batch := repo.batches[0]
	require.Len(t, batch, 2)

	assert.Regexp(t, `^AUTO-`, batch[0].InvoiceNumber)
	assert.Equal(t, models.SourceExcelBulk, batch[0].SourceType)
	assert.Equal(t, "q1.xlsx", batch[0].SourceFile)
	assert.Equal(t, "importer", batch[0].CreatedBy)
	assert.Equal(t, models.TransactionIncome, batch[0].TransactionType)
	assert.Equal(t, fixedNow, batch[0].IngestedAt)

	assert.Equal(t, "INV-2", batch[1].InvoiceNumber)
	assert.Equal(t, "Travel", batch[1].Category)
}

func TestImportRows_BatchErrorWritesNothing(t *testing.T) {
	repo := &fakeRepo{batchErr: common.ErrEmptyBatch}
	svc := newService(repo, &fakeAudit{})

	n, err := svc.ImportRows(context.Background(), nil, "q1.xlsx", "importer")
	require.Error(t, err)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, common.ErrEmptyBatch)
}

func TestDelete_RecordsAudit(t *testing.T) {
	repo := &fakeRepo{}
	audit := &fakeAudit{}
	svc := newService(repo, audit)

	require.NoError(t, svc.Delete(context.Background(), 7, "duplicate", "admin"))

	assert.Equal(t, []int64{7}, repo.deleted)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, auditlog.ActionDelete, audit.entries[0].Action)
	assert.Equal(t, int64(7), audit.entries[0].InvoiceID)
	assert.Equal(t, "duplicate", audit.entries[0].Reason)
	assert.Equal(t, fixedNow, audit.entries[0].At)
}

func TestDelete_RepoErrorSkipsAudit(t *testing.T) {
	repo := &fakeRepo{deleteErr: common.ErrAlreadyDeleted}
	audit := &fakeAudit{}
	svc := newService(repo, audit)

	err := svc.Delete(context.Background(), 7, "duplicate", "admin")
	assert.ErrorIs(t, err, common.ErrAlreadyDeleted)
	assert.Empty(t, audit.entries)
}

func TestRestore_RecordsAudit(t *testing.T) {
	repo := &fakeRepo{}
	audit := &fakeAudit{}
	svc := newService(repo, audit)

	require.NoError(t, svc.Restore(context.Background(), 9, "admin"))

	assert.Equal(t, []int64{9}, repo.restored)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, auditlog.ActionRestore, audit.entries[0].Action)
}

func TestRestore_RepoErrorSkipsAudit(t *testing.T) {
	repo := &fakeRepo{restoreErr: common.ErrNotDeleted}
	audit := &fakeAudit{}
	svc := newService(repo, audit)

	err := svc.Restore(context.Background(), 9, "admin")
	assert.ErrorIs(t, err, common.ErrNotDeleted)
	assert.Empty(t, audit.entries)
}

func TestList_Delegates(t *testing.T) {
	repo := &fakeRepo{listed: []*models.InvoiceRecord{{ID: 1}}}
	svc := newService(repo, &fakeAudit{})

	got, err := svc.List(context.Background(), 25, true)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 25, repo.gotLimit)
	assert.True(t, repo.gotDeleted)

	_, err = svc.ListBySource(context.Background(), models.SourcePDFScan, 10)
	require.NoError(t, err)
	assert.Equal(t, models.SourcePDFScan, repo.gotSource)
}
