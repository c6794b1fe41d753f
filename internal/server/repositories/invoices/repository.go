// Package invoices provides the PostgreSQL-backed repository for invoice
// persistence: row-wise and bulk writes, soft delete/restore, and listings.
package invoices

import (
	"context"

	"invoice-pipeline/internal/server/models"
)

// Repository is the persistence surface for invoice rows.
type Repository interface {
	// Save inserts a single invoice in its own transaction and returns the
	// generated row id.
	Save(ctx context.Context, rec *models.InvoiceRecord) (int64, error)

	// SaveBatch inserts a batch atomically, choosing the write strategy by
	// batch size, and returns the number of rows written. All-or-nothing:
	// any failure leaves the table untouched.
	SaveBatch(ctx context.Context, recs []*models.InvoiceRecord) (int, error)

	// SoftDelete marks a live row deleted. Returns common.ErrAlreadyDeleted
	// when the row is missing or already deleted, common.ErrEmptyReason when
	// no reason is given.
	SoftDelete(ctx context.Context, id int64, reason, actor string) error

	// Restore brings a soft-deleted row back. Returns common.ErrNotDeleted
	// when the row is missing or not deleted.
	Restore(ctx context.Context, id int64, actor string) error

	// List returns the most recently ingested rows, live only unless
	// includeDeleted is set.
	List(ctx context.Context, limit int, includeDeleted bool) ([]*models.InvoiceRecord, error)

	// ListBySource returns live rows for one source type.
	ListBySource(ctx context.Context, source models.SourceType, limit int) ([]*models.InvoiceRecord, error)
}
