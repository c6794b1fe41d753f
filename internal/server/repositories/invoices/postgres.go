package invoices

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"invoice-pipeline/internal/common"
	"invoice-pipeline/internal/dbx"
	"invoice-pipeline/internal/server/models"
)

// BulkInsertThreshold is the batch size at which SaveBatch switches from
// row-wise inserts to a streaming COPY. Batches of exactly this size go
// through COPY.
const BulkInsertThreshold = 100

// defaultListLimit caps listings when the caller passes no usable limit.
const defaultListLimit = 1000

// Both write paths insert the same column set in the same order so they
// cannot drift apart.
const insertColumns = `invoice_number, vendor_name, invoice_date, amount, category, source_type,
		source_file, extraction_confidence, created_by, notes, transaction_type, ingested_at`

const insertQuery = `
	INSERT INTO invoices (` + insertColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	RETURNING id
`

const selectColumns = `id, invoice_number, vendor_name, invoice_date, amount, category, source_type,
		source_file, extraction_confidence, created_by, notes, transaction_type, ingested_at,
		is_deleted, deleted_at, deletion_reason, updated_by, updated_at`

// PostgresRepository implements invoice storage over *sql.DB (pgx stdlib
// driver). It owns its transactions: single saves and row-wise batches run
// inside dbx.WithTx, bulk batches inside a single COPY.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository constructs a repository bound to the given database.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Save inserts one invoice and returns the generated id. The id is also
// written back to rec.ID.
func (r *PostgresRepository) Save(ctx context.Context, rec *models.InvoiceRecord) (int64, error) {
	var id int64
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return tx.QueryRowContext(ctx, insertQuery, insertArgs(rec)...).Scan(&id)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to insert invoice: %w", err)
	}
	rec.ID = id
	return id, nil
}

// SaveBatch writes the whole batch atomically. Small batches are inserted
// row by row in one transaction (generated ids are written back); batches of
// BulkInsertThreshold rows or more stream through COPY.
func (r *PostgresRepository) SaveBatch(ctx context.Context, recs []*models.InvoiceRecord) (int, error) {
	if len(recs) == 0 {
		return 0, common.ErrEmptyBatch
	}
	if len(recs) >= BulkInsertThreshold {
		return r.copyBatch(ctx, recs)
	}
	return r.insertBatch(ctx, recs)
}

func (r *PostgresRepository) insertBatch(ctx context.Context, recs []*models.InvoiceRecord) (int, error) {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, rec := range recs {
			if err := tx.QueryRowContext(ctx, insertQuery, insertArgs(rec)...).Scan(&rec.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to insert invoice batch: %w", err)
	}
	return len(recs), nil
}

// SoftDelete marks a live row deleted, recording when, why and by whom.
// The row keeps all its data and can be restored later.
func (r *PostgresRepository) SoftDelete(ctx context.Context, id int64, reason, actor string) error {
	if strings.TrimSpace(reason) == "" {
		return common.ErrEmptyReason
	}
	query := `
		UPDATE invoices
		SET is_deleted = TRUE, deleted_at = NOW(), deletion_reason = $1, updated_by = $2, updated_at = NOW()
		WHERE id = $3 AND is_deleted = FALSE
	`
	n, err := dbx.ExecAffected(ctx, r.db, query, reason, actor, id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	if n == 0 {
		return common.ErrAlreadyDeleted
	}
	return nil
}

// Restore reverses a soft delete, clearing the deletion bookkeeping.
func (r *PostgresRepository) Restore(ctx context.Context, id int64, actor string) error {
	query := `
		UPDATE invoices
		SET is_deleted = FALSE, deleted_at = NULL, deletion_reason = NULL, updated_by = $1, updated_at = NOW()
		WHERE id = $2 AND is_deleted = TRUE
	`
	n, err := dbx.ExecAffected(ctx, r.db, query, actor, id)
	if err != nil {
		return fmt.Errorf("failed to restore invoice: %w", err)
	}
	if n == 0 {
		return common.ErrNotDeleted
	}
	return nil
}

// List returns the most recently ingested invoices, newest first. Deleted
// rows are filtered out unless includeDeleted is set. A non-positive limit
// falls back to defaultListLimit.
func (r *PostgresRepository) List(ctx context.Context, limit int, includeDeleted bool) ([]*models.InvoiceRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	query := `SELECT ` + selectColumns + ` FROM invoices`
	if !includeDeleted {
		query += ` WHERE is_deleted = FALSE`
	}
	query += ` ORDER BY ingested_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select invoices: %w", err)
	}
	return collectInvoices(rows)
}

// ListBySource returns live invoices for one source type, newest first.
func (r *PostgresRepository) ListBySource(ctx context.Context, source models.SourceType, limit int) ([]*models.InvoiceRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	query := `SELECT ` + selectColumns + ` FROM invoices
		WHERE source_type = $1 AND is_deleted = FALSE
		ORDER BY ingested_at DESC LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, source, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select invoices: %w", err)
	}
	return collectInvoices(rows)
}

func collectInvoices(rows *sql.Rows) ([]*models.InvoiceRecord, error) {
	defer rows.Close()

	var result []*models.InvoiceRecord
	for rows.Next() {
		var (
			item           models.InvoiceRecord
			sourceFile     sql.NullString
			confidence     sql.NullFloat64
			notes          sql.NullString
			txType         sql.NullString
			deletedAt      sql.NullTime
			deletionReason sql.NullString
			updatedBy      sql.NullString
			updatedAt      sql.NullTime
		)
		if err := rows.Scan(
			&item.ID, &item.InvoiceNumber, &item.VendorName, &item.InvoiceDate, &item.Amount,
			&item.Category, &item.SourceType, &sourceFile, &confidence, &item.CreatedBy,
			&notes, &txType, &item.IngestedAt, &item.IsDeleted, &deletedAt, &deletionReason,
			&updatedBy, &updatedAt,
		); err != nil {
			return nil, err
		}
		item.SourceFile = sourceFile.String
		if confidence.Valid {
			item.ExtractionConfidence = &confidence.Float64
		}
		item.Notes = notes.String
		item.TransactionType = models.TransactionType(txType.String)
		if deletedAt.Valid {
			item.DeletedAt = &deletedAt.Time
		}
		item.DeletionReason = deletionReason.String
		item.UpdatedBy = updatedBy.String
		if updatedAt.Valid {
			item.UpdatedAt = &updatedAt.Time
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// insertArgs lines the record up with insertColumns. Empty source file,
// notes and transaction type are stored as NULL, matching what the COPY
// path produces.
func insertArgs(rec *models.InvoiceRecord) []any {
	return []any{
		rec.InvoiceNumber,
		rec.VendorName,
		rec.InvoiceDate,
		rec.Amount,
		rec.Category,
		rec.SourceType,
		nullableString(rec.SourceFile),
		rec.ExtractionConfidence,
		rec.CreatedBy,
		nullableString(rec.Notes),
		nullableString(string(rec.TransactionType)),
		rec.IngestedAt,
	}
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
