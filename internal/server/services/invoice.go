// Package services implements the business operations behind the HTTP
// surface: manual entry, bulk import, deletion lifecycle and listings.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"invoice-pipeline/internal/logging"
	"invoice-pipeline/internal/server/auditlog"
	"invoice-pipeline/internal/server/ingest"
	"invoice-pipeline/internal/server/models"
	"invoice-pipeline/internal/server/repositories/invoices"
)

// InvoiceService owns the invoice lifecycle outside the OCR pipeline.
type InvoiceService struct {
	repo   invoices.Repository
	audit  auditlog.Writer
	logger logging.Logger
	now    func() time.Time
}

// NewInvoiceService wires the service. now may be nil, in which case
// time.Now is used.
func NewInvoiceService(repo invoices.Repository, audit auditlog.Writer, logger logging.Logger, now func() time.Time) *InvoiceService {
	if now == nil {
		now = time.Now
	}
	return &InvoiceService{repo: repo, audit: audit, logger: logger, now: now}
}

// ManualInvoiceParams carries the fields a clerk types in by hand.
type ManualInvoiceParams struct {
	InvoiceNumber   string          `json:"invoice_number"`
	VendorName      string          `json:"vendor_name"`
	InvoiceDate     time.Time       `json:"invoice_date"`
	Amount          decimal.Decimal `json:"amount"`
	Category        string          `json:"category"`
	CreatedBy       string          `json:"created_by"`
	Notes           string          `json:"notes"`
	TransactionType string          `json:"transaction_type"`
}

// CreateManual stores a hand-entered invoice. Missing fields get the same
// defaults the pipeline applies; a zero date falls back to today.
func (s *InvoiceService) CreateManual(ctx context.Context, p ManualInvoiceParams) (*models.InvoiceRecord, error) {
	date := p.InvoiceDate
	if date.IsZero() {
		n := s.now().UTC()
		date = time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
	}
	createdBy := p.CreatedBy
	if createdBy == "" {
		createdBy = "manual"
	}

	rec := models.NewInvoiceRecord(models.NewInvoiceParams{
		InvoiceNumber:   p.InvoiceNumber,
		VendorName:      p.VendorName,
		InvoiceDate:     date,
		Amount:          p.Amount,
		Category:        p.Category,
		SourceType:      models.SourceManualEntry,
		CreatedBy:       createdBy,
		Notes:           p.Notes,
		TransactionType: ingest.ClassifyTransaction(p.TransactionType),
		IngestedAt:      s.now(),
	})

	if _, err := s.repo.Save(ctx, &rec); err != nil {
		return nil, fmt.Errorf("error creating invoice: %w", err)
	}
	s.logger.Info(ctx, "manual invoice created", "id", rec.ID, "invoice_number", rec.InvoiceNumber)
	return &rec, nil
}

// ImportRow is one invoice-to-be from a bulk import file.
type ImportRow struct {
	InvoiceNumber   string
	Vendor          string
	Date            time.Time
	Amount          decimal.Decimal
	Category        string
	Notes           string
	TransactionType string
}

// ImportRows persists a bulk import atomically and returns the number of
// rows written; on any failure nothing is written and 0 is returned.
func (s *InvoiceService) ImportRows(ctx context.Context, rows []ImportRow, sourceFile, actor string) (int, error) {
	ingested := s.now()
	recs := make([]*models.InvoiceRecord, 0, len(rows))
	for _, row := range rows {
		rec := models.NewInvoiceRecord(models.NewInvoiceParams{
			InvoiceNumber:   row.InvoiceNumber,
			VendorName:      row.Vendor,
			InvoiceDate:     row.Date,
			Amount:          row.Amount,
			Category:        row.Category,
			SourceType:      models.SourceExcelBulk,
			SourceFile:      sourceFile,
			CreatedBy:       actor,
			Notes:           row.Notes,
			TransactionType: ingest.ClassifyTransaction(row.TransactionType),
			IngestedAt:      ingested,
		})
		recs = append(recs, &rec)
	}

	n, err := s.repo.SaveBatch(ctx, recs)
	if err != nil {
		return 0, fmt.Errorf("error importing invoices: %w", err)
	}
	s.logger.Info(ctx, "bulk import finished", "source_file", sourceFile, "rows", n)
	return n, nil
}

// Delete soft-deletes an invoice and records the action in the audit trail.
func (s *InvoiceService) Delete(ctx context.Context, id int64, reason, actor string) error {
	if err := s.repo.SoftDelete(ctx, id, reason, actor); err != nil {
		return err
	}
	s.audit.Record(ctx, auditlog.Entry{
		Action:    auditlog.ActionDelete,
		InvoiceID: id,
		Actor:     actor,
		Reason:    reason,
		At:        s.now(),
	})
	return nil
}

// Restore reverses a soft delete and records the action in the audit trail.
func (s *InvoiceService) Restore(ctx context.Context, id int64, actor string) error {
	if err := s.repo.Restore(ctx, id, actor); err != nil {
		return err
	}
	s.audit.Record(ctx, auditlog.Entry{
		Action:    auditlog.ActionRestore,
		InvoiceID: id,
		Actor:     actor,
		At:        s.now(),
	})
	return nil
}

// List returns recent invoices, optionally including soft-deleted rows.
func (s *InvoiceService) List(ctx context.Context, limit int, includeDeleted bool) ([]*models.InvoiceRecord, error) {
	return s.repo.List(ctx, limit, includeDeleted)
}

// ListBySource returns recent live invoices from one source.
func (s *InvoiceService) ListBySource(ctx context.Context, source models.SourceType, limit int) ([]*models.InvoiceRecord, error) {
	return s.repo.ListBySource(ctx, source, limit)
}
