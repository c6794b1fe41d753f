// Package models defines the durable invoice record and the transient
// pipeline artifacts (ingestion jobs, OCR extraction results).
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SourceType tells where an invoice row came from.
type SourceType string

const (
	SourcePDFScan     SourceType = "pdf_scan"
	SourceExcelBulk   SourceType = "excel_bulk"
	SourceManualEntry SourceType = "manual_entry"
)

// TransactionType is the INCOME/EXPENSE tag attached at upload time.
// The empty string means unclassified.
type TransactionType string

const (
	TransactionIncome  TransactionType = "INCOME"
	TransactionExpense TransactionType = "EXPENSE"
)

const (
	DefaultVendorName = "Unknown Vendor"
	DefaultCategory   = "Other"

	// InvoiceNumberPrefix marks numbers generated for rows that arrived
	// without one.
	InvoiceNumberPrefix = "AUTO-"
)

// InvoiceRecord is the durable row owned by the persistence engine.
type InvoiceRecord struct {
	ID                   int64           `json:"id"`
	InvoiceNumber        string          `json:"invoice_number"`
	VendorName           string          `json:"vendor_name"`
	InvoiceDate          time.Time       `json:"invoice_date"`
	Amount               decimal.Decimal `json:"amount"`
	Category             string          `json:"category"`
	SourceType           SourceType      `json:"source_type"`
	SourceFile           string          `json:"source_file"`
	ExtractionConfidence *float64        `json:"extraction_confidence,omitempty"`
	CreatedBy            string          `json:"created_by"`
	Notes                string          `json:"notes,omitempty"`
	TransactionType      TransactionType `json:"transaction_type,omitempty"`
	IngestedAt           time.Time       `json:"ingested_at"`
	IsDeleted            bool            `json:"is_deleted"`
	DeletedAt            *time.Time      `json:"deleted_at,omitempty"`
	DeletionReason       string          `json:"deletion_reason,omitempty"`
	UpdatedBy            string          `json:"updated_by,omitempty"`
	UpdatedAt            *time.Time      `json:"updated_at,omitempty"`
}

// NewInvoiceParams carries caller-supplied fields for a new row. Zero values
// fall back to the documented defaults in NewInvoiceRecord.
type NewInvoiceParams struct {
	InvoiceNumber        string
	VendorName           string
	InvoiceDate          time.Time
	Amount               decimal.Decimal
	Category             string
	SourceType           SourceType
	SourceFile           string
	ExtractionConfidence *float64
	CreatedBy            string
	Notes                string
	TransactionType      TransactionType
	IngestedAt           time.Time
}

// NewInvoiceRecord applies every defaulting rule in one place so that the
// row-wise and bulk write paths cannot drift apart:
//
//   - missing invoice number -> generated "AUTO-" + 8 hex chars
//   - missing vendor         -> "Unknown Vendor"
//   - missing category       -> "Other"
//
// A negative amount is kept as-is; the schema expects >= 0 but does not
// enforce it.
func NewInvoiceRecord(p NewInvoiceParams) InvoiceRecord {
	number := strings.TrimSpace(p.InvoiceNumber)
	if number == "" {
		number = GenerateInvoiceNumber()
	}

	vendor := strings.TrimSpace(p.VendorName)
	if vendor == "" {
		vendor = DefaultVendorName
	}

	category := strings.TrimSpace(p.Category)
	if category == "" {
		category = DefaultCategory
	}

	return InvoiceRecord{
		InvoiceNumber:        number,
		VendorName:           vendor,
		InvoiceDate:          p.InvoiceDate,
		Amount:               p.Amount,
		Category:             category,
		SourceType:           p.SourceType,
		SourceFile:           p.SourceFile,
		ExtractionConfidence: p.ExtractionConfidence,
		CreatedBy:            p.CreatedBy,
		Notes:                p.Notes,
		TransactionType:      p.TransactionType,
		IngestedAt:           p.IngestedAt,
	}
}

// GenerateInvoiceNumber returns "AUTO-" followed by 8 random hex characters.
func GenerateInvoiceNumber() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return InvoiceNumberPrefix + hex[:8]
}
