// Package ingest implements the document ingestion pipeline: event
// validation, OCR invocation, field parsing, transaction classification and
// persistence, with failures isolated per record.
package ingest

import (
	"time"

	"github.com/shopspring/decimal"

	"invoice-pipeline/internal/server/models"
)

// Record statuses reported to the caller.
const (
	StatusProcessed = "processed"
	StatusQueued    = "queued_for_textract"
)

// Event is the ingestion trigger payload: one object-upload descriptor per
// record.
type Event struct {
	Records []EventRecord `json:"records"`
}

// EventRecord describes a single uploaded object. Key may arrive
// percent-encoded.
type EventRecord struct {
	Bucket    string `json:"bucket"`
	Key       string `json:"key"`
	Size      int64  `json:"size"`
	EventName string `json:"eventName"`
	EventTime string `json:"eventTime"`
}

// InvoiceData is the extracted field set echoed back for a processed record.
type InvoiceData struct {
	InvoiceNumber        string                 `json:"invoice_number"`
	VendorName           string                 `json:"vendor_name"`
	InvoiceDate          string                 `json:"invoice_date"`
	Amount               decimal.Decimal        `json:"amount"`
	Category             string                 `json:"category"`
	SourceType           models.SourceType      `json:"source_type"`
	SourceFile           string                 `json:"source_file"`
	ExtractionConfidence float64                `json:"extraction_confidence"`
	TransactionType      models.TransactionType `json:"transaction_type,omitempty"`
}

// RecordResult is the per-record outcome. Failures carry Error; successes
// carry the validated descriptor plus, when OCR ran, the extracted data.
type RecordResult struct {
	Success            bool         `json:"success"`
	Bucket             string       `json:"bucket,omitempty"`
	Key                string       `json:"key,omitempty"`
	Size               int64        `json:"size,omitempty"`
	Format             string       `json:"format,omitempty"`
	EventName          string       `json:"eventName,omitempty"`
	EventTime          string       `json:"eventTime,omitempty"`
	IdempotencyKey     string       `json:"idempotencyKey,omitempty"`
	Status             string       `json:"status,omitempty"`
	InvoiceData        *InvoiceData `json:"invoiceData,omitempty"`
	TextractConfidence *float64     `json:"textractConfidence,omitempty"`
	Error              string       `json:"error,omitempty"`
}

// BatchResult aggregates the per-record breakdown for one invocation.
type BatchResult struct {
	Message     string         `json:"message"`
	Results     []RecordResult `json:"results"`
	ProcessedAt time.Time      `json:"processedAt"`
}
