package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExtractionResult is the transient OCR output for one document: the
// space-joined text of all LINE blocks in block order, the per-line
// confidences, and their arithmetic mean (0 when no LINE blocks exist).
type ExtractionResult struct {
	Text            string
	LineConfidences []float64
	Confidence      float64
	BlockCount      int
	LineCount       int
}

// ParsedInvoice holds the heuristic field values pulled out of OCR text.
// Every field carries a documented default, so parsing never fails.
type ParsedInvoice struct {
	InvoiceNumber string
	VendorName    string
	InvoiceDate   time.Time
	Amount        decimal.Decimal
	Category      string
}
