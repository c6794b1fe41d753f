// Package parsing extracts structured invoice fields from OCR text with
// ordered pattern lists. Each field is extracted independently: patterns are
// tried in order, the first match wins, and a field with no match takes its
// documented default. Parsing never fails on malformed input.
package parsing

import (
	"time"

	"invoice-pipeline/internal/server/models"
)

// Parser turns the space-joined LINE text of a document into a
// models.ParsedInvoice. The clock is injected so the "no date found,
// use today" fallback stays deterministic under test.
type Parser struct {
	now func() time.Time
}

// New returns a Parser using the given clock; nil means time.Now.
func New(now func() time.Time) *Parser {
	if now == nil {
		now = time.Now
	}
	return &Parser{now: now}
}

// Parse extracts all invoice fields. Category is always "Other": there is no
// classification logic at the parsing stage.
func (p *Parser) Parse(text string) models.ParsedInvoice {
	return models.ParsedInvoice{
		InvoiceNumber: ExtractInvoiceNumber(text),
		VendorName:    ExtractVendorName(text),
		InvoiceDate:   p.ExtractDate(text),
		Amount:        ExtractAmount(text),
		Category:      models.DefaultCategory,
	}
}
