package invoices

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"invoice-pipeline/internal/server/models"
)

func TestEncodeCopyRows_FullRow(t *testing.T) {
	rec := &models.InvoiceRecord{
		InvoiceNumber:        "INV-1",
		VendorName:           "Acme Corp",
		InvoiceDate:          time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Amount:               decimal.RequireFromString("12.34"),
		Category:             "Other",
		SourceType:           models.SourceExcelBulk,
		SourceFile:           "bulk.xlsx",
		ExtractionConfidence: confPtr(98.5),
		CreatedBy:            "importer",
		Notes:                "imported",
		TransactionType:      models.TransactionExpense,
		IngestedAt:           time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	buf, err := encodeCopyRows([]*models.InvoiceRecord{rec})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "INV-1|Acme Corp|2024-01-15|12.34|Other|excel_bulk|bulk.xlsx|98.5|importer|imported|EXPENSE|2024-03-01T12:00:00Z\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected stream:\n got %q\nwant %q", got, want)
	}
}

func TestEncodeCopyRows_EmptyOptionalFieldsStayUnquoted(t *testing.T) {
	// Unquoted empty fields read back as NULL on the server, matching what
	// the row-wise path binds for the same record: source_file, confidence,
	// notes and transaction_type all land NULL on both paths.
	rec := &models.InvoiceRecord{
		InvoiceNumber: "AUTO-1a2b3c4d",
		VendorName:    "Unknown Vendor",
		InvoiceDate:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Amount:        decimal.Zero,
		Category:      "Other",
		SourceType:    models.SourceExcelBulk,
		CreatedBy:     "importer",
		IngestedAt:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	buf, err := encodeCopyRows([]*models.InvoiceRecord{rec})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "AUTO-1a2b3c4d|Unknown Vendor|2024-01-15|0|Other|excel_bulk|||importer|||2024-03-01T12:00:00Z\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected stream:\n got %q\nwant %q", got, want)
	}

	// The row-wise path binds the same optional columns as NULL.
	args := insertArgs(rec)
	for _, idx := range []int{6, 9, 10} {
		if args[idx] != nil {
			t.Fatalf("row-wise arg %d is %v, want NULL", idx, args[idx])
		}
	}
}

func TestWritePathsAgreeOnEmptySourceFile(t *testing.T) {
	rec := sampleRecord()
	rec.SourceFile = ""

	if got := insertArgs(rec)[6]; got != nil {
		t.Fatalf("row-wise empty source_file bound as %v, want NULL", got)
	}

	buf, err := encodeCopyRows([]*models.InvoiceRecord{rec})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "INV-1|Acme Corp|2024-01-15|12.34|Other|pdf_scan||98.5|invoice_processor|Auto-extracted via Textract|EXPENSE|2024-03-01T12:00:00Z\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected stream:\n got %q\nwant %q", got, want)
	}
}

func TestEncodeCopyRows_DelimiterInValueIsQuoted(t *testing.T) {
	rec := sampleRecord()
	rec.VendorName = "Pipes | Fittings Ltd"

	buf, err := encodeCopyRows([]*models.InvoiceRecord{rec})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), `"Pipes | Fittings Ltd"`) {
		t.Fatalf("vendor with delimiter not quoted: %q", buf.String())
	}
}

func TestEncodeCopyRows_OneLinePerRecord(t *testing.T) {
	recs := []*models.InvoiceRecord{sampleRecord(), sampleRecord(), sampleRecord()}
	buf, err := encodeCopyRows(recs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := strings.Count(buf.String(), "\n"); n != len(recs) {
		t.Fatalf("want %d lines, got %d", len(recs), n)
	}
}
