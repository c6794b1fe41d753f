package models

import (
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewInvoiceRecord_Defaults(t *testing.T) {
	rec := NewInvoiceRecord(NewInvoiceParams{
		SourceType: SourceExcelBulk,
		IngestedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	})

	if !regexp.MustCompile(`^AUTO-[0-9a-f]{8}$`).MatchString(rec.InvoiceNumber) {
		t.Errorf("generated invoice number %q does not match AUTO-xxxxxxxx", rec.InvoiceNumber)
	}
	if rec.VendorName != DefaultVendorName {
		t.Errorf("vendor = %q, want %q", rec.VendorName, DefaultVendorName)
	}
	if rec.Category != DefaultCategory {
		t.Errorf("category = %q, want %q", rec.Category, DefaultCategory)
	}
	if rec.TransactionType != "" {
		t.Errorf("transaction type should be unclassified, got %q", rec.TransactionType)
	}
}

func TestNewInvoiceRecord_KeepsCallerValues(t *testing.T) {
	conf := 88.5
	rec := NewInvoiceRecord(NewInvoiceParams{
		InvoiceNumber:        "INV-42",
		VendorName:           "Acme Corp",
		Amount:               decimal.RequireFromString("12.30"),
		Category:             "Utilities",
		SourceType:           SourcePDFScan,
		SourceFile:           "invoices/a.pdf",
		ExtractionConfidence: &conf,
		TransactionType:      TransactionExpense,
	})

	if rec.InvoiceNumber != "INV-42" {
		t.Errorf("invoice number = %q", rec.InvoiceNumber)
	}
	if rec.VendorName != "Acme Corp" {
		t.Errorf("vendor = %q", rec.VendorName)
	}
	if rec.Category != "Utilities" {
		t.Errorf("category = %q", rec.Category)
	}
	if !rec.Amount.Equal(decimal.RequireFromString("12.30")) {
		t.Errorf("amount = %s", rec.Amount)
	}
	if rec.ExtractionConfidence == nil || *rec.ExtractionConfidence != 88.5 {
		t.Errorf("confidence = %v", rec.ExtractionConfidence)
	}
}

func TestNewInvoiceRecord_NegativeAmountNotRejected(t *testing.T) {
	rec := NewInvoiceRecord(NewInvoiceParams{
		VendorName: "Refunds Inc",
		Amount:     decimal.RequireFromString("-5"),
		SourceType: SourceManualEntry,
	})
	if !rec.Amount.IsNegative() {
		t.Errorf("negative amount must be preserved, got %s", rec.Amount)
	}
}

func TestGenerateInvoiceNumber_Unique(t *testing.T) {
	a := GenerateInvoiceNumber()
	b := GenerateInvoiceNumber()
	if a == b {
		t.Errorf("two generated numbers collided: %s", a)
	}
}

func TestIngestionJob_IdempotencyKey(t *testing.T) {
	j := &IngestionJob{
		Key:       "invoices/inv1.pdf",
		Size:      2048,
		EventTime: "2024-03-01T12:00:00Z",
	}
	want := "invoices/inv1.pdf:2048:2024-03-01T12:00:00Z"
	if got := j.IdempotencyKey(); got != want {
		t.Errorf("idempotency key = %q, want %q", got, want)
	}
}
