// Package auditlog records invoice lifecycle actions. Deletes and restores
// are the audited operations; reads are not.
package auditlog

import (
	"context"
	"time"

	"invoice-pipeline/internal/logging"
)

// Actions recorded in the audit trail.
const (
	ActionDelete  = "invoice.delete"
	ActionRestore = "invoice.restore"
)

// Entry is one audited action.
type Entry struct {
	Action    string
	InvoiceID int64
	Actor     string
	Reason    string
	At        time.Time
}

// Writer records audit entries. Recording is best-effort: implementations
// must not fail the business operation.
type Writer interface {
	Record(ctx context.Context, e Entry)
}

// SlogWriter writes audit entries to the structured log.
type SlogWriter struct {
	log logging.Logger
}

func NewSlogWriter(log logging.Logger) *SlogWriter {
	return &SlogWriter{log: log.With("component", "audit")}
}

func (w *SlogWriter) Record(ctx context.Context, e Entry) {
	w.log.Info(ctx, e.Action,
		"invoice_id", e.InvoiceID,
		"actor", e.Actor,
		"reason", e.Reason,
		"at", e.At,
	)
}
