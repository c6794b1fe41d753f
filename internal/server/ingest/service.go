package ingest

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"invoice-pipeline/internal/logging"
	"invoice-pipeline/internal/server/models"
	"invoice-pipeline/internal/server/parsing"
)

// Store persists extracted invoices. Satisfied by the invoices repository.
type Store interface {
	Save(ctx context.Context, rec *models.InvoiceRecord) (int64, error)
}

// MetadataReader fetches the user metadata attached to an uploaded object.
type MetadataReader interface {
	ObjectMetadata(ctx context.Context, bucket, key string) (map[string]string, error)
}

// TextExtractor runs OCR over a stored document.
type TextExtractor interface {
	Extract(ctx context.Context, bucket, key string) (*models.ExtractionResult, error)
}

// Options carries the policy knobs the pipeline needs from configuration.
type Options struct {
	TextractEnabled     bool
	TextractTimeout     time.Duration
	ConfidenceThreshold float64
}

// Service drives one upload record through the full pipeline:
// validate, classify from metadata, OCR, parse, persist. Each record is
// independent; one record's failure never aborts the batch.
type Service struct {
	validator *Validator
	metadata  MetadataReader
	extractor TextExtractor
	parser    *parsing.Parser
	store     Store
	logger    logging.Logger
	opts      Options
	now       func() time.Time
}

// NewService wires the pipeline. now may be nil, in which case time.Now is
// used.
func NewService(v *Validator, metadata MetadataReader, extractor TextExtractor,
	parser *parsing.Parser, store Store, logger logging.Logger, opts Options,
	now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		validator: v,
		metadata:  metadata,
		extractor: extractor,
		parser:    parser,
		store:     store,
		logger:    logger,
		opts:      opts,
		now:       now,
	}
}

// ProcessEvent runs every record in the event through the pipeline and
// aggregates the per-record outcomes.
func (s *Service) ProcessEvent(ctx context.Context, ev Event) BatchResult {
	results := make([]RecordResult, 0, len(ev.Records))
	succeeded := 0
	for _, rec := range ev.Records {
		r := s.processRecord(ctx, rec)
		if r.Success {
			succeeded++
		}
		results = append(results, r)
	}

	s.logger.Info(ctx, "event processed", "records", len(results), "succeeded", succeeded)

	return BatchResult{
		Message:     fmt.Sprintf("Processed %d records, %d successful", len(results), succeeded),
		Results:     results,
		ProcessedAt: s.now().UTC(),
	}
}

func (s *Service) processRecord(ctx context.Context, raw EventRecord) RecordResult {
	// Object keys arrive percent-encoded ('+' for spaces included).
	if decoded, err := url.QueryUnescape(raw.Key); err == nil {
		raw.Key = decoded
	}

	job, err := s.validator.Validate(raw)
	if err != nil {
		s.logger.Warn(ctx, "record rejected", "key", raw.Key, "reason", err.Error())
		return RecordResult{Success: false, Key: raw.Key, Error: err.Error()}
	}

	txType := s.classifyFromMetadata(ctx, job)

	result := RecordResult{
		Success:        true,
		Bucket:         job.Bucket,
		Key:            job.Key,
		Size:           job.Size,
		Format:         job.Format,
		EventName:      job.EventName,
		EventTime:      job.EventTime,
		IdempotencyKey: job.IdempotencyKey(),
		Status:         StatusQueued,
	}

	if !s.opts.TextractEnabled {
		return result
	}

	octx, cancel := context.WithTimeout(ctx, s.opts.TextractTimeout)
	defer cancel()

	extraction, err := s.extractor.Extract(octx, job.Bucket, job.Key)
	if err != nil {
		// OCR trouble is not the uploader's fault: acknowledge the upload
		// and leave the document queued for a retry.
		job.Status = models.JobOCRFailed
		s.logger.Warn(ctx, "text extraction failed", "key", job.Key, "error", err)
		return result
	}

	if extraction.Confidence < s.opts.ConfidenceThreshold {
		s.logger.Warn(ctx, "low extraction confidence",
			"key", job.Key, "confidence", extraction.Confidence, "threshold", s.opts.ConfidenceThreshold)
	}

	fields := s.parser.Parse(extraction.Text)
	job.Status = models.JobParsed

	confidence := extraction.Confidence
	rec := models.NewInvoiceRecord(models.NewInvoiceParams{
		InvoiceNumber:        fields.InvoiceNumber,
		VendorName:           fields.VendorName,
		InvoiceDate:          fields.InvoiceDate,
		Amount:               fields.Amount,
		Category:             fields.Category,
		SourceType:           models.SourcePDFScan,
		SourceFile:           job.Key,
		ExtractionConfidence: &confidence,
		CreatedBy:            "invoice_processor",
		Notes:                "Auto-extracted via Textract",
		TransactionType:      txType,
		IngestedAt:           s.now(),
	})

	if _, err := s.store.Save(ctx, &rec); err != nil {
		s.logger.Error(ctx, "failed to persist invoice", "key", job.Key, "error", err)
		return RecordResult{Success: false, Key: job.Key, Error: fmt.Sprintf("Failed to save invoice: %v", err)}
	}
	job.Status = models.JobPersisted

	result.Status = StatusProcessed
	result.TextractConfidence = &confidence
	result.InvoiceData = &InvoiceData{
		InvoiceNumber:        rec.InvoiceNumber,
		VendorName:           rec.VendorName,
		InvoiceDate:          rec.InvoiceDate.Format("2006-01-02"),
		Amount:               rec.Amount,
		Category:             rec.Category,
		SourceType:           rec.SourceType,
		SourceFile:           rec.SourceFile,
		ExtractionConfidence: confidence,
		TransactionType:      rec.TransactionType,
	}
	return result
}

// classifyFromMetadata reads the transaction-type tag set at upload time.
// Metadata trouble downgrades to unclassified rather than failing the record.
func (s *Service) classifyFromMetadata(ctx context.Context, job *models.IngestionJob) models.TransactionType {
	if s.metadata == nil {
		return ""
	}
	meta, err := s.metadata.ObjectMetadata(ctx, job.Bucket, job.Key)
	if err != nil {
		s.logger.Warn(ctx, "could not read object metadata", "key", job.Key, "error", err)
		return ""
	}
	raw, ok := meta["transaction-type"]
	if !ok {
		raw = meta["transaction_type"]
	}
	return ClassifyTransaction(raw)
}
