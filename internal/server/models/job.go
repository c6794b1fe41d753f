package models

import "fmt"

// JobStatus tracks how far a single inbound record made it through the
// pipeline.
type JobStatus string

const (
	JobValidated JobStatus = "validated"
	JobRejected  JobStatus = "rejected"
	JobOCRFailed JobStatus = "ocr_failed"
	JobParsed    JobStatus = "parsed"
	JobPersisted JobStatus = "persisted"
)

// IngestionJob is the transient per-record state. It is discarded once the
// pipeline finishes with the record.
type IngestionJob struct {
	Bucket    string
	Key       string
	Size      int64
	EventName string
	EventTime string
	Format    string
	Status    JobStatus
}

// IdempotencyKey derives the duplicate-delivery identifier for the upload
// event: key + ":" + size + ":" + event time, exactly.
func (j *IngestionJob) IdempotencyKey() string {
	return fmt.Sprintf("%s:%d:%s", j.Key, j.Size, j.EventTime)
}
