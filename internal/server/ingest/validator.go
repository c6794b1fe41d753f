package ingest

import (
	"fmt"
	"strings"

	"invoice-pipeline/internal/server/models"
)

// Validator checks inbound upload descriptors against format and size
// policy. It is a pure function over its configuration: no side effects,
// every outcome is a returned value.
type Validator struct {
	targetBucket string
	allowed      map[string]struct{}
	allowedList  []string
	maxSize      int64
}

// NewValidator builds a validator. targetBucket may be empty, in which case
// any bucket is accepted. Formats are matched case-insensitively.
func NewValidator(targetBucket string, allowedFormats []string, maxSize int64) *Validator {
	allowed := make(map[string]struct{}, len(allowedFormats))
	list := make([]string, 0, len(allowedFormats))
	for _, f := range allowedFormats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		allowed[f] = struct{}{}
		list = append(list, f)
	}
	return &Validator{
		targetBucket: targetBucket,
		allowed:      allowed,
		allowedList:  list,
		maxSize:      maxSize,
	}
}

// Validate applies the policy rules in order: bucket match, extension
// presence, allowed extension, size limit (size equal to the maximum is
// accepted). The returned error is a policy rejection with a human-readable
// reason, not a fault.
func (v *Validator) Validate(r EventRecord) (*models.IngestionJob, error) {
	if v.targetBucket != "" && r.Bucket != v.targetBucket {
		return nil, fmt.Errorf("Unexpected bucket: %s (expected %s)", r.Bucket, v.targetBucket)
	}

	ext := ""
	if i := strings.LastIndex(r.Key, "."); i >= 0 {
		ext = strings.ToLower(r.Key[i+1:])
	}
	if _, ok := v.allowed[ext]; !ok {
		return nil, fmt.Errorf("Invalid file format: %s. Allowed: %s", ext, strings.Join(v.allowedList, ", "))
	}

	if r.Size > v.maxSize {
		return nil, fmt.Errorf("File too large: %d bytes > %d bytes", r.Size, v.maxSize)
	}

	return &models.IngestionJob{
		Bucket:    r.Bucket,
		Key:       r.Key,
		Size:      r.Size,
		EventName: r.EventName,
		EventTime: r.EventTime,
		Format:    ext,
		Status:    models.JobValidated,
	}, nil
}
