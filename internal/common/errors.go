// Package common holds sentinel errors shared between repositories,
// services and the HTTP layer.
package common

import "errors"

var (

	// repository specific errors
	ErrNotFound = errors.New("not found")

	// soft-delete lifecycle errors: delete requires an active row,
	// restore requires a deleted one
	ErrAlreadyDeleted = errors.New("not found or already deleted")
	ErrNotDeleted     = errors.New("not found or not deleted")

	// service specific errors
	ErrEmptyReason = errors.New("deletion reason is required")
	ErrEmptyBatch  = errors.New("empty batch")
)
