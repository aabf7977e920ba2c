package storage

import "errors"

// Common client storage errors
var (
	// ErrAuthNotFound indicates that no authentication data exists
	ErrAuthNotFound = errors.New("authentication data not found")

	// ErrOperationNotFound indicates that the offline operation does not exist
	ErrOperationNotFound = errors.New("offline operation not found")

	// ErrInvalidTransition indicates a forbidden operation status change
	ErrInvalidTransition = errors.New("invalid operation status transition")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
