package models

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the server engine and the client transport.
var (
	// ErrNotFound indicates that the referenced entity does not exist
	ErrNotFound = errors.New("entity not found")

	// ErrAlreadyExists indicates a duplicate entity creation
	ErrAlreadyExists = errors.New("entity already exists")

	// ErrVersionConflict indicates that the base version does not match the current one.
	// Use errors.As with *VersionConflictError to get the current server state.
	ErrVersionConflict = errors.New("version conflict")

	// ErrInvalidResolution indicates a merge resolution without payload or an unknown strategy
	ErrInvalidResolution = errors.New("invalid resolution")

	// ErrStoreUnavailable indicates a transport or backing store failure.
	// No commit happened; the operation is safe to retry with a fresh base version.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidIntent indicates a malformed write request
	ErrInvalidIntent = errors.New("invalid write intent")

	// ErrConflictNotFound indicates that the conflict record does not exist
	ErrConflictNotFound = errors.New("conflict record not found")

	// ErrAlreadyResolved indicates an attempt to resolve an immutable, already resolved record
	ErrAlreadyResolved = errors.New("conflict already resolved")

	// ErrLedgerStale indicates that a resolution was committed to the entity store
	// but its conflict record could not be marked resolved. The returned result is valid.
	ErrLedgerStale = errors.New("conflict ledger not updated")
)

// VersionConflictError is returned by a conditional write whose expected version
// does not match. It always carries the current server state.
type VersionConflictError struct {
	Current         *VersionedEntity
	ExpectedVersion int64
}

func (e *VersionConflictError) Error() string {
	if e.Current == nil {
		return fmt.Sprintf("version conflict: expected version %d", e.ExpectedVersion)
	}
	return fmt.Sprintf("version conflict on %q: expected version %d, current version %d",
		e.Current.ID, e.ExpectedVersion, e.Current.Version)
}

// Is makes errors.Is(err, ErrVersionConflict) match
func (e *VersionConflictError) Is(target error) bool {
	return target == ErrVersionConflict
}
