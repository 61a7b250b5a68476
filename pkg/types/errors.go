package types

import "errors"

// Error kinds shared across the catalog, storage, and sync layers. Callers
// match with errors.Is; call sites add context with fmt.Errorf and %w.
var (
	// ErrNotFound is returned when a checksum or day lookup names an entity
	// that does not exist. Expected during sync descent.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument is returned for malformed dates, malformed object
	// ids, or an empty object set passed to a day replace.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStore wraps any failure of the underlying key-value store. Batch
	// atomicity guarantees the store is unchanged when it surfaces.
	ErrStore = errors.New("store failure")

	// ErrRemote wraps any fault from a remote peer. It aborts the current
	// sync; the sync may be retried externally.
	ErrRemote = errors.New("remote peer failure")
)
