package uploads

import (
	"errors"
	"fmt"
)

var (
	// Caller's fault (4xx-equivalent)
	ErrContentType     = errors.New("content type is not allowed")
	ErrInvalidFileName = errors.New("file name is empty after sanitization")
	ErrNotFound        = errors.New("no media record for storage key")

	// Grant lifecycle
	ErrGrantExpired = errors.New("no active grant for storage key")
	ErrNotUploaded  = errors.New("object was never written to the store")

	// Upstream (retryable by the caller)
	ErrUpstream = errors.New("upstream store unavailable")

	// Clean deletion failure: the object delete did not happen, the record
	// was kept, nothing diverged.
	ErrObjectNotDeleted = errors.New("object not deleted")
)

// PartialFailure is the one error that must never be hidden: one leg of a
// two-system operation committed and the other did not. ObjectLive tells the
// operator which side survived, which is exactly what a reconciliation sweep
// needs to know.
type PartialFailure struct {
	Op         string // "confirm" or "delete"
	StorageKey string
	ObjectLive bool // true: orphaned object, false: dangling metadata was left
	Cause      error
}

func (p *PartialFailure) Error() string {
	if p.Op == "delete" {
		return fmt.Sprintf("metadata not deleted for %q (object already removed): %v", p.StorageKey, p.Cause)
	}
	return fmt.Sprintf("metadata not persisted for %q (object already written): %v", p.StorageKey, p.Cause)
}

func (p *PartialFailure) Unwrap() error { return p.Cause }
