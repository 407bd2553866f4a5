// Package apperr defines the sentinel errors shared across the indexing engine.
package apperr

import "errors"

var (
	// ErrNotFound indicates a root or file that does not exist on disk,
	// or a store record that was never indexed.
	ErrNotFound = errors.New("not found")

	// ErrAccessDenied indicates a permission failure, distinct from absence.
	ErrAccessDenied = errors.New("access denied")

	// ErrDecodeFailure indicates that no supported text encoding could
	// decode the file content.
	ErrDecodeFailure = errors.New("decode failure")

	// ErrUnsupportedFile indicates a wrong extension or a non-regular file.
	ErrUnsupportedFile = errors.New("unsupported file")

	// ErrStorageConnection indicates the derived store is unreachable or locked.
	ErrStorageConnection = errors.New("storage connection failure")

	// ErrStorageCorruption indicates the store failed its structural self-check.
	ErrStorageCorruption = errors.New("storage corruption")

	// ErrConsistency indicates file and derived state observed out of step
	// outside of orphan cleanup.
	ErrConsistency = errors.New("consistency violation")
)
