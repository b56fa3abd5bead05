package store

import "errors"

// Sentinel errors forming the failure taxonomy shared by every backend.
// Handlers translate them to HTTP statuses; everything else is treated as a
// transient backend failure.
var (
	// ErrNotConfigured reports that no persistence backend is configured.
	ErrNotConfigured = errors.New("store not configured")

	// ErrUnauthorized reports that no caller identity accompanied the
	// operation.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound reports that the record does not exist for this owner.
	// Ownership violations deliberately collapse into this error so a
	// caller cannot probe for other owners' page IDs.
	ErrNotFound = errors.New("not found")

	// ErrValidation reports a structurally invalid request, such as an
	// unknown block type or a block missing its page ID.
	ErrValidation = errors.New("validation failed")
)
