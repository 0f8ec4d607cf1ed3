package domain

import (
	"errors"
	"fmt"
)

// Errors shared across the storage adapters and the transaction service.
var (
	// ErrNotFound indicates the requested record id has no live row.
	ErrNotFound = errors.New("transaction not found")
	// ErrAuth indicates the service-account credential exchange failed.
	ErrAuth = errors.New("authentication failed")
	// ErrUpload indicates an attachment upload failed.
	ErrUpload = errors.New("file upload failed")
	// ErrQuotaExceeded marks a transient quota signal from the row store.
	ErrQuotaExceeded = errors.New("quota exceeded")
)

// ValidationError reports a malformed required field. It is surfaced to the
// caller before any external call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
