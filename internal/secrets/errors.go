package secrets

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport is returned when the secret store could not be reached or rejected the request.
	ErrTransport = errors.New("unable to download secret")
	// ErrNoPayload is returned when the store response carries neither a text nor a binary payload.
	ErrNoPayload = errors.New("secret contains no payload")
	// ErrMalformedPayload is returned when the payload is not a JSON object.
	ErrMalformedPayload = errors.New("secret payload must be valid JSON object")
)

// RetrievalError describes a failed secret retrieval. Kind is one of the
// package sentinel errors; Cause carries the underlying failure, if any.
type RetrievalError struct {
	SecretID string
	Kind     error
	Cause    error
}

func (e *RetrievalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("secret %q: %v: %v", e.SecretID, e.Kind, e.Cause)
	}
	return fmt.Sprintf("secret %q: %v", e.SecretID, e.Kind)
}

func (e *RetrievalError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}
