package openapi

import (
	"errors"
	"fmt"
)

var (
	ErrNotMapping            = errors.New("openapi document is not a mapping")
	ErrMalformedDocument     = errors.New("malformed openapi document")
	ErrUnsupportedVersion    = errors.New("unsupported openapi version")
	ErrInvalidErrorSchemaRef = errors.New("error schema reference must point into '#/components/schemas/'")
	ErrMissingSchema         = errors.New("referenced schema not found")
)

// PhaseError tells which pipeline phase failed. The document must be
// discarded when Patch returns it.
type PhaseError struct {
	Phase string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("openapi phase '%s' failed: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}
