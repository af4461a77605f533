package binding

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownField         = errors.New("unknown request field")
	ErrMissingWrapperType   = errors.New("nested path parameter requires the identifier wrapper type")
	ErrUnsupportedBody      = errors.New("unsupported body selector")
	ErrUnsupportedPathType  = errors.New("unsupported path parameter type")
	ErrUnsupportedQueryType = errors.New("unsupported query parameter type")
	ErrUnsupportedStreaming = errors.New("unsupported streaming mode")
	ErrInvalidTemplate      = errors.New("invalid path template")
	ErrRouteConflict        = errors.New("route conflict")
)

// ResolutionError tells which method, and optionally which field, could
// not be resolved into an HTTP binding.
type ResolutionError struct {
	Service string
	Method  string
	Field   string
	Detail  string
	Err     error
}

func (e *ResolutionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s.%s", e.Service, e.Method)
	if e.Field != "" {
		fmt.Fprintf(&b, ": field '%s'", e.Field)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	if e.Detail != "" {
		fmt.Fprintf(&b, " (%s)", e.Detail)
	}

	return b.String()
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
