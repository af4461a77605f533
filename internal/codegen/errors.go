package codegen

import (
	"fmt"
)

// GenerationError aborts the whole generation batch.
type GenerationError struct {
	File string
	Err  error
}

func (e *GenerationError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("could not generate routes: %v", e.Err)
	}

	return fmt.Sprintf("could not generate routes for '%s': %v", e.File, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
