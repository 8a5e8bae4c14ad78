package ingestion

import (
	"errors"
	"fmt"
)

// Extraction failure kinds, matched with errors.Is
var (
	ErrNotFound     = errors.New("document not found")
	ErrCorruptInput = errors.New("document could not be parsed")
	ErrEmpty        = errors.New("document contains no text")
	ErrUnsupported  = errors.New("unsupported document format")
)

// ExtractionError reports why text could not be extracted from a document
type ExtractionError struct {
	Path  string
	Kind  error
	Cause error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v: %v", e.Path, e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Kind)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// Is matches the failure kind
func (e *ExtractionError) Is(target error) bool {
	return target == e.Kind
}
