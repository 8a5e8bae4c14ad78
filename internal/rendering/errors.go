package rendering

import (
	"errors"
	"fmt"
)

// Output formats
const (
	FormatPDF   = "pdf"
	FormatLaTeX = "latex"
)

// ErrNoResume is returned when a renderer is handed a nil resume
var ErrNoResume = errors.New("no resume to render")

// RenderError reports a document that could not be produced in Format
type RenderError struct {
	Format string
	Cause  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s rendering failed: %v", e.Format, e.Cause)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// TemplateError reports a LaTeX template that could not be loaded or applied.
// Path is empty for the built-in template.
type TemplateError struct {
	Path    string
	Message string
	Cause   error
}

func (e *TemplateError) Error() string {
	name := e.Path
	if name == "" {
		name = "built-in"
	}
	if e.Cause != nil {
		return fmt.Sprintf("template %s: %s: %v", name, e.Message, e.Cause)
	}
	return fmt.Sprintf("template %s: %s", name, e.Message)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}
