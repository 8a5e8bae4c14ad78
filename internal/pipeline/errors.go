package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// ErrOracleUnavailable is matched by every run aborted because a stage could not reach the LLM
var ErrOracleUnavailable = errors.New("oracle unavailable")

// OracleUnavailableError reports the stage whose LLM call failed.
// The run is aborted and its state must be discarded.
type OracleUnavailableError struct {
	Pipeline string
	Stage    string
	Cause    error
}

func (e *OracleUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("pipeline %s: stage %s: oracle unavailable: %v", e.Pipeline, e.Stage, e.Cause)
	}
	return fmt.Sprintf("pipeline %s: stage %s: oracle unavailable", e.Pipeline, e.Stage)
}

func (e *OracleUnavailableError) Unwrap() error {
	return e.Cause
}

// Is makes errors.Is(err, ErrOracleUnavailable) hold
func (e *OracleUnavailableError) Is(target error) bool {
	return target == ErrOracleUnavailable
}

// DefinitionError reports a pipeline whose stages read fields nothing has written yet,
// or a concurrent group whose members overlap.
type DefinitionError struct {
	Pipeline string
	Stage    string
	Message  string
	Fields   []string
}

func (e *DefinitionError) Error() string {
	msg := fmt.Sprintf("pipeline %s", e.Pipeline)
	if e.Stage != "" {
		msg += fmt.Sprintf(": stage %s", e.Stage)
	}
	msg += ": " + e.Message
	if len(e.Fields) > 0 {
		msg += fmt.Sprintf(" [%s]", strings.Join(e.Fields, ", "))
	}
	return msg
}

// PromptError reports a stage that could not render its prompt
type PromptError struct {
	Stage string
	Cause error
}

func (e *PromptError) Error() string {
	return fmt.Sprintf("stage %s: failed to build prompt: %v", e.Stage, e.Cause)
}

func (e *PromptError) Unwrap() error {
	return e.Cause
}
