package llm

import (
	"errors"
	"fmt"
)

// ErrUnavailable is matched by every transport, timeout or quota failure of a provider
var ErrUnavailable = errors.New("llm unavailable")

// UnavailableError reports that a provider could not produce a reply
type UnavailableError struct {
	Provider Provider
	Model    string
	Cause    error
}

func (e *UnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s model %q unavailable: %v", e.Provider, e.Model, e.Cause)
	}
	return fmt.Sprintf("%s model %q unavailable", e.Provider, e.Model)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// Is makes errors.Is(err, ErrUnavailable) hold for every UnavailableError
func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

func unavailable(provider Provider, model string, cause error) error {
	return &UnavailableError{Provider: provider, Model: model, Cause: cause}
}
