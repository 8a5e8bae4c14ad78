// Package contract turns loosely structured generator replies into strict values.
//
// Every contract is a small pipeline of total transforms (strip wrapping, decode, check shape)
// that yields a tagged Result. Parsing never panics and never returns an error value: a reply
// that cannot be used is a Failure, which callers must handle explicitly.
package contract

import "fmt"

// Contract describes the expected shape of a reply and how to decode it.
type Contract[T any] interface {
	// Name identifies the contract in diagnostics
	Name() string
	// Parse decodes raw generator text
	Parse(raw string) Result[T]
}

// Failure describes why a reply did not satisfy a contract
type Failure struct {
	Contract string
	Reason   string
	Raw      string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("contract %s not satisfied: %s", f.Contract, f.Reason)
}

// Result is either a decoded value or a Failure, never both.
type Result[T any] struct {
	value   T
	failure *Failure
}

// Ok wraps a successfully decoded value
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Fail wraps a parse failure
func Fail[T any](contract, reason, raw string) Result[T] {
	return Result[T]{failure: &Failure{Contract: contract, Reason: reason, Raw: raw}}
}

// Value returns the decoded value and whether decoding succeeded
func (r Result[T]) Value() (T, bool) {
	return r.value, r.failure == nil
}

// Failure returns the parse failure, or nil on success
func (r Result[T]) Failure() *Failure {
	return r.failure
}

// OK reports whether decoding succeeded
func (r Result[T]) OK() bool {
	return r.failure == nil
}
