// Package pipeline runs ordered lists of LLM-backed stages over a typed state.
//
// Each stage declares the state fields it reads and writes. An oracle stage issues exactly one
// LLM request, parses the reply with a contract and either applies the value or its declared
// fallback. A derived stage is a pure local computation. Pipelines are validated once, when
// they are built, and run strictly in declaration order.
package pipeline

import (
	"context"

	"github.com/jonathan/resume-ats/internal/contract"
	"github.com/jonathan/resume-ats/internal/llm"
)

// Stage categories
const (
	CategoryOracle  = "oracle"
	CategoryDerived = "derived"
	CategoryGroup   = "group"
)

// Definition is the static description of a stage
type Definition struct {
	Name     string
	Category string
	Reads    []string
	Writes   []string
}

// Outcome is how a stage finished
type Outcome string

// Outcomes
const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFallback Outcome = "fallback"
	OutcomeDerived  Outcome = "derived"
	OutcomeFailed   Outcome = "failed"
)

// Report describes a finished stage
type Report struct {
	Outcome Outcome
	// Reason is the contract failure reason for fallbacks
	Reason string
}

// Stage is one step of a pipeline over state S
type Stage[S any] interface {
	Definition() Definition
	// Execute mutates only the fields named in Definition().Writes.
	// A non-nil error aborts the run.
	Execute(ctx context.Context, client llm.Client, state *S) (Report, error)
}

// OracleStage issues one LLM request and decodes the reply with Contract.
// Apply receives the decoded value; Fallback runs instead when the reply does not satisfy the contract.
type OracleStage[S, T any] struct {
	Name     string
	Reads    []string
	Writes   []string
	Prompt   func(state *S) (string, error)
	Options  llm.GenerateOptions
	Contract contract.Contract[T]
	Apply    func(state *S, value T)
	Fallback func(state *S, failure *contract.Failure)
}

// Definition implements Stage
func (s *OracleStage[S, T]) Definition() Definition {
	return Definition{Name: s.Name, Category: CategoryOracle, Reads: s.Reads, Writes: s.Writes}
}

// Execute implements Stage
func (s *OracleStage[S, T]) Execute(ctx context.Context, client llm.Client, state *S) (Report, error) {
	prompt, err := s.Prompt(state)
	if err != nil {
		return Report{Outcome: OutcomeFailed}, &PromptError{Stage: s.Name, Cause: err}
	}

	raw, err := client.Generate(ctx, prompt, s.Options)
	if err != nil {
		return Report{Outcome: OutcomeFailed}, &OracleUnavailableError{Stage: s.Name, Cause: err}
	}

	result := s.Contract.Parse(raw)
	if value, ok := result.Value(); ok {
		s.Apply(state, value)
		return Report{Outcome: OutcomeSuccess}, nil
	}

	failure := result.Failure()
	s.Fallback(state, failure)
	return Report{Outcome: OutcomeFallback, Reason: failure.Reason}, nil
}

// DerivedStage computes fields locally without calling the LLM. It cannot fail.
type DerivedStage[S any] struct {
	Name    string
	Reads   []string
	Writes  []string
	Compute func(state *S)
}

// Definition implements Stage
func (s *DerivedStage[S]) Definition() Definition {
	return Definition{Name: s.Name, Category: CategoryDerived, Reads: s.Reads, Writes: s.Writes}
}

// Execute implements Stage
func (s *DerivedStage[S]) Execute(_ context.Context, _ llm.Client, state *S) (Report, error) {
	s.Compute(state)
	return Report{Outcome: OutcomeDerived}, nil
}

// Group holds mutually independent stages: none reads what a peer writes and no two write the
// same field. The runner may execute them concurrently; otherwise they run in declaration order.
type Group[S any] struct {
	Name   string
	Stages []Stage[S]
}

// Definition implements Stage. Reads and writes are the union over the members.
func (g *Group[S]) Definition() Definition {
	def := Definition{Name: g.Name, Category: CategoryGroup}
	for _, st := range g.Stages {
		d := st.Definition()
		def.Reads = appendUnique(def.Reads, d.Reads...)
		def.Writes = appendUnique(def.Writes, d.Writes...)
	}
	return def
}

// Execute runs the members sequentially. Pipeline.Run handles groups itself; this keeps a Group
// usable as a plain Stage.
func (g *Group[S]) Execute(ctx context.Context, client llm.Client, state *S) (Report, error) {
	for _, st := range g.Stages {
		if _, err := st.Execute(ctx, client, state); err != nil {
			return Report{Outcome: OutcomeFailed}, err
		}
	}
	return Report{Outcome: OutcomeSuccess}, nil
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, existing := range dst {
			if existing == v {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, v)
		}
	}
	return dst
}
