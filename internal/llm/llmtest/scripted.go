// Package llmtest provides a deterministic llm.Client for tests.
package llmtest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jonathan/resume-ats/internal/llm"
)

// ProviderScripted names the fake provider in UnavailableError values
const ProviderScripted llm.Provider = "scripted"

// ErrNoScript is the cause returned for prompts that match no rule
var ErrNoScript = errors.New("no scripted reply for prompt")

// Call is one recorded Generate call
type Call struct {
	Prompt  string
	Options llm.GenerateOptions
}

type rule struct {
	marker string
	reply  string
	err    error
	block  bool
}

// Scripted answers prompts by the first rule whose marker occurs in the prompt.
// It is safe for concurrent use.
type Scripted struct {
	mu    sync.Mutex
	rules []rule
	calls []Call
}

// New returns a Scripted client with no rules
func New() *Scripted {
	return &Scripted{}
}

// On replies with reply to prompts containing marker
func (s *Scripted) On(marker, reply string) *Scripted {
	return s.add(rule{marker: marker, reply: reply})
}

// Fail returns an llm.UnavailableError wrapping err for prompts containing marker
func (s *Scripted) Fail(marker string, err error) *Scripted {
	return s.add(rule{marker: marker, err: err})
}

// Block waits for the request context to end for prompts containing marker
func (s *Scripted) Block(marker string) *Scripted {
	return s.add(rule{marker: marker, block: true})
}

func (s *Scripted) add(r rule) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, r)
	return s
}

// Generate implements llm.Client
func (s *Scripted) Generate(ctx context.Context, prompt string, opts llm.GenerateOptions) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, Call{Prompt: prompt, Options: opts})
	var matched *rule
	for i := range s.rules {
		if strings.Contains(prompt, s.rules[i].marker) {
			r := s.rules[i]
			matched = &r
			break
		}
	}
	s.mu.Unlock()

	switch {
	case matched == nil:
		return "", &llm.UnavailableError{Provider: ProviderScripted, Cause: ErrNoScript}
	case matched.block:
		<-ctx.Done()
		return "", &llm.UnavailableError{Provider: ProviderScripted, Cause: ctx.Err()}
	case matched.err != nil:
		return "", &llm.UnavailableError{Provider: ProviderScripted, Cause: matched.err}
	default:
		return matched.reply, nil
	}
}

// Close implements llm.Client
func (s *Scripted) Close() error {
	return nil
}

// Calls returns every recorded call in arrival order
func (s *Scripted) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount returns how many recorded prompts contain marker
func (s *Scripted) CallCount(marker string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if strings.Contains(c.Prompt, marker) {
			n++
		}
	}
	return n
}

// String summarizes the script for test failure messages
func (s *Scripted) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("Scripted{rules: %d, calls: %d}", len(s.rules), len(s.calls))
}
