// Package oracle abstracts the external reasoning engine behind a small
// completion interface. The pipeline core never talks HTTP directly; it
// hands an Oracle a prompt and receives opaque text to parse and validate
// at its own boundary.
package oracle

import (
	"context"
	"sync"

	"maestro/internal/errors"
)

// Request is a single completion request.
type Request struct {
	// System is the system prompt framing the oracle's role.
	System string

	// Prompt is the user-turn content.
	Prompt string

	// ForceJSON asks the backend to constrain output to a JSON object,
	// where the backend supports it.
	ForceJSON bool
}

// Oracle produces completions for the analyzers, the reasoning synthesizer,
// and the executor. Implementations must be safe for concurrent use.
type Oracle interface {
	// Complete returns the raw text of the oracle's response. An empty
	// response is an error, never an empty string.
	Complete(ctx context.Context, req Request) (string, error)

	// Name identifies the backend for logs and reports.
	Name() string
}

// Scripted is an offline Oracle that replays canned responses in order.
// It backs tests and the offline synthesize command.
type Scripted struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     int

	// Requests records every request received, for assertions.
	Requests []Request
}

// NewScripted creates a Scripted oracle that returns the given responses
// one per call. A nil entry in errs (or a short errs slice) means the call
// succeeds.
func NewScripted(responses ...string) *Scripted {
	return &Scripted{responses: responses}
}

// FailWith makes call number n (zero-based) return err instead of content.
func (s *Scripted) FailWith(n int, err error) *Scripted {
	for len(s.errs) <= n {
		s.errs = append(s.errs, nil)
	}
	s.errs[n] = err
	return s
}

// Complete replays the next scripted response.
func (s *Scripted) Complete(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.Wrap(errors.ErrCanceled, err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.calls
	s.calls++
	s.Requests = append(s.Requests, req)

	if n < len(s.errs) && s.errs[n] != nil {
		return "", s.errs[n]
	}
	if n >= len(s.responses) {
		return "", errors.ErrOracleEmptyResponse
	}
	if s.responses[n] == "" {
		return "", errors.ErrOracleEmptyResponse
	}
	return s.responses[n], nil
}

// Name identifies the scripted backend.
func (s *Scripted) Name() string {
	return "scripted"
}

// Calls returns how many completions have been requested.
func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
