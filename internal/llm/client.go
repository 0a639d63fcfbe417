// Package llm talks to an OpenAI-compatible chat-completions endpoint and
// classifies every failure at the transport boundary so callers never
// match on error strings.
package llm

import (
	"context"
	"errors"
)

// Request is one completion request.
type Request struct {
	ID           string // correlation id, echoed into transcripts
	SystemPrompt string
	UserPrompt   string
	Model        string
	MaxTokens    int
}

// Client is the planning loop's only view of the completion service.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Kind classifies a transport failure.
type Kind int

const (
	// KindUnreachable: the endpoint cannot be dialed at all. Callers skip
	// further retries for the whole invocation.
	KindUnreachable Kind = iota + 1
	// KindTimeout: the request ran past its deadline.
	KindTimeout
	// KindBadStatus: the endpoint answered with a non-2xx status.
	KindBadStatus
	// KindEmptyBody: a 2xx answer carrying no usable content.
	KindEmptyBody
)

func (k Kind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindTimeout:
		return "timeout"
	case KindBadStatus:
		return "bad_status"
	case KindEmptyBody:
		return "empty_body"
	}
	return "unknown"
}

// Error is a classified transport failure.
type Error struct {
	Kind   Kind
	Status int // http status when Kind is KindBadStatus
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return "llm: " + e.Kind.String() + ": " + e.Err.Error()
	}
	return "llm: " + e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the failure kind, or 0 for a nil or foreign error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
