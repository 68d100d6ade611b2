package llm

import (
	"context"
	"errors"
	"fmt"
)

// Message is one chat turn sent to a backend.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Backend executes a single non-streaming completion.
type Backend interface {
	Name() string
	// Ready reports whether the backend has the credentials it needs.
	Ready() bool
	Complete(ctx context.Context, model string, msgs []Message) (string, error)
}

// ErrNotConfigured is returned by backends without credentials.
var ErrNotConfigured = errors.New("llm: backend not configured")

// StatusError is a non-2xx upstream response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm: upstream returned status %d", e.Code)
}

// Kind classifies a failed completion.
type Kind string

const (
	KindNone     Kind = ""
	KindConfig   Kind = "config"
	KindUpstream Kind = "upstream"
	KindNetwork  Kind = "network"
)

// Classify maps a backend error to its Kind and, for upstream errors,
// the HTTP status.
func Classify(err error) (Kind, int) {
	if err == nil {
		return KindNone, 0
	}
	if errors.Is(err, ErrNotConfigured) {
		return KindConfig, 0
	}
	var se *StatusError
	if errors.As(err, &se) {
		return KindUpstream, se.Code
	}
	return KindNetwork, 0
}
