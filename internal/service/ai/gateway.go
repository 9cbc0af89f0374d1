package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jaidee/backend/internal/model/chat"
)

// ErrEmptyPrompt is returned when a request has no system or user text.
var ErrEmptyPrompt = errors.New("system prompt and user text are required")

// Request is a single completion call: a system instruction, the prior turns
// of the conversation (possibly none) and the new user text.
type Request struct {
	System    string
	History   []chat.Turn
	Prompt    string
	MaxTokens int
}

// Gateway is the uniform interface over every text-generation backend.
type Gateway interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ErrorKind classifies gateway failures.
type ErrorKind string

const (
	KindNetwork     ErrorKind = "network"
	KindUnavailable ErrorKind = "unavailable"
	KindMalformed   ErrorKind = "malformed"
)

// Error is the typed failure returned by every Gateway implementation.
type Error struct {
	Kind     ErrorKind
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("ai %s error (%s): %v", e.Kind, e.Provider, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a gateway error anywhere in the chain.
func KindOf(err error) (ErrorKind, bool) {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.Kind, true
	}
	return "", false
}

func classify(provider string, err error) *Error {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr
	}

	kind := KindUnavailable
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		kind = KindNetwork
	case errors.As(err, &netErr):
		kind = KindNetwork
	}
	return &Error{Kind: kind, Provider: provider, Err: err}
}

func malformed(provider, reason string) *Error {
	return &Error{Kind: KindMalformed, Provider: provider, Err: errors.New(reason)}
}

func validate(req Request) error {
	if strings.TrimSpace(req.System) == "" || strings.TrimSpace(req.Prompt) == "" {
		return ErrEmptyPrompt
	}
	return nil
}

// Snippet shortens model output for log lines.
func Snippet(text string) string {
	const limit = 80
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit]) + "..."
}
