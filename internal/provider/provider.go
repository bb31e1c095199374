package provider

import (
	"context"
	"fmt"
)

// Prompt is a rendered completion request: a system instruction plus the
// user-visible content built from the transcript.
type Prompt struct {
	System string
	User   string
}

// Params controls generation on the backend.
type Params struct {
	MaxTokens   int
	Temperature float32
	Stop        []string
}

// Completer sends a prompt to a hosted completion backend and returns the
// generated text. An empty string with a nil error is a valid result.
type Completer interface {
	Complete(ctx context.Context, p Prompt, params Params) (string, error)
}

// Error is returned for any non-2xx status or transport-level failure from a
// completion backend. StatusCode is 0 for transport failures.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("provider: %s", e.Message)
	}
	return fmt.Sprintf("provider: status %d: %s", e.StatusCode, e.Message)
}
