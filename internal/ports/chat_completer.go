package ports

import (
	"context"
	"errors"
)

var ErrChatNotConfigured = errors.New("chat completion not configured")

type ChatMessage struct {
	Role    string
	Content string
}

type ChatOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// ChatCompleter is the pluggable text-completion capability. Implementations
// return ErrChatNotConfigured when credentials or a model id are missing so
// callers can degrade to deterministic answers.
type ChatCompleter interface {
	Complete(ctx context.Context, system string, history []ChatMessage, opts ChatOptions) (string, error)
	Configured() bool
	ModelName() string
}
