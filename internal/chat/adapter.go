package chat

import (
	"context"
)

// Adapter abstracts chat completion providers.
type Adapter interface {
	// Reply returns the assistant text for the conversation so far.
	Reply(ctx context.Context, history []Message) (string, error)
}
