package categorizer

import (
	"context"
)

// AIClient sends one prompt to an external text-classification service and
// returns its raw reply. Implementations must honour ctx cancellation.
type AIClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// AIClientFunc adapts a function to AIClient.
type AIClientFunc func(ctx context.Context, prompt string) (string, error)

// Complete implements AIClient.
func (f AIClientFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
