package port

import (
	"context"

	"billex/internal/domain"
)

// Completion is the raw result of one language-model call.
type Completion struct {
	Text  string
	Usage domain.TokenUsage
	Model string
}

// Completer abstracts a text-completion language model. Implementations
// decode deterministically (temperature 0) and never retry; retry policy
// belongs to the caller.
type Completer interface {
	Complete(ctx context.Context, prompt string) (*Completion, error)
}
