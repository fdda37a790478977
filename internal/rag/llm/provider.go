package llm

import (
	"context"
	"errors"
)

var ErrEmptyCompletion = errors.New("language model returned no text")

// Provider turns a fully formatted prompt into raw model text.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
