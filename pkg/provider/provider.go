// Package provider wraps the generative AI provider behind the two operations
// the Neural AI backend forwards to: chat completion and image generation.
package provider

import (
	"context"
	"errors"

	"github.com/papercomputeco/neural/pkg/llm"
)

// Provider is the upstream the proxy forwards to. Implementations must be
// safe for concurrent use; a single value is shared by every request.
type Provider interface {
	// Chat sends messages as-is and returns the first choice's content.
	Chat(ctx context.Context, messages []llm.Message) (string, error)

	// GenerateImage returns the URL of the first image generated for prompt.
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

var (
	// ErrNoChoices is returned when a completion carries no choices.
	ErrNoChoices = errors.New("provider returned no choices")

	// ErrNoImages is returned when an image response carries no images.
	ErrNoImages = errors.New("provider returned no images")
)
