package llm

import (
	"context"
	"errors"
)

// Shape tells a provider which structured response a request expects.
type Shape int

const (
	ShapeText Shape = iota
	ShapeAnalysis
	ShapeCoverLetter
)

func (s Shape) String() string {
	switch s {
	case ShapeAnalysis:
		return "analysis"
	case ShapeCoverLetter:
		return "cover_letter"
	default:
		return "text"
	}
}

// CompletionRequest is a single prompt sent to a text-generation model.
type CompletionRequest struct {
	System string
	Prompt string
	Shape  Shape
}

// Usage reports token accounting when the provider returns it.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Completion is the raw model output.
type Completion struct {
	Text     string
	Provider string
	Model    string
	Usage    *Usage
}

// Completer abstracts LLM providers. Implementations make exactly one
// upstream call per Complete.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
}

// ErrNotConfigured is returned by the placeholder completer.
var ErrNotConfigured = errors.New("llm provider not configured")

// PlaceholderCompleter stands in when no provider credentials are configured.
type PlaceholderCompleter struct{}

func (PlaceholderCompleter) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	if err := ctx.Err(); err != nil {
		return Completion{}, err
	}
	return Completion{}, ErrNotConfigured
}
