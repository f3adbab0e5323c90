package llm

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"resume-analyzer/internal/shared/metrics"
	"resume-analyzer/internal/shared/telemetry"
)

var tracer = otel.Tracer("resume-analyzer/internal/llm")

// ErrGenerationFailed matches any *GenerationError.
var ErrGenerationFailed = errors.New("generation failed")

// GenerationError hides provider internals behind a short message. The
// underlying cause stays reachable through Unwrap for logging.
type GenerationError struct {
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	return ErrGenerationFailed.Error() + ": " + e.Message
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

func generationFailed(err error) *GenerationError {
	msg := "model request failed"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		msg = "model request timed out"
	case errors.Is(err, context.Canceled):
		msg = "request cancelled"
	case isBreakerRejection(err):
		msg = "model temporarily unavailable"
	case errors.Is(err, ErrNotConfigured):
		msg = "model not configured"
	case errors.Is(err, ErrSchemaValidation):
		msg = "model returned an invalid response"
	}
	return &GenerationError{Message: msg, Err: err}
}

// Client runs structured generation against a Completer. Each call makes at
// most one upstream request; failures are never retried here.
type Client struct {
	completer Completer
	breaker   *Breaker
}

type Option func(*Client)

func WithBreaker(b *Breaker) Option {
	return func(c *Client) { c.breaker = b }
}

func NewClient(completer Completer, opts ...Option) *Client {
	if completer == nil {
		completer = PlaceholderCompleter{}
	}
	c := &Client{completer: completer}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Analyze sends an analysis prompt and returns the validated result.
func (c *Client) Analyze(ctx context.Context, prompt string) (AnalysisResult, error) {
	ctx, span := tracer.Start(ctx, "llm.analyze")
	defer span.End()

	completion, err := c.complete(ctx, CompletionRequest{
		System: AnalysisSystemPrompt,
		Prompt: prompt,
		Shape:  ShapeAnalysis,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		return AnalysisResult{}, generationFailed(err)
	}

	result, err := ParseAnalysis(completion.Text)
	if err != nil {
		telemetry.Error("llm.invalid_response", map[string]any{
			"shape":    ShapeAnalysis.String(),
			"provider": completion.Provider,
			"model":    completion.Model,
			"err":      truncate(err.Error(), 500),
		})
		span.RecordError(err)
		span.SetStatus(codes.Error, "schema validation failed")
		return AnalysisResult{}, generationFailed(err)
	}
	span.SetAttributes(attribute.Int("analysis.match_score", result.MatchScore))
	return result, nil
}

// CoverLetter sends a regeneration prompt and returns the letter text.
func (c *Client) CoverLetter(ctx context.Context, prompt string) (string, error) {
	ctx, span := tracer.Start(ctx, "llm.cover_letter")
	defer span.End()

	completion, err := c.complete(ctx, CompletionRequest{
		System: CoverLetterSystemPrompt,
		Prompt: prompt,
		Shape:  ShapeCoverLetter,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		return "", generationFailed(err)
	}
	letter, err := ParseCoverLetter(completion.Text)
	if err != nil {
		telemetry.Error("llm.invalid_response", map[string]any{
			"shape":    ShapeCoverLetter.String(),
			"provider": completion.Provider,
			"model":    completion.Model,
			"err":      truncate(err.Error(), 500),
		})
		span.RecordError(err)
		span.SetStatus(codes.Error, "schema validation failed")
		return "", generationFailed(err)
	}
	return letter, nil
}

func (c *Client) complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	completion, err := c.breaker.Execute(func() (Completion, error) {
		return c.completer.Complete(ctx, req)
	})
	if err != nil {
		telemetry.Error("llm.request_failed", map[string]any{
			"shape":   req.Shape.String(),
			"breaker": c.breaker.State(),
			"err":     truncate(err.Error(), 500),
		})
		return Completion{}, err
	}
	logUsage(req.Shape, completion)
	return completion, nil
}

func logUsage(shape Shape, completion Completion) {
	fields := map[string]any{
		"shape":    shape.String(),
		"provider": completion.Provider,
		"model":    completion.Model,
	}
	if u := completion.Usage; u != nil {
		fields["prompt_tokens"] = u.PromptTokens
		fields["completion_tokens"] = u.CompletionTokens
		fields["total_tokens"] = u.TotalTokens
		metrics.AddTokens(completion.Provider, u.PromptTokens, u.CompletionTokens)
	}
	telemetry.Info("llm.response", fields)
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(strings.ReplaceAll(s, "\r", " "), "\n", " ")
	if len(s) > n {
		return s[:n]
	}
	return s
}
