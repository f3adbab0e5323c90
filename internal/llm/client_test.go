package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientAnalyzeSingleCall(t *testing.T) {
	fake := &fakeCompleter{text: validAnalysisJSON}
	client := NewClient(fake)

	got, err := client.Analyze(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, 72, got.MatchScore)
	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, ShapeAnalysis, fake.requests[0].Shape)
	assert.Equal(t, AnalysisSystemPrompt, fake.requests[0].System)
}

func TestClientAnalyzeSchemaFailureIsGenerationFailed(t *testing.T) {
	fake := &fakeCompleter{text: `{"jobTitle": "x", "matchScore": 500}`}
	client := NewClient(fake)

	_, err := client.Analyze(context.Background(), "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.ErrorIs(t, err, ErrSchemaValidation)
	assert.Equal(t, 1, fake.calls, "no automatic retry")

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "model returned an invalid response", genErr.Message)
}

func TestClientHidesProviderInternals(t *testing.T) {
	fake := &fakeCompleter{err: errors.New("openai error: Incorrect API key provided: sk-abc123 (invalid_request_error)")}
	client := NewClient(fake)

	_, err := client.Analyze(context.Background(), "prompt")
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "model request failed", genErr.Message)
	assert.NotContains(t, genErr.Error(), "sk-abc123")
}

func TestClientTimeoutMessage(t *testing.T) {
	fake := &fakeCompleter{err: context.DeadlineExceeded}
	_, err := NewClient(fake).CoverLetter(context.Background(), "prompt")

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "model request timed out", genErr.Message)
}

func TestClientCoverLetter(t *testing.T) {
	fake := &fakeCompleter{text: "```json\n{\"coverLetter\": \"Dear team,\\nRegards\"}\n```"}
	letter, err := NewClient(fake).CoverLetter(context.Background(), "prompt")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(letter, "Dear team,"))
	assert.Equal(t, ShapeCoverLetter, fake.requests[0].Shape)
}

func TestPlaceholderCompleterNotConfigured(t *testing.T) {
	_, err := NewClient(nil).Analyze(context.Background(), "prompt")
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Equal(t, "model not configured", genErr.Message)
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	fake := &fakeCompleter{err: errors.New("upstream 503")}
	breaker := NewBreaker("test", BreakerSettings{
		Enabled:      true,
		MaxRequests:  1,
		Timeout:      time.Minute,
		MinRequests:  2,
		FailureRatio: 0.5,
	})
	client := NewClient(fake, WithBreaker(breaker))

	for i := 0; i < 2; i++ {
		_, err := client.Analyze(context.Background(), "prompt")
		require.Error(t, err)
	}
	assert.Equal(t, "open", breaker.State())

	_, err := client.Analyze(context.Background(), "prompt")
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "model temporarily unavailable", genErr.Message)
	assert.Equal(t, 2, fake.calls, "open breaker must not reach the provider")
}

func TestBreakerIgnoresCallerCancellation(t *testing.T) {
	fake := &fakeCompleter{err: context.Canceled}
	breaker := NewBreaker("cancel", BreakerSettings{Enabled: true, MinRequests: 1, FailureRatio: 0.1, Timeout: time.Minute})
	client := NewClient(fake, WithBreaker(breaker))

	for i := 0; i < 3; i++ {
		_, _ = client.Analyze(context.Background(), "prompt")
	}
	assert.Equal(t, "closed", breaker.State())
	assert.Equal(t, 3, fake.calls)
}

func TestDisabledBreakerIsNil(t *testing.T) {
	b := NewBreaker("off", BreakerSettings{})
	assert.Nil(t, b)
	assert.Equal(t, "disabled", b.State())
}
