package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"resume-analyzer/internal/shared/telemetry"
)

// BreakerSettings configures the circuit breaker around model calls.
type BreakerSettings struct {
	Enabled      bool
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	MinRequests  uint32
	FailureRatio float64
}

// Breaker stops calling a failing provider for Timeout after it trips.
// A nil *Breaker executes calls directly.
type Breaker struct {
	cb *gobreaker.CircuitBreaker[Completion]
}

// NewBreaker returns nil when settings are disabled.
func NewBreaker(name string, s BreakerSettings) *Breaker {
	if !s.Enabled {
		return nil
	}
	minRequests := s.MinRequests
	if minRequests == 0 {
		minRequests = 5
	}
	ratio := s.FailureRatio
	if ratio <= 0 {
		ratio = 0.6
	}
	return &Breaker{
		cb: gobreaker.NewCircuitBreaker[Completion](gobreaker.Settings{
			Name:        name,
			MaxRequests: s.MaxRequests,
			Interval:    s.Interval,
			Timeout:     s.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				if counts.Requests < minRequests {
					return false
				}
				return float64(counts.TotalFailures)/float64(counts.Requests) >= ratio
			},
			// Caller disconnects say nothing about provider health.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				telemetry.Warn("llm.breaker.state", map[string]any{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				})
			},
		}),
	}
}

func (b *Breaker) Execute(fn func() (Completion, error)) (Completion, error) {
	if b == nil || b.cb == nil {
		return fn()
	}
	return b.cb.Execute(fn)
}

// State reports "closed", "half-open", "open", or "disabled".
func (b *Breaker) State() string {
	if b == nil || b.cb == nil {
		return "disabled"
	}
	return b.cb.State().String()
}

func isBreakerRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
