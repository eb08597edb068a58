package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/tasklists/internal/adapter/metrics"
)

// CircuitBreakerHook fails Redis calls fast while Redis is unhealthy. Callers
// treat the resulting errors like any other Redis failure: the cache misses
// and the denylist check is skipped with a warning.
type CircuitBreakerHook struct {
	cb circuitbreaker.CircuitBreaker[any]
}

var _ goredis.Hook = (*CircuitBreakerHook)(nil)

// NewCircuitBreakerHook opens at a 60% failure rate over at least 5 calls in
// a 10s window, probes again after 30s and closes after one success.
func NewCircuitBreakerHook(m *metrics.RedisMetrics) *CircuitBreakerHook {
	cb := circuitbreaker.NewBuilder[any]().
		WithFailureRateThreshold(0.6, 5, 10*time.Second).
		WithDelay(30 * time.Second).
		WithSuccessThreshold(1).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			slog.Warn("Circuit breaker state changed",
				"component", "redis",
				"from", e.OldState.String(),
				"to", e.NewState.String(),
			)
			m.BreakerStateChanges.WithLabelValues(e.NewState.String()).Inc()
			m.BreakerState.Set(stateToFloat(e.NewState))
		}).
		Build()

	return &CircuitBreakerHook{cb: cb}
}

func stateToFloat(state circuitbreaker.State) float64 {
	switch state {
	case circuitbreaker.ClosedState:
		return 0
	case circuitbreaker.HalfOpenState:
		return 1
	case circuitbreaker.OpenState:
		return 2
	default:
		return -1
	}
}

// errBreakerOpen wraps circuitbreaker.ErrOpen so callers can match on it.
var errBreakerOpen = fmt.Errorf("redis circuit breaker open: %w", circuitbreaker.ErrOpen)

// guard runs call if the breaker grants a permit and records the outcome.
// Errors for which healthy returns true count as successes.
func (h *CircuitBreakerHook) guard(call func() error, healthy func(error) bool) error {
	if !h.cb.TryAcquirePermit() {
		return errBreakerOpen
	}
	err := call()
	if err == nil || healthy(err) {
		h.cb.RecordSuccess()
	} else {
		h.cb.RecordError(err)
	}
	return err
}

func never(error) bool { return false }

// isNil treats a missing key as a healthy reply.
func isNil(err error) bool { return errors.Is(err, goredis.Nil) }

func (h *CircuitBreakerHook) DialHook(next goredis.DialHook) goredis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		var conn net.Conn
		err := h.guard(func() error {
			var err error
			conn, err = next(ctx, network, addr)
			return err
		}, never)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
}

func (h *CircuitBreakerHook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		err := h.guard(func() error { return next(ctx, cmd) }, isNil)
		if errors.Is(err, circuitbreaker.ErrOpen) {
			cmd.SetErr(err)
		}
		return err
	}
}

func (h *CircuitBreakerHook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []goredis.Cmder) error {
		return h.guard(func() error { return next(ctx, cmds) }, never)
	}
}

// State returns the current breaker state.
func (h *CircuitBreakerHook) State() circuitbreaker.State {
	return h.cb.State()
}
