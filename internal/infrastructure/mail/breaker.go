package mail

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/peerrent/auth-service/internal/api/metrics"
	"github.com/peerrent/auth-service/internal/core/ports"
)

// BreakerConfig configures the circuit breaker around a notifier.
type BreakerConfig struct {
	Name string
	// MaxRequests is the number of trial sends allowed while half-open.
	MaxRequests uint32
	// Interval clears the failure counts while closed. 0 never clears them.
	Interval time.Duration
	// Timeout is how long the breaker stays open before going half-open.
	Timeout time.Duration
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
}

func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:                name,
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// BreakerNotifier stops calling a failing mail relay for a while so that
// code requests do not each wait out the send timeout.
type BreakerNotifier struct {
	next    ports.Notifier
	breaker *gobreaker.CircuitBreaker[struct{}]
}

func NewBreakerNotifier(next ports.Notifier, cfg BreakerConfig, log zerolog.Logger) *BreakerNotifier {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	}

	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(0)

	return &BreakerNotifier{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

// Send returns gobreaker.ErrOpenState without calling the relay while open.
func (b *BreakerNotifier) Send(ctx context.Context, address, code string) error {
	_, err := b.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.Send(ctx, address, code)
	})
	return err
}

func (b *BreakerNotifier) State() gobreaker.State {
	return b.breaker.State()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
