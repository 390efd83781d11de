package mail

import (
	"context"
	"time"

	"github.com/peerrent/auth-service/internal/api/metrics"
	"github.com/peerrent/auth-service/internal/core/ports"
)

type instrumented struct {
	next ports.Notifier
}

// Instrument records delivery results and latency for next.
func Instrument(next ports.Notifier) ports.Notifier {
	return instrumented{next: next}
}

func (i instrumented) Send(ctx context.Context, address, code string) error {
	start := time.Now()
	err := i.next.Send(ctx, address, code)
	metrics.NotificationDuration.Observe(time.Since(start).Seconds())

	result := "sent"
	if err != nil {
		result = "failed"
	}
	metrics.NotificationsTotal.WithLabelValues(result).Inc()
	return err
}
