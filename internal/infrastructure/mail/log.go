package mail

import (
	"context"

	"github.com/rs/zerolog"
)

// LogNotifier writes login codes to the log instead of sending mail. It is
// the development driver and must not be used in production.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With().Str("component", "log_notifier").Logger()}
}

func (n *LogNotifier) Send(_ context.Context, address, code string) error {
	n.log.Info().Str("to", address).Str("code", code).Msg("login code")
	return nil
}
