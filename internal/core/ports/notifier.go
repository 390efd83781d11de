package ports

import "context"

// Notifier delivers a login code to an address out-of-band.
type Notifier interface {
	Send(ctx context.Context, address, code string) error
}
