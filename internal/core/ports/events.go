package ports

import (
	"context"

	"github.com/peerrent/auth-service/internal/core/domain"
)

// AuthEventPublisher emits audit events for other PeerRent services.
// Publishing is best effort; callers log failures and carry on.
type AuthEventPublisher interface {
	AccountRegistered(ctx context.Context, account *domain.Account) error
	LoginCodeRequested(ctx context.Context, account *domain.Account) error
	LoginSucceeded(ctx context.Context, account *domain.Account) error
}
