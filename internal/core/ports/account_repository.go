package ports

import (
	"context"
	"time"

	"github.com/peerrent/auth-service/internal/core/domain"
)

// AccountRepository defines the credential store used by the login protocol.
type AccountRepository interface {
	// FindByIdentifier returns domain.ErrAccountNotFound when no account uses the email.
	FindByIdentifier(ctx context.Context, identifier string) (*domain.Account, error)
	// Create returns domain.ErrAlreadyExists when the email is taken.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	// SetPendingCode stores a login code, replacing any previous one.
	SetPendingCode(ctx context.Context, identifier string, code domain.PendingCode, now time.Time) error
	// CompareAndClearPendingCode removes the pending code only if it still
	// equals expected. It reports whether this call performed the removal.
	CompareAndClearPendingCode(ctx context.Context, identifier string, expected domain.PendingCode, now time.Time) (bool, error)
}
