package ports

import (
	"context"

	"github.com/peerrent/auth-service/internal/core/domain"
)

// AuthService is the hybrid OTP login protocol: register with a PIN, request
// an emailed code, then log in with PIN and code combined.
type AuthService interface {
	Register(ctx context.Context, identifier, pin string) (*domain.Account, error)
	RequestLoginCode(ctx context.Context, identifier string) error
	VerifyAndLogin(ctx context.Context, identifier, combinedKey string) (*domain.Session, error)
	// Logout is stateless: the token stays valid until it expires and the
	// client is expected to discard it.
	Logout(ctx context.Context, token string)
	// Lookup is used by the admin area; it never exposes the secret hash.
	Lookup(ctx context.Context, identifier string) (*domain.Account, error)
}
