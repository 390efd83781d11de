package ports

import (
	"time"

	"github.com/peerrent/auth-service/internal/core/domain"
)

// TokenIssuer mints session tokens after a successful login.
type TokenIssuer interface {
	Issue(account *domain.Account) (string, time.Time, error)
	TokenValidator
}

// TokenValidator resolves a session token back to the identity it was issued for.
type TokenValidator interface {
	Validate(token string) (domain.Identity, error)
}
