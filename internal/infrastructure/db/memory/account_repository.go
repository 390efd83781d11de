package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/peerrent/auth-service/internal/core/domain"
)

// AccountRepository is an in-process credential store for local development
// and tests. Accounts are lost on restart.
type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: make(map[string]*domain.Account)}
}

func (r *AccountRepository) FindByIdentifier(_ context.Context, identifier string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acc, ok := r.accounts[identifier]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return clone(acc), nil
}

func (r *AccountRepository) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[account.Identifier]; exists {
		return nil, domain.ErrAlreadyExists
	}
	stored := clone(account)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	r.accounts[stored.Identifier] = stored
	return clone(stored), nil
}

func (r *AccountRepository) SetPendingCode(_ context.Context, identifier string, code domain.PendingCode, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.accounts[identifier]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.PendingCode = &code
	acc.UpdatedAt = now
	return nil
}

func (r *AccountRepository) CompareAndClearPendingCode(_ context.Context, identifier string, expected domain.PendingCode, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.accounts[identifier]
	if !ok {
		return false, domain.ErrAccountNotFound
	}
	p := acc.PendingCode
	if p == nil || p.Code != expected.Code || !p.ExpiresAt.Equal(expected.ExpiresAt) {
		return false, nil
	}
	acc.PendingCode = nil
	acc.UpdatedAt = now
	return true, nil
}

func clone(a *domain.Account) *domain.Account {
	c := *a
	if a.PendingCode != nil {
		p := *a.PendingCode
		c.PendingCode = &p
	}
	return &c
}
