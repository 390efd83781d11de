package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerrent/auth-service/internal/core/domain"
)

func seed(t *testing.T, repo *AccountRepository, email string) *domain.Account {
	t.Helper()
	acc, err := repo.Create(context.Background(), &domain.Account{Identifier: email, SecretHash: "hash", Role: domain.RoleUser})
	require.NoError(t, err)
	return acc
}

func TestAccountRepository_CreateAndFind(t *testing.T) {
	repo := NewAccountRepository()
	created := seed(t, repo, "a@x.com")
	assert.NotEmpty(t, created.ID)

	found, err := repo.FindByIdentifier(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = repo.FindByIdentifier(context.Background(), "A@x.com")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound, "lookups are case-sensitive")
}

func TestAccountRepository_CreateDuplicate(t *testing.T) {
	repo := NewAccountRepository()
	seed(t, repo, "a@x.com")

	_, err := repo.Create(context.Background(), &domain.Account{Identifier: "a@x.com"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestAccountRepository_ReturnsCopies(t *testing.T) {
	repo := NewAccountRepository()
	seed(t, repo, "a@x.com")
	ctx := context.Background()
	require.NoError(t, repo.SetPendingCode(ctx, "a@x.com", domain.PendingCode{Code: "1111", ExpiresAt: time.Now()}, time.Now()))

	found, err := repo.FindByIdentifier(ctx, "a@x.com")
	require.NoError(t, err)
	found.PendingCode.Code = "9999"

	again, err := repo.FindByIdentifier(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "1111", again.PendingCode.Code)
}

func TestAccountRepository_SetPendingCodeUnknown(t *testing.T) {
	repo := NewAccountRepository()
	err := repo.SetPendingCode(context.Background(), "ghost@x.com", domain.PendingCode{Code: "1234"}, time.Now())
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestAccountRepository_CompareAndClear(t *testing.T) {
	repo := NewAccountRepository()
	seed(t, repo, "a@x.com")
	ctx := context.Background()
	exp := time.Now().Add(10 * time.Minute)
	pending := domain.PendingCode{Code: "5678", ExpiresAt: exp}
	require.NoError(t, repo.SetPendingCode(ctx, "a@x.com", pending, time.Now()))

	ok, err := repo.CompareAndClearPendingCode(ctx, "a@x.com", domain.PendingCode{Code: "0000", ExpiresAt: exp}, time.Now())
	require.NoError(t, err)
	assert.False(t, ok, "different code must not clear")

	ok, err = repo.CompareAndClearPendingCode(ctx, "a@x.com", pending, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	found, err := repo.FindByIdentifier(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Nil(t, found.PendingCode)

	ok, err = repo.CompareAndClearPendingCode(ctx, "a@x.com", pending, time.Now())
	require.NoError(t, err)
	assert.False(t, ok, "second clear must fail")
}

func TestAccountRepository_CompareAndClear_ReplacedCode(t *testing.T) {
	repo := NewAccountRepository()
	seed(t, repo, "a@x.com")
	ctx := context.Background()
	first := domain.PendingCode{Code: "5678", ExpiresAt: time.Now().Add(time.Minute)}
	second := domain.PendingCode{Code: "5678", ExpiresAt: first.ExpiresAt.Add(time.Minute)}
	require.NoError(t, repo.SetPendingCode(ctx, "a@x.com", first, time.Now()))
	require.NoError(t, repo.SetPendingCode(ctx, "a@x.com", second, time.Now()))

	ok, err := repo.CompareAndClearPendingCode(ctx, "a@x.com", first, time.Now())
	require.NoError(t, err)
	assert.False(t, ok, "a reissued code with the same digits is a different code")
}

func TestAccountRepository_CompareAndClear_Concurrent(t *testing.T) {
	repo := NewAccountRepository()
	seed(t, repo, "a@x.com")
	ctx := context.Background()
	pending := domain.PendingCode{Code: "5678", ExpiresAt: time.Now().Add(time.Minute)}
	require.NoError(t, repo.SetPendingCode(ctx, "a@x.com", pending, time.Now()))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := repo.CompareAndClearPendingCode(ctx, "a@x.com", pending, time.Now()); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}
