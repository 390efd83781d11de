package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/peerrent/auth-service/internal/api/metrics"
	"github.com/peerrent/auth-service/internal/core/domain"
	"github.com/peerrent/auth-service/internal/core/ports"
)

const (
	pinLength      = 4
	codeLength     = 4
	combinedLength = pinLength + codeLength

	defaultCodeTTL       = 10 * time.Minute
	defaultNotifyTimeout = 10 * time.Second
)

// AuthService implements the hybrid OTP login protocol.
type AuthService struct {
	repo     ports.AccountRepository
	hasher   SecretHasher
	codes    CodeGenerator
	notifier ports.Notifier
	tokens   ports.TokenIssuer
	events   ports.AuthEventPublisher
	log      zerolog.Logger

	codeTTL       time.Duration
	notifyTimeout time.Duration
	now           func() time.Time
}

// Option customises an AuthService.
type Option func(*AuthService)

// WithClock replaces time.Now; tests use it to step around the code expiry.
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) { s.now = now }
}

func WithCodeTTL(ttl time.Duration) Option {
	return func(s *AuthService) {
		if ttl > 0 {
			s.codeTTL = ttl
		}
	}
}

func WithNotifyTimeout(d time.Duration) Option {
	return func(s *AuthService) {
		if d > 0 {
			s.notifyTimeout = d
		}
	}
}

func WithEventPublisher(p ports.AuthEventPublisher) Option {
	return func(s *AuthService) {
		if p != nil {
			s.events = p
		}
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *AuthService) { s.log = log }
}

func NewAuthService(
	repo ports.AccountRepository,
	hasher SecretHasher,
	codes CodeGenerator,
	notifier ports.Notifier,
	tokens ports.TokenIssuer,
	opts ...Option,
) *AuthService {
	s := &AuthService{
		repo:          repo,
		hasher:        hasher,
		codes:         codes,
		notifier:      notifier,
		tokens:        tokens,
		events:        nopPublisher{},
		log:           zerolog.Nop(),
		codeTTL:       defaultCodeTTL,
		notifyTimeout: defaultNotifyTimeout,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an account holding the bcrypt hash of pin. No token is
// issued; the account still has to log in.
func (s *AuthService) Register(ctx context.Context, identifier, pin string) (*domain.Account, error) {
	account, err := s.register(ctx, strings.TrimSpace(identifier), pin)
	metrics.RegistrationsTotal.WithLabelValues(resultLabel(err)).Inc()
	return account, err
}

func (s *AuthService) register(ctx context.Context, identifier, pin string) (*domain.Account, error) {
	if !isDigits(pin, pinLength) {
		return nil, domain.ErrInvalidPin
	}
	if identifier == "" {
		return nil, domain.ErrInvalidIdentifier
	}

	_, err := s.repo.FindByIdentifier(ctx, identifier)
	switch {
	case err == nil:
		return nil, domain.ErrAlreadyExists
	case !errors.Is(err, domain.ErrAccountNotFound):
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := s.hasher.Hash(pin)
	if err != nil {
		return nil, fmt.Errorf("register: hash pin: %w", err)
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.Account{
		Identifier: identifier,
		SecretHash: hash,
		Role:       domain.RoleUser,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	if err := s.events.AccountRegistered(ctx, created); err != nil {
		s.log.Warn().Err(err).Str("account_id", created.ID).Msg("failed to publish account registered event")
	}
	s.log.Info().Str("account_id", created.ID).Msg("account registered")

	return created, nil
}

// RequestLoginCode stores a fresh code for the account, replacing any code
// still pending, and hands it to the notifier. Delivery problems are logged
// only: the stored code stays valid and a new request replaces it.
func (s *AuthService) RequestLoginCode(ctx context.Context, identifier string) error {
	err := s.requestLoginCode(ctx, strings.TrimSpace(identifier))
	metrics.LoginCodesRequestedTotal.WithLabelValues(resultLabel(err)).Inc()
	return err
}

func (s *AuthService) requestLoginCode(ctx context.Context, identifier string) error {
	account, err := s.repo.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return err
		}
		return fmt.Errorf("request login code: %w", err)
	}

	code, err := s.codes.Generate()
	if err != nil {
		return fmt.Errorf("request login code: %w", err)
	}

	now := s.now().UTC()
	pending := domain.PendingCode{Code: code, ExpiresAt: now.Add(s.codeTTL)}
	if err := s.repo.SetPendingCode(ctx, account.Identifier, pending, now); err != nil {
		return fmt.Errorf("request login code: store code: %w", err)
	}

	s.deliver(ctx, account, code)

	if err := s.events.LoginCodeRequested(ctx, account); err != nil {
		s.log.Warn().Err(err).Str("account_id", account.ID).Msg("failed to publish login code event")
	}
	return nil
}

func (s *AuthService) deliver(ctx context.Context, account *domain.Account, code string) {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	if err := s.notifier.Send(sendCtx, account.Identifier, code); err != nil {
		s.log.Error().Err(err).Str("account_id", account.ID).Msg("login code delivery failed")
		return
	}
	s.log.Info().Str("account_id", account.ID).Msg("login code dispatched")
}

// VerifyAndLogin checks the 8-digit combined key (PIN then code) and, when
// everything matches, consumes the code and returns a session token.
//
// Checks run in a fixed order so clients always see the same error for the
// same state: account, code expiry, code, PIN.
func (s *AuthService) VerifyAndLogin(ctx context.Context, identifier, combinedKey string) (*domain.Session, error) {
	session, err := s.verifyAndLogin(ctx, strings.TrimSpace(identifier), combinedKey)
	metrics.LoginAttemptsTotal.WithLabelValues(resultLabel(err)).Inc()
	return session, err
}

func (s *AuthService) verifyAndLogin(ctx context.Context, identifier, combinedKey string) (*domain.Session, error) {
	if !isDigits(combinedKey, combinedLength) {
		return nil, domain.ErrInvalidFormat
	}
	pinPart, codePart := combinedKey[:pinLength], combinedKey[pinLength:]

	account, err := s.repo.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("verify login: %w", err)
	}

	now := s.now().UTC()
	pending := account.PendingCode
	if !pending.ValidAt(now) {
		return nil, domain.ErrCodeExpiredOrMissing
	}
	if codePart != pending.Code {
		return nil, domain.ErrCodeMismatch
	}
	if !s.hasher.Verify(pinPart, account.SecretHash) {
		return nil, domain.ErrPinMismatch
	}

	// A concurrent attempt may have consumed the same code since we read it.
	cleared, err := s.repo.CompareAndClearPendingCode(ctx, account.Identifier, *pending, now)
	if err != nil {
		return nil, fmt.Errorf("verify login: consume code: %w", err)
	}
	if !cleared {
		return nil, domain.ErrCodeMismatch
	}
	account.PendingCode = nil

	token, expiresAt, err := s.tokens.Issue(account)
	if err != nil {
		return nil, fmt.Errorf("verify login: issue token: %w", err)
	}

	if err := s.events.LoginSucceeded(ctx, account); err != nil {
		s.log.Warn().Err(err).Str("account_id", account.ID).Msg("failed to publish login event")
	}
	s.log.Info().Str("account_id", account.ID).Msg("login succeeded")

	return &domain.Session{Token: token, ExpiresAt: expiresAt, Account: account}, nil
}

func (s *AuthService) Logout(_ context.Context, token string) {
	metrics.LogoutsTotal.Inc()
	if token == "" {
		return
	}
	if id, err := s.tokens.Validate(token); err == nil {
		s.log.Info().Str("account_id", id.AccountID).Msg("logout")
	}
}

func (s *AuthService) Lookup(ctx context.Context, identifier string) (*domain.Account, error) {
	return s.repo.FindByIdentifier(ctx, strings.TrimSpace(identifier))
}

// isDigits reports whether s is exactly n ASCII digits.
func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if code := domain.ErrorCode(err); code != "" {
		return code
	}
	return "error"
}

type nopPublisher struct{}

func (nopPublisher) AccountRegistered(context.Context, *domain.Account) error  { return nil }
func (nopPublisher) LoginCodeRequested(context.Context, *domain.Account) error { return nil }
func (nopPublisher) LoginSucceeded(context.Context, *domain.Account) error     { return nil }
