package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/peerrent/auth-service/internal/core/domain"
)

const tokenIssuerName = "peerrent"

// sessionClaims is the JWT payload of a session token.
type sessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// JWTIssuer signs HS256 session tokens with a process-wide secret.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &JWTIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns the signed token and the instant it stops being valid.
func (j *JWTIssuer) Issue(account *domain.Account) (string, time.Time, error) {
	now := j.now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuerName,
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
		Email: account.Identifier,
		Role:  account.Role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, claims.ExpiresAt.Time, nil
}

// Validate checks signature, algorithm, issuer and expiry. Every failure is
// reported as domain.ErrInvalidToken.
func (j *JWTIssuer) Validate(token string) (domain.Identity, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(tokenIssuerName),
		jwt.WithTimeFunc(j.now),
	)

	claims := &sessionClaims{}
	tkn, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return j.secret, nil
	})
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return domain.Identity{}, domain.ErrInvalidToken
	}

	return domain.Identity{
		AccountID:  claims.Subject,
		Identifier: claims.Email,
		Role:       claims.Role,
	}, nil
}
