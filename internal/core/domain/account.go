package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// PendingCode is the one-time login code waiting to be consumed. The code and
// its expiry only exist together.
type PendingCode struct {
	Code      string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ValidAt reports whether the code can still be used at t. The expiry instant
// itself is still valid.
func (p *PendingCode) ValidAt(t time.Time) bool {
	return p != nil && p.Code != "" && !t.After(p.ExpiresAt)
}

// Account models a registered PeerRent user.
type Account struct {
	ID          string       `json:"id"`
	Identifier  string       `json:"email"`
	SecretHash  string       `json:"-"`
	PendingCode *PendingCode `json:"-"`
	Role        string       `json:"role"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Identity is what a validated session token resolves to.
type Identity struct {
	AccountID  string `json:"id"`
	Identifier string `json:"email"`
	Role       string `json:"role"`
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Account   *Account
}
