package service

import "golang.org/x/crypto/bcrypt"

// SecretHasher hashes and verifies account PINs.
type SecretHasher interface {
	Hash(pin string) (string, error)
	Verify(pin, hash string) bool
}

// BcryptHasher is the SecretHasher used in production. Format checks on the
// PIN happen before it is called.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify never fails loudly: a malformed hash is just a mismatch.
func (h *BcryptHasher) Verify(pin, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}
