package security

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Hasher stores account passwords as bcrypt hashes.
type Hasher struct {
	Cost int

	dummyOnce sync.Once
	dummy     []byte
}

// NewHasher returns a Hasher with cost clamped to bcrypt's range; cost <= 0 means bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{Cost: max(bcrypt.MinCost, min(cost, bcrypt.MaxCost))}
}

// Hash returns the encoded bcrypt hash of password. Passwords over 72 bytes are
// rejected by bcrypt with bcrypt.ErrPasswordTooLong.
func (h *Hasher) Hash(password []byte) (string, error) {
	b, err := bcrypt.GenerateFromPassword(password, h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare returns nil when password matches hash, bcrypt.ErrMismatchedHashAndPassword otherwise.
func (h *Hasher) Compare(hash string, password []byte) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), password)
}

// Equalize spends the time of one Compare at the configured cost and discards the result.
// Login calls it for unknown usernames so they cannot be told apart by latency.
func (h *Hasher) Equalize(password []byte) {
	h.dummyOnce.Do(func() {
		h.dummy, _ = bcrypt.GenerateFromPassword([]byte("event-tracker-dummy-password"), h.Cost)
	})
	if h.dummy == nil {
		return
	}
	_ = bcrypt.CompareHashAndPassword(h.dummy, password)
}
