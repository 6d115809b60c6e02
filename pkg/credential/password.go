// Package credential holds the stateless password and token primitives used
// by the authentication operations.
package credential

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 10

// PasswordHasher defines minimal hashing interface (abstract so we can swap to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
	// Burn spends the same work as a failed Verify without a stored hash.
	Burn(pw string)
}

// BcryptHasher implementation.
type BcryptHasher struct {
	Cost int

	once  sync.Once
	dummy []byte
}

func NewBcryptHasher(cost int) *BcryptHasher {
	return &BcryptHasher{Cost: cost}
}

func (b *BcryptHasher) cost() int {
	if b.Cost == 0 {
		return DefaultCost
	}
	return b.Cost
}

func (b *BcryptHasher) Hash(pw string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pw), b.cost())
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify compares with the library's comparator; never a string compare.
func (b *BcryptHasher) Verify(hash, pw string) bool {
	if hash == "" {
		b.Burn(pw)
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

func (b *BcryptHasher) Burn(pw string) {
	b.once.Do(func() {
		b.dummy, _ = bcrypt.GenerateFromPassword([]byte("glossary-timing-pad"), b.cost())
	})
	_ = bcrypt.CompareHashAndPassword(b.dummy, []byte(pw))
}
