package paste

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// argon2id parameters for owner secret derivation.
const (
	ownerSaltLen   = 16
	ownerKeyLen    = 32
	ownerTime      = 1
	ownerMemoryKiB = 64 * 1024
	ownerThreads   = 4
)

// OwnerSecret is the one-way derived form of a record's owner credential.
// The plaintext is never persisted.
type OwnerSecret struct {
	Salt []byte `json:"salt"`
	Hash []byte `json:"hash"`
}

// DeriveOwnerSecret derives a fresh secret from the supplied credential
// using argon2id with a random per-record salt.
func DeriveOwnerSecret(credential string) (*OwnerSecret, error) {
	salt := make([]byte, ownerSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}

	return &OwnerSecret{
		Salt: salt,
		Hash: argon2.IDKey([]byte(credential), salt, ownerTime, ownerMemoryKiB, ownerThreads, ownerKeyLen),
	}, nil
}

// Match reports whether the supplied credential derives to the stored hash.
// Comparison is constant time.
func (s *OwnerSecret) Match(credential string) bool {
	derived := argon2.IDKey([]byte(credential), s.Salt, ownerTime, ownerMemoryKiB, ownerThreads, ownerKeyLen)

	return subtle.ConstantTimeCompare(s.Hash, derived) == 1
}

// Guard validates the service-wide access credential and per-record owner
// credentials. It is stateless: pure functions over configuration and input.
type Guard struct {
	access []byte // sha256 digest of the configured credential; nil disables the check
}

// NewGuard builds a guard for the configured access credential. An empty
// credential disables the service-wide check entirely.
func NewGuard(accessCredential string) *Guard {
	if accessCredential == "" {
		return &Guard{}
	}

	digest := sha256.Sum256([]byte(accessCredential))

	return &Guard{access: digest[:]}
}

// AuthorizeAccess checks the supplied service credential against the
// configured one in constant time. Always passes when no credential is
// configured.
func (g *Guard) AuthorizeAccess(supplied string) error {
	if g.access == nil {
		return nil
	}

	digest := sha256.Sum256([]byte(supplied))
	if subtle.ConstantTimeCompare(g.access, digest[:]) != 1 {
		return ErrForbidden
	}

	return nil
}

// AuthorizeOwner checks the supplied owner credential against the record's
// stored secret. A record without a stored secret accepts any caller; a
// record with one rejects wrong and missing credentials identically.
func (g *Guard) AuthorizeOwner(stored *OwnerSecret, supplied string) error {
	if stored == nil {
		return nil
	}

	if !stored.Match(supplied) {
		return ErrForbidden
	}

	return nil
}
