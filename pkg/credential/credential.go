package credential

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// MaxKeyLength is the longest key bcrypt takes into account.
const MaxKeyLength = 72

var compareDigest = bcrypt.CompareHashAndPassword

var (
	// ErrEmptyKey is returned when hashing an empty key
	ErrEmptyKey = errors.New("key must not be empty")
	// ErrKeyTooLong is returned when a key exceeds MaxKeyLength bytes
	ErrKeyTooLong = fmt.Errorf("key must be at most %d bytes", MaxKeyLength)
)

// Hasher produces and checks bcrypt digests of topic keys.
type Hasher struct {
	cost int

	decoyOnce sync.Once
	decoy     []byte
}

// NewHasher returns a Hasher using the given bcrypt cost. Costs outside
// bcrypt's accepted range fall back to bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Cost returns the bcrypt cost of new digests.
func (h *Hasher) Cost() int {
	return h.cost
}

// Hash returns a salted bcrypt digest of rawKey. Every call uses a fresh salt.
func (h *Hasher) Hash(rawKey string) (string, error) {
	if rawKey == "" {
		return "", ErrEmptyKey
	}
	if len(rawKey) > MaxKeyLength {
		return "", ErrKeyTooLong
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(rawKey), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash key: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether rawKey matches digest. A malformed digest or any
// other failure reports false.
func (h *Hasher) Verify(rawKey, digest string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	if rawKey == "" || digest == "" {
		return false
	}
	// Oversized keys never match but still pay for one comparison.
	if len(rawKey) > MaxKeyLength {
		return h.VerifyDecoy(rawKey)
	}
	return compareDigest([]byte(digest), []byte(rawKey)) == nil
}

// VerifyDecoy spends the same work as Verify against a digest no key
// matches. It always reports false.
func (h *Hasher) VerifyDecoy(rawKey string) bool {
	h.decoyOnce.Do(func() {
		seed := make([]byte, 32)
		_, _ = rand.Read(seed)
		h.decoy, _ = bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(seed)[:MaxKeyLength/2]), h.cost)
	})
	if h.decoy != nil {
		_ = compareDigest(h.decoy, []byte(rawKey))
	}
	return false
}
