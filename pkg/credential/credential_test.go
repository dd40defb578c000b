package credential

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	keys := []string{"s3cr3t", "a", "with spaces ", "ünïcødé", strings.Repeat("k", MaxKeyLength)}
	for _, key := range keys {
		digest, err := h.Hash(key)
		require.NoError(t, err)

		assert.NotEqual(t, key, digest)
		assert.True(t, h.Verify(key, digest), "key %q should verify", key)
		assert.False(t, h.Verify(key+"x", digest), "key %q with suffix should not verify", key)
	}
}

func TestHashIsSalted(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	first, err := h.Hash("s3cr3t")
	require.NoError(t, err)
	second, err := h.Hash("s3cr3t")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("s3cr3t", first))
	assert.True(t, h.Verify("s3cr3t", second))
}

func TestVerifyOtherKey(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	digest, err := h.Hash("s3cr3t")
	require.NoError(t, err)
	assert.False(t, h.Verify("wrong", digest))
}

func TestVerifyFailsClosed(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	tests := []struct {
		name   string
		key    string
		digest string
	}{
		{"empty digest", "s3cr3t", ""},
		{"empty key", "", "$2a$04$abcdefghijklmnopqrstuu5Yd3D0dXn5Ju3vI6yA8o8SIf4Cq0c8e"},
		{"plaintext digest", "s3cr3t", "s3cr3t"},
		{"truncated digest", "s3cr3t", "$2a$04$short"},
		{"garbage", "s3cr3t", "$$$$"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, h.Verify(tt.key, tt.digest))
		})
	}
}

func TestHashRejectsInvalidKeys(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	_, err := h.Hash("")
	assert.ErrorIs(t, err, ErrEmptyKey)

	_, err = h.Hash(strings.Repeat("k", MaxKeyLength+1))
	assert.ErrorIs(t, err, ErrKeyTooLong)
}

func TestNewHasherCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(0).Cost())
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(bcrypt.MaxCost+1).Cost())
	assert.Equal(t, 12, NewHasher(12).Cost())

	h := NewHasher(bcrypt.MinCost)
	digest, err := h.Hash("s3cr3t")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}

func TestVerifyDecoy(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	assert.False(t, h.VerifyDecoy("s3cr3t"))
	assert.False(t, h.VerifyDecoy(""))
}

func countCompares(t *testing.T) *int {
	t.Helper()
	calls := 0
	original := compareDigest
	compareDigest = func(digest, key []byte) error {
		calls++
		return original(digest, key)
	}
	t.Cleanup(func() { compareDigest = original })
	return &calls
}

func TestVerifyOversizedKeyCostsAsMuchAsDecoy(t *testing.T) {
	h := NewHasher(bcrypt.DefaultCost)
	digest, err := h.Hash("s3cr3t")
	require.NoError(t, err)
	h.VerifyDecoy("warm")

	calls := countCompares(t)
	long := strings.Repeat("k", 80)

	start := time.Now()
	assert.False(t, h.Verify(long, digest))
	verifyTook := time.Since(start)
	assert.Equal(t, 1, *calls)

	start = time.Now()
	assert.False(t, h.VerifyDecoy(long))
	decoyTook := time.Since(start)
	assert.Equal(t, 2, *calls)

	assert.Greater(t, verifyTook, decoyTook/4, "verify %s, decoy %s", verifyTook, decoyTook)
}
