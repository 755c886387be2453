package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/auth-service/internal/domain"
)

const testSecret = "92c0cc8ff9058226660127995ebc09a71e374719e9b5b4bc932b431734caccff"

var alice = domain.Identity{Subject: "alice", Role: domain.RoleUser}

func flipChar(s string, i int) string {
	b := []byte(s)
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}
	return string(b)
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	codec := NewTokenCodec(testSecret, 24*time.Hour)
	for _, identity := range []domain.Identity{alice, {Subject: "root", Role: domain.RoleAdmin}} {
		token, err := codec.Issue(identity)
		require.NoError(t, err)
		assert.Equal(t, 3, len(strings.Split(token.Value, ".")))
		assert.True(t, token.ExpiresAt.After(token.IssuedAt))
		assert.Equal(t, 24*time.Hour, token.ExpiresAt.Sub(token.IssuedAt))

		got, err := codec.Verify(token.Value)
		require.NoError(t, err)
		assert.Equal(t, identity, got)
		assert.Equal(t, identity, token.Identity())
	}
}

func TestVerifyIsIdempotent(t *testing.T) {
	t.Parallel()

	codec := NewTokenCodec(testSecret, time.Hour)
	token, err := codec.Issue(alice)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		got, err := codec.Verify(token.Value)
		require.NoError(t, err)
		assert.Equal(t, alice, got)
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	t.Parallel()

	codec := NewTokenCodec(testSecret, time.Hour)
	token, err := codec.Issue(alice)
	require.NoError(t, err)
	parts := strings.Split(token.Value, ".")

	t.Run("payload byte", func(t *testing.T) {
		for _, i := range []int{0, len(parts[1]) / 2, len(parts[1]) - 2} {
			tampered := parts[0] + "." + flipChar(parts[1], i) + "." + parts[2]
			_, err := codec.Verify(tampered)
			assert.ErrorIs(t, err, ErrInvalidSignature)
		}
	})

	t.Run("signature byte", func(t *testing.T) {
		for _, i := range []int{0, len(parts[2]) / 2, len(parts[2]) - 2} {
			tampered := parts[0] + "." + parts[1] + "." + flipChar(parts[2], i)
			_, err := codec.Verify(tampered)
			assert.ErrorIs(t, err, ErrInvalidSignature)
		}
	})

	t.Run("header byte", func(t *testing.T) {
		tampered := flipChar(parts[0], len(parts[0])/2) + "." + parts[1] + "." + parts[2]
		_, err := codec.Verify(tampered)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("malformed", func(t *testing.T) {
		for _, raw := range []string{"", "abc", "a.b", "a.b.c.d", "not.a.token"} {
			_, err := codec.Verify(raw)
			assert.ErrorIs(t, err, ErrInvalidSignature, raw)
		}
	})

	t.Run("foreign secret", func(t *testing.T) {
		other := NewTokenCodec("another-secret", time.Hour)
		_, err := other.Verify(token.Value)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	codec := NewTokenCodec(testSecret, time.Hour)
	claims := &Claims{
		Role: domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "mallory",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = codec.Verify(hs512)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = codec.Verify(none)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyExpired(t *testing.T) {
	t.Parallel()

	ttl := 24 * time.Hour
	past := time.Now().Add(-ttl - time.Second)
	issuer := NewTokenCodec(testSecret, ttl, WithClock(func() time.Time { return past }))
	token, err := issuer.Issue(alice)
	require.NoError(t, err)
	require.True(t, token.ExpiresAt.Before(time.Now()))

	verifier := NewTokenCodec(testSecret, ttl)
	_, err = verifier.Verify(token.Value)
	assert.ErrorIs(t, err, ErrExpired)
	assert.False(t, errors.Is(err, ErrInvalidSignature))
}

func TestVerifyChecksSignatureBeforeExpiry(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-48 * time.Hour)
	issuer := NewTokenCodec(testSecret, time.Hour, WithClock(func() time.Time { return past }))
	token, err := issuer.Issue(alice)
	require.NoError(t, err)

	parts := strings.Split(token.Value, ".")
	forged := parts[0] + "." + parts[1] + "." + flipChar(parts[2], len(parts[2])/2)

	_, err = NewTokenCodec(testSecret, time.Hour).Verify(forged)
	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.False(t, errors.Is(err, ErrExpired))
}

func TestVerifyExpiryBoundary(t *testing.T) {
	t.Parallel()

	issuedAt := time.Unix(1_700_000_000, 0)
	now := issuedAt
	codec := NewTokenCodec(testSecret, time.Hour, WithClock(func() time.Time { return now }))
	token, err := codec.Issue(alice)
	require.NoError(t, err)

	now = issuedAt.Add(time.Hour - time.Second)
	_, err = codec.Verify(token.Value)
	assert.NoError(t, err)

	now = issuedAt.Add(time.Hour)
	_, err = codec.Verify(token.Value)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerifyRejectsUnknownRoleAsGenericFailure(t *testing.T) {
	t.Parallel()

	codec := NewTokenCodec(testSecret, time.Hour)
	token, err := codec.Issue(domain.Identity{Subject: "eve", Role: "SUPERUSER"})
	require.NoError(t, err)

	_, err = codec.Verify(token.Value)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidSignature))
	assert.False(t, errors.Is(err, ErrExpired))
}

func TestIssuerIsEnforced(t *testing.T) {
	t.Parallel()

	token, err := NewTokenCodec(testSecret, time.Hour, WithIssuer("other")).Issue(alice)
	require.NoError(t, err)

	_, err = NewTokenCodec(testSecret, time.Hour, WithIssuer("auth-service")).Verify(token.Value)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidSignature))
}

type rotatingKeyring struct {
	current string
	keys    map[string][]byte
}

func (r rotatingKeyring) SigningKey() (string, []byte) { return r.current, r.keys[r.current] }

func (r rotatingKeyring) VerificationKey(kid string) ([]byte, bool) {
	key, ok := r.keys[kid]
	return key, ok
}

func TestKeyringRotation(t *testing.T) {
	t.Parallel()

	keys := map[string][]byte{"k1": []byte("first-secret"), "k2": []byte("second-secret")}
	old := NewTokenCodec("", time.Hour, WithKeyring(rotatingKeyring{current: "k1", keys: keys}))
	token, err := old.Issue(alice)
	require.NoError(t, err)

	rotated := NewTokenCodec("", time.Hour, WithKeyring(rotatingKeyring{current: "k2", keys: keys}))
	got, err := rotated.Verify(token.Value)
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	retired := NewTokenCodec("", time.Hour, WithKeyring(rotatingKeyring{
		current: "k2",
		keys:    map[string][]byte{"k2": keys["k2"]},
	}))
	_, err = retired.Verify(token.Value)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
