package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/auth-service/internal/domain"
)

var (
	// ErrInvalidSignature covers tampered, malformed and unverifiable tokens.
	ErrInvalidSignature = errors.New("token signature invalid")
	// ErrExpired is returned for a correctly signed token past its expiry.
	ErrExpired = errors.New("token expired")
)

// Keyring supplies HMAC key material. A rotating implementation can keep several
// verification keys and select one by the token's kid header.
type Keyring interface {
	SigningKey() (kid string, key []byte)
	VerificationKey(kid string) ([]byte, bool)
}

type staticKeyring struct {
	key []byte
}

// NewStaticKeyring returns a keyring holding a single secret.
func NewStaticKeyring(secret string) Keyring {
	return staticKeyring{key: []byte(secret)}
}

func (k staticKeyring) SigningKey() (string, []byte) {
	return "", k.key
}

func (k staticKeyring) VerificationKey(string) ([]byte, bool) {
	return k.key, len(k.key) > 0
}

// Claims describes JWT payload.
type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies signed bearer tokens.
type TokenCodec struct {
	keys   Keyring
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// CodecOption customises a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock overrides the time source.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) {
		if now != nil {
			c.now = now
		}
	}
}

// WithIssuer sets the iss claim and requires it on verification.
func WithIssuer(issuer string) CodecOption {
	return func(c *TokenCodec) {
		c.issuer = issuer
	}
}

// WithKeyring replaces the static secret.
func WithKeyring(keys Keyring) CodecOption {
	return func(c *TokenCodec) {
		if keys != nil {
			c.keys = keys
		}
	}
}

// NewTokenCodec builds a codec over a single shared secret.
func NewTokenCodec(secret string, ttl time.Duration, opts ...CodecOption) *TokenCodec {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	c := &TokenCodec{
		keys: NewStaticKeyring(secret),
		ttl:  ttl,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the validity window of issued tokens.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue builds and signs a token for the identity.
func (c *TokenCodec) Issue(identity domain.Identity) (domain.Token, error) {
	issuedAt := c.now()
	expiresAt := issuedAt.Add(c.ttl)

	claims := &Claims{
		Role: identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Subject,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	kid, key := c.keys.SigningKey()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	if kid != "" {
		token.Header["kid"] = kid
	}
	signed, err := token.SignedString(key)
	if err != nil {
		return domain.Token{}, fmt.Errorf("sign token: %w", err)
	}

	return domain.Token{
		Value:     signed,
		Subject:   identity.Subject,
		Role:      identity.Role,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Verify checks the signature, then expiry, and returns the embedded identity.
func (c *TokenCodec) Verify(tokenStr string) (domain.Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, c.keyFunc, opts...)
	if err != nil {
		return domain.Identity{}, classify(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return domain.Identity{}, errors.New("invalid token claims")
	}
	if claims.Subject == "" {
		return domain.Identity{}, errors.New("token has no subject")
	}
	if !claims.Role.Valid() {
		return domain.Identity{}, fmt.Errorf("token carries unknown role %q", claims.Role)
	}
	return domain.Identity{Subject: claims.Subject, Role: claims.Role}, nil
}

func (c *TokenCodec) keyFunc(token *jwt.Token) (interface{}, error) {
	if token.Method != jwt.SigningMethodHS256 {
		return nil, errors.New("unexpected signing method")
	}
	kid, _ := token.Header["kid"].(string)
	key, ok := c.keys.VerificationKey(kid)
	if !ok {
		return nil, fmt.Errorf("unknown key id %q", kid)
	}
	return key, nil
}

// classify maps parser failures onto the codec's two sentinel errors. The parser
// verifies the signature before any claim, so an expired result implies a valid signature.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	default:
		return err
	}
}
