// Package authtest issues tokens signed by a throwaway RSA key so tests can
// exercise the guard without a real identity provider.
package authtest

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"testing"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/coffeeshop/internal/auth"
)

const (
	DefaultKeyID    = "test-key"
	DefaultAudience = "coffeeshop"
	DefaultIssuer   = "https://coffeeshop.test/"
)

// Issuer signs tokens with a synthetic RSA key.
type Issuer struct {
	t        testing.TB
	key      *rsa.PrivateKey
	KeyID    string
	Audience string
	Issuer   string
	Now      func() time.Time
}

// NewIssuer creates an issuer with a fresh 2048-bit key.
func NewIssuer(t testing.TB) *Issuer {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	return &Issuer{
		t:        t,
		key:      key,
		KeyID:    DefaultKeyID,
		Audience: DefaultAudience,
		Issuer:   DefaultIssuer,
		Now:      time.Now,
	}
}

// JWK returns the public key as a JSON Web Key.
func (i *Issuer) JWK() jose.JSONWebKey {
	return jose.JSONWebKey{
		Key:       &i.key.PublicKey,
		KeyID:     i.KeyID,
		Algorithm: auth.DefaultAlgorithm,
		Use:       "sig",
	}
}

// JWKS returns the serialised JWKS document containing the public key.
func (i *Issuer) JWKS() []byte {
	i.t.Helper()

	data, err := json.Marshal(jose.JSONWebKeySet{Keys: []jose.JSONWebKey{i.JWK()}})
	require.NoError(i.t, err)
	return data
}

// KeySet returns the key set a guard should trust for this issuer.
func (i *Issuer) KeySet() *auth.KeySet {
	i.t.Helper()

	set, err := auth.NewKeySet(i.JWK())
	require.NoError(i.t, err)
	return set
}

// Guard builds a guard that trusts this issuer.
func (i *Issuer) Guard() *auth.Guard {
	i.t.Helper()

	guard, err := auth.NewGuard(i.KeySet(), auth.GuardConfig{
		Audience: i.Audience,
		Issuer:   i.Issuer,
		Clock:    i.Now,
	})
	require.NoError(i.t, err)
	return guard
}

type tokenSpec struct {
	claims     jwt.MapClaims
	now        time.Time
	kid        string
	noKid      bool
	signingKey *rsa.PrivateKey
}

// TokenOption customises a token produced by Issuer.Token.
type TokenOption func(*tokenSpec)

// WithExpiry sets exp relative to the issuer clock.
func WithExpiry(d time.Duration) TokenOption {
	return func(s *tokenSpec) {
		s.claims["exp"] = jwt.NewNumericDate(s.now.Add(d))
	}
}

// WithExpiresAt sets an absolute expiry.
func WithExpiresAt(at time.Time) TokenOption {
	return func(s *tokenSpec) {
		s.claims["exp"] = jwt.NewNumericDate(at)
	}
}

// WithAudience overrides the aud claim.
func WithAudience(aud string) TokenOption {
	return func(s *tokenSpec) {
		s.claims["aud"] = aud
	}
}

// WithIssuer overrides the iss claim.
func WithIssuer(iss string) TokenOption {
	return func(s *tokenSpec) {
		s.claims["iss"] = iss
	}
}

// WithoutPermissions drops the permissions claim entirely.
func WithoutPermissions() TokenOption {
	return func(s *tokenSpec) {
		delete(s.claims, "permissions")
	}
}

// WithClaim sets an arbitrary claim.
func WithClaim(name string, value any) TokenOption {
	return func(s *tokenSpec) {
		s.claims[name] = value
	}
}

// WithKeyID overrides the kid header.
func WithKeyID(kid string) TokenOption {
	return func(s *tokenSpec) {
		s.kid = kid
	}
}

// WithoutKeyID omits the kid header.
func WithoutKeyID() TokenOption {
	return func(s *tokenSpec) {
		s.noKid = true
	}
}

// SignedBy signs the token with a different private key while keeping the kid.
func SignedBy(key *rsa.PrivateKey) TokenOption {
	return func(s *tokenSpec) {
		s.signingKey = key
	}
}

// Token issues a signed RS256 token granting permissions.
func (i *Issuer) Token(permissions []string, opts ...TokenOption) string {
	i.t.Helper()

	now := i.Now()
	perms := make([]any, 0, len(permissions))
	for _, p := range permissions {
		perms = append(perms, p)
	}

	spec := &tokenSpec{
		claims: jwt.MapClaims{
			"iss":         i.Issuer,
			"sub":         "auth0|barista",
			"aud":         i.Audience,
			"iat":         jwt.NewNumericDate(now),
			"exp":         jwt.NewNumericDate(now.Add(time.Hour)),
			"permissions": perms,
		},
		now:        now,
		kid:        i.KeyID,
		signingKey: i.key,
	}
	for _, opt := range opts {
		opt(spec)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, spec.claims)
	if !spec.noKid {
		token.Header["kid"] = spec.kid
	}

	signed, err := token.SignedString(spec.signingKey)
	require.NoError(i.t, err)
	return signed
}

// Header returns a ready-to-use Authorization header value.
func (i *Issuer) Header(permissions []string, opts ...TokenOption) string {
	return "Bearer " + i.Token(permissions, opts...)
}

// OtherKey returns an unrelated RSA key for signature tests.
func OtherKey(t testing.TB) *rsa.PrivateKey {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}
