package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAlgorithm is the signing algorithm accepted when none is configured.
const DefaultAlgorithm = "RS256"

// GuardConfig bundles the verification parameters of a Guard.
type GuardConfig struct {
	Audience   string
	Issuer     string
	Algorithms []string
	Leeway     time.Duration
	Clock      func() time.Time
}

// Guard validates bearer tokens against an immutable key set and enforces
// per-route permissions.
type Guard struct {
	keys   *KeySet
	parser *jwt.Parser
	algs   []string
}

// NewGuard constructs a Guard once a key set and an audience are supplied.
func NewGuard(keys *KeySet, cfg GuardConfig) (*Guard, error) {
	if keys.Len() == 0 {
		return nil, errors.New("auth: key set must be provided")
	}
	if strings.TrimSpace(cfg.Audience) == "" {
		return nil, errors.New("auth: audience must be provided")
	}

	algs := make([]string, 0, len(cfg.Algorithms))
	for _, alg := range cfg.Algorithms {
		if alg = strings.TrimSpace(alg); alg != "" {
			algs = append(algs, alg)
		}
	}
	if len(algs) == 0 {
		algs = []string{DefaultAlgorithm}
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(algs),
		jwt.WithAudience(cfg.Audience),
		jwt.WithLeeway(cfg.Leeway),
	}
	if issuer := strings.TrimSpace(cfg.Issuer); issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if cfg.Clock != nil {
		opts = append(opts, jwt.WithTimeFunc(cfg.Clock))
	}

	return &Guard{
		keys:   keys,
		parser: jwt.NewParser(opts...),
		algs:   algs,
	}, nil
}

// Authorize runs the full chain for an Authorization header value. The returned
// error is always a *Failure.
func (g *Guard) Authorize(header, permission string) (*Claims, error) {
	token, err := BearerToken(header)
	if err != nil {
		return nil, err
	}

	claims, err := g.Verify(token)
	if err != nil {
		return nil, err
	}

	if err := CheckPermission(claims, permission); err != nil {
		return nil, err
	}
	return claims, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", newFailure(FailureMissingHeader, nil)
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", newFailure(FailureMalformedHeader, nil)
	}
	return parts[1], nil
}

// Verify decodes the token, resolves its signing key and validates signature,
// expiry, audience and issuer.
func (g *Guard) Verify(raw string) (*Claims, error) {
	unverified, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return nil, newFailure(FailureMalformedToken, err)
	}

	kid, _ := unverified.Header["kid"].(string)
	if kid == "" {
		return nil, newFailure(FailureUnknownKey, errors.New("token header has no kid"))
	}
	key, ok := g.keys.Lookup(kid)
	if !ok {
		return nil, newFailure(FailureUnknownKey, fmt.Errorf("no key with kid %q", kid))
	}

	claims := &Claims{}
	_, err = g.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return key.Key, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return claims, nil
}

// CheckPermission enforces that claims grant permission.
func CheckPermission(claims *Claims, permission string) error {
	if !claims.HasPermissionsClaim() {
		return newFailure(FailurePermissionsMissing, claims.PermissionsError())
	}
	if !claims.HasPermission(permission) {
		return newFailure(FailureInsufficientScope, fmt.Errorf("missing %q", permission))
	}
	return nil
}

func classify(err error) *Failure {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return newFailure(FailureMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return newFailure(FailureExpired, err)
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return newFailure(FailureWrongAudience, err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return newFailure(FailureWrongIssuer, err)
	default:
		return newFailure(FailureInvalidSignature, err)
	}
}
