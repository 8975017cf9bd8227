package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.uber.org/zap"

	"github.com/charlesng35/coffeeshop/pkg/logger"
)

// KeySource describes where the issuer publishes its signing keys. The first
// non-empty option wins: File, JWKSURL, discovery against Issuer (when
// Discovery is set), then the Auth0 convention https://<Domain>/.well-known/jwks.json.
type KeySource struct {
	Domain     string
	Issuer     string
	JWKSURL    string
	File       string
	Discovery  bool
	HTTPClient *http.Client
	Timeout    time.Duration
}

// LoadKeySet resolves the source and loads the key set once.
func LoadKeySet(ctx context.Context, src KeySource) (*KeySet, error) {
	log := logger.WithModule("auth")

	if path := strings.TrimSpace(src.File); path != "" {
		set, err := ReadKeySetFile(path)
		if err != nil {
			return nil, err
		}
		log.Info("signing keys loaded", zap.String("source", "file"), zap.String("path", path), zap.Strings("kids", set.KeyIDs()))
		return set, nil
	}

	timeout := src.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	url := strings.TrimSpace(src.JWKSURL)
	switch {
	case url != "":
	case src.Discovery:
		issuer := src.Issuer
		if strings.TrimSpace(issuer) == "" {
			issuer = IssuerForDomain(src.Domain)
		}
		discovered, err := DiscoverJWKSURL(ctx, issuer, src.HTTPClient)
		if err != nil {
			return nil, err
		}
		url = discovered
	default:
		url = JWKSURLForDomain(src.Domain)
	}
	if url == "" {
		return nil, errors.New("auth: no key source configured (set a domain, jwks url or jwks file)")
	}

	set, err := FetchKeySet(ctx, url, src.HTTPClient)
	if err != nil {
		return nil, err
	}
	log.Info("signing keys loaded", zap.String("source", "url"), zap.String("url", url), zap.Strings("kids", set.KeyIDs()))
	return set, nil
}

// DiscoverJWKSURL reads jwks_uri from the issuer's OpenID configuration.
func DiscoverJWKSURL(ctx context.Context, issuer string, client *http.Client) (string, error) {
	if strings.TrimSpace(issuer) == "" {
		return "", errors.New("auth: issuer is required for discovery")
	}
	if client != nil {
		ctx = oidc.ClientContext(ctx, client)
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return "", fmt.Errorf("auth: oidc discovery failed: %w", err)
	}

	var meta struct {
		JWKSURL string `json:"jwks_uri"`
	}
	if err := provider.Claims(&meta); err != nil {
		return "", fmt.Errorf("auth: decode discovery document: %w", err)
	}
	if strings.TrimSpace(meta.JWKSURL) == "" {
		return "", errors.New("auth: discovery document has no jwks_uri")
	}
	return meta.JWKSURL, nil
}

// IssuerForDomain returns the issuer identifier Auth0 uses for a tenant domain.
func IssuerForDomain(domain string) string {
	host := normaliseDomain(domain)
	if host == "" {
		return ""
	}
	return "https://" + host + "/"
}

// JWKSURLForDomain returns the conventional JWKS location for a tenant domain.
func JWKSURLForDomain(domain string) string {
	host := normaliseDomain(domain)
	if host == "" {
		return ""
	}
	return "https://" + host + "/.well-known/jwks.json"
}

func normaliseDomain(domain string) string {
	host := strings.TrimSpace(domain)
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	return strings.TrimRight(host, "/")
}
