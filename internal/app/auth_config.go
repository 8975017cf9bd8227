package app

import (
	"net/http"
	"strings"

	"github.com/charlesng35/coffeeshop/internal/auth"
)

// KeySource converts AuthConfig into the parameters used to load signing keys.
func (c AuthConfig) KeySource() auth.KeySource {
	timeout := c.FetchTimeout
	if timeout <= 0 {
		timeout = auth.DefaultFetchTimeout
	}

	return auth.KeySource{
		Domain:     c.Domain,
		Issuer:     c.ResolvedIssuer(),
		JWKSURL:    c.JWKSURL,
		File:       c.JWKSFile,
		Discovery:  c.Discovery,
		HTTPClient: &http.Client{Timeout: timeout},
		Timeout:    timeout,
	}
}

// GuardConfig converts AuthConfig into guard verification parameters.
func (c AuthConfig) GuardConfig() auth.GuardConfig {
	return auth.GuardConfig{
		Audience:   strings.TrimSpace(c.Audience),
		Issuer:     c.ResolvedIssuer(),
		Algorithms: c.Algorithms,
		Leeway:     c.Leeway,
	}
}

// ResolvedIssuer returns the configured issuer or the one implied by the tenant domain.
func (c AuthConfig) ResolvedIssuer() string {
	if issuer := strings.TrimSpace(c.Issuer); issuer != "" {
		return issuer
	}
	return auth.IssuerForDomain(c.Domain)
}
