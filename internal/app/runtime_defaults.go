package app

import (
	"fmt"
	"strings"

	"github.com/charlesng35/coffeeshop/internal/auth"
)

// ApplyRuntimeDefaults fills settings that can be derived from others, such as
// the issuer implied by an Auth0 tenant domain. It returns the keys that were
// derived so callers can log them.
func ApplyRuntimeDefaults(cfg *Config) (map[string]string, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	derived := make(map[string]string)

	if strings.TrimSpace(cfg.Auth.Issuer) == "" && strings.TrimSpace(cfg.Auth.Domain) != "" {
		cfg.Auth.Issuer = auth.IssuerForDomain(cfg.Auth.Domain)
		derived["auth.issuer"] = cfg.Auth.Issuer
	}

	if len(cleanList(cfg.Auth.Algorithms)) == 0 {
		cfg.Auth.Algorithms = []string{auth.DefaultAlgorithm}
		derived["auth.algorithms"] = auth.DefaultAlgorithm
	} else {
		cfg.Auth.Algorithms = cleanList(cfg.Auth.Algorithms)
	}

	if len(cleanList(cfg.Server.CORS.AllowedOrigins)) == 0 {
		cfg.Server.CORS.AllowedOrigins = []string{"*"}
		derived["server.cors.allowed_origins"] = "*"
	} else {
		cfg.Server.CORS.AllowedOrigins = cleanList(cfg.Server.CORS.AllowedOrigins)
	}

	if strings.TrimSpace(cfg.Monitoring.Prometheus.Endpoint) == "" {
		cfg.Monitoring.Prometheus.Endpoint = "/metrics"
		derived["monitoring.prometheus.endpoint"] = "/metrics"
	}

	return derived, nil
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, value)
		}
	}
	return out
}
