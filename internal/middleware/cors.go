package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSConfig controls the cross-origin headers emitted by CORS.
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// DefaultCORSConfig allows any origin to call the drinks API.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}
}

// CORS applies cross-origin headers and answers preflight requests with 204.
func CORS(cfgs ...CORSConfig) gin.HandlerFunc {
	cfg := DefaultCORSConfig()
	if len(cfgs) > 0 {
		override := cfgs[0]
		if len(override.AllowedOrigins) > 0 {
			cfg.AllowedOrigins = override.AllowedOrigins
		}
		if len(override.AllowedMethods) > 0 {
			cfg.AllowedMethods = override.AllowedMethods
		}
		if len(override.AllowedHeaders) > 0 {
			cfg.AllowedHeaders = override.AllowedHeaders
		}
	}

	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	wildcard := slices.Contains(cfg.AllowedOrigins, "*")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case wildcard:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(cfg.AllowedOrigins, origin):
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", methods)
		c.Header("Access-Control-Allow-Headers", headers)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
