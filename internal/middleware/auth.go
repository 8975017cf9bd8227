package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	iauth "github.com/charlesng35/coffeeshop/internal/auth"
	appErrors "github.com/charlesng35/coffeeshop/pkg/errors"
	"github.com/charlesng35/coffeeshop/pkg/logger"
	"github.com/charlesng35/coffeeshop/pkg/metrics"
	"github.com/charlesng35/coffeeshop/pkg/response"
)

// gin context keys set by RequirePermission
const (
	ctxClaimsKey  = "authClaims"
	ctxSubjectKey = "authSubject"
)

// Authorizer validates an Authorization header against a required permission.
// *auth.Guard satisfies it.
type Authorizer interface {
	Authorize(header, permission string) (*iauth.Claims, error)
}

// RequirePermission aborts the request unless the bearer token grants permission.
func RequirePermission(guard Authorizer, permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := guard.Authorize(c.GetHeader("Authorization"), permission)
		if err != nil {
			rejectAuth(c, permission, err)
			return
		}

		metrics.AuthDecisions.WithLabelValues(permission, "authorized").Inc()

		c.Set(ctxClaimsKey, claims)
		c.Set(ctxSubjectKey, claims.Subject)
		c.Next()
	}
}

// ClaimsFromContext returns the claims stored by RequirePermission.
func ClaimsFromContext(c *gin.Context) (*iauth.Claims, bool) {
	value, ok := c.Get(ctxClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*iauth.Claims)
	return claims, ok && claims != nil
}

func rejectAuth(c *gin.Context, permission string, err error) {
	var failure *iauth.Failure
	if !errors.As(err, &failure) {
		logger.WithModule("auth").Error("authorizer returned an unexpected error", zap.Error(err))
		response.Abort(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}

	metrics.AuthDecisions.WithLabelValues(permission, failure.Code()).Inc()
	logger.WithModule("auth").Info("request rejected",
		zap.String("permission", permission),
		zap.String("reason", failure.Code()),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", RequestIDFromContext(c)),
		zap.Error(failure.Err),
	)

	challenge := `Bearer error="invalid_token"`
	if failure.Status() == http.StatusForbidden {
		challenge = `Bearer error="insufficient_scope"`
	}
	c.Header("WWW-Authenticate", challenge)

	response.Abort(c, appErrors.New(failure.Code(), failure.Description, failure.Status()).WithInternal(failure))
}
