package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	iauth "github.com/charlesng35/coffeeshop/internal/auth"
	"github.com/charlesng35/coffeeshop/internal/auth/authtest"
	"github.com/charlesng35/coffeeshop/pkg/metrics"
	"github.com/charlesng35/coffeeshop/pkg/response"
)

const detailPermission = "get:drinks-detail"

func newProtectedRouter(guard Authorizer) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/drinks-detail", RequirePermission(guard, detailPermission), func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"subject": claims.Subject})
	})
	return r
}

func serve(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/drinks-detail", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorBody {
	t.Helper()

	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRequirePermissionAllowsGrantedToken(t *testing.T) {
	issuer := authtest.NewIssuer(t)
	r := newProtectedRouter(issuer.Guard())

	before := promtestutil.ToFloat64(metrics.AuthDecisions.WithLabelValues(detailPermission, "authorized"))

	w := serve(r, issuer.Header([]string{detailPermission}))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"subject":"auth0|barista"}`, w.Body.String())

	require.Equal(t, before+1, promtestutil.ToFloat64(metrics.AuthDecisions.WithLabelValues(detailPermission, "authorized")))
}

func TestRequirePermissionRejectsMissingHeader(t *testing.T) {
	issuer := authtest.NewIssuer(t)
	r := newProtectedRouter(issuer.Guard())

	w := serve(r, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, `Bearer error="invalid_token"`, w.Header().Get("WWW-Authenticate"))

	body := decodeError(t, w)
	require.False(t, body.Success)
	require.Equal(t, http.StatusUnauthorized, body.Error)
	require.Equal(t, "missing_header", body.Code)
	require.NotEmpty(t, body.Message)
}

func TestRequirePermissionRejectsInsufficientScope(t *testing.T) {
	issuer := authtest.NewIssuer(t)
	r := newProtectedRouter(issuer.Guard())

	before := promtestutil.ToFloat64(metrics.AuthDecisions.WithLabelValues(detailPermission, "insufficient_scope"))

	w := serve(r, issuer.Header([]string{"post:drinks"}))
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, `Bearer error="insufficient_scope"`, w.Header().Get("WWW-Authenticate"))
	require.Equal(t, "insufficient_scope", decodeError(t, w).Code)

	require.Equal(t, before+1, promtestutil.ToFloat64(metrics.AuthDecisions.WithLabelValues(detailPermission, "insufficient_scope")))
}

func TestRequirePermissionRejectsTokenWithoutPermissions(t *testing.T) {
	issuer := authtest.NewIssuer(t)
	r := newProtectedRouter(issuer.Guard())

	w := serve(r, issuer.Header(nil, authtest.WithoutPermissions()))
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "permissions_missing_in_claims", decodeError(t, w).Code)
}

func TestRequirePermissionLogsRejections(t *testing.T) {
	logs := observeLogs(t)
	issuer := authtest.NewIssuer(t)
	r := newProtectedRouter(issuer.Guard())

	serve(r, "Token abc")

	entries := logs.FilterMessage("request rejected").All()
	require.Len(t, entries, 1)
	require.Equal(t, "malformed_header", entries[0].ContextMap()["reason"])
	require.Equal(t, detailPermission, entries[0].ContextMap()["permission"])
}

type brokenAuthorizer struct{}

func (brokenAuthorizer) Authorize(string, string) (*iauth.Claims, error) {
	return nil, errors.New("key store offline")
}

func TestRequirePermissionTreatsUnknownErrorsAsInternal(t *testing.T) {
	r := newProtectedRouter(brokenAuthorizer{})

	w := serve(r, "Bearer abc")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Empty(t, w.Header().Get("WWW-Authenticate"))
	require.NotContains(t, w.Body.String(), "key store offline")
}
