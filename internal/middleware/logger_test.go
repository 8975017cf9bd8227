package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/charlesng35/coffeeshop/internal/auth/authtest"
	"github.com/charlesng35/coffeeshop/pkg/logger"
)

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()

	core, logs := observer.New(zap.DebugLevel)
	logger.Replace(zap.New(core))
	t.Cleanup(func() {
		logger.Replace(nil)
	})
	return logs
}

func TestLoggerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logs := observeLogs(t)

	r := gin.New()
	r.Use(RequestID(), Logger())
	r.GET("/drinks", func(c *gin.Context) {
		c.String(http.StatusOK, "menu")
	})

	req := httptest.NewRequest(http.MethodGet, "/drinks", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "menu", w.Body.String())

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "http", fields["module"])
	require.Equal(t, "GET", fields["method"])
	require.Equal(t, "/drinks", fields["path"])
	require.EqualValues(t, http.StatusOK, fields["status"])
	require.Equal(t, "req-1", fields["request_id"])
}

func TestLoggerMiddlewareWarnsOnServerErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logs := observeLogs(t)

	r := gin.New()
	r.Use(Logger())
	r.GET("/broken", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/broken", nil))

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	require.Equal(t, zap.WarnLevel, entries[0].Level)
}

func TestLoggerMiddlewareRecordsAuthorizedSubject(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logs := observeLogs(t)
	issuer := authtest.NewIssuer(t)

	r := gin.New()
	r.Use(Logger())
	r.GET("/drinks-detail", RequirePermission(issuer.Guard(), "get:drinks-detail"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/drinks-detail", nil)
	req.Header.Set("Authorization", issuer.Header([]string{"get:drinks-detail"}))
	r.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	require.Equal(t, "auth0|barista", entries[0].ContextMap()["subject"])
}
