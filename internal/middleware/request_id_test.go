package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newRequestIDRouter(seen *string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestID())
	r.GET("/drinks", func(c *gin.Context) {
		*seen = RequestIDFromContext(c)
		c.Status(http.StatusOK)
	})
	return r
}

func TestRequestIDGenerated(t *testing.T) {
	var seen string
	r := newRequestIDRouter(&seen)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/drinks", nil))

	id := w.Header().Get(RequestIDHeader)
	require.Equal(t, seen, id)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
}

func TestRequestIDPropagated(t *testing.T) {
	var seen string
	r := newRequestIDRouter(&seen)

	req := httptest.NewRequest(http.MethodGet, "/drinks", nil)
	req.Header.Set(RequestIDHeader, "order-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, "order-42", seen)
	require.Equal(t, "order-42", w.Header().Get(RequestIDHeader))
}

func TestRequestIDRejectsOversizedValues(t *testing.T) {
	var seen string
	r := newRequestIDRouter(&seen)

	req := httptest.NewRequest(http.MethodGet, "/drinks", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", maxRequestIDLength+1))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
}
