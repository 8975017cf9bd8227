package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/coffeeshop/internal/api"
	"github.com/charlesng35/coffeeshop/internal/app"
	"github.com/charlesng35/coffeeshop/internal/auth/authtest"
	sharedtestutil "github.com/charlesng35/coffeeshop/internal/database/testutil"
	"github.com/charlesng35/coffeeshop/internal/services"
	"github.com/charlesng35/coffeeshop/pkg/response"
)

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T      *testing.T
	DB     *gorm.DB
	Router *gin.Engine
	Issuer *authtest.Issuer
	Config *app.Config
}

// EnvOption adjusts the configuration used to build the router.
type EnvOption func(*app.Config)

// NewEnv provisions a fresh handler test environment with the seed drink and a
// token issuer trusted by the router.
func NewEnv(t *testing.T, opts ...EnvOption) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithSeedData())
	issuer := authtest.NewIssuer(t)

	cfg := &app.Config{
		Server: app.ServerConfig{
			Port: 5000,
			CORS: app.CORSConfig{AllowedOrigins: []string{"*"}},
		},
		Auth: app.AuthConfig{
			Audience: issuer.Audience,
			Issuer:   issuer.Issuer,
		},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
			Health:     app.HealthConfig{Enabled: true},
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	drinks, err := services.NewDrinkService(db)
	require.NoError(t, err)

	router, err := api.NewRouter(db, drinks, issuer.Guard(), cfg)
	require.NoError(t, err)

	return &Env{
		T:      t,
		DB:     db,
		Router: router,
		Issuer: issuer,
		Config: cfg,
	}
}

// Bearer returns an Authorization header granting permissions.
func (e *Env) Bearer(permissions ...string) string {
	e.T.Helper()
	return e.Issuer.Header(permissions)
}

// Request executes an HTTP request against the test router. A string body is
// sent verbatim, anything else is JSON encoded. authorization is used as the
// raw Authorization header value when non-empty.
func (e *Env) Request(method, path string, body any, authorization string) *httptest.ResponseRecorder {
	e.T.Helper()

	var reader io.Reader = http.NoBody
	switch payload := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(payload)
	default:
		data, err := json.Marshal(payload)
		require.NoError(e.T, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(e.T, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// DecodeResponse parses a success payload into a generic map.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeInto unmarshals a single field of a success payload into dest.
func DecodeInto[T any](t *testing.T, w *httptest.ResponseRecorder, field string, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}

	resp := DecodeResponse(t, w)
	raw, ok := resp[field]
	require.True(t, ok, "field %q missing from %s", field, w.Body.String())
	require.NoError(t, json.Unmarshal(raw, dest))
}

// DecodeError parses the uniform error envelope.
func DecodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorBody {
	t.Helper()

	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	require.False(t, body.Success)
	require.Equal(t, w.Code, body.Error)
	return body
}
