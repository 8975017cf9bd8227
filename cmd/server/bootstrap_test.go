package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/charlesng35/coffeeshop/internal/app"
	"github.com/charlesng35/coffeeshop/internal/auth"
	"github.com/charlesng35/coffeeshop/internal/auth/authtest"
	"github.com/charlesng35/coffeeshop/internal/database"
)

func testConfig(t *testing.T, issuer *authtest.Issuer) *app.Config {
	t.Helper()

	jwksPath := filepath.Join(t.TempDir(), "jwks.json")
	require.NoError(t, os.WriteFile(jwksPath, issuer.JWKS(), 0o600))

	cfg := &app.Config{
		Server: app.ServerConfig{Port: 5000},
		Database: app.DatabaseConfig{
			Driver:       "sqlite",
			DSN:          "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=1",
			ResetOnStart: true,
		},
		Auth: app.AuthConfig{
			Audience: issuer.Audience,
			Issuer:   issuer.Issuer,
			JWKSFile: jwksPath,
		},
		Monitoring: app.MonitoringConfig{
			Prometheus:      app.PrometheusConfig{Enabled: true},
			Health:          app.HealthConfig{Enabled: true},
			CatalogSchedule: "@every 1h",
		},
	}
	_, err := app.ApplyRuntimeDefaults(cfg)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestBootstrapRuntimeServesSeededMenu(t *testing.T) {
	issuer := authtest.NewIssuer(t)
	cfg := testConfig(t, issuer)

	stack, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, stack.Shutdown()) })

	count, err := stack.Drinks.Count(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	w := httptest.NewRecorder()
	stack.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/drinks", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"title":"water"`)

	req := httptest.NewRequest(http.MethodGet, "/drinks-detail", nil)
	req.Header.Set("Authorization", issuer.Header([]string{auth.PermissionGetDrinksDetail}))
	w = httptest.NewRecorder()
	stack.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"color":"blue"`)
}

func TestBootstrapRuntimeRejectsMissingKeys(t *testing.T) {
	cfg := testConfig(t, authtest.NewIssuer(t))
	cfg.Auth.JWKSFile = filepath.Join(t.TempDir(), "missing.json")

	stack, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	require.Nil(t, stack)
	require.Contains(t, err.Error(), "load signing keys")
}

func TestBootstrapRuntimeKeepsDataWithoutReset(t *testing.T) {
	issuer := authtest.NewIssuer(t)
	cfg := testConfig(t, issuer)
	cfg.Database.ResetOnStart = false

	// Hold a connection so the shared memory database outlives the first stack.
	keeper, err := database.Open(cfg.Database.DatabaseOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(keeper) })

	first, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, keeper.Exec("INSERT INTO drinks (title, recipe, created_at, updated_at) VALUES ('tea', '[]', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)").Error)
	require.NoError(t, first.Shutdown())

	second, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, second.Shutdown()) })

	count, err := second.Drinks.Count(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2, count)
}

func TestShutdownOnNilStack(t *testing.T) {
	var stack *runtimeStack
	require.NoError(t, stack.Shutdown())
}

func TestLoadApplicationConfigRejectsMissingPath(t *testing.T) {
	_, err := loadApplicationConfig(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not exist")
}

func TestLoadApplicationConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 8081\nauth:\n  audience: menu\n"), 0o600))

	cfg, err := loadApplicationConfig(path)
	require.NoError(t, err)
	require.Equal(t, 8081, cfg.Server.Port)
	require.Equal(t, "menu", cfg.Auth.Audience)
}
