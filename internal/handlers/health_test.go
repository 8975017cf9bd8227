package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/coffeeshop/internal/database"
	"github.com/charlesng35/coffeeshop/internal/handlers/testutil"
)

func TestHealth(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"success":true,"status":"ok"}`, w.Body.String())
}

func TestHealthReportsUnavailableDatabase(t *testing.T) {
	env := testutil.NewEnv(t)
	require.NoError(t, database.Close(env.DB))

	w := env.Request(http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Equal(t, "service_unavailable", testutil.DecodeError(t, w).Code)
}
