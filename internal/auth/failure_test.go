package auth

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFailureTableCoversEveryKind(t *testing.T) {
	kinds := Kinds()
	require.Len(t, kinds, len(failureTable))

	codes := make(map[string]struct{}, len(kinds))
	for _, kind := range kinds {
		info, ok := failureTable[kind]
		require.True(t, ok, "kind %d missing from table", kind)
		require.NotEmpty(t, info.code)
		require.NotEmpty(t, info.description)

		_, dup := codes[info.code]
		require.False(t, dup, "duplicate code %s", info.code)
		codes[info.code] = struct{}{}
	}
}

func TestFailureStatusMapping(t *testing.T) {
	forbidden := map[FailureKind]bool{
		FailurePermissionsMissing: true,
		FailureInsufficientScope:  true,
	}

	for _, kind := range Kinds() {
		want := http.StatusUnauthorized
		if forbidden[kind] {
			want = http.StatusForbidden
		}
		require.Equal(t, want, kind.Status(), kind.Code())
	}
}

func TestFailureError(t *testing.T) {
	inner := errors.New("token is expired")
	failure := newFailure(FailureExpired, inner)

	require.Equal(t, "auth: expired: token is expired", failure.Error())
	require.ErrorIs(t, failure, inner)
	require.Equal(t, "Token expired.", failure.Description)

	bare := newFailure(FailureMissingHeader, nil)
	require.Equal(t, "auth: missing_header", bare.Error())
	require.Equal(t, "missing_header", bare.Code())
}

func TestUnknownKindDefaults(t *testing.T) {
	var kind FailureKind
	require.Equal(t, "unknown", kind.Code())
	require.Equal(t, http.StatusUnauthorized, kind.Status())
}
