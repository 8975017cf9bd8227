package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/coffeeshop/internal/services"
	appErrors "github.com/charlesng35/coffeeshop/pkg/errors"
	appValidator "github.com/charlesng35/coffeeshop/pkg/validator"
)

func TestParseDrinkID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		raw string
		id  uint
		ok  bool
	}{
		{"7", 7, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"1.5", 0, false},
		{"", 0, false},
		{"99999999999999999999999", 0, false},
	}

	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Params = gin.Params{{Key: "id", Value: tc.raw}}

		id, ok := parseDrinkID(c)
		require.Equal(t, tc.ok, ok, tc.raw)
		require.Equal(t, tc.id, id, tc.raw)
	}
}

func TestFormatValidationError(t *testing.T) {
	err := appValidator.ValidationErrors{
		{Field: "title", Path: "title", Tag: "required"},
		{Field: "recipe", Path: "recipe", Tag: "oneof", Param: "a b"},
	}
	require.Equal(t, "title is required; recipe failed validation: oneof=a b", formatValidationError(err))
	require.Equal(t, "invalid request payload", formatValidationError(errors.New("boom")))
}

func TestDrinkErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{services.ErrDrinkNotFound, http.StatusNotFound},
		{services.ErrDrinkTitleTaken, http.StatusUnprocessableEntity},
		{services.ErrNoChanges, http.StatusBadRequest},
		{&services.ValidationError{}, http.StatusUnprocessableEntity},
		{errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		var appErr *appErrors.AppError
		require.ErrorAs(t, drinkError(tc.err), &appErr)
		require.Equal(t, tc.status, appErr.StatusCode, tc.err.Error())
		require.ErrorIs(t, appErr, tc.err)
	}
}

func TestDrinkErrorKeepsPatchRejection(t *testing.T) {
	rejected := appErrors.NewBadRequest("invalid JSON payload")
	err := drinkError(fmt.Errorf("%w: %w", services.ErrInvalidPatch, rejected))

	var appErr *appErrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, http.StatusBadRequest, appErr.StatusCode)
	require.Equal(t, "invalid JSON payload", appErr.Message)

	// an invalid patch without a client-facing error is still a server fault
	err = drinkError(fmt.Errorf("%w: %w", services.ErrInvalidPatch, errors.New("boom")))
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, http.StatusInternalServerError, appErr.StatusCode)
}
