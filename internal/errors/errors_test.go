package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSyncError_Error_IncludesCategoryAndSeverity(t *testing.T) {
	err := New(CategoryNetwork, SeverityFatal, "request failed")
	require.Equal(t, "network (fatal): request failed", err.Error())
}

func TestSyncError_Error_IncludesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CategoryNetwork, SeverityFatal, "request failed")
	require.Contains(t, err.Error(), "connection refused")
	require.ErrorIs(t, err, cause)
}

func TestSyncError_WithContext_AccumulatesFields(t *testing.T) {
	err := New(CategoryHTTP, SeverityFatal, "unexpected HTTP status").
		WithContext("status", 500).
		WithContext("url", "https://example.com")
	require.Equal(t, 500, err.Context["status"])
	require.Equal(t, "https://example.com", err.Context["url"])
}

func TestIsCategory_MatchesOnlyOwnCategory(t *testing.T) {
	err := New(CategoryParse, SeverityError, "bad json")
	require.True(t, IsCategory(err, CategoryParse))
	require.False(t, IsCategory(err, CategoryNetwork))
	require.False(t, IsCategory(errors.New("plain"), CategoryParse))
}

func TestHTTPStatus_401_AddsPermissionHint(t *testing.T) {
	err := HTTPStatus("https://api.github.com", 401, "Unauthorized")
	require.Contains(t, err.Context, "hint")

	ok := HTTPStatus("https://api.github.com", 500, "boom")
	require.NotContains(t, ok.Context, "hint")
}

func TestGetCategory_FallsBackToInternal(t *testing.T) {
	require.Equal(t, CategoryInternal, GetCategory(errors.New("plain")))
	require.Equal(t, CategoryState, GetCategory(StateError("append", errors.New("locked"))))
}
