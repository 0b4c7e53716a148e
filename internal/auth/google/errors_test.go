package google

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestAuthenticationError_IsAndUnwrap(t *testing.T) {
	cause := errors.New("bind: address already in use")
	err := fmt.Errorf("login: %w", NewAuthenticationError(ErrPortInUse, cause))

	if !errors.Is(err, ErrPortInUse) {
		t.Fatal("errors.Is should match by type")
	}
	if errors.Is(err, ErrCallbackTimeout) {
		t.Fatal("errors.Is matched the wrong type")
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause should be reachable through Unwrap")
	}
	if !IsAuthenticationError(err) {
		t.Fatal("IsAuthenticationError() = false")
	}
	if IsAuthenticationError(cause) {
		t.Fatal("IsAuthenticationError() = true for a plain error")
	}
	if !strings.Contains(err.Error(), "port_in_use") || !strings.Contains(err.Error(), "caused by") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestGetUserFriendlyMessage(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{NewAuthenticationError(ErrPortInUse, nil), "3737"},
		{NewAuthenticationError(ErrBrowserOpenFailed, nil), "-no-browser"},
		{NewAuthenticationError(ErrCallbackTimeout, nil), "timed out"},
		{NewAuthenticationError(ErrFlowCancelled, nil), "cancelled"},
		{errors.New("boom"), "unexpected"},
	}
	for _, tc := range cases {
		if got := GetUserFriendlyMessage(tc.err); !strings.Contains(got, tc.want) {
			t.Errorf("GetUserFriendlyMessage(%v) = %q, want it to contain %q", tc.err, got, tc.want)
		}
	}
}
