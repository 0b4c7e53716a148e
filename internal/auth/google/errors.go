package google

import (
	"errors"
	"fmt"
	"net/http"
)

// AuthenticationError represents a terminal failure of the loopback OAuth flow.
type AuthenticationError struct {
	// Type is the machine readable kind of failure.
	Type string `json:"type"`
	// Message is a human-readable message describing the error.
	Message string `json:"message"`
	// Code is the HTTP status or process exit code associated with the error.
	Code int `json:"code"`
	// Cause is the underlying error, if any.
	Cause error `json:"-"`
}

// Error returns a string representation of the authentication error.
func (e *AuthenticationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the underlying cause.
func (e *AuthenticationError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AuthenticationError of the same Type, so
// errors.Is(err, ErrPortInUse) works on errors built by NewAuthenticationError.
func (e *AuthenticationError) Is(target error) bool {
	t, ok := target.(*AuthenticationError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

var (
	// ErrPortInUse is returned when the fixed callback port cannot be bound.
	ErrPortInUse = &AuthenticationError{
		Type:    "port_in_use",
		Message: "OAuth callback port is already in use",
		Code:    13, // Special exit code for port-in-use
	}

	// ErrBrowserOpenFailed is returned when the authorization URL could not be opened.
	ErrBrowserOpenFailed = &AuthenticationError{
		Type:    "browser_open_failed",
		Message: "Failed to open browser for authentication",
		Code:    http.StatusInternalServerError,
	}

	// ErrCallbackTimeout is returned when no authorization code arrived in time.
	ErrCallbackTimeout = &AuthenticationError{
		Type:    "callback_timeout",
		Message: "OAuth timeout: no response received",
		Code:    http.StatusRequestTimeout,
	}

	// ErrFlowCancelled is returned when the caller's context ends the wait early.
	ErrFlowCancelled = &AuthenticationError{
		Type:    "flow_cancelled",
		Message: "OAuth flow was cancelled",
		Code:    http.StatusRequestTimeout,
	}
)

// NewAuthenticationError creates a new authentication error with a cause based on a base error.
func NewAuthenticationError(baseErr *AuthenticationError, cause error) *AuthenticationError {
	return &AuthenticationError{
		Type:    baseErr.Type,
		Message: baseErr.Message,
		Code:    baseErr.Code,
		Cause:   cause,
	}
}

// IsAuthenticationError checks if an error is an authentication error.
func IsAuthenticationError(err error) bool {
	var authenticationError *AuthenticationError
	return errors.As(err, &authenticationError)
}

// GetUserFriendlyMessage returns a user-friendly error message based on the error type.
func GetUserFriendlyMessage(err error) string {
	var authErr *AuthenticationError
	if !errors.As(err, &authErr) {
		return "An unexpected error occurred. Please try again."
	}
	switch authErr.Type {
	case ErrPortInUse.Type:
		return fmt.Sprintf("Port %d is already in use. Close the application holding it (or a previous login) and try again.", DefaultCallbackPort)
	case ErrBrowserOpenFailed.Type:
		return "Could not open your browser automatically. Re-run with -no-browser and open the URL manually."
	case ErrCallbackTimeout.Type:
		return "Authentication timed out. Please try again."
	case ErrFlowCancelled.Type:
		return "Authentication was cancelled."
	default:
		return "Authentication failed. Please try again."
	}
}
