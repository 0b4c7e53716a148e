package google

import "time"

// OAuth constants for the Google loopback flow. The redirect URI registered
// with Google is pinned to DefaultCallbackPort, so none of these are configurable.
const (
	AuthURL             = "https://accounts.google.com/o/oauth2/v2/auth"
	DefaultCallbackPort = 3737
	DefaultPollInterval = time.Second
	DefaultMaxPolls     = 60

	// callbackHost is where the listener binds; the redirect URI uses "localhost".
	callbackHost = "127.0.0.1"

	// callbackReadTimeout bounds reading the single callback request.
	callbackReadTimeout = 10 * time.Second

	// SuccessMessage is the plain-text body returned to the browser.
	SuccessMessage = "Authentication successful! You can close this window and return to the app."
)
