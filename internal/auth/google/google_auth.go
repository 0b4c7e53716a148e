// Package google runs the desktop OAuth2 authorization code flow with PKCE
// against Google. It binds a one-shot loopback listener, opens the user's
// browser at the authorization URL and waits, bounded, for the redirect to
// deliver the authorization code. Token exchange is left to the caller.
package google

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/router-for-me/oauthloop/internal/auth/pkce"
	"github.com/router-for-me/oauthloop/internal/browser"
	log "github.com/sirupsen/logrus"
)

// FlowState tracks the progress of a single OAuth flow.
type FlowState int

const (
	StateIdle FlowState = iota
	StatePortBinding
	StateAwaitingUserAuth
	StateSucceeded
	StateFailed
)

func (s FlowState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePortBinding:
		return "port_binding"
	case StateAwaitingUserAuth:
		return "awaiting_user_auth"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// OAuthResult is handed to the caller on success. The caller owns the
// verifier from here on and uses it for the token exchange.
type OAuthResult struct {
	Code         string `json:"code"`
	RedirectURI  string `json:"redirect_uri"`
	CodeVerifier string `json:"code_verifier"`
}

// URLOpener navigates the user to an authorization URL.
type URLOpener func(url string) error

// Options customizes the flow. Zero values select the production constants.
type Options struct {
	// Port is the loopback callback port.
	Port int
	// AuthURL is the provider authorization endpoint.
	AuthURL string
	// PollInterval is the wait between checks for the captured code.
	PollInterval time.Duration
	// MaxPolls bounds the number of checks before the flow times out.
	MaxPolls int
	// OpenURL launches the browser.
	OpenURL URLOpener
}

// GoogleAuth runs the loopback authorization code flow.
type GoogleAuth struct {
	port         int
	authURL      string
	pollInterval time.Duration
	maxPolls     int
	openURL      URLOpener
}

// NewGoogleAuth creates a new GoogleAuth. opts may be nil.
func NewGoogleAuth(opts *Options) *GoogleAuth {
	g := &GoogleAuth{
		port:         DefaultCallbackPort,
		authURL:      AuthURL,
		pollInterval: DefaultPollInterval,
		maxPolls:     DefaultMaxPolls,
		openURL:      browser.OpenURL,
	}
	if opts == nil {
		return g
	}
	if opts.Port > 0 {
		g.port = opts.Port
	}
	if opts.AuthURL != "" {
		g.authURL = opts.AuthURL
	}
	if opts.PollInterval > 0 {
		g.pollInterval = opts.PollInterval
	}
	if opts.MaxPolls > 0 {
		g.maxPolls = opts.MaxPolls
	}
	if opts.OpenURL != nil {
		g.openURL = opts.OpenURL
	}
	return g
}

// StartOAuthFlow binds the callback port, opens the authorization URL and
// waits up to MaxPolls*PollInterval for the authorization code.
//
// The port is bound before the browser opens. Whatever the outcome, the
// listener is closed before returning, so a second flow can bind again.
// Only one flow can run per port; a concurrent call fails with ErrPortInUse.
//
// Parameters:
//   - ctx: Cancels the wait early when done
//   - clientID: The OAuth client id
//   - scopes: Space-delimited scopes
//
// Returns:
//   - *OAuthResult: The code, redirect URI and PKCE verifier
//   - error: ErrPortInUse, ErrBrowserOpenFailed, ErrCallbackTimeout or ErrFlowCancelled
func (g *GoogleAuth) StartOAuthFlow(ctx context.Context, clientID, scopes string) (*OAuthResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := log.WithField("request_id", uuid.NewString()[:8])

	state := StateIdle
	transition := func(next FlowState) {
		logger.WithField("state", next).Debugf("OAuth flow leaving %s", state)
		state = next
	}

	transition(StatePortBinding)
	server, err := ListenCallback(g.port)
	if err != nil {
		transition(StateFailed)
		return nil, err
	}
	defer server.Close()
	redirectURI := server.RedirectURI()

	codes, err := pkce.GeneratePKCECodes()
	if err != nil {
		transition(StateFailed)
		return nil, fmt.Errorf("failed to generate PKCE codes: %w", err)
	}

	authURL, err := BuildAuthURL(g.authURL, AuthorizationRequest{
		ClientID:      clientID,
		RedirectURI:   redirectURI,
		Scopes:        scopes,
		CodeChallenge: codes.CodeChallenge,
	})
	if err != nil {
		transition(StateFailed)
		return nil, fmt.Errorf("failed to build authorization URL: %w", err)
	}

	cell := &codeCell{}
	go server.serve(cell)

	transition(StateAwaitingUserAuth)
	if err = g.openURL(authURL); err != nil {
		transition(StateFailed)
		return nil, NewAuthenticationError(ErrBrowserOpenFailed, err)
	}
	logger.WithField("port", server.Port()).Info("Waiting for OAuth callback")

	ticker := time.NewTicker(g.pollInterval)
	defer ticker.Stop()

	for attempt := 1; attempt <= g.maxPolls; attempt++ {
		select {
		case <-ctx.Done():
			transition(StateFailed)
			return nil, NewAuthenticationError(ErrFlowCancelled, ctx.Err())
		case <-ticker.C:
		}
		logger.WithField("attempt", attempt).Debug("Checking for OAuth callback")
		if code, ok := cell.Load(); ok {
			transition(StateSucceeded)
			logger.Info("OAuth authorization code received")
			return &OAuthResult{
				Code:         code,
				RedirectURI:  redirectURI,
				CodeVerifier: codes.CodeVerifier,
			}, nil
		}
	}

	transition(StateFailed)
	return nil, NewAuthenticationError(ErrCallbackTimeout,
		fmt.Errorf("no callback after %s", time.Duration(g.maxPolls)*g.pollInterval))
}
