package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/router-for-me/oauthloop/internal/auth/google"
	"github.com/router-for-me/oauthloop/internal/browser"
	"github.com/router-for-me/oauthloop/internal/config"
	"github.com/router-for-me/oauthloop/internal/util"
	log "github.com/sirupsen/logrus"
)

// LoginOptions contains options for the login process.
type LoginOptions struct {
	// NoBrowser prints the authorization URL instead of opening a browser.
	NoBrowser bool

	// Stdout receives the JSON result. Defaults to os.Stdout.
	Stdout io.Writer

	// Stderr receives manual-login instructions. Defaults to os.Stderr.
	Stderr io.Writer

	// Flow overrides the loopback flow parameters. Only tests set this.
	Flow *google.Options
}

// DoGoogleLogin runs the loopback OAuth flow and prints the captured code,
// redirect URI and PKCE verifier as JSON for the token exchange step.
//
// Parameters:
//   - ctx: Cancels the wait for the callback
//   - cfg: The application configuration
//   - options: Login options including browser behavior
//
// Returns:
//   - int: The process exit code
func DoGoogleLogin(ctx context.Context, cfg *config.Config, options *LoginOptions) int {
	if options == nil {
		options = &LoginOptions{}
	}
	stdout := options.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := options.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	if cfg == nil {
		log.Error("Google login failed: configuration is required")
		return 1
	}
	if err := cfg.Validate(); err != nil {
		log.Errorf("Invalid configuration: %v", err)
		return 1
	}

	flowOpts := google.Options{}
	if options.Flow != nil {
		flowOpts = *options.Flow
	}
	port := flowOpts.Port
	if port <= 0 {
		port = google.DefaultCallbackPort
	}

	noBrowser := options.NoBrowser || cfg.NoBrowser
	if flowOpts.OpenURL == nil {
		if !noBrowser && !browser.IsAvailable() {
			log.Warn("No browser available on this system")
			log.Debugf("Browser platform info: %+v", browser.GetPlatformInfo())
			noBrowser = true
		}
		if noBrowser {
			flowOpts.OpenURL = manualOpener(stderr, port)
		}
	}

	result, err := google.NewGoogleAuth(&flowOpts).StartOAuthFlow(ctx, cfg.ClientID, cfg.Scopes)
	if err != nil {
		var authErr *google.AuthenticationError
		if errors.As(err, &authErr) {
			log.Error(google.GetUserFriendlyMessage(authErr))
			log.Debugf("Google login failed: %v", err)
			if errors.Is(authErr, google.ErrPortInUse) {
				return google.ErrPortInUse.Code
			}
			return 1
		}
		log.Errorf("Google login failed: %v", err)
		return 1
	}

	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	if err = encoder.Encode(result); err != nil {
		log.Errorf("Failed to write login result: %v", err)
		return 1
	}
	return 0
}

// manualOpener prints the authorization URL for the user to open themselves.
// It never fails, so the flow keeps waiting for the callback.
func manualOpener(w io.Writer, port int) google.URLOpener {
	return func(authURL string) error {
		util.PrintSSHTunnelInstructions(w, port, util.GetIPAddress())
		_, _ = fmt.Fprintf(w, "Please open this URL in your browser:\n\n%s\n\n", authURL)
		if err := browser.CopyToClipboard(authURL); err != nil {
			log.Debugf("Authorization URL not copied: %v", err)
		} else {
			_, _ = fmt.Fprintln(w, "(The URL has been copied to your clipboard.)")
		}
		_, _ = fmt.Fprintln(w, "Waiting for authentication callback...")
		return nil
	}
}
