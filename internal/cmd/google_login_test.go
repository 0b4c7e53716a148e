package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/router-for-me/oauthloop/internal/auth/google"
	"github.com/router-for-me/oauthloop/internal/config"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()
	return port
}

func redirectingOpener(port int, code string) google.URLOpener {
	return func(string) error {
		go func() {
			client := &http.Client{Timeout: 5 * time.Second}
			resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%d/?code=%s&state=ignored", port, code))
			if err == nil {
				_ = resp.Body.Close()
			}
		}()
		return nil
	}
}

func TestDoGoogleLogin_PrintsResultJSON(t *testing.T) {
	port := freePort(t)
	var stdout bytes.Buffer
	cfg := &config.Config{ClientID: "abc", Scopes: "email profile"}

	code := DoGoogleLogin(context.Background(), cfg, &LoginOptions{
		Stdout: &stdout,
		Flow: &google.Options{
			Port:         port,
			PollInterval: 10 * time.Millisecond,
			OpenURL:      redirectingOpener(port, "4%2F0Ab-xyz"),
		},
	})
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}

	var result google.OAuthResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("stdout is not a JSON result: %v\n%s", err, stdout.String())
	}
	if result.Code != "4/0Ab-xyz" {
		t.Errorf("code = %q", result.Code)
	}
	if result.RedirectURI != fmt.Sprintf("http://localhost:%d", port) {
		t.Errorf("redirect_uri = %q", result.RedirectURI)
	}
	if len(result.CodeVerifier) != 43 {
		t.Errorf("len(code_verifier) = %d", len(result.CodeVerifier))
	}
	for _, key := range []string{`"code"`, `"redirect_uri"`, `"code_verifier"`} {
		if !strings.Contains(stdout.String(), key) {
			t.Errorf("stdout missing %s", key)
		}
	}
}

func TestDoGoogleLogin_PortInUseExitCode(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer func() { _ = ln.Close() }()
	port := ln.Addr().(*net.TCPAddr).Port

	code := DoGoogleLogin(context.Background(), &config.Config{ClientID: "abc", Scopes: "email"}, &LoginOptions{
		Stdout: &bytes.Buffer{},
		Flow: &google.Options{
			Port:    port,
			OpenURL: func(string) error { return nil },
		},
	})
	if code != google.ErrPortInUse.Code {
		t.Fatalf("exit code = %d, want %d", code, google.ErrPortInUse.Code)
	}
}

func TestDoGoogleLogin_InvalidConfig(t *testing.T) {
	code := DoGoogleLogin(context.Background(), &config.Config{Scopes: "email"}, &LoginOptions{
		Stdout: &bytes.Buffer{},
		Flow:   &google.Options{OpenURL: func(string) error { t.Fatal("flow must not start"); return nil }},
	})
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
}

func TestDoGoogleLogin_NilConfig(t *testing.T) {
	if code := DoGoogleLogin(context.Background(), nil, nil); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
}

func TestDoGoogleLogin_TimeoutExitCode(t *testing.T) {
	var stdout bytes.Buffer
	code := DoGoogleLogin(context.Background(), &config.Config{ClientID: "abc", Scopes: "email"}, &LoginOptions{
		Stdout: &stdout,
		Flow: &google.Options{
			Port:         freePort(t),
			PollInterval: 5 * time.Millisecond,
			MaxPolls:     3,
			OpenURL:      func(string) error { return nil },
		},
	})
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if stdout.Len() != 0 {
		t.Fatalf("unexpected stdout %q", stdout.String())
	}
}

func TestManualOpener_PrintsInstructions(t *testing.T) {
	var out bytes.Buffer
	opener := manualOpener(&out, 3737)

	authURL := "https://accounts.google.com/o/oauth2/v2/auth?client_id=abc"
	if err := opener(authURL); err != nil {
		t.Fatalf("manual opener error = %v", err)
	}
	text := out.String()
	if !strings.Contains(text, authURL) {
		t.Fatalf("URL missing from output:\n%s", text)
	}
	if !strings.Contains(text, "-L 3737:127.0.0.1:3737") {
		t.Fatalf("tunnel instructions missing from output:\n%s", text)
	}
}
