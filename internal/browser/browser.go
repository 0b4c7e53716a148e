// Package browser opens URLs in the user's default web browser and provides
// the fallbacks used when no browser can be launched.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"
	log "github.com/sirupsen/logrus"
	"github.com/skratchdot/open-golang/open"
)

// linuxBrowsers are tried in order when open-golang fails on Linux.
var linuxBrowsers = []string{"xdg-open", "x-www-browser", "www-browser", "firefox", "chromium", "google-chrome"}

// openRunner and lookPath are swapped in tests.
var (
	openRunner = open.Run
	lookPath   = exec.LookPath
	startCmd   = func(cmd *exec.Cmd) error { return cmd.Start() }
)

// OpenURL opens the specified URL in the default web browser.
// It first attempts to use a platform-agnostic library and falls back to
// platform-specific commands if that fails.
//
// Parameters:
//   - url: The URL to open.
//
// Returns:
//   - An error if the URL cannot be opened, otherwise nil.
func OpenURL(url string) error {
	err := openRunner(url)
	if err == nil {
		log.Debug("Opened URL using open-golang")
		return nil
	}

	log.Debugf("open-golang failed: %v, trying platform-specific commands", err)
	return openURLPlatformSpecific(url)
}

// openURLPlatformSpecific opens a URL using OS-specific commands.
func openURLPlatformSpecific(url string) error {
	name, args, err := platformCommand(runtime.GOOS)
	if err != nil {
		return err
	}

	cmd := exec.Command(name, append(args, url)...)
	log.Debugf("Running command: %s %v", cmd.Path, cmd.Args[1:])
	if err = startCmd(cmd); err != nil {
		return fmt.Errorf("failed to start browser command: %w", err)
	}
	return nil
}

// platformCommand returns the launcher command for goos, without the URL.
func platformCommand(goos string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", nil, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler"}, nil
	case "linux":
		for _, candidate := range linuxBrowsers {
			if _, err := lookPath(candidate); err == nil {
				return candidate, nil, nil
			}
		}
		return "", nil, fmt.Errorf("no suitable browser found on Linux system")
	default:
		return "", nil, fmt.Errorf("unsupported operating system: %s", goos)
	}
}

// IsAvailable reports whether a browser launcher exists on this system.
// It only looks up commands and never opens anything.
func IsAvailable() bool {
	name, _, err := platformCommand(runtime.GOOS)
	if err != nil {
		return false
	}
	_, err = lookPath(name)
	return err == nil
}

// GetPlatformInfo returns details about the browser launch capabilities of
// the current platform, for debug logging.
func GetPlatformInfo() map[string]any {
	info := map[string]any{
		"os":        runtime.GOOS,
		"arch":      runtime.GOARCH,
		"available": IsAvailable(),
	}
	if name, _, err := platformCommand(runtime.GOOS); err == nil {
		info["default_command"] = name
	}
	if runtime.GOOS == "linux" {
		var available []string
		for _, candidate := range linuxBrowsers {
			if _, err := lookPath(candidate); err == nil {
				available = append(available, candidate)
			}
		}
		info["available_browsers"] = available
	}
	return info
}

// CopyToClipboard places text on the system clipboard.
func CopyToClipboard(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard is not supported on this system")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}
