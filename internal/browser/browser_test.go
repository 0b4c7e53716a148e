package browser

import (
	"errors"
	"os/exec"
	"testing"
)

func TestPlatformCommand(t *testing.T) {
	origLookPath := lookPath
	t.Cleanup(func() { lookPath = origLookPath })

	lookPath = func(file string) (string, error) {
		if file == "firefox" {
			return "/usr/bin/firefox", nil
		}
		return "", exec.ErrNotFound
	}

	cases := []struct {
		goos     string
		wantName string
		wantArgs int
		wantErr  bool
	}{
		{"darwin", "open", 0, false},
		{"windows", "rundll32", 1, false},
		{"linux", "firefox", 0, false},
		{"plan9", "", 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.goos, func(t *testing.T) {
			name, args, err := platformCommand(tc.goos)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %s", tc.goos)
				}
				return
			}
			if err != nil {
				t.Fatalf("platformCommand(%q) error = %v", tc.goos, err)
			}
			if name != tc.wantName {
				t.Fatalf("name = %q, want %q", name, tc.wantName)
			}
			if len(args) != tc.wantArgs {
				t.Fatalf("len(args) = %d, want %d", len(args), tc.wantArgs)
			}
		})
	}
}

func TestPlatformCommand_LinuxWithoutBrowser(t *testing.T) {
	origLookPath := lookPath
	t.Cleanup(func() { lookPath = origLookPath })
	lookPath = func(string) (string, error) { return "", exec.ErrNotFound }

	if _, _, err := platformCommand("linux"); err == nil {
		t.Fatal("expected error when no browser is installed")
	}
}

func TestOpenURL_PrefersOpenGolang(t *testing.T) {
	origRunner, origStart := openRunner, startCmd
	t.Cleanup(func() {
		openRunner = origRunner
		startCmd = origStart
	})

	var opened string
	openRunner = func(input string) error {
		opened = input
		return nil
	}
	startCmd = func(*exec.Cmd) error {
		t.Fatal("platform fallback should not run")
		return nil
	}

	if err := OpenURL("https://example.com/auth"); err != nil {
		t.Fatalf("OpenURL() error = %v", err)
	}
	if opened != "https://example.com/auth" {
		t.Fatalf("opened %q", opened)
	}
}

func TestOpenURL_FallbackFailure(t *testing.T) {
	origRunner, origStart, origLookPath := openRunner, startCmd, lookPath
	t.Cleanup(func() {
		openRunner = origRunner
		startCmd = origStart
		lookPath = origLookPath
	})

	openRunner = func(string) error { return errors.New("no opener") }
	lookPath = func(file string) (string, error) { return "/bin/" + file, nil }
	startCmd = func(*exec.Cmd) error { return errors.New("exec failed") }

	if err := OpenURL("https://example.com/auth"); err == nil {
		t.Fatal("expected error when every launcher fails")
	}
}
