// Package main provides the entry point for oauthloop, a command that runs the
// Google OAuth2 authorization code flow with PKCE through a loopback redirect
// and prints the authorization code and verifier for the token exchange.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/router-for-me/oauthloop/internal/buildinfo"
	"github.com/router-for-me/oauthloop/internal/cmd"
	"github.com/router-for-me/oauthloop/internal/config"
	"github.com/router-for-me/oauthloop/internal/logging"
	log "github.com/sirupsen/logrus"
)

var (
	Version           = "dev"
	Commit            = "none"
	BuildDate         = "unknown"
	DefaultConfigPath = "config.yaml"
)

// init initializes the shared logger setup.
func init() {
	logging.SetupBaseLogger()
	buildinfo.Version = Version
	buildinfo.Commit = Commit
	buildinfo.BuildDate = BuildDate
}

func main() {
	os.Exit(run())
}

func run() int {
	var configPath string
	var clientID string
	var scopes string
	var noBrowser bool
	var debug bool
	var showVersion bool

	flag.StringVar(&configPath, "config", DefaultConfigPath, "Configure File Path")
	flag.StringVar(&clientID, "client-id", "", "Google OAuth client id (overrides config and environment)")
	flag.StringVar(&scopes, "scopes", "", "Space-delimited OAuth scopes (overrides config and environment)")
	flag.BoolVar(&noBrowser, "no-browser", false, "Don't open browser automatically for OAuth")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("oauthloop Version: %s, Commit: %s, BuiltAt: %s\n", buildinfo.Version, buildinfo.Commit, buildinfo.BuildDate)
		return 0
	}

	wd, err := os.Getwd()
	if err != nil {
		log.Errorf("failed to get working directory: %v", err)
		return 1
	}

	// Load environment variables from .env if present.
	if errLoad := godotenv.Load(filepath.Join(wd, ".env")); errLoad != nil {
		if !errors.Is(errLoad, os.ErrNotExist) {
			log.WithError(errLoad).Warn("failed to load .env file")
		}
	}

	cfg, err := config.LoadConfigOptional(configPath, configPath == DefaultConfigPath)
	if err != nil {
		log.Errorf("failed to load config: %v", err)
		return 1
	}
	cfg.ApplyEnvOverrides(os.LookupEnv)
	if v := strings.TrimSpace(clientID); v != "" {
		cfg.ClientID = v
	}
	if v := strings.TrimSpace(scopes); v != "" {
		cfg.Scopes = v
	}
	if debug {
		cfg.Debug = true
	}

	if err = logging.ConfigureLogOutput(cfg); err != nil {
		log.Errorf("failed to configure log output: %v", err)
		return 1
	}
	defer logging.CloseLogOutputs()
	log.Debugf("oauthloop %s (%s) built %s", buildinfo.Version, buildinfo.Commit, buildinfo.BuildDate)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cmd.DoGoogleLogin(ctx, cfg, &cmd.LoginOptions{NoBrowser: noBrowser})
}
