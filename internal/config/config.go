// Package config loads the oauthloop YAML configuration and applies
// environment overrides on top of it.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultScopes is used when neither the file nor the environment sets scopes.
const DefaultScopes = "openid email profile"

// Config represents the application's configuration, loaded from a YAML file.
type Config struct {
	// ClientID is the Google OAuth client id of the desktop application.
	ClientID string `yaml:"client-id" json:"client-id"`

	// Scopes is the space-delimited scope list requested during login.
	Scopes string `yaml:"scopes" json:"scopes"`

	// NoBrowser prints the authorization URL instead of launching a browser.
	NoBrowser bool `yaml:"no-browser" json:"no-browser"`

	// Debug enables debug-level logging.
	Debug bool `yaml:"debug" json:"debug"`

	// LoggingToFile writes logs to a rotating file instead of stderr.
	LoggingToFile bool `yaml:"logging-to-file" json:"logging-to-file"`

	// LogDir overrides the log directory. "~" expands to the home directory.
	LogDir string `yaml:"log-dir,omitempty" json:"log-dir,omitempty"`

	// LogMaxSizeMB is the size at which the log file rotates. <= 0 uses 10.
	LogMaxSizeMB int `yaml:"log-max-size-mb,omitempty" json:"log-max-size-mb,omitempty"`

	// LogMaxBackups is the number of rotated files kept. 0 keeps all.
	LogMaxBackups int `yaml:"log-max-backups,omitempty" json:"log-max-backups,omitempty"`
}

// LoadConfig reads the configuration file at configFile.
func LoadConfig(configFile string) (*Config, error) {
	return LoadConfigOptional(configFile, false)
}

// LoadConfigOptional reads the configuration file. When optional is true a
// missing file, or an empty path, yields the defaults instead of an error.
func LoadConfigOptional(configFile string, optional bool) (*Config, error) {
	cfg := &Config{}

	if strings.TrimSpace(configFile) == "" {
		if !optional {
			return nil, fmt.Errorf("config file path is required")
		}
		cfg.applyDefaults()
		return cfg, nil
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			cfg.applyDefaults()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// ApplyEnvOverrides overlays environment values. lookup is usually os.LookupEnv.
func (c *Config) ApplyEnvOverrides(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if value, ok := firstEnv(lookup, "OAUTHLOOP_CLIENT_ID", "GOOGLE_CLIENT_ID"); ok {
		c.ClientID = value
	}
	if value, ok := firstEnv(lookup, "OAUTHLOOP_SCOPES"); ok {
		c.Scopes = value
	}
}

// Validate reports settings that make a login impossible.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ClientID) == "" {
		return fmt.Errorf("client-id is required (config file, -client-id or OAUTHLOOP_CLIENT_ID)")
	}
	if strings.TrimSpace(c.Scopes) == "" {
		return fmt.Errorf("scopes must not be empty")
	}
	return nil
}

func (c *Config) applyDefaults() {
	c.ClientID = strings.TrimSpace(c.ClientID)
	c.Scopes = strings.TrimSpace(c.Scopes)
	if c.Scopes == "" {
		c.Scopes = DefaultScopes
	}
	if c.LogMaxSizeMB <= 0 {
		c.LogMaxSizeMB = 10
	}
	if c.LogMaxBackups < 0 {
		c.LogMaxBackups = 0
	}
}

func firstEnv(lookup func(string) (string, bool), keys ...string) (string, bool) {
	for _, key := range keys {
		if value, ok := lookup(key); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed, true
			}
		}
	}
	return "", false
}
