// SPDX-License-Identifier: MPL-2.0

// Package config loads davit's global settings.
//
// Settings come from ~/.config/davit/config.yaml (platform-specific
// directory) overridden by DAVIT_* environment variables. They tune the tool
// itself — front-end binaries, status cache TTL, verbosity — as opposed to
// the per-project catalog, which lives in davit.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name, used for the config directory and the
	// environment variable prefix.
	AppName = "davit"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "yaml"
)

type (
	// Config holds the global davit settings.
	Config struct {
		// ComposeCommand is the compose front-end invocation.
		ComposeCommand string `mapstructure:"compose_command"`
		// KubectlBinary is the cluster front-end executable.
		KubectlBinary string `mapstructure:"kubectl_binary"`
		// StatusTTL is how long container status records stay cached.
		StatusTTL time.Duration `mapstructure:"status_ttl"`
		// Verbose enables debug logging.
		Verbose bool `mapstructure:"verbose"`
	}
)

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		ComposeCommand: "docker compose",
		KubectlBinary:  "kubectl",
		StatusTTL:      2 * time.Second,
	}
}

// Dir returns the davit configuration directory using platform conventions:
// Windows uses %APPDATA%, macOS uses ~/Library/Application Support, and
// Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
func Dir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// Load reads the settings from the config file and environment. A missing
// config file is not an error; defaults apply.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return loadFrom(dir)
}

func loadFrom(dir string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("compose_command", defaults.ComposeCommand)
	v.SetDefault("kubectl_binary", defaults.KubectlBinary)
	v.SetDefault("status_ttl", defaults.StatusTTL)
	v.SetDefault("verbose", defaults.Verbose)

	v.SetConfigName(ConfigFileName)
	v.SetConfigType(ConfigFileExt)
	v.AddConfigPath(dir)

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
