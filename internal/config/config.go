// Package config loads the optional gdrive config file and the matching
// environment overrides. Settings from the file are overridden by the
// environment, and both are overridden by command line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hjson/hjson-go"
	"github.com/spf13/afero"
)

const (
	configDirName  = "gdrive"
	configFileName = "config.hjson"
)

// Environment variables recognized in addition to the config file.
const (
	EnvAccount = "GDRIVE_ACCOUNT"
	EnvSecrets = "GDRIVE_SECRETS"
)

// Settings holds the values the config file and environment can provide.
type Settings struct {
	// Account is the named account to use unless --account is given.
	Account string

	// Secrets is the path to the OAuth client secrets file for gdrive auth.
	Secrets string
}

// DefaultPath returns the default config file location under the user
// config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine user config directory: %w", err)
	}
	return filepath.Join(dir, configDirName, configFileName), nil
}

// Load reads the config file at path and applies environment overrides.
// An empty path means the default location. A missing file is not an
// error; a malformed one is.
func Load(fs afero.Fs, path string) (*Settings, error) {
	settings := &Settings{}

	if path == "" {
		defaultPath, err := DefaultPath()
		if err == nil {
			path = defaultPath
		}
	}

	if path != "" {
		exists, err := afero.Exists(fs, path)
		if err != nil {
			return nil, fmt.Errorf("failed to check config file %s: %w", path, err)
		}
		if exists {
			if err := loadFile(fs, path, settings); err != nil {
				return nil, err
			}
		}
	}

	if v := os.Getenv(EnvAccount); v != "" {
		settings.Account = v
	}
	if v := os.Getenv(EnvSecrets); v != "" {
		settings.Secrets = v
	}

	return settings, nil
}

func loadFile(fs afero.Fs, path string, settings *Settings) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var raw map[string]interface{}
	if err := hjson.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	// Unknown keys are ignored so a config file can be shared across versions
	if settings.Account, err = stringValue(raw, "account"); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	if settings.Secrets, err = stringValue(raw, "secrets"); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}

	return nil
}

func stringValue(raw map[string]interface{}, key string) (string, error) {
	v, ok := raw[key]
	if !ok {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("key %q must be a string, got %T", key, v)
	}
	return s, nil
}
