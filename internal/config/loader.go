package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"kindlechess/pkg/logging"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/kindlechess"
	configFileName = "config.yaml"
	dotEnvFileName = ".env"

	// EnvPrefix prefixes every environment override, e.g. KINDLECHESS_AUTH_CLIENT_ID.
	EnvPrefix = "KINDLECHESS_"
)

func GetDefaultConfigPathOrPanic() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}

	return filepath.Join(homeDir, userConfigDir)
}

// LoadConfig loads configuration from a single directory.
//
// Sources are applied in order: built-in defaults, config.yaml, an optional
// .env file in the same directory, then KINDLECHESS_* environment variables.
// The result is validated before it is returned.
func LoadConfig(configPath string) (Config, error) {
	config := GetDefaultConfig(configPath)

	configFilePath := filepath.Join(configPath, configFileName)
	data, err := os.ReadFile(configFilePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Debug("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
	case err != nil:
		logging.Info("ConfigLoader", "Error loading config.yaml from %s: %s", configFilePath, err)
		return Config{}, err
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			// config malformed
			return Config{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
		}
		logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	}

	if err := loadDotEnv(filepath.Join(configPath, dotEnvFileName)); err != nil {
		return Config{}, err
	}

	if err := env.ParseWithOptions(&config, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// loadDotEnv populates the process environment from path if it exists.
// Variables already set in the environment win.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	logging.Debug("ConfigLoader", "Loaded environment overrides from %s", path)
	return nil
}
