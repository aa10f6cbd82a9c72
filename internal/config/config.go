package config

import (
	"os"
	"strconv"

	"screenviz/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig
	Screen  ScreenConfig
	Paths   PathConfig
	Logging LoggingConfig
}

// ServerConfig holds dashboard server settings
type ServerConfig struct {
	Host    string
	Port    int
	GinMode string
}

// ScreenConfig holds identifier tokens used when labelling records
type ScreenConfig struct {
	NTCToken     string
	AmalgamToken string
}

// PathConfig holds file system paths
type PathConfig struct {
	GeneSetDir string
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level string
}

const (
	DefaultHost         = "127.0.0.1"
	DefaultPort         = 8050
	DefaultNTCToken     = "non-targeting"
	DefaultAmalgamToken = "amalgam"
)

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:  *loadServerConfig(),
		Screen:  *loadScreenConfig(),
		Paths:   *loadPathConfig(),
		Logging: LoggingConfig{Level: getEnvOrDefault("LOG_LEVEL", "INFO")},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Host:    getEnvOrDefault("SCREENVIZ_HOST", DefaultHost),
		Port:    getEnvIntOrDefault("SCREENVIZ_PORT", DefaultPort),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadScreenConfig() *ScreenConfig {
	return &ScreenConfig{
		NTCToken:     getEnvOrDefault("SCREENVIZ_NTC_TOKEN", DefaultNTCToken),
		AmalgamToken: getEnvOrDefault("SCREENVIZ_AMALGAM_TOKEN", DefaultAmalgamToken),
	}
}

func loadPathConfig() *PathConfig {
	return &PathConfig{
		GeneSetDir: getEnvOrDefault("SCREENVIZ_GENESET_DIR", "."),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return errors.ConfigInvalid("SCREENVIZ_PORT must be between 1 and 65535")
	}
	switch config.Server.GinMode {
	case "debug", "release", "test":
	default:
		return errors.ConfigInvalid("GIN_MODE must be debug, release or test")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
