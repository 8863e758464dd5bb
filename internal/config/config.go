// ABOUTME: Configuration loader for the admin console
// ABOUTME: Loads settings from .env and environment variables with defaults

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultAPIURL is used when no flag, environment variable or .env entry
// overrides it.
const DefaultAPIURL = "http://localhost:5070/api/v1"

type Config struct {
	// API
	APIURL         string // Base URL of the AppTemplate REST API
	RequestTimeout int    // seconds, default client timeout for API calls

	// Uploads
	MaxUploadMB int // profile picture size cap in MB (default: 3)

	// Logging
	LogLevel  string // debug, info, warn, error (default: info)
	LogFormat string // text, json (default: text)
}

// Load reads configuration from a .env file (if present) and the environment.
// Environment variables always win over .env values.
func Load() (*Config, error) {
	// Missing .env is not an error; godotenv only fills unset variables
	_ = godotenv.Load()

	cfg := &Config{
		APIURL:         ensureScheme(getEnv("APPTEMPLATE_API_URL", DefaultAPIURL)),
		RequestTimeout: getEnvInt("APPTEMPLATE_REQUEST_TIMEOUT", 30),
		MaxUploadMB:    getEnvInt("APPTEMPLATE_MAX_UPLOAD_MB", 3),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
	}

	if cfg.RequestTimeout < 1 || cfg.RequestTimeout > 300 {
		return nil, fmt.Errorf("APPTEMPLATE_REQUEST_TIMEOUT must be between 1 and 300, got %d", cfg.RequestTimeout)
	}
	if cfg.MaxUploadMB < 1 || cfg.MaxUploadMB > 100 {
		return nil, fmt.Errorf("APPTEMPLATE_MAX_UPLOAD_MB must be between 1 and 100, got %d", cfg.MaxUploadMB)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// ensureScheme adds http:// prefix if the URL has no scheme
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		return "http://" + url
	}
	return url
}
