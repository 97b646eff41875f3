// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every configuration key to form its environment
// variable name, e.g. listen_addr is read from STUDYDIGEST_LISTEN_ADDR.
const EnvPrefix = "STUDYDIGEST"

// Log levels accepted by STUDYDIGEST_LOG_LEVEL.
const (
	LogLevelError   = "ERROR"
	LogLevelWarning = "WARNING"
	LogLevelInfo    = "INFO"
	LogLevelDebug   = "DEBUG"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr string
	DBPath     string
	// EncryptionKey is the master secret for credential encryption. It may be
	// empty; the cipher then refuses every operation.
	EncryptionKey string

	OpenRouterBaseURL string
	AppURL            string
	AppName           string
	Model             string
	ChunkTokens       int

	LogLevel string
}

// HasEncryptionKey returns true when a master secret is configured. Used by
// the composition root to warn at startup instead of at first use.
func (c *Config) HasEncryptionKey() bool {
	return c.EncryptionKey != ""
}

var defaults = map[string]any{
	"listen_addr":         "127.0.0.1:8080",
	"db_path":             "studydigest.db",
	"encryption_key":      "",
	"openrouter_base_url": "https://openrouter.ai/api/v1",
	"app_url":             "http://localhost:8080",
	"app_name":            "StudyDigest",
	"model":               "openai/gpt-4o-mini",
	"chunk_tokens":        "3000",
	"log_level":           LogLevelInfo,
}

// Load reads configuration from STUDYDIGEST_* environment variables and returns
// a validated Config. Every variable is optional; see defaults for the values
// used when one is absent.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	chunkTokens, err := strconv.Atoi(strings.TrimSpace(v.GetString("chunk_tokens")))
	if err != nil || chunkTokens <= 0 {
		return nil, fmt.Errorf("%s_CHUNK_TOKENS must be a positive integer, got %q", EnvPrefix, v.GetString("chunk_tokens"))
	}

	baseURL := strings.TrimRight(v.GetString("openrouter_base_url"), "/")
	if err := validateURL(baseURL); err != nil {
		return nil, fmt.Errorf("%s_OPENROUTER_BASE_URL is invalid: %w", EnvPrefix, err)
	}

	logLevel := strings.ToUpper(strings.TrimSpace(v.GetString("log_level")))
	switch logLevel {
	case LogLevelError, LogLevelWarning, LogLevelInfo, LogLevelDebug:
	default:
		return nil, fmt.Errorf("%s_LOG_LEVEL has unknown level %q", EnvPrefix, v.GetString("log_level"))
	}

	return &Config{
		ListenAddr:        v.GetString("listen_addr"),
		DBPath:            v.GetString("db_path"),
		EncryptionKey:     v.GetString("encryption_key"),
		OpenRouterBaseURL: baseURL,
		AppURL:            v.GetString("app_url"),
		AppName:           v.GetString("app_name"),
		Model:             v.GetString("model"),
		ChunkTokens:       chunkTokens,
		LogLevel:          logLevel,
	}, nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}
