package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIURL      = "http://localhost:8000"
	DefaultHTTPTimeout = 12 * time.Second
	DefaultLogLevel    = "info"
	DefaultDevAddr     = ":8000"
	// DefaultDevSecret signs devserver tokens when MOVIX_DEV_SECRET is unset.
	DefaultDevSecret = "movix-dev-secret"
)

const (
	EnvAPIURL      = "MOVIX_API_URL"
	EnvHTTPTimeout = "MOVIX_HTTP_TIMEOUT"
	EnvConfigDir   = "MOVIX_CONFIG_DIR"
	EnvLogFile     = "MOVIX_LOG_FILE"
	EnvLogLevel    = "MOVIX_LOG_LEVEL"
	EnvDevSecret   = "MOVIX_DEV_SECRET"
	EnvDevAddr     = "MOVIX_DEV_ADDR"
)

type Config struct {
	APIURL      string
	HTTPTimeout time.Duration
	// ConfigDir holds the session file; empty means the user config dir.
	ConfigDir string
	// LogFile is the log destination; empty means the user cache dir.
	LogFile   string
	LogLevel  string
	DevSecret string
	DevAddr   string
}

// Load reads the optional .env files and then the environment. Variables that
// are already set win over .env entries.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		APIURL:      strings.TrimRight(envOr(EnvAPIURL, DefaultAPIURL), "/"),
		HTTPTimeout: DefaultHTTPTimeout,
		ConfigDir:   env(EnvConfigDir),
		LogFile:     env(EnvLogFile),
		LogLevel:    strings.ToLower(envOr(EnvLogLevel, DefaultLogLevel)),
		DevSecret:   envOr(EnvDevSecret, DefaultDevSecret),
		DevAddr:     envOr(EnvDevAddr, DefaultDevAddr),
	}
	if raw := env(EnvHTTPTimeout); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvHTTPTimeout, err)
		}
		if timeout <= 0 {
			return Config{}, fmt.Errorf("%s must be positive, got %s", EnvHTTPTimeout, raw)
		}
		cfg.HTTPTimeout = timeout
	}
	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envOr(key, fallback string) string {
	if value := env(key); value != "" {
		return value
	}
	return fallback
}
