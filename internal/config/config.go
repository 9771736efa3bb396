package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config is the process configuration shared by every command.
// Command-line flags override these values.
type Config struct {
	Tree   string `env:"ARBOR_TREE"`
	Addr   string `env:"ARBOR_ADDR" envDefault:":8080"`
	Debug  bool   `env:"ARBOR_DEBUG"`
	Strict bool   `env:"ARBOR_STRICT"` // refuse trees with validation errors

	MaxInputSize int `env:"ARBOR_MAX_INPUT_SIZE" envDefault:"4096"` // bytes per reply

	Store       string        `env:"ARBOR_STORE" envDefault:"memory"`
	SessionsDir string        `env:"ARBOR_SESSIONS_DIR" envDefault:".arbor/sessions"`
	SessionTTL  time.Duration `env:"ARBOR_SESSION_TTL" envDefault:"24h"`

	Redis RedisConfig `envPrefix:"ARBOR_REDIS_"`

	EncryptionKey          string   `env:"ARBOR_ENCRYPTION_KEY"`
	EncryptionFallbackKeys []string `env:"ARBOR_ENCRYPTION_FALLBACK_KEYS" envSeparator:","`

	// RedactPatterns mask matching text in log output.
	RedactPatterns []string `env:"ARBOR_REDACT_PATTERNS" envSeparator:";"`
}

// RedisConfig selects the Redis server backing the redis store.
type RedisConfig struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB"`
	Prefix   string `env:"PREFIX" envDefault:"arbor:session:"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// LoadFrom reads the configuration from the given variables instead of the
// process environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
