// internal/config/config.go
//
// Runtime configuration.
// Order: built-in defaults, then the YAML file named by BINGO_CONFIG (if
// any), then environment variables. The result is validated before use.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
	// Storage
	Storage string `yaml:"storage"` // sqlite | memory
	DBPath  string `yaml:"db_path"`
	// HTTP
	ClientOrigin   string `yaml:"client_origin"`
	RequestTimeout int    `yaml:"request_timeout_seconds"`
	Production     bool   `yaml:"production"`
	// Operator auth; empty hash leaves mutating routes open
	OperatorPasswordHash string `yaml:"operator_password_hash"`
	JWTSecret            string `yaml:"jwt_secret"`
	JWTExpiresDays       int    `yaml:"jwt_expires_days"`
	CookieName           string `yaml:"cookie_name"`
}

func defaults() *Config {
	return &Config{
		Port:           5175,
		LogLevel:       "info",
		Storage:        "sqlite",
		DBPath:         "./data/bingo.db",
		ClientOrigin:   "http://localhost:5173",
		RequestTimeout: 10,
		JWTSecret:      "dev_secret_change_me",
		JWTExpiresDays: 14,
		CookieName:     "bingo_token",
	}
}

// Load builds the configuration from defaults, then the optional YAML file
// named by BINGO_CONFIG, then environment variables.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("BINGO_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Port = envInt("PORT", cfg.Port)
	cfg.LogLevel = envStr("LOG_LEVEL", cfg.LogLevel)
	cfg.Storage = strings.ToLower(envStr("BINGO_STORAGE", cfg.Storage))
	cfg.DBPath = envStr("BINGO_DB_PATH", cfg.DBPath)
	cfg.ClientOrigin = envStr("CLIENT_ORIGIN", cfg.ClientOrigin)
	cfg.RequestTimeout = envInt("REQUEST_TIMEOUT_SECONDS", cfg.RequestTimeout)
	cfg.Production = envBool("PRODUCTION", cfg.Production) || os.Getenv("NODE_ENV") == "production"
	cfg.OperatorPasswordHash = envStr("OPERATOR_PASSWORD_HASH", cfg.OperatorPasswordHash)
	cfg.JWTSecret = envStr("JWT_SECRET", cfg.JWTSecret)
	cfg.JWTExpiresDays = envInt("JWT_EXPIRES_DAYS", cfg.JWTExpiresDays)
	cfg.CookieName = envStr("COOKIE_NAME", cfg.CookieName)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// AuthEnabled reports whether mutating routes require an operator token.
func (c *Config) AuthEnabled() bool { return c.OperatorPasswordHash != "" }

func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	switch c.Storage {
	case "sqlite":
		if c.DBPath == "" {
			return fmt.Errorf("BINGO_DB_PATH must not be empty")
		}
	case "memory":
	default:
		return fmt.Errorf("BINGO_STORAGE must be sqlite or memory, got %q", c.Storage)
	}
	if c.RequestTimeout < 1 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be positive, got %d", c.RequestTimeout)
	}
	if c.JWTExpiresDays < 1 {
		return fmt.Errorf("JWT_EXPIRES_DAYS must be positive, got %d", c.JWTExpiresDays)
	}
	if c.AuthEnabled() && c.Production && c.JWTSecret == defaults().JWTSecret {
		return fmt.Errorf("JWT_SECRET must be set in production when OPERATOR_PASSWORD_HASH is set")
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}
