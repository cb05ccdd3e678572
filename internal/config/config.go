package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

const defaultJWTSecret = "dev-secret-change-in-production"

// ErrDefaultSecret is returned when production runs with the development JWT secret.
var ErrDefaultSecret = errors.New("JWT_SECRET must be set in production environment")

type Config struct {
	Port        string
	Env         string
	DatabaseDSN string
	JWTSecret   string
	JWTExpiry   time.Duration

	RateLimitMax    int
	RateLimitWindow time.Duration
	RateLimitSweep  time.Duration
	TrustProxy      bool

	// Location decides where calendar days start for date ranges and analytics.
	Location *time.Location

	CacheSize int
	CacheTTL  time.Duration
}

// IsProduction reports whether ENV is "production".
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads the configuration from the environment and exits on invalid values.
func Load() Config {
	cfg, err := FromEnv(os.Getenv)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	return cfg
}

// FromEnv builds a Config from getenv, applying defaults for unset keys.
func FromEnv(getenv func(string) string) (Config, error) {
	e := env{getenv: getenv}

	cfg := Config{
		Port:            e.str("PORT", "8080"),
		Env:             e.str("ENV", "development"),
		DatabaseDSN:     e.str("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/taskmanager?parseTime=true"),
		JWTSecret:       e.str("JWT_SECRET", defaultJWTSecret),
		JWTExpiry:       e.duration("JWT_EXPIRY", 7*24*time.Hour),
		RateLimitMax:    e.integer("RATE_LIMIT_MAX", 100),
		RateLimitWindow: e.duration("RATE_LIMIT_WINDOW", 15*time.Minute),
		RateLimitSweep:  e.duration("RATE_LIMIT_SWEEP", time.Minute),
		TrustProxy:      e.boolean("TRUST_PROXY", false),
		CacheSize:       e.integer("CACHE_SIZE", 1024),
		CacheTTL:        e.duration("CACHE_TTL", 30*time.Second),
	}

	tz := e.str("TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("TIMEZONE: %w", err))
	}
	cfg.Location = loc

	if cfg.RateLimitMax <= 0 {
		e.errs = append(e.errs, errors.New("RATE_LIMIT_MAX must be positive"))
	}
	if cfg.RateLimitWindow <= 0 {
		e.errs = append(e.errs, errors.New("RATE_LIMIT_WINDOW must be positive"))
	}
	if cfg.IsProduction() && cfg.JWTSecret == defaultJWTSecret {
		e.errs = append(e.errs, ErrDefaultSecret)
	}

	return cfg, errors.Join(e.errs...)
}

// env reads typed values and collects parse errors instead of failing on the first.
type env struct {
	getenv func(string) string
	errs   []error
}

func (e *env) str(key, fallback string) string {
	if v := e.getenv(key); v != "" {
		return v
	}
	return fallback
}

func (e *env) integer(key string, fallback int) int {
	v := e.getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func (e *env) duration(key string, fallback time.Duration) time.Duration {
	v := e.getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}

func (e *env) boolean(key string, fallback bool) bool {
	v := e.getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return b
}
