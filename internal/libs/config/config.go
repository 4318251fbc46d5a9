// Package config provides application configuration management from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store backends
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds application configuration
type Config struct {
	DatabaseURL    string
	StoreBackend   string
	PoolMinConns   int32
	PoolMaxConns   int32
	AcquireTimeout time.Duration

	APIHost  string
	APIPort  string
	LogLevel string

	Kill   KillConfig
	Steady EmitterConfig
	Burst  EmitterConfig

	// HealthBurstProbability is the chance that /health logs one extra
	// generated record of HealthBurstBytes.
	HealthBurstProbability float64
	HealthBurstBytes       int
}

// KillConfig controls the self-terminating timer
type KillConfig struct {
	Enabled bool
	After   time.Duration
}

// EmitterConfig controls one periodic log emitter
type EmitterConfig struct {
	Enabled       bool
	BytesPerLog   int
	LogsPerSecond float64
}

// Interval returns the pause between two emissions
func (e EmitterConfig) Interval() time.Duration {
	return time.Duration(float64(time.Second) / e.LogsPerSecond)
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present; it never
// overrides variables that are already set.
func Load() (*Config, error) {
	return LoadFiles()
}

// LoadFiles is Load with explicit .env files instead of the default ./.env
func LoadFiles(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	p := &parser{}
	cfg := &Config{
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		StoreBackend:   getEnv("STORE_BACKEND", BackendPostgres),
		PoolMinConns:   p.getInt32("DB_POOL_MIN", 1),
		PoolMaxConns:   p.getInt32("DB_POOL_MAX", 20),
		AcquireTimeout: p.getDuration("DB_ACQUIRE_TIMEOUT", 5*time.Second),
		APIHost:        getEnv("API_HOST", "0.0.0.0"),
		APIPort:        getEnv("PORT", "5000"),
		LogLevel:       getEnv("LOG_LEVEL", "debug"),
		Kill: KillConfig{
			Enabled: isSet("PERIODIC_KILL_FLASK"),
			After:   p.getSeconds("PERIODIC_KILL_FLASK_SECONDS", 30),
		},
		Steady: EmitterConfig{
			Enabled:       isSet("PERIODIC_LOGGING"),
			BytesPerLog:   p.getInt("PERIODIC_LOGGING_BYTES_PER_LOG", 1000),
			LogsPerSecond: p.getFloat("PERIODIC_LOGGING_LOGS_PER_SECOND", 1),
		},
		Burst: EmitterConfig{
			Enabled:       isSet("PERIODIC_BIG_LOGGING"),
			BytesPerLog:   p.getInt("PERIODIC_BIG_LOGGING_BYTES_PER_LOG", 500000),
			LogsPerSecond: p.getFloat("PERIODIC_BIG_LOGGING_LOGS_PER_SECOND", 0.05),
		},
		HealthBurstProbability: p.getFloat("HEALTH_BURST_PROBABILITY", 0),
		HealthBurstBytes:       p.getInt("HEALTH_BURST_BYTES", 600000),
	}
	if p.err != nil {
		return nil, p.err
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = postgresURL(
			getEnv("POSTGRES_USER", "flaskuser"),
			getEnv("POSTGRES_PASSWORD", "flaskpassword"),
			getEnv("POSTGRES_HOST", "postgres-service"),
			getEnv("POSTGRES_PORT", "5432"),
			getEnv("POSTGRES_DB", "flaskdb"),
			getEnv("POSTGRES_SSLMODE", "disable"),
		)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendPostgres, BackendMemory:
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendPostgres, BackendMemory, c.StoreBackend)
	}
	if c.PoolMinConns < 1 || c.PoolMaxConns < c.PoolMinConns {
		return fmt.Errorf("pool bounds must satisfy 1 <= DB_POOL_MIN (%d) <= DB_POOL_MAX (%d)", c.PoolMinConns, c.PoolMaxConns)
	}
	if c.AcquireTimeout <= 0 {
		return fmt.Errorf("DB_ACQUIRE_TIMEOUT must be positive")
	}
	if c.Kill.After < 0 {
		return fmt.Errorf("PERIODIC_KILL_FLASK_SECONDS must not be negative")
	}
	for name, e := range map[string]EmitterConfig{"PERIODIC_LOGGING": c.Steady, "PERIODIC_BIG_LOGGING": c.Burst} {
		if !(e.LogsPerSecond > 0) {
			return fmt.Errorf("%s_LOGS_PER_SECOND must be positive", name)
		}
		// the pause has to fit a time.Duration and be at least 1ns
		if iv := float64(time.Second) / e.LogsPerSecond; iv < 1 || iv >= math.MaxInt64 {
			return fmt.Errorf("%s_LOGS_PER_SECOND %g is out of range", name, e.LogsPerSecond)
		}
		if e.BytesPerLog < 0 {
			return fmt.Errorf("%s_BYTES_PER_LOG must not be negative", name)
		}
	}
	if !(c.HealthBurstProbability >= 0 && c.HealthBurstProbability <= 1) {
		return fmt.Errorf("HEALTH_BURST_PROBABILITY must be within [0, 1]")
	}
	return nil
}

// Addr returns the HTTP listen address
func (c *Config) Addr() string {
	return net.JoinHostPort(c.APIHost, c.APIPort)
}

func postgresURL(user, password, host, port, dbname, sslmode string) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     net.JoinHostPort(host, port),
		Path:     "/" + dbname,
		RawQuery: url.Values{"sslmode": {sslmode}}.Encode(),
	}
	return u.String()
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// isSet reports presence, so PERIODIC_LOGGING= (empty) still enables
func isSet(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}

// parser keeps the first conversion error
type parser struct {
	err error
}

func (p *parser) getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return n
}

func (p *parser) getInt32(key string, fallback int32) int32 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return int32(n)
}

func (p *parser) getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return f
}

func (p *parser) getSeconds(key string, fallback float64) time.Duration {
	secs := p.getFloat(key, fallback)
	ns := secs * float64(time.Second)
	if math.IsNaN(ns) || math.Abs(ns) >= math.MaxInt64 {
		p.fail(key, os.Getenv(key), fmt.Errorf("seconds out of range"))
		return time.Duration(fallback * float64(time.Second))
	}
	return time.Duration(ns)
}

func (p *parser) getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return d
}

func (p *parser) fail(key, value string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid value %q for %s: %w", value, key, err)
	}
}
