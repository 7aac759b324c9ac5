package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress        string
	DatabaseURI       string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	AuthSecret        string
	TokenTTL          time.Duration
	ShutdownTimeout   time.Duration
	SubscriberBuffer  int
	KeepAliveInterval time.Duration
	IdempotencyTTL    time.Duration
	MenuCacheTTL      time.Duration
	RelayRetryDelay   time.Duration
	AdminLogin        string
	AdminPassword     string
}

const (
	defaultRunAddress        = ":8080"
	defaultAuthSecret        = "change-me-in-production"
	defaultTokenTTL          = 12 * time.Hour
	defaultShutdownTimeout   = 10 * time.Second
	defaultSubscriberBuffer  = 64
	defaultKeepAliveInterval = 15 * time.Second
	defaultIdempotencyTTL    = 24 * time.Hour
	defaultMenuCacheTTL      = time.Minute
	defaultRelayRetryDelay   = 2 * time.Second
)

// Load parses configuration from an optional .env file, flags and environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:        getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:       getString(lookup, "DATABASE_URI", ""),
		RedisAddr:         getString(lookup, "REDIS_ADDR", ""),
		RedisPassword:     getString(lookup, "REDIS_PASSWORD", ""),
		RedisDB:           getInt(lookup, "REDIS_DB", 0),
		AuthSecret:        getString(lookup, "AUTH_SECRET", defaultAuthSecret),
		TokenTTL:          getDuration(lookup, "AUTH_TOKEN_TTL", defaultTokenTTL),
		ShutdownTimeout:   getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		SubscriberBuffer:  getInt(lookup, "SUBSCRIBER_BUFFER", defaultSubscriberBuffer),
		KeepAliveInterval: getDuration(lookup, "LIVE_KEEPALIVE", defaultKeepAliveInterval),
		IdempotencyTTL:    getDuration(lookup, "IDEMPOTENCY_TTL", defaultIdempotencyTTL),
		MenuCacheTTL:      getDuration(lookup, "MENU_CACHE_TTL", defaultMenuCacheTTL),
		RelayRetryDelay:   getDuration(lookup, "RELAY_RETRY_DELAY", defaultRelayRetryDelay),
		AdminLogin:        getString(lookup, "ADMIN_LOGIN", ""),
		AdminPassword:     getString(lookup, "ADMIN_PASSWORD", ""),
	}

	fs := flag.NewFlagSet("trattoria", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	shutdownTimeoutStr := cfg.ShutdownTimeout.String()

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "Redis address for the event relay; empty keeps events in-process")
	fs.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "Secret for signing auth tokens")
	fs.IntVar(&cfg.SubscriberBuffer, "subscriber-buffer", cfg.SubscriberBuffer, "Events buffered per live connection")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error
	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("AUTH_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read auth secret file: %w", err)
		}
		cfg.AuthSecret = string(content)
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.SubscriberBuffer <= 0 {
		cfg.SubscriberBuffer = defaultSubscriberBuffer
	}
	if cfg.KeepAliveInterval <= 0 {
		cfg.KeepAliveInterval = defaultKeepAliveInterval
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = defaultIdempotencyTTL
	}
	if cfg.MenuCacheTTL <= 0 {
		cfg.MenuCacheTTL = defaultMenuCacheTTL
	}
	if cfg.RelayRetryDelay <= 0 {
		cfg.RelayRetryDelay = defaultRelayRetryDelay
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}
	if (cfg.AdminLogin == "") != (cfg.AdminPassword == "") {
		return nil, fmt.Errorf("admin login and password must be provided together")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
