// Package config loads and validates environment variables at startup.
// Fail-fast: a missing or malformed variable stops the process before it
// opens the database or binds a port.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Config holds all runtime configuration for the server.
type Config struct {
	Port   int
	DBPath string

	// StaticDir, when set, is served at / so one process can host the
	// front end build as well as the API.
	StaticDir string

	JWTSecret     string
	TokenTTL      time.Duration
	SecureCookies bool

	// GitHub sign-in is enabled when both the client ID and secret are set.
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string

	// The job finder is disabled without an API key; every search then
	// fails with the overloaded message.
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	GeminiTimeout time.Duration

	// RedisURL selects the shared session store. Empty keeps sessions in
	// memory, which only works for a single instance.
	RedisURL string

	CORSOrigins         []string
	SearchRatePerMinute int
	SearchBurst         int
	LogLevel            slog.Level

	// ExpirySchedule is the cron spec of the subscription expiry sweep.
	ExpirySchedule string
}

// GitHubEnabled reports whether GitHub sign-in is configured.
func (c *Config) GitHubEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (*Config, error) {
	env := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	secret := getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if len(secret) < 16 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}

	port, err := positiveInt(env("PORT", "8080"), "PORT")
	if err != nil {
		return nil, err
	}
	if port > 65535 {
		return nil, fmt.Errorf("PORT must be at most 65535, got %d", port)
	}

	tokenTTL, err := duration(env("TOKEN_TTL", "24h"), "TOKEN_TTL")
	if err != nil {
		return nil, err
	}
	geminiTimeout, err := duration(env("GEMINI_TIMEOUT", "60s"), "GEMINI_TIMEOUT")
	if err != nil {
		return nil, err
	}

	rate, err := positiveInt(env("SEARCH_RATE_PER_MINUTE", "10"), "SEARCH_RATE_PER_MINUTE")
	if err != nil {
		return nil, err
	}
	burst, err := positiveInt(env("SEARCH_BURST", "3"), "SEARCH_BURST")
	if err != nil {
		return nil, err
	}

	secure, err := strconv.ParseBool(env("COOKIE_SECURE", "false"))
	if err != nil {
		return nil, fmt.Errorf("COOKIE_SECURE must be a boolean, got %q", getenv("COOKIE_SECURE"))
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(env("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", getenv("LOG_LEVEL"))
	}

	schedule := env("EXPIRY_SCHEDULE", "@every 1h")
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("EXPIRY_SCHEDULE %q: %w", schedule, err)
	}

	var origins []string
	for _, o := range strings.Split(env("CORS_ORIGINS", "http://localhost:5173"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return &Config{
		Port:                port,
		DBPath:              env("DB_PATH", "data/frelance.db"),
		StaticDir:           env("STATIC_DIR", ""),
		JWTSecret:           secret,
		TokenTTL:            tokenTTL,
		SecureCookies:       secure,
		GitHubClientID:      env("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret:  env("GITHUB_CLIENT_SECRET", ""),
		GitHubCallbackURL:   env("GITHUB_CALLBACK_URL", fmt.Sprintf("http://localhost:%d/auth/github/callback", port)),
		GeminiAPIKey:        env("GEMINI_API_KEY", ""),
		GeminiModel:         env("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL:       env("GEMINI_BASE_URL", ""),
		GeminiTimeout:       geminiTimeout,
		RedisURL:            env("REDIS_URL", ""),
		CORSOrigins:         origins,
		SearchRatePerMinute: rate,
		SearchBurst:         burst,
		LogLevel:            level,
		ExpirySchedule:      schedule,
	}, nil
}

func positiveInt(s, key string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, s)
	}
	return v, nil
}

func duration(s, key string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration like 30s or 24h, got %q", key, s)
	}
	return d, nil
}
