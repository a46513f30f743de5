package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr string
	GinMode string

	BackendURL      string
	BackendTimeout  time.Duration
	BackendRetryMax int

	CORSOrigins  []string
	TokenCookie  string
	CookieSecure bool

	DBDSN         string
	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration

	LogLevel    string
	Currency    string
	Locale      string
	ExportLimit int
}

var defaultOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

// LoadEnv reads the process environment, loading .env first when present.
func LoadEnv() Env {
	_ = godotenv.Load()

	env := Env{
		AppAddr:         stringOr("APP_ADDR", ":8080"),
		GinMode:         strings.TrimSpace(os.Getenv("GIN_MODE")),
		BackendURL:      strings.TrimSuffix(stringOr("BACKEND_URL", "http://localhost:8000"), "/"),
		BackendTimeout:  durationOr("BACKEND_TIMEOUT", 15*time.Second),
		BackendRetryMax: intOr("BACKEND_RETRY_MAX", 2),
		CORSOrigins:     defaultOrigins,
		TokenCookie:     stringOr("TOKEN_COOKIE", "token"),
		DBDSN:           strings.TrimSpace(os.Getenv("DB_DSN")),
		RedisAddr:       strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		CacheTTL:        durationOr("CACHE_TTL", 30*time.Second),
		LogLevel:        stringOr("LOG_LEVEL", "info"),
		Currency:        stringOr("CURRENCY", "PHP"),
		Locale:          stringOr("LOCALE", "en-US"),
		ExportLimit:     intOr("EXPORT_LIMIT", 5000),
	}
	env.CookieSecure, _ = strconv.ParseBool(strings.TrimSpace(os.Getenv("COOKIE_SECURE")))

	if raw := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); raw != "" {
		env.CORSOrigins = nil
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				env.CORSOrigins = append(env.CORSOrigins, o)
			}
		}
	}
	return env
}

func stringOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intOr(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// durationOr accepts Go durations ("15s") or a bare number of seconds.
func durationOr(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}
