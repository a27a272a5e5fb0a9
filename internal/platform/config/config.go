package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	ProviderResend = "resend"
	ProviderLog    = "log"

	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// DefaultRecipient receives contact mail when CONTACT_EMAIL_TO yields no address.
const DefaultRecipient = "f.mesan@uniandes.edu.co"

// DefaultFrom is the provider's shared onboarding sender.
const DefaultFrom = "onboarding@resend.dev"

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string
	Environment    string
	LogLevel       string
	MaxBodyBytes   int64
	TrustedProxies string
	Email          EmailConfig
	RateLimit      RateLimitConfig
	Redis          RedisConfig
}

// EmailConfig configures outbound mail.
type EmailConfig struct {
	Provider   string
	APIKey     string
	BaseURL    string
	From       string
	Recipients []string
	Timeout    time.Duration
}

// RateLimitConfig configures the contact endpoint's fixed window.
type RateLimitConfig struct {
	MaxRequests     int
	Window          time.Duration
	Backend         string
	CleanupInterval time.Duration
}

// RedisConfig configures the optional Redis connection.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// IsDevelopment reports whether diagnostic detail may be logged.
func (s Server) IsDevelopment() bool {
	return s.Environment == EnvDevelopment
}

// FromEnv builds a Server config from environment variables so main stays lean.
// Unparseable numbers and durations fall back to their defaults.
func FromEnv() Server {
	env := getenv("APP_ENV", EnvProduction)
	defaultLevel := "info"
	if env == EnvDevelopment {
		defaultLevel = "debug"
	}

	return Server{
		Addr:           getenv("CONTACT_ADDR", ":8080"),
		Environment:    env,
		LogLevel:       getenv("LOG_LEVEL", defaultLevel),
		MaxBodyBytes:   int64(getInt("CONTACT_MAX_BODY_BYTES", 10000)),
		TrustedProxies: os.Getenv("TRUSTED_PROXIES"),
		Email: EmailConfig{
			Provider:   strings.ToLower(getenv("EMAIL_PROVIDER", ProviderResend)),
			APIKey:     os.Getenv("RESEND_API_KEY"),
			BaseURL:    os.Getenv("RESEND_BASE_URL"),
			From:       getenv("CONTACT_EMAIL_FROM", DefaultFrom),
			Recipients: ParseRecipients(os.Getenv("CONTACT_EMAIL_TO")),
			Timeout:    getDuration("EMAIL_DISPATCH_TIMEOUT", 10*time.Second),
		},
		RateLimit: RateLimitConfig{
			MaxRequests:     getInt("RATE_LIMIT_MAX_REQUESTS", 3),
			Window:          getDuration("RATE_LIMIT_WINDOW", time.Hour),
			Backend:         strings.ToLower(getenv("RATE_LIMIT_BACKEND", BackendMemory)),
			CleanupInterval: getDuration("RATE_LIMIT_CLEANUP_INTERVAL", 10*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 1),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}
}

// Validate reports combinations the server cannot start with.
func (s Server) Validate() error {
	var errs []error
	switch s.Email.Provider {
	case ProviderResend:
		if s.Email.APIKey == "" {
			errs = append(errs, errors.New("RESEND_API_KEY is required when EMAIL_PROVIDER=resend"))
		}
	case ProviderLog:
	default:
		errs = append(errs, fmt.Errorf("unknown EMAIL_PROVIDER %q", s.Email.Provider))
	}
	switch s.RateLimit.Backend {
	case BackendMemory:
	case BackendRedis:
		if s.Redis.URL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when RATE_LIMIT_BACKEND=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown RATE_LIMIT_BACKEND %q", s.RateLimit.Backend))
	}
	if s.RateLimit.MaxRequests <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX_REQUESTS must be positive"))
	}
	if s.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive"))
	}
	if s.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("CONTACT_MAX_BODY_BYTES must be positive"))
	}
	return errors.Join(errs...)
}

// ParseRecipients splits a comma-separated address list, trimming entries and
// dropping empty ones. An empty result yields DefaultRecipient.
func ParseRecipients(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return []string{DefaultRecipient}
	}
	return out
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return fallback
}
