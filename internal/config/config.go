package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName          = "OpsHub"
	defaultAppEnv           = "development"
	defaultPort             = "8080"
	defaultLogLevel         = "info"
	defaultLocale           = "en"
	defaultKaiterraBaseURL  = "https://api.kaiterra.com"
	defaultKaiterraTimeout  = 30 * time.Second
	defaultShutdownDelay    = 10 * time.Second
	defaultIdempotencyTTL   = 24 * time.Hour
	defaultRegistrationRate = 10
	idemTTLSecondsEnvVar    = "IDEMPOTENCY_TTL_SECONDS"
	idemTTLDurEnvVar        = "IDEMPOTENCY_TTL"
	shutdownSecondsEnvVar   = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar  = "SHUTDOWN_TIMEOUT"
	kaiterraTimeoutEnvVar   = "KAITERRA_TIMEOUT"
	registrationRateEnvVar  = "REGISTRATION_RATE_LIMIT"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName          string
	AppEnv           string
	Port             string
	LogLevel         string
	Locale           string
	DatabaseURL      string
	RedisURL         string
	AdminToken       string
	KaiterraBaseURL  string
	KaiterraTimeout  time.Duration
	ShutdownPeriod   time.Duration
	IdempotencyTTL   time.Duration
	RegistrationRate int
}

// Load reads configuration values from the environment and populates a Config instance.
// Outside of development DATABASE_URL, REDIS_URL and ADMIN_TOKEN are mandatory.
func Load() (Config, error) {
	cfg := Config{
		AppName:          getEnv("APP_NAME", defaultAppName),
		AppEnv:           getEnv("APP_ENV", defaultAppEnv),
		Port:             getEnv("PORT", defaultPort),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		Locale:           strings.ToLower(getEnv("LOCALE", defaultLocale)),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		AdminToken:       os.Getenv("ADMIN_TOKEN"),
		KaiterraBaseURL:  strings.TrimRight(getEnv("KAITERRA_BASE_URL", defaultKaiterraBaseURL), "/"),
		KaiterraTimeout:  defaultKaiterraTimeout,
		ShutdownPeriod:   defaultShutdownDelay,
		IdempotencyTTL:   defaultIdempotencyTTL,
		RegistrationRate: defaultRegistrationRate,
	}

	var err error
	if cfg.ShutdownPeriod, err = durationFromEnv(shutdownSecondsEnvVar, shutdownDurationEnvVar, cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationFromEnv(idemTTLSecondsEnvVar, idemTTLDurEnvVar, cfg.IdempotencyTTL); err != nil {
		return Config{}, err
	}
	if cfg.KaiterraTimeout, err = durationFromEnv("", kaiterraTimeoutEnvVar, cfg.KaiterraTimeout); err != nil {
		return Config{}, err
	}

	if v := os.Getenv(registrationRateEnvVar); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", registrationRateEnvVar, err)
		}
		cfg.RegistrationRate = n
	}

	if cfg.IsDev() {
		return cfg, nil
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL must be set")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("REDIS_URL must be set")
	}
	if cfg.AdminToken == "" {
		return Config{}, fmt.Errorf("ADMIN_TOKEN must be set")
	}

	return cfg, nil
}

// IsDev reports whether the app runs in a development-like environment where
// Postgres and Redis may be replaced by in-memory stand-ins.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// durationFromEnv accepts either an integer number of seconds or a Go duration
// string. The seconds variable wins when both are set.
func durationFromEnv(secondsVar, durationVar string, fallback time.Duration) (time.Duration, error) {
	if secondsVar != "" {
		if v := os.Getenv(secondsVar); v != "" {
			seconds, err := strconv.Atoi(v)
			if err != nil {
				return 0, fmt.Errorf("invalid %s: %w", secondsVar, err)
			}
			return time.Duration(seconds) * time.Second, nil
		}
	}
	if v := os.Getenv(durationVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", durationVar, err)
		}
		return d, nil
	}
	return fallback, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
