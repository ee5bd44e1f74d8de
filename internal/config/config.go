package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPaymentURL = "https://pay.cakto.com.br/fna8efe_427848"
	DefaultTrialDays  = 7
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DatabaseURL   string
	DBAutoMigrate bool

	SessionSecret  []byte
	SessionCookie  string
	SessionTTL     time.Duration
	SessionBackend string
	CookieSecure   bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers []string
	KafkaTopic   string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	TracingExporter string
	OTLPEndpoint    string
	MetricsPath     string

	CSRFEnabled bool
	CORSOrigins []string

	TrialDays       int
	TrialPaymentURL string
	Timezone        string
	CurrencyPrefix  string

	AdminEmail    string
	AdminPassword string
}

// Load reads .env (when present) and the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: could not load .env: %v", err)
	}

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "restaurant-pos"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DBAutoMigrate: EnvBoolDefault("DB_AUTO_MIGRATE", false),

		SessionSecret:  []byte(os.Getenv("SESSION_SECRET")),
		SessionCookie:  EnvDefault("SESSION_COOKIE", "sid"),
		SessionTTL:     EnvDurationDefault("SESSION_TTL", 24*time.Hour),
		SessionBackend: EnvDefault("SESSION_BACKEND", "gorm"),
		CookieSecure:   EnvBoolDefault("COOKIE_SECURE", false),

		RedisAddr:     EnvDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       EnvIntDefault("REDIS_DB", 0),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   EnvDefault("KAFKA_TOPIC", "restaurant_events"),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "foods"),

		TracingExporter: os.Getenv("TRACING_EXPORTER"),
		OTLPEndpoint:    os.Getenv("OTLP_ENDPOINT"),
		MetricsPath:     EnvDefault("METRICS_PATH", "/metrics"),

		CSRFEnabled: EnvBoolDefault("CSRF_ENABLED", false),
		CORSOrigins: CSV(os.Getenv("CORS_ORIGINS")),

		TrialDays:       EnvIntDefault("TRIAL_DAYS", DefaultTrialDays),
		TrialPaymentURL: EnvDefault("TRIAL_PAYMENT_URL", DefaultPaymentURL),
		Timezone:        EnvDefault("TIMEZONE", "UTC"),
		CurrencyPrefix:  EnvDefault("CURRENCY_PREFIX", "R$ "),

		AdminEmail:    EnvDefault("ADMIN_EMAIL", "admin@restaurante.com"),
		AdminPassword: EnvDefault("ADMIN_PASSWORD", "admin123"),
	}
}

// Validate reports the first missing or inconsistent setting needed to serve traffic.
func (c Config) Validate() error {
	if err := NonEmpty(c.DatabaseURL, "DATABASE_URL"); err != nil {
		return err
	}
	if err := NonEmptyBytes(c.SessionSecret, "SESSION_SECRET"); err != nil {
		return err
	}
	switch c.SessionBackend {
	case "gorm", "redis":
	default:
		return fmt.Errorf("unsupported SESSION_BACKEND %q", c.SessionBackend)
	}
	if c.TrialDays <= 0 {
		return fmt.Errorf("TRIAL_DAYS must be positive, got %d", c.TrialDays)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

// Location returns the configured reporting timezone, UTC when it cannot be loaded.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
