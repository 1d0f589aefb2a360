// Package config reads runtime settings from the environment, after
// loading a .env file when one exists.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendPostgres  = "postgres"
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
)

type Config struct {
	Port             string
	StoreBackend     string
	DatabaseURL      string
	AutoMigrate      bool
	FirestoreProject string

	RedisAddr        string // empty disables Redis
	RedisPassword    string
	RedisDB          int
	ProviderCacheTTL time.Duration

	JWTSecret  string
	JWTExpires time.Duration

	SMTPHost  string
	SMTPPort  int
	EmailUser string
	EmailPass string

	AllowedOrigins  string
	BookingTimezone string
	ReminderLead    time.Duration
}

// Load reads .env (if present) and the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file. Using environment variables directly.")
	}
	return FromEnv()
}

// FromEnv reads the environment only.
func FromEnv() Config {
	return Config{
		Port:             get("PORT", "8000"),
		StoreBackend:     strings.ToLower(get("STORE_BACKEND", BackendPostgres)),
		DatabaseURL:      get("DATABASE_URL", ""),
		AutoMigrate:      getBool("AUTO_MIGRATE", true),
		FirestoreProject: get("FIRESTORE_PROJECT", ""),
		RedisAddr:        get("REDIS_ADDR", ""),
		RedisPassword:    get("REDIS_PASSWORD", ""),
		RedisDB:          getInt("REDIS_DB", 0),
		ProviderCacheTTL: getDuration("PROVIDER_CACHE_TTL", time.Minute),
		JWTSecret:        get("JWT_SECRET", ""),
		JWTExpires:       getDuration("JWT_EXPIRES", 24*time.Hour),
		SMTPHost:         get("SMTP_HOST", ""),
		SMTPPort:         getInt("SMTP_PORT", 587),
		EmailUser:        get("EMAIL_USER", ""),
		EmailPass:        get("EMAIL_PASS", ""),
		AllowedOrigins:   get("ALLOWED_ORIGINS", "*"),
		BookingTimezone:  get("BOOKING_TIMEZONE", "Asia/Kolkata"),
		ReminderLead:     getDuration("REMINDER_LEAD", time.Hour),
	}
}

func (c Config) Validate() error {
	var errs []error
	switch c.StoreBackend {
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is not set"))
		}
	case BackendFirestore:
		if c.FirestoreProject == "" {
			errs = append(errs, errors.New("FIRESTORE_PROJECT is not set"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is not set"))
	}
	if _, err := time.LoadLocation(c.BookingTimezone); err != nil {
		errs = append(errs, fmt.Errorf("BOOKING_TIMEZONE: %w", err))
	}
	return errors.Join(errs...)
}

// MailEnabled reports whether SMTP is configured well enough to send.
func (c Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.EmailUser != "" && c.EmailPass != ""
}

// Location loads the booking timezone, falling back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.BookingTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func get(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}

func getInt(k string, def int) int {
	n, err := strconv.Atoi(get(k, ""))
	if err != nil {
		return def
	}
	return n
}

func getBool(k string, def bool) bool {
	b, err := strconv.ParseBool(get(k, ""))
	if err != nil {
		return def
	}
	return b
}

func getDuration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(get(k, ""))
	if err != nil {
		return def
	}
	return d
}
