package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	StoreDriver    string // mysql or memory
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	DBAutoMigrate  bool   // apply schema.sql at startup
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing
	AdminEmail     string // seed administrator (optional)
	AdminPassword  string

	Log    LogConfig
	Queue  QueueConfig
	Notify NotifyConfig
	Jobs   JobConfig
}

// LogConfig selects the zap level and encoder.
type LogConfig struct {
	Level  string
	Format string
}

// QueueConfig points at the RabbitMQ broker used for domain events. An empty
// URL disables publishing and the notification consumer.
type QueueConfig struct {
	URL   string
	Queue string
}

// NotifyConfig holds credentials of the outbound notification channels.
// A channel without credentials is skipped.
type NotifyConfig struct {
	SendGridAPIKey string
	FromEmail      string
	FromName       string
	TwilioSID      string
	TwilioToken    string
	TwilioFrom     string
}

// JobConfig controls the reservation sweeper.
type JobConfig struct {
	SweepEnabled  bool
	SweepSchedule string // cron spec, seconds field optional
}

// Load reads configuration values from environment variables. Required
// variables are enforced by must(); missing values stop the program. The
// database variables are only required for the mysql driver.
func Load() Config {
	cfg := Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		StoreDriver:    strings.ToLower(envStr("STORE_DRIVER", DriverMySQL)),
		DBPass:         os.Getenv("DB_PASS"),
		DBAutoMigrate:  envBool("DB_AUTO_MIGRATE", false),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),
		AdminEmail:     os.Getenv("ADMIN_EMAIL"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		Log: LogConfig{
			Level:  envStr("LOG_LEVEL", "info"),
			Format: envStr("LOG_FORMAT", "json"),
		},
		Queue: QueueConfig{
			URL:   os.Getenv("RABBITMQ_URL"),
			Queue: envStr("RABBITMQ_QUEUE", "reservation.events"),
		},
		Notify: NotifyConfig{
			SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
			FromEmail:      envStr("SENDGRID_FROM_EMAIL", "no-reply@parking.local"),
			FromName:       envStr("SENDGRID_FROM_NAME", "Parking Reservations"),
			TwilioSID:      os.Getenv("TWILIO_ACCOUNT_SID"),
			TwilioToken:    os.Getenv("TWILIO_AUTH_TOKEN"),
			TwilioFrom:     os.Getenv("TWILIO_FROM_NUMBER"),
		},
		Jobs: JobConfig{
			SweepEnabled:  envBool("SWEEP_ENABLED", true),
			SweepSchedule: envStr("SWEEP_SCHEDULE", "@every 1m"),
		},
	}
	switch cfg.StoreDriver {
	case DriverMySQL:
		cfg.DBUser = must("DB_USER")
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	case DriverMemory:
	default:
		log.Fatalf("invalid STORE_DRIVER %q (want mysql or memory)", cfg.StoreDriver)
	}
	return cfg
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
