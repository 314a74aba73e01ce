package config // package config loads application configuration from environment variables

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers understood by StoreConfig.Driver.
const (
	DriverMongo  = "mongo"
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable; sub-configs group the settings of one backend.
type Config struct {
	Env      string // application environment (e.g. "dev", "prod")
	Port     string // HTTP port to listen on
	LogLevel string // debug | info | warn | error

	Store     StoreConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	SMTP      SMTPConfig

	JWTSecret    string        // secret used to sign session tokens
	ResetSecret  string        // secret used to sign password-reset tokens; defaults to JWTSecret
	SessionTTL   time.Duration // session token lifetime
	ResetTTL     time.Duration // password-reset token lifetime
	PBKDF2Rounds int           // PBKDF2 iteration count for new password hashes

	RabbitURL     string // AMQP URL; empty disables the broker and uses local workers
	NotifyWorkers int    // local notification workers
	FrontendURL   string // base URL used in password-reset links
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Driver     string // mongo | mysql | sqlite
	MongoURI   string
	MongoDB    string
	DBUser     string
	DBPass     string
	DBHost     string
	DBPort     string
	DBName     string
	SQLitePath string
}

// SMTPConfig holds outgoing mail settings. An empty Host disables delivery;
// messages are then only logged.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Load reads configuration from the environment, after loading a .env file
// when one is present. Missing required variables are reported together.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("config: .env not loaded", "error", err)
	}

	var missing []string
	must := func(key string) string {
		v, ok := os.LookupEnv(key)
		if !ok || strings.TrimSpace(v) == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg := Config{
		Env:      envStr("APP_ENV", "dev"),
		Port:     envStr("APP_PORT", "5000"),
		LogLevel: envStr("LOG_LEVEL", "info"),

		Store:     LoadStoreConfig(),
		Cache:     LoadCacheConfig(),
		RateLimit: LoadRateLimitConfig(),
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     envInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_EMAIL"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     envStr("MAIL_FROM", os.Getenv("SMTP_EMAIL")),
		},

		JWTSecret:    must("JWT_SECRET"),
		ResetSecret:  os.Getenv("RESET_JWT_SECRET"),
		SessionTTL:   envDur("SESSION_TOKEN_TTL", 24*time.Hour),
		ResetTTL:     envDur("RESET_TOKEN_TTL", time.Hour),
		PBKDF2Rounds: LoadPBKDF2Rounds(),

		RabbitURL:     firstNonEmpty(os.Getenv("RABBITMQ_URL"), os.Getenv("AMQP_URL")),
		NotifyWorkers: envInt("NOTIFY_WORKERS", 2),
		FrontendURL:   strings.TrimRight(envStr("FRONTEND_URL", "http://localhost:3000"), "/"),
	}
	if cfg.ResetSecret == "" {
		cfg.ResetSecret = cfg.JWTSecret
	}
	if len(missing) > 0 {
		return cfg, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	switch cfg.Store.Driver {
	case DriverMongo, DriverMySQL, DriverSQLite:
	default:
		return cfg, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.Store.Driver)
	}
	if cfg.NotifyWorkers < 1 {
		cfg.NotifyWorkers = 1
	}
	if cfg.PBKDF2Rounds < 1000 {
		return cfg, fmt.Errorf("PBKDF2_ROUNDS too low: %d", cfg.PBKDF2Rounds)
	}
	return cfg, nil
}

// LoadPBKDF2Rounds reads PBKDF2_ROUNDS, the iteration count for new password
// hashes. Every command that writes hashes reads it here.
func LoadPBKDF2Rounds() int {
	return envInt("PBKDF2_ROUNDS", 29000)
}

// LoadStoreConfig reads the backend selection and connection settings.
func LoadStoreConfig() StoreConfig {
	return StoreConfig{
		Driver:     strings.ToLower(envStr("STORE_DRIVER", DriverMongo)),
		MongoURI:   envStr("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:    envStr("MONGODB_DB", "complaint_system"),
		DBUser:     envStr("DB_USER", "root"),
		DBPass:     os.Getenv("DB_PASS"),
		DBHost:     envStr("DB_HOST", "localhost"),
		DBPort:     envStr("DB_PORT", "3306"),
		DBName:     envStr("DB_NAME", "complaint_system"),
		SQLitePath: envStr("SQLITE_PATH", "complaints.db"),
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
