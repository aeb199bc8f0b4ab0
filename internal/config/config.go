package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the console.
type Config struct {
	App          AppConfig
	EntityStore  EntityStoreConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	Refresh      RefreshConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// EntityStoreConfig points at the external order/ticket/customer
// service.
type EntityStoreConfig struct {
	BaseURL               string
	RequestTimeoutSeconds int
	// StaticToken is the fallback bearer token used when the
	// credential store holds none.
	StaticToken string
	// TokenKey is the redis key the external login flow writes the
	// bearer token to.
	TokenKey string
}

// PostgresConfig holds DB connection values for the transition audit
// trail. An empty DSN disables auditing.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines operator session parameters. The operator
// password arrives pre-hashed (bcrypt) from the environment.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	OperatorName          string
	OperatorPasswordHash  string
}

// NotificationConfig holds the transition webhook endpoint.
type NotificationConfig struct {
	WebhookURL string
}

// RefreshConfig controls the background snapshot refresher. A zero
// interval disables it; operators can always refresh explicitly.
type RefreshConfig struct {
	IntervalSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "resale-admin"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		EntityStore: EntityStoreConfig{
			BaseURL:               getEnv("ENTITY_STORE_BASE_URL", "http://127.0.0.1:8000"),
			RequestTimeoutSeconds: getEnvAsInt("ENTITY_STORE_TIMEOUT_SECONDS", 15),
			StaticToken:           os.Getenv("ENTITY_STORE_TOKEN"),
			TokenKey:              getEnv("ENTITY_STORE_TOKEN_KEY", "resale:entitystore:access_token"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			OperatorName:          getEnv("AUTH_OPERATOR_NAME", "admin"),
			OperatorPasswordHash:  os.Getenv("AUTH_OPERATOR_PASSWORD_HASH"),
		},
		Notification: NotificationConfig{
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
		Refresh: RefreshConfig{
			IntervalSeconds: getEnvAsInt("SNAPSHOT_REFRESH_INTERVAL_SECONDS", 0),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// RequestTimeout returns the upstream request timeout duration.
func (e EntityStoreConfig) RequestTimeout() time.Duration {
	if e.RequestTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(e.RequestTimeoutSeconds) * time.Second
}

// Interval returns the refresh cadence, zero when disabled.
func (r RefreshConfig) Interval() time.Duration {
	if r.IntervalSeconds <= 0 {
		return 0
	}
	return time.Duration(r.IntervalSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
