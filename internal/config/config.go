package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	AuthModeJWT    = "jwt"
	AuthModeRemote = "remote"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverNone     = "none"
)

var supportedProviders = map[string]bool{"gemini": true, "gateway": true}

// app config; provider specific settings are read by the provider packages
type Config struct {
	Env                string
	LogLevel           string
	Port               string
	Provider           string
	CORSAllowedOrigins []string
	RequestTimeout     time.Duration

	Auth     AuthConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Feedback FeedbackConfig
}

type AuthConfig struct {
	Mode      string
	JWTSecret string
	URL       string
	APIKey    string
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	User            string
	Password        string
	Name            string
	Port            string
	SSLMode         string
	SQLitePath      string
	ConnectAttempts int
}

// DSN builds the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (r RedisConfig) Enabled() bool { return r.Addr != "" }

// S3 compatible object storage; R2 and MinIO work through Endpoint
type StorageConfig struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

func (s StorageConfig) Enabled() bool { return s.Bucket != "" }

type FeedbackConfig struct {
	CacheTTL       time.Duration
	ExportEnabled  bool
	ExportSchedule string
	ExportDir      string
}

// LoadEnvFile loads a .env file into the environment when one exists.
// Variables already set win.
func LoadEnvFile(paths ...string) {
	_ = godotenv.Load(paths...)
}

// loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cacheTTL, err := getEnvDuration("FEEDBACK_CACHE_TTL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	requestTimeout, err := getEnvDuration("REQUEST_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Env:                getEnvOrDefault("APP_ENV", "production"),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		Port:               getEnvOrDefault("PORT", "8080"),
		Provider:           getEnvOrDefault("AI_PROVIDER", "gemini"),
		CORSAllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		RequestTimeout:     requestTimeout,
		Auth: AuthConfig{
			Mode:      getEnvOrDefault("AUTH_MODE", AuthModeJWT),
			JWTSecret: os.Getenv("AUTH_JWT_SECRET"),
			URL:       strings.TrimRight(os.Getenv("AUTH_URL"), "/"),
			APIKey:    os.Getenv("AUTH_API_KEY"),
		},
		Database: DatabaseConfig{
			Driver:          getEnvOrDefault("DB_DRIVER", DriverPostgres),
			Host:            getEnvOrDefault("POSTGRES_HOST", "localhost"),
			User:            getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password:        getEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
			Name:            getEnvOrDefault("POSTGRES_DB", "resumiq"),
			Port:            getEnvOrDefault("POSTGRES_PORT", "5432"),
			SSLMode:         getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
			SQLitePath:      getEnvOrDefault("SQLITE_PATH", "resumiq.db"),
			ConnectAttempts: getEnvInt("DB_CONNECT_ATTEMPTS", 5),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Storage: StorageConfig{
			Bucket:          os.Getenv("S3_BUCKET"),
			Region:          getEnvOrDefault("S3_REGION", "auto"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		},
		Feedback: FeedbackConfig{
			CacheTTL:       cacheTTL,
			ExportEnabled:  getEnvOrDefault("FEEDBACK_EXPORT_ENABLED", "false") == "true",
			ExportSchedule: getEnvOrDefault("FEEDBACK_EXPORT_SCHEDULE", "0 2 * * *"),
			ExportDir:      getEnvOrDefault("FEEDBACK_EXPORT_DIR", "./exports"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if !supportedProviders[config.Provider] {
		return errors.New("unsupported AI provider: " + config.Provider + ". Currently supported: gemini, gateway")
	}
	// provider credentials are checked per request by the provider itself

	switch config.Auth.Mode {
	case AuthModeJWT:
		if config.Auth.JWTSecret == "" {
			return errors.New("AUTH_JWT_SECRET is required when AUTH_MODE=jwt")
		}
	case AuthModeRemote:
		if config.Auth.URL == "" || config.Auth.APIKey == "" {
			return errors.New("AUTH_URL and AUTH_API_KEY are required when AUTH_MODE=remote")
		}
	default:
		return errors.New("unsupported AUTH_MODE: " + config.Auth.Mode + ". Currently supported: jwt, remote")
	}

	switch config.Database.Driver {
	case DriverPostgres, DriverSQLite, DriverNone:
	default:
		return errors.New("unsupported DB_DRIVER: " + config.Database.Driver)
	}
	if config.Database.ConnectAttempts < 1 {
		return errors.New("DB_CONNECT_ATTEMPTS must be at least 1")
	}

	if config.Storage.Enabled() && config.Storage.Endpoint == "" && config.Storage.Region == "auto" {
		return errors.New("S3_REGION is required for AWS S3 when S3_ENDPOINT is not set")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration such as 15m", key)
	}
	return d, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
