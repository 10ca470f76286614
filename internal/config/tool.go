package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// ToolConfig is what resumiqctl needs: the database, object storage, the
// export directory and the JWT secret for minting development tokens.
type ToolConfig struct {
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Feedback FeedbackConfig `mapstructure:"feedback"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

// envBindings maps config keys to the environment variables the server reads.
var envBindings = map[string]string{
	"database.driver":          "DB_DRIVER",
	"database.host":            "POSTGRES_HOST",
	"database.user":            "POSTGRES_USER",
	"database.password":        "POSTGRES_PASSWORD",
	"database.name":            "POSTGRES_DB",
	"database.port":            "POSTGRES_PORT",
	"database.sslmode":         "POSTGRES_SSLMODE",
	"database.sqlitepath":      "SQLITE_PATH",
	"database.connectattempts": "DB_CONNECT_ATTEMPTS",
	"storage.bucket":           "S3_BUCKET",
	"storage.region":           "S3_REGION",
	"storage.endpoint":         "S3_ENDPOINT",
	"storage.accesskeyid":      "S3_ACCESS_KEY_ID",
	"storage.secretaccesskey":  "S3_SECRET_ACCESS_KEY",
	"feedback.exportdir":       "FEEDBACK_EXPORT_DIR",
	"auth.jwtsecret":           "AUTH_JWT_SECRET",
}

// LoadToolConfig reads configFile (YAML) when given, otherwise
// resumiqctl.yaml from the working directory or $HOME/.config/resumiq. The
// server's environment variables override file values.
func LoadToolConfig(configFile string) (*ToolConfig, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("resumiqctl")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/resumiq")
	}

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "resumiq")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.sqlitepath", "resumiq.db")
	v.SetDefault("database.connectattempts", 3)
	v.SetDefault("storage.region", "auto")
	v.SetDefault("feedback.exportdir", "./exports")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variable: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w", err)
		}
	}

	var cfg ToolConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	switch cfg.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver for resumiqctl: %q", cfg.Database.Driver)
	}
	if cfg.Database.ConnectAttempts < 1 {
		cfg.Database.ConnectAttempts = 1
	}
	return &cfg, nil
}
