package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// DefaultGateSecret is the fallback action password when none is
// configured. It is the value the original deployment shipped with and is
// unsuitable for anything beyond casual personal use; main logs a warning
// when it is in effect.
const DefaultGateSecret = "haekal ganteng"

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Gate     GateConfig     `mapstructure:"gate"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds SQLite configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// GateConfig holds the shared action password. This gates mutations as
// access friction, not as an authentication boundary: the secret is shared
// among everyone who uses the form.
type GateConfig struct {
	Secret string `mapstructure:"secret"`
}

// UploadConfig holds photo upload limits
type UploadConfig struct {
	MaxPhotoBytes int64 `mapstructure:"max_photo_bytes"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Gate.Secret == "" {
		cfg.Gate.Secret = DefaultGateSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	// no write timeout: the SSE stream endpoint holds its connection open
	viper.SetDefault("server.write_timeout", time.Duration(0))

	viper.SetDefault("database.path", "data/kasbon.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", time.Hour)
	viper.SetDefault("database.migrations_dir", "migrations")

	// 5 MiB pre-encoding cap, matching the original form's limit
	viper.SetDefault("upload.max_photo_bytes", int64(5*1024*1024))

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "console")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	viper.BindEnv("gate.secret", "KASBON_GATE_SECRET")
	viper.BindEnv("database.path", "KASBON_DB_PATH")
	viper.BindEnv("server.port", "KASBON_PORT")
	viper.BindEnv("logger.level", "KASBON_LOG_LEVEL")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Database.MigrationsDir == "" {
		return fmt.Errorf("database.migrations_dir is required")
	}
	if c.Upload.MaxPhotoBytes <= 0 {
		return fmt.Errorf("upload.max_photo_bytes must be positive")
	}
	return nil
}

// UsingDefaultSecret reports whether the weak built-in action password is
// in effect.
func (c *Config) UsingDefaultSecret() bool {
	return c.Gate.Secret == DefaultGateSecret
}
