package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	API    APIConfig
	Store  StoreConfig
	Redis  RedisConfig
	Logger LoggerConfig
}

// APIConfig holds configuration for the remote user directory endpoint
type APIConfig struct {
	BaseURL    string `mapstructure:"API_BASE_URL"`
	PerPage    int    `mapstructure:"API_PER_PAGE"`
	DebounceMS int    `mapstructure:"API_DEBOUNCE_MS"`
}

// StoreConfig holds configuration for the local persistent store
type StoreConfig struct {
	Backend    string `mapstructure:"STORE_BACKEND"` // sqlite or redis
	SQLitePath string `mapstructure:"SQLITE_PATH"`
}

// RedisConfig holds configuration for the redis store backend
type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level            string  `mapstructure:"LOG_LEVEL"`
	Format           string  `mapstructure:"LOG_FORMAT"`
	OutputPath       string  `mapstructure:"LOG_OUTPUT_PATH"`
	SlowQuerySeconds float64 `mapstructure:"LOG_SLOW_QUERY_SECONDS"`
	EnableSampling   bool    `mapstructure:"LOG_ENABLE_SAMPLING"`
	ServiceName      string  `mapstructure:"SERVICE_NAME"`
	ServiceVersion   string  `mapstructure:"SERVICE_VERSION"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (*Config, error) {
	setDefaults()

	viper.AddConfigPath(path)
	viper.SetConfigName("app") // Look for app.env
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if we have env vars
	}

	var config Config

	config.API.BaseURL = viper.GetString("API_BASE_URL")
	config.API.PerPage = viper.GetInt("API_PER_PAGE")
	config.API.DebounceMS = viper.GetInt("API_DEBOUNCE_MS")

	config.Store.Backend = viper.GetString("STORE_BACKEND")
	config.Store.SQLitePath = viper.GetString("SQLITE_PATH")

	config.Redis.Host = viper.GetString("REDIS_HOST")
	config.Redis.Port = viper.GetString("REDIS_PORT")
	config.Redis.Password = viper.GetString("REDIS_PASSWORD")
	config.Redis.DB = viper.GetInt("REDIS_DB")

	config.Logger.Level = viper.GetString("LOG_LEVEL")
	config.Logger.Format = viper.GetString("LOG_FORMAT")
	config.Logger.OutputPath = viper.GetString("LOG_OUTPUT_PATH")
	config.Logger.SlowQuerySeconds = viper.GetFloat64("LOG_SLOW_QUERY_SECONDS")
	config.Logger.EnableSampling = viper.GetBool("LOG_ENABLE_SAMPLING")
	config.Logger.ServiceName = viper.GetString("SERVICE_NAME")
	config.Logger.ServiceVersion = viper.GetString("SERVICE_VERSION")

	return &config, nil
}

// Validate checks that the loaded configuration is usable.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL must not be empty")
	}
	if c.API.PerPage <= 0 {
		return fmt.Errorf("API_PER_PAGE must be positive, got %d", c.API.PerPage)
	}
	switch c.Store.Backend {
	case "sqlite", "redis":
	default:
		return fmt.Errorf("STORE_BACKEND must be sqlite or redis, got %q", c.Store.Backend)
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("API_BASE_URL", "https://reqres.in/api")
	viper.SetDefault("API_PER_PAGE", 6)
	viper.SetDefault("API_DEBOUNCE_MS", 1000)

	viper.SetDefault("STORE_BACKEND", "sqlite")
	viper.SetDefault("SQLITE_PATH", "userdir.db")

	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)

	env := viper.GetString("APP_ENV")
	if env == "production" {
		viper.SetDefault("LOG_LEVEL", "info")
		viper.SetDefault("LOG_FORMAT", "json")
		viper.SetDefault("LOG_ENABLE_SAMPLING", true)
	} else {
		viper.SetDefault("LOG_LEVEL", "debug")
		viper.SetDefault("LOG_FORMAT", "console")
		viper.SetDefault("LOG_ENABLE_SAMPLING", false)
	}
	viper.SetDefault("LOG_OUTPUT_PATH", "stdout")
	viper.SetDefault("LOG_SLOW_QUERY_SECONDS", 0.2)
	viper.SetDefault("SERVICE_NAME", "userdir")
	viper.SetDefault("SERVICE_VERSION", "1.0.0")
}

// RedisAddr returns the host:port address of the redis store backend.
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}
