package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	customerrors "github.com/axellelanca/edgelink/internal/errors"
)

// Storage drivers understood by kv.Open.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Config represents the main structure mapping the entire application configuration.
// This struct uses mapstructure tags to map YAML keys and EDGELINK_* variables to Go struct fields.
type Config struct {
	Server struct {
		Port                   int    `mapstructure:"port"`
		BaseURL                string `mapstructure:"base_url"` // Base URL for generating short links
		ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds"`
		// Proxies allowed to set X-Forwarded-For. Empty means the client address
		// is always the connection's remote address.
		TrustedProxies []string `mapstructure:"trusted_proxies"`
	} `mapstructure:"server"`

	Storage Storage `mapstructure:"storage"`

	// Links holds the short code allocation and expiration policy
	Links struct {
		CodeLength    int   `mapstructure:"code_length"`
		MinTTLSeconds int64 `mapstructure:"min_ttl_seconds"`
		MaxTTLSeconds int64 `mapstructure:"max_ttl_seconds"`
	} `mapstructure:"links"`

	RateLimit struct {
		Requests      int `mapstructure:"requests"`       // Ceiling per window, <= 0 disables the limiter
		WindowSeconds int `mapstructure:"window_seconds"` // Window length
	} `mapstructure:"ratelimit"`

	Metadata struct {
		CacheTTLSeconds     int     `mapstructure:"cache_ttl_seconds"`
		FetchTimeoutSeconds int     `mapstructure:"fetch_timeout_seconds"`
		FetchRPS            float64 `mapstructure:"fetch_rps"`
		FetchBurst          int     `mapstructure:"fetch_burst"`
		UserAgent           string  `mapstructure:"user_agent"`
	} `mapstructure:"metadata"`

	Crawler struct {
		ExtraSignatures []string `mapstructure:"extra_signatures"`
	} `mapstructure:"crawler"`

	Auth struct {
		BootstrapKeys []string `mapstructure:"bootstrap_keys"` // Tokens provisioned at startup
	} `mapstructure:"auth"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"` // text or json
	} `mapstructure:"log"`
}

// Storage selects and configures the key-value backend.
type Storage struct {
	Driver string `mapstructure:"driver"`
	SQLite struct {
		Path        string `mapstructure:"path"`
		AutoMigrate bool   `mapstructure:"auto_migrate"`
	} `mapstructure:"sqlite"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
		Prefix   string `mapstructure:"prefix"`
	} `mapstructure:"redis"`
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}

func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimit.WindowSeconds) * time.Second
}

func (c *Config) MetadataCacheTTL() time.Duration {
	return time.Duration(c.Metadata.CacheTTLSeconds) * time.Second
}

func (c *Config) MetadataFetchTimeout() time.Duration {
	return time.Duration(c.Metadata.FetchTimeoutSeconds) * time.Second
}

// LoadConfig loads the application configuration using Viper.
// A .env file in the working directory is applied first, then the YAML file
// (explicit path, or ./configs/config.yaml), then EDGELINK_* variables.
// A missing config file is not an error; defaults are used instead.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load() // Ignore error if .env not found

	v := viper.New()

	// e.g., "server.port" becomes "EDGELINK_SERVER_PORT"
	v.SetEnvPrefix("EDGELINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("./configs")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, customerrors.ErrConfigLoad{Path: path, Reason: err.Error()}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, customerrors.ErrConfigLoad{Path: v.ConfigFileUsed(), Reason: err.Error()}
	}
	cfg.Server.BaseURL = strings.TrimRight(cfg.Server.BaseURL, "/")
	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))

	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it and Unmarshal
// sees it even without a config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.shutdown_timeout_seconds", 10)
	v.SetDefault("server.trusted_proxies", []string{})

	v.SetDefault("storage.driver", DriverSQLite)
	v.SetDefault("storage.sqlite.path", "edgelink.db")
	v.SetDefault("storage.sqlite.auto_migrate", true)
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.prefix", "edgelink")

	v.SetDefault("links.code_length", 6)
	v.SetDefault("links.min_ttl_seconds", 60)
	v.SetDefault("links.max_ttl_seconds", 365*24*60*60)

	v.SetDefault("ratelimit.requests", 100)
	v.SetDefault("ratelimit.window_seconds", 60)

	v.SetDefault("metadata.cache_ttl_seconds", 3600)
	v.SetDefault("metadata.fetch_timeout_seconds", 5)
	v.SetDefault("metadata.fetch_rps", 5.0)
	v.SetDefault("metadata.fetch_burst", 10)
	v.SetDefault("metadata.user_agent", "edgelink-preview/1.0")

	v.SetDefault("crawler.extra_signatures", []string{})
	v.SetDefault("auth.bootstrap_keys", []string{})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
