package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	Store     StoreConfig     `yaml:"store"`
	Cache     CacheConfig     `yaml:"cache"`
	Auth      AuthConfig      `yaml:"auth"`
	Share     ShareConfig     `yaml:"share"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// TransportConfig selects how the MCP server is exposed: "stdio" or "http".
type TransportConfig struct {
	Mode string `yaml:"mode"`
}

// StoreConfig selects the document store backend.
type StoreConfig struct {
	Driver string `yaml:"driver"`

	// sqlite
	Path            string `yaml:"path"`
	EnforceIndexes  bool   `yaml:"enforce_indexes"`
	IndexConsoleURL string `yaml:"index_console_url"`

	// dynamodb
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	TablePrefix string `yaml:"table_prefix"`
}

type CacheConfig struct {
	PublicTTL time.Duration `yaml:"public_ttl"`
}

// AuthConfig maps bearer tokens to owner ids. Tokens are stored as hex sha256.
type AuthConfig struct {
	Enabled      bool     `yaml:"enabled"`
	Keys         []APIKey `yaml:"keys"`
	DefaultOwner string   `yaml:"default_owner"`
}

type APIKey struct {
	TokenSHA256 string `yaml:"token_sha256"`
	OwnerID     string `yaml:"owner_id"`
}

type ShareConfig struct {
	BaseURL string `yaml:"base_url"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

const (
	DriverSQLite   = "sqlite"
	DriverDynamoDB = "dynamodb"

	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: TransportHTTP,
		},
		Store: StoreConfig{
			Driver:      DriverSQLite,
			Path:        "chessnote.db",
			TablePrefix: "chessnote_",
		},
		Cache: CacheConfig{
			PublicTTL: 5 * time.Minute,
		},
		Auth: AuthConfig{
			DefaultOwner: "local",
		},
		Share: ShareConfig{
			BaseURL: "http://localhost:8080",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CHESSNOTE_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("CHESSNOTE_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("CHESSNOTE_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid CHESSNOTE_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if mode := os.Getenv("CHESSNOTE_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if driver := os.Getenv("CHESSNOTE_STORE_DRIVER"); driver != "" {
		cfg.Store.Driver = driver
	}
	if dbPath := os.Getenv("CHESSNOTE_DB_PATH"); dbPath != "" {
		cfg.Store.Path = dbPath
	}
	if region := os.Getenv("CHESSNOTE_DYNAMO_REGION"); region != "" {
		cfg.Store.Region = region
	}
	if endpoint := os.Getenv("CHESSNOTE_DYNAMO_ENDPOINT"); endpoint != "" {
		cfg.Store.Endpoint = endpoint
	}
	if prefix, ok := os.LookupEnv("CHESSNOTE_DYNAMO_TABLE_PREFIX"); ok {
		cfg.Store.TablePrefix = prefix
	}
	if enabled := os.Getenv("CHESSNOTE_AUTH_ENABLED"); enabled != "" {
		v, err := strconv.ParseBool(enabled)
		if err != nil {
			return fmt.Errorf("invalid CHESSNOTE_AUTH_ENABLED: %w", err)
		}
		cfg.Auth.Enabled = v
	}
	if base := os.Getenv("CHESSNOTE_SHARE_BASE_URL"); base != "" {
		cfg.Share.BaseURL = base
	}
	if ttl := os.Getenv("CHESSNOTE_PUBLIC_CACHE_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return fmt.Errorf("invalid CHESSNOTE_PUBLIC_CACHE_TTL: %w", err)
		}
		cfg.Cache.PublicTTL = d
	}
	if level := os.Getenv("CHESSNOTE_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	return nil
}

// Validate rejects combinations the server cannot start with.
func (c Config) Validate() error {
	switch c.Transport.Mode {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("invalid transport mode %q", c.Transport.Mode)
	}
	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the sqlite driver")
		}
	case DriverDynamoDB:
	default:
		return fmt.Errorf("invalid store driver %q", c.Store.Driver)
	}
	if c.Cache.PublicTTL < 0 {
		return fmt.Errorf("cache.public_ttl must not be negative")
	}
	if c.Auth.Enabled && len(c.Auth.Keys) == 0 {
		return fmt.Errorf("auth is enabled but no keys are configured")
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
