// Package config loads and validates service configuration from a YAML file
// with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultDatabasePort    = 5432
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 5
	defaultRedisAddress    = "localhost:6379"
	defaultDataDir         = "data"
	defaultFetchTimeout    = 30
	defaultRetryDelay      = 5
)

// Collision policies for cross-source project_id conflicts.
const (
	CollisionLastWrite = "lastwrite"
	CollisionError     = "error"
	CollisionNamespace = "namespace"
)

type Config struct {
	Debug    bool           `yaml:"debug"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Sources  []SourceConfig `yaml:"sources"`
}

type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	DBName          string        `yaml:"dbname"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// RedisConfig holds Redis connection configuration for event publishing.
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Enabled  bool   `yaml:"enabled"` // Feature flag for event publishing
}

// IngestConfig holds pipeline-wide ingestion settings.
type IngestConfig struct {
	DataDir         string        `yaml:"data_dir"`
	CollisionPolicy string        `yaml:"collision_policy"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout"`
}

// SourceConfig describes one configured ingestion source. Name must match a
// registered adapter. Input is a local file path or an HTTP(S) URL. Retries
// of zero means the fetch fails on first error.
type SourceConfig struct {
	Name       string        `yaml:"name"`
	Input      string        `yaml:"input"`
	Retries    int           `yaml:"retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return errors.New("database.host is required")
	}
	if c.Database.Port <= 0 {
		return errors.New("database.port is required and must be positive")
	}
	if c.Database.User == "" {
		return errors.New("database.user is required")
	}
	if c.Database.DBName == "" {
		return errors.New("database.dbname is required")
	}
	switch c.Ingest.CollisionPolicy {
	case CollisionLastWrite, CollisionError, CollisionNamespace:
	default:
		return fmt.Errorf("ingest.collision_policy must be one of %s, %s, %s",
			CollisionLastWrite, CollisionError, CollisionNamespace)
	}
	seen := make(map[string]bool, len(c.Sources))
	for _, src := range c.Sources {
		if src.Name == "" {
			return errors.New("sources entries require a name")
		}
		if seen[src.Name] {
			return fmt.Errorf("duplicate source entry: %s", src.Name)
		}
		seen[src.Name] = true
	}
	return nil
}

// Load reads the YAML config at path, applies defaults and environment
// overrides, and validates the result. A .env file next to the binary is
// loaded first; variables already set in the environment win.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	if unmarshalErr := yaml.Unmarshal(data, &cfg); unmarshalErr != nil {
		return nil, fmt.Errorf("parse config: %w", unmarshalErr)
	}

	setDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, fmt.Errorf("invalid config: %w", validateErr)
	}

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Database.Port == 0 {
		cfg.Database.Port = defaultDatabasePort
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = defaultMaxOpenConns
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = defaultMaxIdleConns
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = defaultConnMaxLifetime * time.Minute
	}
	if cfg.Redis.Address == "" {
		cfg.Redis.Address = defaultRedisAddress
	}
	if cfg.Ingest.DataDir == "" {
		cfg.Ingest.DataDir = defaultDataDir
	}
	if cfg.Ingest.CollisionPolicy == "" {
		cfg.Ingest.CollisionPolicy = CollisionLastWrite
	}
	if cfg.Ingest.FetchTimeout == 0 {
		cfg.Ingest.FetchTimeout = defaultFetchTimeout * time.Second
	}
	for i := range cfg.Sources {
		if cfg.Sources[i].RetryDelay == 0 {
			cfg.Sources[i].RetryDelay = defaultRetryDelay * time.Second
		}
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("APP_DEBUG"); v != "" {
		cfg.Debug = parseBool(v)
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.Database.DBName = v
	}
	if v := os.Getenv("DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("REDIS_ADDRESS"); v != "" {
		cfg.Redis.Address = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = db
		}
	}
	if v := os.Getenv("REDIS_EVENTS_ENABLED"); v != "" {
		cfg.Redis.Enabled = parseBool(v)
	}
	if v := os.Getenv("INGEST_DATA_DIR"); v != "" {
		cfg.Ingest.DataDir = v
	}
	if v := os.Getenv("INGEST_COLLISION_POLICY"); v != "" {
		cfg.Ingest.CollisionPolicy = v
	}
}

// parseBool accepts "true", "1", "yes" (case-insensitive).
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes"
}

// GetConfigPath returns CONFIG_PATH from the environment or the default.
func GetConfigPath(defaultPath string) string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return defaultPath
}
