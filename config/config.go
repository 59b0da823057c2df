package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/errors"
	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/mapping"
)

// Storage backend constants
const (
	StorageMemory = "memory" // In-process only, state lost on exit
	StorageSQLite = "sqlite" // Single-file embedded database
	StorageRedis  = "redis"  // Shared Redis instance
	StorageNATS   = "nats"   // NATS JetStream key-value bucket
)

// Config is the complete application configuration: storage backend
// selection, backend connection settings, and per-kind engine overrides.
type Config struct {
	Version string        `json:"version,omitempty"`
	Storage StorageConfig `json:"storage"`
	NATS    NATSConfig    `json:"nats,omitempty"`
	Redis   RedisConfig   `json:"redis,omitempty"`
	SQLite  SQLiteConfig  `json:"sqlite,omitempty"`

	// Kinds overrides the default per-kind engine configuration, keyed by
	// entity kind. Kinds absent from the map run with defaults.
	Kinds map[mapping.Kind]KindOverride `json:"kinds,omitempty"`
}

// StorageConfig selects the persistence backend for mapping state.
type StorageConfig struct {
	Backend string `json:"backend"`
}

// NATSConfig defines NATS connection settings for the nats backend.
type NATSConfig struct {
	URL           string        `json:"url,omitempty"`
	Bucket        string        `json:"bucket,omitempty"`
	MaxReconnects int           `json:"max_reconnects,omitempty"`
	ReconnectWait time.Duration `json:"reconnect_wait,omitempty"`
	Username      string        `json:"username,omitempty"`
	Password      string        `json:"password,omitempty"`
	Token         string        `json:"token,omitempty"`
}

// RedisConfig defines Redis connection settings for the redis backend.
type RedisConfig struct {
	Addr      string `json:"addr,omitempty"`
	Password  string `json:"password,omitempty"`
	DB        int    `json:"db,omitempty"`
	KeyPrefix string `json:"key_prefix,omitempty"`
}

// SQLiteConfig defines the database location for the sqlite backend.
type SQLiteConfig struct {
	Path string `json:"path,omitempty"`
}

// KindOverride is the configurable subset of a kind's engine configuration.
type KindOverride struct {
	ClaimPolicy mapping.ClaimPolicy `json:"claim_policy,omitempty"`
	KeyPrefix   string              `json:"key_prefix,omitempty"`
}

// Default returns the built-in configuration: in-memory storage, no
// overrides.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{Backend: StorageMemory},
		SQLite:  SQLiteConfig{Path: "surveymap.db"},
	}
}

// Validate checks backend selection and per-kind overrides.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StorageMemory, StorageSQLite, StorageRedis, StorageNATS:
	default:
		return errors.WrapInvalid(
			fmt.Errorf("%w: unknown storage backend %q", errors.ErrInvalidConfig, c.Storage.Backend),
			"config", "Validate", "storage backend")
	}

	if c.Storage.Backend == StorageSQLite && c.SQLite.Path == "" {
		return errors.WrapInvalid(
			fmt.Errorf("%w: sqlite backend requires a path", errors.ErrMissingConfig),
			"config", "Validate", "sqlite path")
	}
	if c.Storage.Backend == StorageRedis && c.Redis.Addr == "" {
		return errors.WrapInvalid(
			fmt.Errorf("%w: redis backend requires an address", errors.ErrMissingConfig),
			"config", "Validate", "redis address")
	}

	for kind, override := range c.Kinds {
		if !kind.Valid() {
			return errors.WrapInvalid(
				fmt.Errorf("%w: %q", errors.ErrUnknownKind, kind),
				"config", "Validate", "kind override")
		}
		if override.ClaimPolicy != "" && !override.ClaimPolicy.Valid() {
			return errors.WrapInvalid(
				fmt.Errorf("%w: unknown claim policy %q for kind %q",
					errors.ErrInvalidConfig, override.ClaimPolicy, kind),
				"config", "Validate", "claim policy")
		}
	}
	return nil
}

// KindConfigs resolves the per-kind overrides into full engine
// configurations, leaving unlisted kinds to their defaults.
func (c *Config) KindConfigs() (map[mapping.Kind]mapping.KindConfig, error) {
	out := make(map[mapping.Kind]mapping.KindConfig, len(c.Kinds))
	for kind, override := range c.Kinds {
		cfg, err := mapping.DefaultKindConfig(kind)
		if err != nil {
			return nil, err
		}
		if override.ClaimPolicy != "" {
			cfg.ClaimPolicy = override.ClaimPolicy
		}
		if override.KeyPrefix != "" {
			cfg.KeyPrefix = override.KeyPrefix
		}
		out[kind] = cfg
	}
	return out, nil
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return Default()
	}

	data, err := json.Marshal(c)
	if err != nil {
		copied := *c
		return &copied
	}
	var clone Config
	if err := json.Unmarshal(data, &clone); err != nil {
		copied := *c
		return &copied
	}
	return &clone
}

// Load reads configuration from a JSON file, applies environment overrides,
// and validates the result. A missing file yields the defaults with
// environment overrides still applied.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, errors.WrapTransient(err, "config", "Load", "read config file")
			}
		} else if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.WrapFatal(err, "config", "Load", "parse config file")
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides lets deployment environments override file settings
// without editing the file. SURVEYMAP_STORAGE_BACKEND, SURVEYMAP_NATS_URL,
// SURVEYMAP_REDIS_ADDR, SURVEYMAP_REDIS_DB, and SURVEYMAP_SQLITE_PATH are
// recognized.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SURVEYMAP_STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("SURVEYMAP_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("SURVEYMAP_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("SURVEYMAP_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = db
		}
	}
	if v := os.Getenv("SURVEYMAP_SQLITE_PATH"); v != "" {
		cfg.SQLite.Path = v
	}
}

// SafeConfig provides thread-safe access to configuration for hosts that
// reload it at runtime.
type SafeConfig struct {
	mu     sync.RWMutex
	config *Config
}

// NewSafeConfig creates a thread-safe config wrapper.
func NewSafeConfig(cfg *Config) *SafeConfig {
	if cfg == nil {
		cfg = Default()
	}
	return &SafeConfig{config: cfg}
}

// Get returns a deep copy of the current configuration.
func (sc *SafeConfig) Get() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config.Clone()
}

// Update atomically replaces the configuration after validation.
func (sc *SafeConfig) Update(cfg *Config) error {
	if cfg == nil {
		return errors.WrapInvalid(errors.ErrMissingConfig, "config", "Update", "nil config")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.config = cfg
	return nil
}
