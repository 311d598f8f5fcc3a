// Package config loads the server configuration from defaults, an optional YAML file
// and ATIDRAW_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. ATIDRAW_STORAGE_BACKEND.
const EnvPrefix = "ATIDRAW"

// Storage backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// MCP transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	MCP        MCPConfig        `mapstructure:"mcp"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Generator  GeneratorConfig  `mapstructure:"generator"`
	Validation ValidationConfig `mapstructure:"validation"`
	Dispatch   DispatchConfig   `mapstructure:"dispatch"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Name string `mapstructure:"name"`
}

type HTTPConfig struct {
	Addr     string `mapstructure:"addr"`
	MaxBatch int    `mapstructure:"max_batch"`
}

type MCPConfig struct {
	Transport string `mapstructure:"transport"` // "stdio" or "sse"
	Port      int    `mapstructure:"port"`
}

type StorageConfig struct {
	Backend string       `mapstructure:"backend"` // "memory", "redis" or "sqlite"
	Seed    int          `mapstructure:"seed"`    // sample drawings created in an empty store
	Redis   RedisConfig  `mapstructure:"redis"`
	SQLite  SQLiteConfig `mapstructure:"sqlite"`

	Encryption EncryptionConfig `mapstructure:"encryption"`
	RedactKeys []string         `mapstructure:"redact_keys"` // metadata key patterns masked before storage
}

type EncryptionConfig struct {
	Key          string   `mapstructure:"key"`           // base64 AES-256 key; empty disables encryption
	FallbackKeys []string `mapstructure:"fallback_keys"` // previous keys, tried on decryption
}

// Generator backends.
const (
	GeneratorPlaceholder = "placeholder"
	GeneratorProcess     = "process"
)

type GeneratorConfig struct {
	Backend string            `mapstructure:"backend"` // "placeholder" or "process"
	Command string            `mapstructure:"command"`
	Args    []string          `mapstructure:"args"`
	Env     map[string]string `mapstructure:"env"`
	Dir     string            `mapstructure:"dir"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"` // zero keeps drawings forever
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type ValidationConfig struct {
	RejectUnknownKeys bool   `mapstructure:"reject_unknown_keys"`
	FailFast          bool   `mapstructure:"fail_fast"`
	MetadataSchema    string `mapstructure:"metadata_schema"` // path to a JSON Schema file; empty uses the built-in one
}

type DispatchConfig struct {
	Timeout          time.Duration `mapstructure:"timeout"`
	BatchConcurrency int           `mapstructure:"batch_concurrency"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// New returns a viper instance carrying every default and the environment binding.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("server.name", "atidraw-mcp-server")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.max_batch", 100)

	v.SetDefault("mcp.transport", TransportStdio)
	v.SetDefault("mcp.port", 8081)

	v.SetDefault("storage.backend", BackendMemory)
	v.SetDefault("storage.seed", 5)
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.prefix", "atidraw:drawing:")
	v.SetDefault("storage.redis.ttl", time.Duration(0))
	v.SetDefault("storage.sqlite.path", filepath.Join(".atidraw", "drawings.db"))

	v.SetDefault("storage.encryption.key", "")
	v.SetDefault("storage.encryption.fallback_keys", []string{})
	v.SetDefault("storage.redact_keys", []string{})

	v.SetDefault("generator.backend", GeneratorPlaceholder)
	v.SetDefault("generator.command", "")
	v.SetDefault("generator.args", []string{})
	v.SetDefault("generator.env", map[string]string{})
	v.SetDefault("generator.dir", "")

	v.SetDefault("validation.reject_unknown_keys", false)
	v.SetDefault("validation.fail_fast", false)
	v.SetDefault("validation.metadata_schema", "")

	v.SetDefault("dispatch.timeout", time.Duration(0))
	v.SetDefault("dispatch.batch_concurrency", 4)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the configuration. An explicit path must exist; otherwise atidraw.yaml is
// searched in the working directory and in ~/.atidraw, and its absence is not an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("atidraw")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".atidraw"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains([]string{BackendMemory, BackendRedis, BackendSQLite}, c.Storage.Backend) {
		errs = append(errs, fmt.Errorf("storage.backend: unsupported backend %q", c.Storage.Backend))
	}
	if c.Storage.Seed < 0 {
		errs = append(errs, fmt.Errorf("storage.seed: must not be negative, got %d", c.Storage.Seed))
	}
	if c.Storage.Redis.TTL < 0 {
		errs = append(errs, fmt.Errorf("storage.redis.ttl: must not be negative, got %s", c.Storage.Redis.TTL))
	}
	if !slices.Contains([]string{GeneratorPlaceholder, GeneratorProcess}, c.Generator.Backend) {
		errs = append(errs, fmt.Errorf("generator.backend: unsupported backend %q", c.Generator.Backend))
	}
	if c.Generator.Backend == GeneratorProcess && c.Generator.Command == "" {
		errs = append(errs, errors.New("generator.command: required by the process backend"))
	}
	if !slices.Contains([]string{TransportStdio, TransportSSE}, c.MCP.Transport) {
		errs = append(errs, fmt.Errorf("mcp.transport: unsupported transport %q", c.MCP.Transport))
	}
	if c.MCP.Port <= 0 || c.MCP.Port > 65535 {
		errs = append(errs, fmt.Errorf("mcp.port: out of range: %d", c.MCP.Port))
	}
	if c.Dispatch.Timeout < 0 {
		errs = append(errs, fmt.Errorf("dispatch.timeout: must not be negative, got %s", c.Dispatch.Timeout))
	}
	if c.Dispatch.BatchConcurrency < 1 {
		errs = append(errs, fmt.Errorf("dispatch.batch_concurrency: must be at least 1, got %d", c.Dispatch.BatchConcurrency))
	}
	if !slices.Contains([]string{"text", "json"}, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format: unsupported format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}
