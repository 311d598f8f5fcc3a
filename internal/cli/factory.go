// Package cli assembles the atidraw server from configuration and formats its output
// for the command line.
package cli

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/atidraw"
	"github.com/aretw0/atidraw/internal/config"
	"github.com/aretw0/atidraw/internal/logging"
	"github.com/aretw0/atidraw/pkg/adapters/memory"
	"github.com/aretw0/atidraw/pkg/adapters/process"
	"github.com/aretw0/atidraw/pkg/adapters/redis"
	"github.com/aretw0/atidraw/pkg/adapters/sqlite"
	"github.com/aretw0/atidraw/pkg/drawing"
	"github.com/aretw0/atidraw/pkg/observability"
	"github.com/aretw0/atidraw/pkg/persistence/middleware"
	"github.com/aretw0/atidraw/pkg/ports"
	"github.com/aretw0/atidraw/pkg/schema"
)

// Runtime is a configured server plus the collaborators its transports need.
type Runtime struct {
	Server   *atidraw.Server
	Config   *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
}

// NewLogger builds the application logger from the log section.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	return logging.New(logging.ParseLevel(cfg.Level), logging.Format(cfg.Format))
}

// NewRuntime opens the configured store and builds the server over it.
func NewRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	store, locker, err := openStore(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, err
	}
	store, err = wrapStore(store, cfg.Storage)
	if err != nil {
		closeStore(store, logger)
		return nil, err
	}
	generator, err := newGenerator(cfg.Generator)
	if err != nil {
		closeStore(store, logger)
		return nil, err
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := observability.NewMetrics(promReg)
	if err != nil {
		closeStore(store, logger)
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	opts := []atidraw.Option{
		atidraw.WithStore(store),
		atidraw.WithLogger(logger),
		atidraw.WithSeed(cfg.Storage.Seed),
		atidraw.WithValidatorOptions(schema.ValidatorOptions{
			RejectUnknownKeys: cfg.Validation.RejectUnknownKeys,
			FailFast:          cfg.Validation.FailFast,
		}),
		atidraw.WithHooks(metrics.Hooks()),
		atidraw.WithHooks(observability.LoggingHooks(logger)),
		atidraw.WithTimeout(cfg.Dispatch.Timeout),
		atidraw.WithBatchConcurrency(cfg.Dispatch.BatchConcurrency),
	}
	if locker != nil {
		opts = append(opts, atidraw.WithLocker(locker))
	}
	if generator != nil {
		opts = append(opts, atidraw.WithGenerator(generator))
	}
	if path := cfg.Validation.MetadataSchema; path != "" {
		v, err := loadMetadataSchema(path)
		if err != nil {
			closeStore(store, logger)
			return nil, err
		}
		opts = append(opts, atidraw.WithMetadataValidator(v))
	}

	srv, err := atidraw.New(ctx, opts...)
	if err != nil {
		closeStore(store, logger)
		return nil, err
	}

	return &Runtime{Server: srv, Config: cfg, Logger: logger, Registry: promReg}, nil
}

// MetricsHandler serves the runtime's Prometheus registry.
func (r *Runtime) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{})
}

// Close releases the store.
func (r *Runtime) Close() error {
	return r.Server.Close()
}

func openStore(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (ports.DrawingStore, ports.DistributedLocker, error) {
	switch cfg.Backend {
	case config.BackendMemory, "":
		logger.Debug("using in-memory drawing store")
		return memory.NewStore(), nil, nil

	case config.BackendRedis:
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.Redis.TTL),
		)
		if err := store.Client().Ping(ctx).Err(); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Debug("using redis drawing store", "addr", cfg.Redis.Addr, "prefix", cfg.Redis.Prefix)
		return store, redis.NewLocker(store.Client(), cfg.Redis.Prefix), nil

	case config.BackendSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		logger.Debug("using sqlite drawing store", "path", cfg.SQLite.Path)
		return store, nil, nil
	}
	return nil, nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
}

// wrapStore applies metadata redaction (outermost) and image encryption.
func wrapStore(store ports.DrawingStore, cfg config.StorageConfig) (ports.DrawingStore, error) {
	var mws []middleware.Middleware
	if len(cfg.RedactKeys) > 0 {
		mw, err := middleware.NewRedactMiddleware(cfg.RedactKeys)
		if err != nil {
			return store, fmt.Errorf("storage.redact_keys: %w", err)
		}
		mws = append(mws, mw)
	}
	if cfg.Encryption.Key != "" {
		enc, err := encryptionConfig(cfg.Encryption)
		if err != nil {
			return store, err
		}
		mw, err := middleware.NewEncryptionMiddleware(enc)
		if err != nil {
			return store, fmt.Errorf("storage.encryption: %w", err)
		}
		mws = append(mws, mw)
	}
	return middleware.Chain(store, mws...), nil
}

func encryptionConfig(cfg config.EncryptionConfig) (middleware.EncryptionConfig, error) {
	active, err := base64.StdEncoding.DecodeString(cfg.Key)
	if err != nil {
		return middleware.EncryptionConfig{}, fmt.Errorf("storage.encryption.key: %w", err)
	}
	out := middleware.EncryptionConfig{ActiveKey: active}
	for i, k := range cfg.FallbackKeys {
		key, err := base64.StdEncoding.DecodeString(k)
		if err != nil {
			return middleware.EncryptionConfig{}, fmt.Errorf("storage.encryption.fallback_keys[%d]: %w", i, err)
		}
		out.FallbackKeys = append(out.FallbackKeys, key)
	}
	return out, nil
}

// newGenerator returns nil for the built-in placeholder generator.
func newGenerator(cfg config.GeneratorConfig) (ports.ImageGenerator, error) {
	if cfg.Backend != config.GeneratorProcess {
		return nil, nil
	}
	env := make(map[string]string, len(cfg.Env))
	for k, v := range cfg.Env {
		// Config keys arrive lower-cased.
		env[strings.ToUpper(k)] = v
	}
	g, err := process.NewGenerator(cfg.Command,
		process.WithArgs(cfg.Args...),
		process.WithEnv(env),
		process.WithDir(cfg.Dir),
	)
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}
	return g, nil
}

func loadMetadataSchema(path string) (*drawing.MetadataValidator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata schema: %w", err)
	}
	v, err := drawing.NewMetadataValidator(string(data))
	if err != nil {
		return nil, fmt.Errorf("metadata schema %s: %w", path, err)
	}
	return v, nil
}

func closeStore(store ports.DrawingStore, logger *slog.Logger) {
	c, ok := store.(interface{ Close() error })
	if !ok {
		return
	}
	if err := c.Close(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("failed to close store", "error", err)
	}
}
