package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/atidraw/internal/config"
	"github.com/aretw0/atidraw/internal/logging"
	"github.com/aretw0/atidraw/pkg/adapters/memory"
	"github.com/aretw0/atidraw/pkg/adapters/redis"
	"github.com/aretw0/atidraw/pkg/adapters/sqlite"
	"github.com/aretw0/atidraw/pkg/domain"
	"github.com/aretw0/atidraw/pkg/drawing"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	cfg, err := config.Load(config.New(), "")
	require.NoError(t, err)
	return cfg
}

func TestNewRuntime_Memory(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	rt, err := NewRuntime(ctx, cfg, nil)
	require.NoError(t, err)
	defer rt.Close()

	assert.IsType(t, &memory.Store{}, rt.Server.Store())
	_, total, err := rt.Server.Store().List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, total)

	resp := rt.Server.Dispatch(ctx, "create_drawing", map[string]any{"title": "A"})
	require.True(t, resp.Success, resp.Message)

	families, err := rt.Registry.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "atidraw_tool_calls_total")
	assert.Contains(t, names, "go_goroutines")
}

func TestNewRuntime_SQLite(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Backend = config.BackendSQLite
	cfg.Storage.SQLite.Path = filepath.Join(t.TempDir(), "nested", "drawings.db")
	ctx := context.Background()

	rt, err := NewRuntime(ctx, cfg, logging.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &sqlite.Store{}, rt.Server.Store())
	require.NoError(t, rt.Close())

	// Reopening keeps the seeded drawings and does not seed again.
	rt, err = NewRuntime(ctx, cfg, logging.NewNop())
	require.NoError(t, err)
	defer rt.Close()
	_, total, err := rt.Server.Store().List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
}

func TestNewRuntime_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Storage.Backend = config.BackendRedis
	cfg.Storage.Redis.Addr = mr.Addr()
	ctx := context.Background()

	rt, err := NewRuntime(ctx, cfg, logging.NewNop())
	require.NoError(t, err)
	defer rt.Close()
	assert.IsType(t, &redis.Store{}, rt.Server.Store())

	resp := rt.Server.Dispatch(ctx, "save_drawing", map[string]any{"drawingId": "d1", "drawingData": "abc"})
	require.True(t, resp.Success, resp.Message)
	assert.True(t, mr.Exists(cfg.Storage.Redis.Prefix+"d1"))
}

func TestNewRuntime_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig(t)
	cfg.Storage.Backend = config.BackendRedis
	cfg.Storage.Redis.Addr = addr

	_, err := NewRuntime(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to redis")
}

func TestNewRuntime_MetadataSchema(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"type":"object","required":["author"]}`), 0o644))
	cfg.Validation.MetadataSchema = path
	ctx := context.Background()

	rt, err := NewRuntime(ctx, cfg, nil)
	require.NoError(t, err)

	resp := rt.Server.Dispatch(ctx, "save_drawing", map[string]any{
		"drawingId":   "d1",
		"drawingData": "abc",
		"metadata":    map[string]any{"title": "x"},
	})
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "invalid metadata")

	cfg.Validation.MetadataSchema = filepath.Join(t.TempDir(), "missing.json")
	_, err = NewRuntime(ctx, cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read metadata schema")
}

func TestNewRuntime_StoreMiddleware(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Backend = config.BackendSQLite
	cfg.Storage.SQLite.Path = filepath.Join(t.TempDir(), "drawings.db")
	cfg.Storage.Seed = 0
	cfg.Storage.RedactKeys = []string{"(?i)token"}
	cfg.Storage.Encryption.Key = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))
	ctx := context.Background()

	rt, err := NewRuntime(ctx, cfg, logging.NewNop())
	require.NoError(t, err)

	resp := rt.Server.Dispatch(ctx, "save_drawing", map[string]any{
		"drawingId":   "secret",
		"drawingData": "aGVsbG8=",
		"metadata":    map[string]any{"apiToken": "abc", "author": "ana"},
	})
	require.True(t, resp.Success, resp.Message)

	resp = rt.Server.Dispatch(ctx, "get_drawing", map[string]any{"drawingId": "secret"})
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, "aGVsbG8=", resp.Payload["drawingData"])
	metadata := resp.Payload["metadata"].(map[string]any)
	assert.Equal(t, "***", metadata["apiToken"])
	assert.Equal(t, "ana", metadata["author"])
	require.NoError(t, rt.Close())

	// Without the key the stored bytes are ciphertext.
	raw, err := sqlite.Open(ctx, cfg.Storage.SQLite.Path)
	require.NoError(t, err)
	defer raw.Close()
	d, err := raw.Load(ctx, "secret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(d.Data, "enc:v1:"), d.Data)
}

func TestNewRuntime_StoreMiddlewareErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.StorageConfig)
		want   string
	}{
		{"bad redact pattern", func(c *config.StorageConfig) { c.RedactKeys = []string{"("} }, "storage.redact_keys"},
		{"key not base64", func(c *config.StorageConfig) { c.Encryption.Key = "not base64!" }, "storage.encryption.key"},
		{"short key", func(c *config.StorageConfig) { c.Encryption.Key = base64.StdEncoding.EncodeToString([]byte("short")) }, "storage.encryption"},
		{"bad fallback", func(c *config.StorageConfig) {
			c.Encryption.Key = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, 32))
			c.Encryption.FallbackKeys = []string{"%%"}
		}, "storage.encryption.fallback_keys[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(&cfg.Storage)
			_, err := NewRuntime(context.Background(), cfg, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewRuntime_ProcessGenerator(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	cfg := testConfig(t)
	cfg.Generator.Backend = config.GeneratorProcess
	cfg.Generator.Command = "sh"
	cfg.Generator.Args = []string{"-c", `test "$MODEL:$ATIDRAW_ARG_PROMPT" = "tiny:a cat" && printf '%s' dGlueTphIGNhdA==`}
	cfg.Generator.Env = map[string]string{"model": "tiny"}
	ctx := context.Background()

	rt, err := NewRuntime(ctx, cfg, nil)
	require.NoError(t, err)
	defer rt.Close()

	resp := rt.Server.Dispatch(ctx, "generate_ai_drawing", map[string]any{"prompt": "a cat"})
	require.True(t, resp.Success, resp.Message)
	image, err := base64.StdEncoding.DecodeString(resp.Payload["imageData"].(string))
	require.NoError(t, err)
	assert.Equal(t, "tiny:a cat", string(image))
}

func TestNewRuntime_UnsupportedBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Backend = "mongo"

	_, err := NewRuntime(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported storage backend "mongo"`)
}

func TestWriteCatalog(t *testing.T) {
	tools := drawing.Tools()

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteCatalog(&buf, tools, FormatJSON, nil))

		var out []map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
		require.Len(t, out, 5)
		assert.Equal(t, "create_drawing", out[0]["name"])
		assert.Contains(t, out[0]["parameters"], "title")
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteCatalog(&buf, tools, FormatYAML, nil))

		var out []catalogTool
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &out))
		require.Len(t, out, 5)
		gen := out[4]
		assert.Equal(t, "generate_ai_drawing", gen.Name)
		assert.Equal(t, "ai", gen.Category)
		require.Len(t, gen.Parameters, 3)
		assert.Equal(t, "prompt", gen.Parameters[0].Name)
		assert.True(t, gen.Parameters[0].Required)
		assert.Equal(t, []string{"small", "medium", "large"}, gen.Parameters[2].Enum)
		assert.Equal(t, "medium", gen.Parameters[2].Default)
	})

	t.Run("markdown", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteCatalog(&buf, tools, FormatMarkdown, nil))

		md := buf.String()
		assert.True(t, strings.HasPrefix(md, "# Tools\n"))
		assert.Contains(t, md, "## list_drawings")
		assert.Contains(t, md, "| `limit` | number | no | `10` | Maximum number of drawings to return |")
		assert.Contains(t, md, "| `size` | string (small \\| medium \\| large) | no | `\"medium\"` |")
	})

	t.Run("markdown rendered", func(t *testing.T) {
		var buf bytes.Buffer
		render := func(md string) (string, error) { return strings.ToUpper(md), nil }
		require.NoError(t, WriteCatalog(&buf, tools[:1], FormatMarkdown, render))
		assert.Contains(t, buf.String(), "## CREATE_DRAWING")
	})

	t.Run("unknown", func(t *testing.T) {
		err := WriteCatalog(io.Discard, tools, "toml", nil)
		assert.ErrorContains(t, err, `unsupported format "toml"`)
	})
}

func TestParseArguments(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    map[string]any
		wantErr bool
	}{
		{"empty", "", map[string]any{}, false},
		{"blank", "   ", map[string]any{}, false},
		{"null", "null", map[string]any{}, false},
		{"object", `{"title":"Cat","width":100}`, map[string]any{"title": "Cat", "width": float64(100)}, false},
		{"array", `[1,2]`, nil, true},
		{"trailing", `{"a":1} {"b":2}`, nil, true},
		{"broken", `{"a":`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseArguments(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteEnvelope(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEnvelope(&buf, domain.Fail(domain.KindUnknownTool, "Unknown tool: %s", "x")))
	assert.Equal(t, "{\n  \"message\": \"Unknown tool: x\",\n  \"success\": false\n}\n", buf.String())
}

func TestServe_GracefulShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, srv, ln, logging.NewNop()) }()

	resp, err := http.Get("http://" + ln.Addr().String())
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * ShutdownTimeout):
		t.Fatal("server did not stop")
	}
}

func TestNotifyContext(t *testing.T) {
	ctx, stop := NotifyContext(context.Background())
	assert.Nil(t, ReceivedSignal(ctx))

	stop()
	<-ctx.Done()
	assert.Nil(t, ReceivedSignal(ctx))
	assert.ErrorIs(t, context.Cause(ctx), context.Canceled)
}

func TestReceivedSignal(t *testing.T) {
	ctx, cancel := context.WithCancelCause(context.Background())
	cancel(&SignalError{Signal: os.Interrupt})

	assert.Equal(t, os.Interrupt, ReceivedSignal(ctx))
	assert.EqualError(t, context.Cause(ctx), "received signal interrupt")
}
