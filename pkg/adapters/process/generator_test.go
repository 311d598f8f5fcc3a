package process

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/atidraw/pkg/ports"
)

func shell(t *testing.T, script string, opts ...Option) *Generator {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	g, err := NewGenerator("sh", append([]Option{WithArgs("-c", script)}, opts...)...)
	require.NoError(t, err)
	return g
}

func TestNewGenerator_RequiresCommand(t *testing.T) {
	_, err := NewGenerator("  ")
	assert.Error(t, err)
}

func TestGenerate_PlainOutput(t *testing.T) {
	// "cat-sketch-small" in base64
	g := shell(t, `printf '%s-%s-%s' "$ATIDRAW_ARG_PROMPT" "$ATIDRAW_ARG_STYLE" "$ATIDRAW_ARG_SIZE" | base64`)

	image, err := g.Generate(context.Background(), ports.ImageRequest{Prompt: "cat", Style: "sketch", Size: "small"})
	require.NoError(t, err)
	assert.Equal(t, "Y2F0LXNrZXRjaC1zbWFsbA==", image)
}

func TestGenerate_JSONOutput(t *testing.T) {
	g := shell(t, `echo '{"imageData":"aGVsbG8="}'`)

	image, err := g.Generate(context.Background(), ports.ImageRequest{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "aGVsbG8=", image)
}

func TestGenerate_Env(t *testing.T) {
	g := shell(t, `printf '%s' "$MODEL" | base64`, WithEnv(map[string]string{"MODEL": "tiny"}))

	image, err := g.Generate(context.Background(), ports.ImageRequest{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "dGlueQ==", image)
}

func TestGenerate_PromptIsNotInterpreted(t *testing.T) {
	g := shell(t, `printf '%s' "$ATIDRAW_ARG_PROMPT" | base64`)

	image, err := g.Generate(context.Background(), ports.ImageRequest{Prompt: "$(echo pwned); rm -rf /"})
	require.NoError(t, err)
	assert.Equal(t, "JChlY2hvIHB3bmVkKTsgcm0gLXJmIC8=", image)
}

func TestGenerate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"exit code", `echo boom >&2; exit 3`, "Stderr: boom"},
		{"empty", `true`, "generator produced no image"},
		{"not base64", `echo 'not base64!'`, "not base64"},
		{"bad json", `echo '{"imageData":'`, "invalid generator output"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := shell(t, tt.script).Generate(context.Background(), ports.ImageRequest{Prompt: "x"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGenerate_Cancellation(t *testing.T) {
	g := shell(t, `sleep 5`)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := g.Generate(ctx, ports.ImageRequest{Prompt: "x"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 4*time.Second)
}
