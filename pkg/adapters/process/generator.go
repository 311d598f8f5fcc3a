// Package process generates drawings by running an external command.
package process

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/aretw0/atidraw/pkg/ports"
)

// WaitDelay bounds how long a cancelled command may keep its output pipes open.
const WaitDelay = time.Second

// EnvPrefix prefixes the environment variables carrying the request.
const EnvPrefix = "ATIDRAW_ARG_"

// Generator implements ports.ImageGenerator by executing a trusted command.
// The request is passed as ATIDRAW_ARG_PROMPT, ATIDRAW_ARG_STYLE and ATIDRAW_ARG_SIZE, never as flags.
// The command prints either the base64 image or a JSON object {"imageData": "..."} to stdout.
type Generator struct {
	command string
	args    []string
	env     []string
	dir     string
}

// Option configures the Generator.
type Option func(*Generator)

// WithArgs sets fixed arguments passed to the command.
func WithArgs(args ...string) Option {
	return func(g *Generator) { g.args = args }
}

// WithEnv adds KEY=VALUE pairs to the command environment.
func WithEnv(env map[string]string) Option {
	return func(g *Generator) {
		for k, v := range env {
			g.env = append(g.env, k+"="+v)
		}
	}
}

// WithDir sets the working directory of the command.
func WithDir(dir string) Option {
	return func(g *Generator) { g.dir = dir }
}

// NewGenerator creates a Generator running command.
func NewGenerator(command string, opts ...Option) (*Generator, error) {
	if strings.TrimSpace(command) == "" {
		return nil, errors.New("generator command is required")
	}
	g := &Generator{command: command}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

type output struct {
	ImageData string `json:"imageData"`
}

// Generate runs the command and returns the base64 image it printed.
func (g *Generator) Generate(ctx context.Context, req ports.ImageRequest) (string, error) {
	cmd := exec.CommandContext(ctx, g.command, g.args...)
	cmd.Dir = g.dir
	cmd.WaitDelay = WaitDelay
	cmd.Env = append(cmd.Environ(), g.env...)
	cmd.Env = append(cmd.Env,
		EnvPrefix+"PROMPT="+req.Prompt,
		EnvPrefix+"STYLE="+req.Style,
		EnvPrefix+"SIZE="+req.Size,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("execution failed: %w. Stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	image := strings.TrimSpace(stdout.String())
	if strings.HasPrefix(image, "{") {
		var out output
		if err := json.Unmarshal([]byte(image), &out); err != nil {
			return "", fmt.Errorf("invalid generator output: %w", err)
		}
		image = out.ImageData
	}

	if image == "" {
		return "", errors.New("generator produced no image")
	}
	if _, err := base64.StdEncoding.DecodeString(image); err != nil {
		return "", fmt.Errorf("generator output is not base64: %w", err)
	}
	return image, nil
}
