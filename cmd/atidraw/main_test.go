package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/atidraw"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "atidraw version "+atidraw.VersionString()+"\n", out)
}

func TestToolsCmd(t *testing.T) {
	out, err := run(t, "tools", "--category", "storage")
	require.NoError(t, err)

	var tools []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &tools))
	require.Len(t, tools, 3)
	assert.Equal(t, "save_drawing", tools[0]["name"])

	out, err = run(t, "tools", "-f", "yaml")
	require.NoError(t, err)
	var catalog []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &catalog))
	assert.Len(t, catalog, 5)

	out, err = run(t, "tools", "--format", "markdown", "--category", "ai")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# Tools\n"))
	assert.Contains(t, out, "## generate_ai_drawing")

	_, err = run(t, "tools", "--format", "toml")
	assert.ErrorContains(t, err, "unsupported format")
}

func TestCallCmd(t *testing.T) {
	out, err := run(t, "call", "create_drawing", "--args", `{"title":"Sunset"}`)
	require.NoError(t, err)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &envelope))
	assert.Equal(t, true, envelope["success"])
	assert.Equal(t, "Sunset", envelope["title"])

	out, err = run(t, "call", "list_drawings")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &envelope))
	assert.Equal(t, float64(5), envelope["total"])
}

func TestCallCmd_Failure(t *testing.T) {
	out, err := run(t, "call", "paint")
	require.ErrorIs(t, err, errCallFailed)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &envelope))
	assert.Equal(t, false, envelope["success"])
	assert.Equal(t, "Unknown tool: paint", envelope["message"])

	_, err = run(t, "call", "create_drawing", "--args", "[1]")
	assert.ErrorContains(t, err, "arguments must be a JSON object")

	_, err = run(t, "call")
	assert.Error(t, err)
}

func TestCallCmd_SQLitePersists(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "drawings.db")
	cfgPath := filepath.Join(dir, "atidraw.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("storage:\n  seed: 0\n  sqlite:\n    path: "+db+"\n"), 0o644))

	_, err := run(t, "call", "save_drawing", "--config", cfgPath, "--storage", "sqlite",
		"--args", `{"drawingId":"d1","drawingData":"abc","metadata":{"title":"Kept"}}`)
	require.NoError(t, err)

	out, err := run(t, "call", "get_drawing", "--config", cfgPath, "--storage", "sqlite", "--args", `{"drawingId":"d1"}`)
	require.NoError(t, err)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &envelope))
	assert.Equal(t, "Kept", envelope["title"])
	assert.Equal(t, "abc", envelope["drawingData"])
}

func TestRootCmd_BadConfig(t *testing.T) {
	_, err := run(t, "tools", "--storage", "mongo")
	assert.ErrorContains(t, err, `unsupported backend "mongo"`)
}
