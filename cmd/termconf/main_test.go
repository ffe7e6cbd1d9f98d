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

	"github.com/eugenenazirov/termconf/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jline.rc")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout bytes.Buffer
	err := run(args, &stdout)
	return stdout.String(), err
}

func TestGetCommand(t *testing.T) {
	path := writeConfig(t, "color=red\nbell=off\n")

	t.Run("file value", func(t *testing.T) {
		out, err := runCLI(t, "--config", path, "get", "color")
		require.NoError(t, err)
		assert.Equal(t, "red\n", out)
	})

	t.Run("definition wins", func(t *testing.T) {
		out, err := runCLI(t, "--config", path, "-D", "color=blue", "get", "color")
		require.NoError(t, err)
		assert.Equal(t, "blue\n", out)
	})

	t.Run("unset without default", func(t *testing.T) {
		_, err := runCLI(t, "--config", path, "get", "missing")
		assert.ErrorIs(t, err, errUnset)
	})

	t.Run("unset with empty default", func(t *testing.T) {
		out, err := runCLI(t, "--config", path, "get", "missing", "--default=")
		require.NoError(t, err)
		assert.Equal(t, "\n", out)
	})

	t.Run("json", func(t *testing.T) {
		out, err := runCLI(t, "--config", path, "-o", "json", "get", "missing", "--default", "d")
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, "d", got["value"])
		assert.Equal(t, config.OriginDefault.String(), got["origin"])
	})
}

func TestTypedCommands(t *testing.T) {
	path := writeConfig(t, "width=80\nbad=abc\nhuge=3000000000\nbell=\n")

	out, err := runCLI(t, "--config", path, "bool", "bell")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	out, err = runCLI(t, "--config", path, "-D", "flag", "bool", "flag")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	out, err = runCLI(t, "--config", path, "bool", "missing", "--default")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	out, err = runCLI(t, "--config", path, "int", "width")
	require.NoError(t, err)
	assert.Equal(t, "80\n", out)

	out, err = runCLI(t, "--config", path, "int", "missing", "--default", "7")
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)

	_, err = runCLI(t, "--config", path, "int", "bad", "--default", "7")
	assert.ErrorIs(t, err, config.ErrNumberFormat)

	_, err = runCLI(t, "--config", path, "int", "huge")
	assert.ErrorIs(t, err, config.ErrNumberFormat)

	out, err = runCLI(t, "--config", path, "long", "huge")
	require.NoError(t, err)
	assert.Equal(t, "3000000000\n", out)
}

func TestExplainCommand(t *testing.T) {
	path := writeConfig(t, "color=red\n")

	out, err := runCLI(t, "--config", path, "explain", "color")
	require.NoError(t, err)
	assert.Equal(t, "color=red (file)\n", out)

	out, err = runCLI(t, "--config", path, "-D", "color=x", "explain", "color")
	require.NoError(t, err)
	assert.Equal(t, "color=x (override)\n", out)

	out, err = runCLI(t, "--config", path, "explain", "missing")
	require.NoError(t, err)
	assert.Equal(t, "missing is unset (source "+path+")\n", out)
}

func TestListCommand(t *testing.T) {
	path := writeConfig(t, "b=2\na=1\n")

	out, err := runCLI(t, "--config", path, "list")
	require.NoError(t, err)
	assert.Equal(t, "# "+path+"\na=1\nb=2\n", out)

	out, err = runCLI(t, "--config", path, "-o", "yaml", "list")
	require.NoError(t, err)

	var got struct {
		Source     string            `yaml:"source"`
		Properties map[string]string `yaml:"properties"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, path, got.Source)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, got.Properties)
}

func TestListCommandWithMissingSource(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.rc")

	out, err := runCLI(t, "--config", missing, "--log-format", "console", "list")
	require.NoError(t, err)
	assert.Equal(t, "# "+missing+"\n", out)
}

func TestHostCommand(t *testing.T) {
	path := writeConfig(t, "")

	out, err := runCLI(t, "--config", path, "-D", "os.name=TestOS", "-D", "user.home=/home/test", "host")
	require.NoError(t, err)
	assert.Contains(t, out, "user.home=/home/test\n")
	assert.Contains(t, out, "os.name=testos\n")
	assert.True(t, strings.HasSuffix(out, "source="+path+"\n"), out)
}

func TestRunRejectsInvalidInput(t *testing.T) {
	_, err := runCLI(t)
	assert.Error(t, err)

	_, err = runCLI(t, "get")
	assert.Error(t, err)

	_, err = runCLI(t, "-o", "xml", "list")
	assert.Error(t, err)

	_, err = runCLI(t, "-D", "=x", "list")
	assert.Error(t, err)

	_, err = runCLI(t, "--config", writeConfig(t, ""), "get", "")
	assert.Error(t, err)
}
