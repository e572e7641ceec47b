package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/livedoc/internal/config"
	"git.home.luguber.info/inful/livedoc/internal/errors"
)

func TestNew_TextLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, Options{Level: config.LogLevelWarn, Format: config.LogFormatText})
	require.NoError(t, err)

	l.Info("hidden")
	l.Warn("shown", "k", "v")
	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "msg=shown")
	require.Contains(t, out, "k=v")

	l.SetLevel(slog.LevelDebug)
	l.Debug("now visible")
	require.Contains(t, buf.String(), "now visible")
	require.NoError(t, l.Close())
}

func TestNew_VerboseForcesDebug(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, Options{Level: config.LogLevelError, Verbose: true})
	require.NoError(t, err)
	l.Debug("debugging")
	require.Contains(t, buf.String(), "debugging")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, FromConfig(config.LoggingConfig{Level: config.LogLevelInfo, Format: config.LogFormatJSON}, false))
	require.NoError(t, err)
	l.Info("hello", "n", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "hello", rec["msg"])
	require.EqualValues(t, 3, rec["n"])
}

func TestNew_FanoutToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "livedoc.log")
	var buf bytes.Buffer
	l, err := New(&buf, Options{Level: config.LogLevelInfo, Format: config.LogFormatText, File: path})
	require.NoError(t, err)

	l.Info("to both")
	require.NoError(t, l.Close())

	require.Contains(t, buf.String(), "to both")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &rec))
	require.Equal(t, "to both", rec["msg"])
}

func TestNew_UnwritableFile(t *testing.T) {
	_, err := New(&bytes.Buffer{}, Options{File: filepath.Join(t.TempDir(), "missing", "x.log")})
	require.Error(t, err)
	require.True(t, errors.IsCategory(err, errors.CategoryFileSystem))
}
