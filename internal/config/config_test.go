package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/livedoc/internal/errors"
	"git.home.luguber.info/inful/livedoc/internal/plugin"
	"git.home.luguber.info/inful/livedoc/internal/retry"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "livedoc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultMatchesPluginDefaults(t *testing.T) {
	cfg := Default()
	require.Equal(t, plugin.DefaultConfig(), cfg.PluginConfig())
	require.NoError(t, cfg.Validate())
	require.Equal(t, "127.0.0.1:8080", cfg.Addr())
	require.True(t, cfg.Preview.LiveReload)
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
render:
  highlight_theme: monokai
  script_argument: 0
preview:
  port: 9000
  debounce: 50ms
  retry:
    mode: Exponential
    max_retries: 5
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "monokai", cfg.Render.HighlightTheme)
	require.Zero(t, cfg.Render.ScriptArgument)
	require.Equal(t, "main", cfg.Render.ScriptEntry)
	require.Equal(t, 9000, cfg.Preview.Port)
	require.Equal(t, 50*time.Millisecond, cfg.Preview.Debounce)
	require.Equal(t, "127.0.0.1", cfg.Preview.Host)
	require.Equal(t, retry.BackoffExponential, cfg.Preview.Retry.Mode)
	require.Equal(t, 5, cfg.Preview.Retry.MaxRetries)
	require.Equal(t, retry.DefaultPolicy().Initial, cfg.Preview.Retry.Initial)
	require.Equal(t, LogLevelInfo, cfg.Logging.Level)
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("LIVEDOC_TEST_THEME", "monokai")
	path := writeConfig(t, "render:\n  highlight_theme: ${LIVEDOC_TEST_THEME}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "monokai", cfg.Render.HighlightTheme)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.True(t, errors.IsCategory(err, errors.CategoryConfig))
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "render: [unterminated\n"))
	require.Error(t, err)
	require.True(t, errors.IsCategory(err, errors.CategoryConfig))
}

func TestParse_NormalizesEnums(t *testing.T) {
	cfg, err := Parse([]byte("logging:\n  level: WARNING\n  format: bogus\nmetrics:\n  path: stats\n"))
	require.NoError(t, err)
	require.Equal(t, LogLevelWarn, cfg.Logging.Level)
	require.Equal(t, LogFormatText, cfg.Logging.Format)
	require.Equal(t, "/stats", cfg.Metrics.Path)
}

func TestNormalize_ReportsChanges(t *testing.T) {
	cfg := Default()
	cfg.Render.HighlightTheme = "Monokai"
	cfg.Logging.Level = " DEBUG "

	res := Normalize(cfg)
	require.Equal(t, "monokai", cfg.Render.HighlightTheme)
	require.Equal(t, LogLevelDebug, cfg.Logging.Level)
	require.Len(t, res.Warnings, 2)

	cfg.Logging.Format = "xml"
	res = Normalize(cfg)
	require.Equal(t, LogFormatText, cfg.Logging.Format)
	require.Len(t, res.Warnings, 2)
	require.Contains(t, res.Warnings[0], "valid options: json, text")

	require.Empty(t, Normalize(Default()).Warnings)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown theme", func(c *Config) { c.Render.HighlightTheme = "no-such-theme" }, "render.highlight_theme"},
		{"empty entry", func(c *Config) { c.Render.ScriptEntry = "" }, "render.script_entry"},
		{"entry with spaces", func(c *Config) { c.Render.ScriptEntry = "do it" }, "render.script_entry"},
		{"entry starting with digit", func(c *Config) { c.Render.ScriptEntry = "1st" }, "render.script_entry"},
		{"port out of range", func(c *Config) { c.Preview.Port = 70000 }, "preview.port"},
		{"negative debounce", func(c *Config) { c.Preview.Debounce = -time.Second }, "preview.debounce"},
		{"negative poll", func(c *Config) { c.Preview.PollInterval = -time.Second }, "preview.poll_interval"},
		{"negative retries", func(c *Config) { c.Preview.Retry.MaxRetries = -1 }, "preview.retry"},
		{"zero retry delay", func(c *Config) { c.Preview.Retry.Initial = 0 }, "preview.retry"},
		{"metrics on root", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Path = "/" }, "metrics.path"},
		{"metrics under cells", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Path = "/cells/m" }, "metrics.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.True(t, errors.IsCategory(err, errors.CategoryValidation))
			ce, ok := errors.As(err)
			require.True(t, ok)
			require.Equal(t, tt.field, ce.Context["field"])
		})
	}
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "livedoc.yaml")
	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	err = Init(path, false)
	require.Error(t, err)
	require.True(t, errors.IsCategory(err, errors.CategoryConfig))
	require.NoError(t, Init(path, true))
}

func TestLogLevel_SlogLevel(t *testing.T) {
	require.Equal(t, "DEBUG", LogLevelDebug.SlogLevel().String())
	require.Equal(t, "WARN", NormalizeLogLevel("warning").SlogLevel().String())
	require.Equal(t, "INFO", LogLevel("").SlogLevel().String())
}
