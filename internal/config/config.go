package config

import (
	stdErrors "errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/livedoc/internal/errors"
	"git.home.luguber.info/inful/livedoc/internal/plugin"
	"git.home.luguber.info/inful/livedoc/internal/retry"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "livedoc.yaml"

// Config represents the application configuration
type Config struct {
	Render  RenderConfig  `yaml:"render"`
	Preview PreviewConfig `yaml:"preview"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// RenderConfig controls how documents are turned into display trees.
type RenderConfig struct {
	HighlightTheme  string `yaml:"highlight_theme"`
	ScriptEntry     string `yaml:"script_entry"`
	ScriptArgument  int64  `yaml:"script_argument"`
	ScriptMaxSteps  uint64 `yaml:"script_max_steps"`
	ExecuteScripts  bool   `yaml:"execute_scripts"` // run every script panel after each load
	DisableGrouping bool   `yaml:"disable_grouping,omitempty"`
}

// PreviewConfig configures the live preview server.
type PreviewConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	LiveReload   bool          `yaml:"live_reload"`
	Debounce     time.Duration `yaml:"debounce"`
	PollInterval time.Duration `yaml:"poll_interval,omitempty"` // zero watches with fsnotify
	Retry        retry.Policy  `yaml:"retry"`                   // rereads of a document that vanished mid-save
}

// MetricsConfig exposes Prometheus metrics on the preview server.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig selects the log level, format and an optional log file.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
	File   string    `yaml:"file,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	pc := plugin.DefaultConfig()
	return &Config{
		Render: RenderConfig{
			HighlightTheme: pc.HighlightTheme,
			ScriptEntry:    pc.ScriptEntry,
			ScriptArgument: pc.ScriptArgument,
			ScriptMaxSteps: pc.ScriptMaxSteps,
		},
		Preview: PreviewConfig{
			Host:       "127.0.0.1",
			Port:       8080,
			LiveReload: true,
			Debounce:   200 * time.Millisecond,
			Retry:      retry.DefaultPolicy(),
		},
		Metrics: MetricsConfig{
			Path: "/metrics",
		},
		Logging: LoggingConfig{
			Level:  LogLevelInfo,
			Format: LogFormatText,
		},
	}
}

// Load loads configuration from the specified file. Values missing from
// the file keep their defaults.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if stdErrors.Is(err, fs.ErrNotExist) {
			return nil, errors.ConfigNotFound(configPath)
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext("path", configPath)
	}

	cfg, err := Parse([]byte(os.ExpandEnv(string(data))))
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but returns the defaults when configPath
// does not exist.
func LoadOrDefault(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); stdErrors.Is(err, fs.ErrNotExist) {
		loadEnvFiles()
		return Default(), nil
	}
	return Load(configPath)
}

// Parse decodes YAML over the defaults, normalises and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config")
	}
	Normalize(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PluginConfig returns the render settings threaded into plugins.
func (c *Config) PluginConfig() plugin.Config {
	return plugin.Config{
		HighlightTheme: c.Render.HighlightTheme,
		ScriptEntry:    c.Render.ScriptEntry,
		ScriptArgument: c.Render.ScriptArgument,
		ScriptMaxSteps: c.Render.ScriptMaxSteps,
	}
}

// Addr returns the preview listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Preview.Host, c.Preview.Port)
}

// Init creates a new configuration file with the default content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.New(errors.CategoryConfig, errors.SeverityError,
			"configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return errors.InternalError("failed to marshal config", err)
	}
	content := append([]byte(exampleHeader), data...)

	if err := os.WriteFile(configPath, content, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath)
	}
	return nil
}

const exampleHeader = `# livedoc configuration.
# Values may reference environment variables as ${NAME}; .env and .env.local
# in the working directory are loaded first.
`
