package commands

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/livedoc/internal/config"
	"git.home.luguber.info/inful/livedoc/internal/logfields"
	"git.home.luguber.info/inful/livedoc/internal/logging"
	"git.home.luguber.info/inful/livedoc/internal/metrics"
	"git.home.luguber.info/inful/livedoc/internal/plugin"
	"git.home.luguber.info/inful/livedoc/internal/plugin/builtin"
	"git.home.luguber.info/inful/livedoc/internal/plugin/script"
	"git.home.luguber.info/inful/livedoc/internal/render"
)

// Global carries state shared by subcommands once configuration is loaded.
type Global struct {
	Logger   *logging.Logger
	Config   *config.Config
	Registry *prom.Registry
	Recorder metrics.Recorder

	// Stdout is where commands write their results.
	Stdout io.Writer
}

// Close releases the log file, if any.
func (g *Global) Close() {
	if g.Logger != nil {
		_ = g.Logger.Close()
	}
}

func (g *Global) out() io.Writer {
	if g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// CLI definition & global flags.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path (default livedoc.yaml when present)"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `name:"log-format" help:"Log format (text or json); overrides the config file"`
	Theme     string           `name:"theme" help:"Highlight theme; overrides render.highlight_theme"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Render     RenderCmd  `cmd:"" help:"Render a markdown document to a standalone HTML page"`
	Run        RunCmd     `cmd:"" help:"Execute the script panels of a document and print their outputs"`
	Preview    PreviewCmd `cmd:"" help:"Serve a document with live reload while it is edited"`
	Init       InitCmd    `cmd:"" help:"Initialize a new configuration file"`
	Plugins    PluginsCmd `cmd:"" help:"List the fence tags and plugins the renderer understands"`
	VersionCmd VersionCmd `cmd:"" name:"version" help:"Print version information"`
}

// AfterApply runs after flag parsing; sets up flag-driven logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	opts := logging.Options{
		Level:   config.LogLevelInfo,
		Format:  config.NormalizeLogFormat(c.LogFormat),
		Verbose: c.Verbose,
	}
	if _, err := logging.Setup(opts); err != nil {
		slog.Warn("Logging setup failed", logfields.Error(err))
	}
	return nil
}

// Load reads the configuration, applies flag overrides and reconfigures
// logging from it.
func (c *CLI) Load(g *Global) error {
	var (
		cfg *config.Config
		err error
	)
	if c.Config == "" {
		cfg, err = config.LoadOrDefault(config.DefaultPath)
	} else {
		cfg, err = config.Load(c.Config)
	}
	if err != nil {
		return err
	}

	if c.Theme != "" {
		cfg.Render.HighlightTheme = c.Theme
	}
	if c.LogFormat != "" {
		cfg.Logging.Format = config.NormalizeLogFormat(c.LogFormat)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.Setup(logging.FromConfig(cfg.Logging, c.Verbose))
	if err != nil {
		return err
	}
	g.Close()
	g.Logger = logger
	g.Config = cfg

	g.Registry = prom.NewRegistry()
	g.Recorder = metrics.NewPrometheusRecorder(g.Registry)
	return nil
}

// NewRegistry builds the built-in plugin table with script timings reported
// to the recorder.
func (g *Global) NewRegistry() (*plugin.Registry, error) {
	return builtin.NewRegistry(builtin.Options{
		Script: script.Options{
			OnExecute: func(d time.Duration, err error) {
				g.Recorder.ObserveScriptDuration(d, err == nil)
			},
		},
	})
}

// NewRenderer builds a renderer with every built-in plugin, reporting
// script timings to the recorder.
func (g *Global) NewRenderer() (*render.Renderer, error) {
	registry, err := g.NewRegistry()
	if err != nil {
		return nil, err
	}
	return render.New(registry, render.Options{
		Config:          g.Config.PluginConfig(),
		DisableGrouping: g.Config.Render.DisableGrouping,
		Recorder:        g.Recorder,
	}), nil
}
