package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"git.home.luguber.info/inful/livedoc/internal/logfields"
	"git.home.luguber.info/inful/livedoc/internal/metrics"
	"git.home.luguber.info/inful/livedoc/internal/preview"
	"git.home.luguber.info/inful/livedoc/internal/server/httpserver"
)

// PreviewCmd serves a document and re-renders it whenever the file changes.
type PreviewCmd struct {
	File         string        `arg:"" type:"existingfile" help:"Markdown document to preview"`
	Host         string        `name:"host" help:"Listen host; overrides preview.host"`
	Port         int           `name:"port" default:"-1" help:"Listen port; overrides preview.port"`
	NoLiveReload bool          `name:"no-live-reload" help:"Disable LiveReload SSE and script injection"`
	Execute      bool          `short:"x" help:"Execute script panels after every reload"`
	Poll         time.Duration `name:"poll" help:"Poll the file at this interval instead of using filesystem events"`
}

func (p *PreviewCmd) Run(g *Global, root *CLI) error {
	if err := root.Load(g); err != nil {
		return err
	}
	cfg := g.Config
	if p.Host != "" {
		cfg.Preview.Host = p.Host
	}
	if p.Port >= 0 {
		cfg.Preview.Port = p.Port
	}
	if p.NoLiveReload {
		cfg.Preview.LiveReload = false
	}
	if p.Poll > 0 {
		cfg.Preview.PollInterval = p.Poll
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	sigctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	renderer, err := g.NewRenderer()
	if err != nil {
		return err
	}
	title := strings.TrimSuffix(filepath.Base(p.File), filepath.Ext(p.File))
	session := preview.NewSession(p.File, renderer, preview.SessionOptions{
		ExecuteScripts: p.Execute || cfg.Render.ExecuteScripts,
		Title:          title,
	})
	defer session.Close()

	// A broken first version is served as soon as it is fixed.
	if _, err := session.Reload(); err != nil {
		slog.Warn("Initial render failed", logfields.Path(p.File), logfields.Error(err))
	}

	opts := httpserver.Options{
		Addr:       cfg.Addr(),
		LiveReload: cfg.Preview.LiveReload,
		Recorder:   g.Recorder,
		Logger:     g.Logger.Logger,
	}
	if cfg.Metrics.Enabled {
		opts.MetricsPath = cfg.Metrics.Path
		opts.Metrics = metrics.HTTPHandler(g.Registry)
	}
	srv := httpserver.New(session, opts)
	if err := srv.Start(sigctx); err != nil {
		return err
	}
	fmt.Fprintf(g.out(), "Previewing %s at http://%s/\n", p.File, srv.Addr())

	watcher, err := preview.NewWatcher(p.File, preview.WatchOptions{
		Debounce:     cfg.Preview.Debounce,
		PollInterval: cfg.Preview.PollInterval,
	})
	if err != nil {
		return err
	}
	watchErr := make(chan error, 1)
	go func() { watchErr <- watcher.Run(sigctx) }()
	go preview.Follow(sigctx, session, watcher.Changes(), srv, cfg.Preview.Retry)

	select {
	case <-sigctx.Done():
		slog.Info("Shutting down preview server...")
	case err := <-watchErr:
		if err != nil {
			slog.Error("Watcher stopped", logfields.Error(err))
		}
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return srv.Stop(shutdownCtx)
}
