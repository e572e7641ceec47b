// Package builtin assembles the registry of built-in plugins.
package builtin

import (
	"fmt"

	"git.home.luguber.info/inful/livedoc/internal/plugin"
	"git.home.luguber.info/inful/livedoc/internal/plugin/admonition"
	"git.home.luguber.info/inful/livedoc/internal/plugin/diagram"
	"git.home.luguber.info/inful/livedoc/internal/plugin/highlight"
	"git.home.luguber.info/inful/livedoc/internal/plugin/script"
	"git.home.luguber.info/inful/livedoc/internal/plugin/terminal"
)

// Options configures the built-in plugins.
type Options struct {
	Script script.Options
}

// NewRegistry returns a registry holding every built-in plugin, with the
// syntax highlighter as fallback for unclaimed fence tags.
func NewRegistry(opts Options) (*plugin.Registry, error) {
	registry, err := plugin.NewRegistry(highlight.New())
	if err != nil {
		return nil, err
	}
	for _, s := range []plugin.Strategy{
		diagram.Diagram{},
		diagram.SideBySide{},
		terminal.Terminal{},
		admonition.Admonition{},
		script.New(opts.Script),
	} {
		if err := registry.Register(s); err != nil {
			return nil, fmt.Errorf("register %s: %w", s.Metadata().Name, err)
		}
	}
	return registry, nil
}
