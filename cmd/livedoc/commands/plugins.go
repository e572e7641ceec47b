package commands

import (
	"fmt"
	"io"
	"strings"

	"git.home.luguber.info/inful/livedoc/internal/errors"
	"git.home.luguber.info/inful/livedoc/internal/plugin"
	"git.home.luguber.info/inful/livedoc/internal/plugin/highlight"
)

// PluginsCmd lists the registered plugins, or describes one.
type PluginsCmd struct {
	Name   string `arg:"" optional:"" help:"Plugin name or fence tag to describe"`
	Themes bool   `help:"List the available highlight themes instead"`
}

func (p *PluginsCmd) Run(g *Global, root *CLI) error {
	if err := root.Load(g); err != nil {
		return err
	}
	out := g.out()

	if p.Themes {
		for _, name := range highlight.Themes() {
			fmt.Fprintln(out, name)
		}
		return nil
	}

	registry, err := g.NewRegistry()
	if err != nil {
		return err
	}
	fallback := registry.Fallback().Metadata().Name

	if p.Name != "" {
		var s plugin.Strategy
		if registry.Has(p.Name) {
			s = registry.Resolve(p.Name)
		} else if s, err = registry.Get(p.Name); err != nil {
			return errors.ValidationFailed("plugin", fmt.Sprintf("no plugin or fence tag %q", p.Name))
		}
		describePlugin(out, s.Metadata(), s.Metadata().Name == fallback)
		return nil
	}

	fmt.Fprintf(out, "%d plugins claim %d fence tags\n", registry.Count(), len(registry.Tags()))
	for _, s := range registry.Strategies() {
		md := s.Metadata()
		fmt.Fprintf(out, "%s (%s): %s\n", md.Name, md.Kind, fenceList(md, md.Name == fallback))
	}
	return nil
}

func describePlugin(w io.Writer, md plugin.Metadata, fallback bool) {
	fmt.Fprintf(w, "name:        %s\n", md.Name)
	fmt.Fprintf(w, "version:     %s\n", md.Version)
	fmt.Fprintf(w, "kind:        %s\n", md.Kind)
	fmt.Fprintf(w, "description: %s\n", md.Description)
	fmt.Fprintf(w, "fence tags:  %s\n", fenceList(md, fallback))
}

func fenceList(md plugin.Metadata, fallback bool) string {
	tags := strings.Join(md.FenceTags, ", ")
	if !fallback {
		return tags
	}
	if tags == "" {
		return "any unclaimed tag"
	}
	return tags + ", any unclaimed tag"
}
