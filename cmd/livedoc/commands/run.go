package commands

import (
	"fmt"
	"slices"

	"git.home.luguber.info/inful/livedoc/internal/components"
	"git.home.luguber.info/inful/livedoc/internal/errors"
	"git.home.luguber.info/inful/livedoc/internal/plugin"
)

// RunCmd implements the 'run' command: headless execution of script panels.
type RunCmd struct {
	File  string   `arg:"" type:"existingfile" help:"Markdown document whose scripts to run"`
	Cells []string `short:"k" name:"cell" help:"Only run these cell keys (e.g. rune#0)"`
}

type outputter interface {
	Output() (string, bool)
}

func (r *RunCmd) Run(g *Global, root *CLI) error {
	if err := root.Load(g); err != nil {
		return err
	}

	renderer, err := loadDocument(g, r.File, false)
	if err != nil {
		return err
	}
	defer renderer.Close()

	keys := renderer.Keys()
	for _, want := range r.Cells {
		if !slices.Contains(keys, components.Key(want)) {
			return errors.ValidationFailed("cell", fmt.Sprintf("no stateful cell %q in %s", want, r.File))
		}
	}

	for _, key := range keys {
		if len(r.Cells) > 0 && !slices.Contains(r.Cells, string(key)) {
			continue
		}
		renderer.Dispatch(key, plugin.Execute{})

		inst, ok := renderer.Instance(key)
		if !ok {
			continue
		}
		out, ran := "(not executable)", false
		if o, ok := inst.(outputter); ok {
			out, ran = o.Output()
			if !ran {
				out = "(no output)"
			}
		}
		fmt.Fprintf(g.out(), "%s: %s\n", key, out)
	}
	return nil
}
