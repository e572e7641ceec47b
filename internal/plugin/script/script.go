// Package script implements the script panel: a stateful plugin that shows a
// Starlark snippet and runs its entry function on demand.
package script

import (
	stdErrors "errors"
	"fmt"
	"log/slog"
	"time"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/livedoc/internal/dom"
	"git.home.luguber.info/inful/livedoc/internal/logfields"
	"git.home.luguber.info/inful/livedoc/internal/plugin"
	"git.home.luguber.info/inful/livedoc/internal/plugin/highlight"
)

// FenceTags are the fence tags claimed by the script panel.
var FenceTags = []string{"rune", "script", "starlark"}

const stylesheet = `
.script_panel { display: flex; flex-direction: column; gap: 5px; }
.script_panel .output { font-family: monospace; padding: 5px 10px; border-left: 3px solid #00a400; }
.script_panel .run { align-self: flex-start; }
`

// Editor receives pointer events forwarded from the panel's source view.
type Editor interface {
	Pointer(ev plugin.Pointer)
}

// Options configures the script strategy.
type Options struct {
	// NewEditor creates the editor attached to each new panel. Nil leaves
	// panels without an editor; pointer events are then dropped.
	NewEditor func() Editor

	// OnExecute is called after every run with its duration and error.
	OnExecute func(d time.Duration, err error)
}

// Strategy creates script panels.
type Strategy struct {
	opts Options
}

// New returns the script strategy.
func New(opts Options) *Strategy {
	return &Strategy{opts: opts}
}

func (s *Strategy) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:        "script",
		Version:     "v1.0.0",
		Kind:        plugin.KindStateful,
		Description: "Starlark snippet with a run button",
		FenceTags:   FenceTags,
	}
}

func (s *Strategy) Style() string {
	return stylesheet
}

// Render shows a panel that has not been run. The renderer normally goes
// through NewInstance instead.
func (s *Strategy) Render(content string, cfg plugin.Config) (*html.Node, error) {
	return s.NewInstance(content, cfg).View(), nil
}

// NewInstance creates an idle panel for content.
func (s *Strategy) NewInstance(content string, cfg plugin.Config) plugin.Instance {
	p := &Panel{source: content, cfg: cfg, onExecute: s.opts.OnExecute}
	if s.opts.NewEditor != nil {
		p.editor = s.opts.NewEditor()
	}
	return p
}

// Panel is a live script panel. It is Idle until executed and Ran afterwards;
// a content change returns it to Idle.
type Panel struct {
	source string
	output *string
	cfg    plugin.Config

	editor    Editor
	onExecute func(time.Duration, error)
}

// Source returns the current script source.
func (p *Panel) Source() string {
	return p.source
}

// Output returns the display string of the last run, if the panel has run.
func (p *Panel) Output() (string, bool) {
	if p.output == nil {
		return "", false
	}
	return *p.output, true
}

// Update applies ev to the panel.
func (p *Panel) Update(ev plugin.Event) {
	switch e := ev.(type) {
	case plugin.ContentChanged:
		p.source = e.Source
		p.output = nil
	case plugin.Execute:
		out := p.execute()
		p.output = &out
	case plugin.Pointer:
		if p.editor != nil {
			p.editor.Pointer(e)
		}
	}
}

func (p *Panel) execute() string {
	start := time.Now()
	value, err := Run(p.source, p.cfg)
	if p.onExecute != nil {
		p.onExecute(time.Since(start), err)
	}
	if err != nil {
		slog.Debug("Script failed", logfields.Error(err), logfields.Duration(time.Since(start)))
		return err.Error()
	}
	return value
}

// View renders the panel.
func (p *Panel) View() *html.Node {
	raw, err := highlight.Highlight(p.source, "python", p.cfg.HighlightTheme)
	if err != nil {
		raw = dom.El("pre", dom.El("code", dom.Text(p.source)))
	}

	var result *html.Node
	if p.output != nil {
		result = dom.Element("div", dom.Attrs(dom.Class("output")), dom.Text(*p.output))
	} else {
		result = dom.Comment("no output yet")
	}

	return dom.Element("div", dom.Attrs(dom.Class("script_panel")),
		dom.Element("div", dom.Attrs(dom.Class("script_raw")), raw),
		result,
		dom.Element("button", dom.Attrs(dom.Class("run"), dom.Attr("data-action", "execute")), dom.Text("Run")),
	)
}

// Close releases the panel. Panels hold no external resources.
func (p *Panel) Close() error {
	p.editor = nil
	return nil
}

// ErrNoEntry is returned when the script does not define the entry function.
var ErrNoEntry = stdErrors.New("script has no entry function")

// Run executes source in a fresh interpreter and calls the configured entry
// function with the configured argument. It returns the display string of
// the result.
func Run(source string, cfg plugin.Config) (string, error) {
	entry := cfg.ScriptEntry
	if entry == "" {
		entry = plugin.DefaultConfig().ScriptEntry
	}

	thread := &starlark.Thread{
		Name: "script",
		Print: func(_ *starlark.Thread, msg string) {
			slog.Debug("Script output", slog.String("message", msg))
		},
	}
	thread.SetMaxExecutionSteps(cfg.ScriptMaxSteps)

	globals, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, "script.star", source, predeclared())
	if err != nil {
		return "", err
	}

	fn, ok := globals[entry]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoEntry, entry)
	}
	if _, ok := fn.(starlark.Callable); !ok {
		return "", fmt.Errorf("%s is a %s, not a function", entry, fn.Type())
	}

	value, err := starlark.Call(thread, fn, starlark.Tuple{starlark.MakeInt64(cfg.ScriptArgument)}, nil)
	if err != nil {
		return "", err
	}
	return display(value), nil
}

// predeclared returns the host functions available to every script.
func predeclared() starlark.StringDict {
	return starlark.StringDict{
		"add": starlark.NewBuiltin("add", add),
	}
}

// add returns x + 1.
func add(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var x int64
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &x); err != nil {
		return nil, err
	}
	return starlark.MakeInt64(x + 1), nil
}

func display(v starlark.Value) string {
	if s, ok := v.(starlark.String); ok {
		return string(s)
	}
	return v.String()
}
