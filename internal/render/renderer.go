// Package render is the composition root of a live document: it parses
// markdown into cells, dispatches code cells to plugins, keeps stateful
// plugin instances in the component cache and produces the document view.
package render

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/livedoc/internal/components"
	"git.home.luguber.info/inful/livedoc/internal/docmodel"
	"git.home.luguber.info/inful/livedoc/internal/dom"
	"git.home.luguber.info/inful/livedoc/internal/errors"
	"git.home.luguber.info/inful/livedoc/internal/logfields"
	"git.home.luguber.info/inful/livedoc/internal/markdown"
	"git.home.luguber.info/inful/livedoc/internal/metrics"
	"git.home.luguber.info/inful/livedoc/internal/plugin"
	"git.home.luguber.info/inful/livedoc/internal/util/sets"
)

// cellStyle frames every cell of the document.
const cellStyle = `.cell { border: 2px solid green; margin: 10px; padding: 10px; }`

// Options configures a Renderer.
type Options struct {
	// Config is passed to every plugin. Frontmatter may override the theme.
	Config plugin.Config

	// DisableGrouping renders the whole document as one prose cell.
	DisableGrouping bool

	Recorder  metrics.Recorder
	Tokenizer *markdown.Tokenizer
}

// Renderer holds the state of one live document. It is not safe for
// concurrent use.
type Renderer struct {
	registry *plugin.Registry
	opts     Options
	cache    *components.Cache
	recorder metrics.Recorder

	doc   *docmodel.Document
	cells []cellView
	// failures holds the stateless render errors of the last pass.
	failures []error

	// synced tracks the content and config each live instance was last given.
	synced map[components.Key]syncState

	styles string
}

// cellView is the resolved form of one document cell.
type cellView struct {
	fence string
	// prose holds the cell's own nodes when no plugin renders it.
	prose []*html.Node
	// output is a stateless plugin's render, cloned on every view.
	output *html.Node
	// key is set for stateful cells.
	key components.Key
}

// New creates a renderer dispatching code cells through registry.
func New(registry *plugin.Registry, opts Options) *Renderer {
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Config == (plugin.Config{}) {
		opts.Config = plugin.DefaultConfig()
	}
	if opts.Tokenizer == nil {
		opts.Tokenizer = markdown.NewTokenizer()
	}
	return &Renderer{
		registry: registry,
		opts:     opts,
		cache:    components.New(opts.Recorder),
		recorder: opts.Recorder,
		synced:   make(map[components.Key]syncState),
	}
}

// SetContent replaces the document source and re-renders it. Stateful cells
// whose key survives keep their instance; a changed block content is sent to
// the instance as ContentChanged. On error the previous document stays.
func (r *Renderer) SetContent(content []byte) error {
	start := time.Now()
	renderID := uuid.NewString()

	doc, err := docmodel.Parse(content, docmodel.Options{
		DisableGrouping: r.opts.DisableGrouping,
		Tokenizer:       r.opts.Tokenizer,
	})
	if err != nil {
		r.recorder.IncRenderOutcome(metrics.ResultFatal)
		slog.Error("Render failed", logfields.RenderID(renderID), logfields.Error(err))
		return err
	}
	for _, w := range doc.Warnings {
		slog.Warn("Document warning", logfields.RenderID(renderID), logfields.Error(w))
	}

	cfg := r.configFor(doc)
	ordinals := make(map[string]int)
	live := sets.New[components.Key]()
	cells := make([]cellView, 0, len(doc.Cells))
	var failures []error

	for i, cell := range doc.Cells {
		block, ok := cell.CodeBlock()
		if !ok {
			cells = append(cells, cellView{prose: cell.Nodes})
			continue
		}

		strategy := r.registry.Resolve(block.Fence)
		if stateful, ok := strategy.(plugin.Stateful); ok {
			key := components.Key(fmt.Sprintf("%s#%d", block.Fence, ordinals[block.Fence]))
			ordinals[block.Fence]++
			live.Add(key)
			r.syncInstance(key, stateful, block.Content, cfg)
			cells = append(cells, cellView{fence: block.Fence, key: key})
			continue
		}

		out, err := plugin.RenderBlock(strategy, block.Fence, block.Content, cfg)
		if err != nil || out == nil {
			name := strategy.Metadata().Name
			if err == nil {
				err = fmt.Errorf("plugin returned no output")
			}
			err = errors.PluginRenderError(name, block.Fence, plugin.NewPluginError(name, "render", err))
			failures = append(failures, err)
			slog.Warn("Plugin render failed, showing cell as prose",
				logfields.RenderID(renderID),
				logfields.CellIndex(i),
				logfields.Fence(block.Fence),
				logfields.Error(err))
			r.recorder.IncPluginFallback(name)
			cells = append(cells, cellView{fence: block.Fence, prose: cell.Nodes})
			continue
		}
		cells = append(cells, cellView{fence: block.Fence, output: out})
	}

	for _, key := range r.cache.Sweep(live) {
		delete(r.synced, key)
		slog.Debug("Evicted component", logfields.RenderID(renderID), logfields.CellKey(string(key)))
	}

	r.doc = doc
	r.cells = cells
	r.failures = failures

	elapsed := time.Since(start)
	r.recorder.ObserveRenderDuration(elapsed)
	r.recorder.SetCells(len(cells))
	if len(failures) > 0 || len(doc.Warnings) > 0 {
		r.recorder.IncRenderOutcome(metrics.ResultWarning)
	} else {
		r.recorder.IncRenderOutcome(metrics.ResultSuccess)
	}
	slog.Debug("Rendered document",
		logfields.RenderID(renderID),
		logfields.Cells(len(cells)),
		logfields.Title(doc.Title),
		logfields.Duration(elapsed))
	return nil
}

type syncState struct {
	source string
	cfg    plugin.Config
}

// syncInstance makes the instance under key reflect content and cfg. An
// instance is created with its config, so a config change replaces it.
func (r *Renderer) syncInstance(key components.Key, s plugin.Stateful, content string, cfg plugin.Config) {
	if prev, ok := r.synced[key]; ok && prev.cfg != cfg {
		r.cache.Remove(key)
	}
	_, created := r.cache.GetOrCreate(key, func() plugin.Instance {
		return s.NewInstance(content, cfg)
	})
	if !created && r.synced[key].source != content {
		r.cache.Update(key, plugin.ContentChanged{Source: content})
	}
	r.synced[key] = syncState{source: content, cfg: cfg}
}

// configFor applies document metadata to the renderer's plugin config.
func (r *Renderer) configFor(doc *docmodel.Document) plugin.Config {
	cfg := r.opts.Config
	if doc.Meta.HighlightTheme != "" {
		cfg.HighlightTheme = doc.Meta.HighlightTheme
	}
	return cfg
}

// Dispatch routes a plugin event to the instance for key. It reports false
// for keys that are no longer live.
func (r *Renderer) Dispatch(key components.Key, ev plugin.Event) bool {
	return r.cache.Update(key, ev)
}

// Instance returns the live instance for key.
func (r *Renderer) Instance(key components.Key) (plugin.Instance, bool) {
	return r.cache.Get(key)
}

// ExecuteAll sends Execute to every live stateful cell in document order and
// returns how many received it.
func (r *Renderer) ExecuteAll() int {
	n := 0
	for _, c := range r.cells {
		if c.key != "" && r.cache.Update(c.key, plugin.Execute{}) {
			n++
		}
	}
	return n
}

// View returns the display tree of the current document. Every call returns
// a fresh tree the caller may modify.
func (r *Renderer) View() *html.Node {
	root := dom.Element("div", dom.Attrs(dom.Class("rendered_markdown")))
	for _, c := range r.cells {
		root.AppendChild(r.cellNode(c))
	}
	return root
}

func (r *Renderer) cellNode(c cellView) *html.Node {
	switch {
	case c.key != "":
		n := dom.Element("div", dom.Attrs(dom.Class("cell"), dom.Attr("data-cell-key", string(c.key))))
		if inst, ok := r.cache.Get(c.key); ok {
			dom.Append(n, inst.View())
		}
		return n
	case c.output != nil:
		return dom.Element("div", dom.Attrs(dom.Class("cell")), dom.Clone(c.output))
	default:
		return dom.Element("div", dom.Attrs(dom.Class("cell", "normal")), dom.CloneAll(c.prose)...)
	}
}

// HTML renders View to markup.
func (r *Renderer) HTML() (string, error) {
	return dom.Render(r.View())
}

// Style returns the cell stylesheet followed by every plugin's stylesheet.
// The result is computed once.
func (r *Renderer) Style() (string, error) {
	if r.styles != "" {
		return r.styles, nil
	}
	plugins, err := r.registry.Styles()
	if err != nil {
		return "", err
	}
	r.styles = strings.Join([]string{cellStyle, plugins}, "\n")
	return r.styles, nil
}

// Title returns the document title, or "" before the first successful render.
func (r *Renderer) Title() string {
	if r.doc == nil {
		return ""
	}
	return r.doc.Title
}

// Fingerprint returns the fingerprint of the current document source.
func (r *Renderer) Fingerprint() string {
	if r.doc == nil {
		return ""
	}
	return r.doc.Fingerprint()
}

// Failures returns the plugin errors of cells the last pass degraded to
// prose. Each wraps a *plugin.PluginError.
func (r *Renderer) Failures() []error {
	return slices.Clone(r.failures)
}

// Document returns the current parsed document, or nil.
func (r *Renderer) Document() *docmodel.Document {
	return r.doc
}

// Keys returns the keys of the live stateful cells in document order.
func (r *Renderer) Keys() []components.Key {
	var keys []components.Key
	for _, c := range r.cells {
		if c.key != "" {
			keys = append(keys, c.key)
		}
	}
	return keys
}

// Close releases every live instance.
func (r *Renderer) Close() {
	r.cache.Close()
	clear(r.synced)
}
