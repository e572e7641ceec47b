package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/andybalholm/cascadia"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/livedoc/internal/components"
	"git.home.luguber.info/inful/livedoc/internal/dom"
	derrors "git.home.luguber.info/inful/livedoc/internal/errors"
	"git.home.luguber.info/inful/livedoc/internal/metrics"
	"git.home.luguber.info/inful/livedoc/internal/plugin"
	"git.home.luguber.info/inful/livedoc/internal/plugin/builtin"
)

const script = "```rune\ndef main(number):\n    return number + 10\n```\n"

const sampleDoc = "# Live notes\n\n" +
	"Intro paragraph.\n\n" +
	"```bob\n+--+\n|  |\n+--+\n```\n\n" +
	"```sh\nls -la\n```\n\n" +
	script + "\n" +
	"```warning\nCareful\n```\n\n" +
	"```go\nfunc main() {}\n```\n\n" +
	"Closing words.\n"

type recorder struct {
	metrics.NoopRecorder
	fallbacks []string
	outcomes  []metrics.ResultLabel
}

func (r *recorder) IncPluginFallback(p string)             { r.fallbacks = append(r.fallbacks, p) }
func (r *recorder) IncRenderOutcome(l metrics.ResultLabel) { r.outcomes = append(r.outcomes, l) }

func newRenderer(t *testing.T, rec metrics.Recorder) *Renderer {
	t.Helper()
	registry, err := builtin.NewRegistry(builtin.Options{})
	require.NoError(t, err)
	cfg := plugin.DefaultConfig()
	cfg.ScriptArgument = 5
	r := New(registry, Options{Config: cfg, Recorder: rec})
	t.Cleanup(r.Close)
	return r
}

func setContent(t *testing.T, r *Renderer, src string) {
	t.Helper()
	require.NoError(t, r.SetContent([]byte(src)))
}

func match(n *html.Node, selector string) []*html.Node {
	return cascadia.MustCompile(selector).MatchAll(n)
}

func outputOf(t *testing.T, r *Renderer, key components.Key) (string, bool) {
	t.Helper()
	n, ok := r.CellView(key)
	require.True(t, ok, "no cell %s", key)
	out := match(n, "div.output")
	if len(out) == 0 {
		return "", false
	}
	return dom.TextContent(out[0]), true
}

func TestRenderer_ViewStructure(t *testing.T) {
	r := newRenderer(t, nil)
	setContent(t, r, sampleDoc)

	root := r.View()
	require.True(t, dom.HasClass(root, "rendered_markdown"))
	cells := match(root, "div.rendered_markdown > div.cell")
	require.Len(t, cells, 7)

	require.True(t, dom.HasClass(cells[0], "normal"))
	require.NotEmpty(t, match(cells[0], "h1"))
	require.NotEmpty(t, match(cells[1], "div.bob-diagram > svg"))
	require.NotEmpty(t, match(cells[2], "div.fake_terminal"))
	key, ok := dom.GetAttr(cells[3], "data-cell-key")
	require.True(t, ok)
	require.Equal(t, "rune#0", key)
	require.NotEmpty(t, match(cells[3], "div.script_panel"))
	require.NotEmpty(t, match(cells[4], "div.admonition.warning"))
	require.NotEmpty(t, match(cells[5], "pre.highlight"))
	require.True(t, dom.HasClass(cells[6], "normal"))

	require.Equal(t, "Live notes", r.Title())
	require.Equal(t, []components.Key{"rune#0"}, r.Keys())
	require.NotEmpty(t, r.Fingerprint())
}

func TestRenderer_ViewIsFreshEachCall(t *testing.T) {
	r := newRenderer(t, nil)
	setContent(t, r, sampleDoc)

	a := r.View()
	b := r.View()
	require.True(t, dom.Equal(a, b))

	a.FirstChild.FirstChild.Data = "mutated"
	require.True(t, dom.Equal(b, r.View()))
}

func TestRenderer_StatefulIdentitySurvivesEdits(t *testing.T) {
	r := newRenderer(t, nil)
	setContent(t, r, "Intro\n\n"+script)

	require.True(t, r.Dispatch("rune#0", plugin.Execute{}))
	out, ok := outputOf(t, r, "rune#0")
	require.True(t, ok)
	require.Equal(t, "15", out)

	// Prose edits leave the panel's state alone.
	setContent(t, r, "Intro, edited\n\nMore prose\n\n"+script)
	out, ok = outputOf(t, r, "rune#0")
	require.True(t, ok)
	require.Equal(t, "15", out)

	// A changed script resets the panel.
	setContent(t, r, "Intro\n\n```rune\ndef main(number):\n    return number * 3\n```\n")
	_, ok = outputOf(t, r, "rune#0")
	require.False(t, ok)
	require.True(t, r.Dispatch("rune#0", plugin.Execute{}))
	out, _ = outputOf(t, r, "rune#0")
	require.Equal(t, "15", out)

	// Removing the block evicts the instance.
	setContent(t, r, "Intro only\n")
	require.Empty(t, r.Keys())
	require.False(t, r.Dispatch("rune#0", plugin.Execute{}))
}

func TestRenderer_ConfigChangeRecreatesInstance(t *testing.T) {
	r := newRenderer(t, nil)
	setContent(t, r, "---\nhighlight_theme: monokai\n---\n"+script)
	require.True(t, r.Dispatch("rune#0", plugin.Execute{}))
	first, ok := r.Instance("rune#0")
	require.True(t, ok)

	// Same content and theme keeps the instance and its output.
	setContent(t, r, "---\nhighlight_theme: monokai\n---\nIntro\n\n"+script)
	same, _ := r.Instance("rune#0")
	require.Same(t, first, same)
	out, ok := outputOf(t, r, "rune#0")
	require.True(t, ok)
	require.Equal(t, "15", out)

	// A new theme builds a fresh instance with no output.
	setContent(t, r, "---\nhighlight_theme: dracula\n---\nIntro\n\n"+script)
	fresh, ok := r.Instance("rune#0")
	require.True(t, ok)
	require.NotSame(t, first, fresh)
	_, ok = outputOf(t, r, "rune#0")
	require.False(t, ok)
	require.Equal(t, []components.Key{"rune#0"}, r.Keys())
}

func TestRenderer_KeysAreOrdinalPerFence(t *testing.T) {
	r := newRenderer(t, nil)
	setContent(t, r, script+"\ntext\n\n"+script+"\n```script\ndef main(n):\n    return n\n```\n")

	require.Equal(t, []components.Key{"rune#0", "rune#1", "script#0"}, r.Keys())
	require.Equal(t, 3, r.ExecuteAll())

	out, ok := outputOf(t, r, "script#0")
	require.True(t, ok)
	require.Equal(t, "5", out)

	inst, ok := r.Instance("rune#1")
	require.True(t, ok)
	panel, ok := inst.(interface{ Output() (string, bool) })
	require.True(t, ok)
	got, ran := panel.Output()
	require.True(t, ran)
	require.Equal(t, "15", got)

	_, ok = r.Instance("rune#2")
	require.False(t, ok)
}

type failing struct{ plugin.BaseStrategy }

func (failing) Metadata() plugin.Metadata {
	return plugin.Metadata{Name: "failing", Version: "v0.0.1", Kind: plugin.KindStateless, FenceTags: []string{"boom"}}
}

func (failing) Render(string, plugin.Config) (*html.Node, error) {
	return nil, errors.New("cannot render")
}

func TestRenderer_StatelessFailureDegradesToProse(t *testing.T) {
	registry, err := builtin.NewRegistry(builtin.Options{})
	require.NoError(t, err)
	require.NoError(t, registry.Register(failing{}))

	rec := &recorder{}
	r := New(registry, Options{Recorder: rec})
	setContent(t, r, "```boom\nraw <content>\n```\n")

	cells := match(r.View(), "div.cell")
	require.Len(t, cells, 1)
	require.True(t, dom.HasClass(cells[0], "normal"))
	code := match(cells[0], "code[data-fence=boom]")
	require.Len(t, code, 1)
	require.Equal(t, "raw <content>\n", dom.TextContent(code[0]))
	require.Equal(t, []string{"failing"}, rec.fallbacks)
	require.Equal(t, []metrics.ResultLabel{metrics.ResultWarning}, rec.outcomes)

	failures := r.Failures()
	require.Len(t, failures, 1)
	require.True(t, derrors.IsCategory(failures[0], derrors.CategoryPlugin))
	var pe *plugin.PluginError
	require.True(t, errors.As(failures[0], &pe))
	require.Equal(t, "failing", pe.PluginName)
	require.Equal(t, "render", pe.Operation)
	require.EqualError(t, pe.Unwrap(), "cannot render")

	setContent(t, r, "# fixed\n")
	require.Empty(t, r.Failures())
}

func TestRenderer_FrontmatterTheme(t *testing.T) {
	r := newRenderer(t, nil)
	setContent(t, r, "---\ntitle: Themed\nhighlight_theme: monokai\n---\n```sh\nls\n```\n")

	require.Equal(t, "Themed", r.Title())
	screen := match(r.View(), "div.fake_screen")
	require.Len(t, screen, 1)
	style, _ := dom.GetAttr(screen[0], "style")
	require.Equal(t, "background-color: rgba(39,40,34,1)", style)
}

func TestRenderer_DisableGrouping(t *testing.T) {
	registry, err := builtin.NewRegistry(builtin.Options{})
	require.NoError(t, err)
	r := New(registry, Options{DisableGrouping: true})
	setContent(t, r, sampleDoc)

	cells := match(r.View(), "div.cell")
	require.Len(t, cells, 1)
	require.True(t, dom.HasClass(cells[0], "normal"))
	require.Empty(t, r.Keys())
}

func TestRenderer_EmptyDocument(t *testing.T) {
	r := newRenderer(t, nil)
	require.Equal(t, "", r.Title())
	setContent(t, r, "")

	out, err := r.HTML()
	require.NoError(t, err)
	require.Equal(t, `<div class="rendered_markdown"></div>`, out)
}

func TestRenderer_Style(t *testing.T) {
	r := newRenderer(t, nil)
	css, err := r.Style()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(css, ".cell {"))
	require.Contains(t, css, ".fake_terminal")
	require.Contains(t, css, ".script_panel")
}

func TestQuery_InvalidSelector(t *testing.T) {
	_, err := Query(dom.El("div"), "div[")
	require.Error(t, err)
}

func TestRenderer_CellViewUnknownKey(t *testing.T) {
	r := newRenderer(t, nil)
	setContent(t, r, sampleDoc)
	_, ok := r.CellView("rune#9")
	require.False(t, ok)
}
