// Package highlight renders code blocks with chroma. It is the registry's
// fallback strategy and also supplies theme colours to other plugins.
package highlight

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/livedoc/internal/dom"
	"git.home.luguber.info/inful/livedoc/internal/plugin"
)

// Strategy highlights code using the fence tag as the language name.
type Strategy struct {
	plugin.BaseStrategy
}

// New returns the highlighting strategy.
func New() *Strategy {
	return &Strategy{}
}

func (s *Strategy) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:        "highlight",
		Version:     "v1.0.0",
		Kind:        plugin.KindStateless,
		Description: "Syntax highlighted code block",
	}
}

func (s *Strategy) Style() string {
	return `.highlight { overflow-x: auto; padding: 10px; border-radius: 5px; }`
}

// Render highlights content as plain text.
func (s *Strategy) Render(content string, cfg plugin.Config) (*html.Node, error) {
	return Highlight(content, "", cfg.HighlightTheme)
}

// RenderFenced highlights content for the language named by fence.
func (s *Strategy) RenderFenced(fence, content string, cfg plugin.Config) (*html.Node, error) {
	return Highlight(content, fence, cfg.HighlightTheme)
}

// Highlight renders code as a pre.highlight element with inline styles taken
// from theme. Unknown languages fall back to plain text.
func Highlight(code, language, theme string) (*html.Node, error) {
	lexer := lexers.Get(language)
	if language == "" || lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return nil, fmt.Errorf("tokenise %q: %w", language, err)
	}

	var buf strings.Builder
	formatter := chromahtml.New(chromahtml.WithClasses(false))
	if err := formatter.Format(&buf, Style(theme), iterator); err != nil {
		return nil, fmt.Errorf("format %q: %w", language, err)
	}

	nodes, err := dom.ParseFragment(buf.String())
	if err != nil {
		return nil, fmt.Errorf("parse highlighted markup: %w", err)
	}
	if len(nodes) == 1 && dom.IsElement(nodes[0], "pre") {
		dom.AddClass(nodes[0], "highlight")
		return nodes[0], nil
	}
	return dom.Element("div", dom.Attrs(dom.Class("highlight")), nodes...), nil
}

// Style returns the chroma style called name, or the default theme's style.
func Style(name string) *chroma.Style {
	if s, ok := styles.Registry[name]; ok {
		return s
	}
	if s, ok := styles.Registry[plugin.DefaultHighlightTheme]; ok {
		return s
	}
	return styles.Fallback
}

// ThemeExists reports whether name is a known chroma style.
func ThemeExists(name string) bool {
	_, ok := styles.Registry[name]
	return ok
}

// Themes lists the known style names.
func Themes() []string {
	return styles.Names()
}

// Palette holds the background and foreground colours of a theme as CSS
// colour values. Empty fields mean the theme leaves the colour unset.
type Palette struct {
	Background string
	Foreground string
}

// PaletteFor returns the palette of the named theme.
func PaletteFor(theme string) Palette {
	entry := Style(theme).Get(chroma.Text)
	var p Palette
	if entry.Background.IsSet() {
		p.Background = rgba(entry.Background)
	}
	if entry.Colour.IsSet() {
		p.Foreground = rgba(entry.Colour)
	}
	return p
}

func rgba(c chroma.Colour) string {
	return fmt.Sprintf("rgba(%d,%d,%d,1)", c.Red(), c.Green(), c.Blue())
}
