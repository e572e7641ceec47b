// Package diagram turns ASCII art into SVG diagrams.
package diagram

import (
	"fmt"
	"strings"

	"github.com/bep/goat"
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/livedoc/internal/dom"
	"git.home.luguber.info/inful/livedoc/internal/plugin"
)

const (
	// FenceBob renders the diagram alone.
	FenceBob = "bob"
	// FenceSideBySide renders the source next to the diagram.
	FenceSideBySide = "{side-to-side.bob}"
)

// Diagram renders `bob` blocks.
type Diagram struct{}

// SideBySide renders `{side-to-side.bob}` blocks.
type SideBySide struct{}

func (Diagram) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:        "diagram",
		Version:     "v1.0.0",
		Kind:        plugin.KindStateless,
		Description: "ASCII art rendered as an SVG diagram",
		FenceTags:   []string{FenceBob},
	}
}

func (Diagram) Style() string {
	return `.bob-diagram svg { max-width: 100%; height: auto; }`
}

func (Diagram) Render(content string, _ plugin.Config) (*html.Node, error) {
	svg, err := SVG(content)
	if err != nil {
		return nil, err
	}
	return dom.Element("div", dom.Attrs(dom.Class("bob-diagram")), svg), nil
}

func (SideBySide) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:        "side-to-side",
		Version:     "v1.0.0",
		Kind:        plugin.KindStateless,
		Description: "ASCII art source next to its SVG diagram",
		FenceTags:   []string{FenceSideBySide},
	}
}

func (SideBySide) Style() string {
	return `.side-to-side { display: flex; gap: 10px; }
.side-to-side > .raw, .side-to-side > .bob { flex: 1; overflow-x: auto; }`
}

func (SideBySide) Render(content string, _ plugin.Config) (*html.Node, error) {
	svg, err := SVG(content)
	if err != nil {
		return nil, err
	}
	return dom.Element("div", dom.Attrs(dom.Class("side-to-side")),
		dom.Element("div", dom.Attrs(dom.Class("raw")),
			dom.El("pre", dom.El("code", dom.Text(content)))),
		dom.Element("div", dom.Attrs(dom.Class("bob")), svg),
	), nil
}

// SVG converts ASCII art to an svg element.
func SVG(art string) (n *html.Node, err error) {
	defer func() {
		// goat panics on write failures and on some malformed canvases.
		if r := recover(); r != nil {
			n, err = nil, fmt.Errorf("build diagram: %v", r)
		}
	}()

	markup := goat.BuildSVG(strings.NewReader(art)).String()
	nodes, err := dom.ParseFragment(markup)
	if err != nil {
		return nil, fmt.Errorf("parse diagram svg: %w", err)
	}
	for _, node := range nodes {
		if dom.IsElement(node, "svg") {
			return node, nil
		}
	}
	return nil, fmt.Errorf("diagram produced no svg element")
}
