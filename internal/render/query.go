package render

import (
	"fmt"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/livedoc/internal/components"
)

// Query returns the nodes below root matching a CSS selector.
func Query(root *html.Node, selector string) ([]*html.Node, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	return sel.MatchAll(root), nil
}

// CellView returns the view of the stateful cell with key, or false when no
// live cell has that key.
func (r *Renderer) CellView(key components.Key) (*html.Node, bool) {
	matches, err := Query(r.View(), fmt.Sprintf("div.cell[data-cell-key=%q]", string(key)))
	if err != nil || len(matches) == 0 {
		return nil, false
	}
	n := matches[0]
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
	return n, true
}
