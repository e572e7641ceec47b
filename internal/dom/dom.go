// Package dom holds small helpers for building and inspecting display trees.
// Display trees are golang.org/x/net/html nodes restricted to elements, text
// and comments.
package dom

import (
	"bytes"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element creates an element node. Children must not already have a parent.
func Element(tag string, attrs []html.Attribute, children ...*html.Node) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
	Append(n, children...)
	return n
}

// El is Element without attributes.
func El(tag string, children ...*html.Node) *html.Node {
	return Element(tag, nil, children...)
}

// Text creates a text node. Data is stored raw and escaped on render.
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// Comment creates a comment node.
func Comment(s string) *html.Node {
	return &html.Node{Type: html.CommentNode, Data: s}
}

// Attr builds a single attribute.
func Attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

// Class builds a class attribute from one or more class names.
func Class(names ...string) html.Attribute {
	return html.Attribute{Key: "class", Val: strings.Join(names, " ")}
}

// Attrs is a convenience for building attribute lists inline.
func Attrs(attrs ...html.Attribute) []html.Attribute {
	return attrs
}

// Append adds children to parent in order. Nil children are skipped.
func Append(parent *html.Node, children ...*html.Node) {
	for _, c := range children {
		if c == nil {
			continue
		}
		parent.AppendChild(c)
	}
}

// Children returns the direct children of n.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// GetAttr returns the value of key on n.
func GetAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key && a.Namespace == "" {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets key on n, replacing an existing value.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key && a.Namespace == "" {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// AddClass appends class to n's class list.
func AddClass(n *html.Node, class string) {
	if HasClass(n, class) {
		return
	}
	if cur, ok := GetAttr(n, "class"); ok && cur != "" {
		SetAttr(n, "class", cur+" "+class)
		return
	}
	SetAttr(n, "class", class)
}

// HasClass reports whether class appears in n's class list.
func HasClass(n *html.Node, class string) bool {
	cur, ok := GetAttr(n, "class")
	if !ok {
		return false
	}
	return slices.Contains(strings.Fields(cur), class)
}

// IsElement reports whether n is an element with the given tag.
func IsElement(n *html.Node, tag string) bool {
	return n != nil && n.Type == html.ElementNode && n.Data == tag
}

// TextContent concatenates all text below n.
func TextContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// Clone deep-copies n. The copy has no parent or siblings.
func Clone(n *html.Node) *html.Node {
	out := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      slices.Clone(n.Attr),
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out.AppendChild(Clone(c))
	}
	return out
}

// CloneAll deep-copies every node in ns.
func CloneAll(ns []*html.Node) []*html.Node {
	out := make([]*html.Node, len(ns))
	for i, n := range ns {
		out[i] = Clone(n)
	}
	return out
}

// Equal reports whether a and b are structurally identical trees.
func Equal(a, b *html.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type != b.Type || a.Data != b.Data || a.Namespace != b.Namespace {
		return false
	}
	if !slices.Equal(a.Attr, b.Attr) {
		return false
	}
	ca, cb := a.FirstChild, b.FirstChild
	for ca != nil && cb != nil {
		if !Equal(ca, cb) {
			return false
		}
		ca, cb = ca.NextSibling, cb.NextSibling
	}
	return ca == nil && cb == nil
}

// EqualAll compares two node sequences with Equal.
func EqualAll(a, b []*html.Node) bool {
	return slices.EqualFunc(a, b, Equal)
}

// Render serialises nodes in order.
func Render(nodes ...*html.Node) (string, error) {
	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// ParseFragment parses markup in the context of a div element. The returned
// nodes are detached and can be appended anywhere.
func ParseFragment(markup string) ([]*html.Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	return html.ParseFragment(strings.NewReader(markup), context)
}
