package docmodel

import (
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/livedoc/internal/dom"
)

// fenceAttr carries the fence tag on a code block element.
const fenceAttr = "data-fence"

// Cell is one addressable unit of a document: a run of prose or a single
// fenced code block. Nodes is never empty for cells produced by a Builder.
type Cell struct {
	Nodes []*html.Node
}

// CodeBlock is the content extracted from a code cell.
type CodeBlock struct {
	// Fence is the tag after the opening fence; empty for indented blocks.
	Fence   string
	Content string
}

// IsCodeCell reports whether the cell has the code shape: its first node is a
// code element whose first child is a text node. The test is structural only.
func (c Cell) IsCodeCell() bool {
	if len(c.Nodes) == 0 {
		return false
	}
	first := c.Nodes[0]
	return dom.IsElement(first, "code") &&
		first.FirstChild != nil &&
		first.FirstChild.Type == html.TextNode
}

// CodeBlock extracts the fence tag and content of a code cell. It reports
// false for any cell that does not have exactly the shape the builder
// produces, so callers can fall back to rendering the cell as prose.
func (c Cell) CodeBlock() (CodeBlock, bool) {
	if !c.IsCodeCell() || len(c.Nodes) != 1 {
		return CodeBlock{}, false
	}
	code := c.Nodes[0]
	if code.FirstChild != code.LastChild {
		return CodeBlock{}, false
	}
	fence, _ := dom.GetAttr(code, fenceAttr)
	return CodeBlock{Fence: fence, Content: code.FirstChild.Data}, true
}
