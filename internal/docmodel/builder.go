package docmodel

import (
	stdErrors "errors"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/livedoc/internal/dom"
	"git.home.luguber.info/inful/livedoc/internal/errors"
	"git.home.luguber.info/inful/livedoc/internal/markdown"
)

// ErrMalformedEventStream is the cause of every builder contract violation:
// a heading level outside [1,6], an End event with nothing open, or a stream
// that ends with open elements.
var ErrMalformedEventStream = stdErrors.New("malformed markdown event stream")

// Builder consumes markdown events and produces cells. A Builder is single use.
type Builder struct {
	opts Options

	cells      []Cell
	lastIsCode bool

	// useNextGroup is set when a top-level code block opens; its close then
	// starts a cell of its own.
	useNextGroup bool

	spine       []*html.Node
	tableAligns [][]markdown.Alignment
	inTableHead bool

	title     strings.Builder
	inTitle   bool
	titleDone bool

	footnotes map[string]int

	pendingHTML strings.Builder
	hasHTML     bool
}

// NewBuilder returns a Builder configured by opts.
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts, footnotes: make(map[string]int)}
}

// Consume processes every event of seq. It stops at the first contract violation.
func (b *Builder) Consume(seq iter.Seq[markdown.Event]) error {
	for ev := range seq {
		if err := b.handle(ev); err != nil {
			return err
		}
	}
	b.flushHTML()
	if len(b.spine) != 0 {
		return malformed("stream ended with open elements", fmt.Sprintf("%d open", len(b.spine)))
	}
	return nil
}

// Cells returns the cells built so far.
func (b *Builder) Cells() []Cell {
	return b.cells
}

// Title returns the text of the first level-1 heading.
func (b *Builder) Title() string {
	return b.title.String()
}

// Footnotes returns the assigned footnote numbers by label.
func (b *Builder) Footnotes() map[string]int {
	return b.footnotes
}

func (b *Builder) handle(ev markdown.Event) error {
	if ev.Kind == markdown.EventHTML {
		b.pendingHTML.WriteString(ev.Text)
		b.hasHTML = true
		return nil
	}
	b.flushHTML()

	switch ev.Kind {
	case markdown.EventStart:
		return b.open(ev.Tag)
	case markdown.EventEnd:
		return b.close(ev.Tag)
	case markdown.EventText:
		if b.inTitle {
			b.title.WriteString(ev.Text)
		}
		b.add(dom.Text(ev.Text))
	case markdown.EventCode:
		if b.inTitle {
			b.title.WriteString(ev.Text)
		}
		b.add(dom.El("code", dom.Text(ev.Text)))
	case markdown.EventFootnoteReference:
		n := b.footnoteNumber(ev.Text)
		b.add(dom.Element("sup", dom.Attrs(dom.Class("footnote-reference")),
			dom.Element("a", dom.Attrs(dom.Attr("href", "#"+ev.Text)),
				dom.Text(strconv.Itoa(n)))))
	case markdown.EventRule:
		b.add(dom.El("hr"))
	case markdown.EventSoftBreak:
		b.add(dom.Text("\n"))
	case markdown.EventHardBreak:
		b.add(dom.El("br"))
	case markdown.EventTaskListMarker:
		attrs := dom.Attrs(dom.Attr("type", "checkbox"), dom.Attr("disabled", ""))
		if ev.Checked {
			attrs = append(attrs, dom.Attr("checked", ""))
		}
		b.add(dom.Element("input", attrs))
	}
	return nil
}

func (b *Builder) open(tag markdown.Tag) error {
	var n *html.Node
	switch tag.Kind {
	case markdown.TagParagraph:
		n = dom.El("p")
	case markdown.TagHeading:
		if tag.Level < 1 || tag.Level > 6 {
			return malformed("heading level out of range", tag.Level)
		}
		n = dom.El("h" + strconv.Itoa(tag.Level))
		if tag.Level == 1 && !b.titleDone {
			b.inTitle = true
		}
	case markdown.TagBlockQuote:
		n = dom.El("blockquote")
	case markdown.TagCodeBlock:
		n = dom.El("code")
		if tag.Fence != "" {
			dom.SetAttr(n, fenceAttr, tag.Fence)
		}
		if len(b.spine) == 0 {
			b.useNextGroup = true
		}
	case markdown.TagList:
		if tag.Ordered {
			n = dom.El("ol")
			if tag.Start != 1 {
				dom.SetAttr(n, "start", strconv.Itoa(tag.Start))
			}
		} else {
			n = dom.El("ul")
		}
	case markdown.TagItem:
		n = dom.El("li")
	case markdown.TagTable:
		n = dom.El("table")
		b.tableAligns = append(b.tableAligns, tag.Alignments)
	case markdown.TagTableHead:
		n = dom.El("tr")
		b.inTableHead = true
	case markdown.TagTableRow:
		n = dom.El("tr")
	case markdown.TagTableCell:
		if b.inTableHead {
			n = dom.El("th")
		} else {
			n = dom.El("td")
		}
	case markdown.TagEmphasis:
		n = dom.El("em")
	case markdown.TagStrong:
		n = dom.El("strong")
	case markdown.TagStrikethrough:
		n = dom.El("del")
	case markdown.TagLink:
		n = dom.Element("a", dom.Attrs(dom.Attr("href", tag.Destination)))
		if tag.Title != "" {
			dom.SetAttr(n, "title", tag.Title)
		}
	case markdown.TagImage:
		n = dom.Element("img", dom.Attrs(dom.Attr("src", tag.Destination)))
		if tag.Title != "" {
			dom.SetAttr(n, "title", tag.Title)
		}
	case markdown.TagFootnoteDefinition:
		num := b.footnoteNumber(tag.Label)
		n = dom.Element("footer", dom.Attrs(dom.Class("footnote-definition"), dom.Attr("id", tag.Label)),
			dom.Element("sup", dom.Attrs(dom.Class("footnote-label")), dom.Text(strconv.Itoa(num))))
	default:
		return malformed("unknown tag", int(tag.Kind))
	}
	b.spine = append(b.spine, n)
	return nil
}

func (b *Builder) close(tag markdown.Tag) error {
	if len(b.spine) == 0 {
		return malformed("end event with empty spine", int(tag.Kind))
	}
	n := b.spine[len(b.spine)-1]
	b.spine = b.spine[:len(b.spine)-1]

	switch tag.Kind {
	case markdown.TagHeading:
		if b.inTitle {
			b.inTitle = false
			b.titleDone = true
		}
	case markdown.TagTableHead:
		b.inTableHead = false
	case markdown.TagTable:
		if k := len(b.tableAligns); k > 0 {
			applyAlignments(n, b.tableAligns[k-1])
			b.tableAligns = b.tableAligns[:k-1]
		}
	case markdown.TagImage:
		// img is a void element: its text children become the alt text.
		alt := dom.TextContent(n)
		for c := n.FirstChild; c != nil; c = n.FirstChild {
			n.RemoveChild(c)
		}
		dom.SetAttr(n, "alt", alt)
	case markdown.TagCodeBlock:
		if len(b.spine) == 0 && b.useNextGroup {
			b.useNextGroup = false
			b.addTopLevel(n, true)
			return nil
		}
		n = dom.El("pre", n)
	}

	b.add(n)
	return nil
}

// add appends n to the innermost open element, or to the cell sequence at top level.
func (b *Builder) add(n *html.Node) {
	if len(b.spine) > 0 {
		b.spine[len(b.spine)-1].AppendChild(n)
		return
	}
	b.addTopLevel(n, false)
}

func (b *Builder) addTopLevel(n *html.Node, code bool) {
	if b.opts.DisableGrouping {
		if len(b.cells) == 0 {
			b.cells = append(b.cells, Cell{})
		}
		b.cells[0].Nodes = append(b.cells[0].Nodes, n)
		return
	}
	if code || len(b.cells) == 0 || b.lastIsCode {
		b.cells = append(b.cells, Cell{Nodes: []*html.Node{n}})
		b.lastIsCode = code
		return
	}
	last := &b.cells[len(b.cells)-1]
	last.Nodes = append(last.Nodes, n)
}

// flushHTML emits the accumulated inline markup as one text node.
func (b *Builder) flushHTML() {
	if !b.hasHTML {
		return
	}
	s := b.pendingHTML.String()
	b.pendingHTML.Reset()
	b.hasHTML = false
	b.add(dom.Text(s))
}

func (b *Builder) footnoteNumber(label string) int {
	if n, ok := b.footnotes[label]; ok {
		return n
	}
	n := len(b.footnotes) + 1
	b.footnotes[label] = n
	return n
}

var alignClasses = map[markdown.Alignment]string{
	markdown.AlignLeft:   "text-left",
	markdown.AlignCenter: "text-center",
	markdown.AlignRight:  "text-right",
}

func applyAlignments(table *html.Node, aligns []markdown.Alignment) {
	for row := table.FirstChild; row != nil; row = row.NextSibling {
		if !dom.IsElement(row, "tr") {
			continue
		}
		i := 0
		for cell := row.FirstChild; cell != nil; cell = cell.NextSibling {
			if cell.Type != html.ElementNode {
				continue
			}
			if i < len(aligns) {
				if class, ok := alignClasses[aligns[i]]; ok {
					dom.AddClass(cell, class)
				}
			}
			i++
		}
	}
}

func malformed(reason string, detail any) error {
	return errors.MalformedDocument(reason, ErrMalformedEventStream).WithContext("detail", detail)
}
