package markdown

import (
	"iter"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Tokenizer turns markdown source into a flat event stream. It understands
// CommonMark plus tables, footnotes, strikethrough and task lists.
type Tokenizer struct {
	md goldmark.Markdown
}

// NewTokenizer returns a Tokenizer with the GFM block extensions enabled.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{
		md: goldmark.New(goldmark.WithExtensions(
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
			extension.Footnote,
		)),
	}
}

var defaultTokenizer = NewTokenizer()

// Events tokenizes src with the default tokenizer.
func Events(src []byte) iter.Seq[Event] {
	return defaultTokenizer.Events(src)
}

// Parse parses src into a goldmark AST without producing events.
func (t *Tokenizer) Parse(src []byte) gmast.Node {
	return t.md.Parser().Parse(text.NewReader(src), parser.WithContext(parser.NewContext()))
}

// Events returns the event stream for src. The AST is walked lazily; stopping
// the range loop stops the walk.
func (t *Tokenizer) Events(src []byte) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		root := t.Parse(src)
		w := &walker{src: src, yield: yield, footnotes: footnoteLabels(root)}
		_ = gmast.Walk(root, w.visit)
	}
}

type walker struct {
	src       []byte
	yield     func(Event) bool
	footnotes map[int]string
}

// footnoteLabels maps goldmark's footnote indexes back to their labels.
// References only carry the index.
func footnoteLabels(root gmast.Node) map[int]string {
	labels := make(map[int]string)
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if fn, ok := n.(*east.Footnote); ok && entering {
			labels[fn.Index] = string(fn.Ref)
			return gmast.WalkSkipChildren, nil
		}
		return gmast.WalkContinue, nil
	})
	return labels
}

func (w *walker) emit(ev Event) gmast.WalkStatus {
	if !w.yield(ev) {
		return gmast.WalkStop
	}
	return gmast.WalkContinue
}

// container yields Start on entry and End on exit.
func (w *walker) container(tag Tag, entering bool) (gmast.WalkStatus, error) {
	if entering {
		return w.emit(Start(tag)), nil
	}
	return w.emit(End(tag)), nil
}

// leaf yields a full Start/contents/End sequence and skips the node's children.
func (w *walker) leaf(tag Tag, inner ...Event) (gmast.WalkStatus, error) {
	if w.emit(Start(tag)) == gmast.WalkStop {
		return gmast.WalkStop, nil
	}
	for _, ev := range inner {
		if w.emit(ev) == gmast.WalkStop {
			return gmast.WalkStop, nil
		}
	}
	if w.emit(End(tag)) == gmast.WalkStop {
		return gmast.WalkStop, nil
	}
	return gmast.WalkSkipChildren, nil
}

func (w *walker) visit(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
	switch node := n.(type) {
	case *gmast.Document, *gmast.TextBlock, *east.FootnoteList:
		return gmast.WalkContinue, nil

	case *gmast.Paragraph:
		return w.container(Tag{Kind: TagParagraph}, entering)
	case *gmast.Heading:
		return w.container(Tag{Kind: TagHeading, Level: node.Level}, entering)
	case *gmast.Blockquote:
		return w.container(Tag{Kind: TagBlockQuote}, entering)
	case *gmast.List:
		return w.container(Tag{Kind: TagList, Ordered: node.IsOrdered(), Start: node.Start}, entering)
	case *gmast.ListItem:
		return w.container(Tag{Kind: TagItem}, entering)
	case *gmast.Emphasis:
		if node.Level >= 2 {
			return w.container(Tag{Kind: TagStrong}, entering)
		}
		return w.container(Tag{Kind: TagEmphasis}, entering)
	case *gmast.Link:
		return w.container(Tag{
			Kind:        TagLink,
			Destination: decode(node.Destination),
			Title:       decode(node.Title),
		}, entering)
	case *gmast.Image:
		return w.container(Tag{
			Kind:        TagImage,
			Destination: decode(node.Destination),
			Title:       decode(node.Title),
		}, entering)

	case *east.Table:
		return w.container(Tag{Kind: TagTable, Alignments: alignments(node.Alignments)}, entering)
	case *east.TableHeader:
		return w.container(Tag{Kind: TagTableHead}, entering)
	case *east.TableRow:
		return w.container(Tag{Kind: TagTableRow}, entering)
	case *east.TableCell:
		return w.container(Tag{Kind: TagTableCell}, entering)
	case *east.Strikethrough:
		return w.container(Tag{Kind: TagStrikethrough}, entering)
	case *east.Footnote:
		return w.container(Tag{Kind: TagFootnoteDefinition, Label: string(node.Ref)}, entering)
	}

	if !entering {
		return gmast.WalkContinue, nil
	}

	switch node := n.(type) {
	case *gmast.FencedCodeBlock:
		tag := Tag{Kind: TagCodeBlock, Fenced: true, Fence: string(node.Language(w.src))}
		return w.leaf(tag, codeText(node.Lines().Value(w.src))...)
	case *gmast.CodeBlock:
		return w.leaf(Tag{Kind: TagCodeBlock}, codeText(node.Lines().Value(w.src))...)

	case *gmast.ThematicBreak:
		return w.emit(Rule()), nil

	case *gmast.HTMLBlock:
		for i := 0; i < node.Lines().Len(); i++ {
			line := node.Lines().At(i)
			if w.emit(HTML(string(line.Value(w.src)))) == gmast.WalkStop {
				return gmast.WalkStop, nil
			}
		}
		if node.HasClosure() {
			return w.emit(HTML(string(node.ClosureLine.Value(w.src)))), nil
		}
		return gmast.WalkContinue, nil

	case *gmast.RawHTML:
		for i := 0; i < node.Segments.Len(); i++ {
			seg := node.Segments.At(i)
			if w.emit(HTML(string(seg.Value(w.src)))) == gmast.WalkStop {
				return gmast.WalkStop, nil
			}
		}
		return gmast.WalkContinue, nil

	case *gmast.CodeSpan:
		var b strings.Builder
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *gmast.Text:
				b.Write(t.Segment.Value(w.src))
			case *gmast.String:
				b.Write(t.Value)
			}
		}
		if w.emit(Code(b.String())) == gmast.WalkStop {
			return gmast.WalkStop, nil
		}
		return gmast.WalkSkipChildren, nil

	case *gmast.AutoLink:
		dest := string(node.URL(w.src))
		return w.leaf(Tag{Kind: TagLink, Destination: dest}, Text(string(node.Label(w.src))))

	case *gmast.Text:
		value := node.Segment.Value(w.src)
		text := string(value)
		if !node.IsRaw() {
			text = decode(value)
		}
		if w.emit(Text(text)) == gmast.WalkStop {
			return gmast.WalkStop, nil
		}
		switch {
		case node.HardLineBreak():
			return w.emit(HardBreak()), nil
		case node.SoftLineBreak():
			return w.emit(SoftBreak()), nil
		}
		return gmast.WalkContinue, nil

	case *gmast.String:
		if node.IsRaw() || node.IsCode() {
			return w.emit(Text(string(node.Value))), nil
		}
		return w.emit(Text(decode(node.Value))), nil

	case *east.TaskCheckBox:
		return w.emit(TaskListMarker(node.IsChecked)), nil

	case *east.FootnoteLink:
		label, ok := w.footnotes[node.Index]
		if !ok {
			return gmast.WalkSkipChildren, nil
		}
		if w.emit(FootnoteReference(label)) == gmast.WalkStop {
			return gmast.WalkStop, nil
		}
		return gmast.WalkSkipChildren, nil

	case *east.FootnoteBacklink:
		return gmast.WalkSkipChildren, nil
	}

	// Unknown node kinds from future extensions are transparent.
	return gmast.WalkContinue, nil
}

// decode resolves backslash escapes and entity references the way goldmark's
// HTML writer does for inline text.
func decode(b []byte) string {
	return string(util.ResolveEntityNames(util.ResolveNumericReferences(util.UnescapePunctuations(b))))
}

// codeText yields a single Text event for non-empty code block content.
func codeText(content []byte) []Event {
	if len(content) == 0 {
		return nil
	}
	return []Event{Text(string(content))}
}

func alignments(in []east.Alignment) []Alignment {
	out := make([]Alignment, len(in))
	for i, a := range in {
		switch a {
		case east.AlignLeft:
			out[i] = AlignLeft
		case east.AlignCenter:
			out[i] = AlignCenter
		case east.AlignRight:
			out[i] = AlignRight
		default:
			out[i] = AlignNone
		}
	}
	return out
}
