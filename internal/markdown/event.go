package markdown

import "fmt"

// EventKind identifies the shape of an Event.
type EventKind uint8

const (
	EventStart EventKind = iota + 1
	EventEnd
	EventText
	EventCode
	EventHTML
	EventFootnoteReference
	EventRule
	EventSoftBreak
	EventHardBreak
	EventTaskListMarker
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventEnd:
		return "end"
	case EventText:
		return "text"
	case EventCode:
		return "code"
	case EventHTML:
		return "html"
	case EventFootnoteReference:
		return "footnote-reference"
	case EventRule:
		return "rule"
	case EventSoftBreak:
		return "soft-break"
	case EventHardBreak:
		return "hard-break"
	case EventTaskListMarker:
		return "task-list-marker"
	default:
		return fmt.Sprintf("event(%d)", uint8(k))
	}
}

// TagKind identifies the container opened by an EventStart or closed by an EventEnd.
type TagKind uint8

const (
	TagParagraph TagKind = iota + 1
	TagHeading
	TagBlockQuote
	TagCodeBlock
	TagList
	TagItem
	TagTable
	TagTableHead
	TagTableRow
	TagTableCell
	TagEmphasis
	TagStrong
	TagStrikethrough
	TagLink
	TagImage
	TagFootnoteDefinition
)

// Alignment is a table column alignment.
type Alignment uint8

const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Tag describes a container element. Only the fields relevant to Kind are set.
type Tag struct {
	Kind TagKind

	// Heading
	Level int

	// CodeBlock. Fence is empty for indented blocks.
	Fence  string
	Fenced bool

	// List
	Ordered bool
	Start   int

	// Table
	Alignments []Alignment

	// Link, Image
	Destination string
	Title       string

	// FootnoteDefinition
	Label string
}

// Event is one step of the structural event stream produced from markdown source.
type Event struct {
	Kind EventKind
	Tag  Tag

	// Text, Code, HTML and FootnoteReference (the footnote label).
	Text string

	// TaskListMarker
	Checked bool
}

// Event constructors, mostly useful for building streams by hand.

func Start(tag Tag) Event {
	return Event{Kind: EventStart, Tag: tag}
}

func End(tag Tag) Event {
	return Event{Kind: EventEnd, Tag: tag}
}

func Text(s string) Event {
	return Event{Kind: EventText, Text: s}
}

func Code(s string) Event {
	return Event{Kind: EventCode, Text: s}
}

func HTML(s string) Event {
	return Event{Kind: EventHTML, Text: s}
}

func FootnoteReference(label string) Event {
	return Event{Kind: EventFootnoteReference, Text: label}
}

func Rule() Event {
	return Event{Kind: EventRule}
}

func SoftBreak() Event {
	return Event{Kind: EventSoftBreak}
}

func HardBreak() Event {
	return Event{Kind: EventHardBreak}
}

func TaskListMarker(checked bool) Event {
	return Event{Kind: EventTaskListMarker, Checked: checked}
}
