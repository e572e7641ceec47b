package markdown

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func collect(src string) []Event {
	return slices.Collect(Events([]byte(src)))
}

func TestEvents_HeadingAndEmphasis(t *testing.T) {
	got := collect("# Title\n\nHello *world*\n")

	require.Equal(t, []Event{
		Start(Tag{Kind: TagHeading, Level: 1}),
		Text("Title"),
		End(Tag{Kind: TagHeading, Level: 1}),
		Start(Tag{Kind: TagParagraph}),
		Text("Hello "),
		Start(Tag{Kind: TagEmphasis}),
		Text("world"),
		End(Tag{Kind: TagEmphasis}),
		End(Tag{Kind: TagParagraph}),
	}, got)
}

func TestEvents_FencedCodeBlockIsOneText(t *testing.T) {
	got := collect("```bob\n+--+\n|  |\n+--+\n```\n")

	tag := Tag{Kind: TagCodeBlock, Fenced: true, Fence: "bob"}
	require.Equal(t, []Event{
		Start(tag),
		Text("+--+\n|  |\n+--+\n"),
		End(tag),
	}, got)
}

func TestEvents_BracedFenceTag(t *testing.T) {
	got := collect("```{side-to-side.bob}\n-->\n```\n")
	require.NotEmpty(t, got)
	require.Equal(t, EventStart, got[0].Kind)
	require.Equal(t, "{side-to-side.bob}", got[0].Tag.Fence)
}

func TestEvents_IndentedCodeBlockHasNoFence(t *testing.T) {
	got := collect("    let x = 1\n")
	require.Len(t, got, 3)
	require.Equal(t, TagCodeBlock, got[0].Tag.Kind)
	require.False(t, got[0].Tag.Fenced)
	require.Empty(t, got[0].Tag.Fence)
	require.Equal(t, "let x = 1\n", got[1].Text)
}

func TestEvents_FootnoteReferencesCarryLabels(t *testing.T) {
	got := collect("A[^a] B[^b] C[^a]\n\n[^b]: bee\n\n[^a]: ay\n")

	var refs, defs []string
	for _, ev := range got {
		switch {
		case ev.Kind == EventFootnoteReference:
			refs = append(refs, ev.Text)
		case ev.Kind == EventStart && ev.Tag.Kind == TagFootnoteDefinition:
			defs = append(defs, ev.Tag.Label)
		}
	}
	require.Equal(t, []string{"a", "b", "a"}, refs)
	require.ElementsMatch(t, []string{"a", "b"}, defs)
}

func TestEvents_TableAlignments(t *testing.T) {
	got := collect("| a | b | c |\n|:--|---|--:|\n| 1 | 2 | 3 |\n")

	require.Equal(t, EventStart, got[0].Kind)
	require.Equal(t, TagTable, got[0].Tag.Kind)
	require.Equal(t, []Alignment{AlignLeft, AlignNone, AlignRight}, got[0].Tag.Alignments)
	require.Equal(t, TagTableHead, got[1].Tag.Kind)
}

func TestEvents_TaskListMarker(t *testing.T) {
	got := collect("- [x] done\n- [ ] todo\n")

	var markers []bool
	for _, ev := range got {
		if ev.Kind == EventTaskListMarker {
			markers = append(markers, ev.Checked)
		}
	}
	require.Equal(t, []bool{true, false}, markers)
}

func TestEvents_InlineHTMLFragments(t *testing.T) {
	got := collect("a <b>bold</b> c\n")

	var fragments []string
	for _, ev := range got {
		if ev.Kind == EventHTML {
			fragments = append(fragments, ev.Text)
		}
	}
	require.Equal(t, []string{"<b>", "</b>"}, fragments)
}

func TestEvents_BalancedStartEnd(t *testing.T) {
	src := "# T\n\n> quote with `code` and [link](x \"t\")\n\n1. one\n2. ~~two~~\n\n---\n\n![alt](img.png)\n"
	depth := 0
	for ev := range Events([]byte(src)) {
		switch ev.Kind {
		case EventStart:
			depth++
		case EventEnd:
			depth--
			require.GreaterOrEqual(t, depth, 0)
		}
	}
	require.Zero(t, depth)
}

func TestEvents_StopsWhenConsumerBreaks(t *testing.T) {
	count := 0
	for range Events([]byte("# a\n\nb\n\nc\n")) {
		count++
		if count == 2 {
			break
		}
	}
	require.Equal(t, 2, count)
}

// inlineText joins the Text payloads of a stream.
func inlineText(events []Event) string {
	var b strings.Builder
	for _, ev := range events {
		if ev.Kind == EventText {
			b.WriteString(ev.Text)
		}
	}
	return b.String()
}

func TestEvents_TextResolvesEscapesAndEntities(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"backslash escape", "a \\* b\n", "a * b"},
		{"named and numeric entities", "&copy; &amp; &#65; x\n", "© & A x"},
		{"heading", "# T &amp; U\n", "T & U"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, inlineText(collect(tt.src)))
		})
	}
}

func TestEvents_CodeKeepsEscapesAndEntities(t *testing.T) {
	got := collect("`&amp; \\*`\n\n```\n&copy; \\*\n```\n")
	require.Contains(t, got, Code("&amp; \\*"))
	require.Contains(t, got, Text("&copy; \\*\n"))
}

func TestEvents_LinkDestinationAndTitleAreDecoded(t *testing.T) {
	got := collect("[l](/a\\_b \"t &amp; u\")\n")
	require.Equal(t, Tag{Kind: TagLink, Destination: "/a_b", Title: "t & u"}, got[1].Tag)
	require.Equal(t, EventStart, got[1].Kind)
}
