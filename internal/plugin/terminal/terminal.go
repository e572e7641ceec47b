// Package terminal renders shell snippets inside a fake terminal window.
package terminal

import (
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/livedoc/internal/dom"
	"git.home.luguber.info/inful/livedoc/internal/plugin"
	"git.home.luguber.info/inful/livedoc/internal/plugin/highlight"
)

const stylesheet = `
.fake_terminal { overflow: hidden; }
.fake_buttons { position: relative; display: flex; left: 10px; top: 5px; }
.fake_btn { height: 10px; width: 10px; border-radius: 50%; border: 1px solid #000; margin: 0 2px; }
.fake_close { background-color: #ff3b47; border-color: #9d252b; }
.fake_minimize { background-color: #ffc100; border-color: #9d802c; }
.fake_zoom { background-color: #00d742; border-color: #049931; }
.fake_menu { width: 100%; box-sizing: border-box; height: 25px; background-color: #151515; border-top-right-radius: 5px; border-top-left-radius: 5px; }
.fake_screen { background-color: #151515; box-sizing: border-box; width: 100%; padding: 20px; border-bottom-left-radius: 5px; border-bottom-right-radius: 5px; }
.fake_terminal p { position: relative; text-align: left; font-size: 14px; font-family: monospace; white-space: nowrap; overflow: hidden; }
.fake_terminal span { color: #fff; font-weight: bold; }
.fake_terminal .line { color: #9CD9F0; }
`

// Terminal renders `sh` and `bash` blocks.
type Terminal struct{}

func (Terminal) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:        "terminal",
		Version:     "v1.0.0",
		Kind:        plugin.KindStateless,
		Description: "Shell commands shown in a fake terminal window",
		FenceTags:   []string{"sh", "bash"},
	}
}

func (Terminal) Style() string {
	return stylesheet
}

// Render draws one p.line per content line, coloured from the highlight theme.
func (Terminal) Render(content string, cfg plugin.Config) (*html.Node, error) {
	palette := highlight.PaletteFor(cfg.HighlightTheme)

	menu := dom.Element("div", dom.Attrs(dom.Class("fake_menu")),
		dom.Element("div", dom.Attrs(dom.Class("fake_buttons")),
			dom.Element("div", dom.Attrs(dom.Class("fake_btn", "fake_close"))),
			dom.Element("div", dom.Attrs(dom.Class("fake_btn", "fake_minimize"))),
			dom.Element("div", dom.Attrs(dom.Class("fake_btn", "fake_zoom"))),
		))
	screen := dom.Element("div", dom.Attrs(dom.Class("fake_screen")))
	if palette.Background != "" {
		dom.SetAttr(menu, "style", "background-color: "+palette.Background)
		dom.SetAttr(screen, "style", "background-color: "+palette.Background)
	}

	for _, line := range Lines(content) {
		p := dom.Element("p", dom.Attrs(dom.Class("line")), dom.Text(line))
		if palette.Foreground != "" {
			dom.SetAttr(p, "style", "color: "+palette.Foreground)
		}
		screen.AppendChild(p)
	}

	return dom.Element("div", dom.Attrs(dom.Class("fake_terminal")), menu, screen), nil
}

// Lines splits s into lines. A final line terminator does not start an extra
// empty line, and a trailing carriage return is dropped from each line.
func Lines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
