// Package admonition renders warning, info and note callouts.
package admonition

import (
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/livedoc/internal/dom"
	"git.home.luguber.info/inful/livedoc/internal/plugin"
)

const stylesheet = `
.admonition { border-radius: 10px; padding: 10px 20px; margin: 40px 5px; font-size: 14px; }
.admonition .icon { margin-right: 10px; }
.admonition.warning { background-color: #fa383e; }
.admonition.info { background-color: #54c7ec; }
.admonition.note { background-color: #00a400; }
`

// Icons are inline svg markup keyed by admonition kind.
var icons = map[string]string{
	// flame
	"warning": `<svg xmlns="http://www.w3.org/2000/svg" width="12" height="16" viewBox="0 0 12 16"><path fill-rule="evenodd" d="M5.05.31c.81 2.17.41 3.38-.52 4.31C3.55 5.67 1.98 6.45.9 7.98c-1.45 2.05-1.7 6.53 3.53 7.7-2.2-1.16-2.67-4.52-.3-6.61-.61 2.03.53 3.33 1.94 2.86 1.39-.47 2.3.53 2.27 1.67-.02.78-.31 1.44-1.13 1.81 3.42-.59 4.78-3.42 4.78-5.56 0-2.84-2.53-3.22-1.25-5.61-1.52.13-2.03 1.13-1.89 2.75.09 1.08-1.02 1.8-1.86 1.33-.67-.41-.66-1.19-.06-1.78C8.18 5.31 8.68 2.45 5.05.32L5.03.3l.02.01z"></path></svg>`,
	// exclamation
	"info": `<svg xmlns="http://www.w3.org/2000/svg" width="14" height="16" viewBox="0 0 14 16"><path fill-rule="evenodd" d="M7 2.3c3.14 0 5.7 2.56 5.7 5.7s-2.56 5.7-5.7 5.7A5.71 5.71 0 0 1 1.3 8c0-3.14 2.56-5.7 5.7-5.7zM7 1C3.14 1 0 4.14 0 8s3.14 7 7 7 7-3.14 7-7-3.14-7-7-7zm1 3H6v5h2V4zm0 6H6v2h2v-2z"></path></svg>`,
	// bulb
	"note": `<svg xmlns="http://www.w3.org/2000/svg" width="12" height="16" viewBox="0 0 12 16"><path fill-rule="evenodd" d="M6.5 0C3.48 0 1 2.19 1 5c0 .92.55 2.25 1 3 1.34 2.25 1.78 2.78 2 4v1h5v-1c.22-1.22.66-1.75 2-4 .45-.75 1-2.08 1-3 0-2.81-2.48-5-5.5-5zm3.64 7.48c-.25.44-.47.8-.67 1.11-.86 1.41-1.25 2.06-1.45 3.23-.02.05-.02.11-.02.17H5c0-.06 0-.13-.02-.17-.2-1.17-.59-1.83-1.45-3.23-.2-.31-.42-.67-.67-1.11C2.44 6.78 2 5.65 2 5c0-2.2 2.02-4 4.5-4 1.22 0 2.36.42 3.22 1.19C10.55 2.94 11 3.94 11 5c0 .66-.44 1.78-.86 2.48zM4 14h5c-.23 1.14-1.3 2-2.5 2s-2.27-.86-2.5-2z"></path></svg>`,
}

// Kinds lists the admonition fence tags.
var Kinds = []string{"warning", "info", "note"}

// Admonition renders the admonition fence tags.
type Admonition struct{}

func (Admonition) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:        "admonition",
		Version:     "v1.0.0",
		Kind:        plugin.KindStateless,
		Description: "Highlighted warning, info and note callouts",
		FenceTags:   Kinds,
	}
}

func (Admonition) Style() string {
	return stylesheet
}

// Render renders content as a note. RenderBlock picks the kind from the fence.
func (a Admonition) Render(content string, cfg plugin.Config) (*html.Node, error) {
	return a.RenderFenced("note", content, cfg)
}

// RenderFenced renders a callout for the kind named by fence.
func (Admonition) RenderFenced(fence, content string, _ plugin.Config) (*html.Node, error) {
	markup, ok := icons[fence]
	if !ok {
		return nil, fmt.Errorf("unknown admonition kind %q", fence)
	}
	icon, err := dom.ParseFragment(markup)
	if err != nil {
		return nil, fmt.Errorf("parse %s icon: %w", fence, err)
	}

	label := cases.Upper(language.Und).String(fence)
	return dom.Element("div", dom.Attrs(dom.Class("admonition", fence)),
		dom.El("div",
			dom.Element("span", dom.Attrs(dom.Class("icon")), icon...),
			dom.Text(label)),
		dom.Text(content),
	), nil
}
