package render

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/livedoc/internal/dom"
)

const pageStyle = `body { font-family: "JuliaMono", "Fira Sans", "Courier New", Courier, "Lucida Sans Typewriter", "Lucida Typewriter", monospace; margin: 0; }
#app_container { width: 100%; height: 100%; }`

// LiveReloadScript reloads the page when the server reports a new document
// fingerprint on /livereload.
const LiveReloadScript = `(() => {
  if (window.__LIVEDOC_LR__) return;
  window.__LIVEDOC_LR__ = true;
  function connect() {
    const es = new EventSource('/livereload');
    let current = null;
    es.onmessage = (e) => {
      try {
        const p = JSON.parse(e.data);
        if (current === null) { current = p.hash; return; }
        if (p.hash && p.hash !== current) { location.reload(); }
      } catch (_) {}
    };
    es.onerror = () => { es.close(); setTimeout(connect, 2000); };
  }
  connect();
})();`

// PageOptions controls the standalone page.
type PageOptions struct {
	// Title is used when the document has none.
	Title string

	// LiveReload embeds the live-reload client script.
	LiveReload bool
}

// Page builds a complete HTML document around the current view.
func (r *Renderer) Page(opts PageOptions) (*html.Node, error) {
	css, err := r.Style()
	if err != nil {
		return nil, err
	}
	title := r.Title()
	if title == "" {
		title = opts.Title
	}

	head := dom.El("head",
		dom.Element("meta", dom.Attrs(dom.Attr("charset", "utf-8"))),
		dom.Element("meta", dom.Attrs(
			dom.Attr("name", "viewport"),
			dom.Attr("content", "width=device-width, initial-scale=1"))),
		dom.El("title", dom.Text(title)),
		dom.Element("style", dom.Attrs(dom.Attr("type", "text/css")),
			dom.Text(strings.Join([]string{pageStyle, css}, "\n"))),
	)
	body := dom.El("body",
		dom.Element("main", dom.Attrs(dom.Attr("id", "app_container")), r.View()))
	if opts.LiveReload {
		body.AppendChild(dom.Element("script", dom.Attrs(dom.Attr("type", "text/javascript")),
			dom.Text(LiveReloadScript)))
	}

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(&html.Node{Type: html.ElementNode, Data: "html", DataAtom: atom.Html})
	dom.Append(doc.LastChild, head, body)
	return doc, nil
}

// WritePage renders the page to w.
func (r *Renderer) WritePage(w io.Writer, opts PageOptions) error {
	page, err := r.Page(opts)
	if err != nil {
		return err
	}
	return html.Render(w, page)
}
