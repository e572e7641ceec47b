package handlers

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"git.home.luguber.info/inful/livedoc/internal/components"
	"git.home.luguber.info/inful/livedoc/internal/errors"
)

// Document is the live document served by the handlers.
type Document interface {
	WritePage(w io.Writer, liveReload bool) error
	Style() (string, error)
	WriteCell(w io.Writer, key components.Key) (bool, error)
	Fingerprint() string
}

// DocumentHandlers serve the rendered document.
type DocumentHandlers struct {
	doc          Document
	liveReload   bool
	errorAdapter *errors.HTTPErrorAdapter
}

// NewDocumentHandlers creates document handlers. liveReload embeds the
// reload client into served pages.
func NewDocumentHandlers(doc Document, liveReload bool, adapter *errors.HTTPErrorAdapter) *DocumentHandlers {
	if adapter == nil {
		adapter = errors.NewHTTPErrorAdapter(slog.Default())
	}
	return &DocumentHandlers{doc: doc, liveReload: liveReload, errorAdapter: adapter}
}

// HandlePage serves the full page. The document fingerprint is the ETag.
func (h *DocumentHandlers) HandlePage(w http.ResponseWriter, r *http.Request) {
	if fp := h.doc.Fingerprint(); fp != "" {
		etag := `"` + fp + `"`
		w.Header().Set("ETag", etag)
		if match := r.Header.Get("If-None-Match"); match == etag || match == "*" {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	var buf bytes.Buffer
	if err := h.doc.WritePage(&buf, h.liveReload); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	writeBody(w, "text/html; charset=utf-8", buf.Bytes())
}

// HandleStyle serves the aggregated stylesheet.
func (h *DocumentHandlers) HandleStyle(w http.ResponseWriter, r *http.Request) {
	css, err := h.doc.Style()
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	writeBody(w, "text/css; charset=utf-8", []byte(css))
}

// HandleCell serves the current view of the stateful cell named by the
// "key" path value, e.g. /cells/rune%230.
func (h *DocumentHandlers) HandleCell(w http.ResponseWriter, r *http.Request) {
	key := components.Key(r.PathValue("key"))

	var buf bytes.Buffer
	found, err := h.doc.WriteCell(&buf, key)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.InternalError("failed to render cell", err).
			WithContext("key", string(key)))
		return
	}
	if !found {
		h.errorAdapter.WriteErrorResponse(w, r, errors.New(errors.CategoryNotFound, errors.SeverityInfo, "unknown cell").
			WithContext("key", string(key)))
		return
	}
	writeBody(w, "text/html; charset=utf-8", buf.Bytes())
}

// HandleNotFound answers every unknown route.
func (h *DocumentHandlers) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	h.errorAdapter.WriteErrorResponse(w, r, errors.NotFound(r.URL.Path))
}
