// Package preview keeps one document file live: it reloads the file into a
// renderer when it changes and notifies subscribers of the new fingerprint.
package preview

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"sync"

	"git.home.luguber.info/inful/livedoc/internal/components"
	"git.home.luguber.info/inful/livedoc/internal/dom"
	"git.home.luguber.info/inful/livedoc/internal/errors"
	"git.home.luguber.info/inful/livedoc/internal/logfields"
	"git.home.luguber.info/inful/livedoc/internal/render"
)

// SessionOptions configures a Session.
type SessionOptions struct {
	// ExecuteScripts runs every script panel after each successful load.
	ExecuteScripts bool

	// Title is used for the page when the document has none.
	Title string
}

// Session owns a renderer and the file it renders. Every method is safe for
// concurrent use; render passes are serialised.
type Session struct {
	mu       sync.Mutex
	path     string
	opts     SessionOptions
	renderer *render.Renderer

	content []byte
	loaded  bool
	lastErr error
}

// NewSession creates a session rendering path through r. Nothing is read
// until the first Reload.
func NewSession(path string, r *render.Renderer, opts SessionOptions) *Session {
	return &Session{path: path, opts: opts, renderer: r}
}

// Path returns the document path.
func (s *Session) Path() string {
	return s.path
}

// Reload reads the file and re-renders it when its bytes changed. It reports
// whether the document was replaced. On error the previous document stays.
func (s *Session) Reload() (bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		err = errors.DocumentReadError(s.path, err)
		s.setErr(err)
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded && bytes.Equal(data, s.content) {
		s.lastErr = nil
		return false, nil
	}
	if err := s.renderer.SetContent(data); err != nil {
		s.lastErr = err
		return false, err
	}
	s.content = data
	s.loaded = true
	s.lastErr = nil

	if s.opts.ExecuteScripts {
		n := s.renderer.ExecuteAll()
		slog.Debug("Executed script panels", logfields.Path(s.path), logfields.Cells(n))
	}
	return true, nil
}

func (s *Session) setErr(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

// LastError returns the error of the most recent failed Reload, or nil once
// a reload succeeds.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Fingerprint identifies the loaded document content.
func (s *Session) Fingerprint() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderer.Fingerprint()
}

// Title returns the document title, falling back to the configured one.
func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.renderer.Title(); t != "" {
		return t
	}
	return s.opts.Title
}

// Keys lists the live component keys.
func (s *Session) Keys() []components.Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderer.Keys()
}

// Cells returns the number of cells in the loaded document.
func (s *Session) Cells() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc := s.renderer.Document(); doc != nil {
		return len(doc.Cells)
	}
	return 0
}

// WritePage renders the full page.
func (s *Session) WritePage(w io.Writer, liveReload bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderer.WritePage(w, render.PageOptions{Title: s.opts.Title, LiveReload: liveReload})
}

// Style returns the aggregated stylesheet.
func (s *Session) Style() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderer.Style()
}

// WriteCell renders the view of one stateful cell. It reports false when key
// is not live.
func (s *Session) WriteCell(w io.Writer, key components.Key) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.renderer.CellView(key)
	if !ok {
		return false, nil
	}
	out, err := dom.Render(n)
	if err != nil {
		return true, err
	}
	_, err = io.WriteString(w, out)
	return true, err
}

// Close releases every live component.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderer.Close()
}
