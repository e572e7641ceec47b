package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/livedoc/internal/errors"
	"git.home.luguber.info/inful/livedoc/internal/metrics"
	"git.home.luguber.info/inful/livedoc/internal/plugin/builtin"
	"git.home.luguber.info/inful/livedoc/internal/preview"
	"git.home.luguber.info/inful/livedoc/internal/render"
	"git.home.luguber.info/inful/livedoc/internal/server/responses"
)

const doc = "# Served\n\n```rune\ndef main(number):\n    return number * 2\n```\n"

func newSession(t *testing.T) *preview.Session {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	registry, err := builtin.NewRegistry(builtin.Options{})
	require.NoError(t, err)
	s := preview.NewSession(path, render.New(registry, render.Options{}), preview.SessionOptions{ExecuteScripts: true})
	_, err = s.Reload()
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRoutes(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	srv := New(newSession(t), Options{
		LiveReload:  true,
		MetricsPath: "/metrics",
		Metrics:     metrics.HTTPHandler(reg),
		Recorder:    rec,
	})
	h := srv.Handler()

	page := get(t, h, "/")
	require.Equal(t, http.StatusOK, page.Code)
	require.Contains(t, page.Body.String(), "<title>Served</title>")
	require.Contains(t, page.Body.String(), "EventSource('/livereload')")

	css := get(t, h, "/style.css")
	require.Equal(t, http.StatusOK, css.Code)
	require.Contains(t, css.Body.String(), ".script_panel")

	cell := get(t, h, "/cells/rune%230")
	require.Equal(t, http.StatusOK, cell.Code)
	require.Contains(t, cell.Body.String(), `<div class="output">20</div>`)

	require.Equal(t, http.StatusNotFound, get(t, h, "/cells/rune%231").Code)
	require.Equal(t, http.StatusNotFound, get(t, h, "/missing").Code)
	require.Equal(t, http.StatusOK, get(t, h, "/healthz").Code)

	rec.SetCells(3)
	m := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, m.Code)
	require.Contains(t, m.Body.String(), "livedoc_document_cells 3")
}

func TestRoutes_LiveReloadDisabled(t *testing.T) {
	srv := New(newSession(t), Options{})
	h := srv.Handler()

	page := get(t, h, "/")
	require.NotContains(t, page.Body.String(), "EventSource")
	require.Equal(t, http.StatusNotFound, get(t, h, "/livereload").Code)
	require.Equal(t, http.StatusNotFound, get(t, h, "/metrics").Code)

	// Broadcast without a hub is a no-op.
	srv.Broadcast("x")
}

func TestStartStop(t *testing.T) {
	srv := New(newSession(t), Options{Addr: "127.0.0.1:0", LiveReload: true})
	require.NoError(t, srv.Start(context.Background()))
	require.NotEqual(t, "127.0.0.1:0", srv.Addr())

	resp, err := http.Get("http://" + srv.Addr() + "/healthz") //nolint:noctx // test server
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), `"status":"healthy"`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
}

func TestStart_AddressInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	srv := New(newSession(t), Options{Addr: ln.Addr().String()})
	err = srv.Start(context.Background())
	require.Error(t, err)
	require.True(t, errors.IsCategory(err, errors.CategoryNetwork))
	require.NoError(t, srv.Stop(context.Background()))
}

func TestHealthz_RecoversWhenSameContentReturns(t *testing.T) {
	s := newSession(t)
	h := New(s, Options{}).Handler()

	health := func() responses.HealthResponse {
		t.Helper()
		rec := get(t, h, "/healthz")
		require.Equal(t, http.StatusOK, rec.Code)
		var body responses.HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return body
	}

	require.NoError(t, os.Remove(s.Path()))
	_, err := s.Reload()
	require.Error(t, err)
	body := health()
	require.Equal(t, responses.StatusDegraded, body.Status)
	require.NotEmpty(t, body.LastError)

	require.NoError(t, os.WriteFile(s.Path(), []byte(doc), 0o600))
	changed, err := s.Reload()
	require.NoError(t, err)
	require.False(t, changed)
	body = health()
	require.Equal(t, responses.StatusHealthy, body.Status)
	require.Empty(t, body.LastError)
}
