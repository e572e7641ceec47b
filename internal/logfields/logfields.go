package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRenderID   = "render_id"
	KeyCellIndex  = "cell_index"
	KeyCellKey    = "cell_key"
	KeyCells      = "cells"
	KeyFence      = "fence"
	KeyPlugin     = "plugin"
	KeyTitle      = "title"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyHash       = "hash"
	KeyAddr       = "addr"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyUserAgent  = "user_agent"
	KeyRemoteAddr = "remote_addr"
	KeyClients    = "clients"
	KeyEvent      = "event"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RenderID(id string) slog.Attr     { return slog.String(KeyRenderID, id) }
func CellIndex(i int) slog.Attr        { return slog.Int(KeyCellIndex, i) }
func CellKey(k string) slog.Attr       { return slog.String(KeyCellKey, k) }
func Cells(n int) slog.Attr            { return slog.Int(KeyCells, n) }
func Fence(tag string) slog.Attr       { return slog.String(KeyFence, tag) }
func Plugin(name string) slog.Attr     { return slog.String(KeyPlugin, name) }
func Title(t string) slog.Attr         { return slog.String(KeyTitle, t) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func File(f string) slog.Attr          { return slog.String(KeyFile, f) }
func Hash(h string) slog.Attr          { return slog.String(KeyHash, h) }
func Addr(a string) slog.Attr          { return slog.String(KeyAddr, a) }
func Method(m string) slog.Attr        { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr        { return slog.Int(KeyStatus, code) }
func UserAgent(ua string) slog.Attr    { return slog.String(KeyUserAgent, ua) }
func RemoteAddr(addr string) slog.Attr { return slog.String(KeyRemoteAddr, addr) }
func Clients(n int) slog.Attr          { return slog.Int(KeyClients, n) }
func Event(name string) slog.Attr      { return slog.String(KeyEvent, name) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// Duration reports d in milliseconds under KeyDurationMS.
func Duration(d time.Duration) slog.Attr {
	return DurationMS(float64(d.Microseconds()) / 1000)
}
