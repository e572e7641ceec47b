package metrics

import "time"

// ResultLabel enumerates render outcomes for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultWarning ResultLabel = "warning"
	ResultFatal   ResultLabel = "fatal"
)

// Recorder defines observability hooks. Implementations may forward to
// Prometheus or record in memory for tests.
type Recorder interface {
	ObserveRenderDuration(d time.Duration)
	IncRenderOutcome(result ResultLabel)
	SetCells(n int)
	SetCacheSize(n int)
	IncCacheCreated()
	AddCacheEvictions(n int)
	IncPluginFallback(plugin string)
	ObserveScriptDuration(d time.Duration, success bool)
	SetLiveReloadClients(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveRenderDuration(time.Duration)       {}
func (NoopRecorder) IncRenderOutcome(ResultLabel)              {}
func (NoopRecorder) SetCells(int)                              {}
func (NoopRecorder) SetCacheSize(int)                          {}
func (NoopRecorder) IncCacheCreated()                          {}
func (NoopRecorder) AddCacheEvictions(int)                     {}
func (NoopRecorder) IncPluginFallback(string)                  {}
func (NoopRecorder) ObserveScriptDuration(time.Duration, bool) {}
func (NoopRecorder) SetLiveReloadClients(int)                  {}
