package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "livedoc"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once            sync.Once
	renderDuration  prom.Histogram
	renderOutcome   *prom.CounterVec
	cells           prom.Gauge
	cacheSize       prom.Gauge
	cacheCreated    prom.Counter
	cacheEvictions  prom.Counter
	pluginFallbacks *prom.CounterVec
	scriptDuration  *prom.HistogramVec
	reloadClients   prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.renderDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Duration of a full document render pass",
			Buckets:   prom.DefBuckets,
		})
		pr.renderOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "render_outcomes_total",
			Help:      "Render passes by outcome",
		}, []string{"result"})
		pr.cells = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "document_cells",
			Help:      "Number of cells in the last rendered document",
		})
		pr.cacheSize = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "component_cache_size",
			Help:      "Live stateful plugin instances",
		})
		pr.cacheCreated = prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "component_cache_created_total",
			Help:      "Stateful plugin instances created",
		})
		pr.cacheEvictions = prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "component_cache_evictions_total",
			Help:      "Stateful plugin instances evicted after leaving the document",
		})
		pr.pluginFallbacks = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "plugin_fallbacks_total",
			Help:      "Cells shown as prose because their plugin failed to render",
		}, []string{"plugin"})
		pr.scriptDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "script_duration_seconds",
			Help:      "Duration of script executions",
			Buckets:   prom.DefBuckets,
		}, []string{"result"})
		pr.reloadClients = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "livereload_clients",
			Help:      "Connected live-reload clients",
		})
		reg.MustRegister(pr.renderDuration, pr.renderOutcome, pr.cells, pr.cacheSize, pr.cacheCreated,
			pr.cacheEvictions, pr.pluginFallbacks, pr.scriptDuration, pr.reloadClients)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveRenderDuration(d time.Duration) {
	if p == nil || p.renderDuration == nil {
		return
	}
	p.renderDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRenderOutcome(result ResultLabel) {
	if p == nil || p.renderOutcome == nil {
		return
	}
	p.renderOutcome.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) SetCells(n int) {
	if p == nil || p.cells == nil {
		return
	}
	p.cells.Set(float64(n))
}

func (p *PrometheusRecorder) SetCacheSize(n int) {
	if p == nil || p.cacheSize == nil {
		return
	}
	p.cacheSize.Set(float64(n))
}

func (p *PrometheusRecorder) IncCacheCreated() {
	if p == nil || p.cacheCreated == nil {
		return
	}
	p.cacheCreated.Inc()
}

func (p *PrometheusRecorder) AddCacheEvictions(n int) {
	if p == nil || p.cacheEvictions == nil || n <= 0 {
		return
	}
	p.cacheEvictions.Add(float64(n))
}

func (p *PrometheusRecorder) IncPluginFallback(plugin string) {
	if p == nil || p.pluginFallbacks == nil {
		return
	}
	p.pluginFallbacks.WithLabelValues(plugin).Inc()
}

func (p *PrometheusRecorder) ObserveScriptDuration(d time.Duration, success bool) {
	if p == nil || p.scriptDuration == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.scriptDuration.WithLabelValues(res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetLiveReloadClients(n int) {
	if p == nil || p.reloadClients == nil {
		return
	}
	p.reloadClients.Set(float64(n))
}
