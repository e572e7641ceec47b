// Package metrics provides observability hooks for rendering, the component
// cache, script execution and the preview server.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no call site needs a nil check:
//
//	renderer := render.New(registry, render.Options{Recorder: metrics.NoopRecorder{}})
//
// To enable metrics, swap in a PrometheusRecorder and serve its registry:
//
//	reg := prom.NewRegistry()
//	recorder := metrics.NewPrometheusRecorder(reg)
//	mux.Handle("/metrics", metrics.HTTPHandler(reg))
package metrics
