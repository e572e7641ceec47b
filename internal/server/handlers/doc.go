// Package handlers contains the HTTP handlers of the preview server.
//
// Document handlers serve the rendered page, the aggregated stylesheet and
// single stateful cells; monitoring handlers serve the health check. Errors
// are written through errors.HTTPErrorAdapter as JSON bodies.
package handlers
