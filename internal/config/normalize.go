package config

import (
	"fmt"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/livedoc/internal/plugin/highlight"
	"git.home.luguber.info/inful/livedoc/internal/retry"
)

// NormalizationResult records the values Normalize rewrote.
type NormalizationResult struct {
	Warnings []string
}

func (r *NormalizationResult) warnChanged(field string, from, to any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf("%s normalized from %v to %v", field, from, to))
}

// Normalize canonicalises enum-like fields in place. Unknown values fall back
// to their defaults and are reported as warnings.
func Normalize(cfg *Config) *NormalizationResult {
	res := &NormalizationResult{}

	lvl, err := logLevelNormalizer.Parse(string(cfg.Logging.Level))
	if err != nil {
		res.Warnings = append(res.Warnings, "logging.level: "+err.Error())
	}
	if lvl != cfg.Logging.Level {
		res.warnChanged("logging.level", cfg.Logging.Level, lvl)
		cfg.Logging.Level = lvl
	}
	format, err := logFormatNormalizer.Parse(string(cfg.Logging.Format))
	if err != nil {
		res.Warnings = append(res.Warnings, "logging.format: "+err.Error())
	}
	if format != cfg.Logging.Format {
		res.warnChanged("logging.format", cfg.Logging.Format, format)
		cfg.Logging.Format = format
	}

	theme := strings.TrimSpace(cfg.Render.HighlightTheme)
	if theme != "" && !highlight.ThemeExists(theme) {
		if lower := strings.ToLower(theme); highlight.ThemeExists(lower) {
			theme = lower
		}
	}
	if theme != cfg.Render.HighlightTheme {
		res.warnChanged("render.highlight_theme", cfg.Render.HighlightTheme, theme)
		cfg.Render.HighlightTheme = theme
	}

	mode, err := retry.ParseBackoffMode(string(cfg.Preview.Retry.Mode))
	if err != nil {
		res.Warnings = append(res.Warnings, "preview.retry.mode: "+err.Error())
	}
	if mode != cfg.Preview.Retry.Mode {
		res.warnChanged("preview.retry.mode", cfg.Preview.Retry.Mode, mode)
		cfg.Preview.Retry.Mode = mode
	}

	if path := strings.TrimSpace(cfg.Metrics.Path); path != "" && !strings.HasPrefix(path, "/") {
		res.warnChanged("metrics.path", cfg.Metrics.Path, "/"+path)
		cfg.Metrics.Path = "/" + path
	}

	for _, w := range res.Warnings {
		slog.Debug("Config normalization", slog.String("change", w))
	}
	return res
}
