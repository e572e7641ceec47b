package config

import (
	"fmt"
	"strings"
	"unicode"

	"git.home.luguber.info/inful/livedoc/internal/errors"
	"git.home.luguber.info/inful/livedoc/internal/plugin/highlight"
)

// Validate checks the configuration after defaults and normalization.
func (c *Config) Validate() error {
	if c.Render.HighlightTheme != "" && !highlight.ThemeExists(c.Render.HighlightTheme) {
		return errors.ValidationFailed("render.highlight_theme",
			fmt.Sprintf("unknown theme %q", c.Render.HighlightTheme))
	}
	if !isIdentifier(c.Render.ScriptEntry) {
		return errors.ValidationFailed("render.script_entry",
			fmt.Sprintf("%q is not a function name", c.Render.ScriptEntry))
	}

	if c.Preview.Port < 0 || c.Preview.Port > 65535 {
		return errors.ValidationFailed("preview.port", fmt.Sprintf("%d out of range", c.Preview.Port))
	}
	if c.Preview.Debounce < 0 {
		return errors.ValidationFailed("preview.debounce", "must not be negative")
	}
	if c.Preview.PollInterval < 0 {
		return errors.ValidationFailed("preview.poll_interval", "must not be negative")
	}
	if err := c.Preview.Retry.Validate(); err != nil {
		return errors.ValidationFailed("preview.retry", err.Error())
	}

	if c.Metrics.Enabled {
		switch c.Metrics.Path {
		case "", "/", "/style.css", "/livereload", "/healthz":
			return errors.ValidationFailed("metrics.path",
				fmt.Sprintf("%q collides with a preview route", c.Metrics.Path))
		}
		if strings.HasPrefix(c.Metrics.Path, "/cells/") {
			return errors.ValidationFailed("metrics.path", "must not live under /cells/")
		}
	}
	return nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}
