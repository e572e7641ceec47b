// Package plugin maps the fence tag of a code cell to a rendering strategy.
// Strategies are stateless renderers or factories for stateful instances
// whose state survives re-renders of the document.
package plugin

import (
	"fmt"

	"golang.org/x/net/html"
)

// Strategy renders the content of a fenced code block.
type Strategy interface {
	// Metadata returns the strategy's name, kind and the fence tags it claims.
	Metadata() Metadata

	// Style returns the strategy's static stylesheet contribution.
	Style() string

	// Render turns block content into a display subtree.
	Render(content string, cfg Config) (*html.Node, error)
}

// FenceRenderer is implemented by strategies whose output depends on the
// fence tag itself, such as the fallback highlighter.
type FenceRenderer interface {
	RenderFenced(fence, content string, cfg Config) (*html.Node, error)
}

// RenderBlock renders a code block with s, passing the fence tag along when s
// wants it.
func RenderBlock(s Strategy, fence, content string, cfg Config) (*html.Node, error) {
	if fr, ok := s.(FenceRenderer); ok {
		return fr.RenderFenced(fence, content, cfg)
	}
	return s.Render(content, cfg)
}

// Stateful is a Strategy whose instances keep state between renders.
type Stateful interface {
	Strategy

	// NewInstance creates a live instance for one code cell.
	NewInstance(content string, cfg Config) Instance
}

// Instance is a live plugin instance owned by the component cache.
type Instance interface {
	// Update applies an event to the instance's state in place.
	Update(ev Event)

	// View renders the current state. Every call returns a fresh tree.
	View() *html.Node

	// Close releases the instance's resources.
	Close() error
}

// Metadata describes a strategy's identity.
type Metadata struct {
	// Name is the unique strategy identifier (e.g., "diagram", "script").
	Name string

	// Version is the semantic version of the strategy.
	Version string

	// Kind reports whether the strategy creates stateful instances.
	Kind Kind

	// Description provides a human-readable summary of the strategy.
	Description string

	// FenceTags lists the fence tags this strategy handles. The fallback
	// strategy may leave it empty.
	FenceTags []string
}

// String returns a human-readable representation of the metadata.
func (m Metadata) String() string {
	return fmt.Sprintf("%s@%s (%s)", m.Name, m.Version, m.Kind)
}

// Validate checks if the metadata is valid.
func (m Metadata) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("plugin name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("plugin version is required")
	}
	if !m.Kind.IsValid() {
		return fmt.Errorf("invalid plugin kind: %s", m.Kind)
	}
	for _, tag := range m.FenceTags {
		if tag == "" {
			return fmt.Errorf("plugin %s claims an empty fence tag", m.Name)
		}
	}
	return nil
}

// Config is threaded into every plugin render and instance.
type Config struct {
	// HighlightTheme names the chroma style used for code and terminal colours.
	HighlightTheme string

	// ScriptEntry is the function a script panel calls on Execute.
	ScriptEntry string

	// ScriptArgument is the single numeric argument passed to ScriptEntry.
	ScriptArgument int64

	// ScriptMaxSteps bounds script execution; zero means unbounded.
	ScriptMaxSteps uint64
}

// DefaultHighlightTheme is used when no theme is configured.
const DefaultHighlightTheme = "github"

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		HighlightTheme: DefaultHighlightTheme,
		ScriptEntry:    "main",
		ScriptArgument: 10,
		ScriptMaxSteps: 10_000_000,
	}
}

// BaseStrategy provides a default empty stylesheet. Strategies can embed it.
type BaseStrategy struct{}

// Style returns no styles.
func (BaseStrategy) Style() string {
	return ""
}
