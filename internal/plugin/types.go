package plugin

import "fmt"

// Kind identifies whether a strategy keeps state across renders.
type Kind string

const (
	// KindStateless strategies are re-rendered from content on every pass.
	KindStateless Kind = "stateless"

	// KindStateful strategies create instances kept in the component cache.
	KindStateful Kind = "stateful"
)

// IsValid returns true if the kind is recognized.
func (k Kind) IsValid() bool {
	switch k {
	case KindStateless, KindStateful:
		return true
	default:
		return false
	}
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// Event is delivered to a stateful instance through the component cache.
type Event interface {
	EventName() string
}

// ContentChanged replaces an instance's source.
type ContentChanged struct {
	Source string
}

func (ContentChanged) EventName() string { return "content_changed" }

// Execute asks an instance to run its content.
type Execute struct{}

func (Execute) EventName() string { return "execute" }

// PointerKind is the kind of a pointer pass-through event.
type PointerKind string

const (
	PointerDown PointerKind = "down"
	PointerUp   PointerKind = "up"
	PointerMove PointerKind = "move"
)

// Pointer is a mouse event forwarded to a host editor embedded in an instance.
type Pointer struct {
	Kind PointerKind
	X, Y int
}

func (p Pointer) EventName() string { return "pointer_" + string(p.Kind) }

// PluginError represents an error that occurred within a plugin.
type PluginError struct {
	// PluginName identifies which plugin failed.
	PluginName string

	// Operation describes what the plugin was doing when it failed.
	Operation string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *PluginError) Error() string {
	return fmt.Sprintf("plugin %s failed during %s: %v", e.PluginName, e.Operation, e.Err)
}

// Unwrap returns the underlying error for error inspection.
func (e *PluginError) Unwrap() error {
	return e.Err
}

// NewPluginError creates a new plugin error.
func NewPluginError(pluginName, operation string, err error) *PluginError {
	return &PluginError{
		PluginName: pluginName,
		Operation:  operation,
		Err:        err,
	}
}
