package plugin

import (
	stdErrors "errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/aymerick/douceur/parser"

	"git.home.luguber.info/inful/livedoc/internal/errors"
)

// Registry maps fence tags to strategies. Resolution is total: tags nobody
// claimed resolve to the fallback strategy.
type Registry struct {
	mu       sync.RWMutex
	byTag    map[string]Strategy
	byName   map[string]Strategy
	ordered  []Strategy
	fallback Strategy
}

// ErrNoFallback is returned when a registry would be left without a fallback,
// which would make Resolve partial.
var ErrNoFallback = stdErrors.New("registry requires a non-nil fallback strategy")

// NewRegistry creates a registry that resolves unclaimed tags to fallback.
func NewRegistry(fallback Strategy) (*Registry, error) {
	if fallback == nil {
		return nil, ErrNoFallback
	}
	return &Registry{
		byTag:    make(map[string]Strategy),
		byName:   make(map[string]Strategy),
		fallback: fallback,
	}, nil
}

// Register adds a strategy under every fence tag it claims.
// Returns an error if the name or any of the tags is already taken.
func (r *Registry) Register(s Strategy) error {
	if s == nil {
		return fmt.Errorf("cannot register nil strategy")
	}

	metadata := s.Metadata()
	if err := metadata.Validate(); err != nil {
		return fmt.Errorf("invalid plugin metadata: %w", err)
	}
	if len(metadata.FenceTags) == 0 {
		return fmt.Errorf("plugin %s claims no fence tags", metadata.Name)
	}
	if metadata.Kind == KindStateful {
		if _, ok := s.(Stateful); !ok {
			return fmt.Errorf("plugin %s is declared stateful but cannot create instances", metadata.Name)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[metadata.Name]; exists {
		return fmt.Errorf("plugin %s already registered", metadata.Name)
	}
	for _, tag := range metadata.FenceTags {
		if owner, exists := r.byTag[tag]; exists {
			return fmt.Errorf("fence tag %q already claimed by %s", tag, owner.Metadata().Name)
		}
	}

	r.byName[metadata.Name] = s
	for _, tag := range metadata.FenceTags {
		r.byTag[tag] = s
	}
	r.ordered = append(r.ordered, s)
	return nil
}

// SetFallback replaces the strategy used for unclaimed fence tags.
func (r *Registry) SetFallback(s Strategy) error {
	if s == nil {
		return ErrNoFallback
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = s
	return nil
}

// Fallback returns the strategy used for unclaimed fence tags.
func (r *Registry) Fallback() Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fallback
}

// Resolve returns the strategy for a fence tag. The empty tag and unknown
// tags resolve to the fallback.
func (r *Registry) Resolve(tag string) Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, ok := r.byTag[tag]; ok {
		return s
	}
	return r.fallback
}

// Has reports whether a strategy explicitly claims tag.
func (r *Registry) Has(tag string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byTag[tag]
	return ok
}

// Get retrieves a strategy by name.
func (r *Registry) Get(name string) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byName[name]
	if !ok {
		if r.fallback.Metadata().Name == name {
			return r.fallback, nil
		}
		return nil, fmt.Errorf("plugin %s not found", name)
	}
	return s, nil
}

// Tags returns every claimed fence tag, sorted.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]string, 0, len(r.byTag))
	for tag := range r.byTag {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

// Strategies returns the registered strategies in registration order,
// followed by the fallback.
func (r *Registry) Strategies() []Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := slices.Clone(r.ordered)
	if _, registered := r.byName[r.fallback.Metadata().Name]; !registered {
		out = append(out, r.fallback)
	}
	return out
}

// Count returns the number of registered strategies, excluding the fallback.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ordered)
}

// Styles parses every strategy's stylesheet and joins the normalised
// result. A stylesheet that does not parse is reported with the strategy name.
func (r *Registry) Styles() (string, error) {
	var sheets []string
	for _, s := range r.Strategies() {
		css := strings.TrimSpace(s.Style())
		if css == "" {
			continue
		}
		sheet, err := parser.Parse(css)
		if err != nil {
			return "", errors.StylesheetError(s.Metadata().Name, err)
		}
		sheets = append(sheets, sheet.String())
	}
	return strings.Join(sheets, "\n"), nil
}
