// Package normalization maps loosely written configuration strings onto
// typed enum values.
package normalization

import (
	"fmt"
	"slices"
	"strings"
)

// Normalizer resolves case and whitespace insensitive spellings of T.
type Normalizer[T comparable] struct {
	values   map[string]T
	fallback T
	keys     []string
}

// NewNormalizer builds a normalizer from spelling->value pairs. Unknown
// spellings resolve to fallback.
func NewNormalizer[T comparable](values map[string]T, fallback T) *Normalizer[T] {
	n := &Normalizer[T]{values: make(map[string]T, len(values)), fallback: fallback}
	for k, v := range values {
		key := clean(k)
		n.values[key] = v
		n.keys = append(n.keys, key)
	}
	slices.Sort(n.keys)
	return n
}

// Normalize returns the value spelled by raw, or the fallback.
func (n *Normalizer[T]) Normalize(raw string) T {
	v, _ := n.Lookup(raw)
	return v
}

// Lookup reports whether raw names a known value.
func (n *Normalizer[T]) Lookup(raw string) (T, bool) {
	if v, ok := n.values[clean(raw)]; ok {
		return v, true
	}
	return n.fallback, false
}

// Parse is Lookup with an error listing the accepted spellings.
func (n *Normalizer[T]) Parse(raw string) (T, error) {
	v, ok := n.Lookup(raw)
	if !ok {
		return v, fmt.Errorf("invalid value %q, valid options: %s", raw, strings.Join(n.keys, ", "))
	}
	return v, nil
}

// Keys returns the accepted spellings, sorted.
func (n *Normalizer[T]) Keys() []string {
	return slices.Clone(n.keys)
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
