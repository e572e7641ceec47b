// Package components keeps stateful plugin instances alive across render
// passes. Instances are keyed by a stable cell key; a pass that no longer
// produces a key evicts its instance.
package components

import (
	"log/slog"
	"slices"

	"git.home.luguber.info/inful/livedoc/internal/logfields"
	"git.home.luguber.info/inful/livedoc/internal/metrics"
	"git.home.luguber.info/inful/livedoc/internal/plugin"
	"git.home.luguber.info/inful/livedoc/internal/util/sets"
)

// Key identifies a stateful cell, e.g. "rune#0".
type Key string

// Cache owns live instances. It is not safe for concurrent use; the renderer
// that owns it serialises access.
type Cache struct {
	instances map[Key]plugin.Instance
	recorder  metrics.Recorder
}

// New returns an empty cache.
func New(recorder metrics.Recorder) *Cache {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Cache{instances: make(map[Key]plugin.Instance), recorder: recorder}
}

// GetOrCreate returns the instance for key, calling build only when none exists.
func (c *Cache) GetOrCreate(key Key, build func() plugin.Instance) (plugin.Instance, bool) {
	if inst, ok := c.instances[key]; ok {
		return inst, false
	}
	inst := build()
	c.instances[key] = inst
	c.recorder.IncCacheCreated()
	c.recorder.SetCacheSize(len(c.instances))
	return inst, true
}

// Get returns the instance for key.
func (c *Cache) Get(key Key) (plugin.Instance, bool) {
	inst, ok := c.instances[key]
	return inst, ok
}

// Update delivers ev to the instance for key. Events for keys that are no
// longer live are dropped and Update reports false.
func (c *Cache) Update(key Key, ev plugin.Event) bool {
	inst, ok := c.instances[key]
	if !ok {
		slog.Debug("Dropping event for stale component", logfields.CellKey(string(key)), logfields.Event(ev.EventName()))
		return false
	}
	inst.Update(ev)
	return true
}

// Sweep evicts and closes every instance whose key is not in live. It
// returns the evicted keys, sorted.
func (c *Cache) Sweep(live sets.Set[Key]) []Key {
	evicted := sets.New[Key]()
	for key, inst := range c.instances {
		if live.Has(key) {
			continue
		}
		c.close(key, inst)
		delete(c.instances, key)
		evicted.Add(key)
	}
	if evicted.Len() == 0 {
		return nil
	}
	c.recorder.AddCacheEvictions(evicted.Len())
	c.recorder.SetCacheSize(len(c.instances))
	return sets.Sorted(evicted)
}

// Remove closes and drops the instance under key, reporting whether one existed.
func (c *Cache) Remove(key Key) bool {
	inst, ok := c.instances[key]
	if !ok {
		return false
	}
	c.close(key, inst)
	delete(c.instances, key)
	c.recorder.AddCacheEvictions(1)
	c.recorder.SetCacheSize(len(c.instances))
	return true
}

// Len returns the number of live instances.
func (c *Cache) Len() int {
	return len(c.instances)
}

// Keys returns the live keys, sorted.
func (c *Cache) Keys() []Key {
	keys := make([]Key, 0, len(c.instances))
	for key := range c.instances {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// Close closes and drops every instance.
func (c *Cache) Close() {
	for key, inst := range c.instances {
		c.close(key, inst)
	}
	clear(c.instances)
	c.recorder.SetCacheSize(0)
}

func (c *Cache) close(key Key, inst plugin.Instance) {
	if err := inst.Close(); err != nil {
		slog.Warn("Failed to close component", logfields.CellKey(string(key)), logfields.Error(err))
	}
}
