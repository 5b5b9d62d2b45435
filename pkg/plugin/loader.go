package plugin

import (
	"errors"
	"fmt"
	"slices"

	"github.com/lla-project/llad/pkg/pluginid"
)

// Loader errors.
var (
	ErrUnknownPlugin   = errors.New("unknown plugin")
	ErrDuplicatePlugin = errors.New("plugin already registered")
	ErrReservedID      = errors.New("reserved plugin ID")
)

// Factory creates a fresh plugin instance.
type Factory func() Plugin

// Loader creates plugins from registered factories.
type Loader struct {
	factories map[pluginid.ID]Factory
}

// NewLoader creates an empty loader.
func NewLoader() *Loader {
	return &Loader{factories: make(map[pluginid.ID]Factory)}
}

// Register adds a factory for the plugin with the given ID.
func (l *Loader) Register(id pluginid.ID, f Factory) error {
	if id == pluginid.All {
		return ErrReservedID
	}
	if _, exists := l.factories[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicatePlugin, id)
	}
	l.factories[id] = f
	return nil
}

func (l *Loader) ids() []pluginid.ID {
	ids := make([]pluginid.ID, 0, len(l.factories))
	for id := range l.factories {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Names returns the short names of all registered plugins ordered by ID.
func (l *Loader) Names() []string {
	var names []string
	for _, id := range l.ids() {
		names = append(names, id.String())
	}
	return names
}

// Load creates the enabled plugins ordered by ID. An empty enabled list
// loads every registered plugin.
func (l *Loader) Load(enabled []string) ([]Plugin, error) {
	selected := make(map[pluginid.ID]bool)
	for _, name := range enabled {
		id, ok := pluginid.Parse(name)
		if !ok || id == pluginid.All {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPlugin, name)
		}
		if _, registered := l.factories[id]; !registered {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPlugin, name)
		}
		selected[id] = true
	}

	var plugins []Plugin
	for _, id := range l.ids() {
		if len(selected) > 0 && !selected[id] {
			continue
		}
		plugins = append(plugins, l.factories[id]())
	}
	return plugins, nil
}
