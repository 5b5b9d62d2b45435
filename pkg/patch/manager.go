package patch

import (
	"errors"
	"fmt"
	"maps"

	"github.com/lla-project/llad/pkg/log"
	"github.com/lla-project/llad/pkg/metrics"
	"github.com/lla-project/llad/pkg/persistence"
	"github.com/lla-project/llad/pkg/port"
	"github.com/lla-project/llad/pkg/universe"
)

// Patch errors.
var (
	ErrNotPatched     = errors.New("port is not patched")
	ErrForeignBinding = errors.New("port is bound to an unmanaged universe")
)

// Metric action labels.
const (
	actionPatch   = "patch"
	actionUnpatch = "unpatch"
	actionRestore = "restore"
)

// Manager binds ports to universes and remembers the bindings.
type Manager struct {
	universes *universe.Store
	store     persistence.Store

	// remembered maps port unique IDs to universe IDs.
	remembered map[string]uint

	events  log.Logger
	metrics *metrics.Metrics
}

// Option configures a Manager.
type Option func(*Manager)

// WithEventLogger sets the logger receiving binding events.
func WithEventLogger(l log.Logger) Option {
	return func(m *Manager) {
		m.events = l
	}
}

// WithMetrics sets the metrics recording binding changes.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) {
		m.metrics = mt
	}
}

// NewManager creates a manager over the given universes.
// A nil store disables persistence.
func NewManager(universes *universe.Store, store persistence.Store, opts ...Option) *Manager {
	m := &Manager{
		universes:  universes,
		store:      store,
		remembered: make(map[string]uint),
		events:     log.NoopLogger{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// boundUniverse returns the universe p is bound to, or nil.
func boundUniverse(p port.Port) (*universe.Universe, error) {
	bound := p.Universe()
	if bound == nil {
		return nil, nil
	}
	u, ok := bound.(*universe.Universe)
	if !ok {
		return nil, ErrForeignBinding
	}
	return u, nil
}

// Patch binds p to the universe with the given ID, creating it if needed.
// A port already bound elsewhere is moved. Patching a port to the universe
// it is bound to does nothing.
func (m *Manager) Patch(p port.Port, universeID uint) error {
	return m.bind(p, universeID, log.BindingPatch)
}

func (m *Manager) bind(p port.Port, universeID uint, action log.BindingAction) error {
	current, err := boundUniverse(p)
	if err != nil {
		return err
	}
	if current != nil && current.ID() == universeID {
		return nil
	}

	target, err := m.universes.GetOrCreate(universeID)
	if err != nil {
		return fmt.Errorf("patch to universe %d: %w", universeID, err)
	}

	var previous uint
	if current != nil {
		previous = current.ID()
		m.detach(p, current)
	}

	if err := target.AddPort(p); err != nil {
		if current != nil {
			p.SetUniverse(nil)
		}
		m.universes.GarbageCollect()
		return fmt.Errorf("patch to universe %d: %w", universeID, err)
	}
	p.SetUniverse(target)

	uid, identified := p.UniqueID()
	if identified {
		m.remembered[uid] = universeID
	}

	m.record(uid, universeID, action, previous)
	return nil
}

// detach removes p from u and drops u if nothing else is bound to it.
func (m *Manager) detach(p port.Port, u *universe.Universe) {
	_ = u.RemovePort(p)
	if !u.IsActive() {
		_ = m.universes.Delete(u.ID())
	}
}

// Unpatch releases p from its universe and forgets the binding.
// Returns ErrNotPatched if p is not bound.
func (m *Manager) Unpatch(p port.Port) error {
	if err := m.release(p); err != nil {
		return err
	}
	m.Forget(p)
	return nil
}

// Release detaches p from its universe but keeps the remembered binding,
// so Restore can bind it again later. Used when a device goes away.
func (m *Manager) Release(p port.Port) error {
	return m.release(p)
}

func (m *Manager) release(p port.Port) error {
	current, err := boundUniverse(p)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrNotPatched
	}

	m.detach(p, current)
	p.SetUniverse(nil)

	uid, _ := p.UniqueID()
	m.record(uid, 0, log.BindingUnpatch, current.ID())
	return nil
}

func (m *Manager) record(uid string, universeID uint, action log.BindingAction, previous uint) {
	switch action {
	case log.BindingPatch:
		m.metrics.ObservePatch(actionPatch)
	case log.BindingUnpatch:
		m.metrics.ObservePatch(actionUnpatch)
	case log.BindingRestore:
		m.metrics.ObservePatch(actionRestore)
	}

	m.events.Log(log.Event{
		Category:   log.CategoryBinding,
		PortID:     uid,
		UniverseID: universeID,
		Binding:    &log.BindingEvent{Action: action, Previous: previous},
	})
}

// Forget drops the remembered binding of p.
func (m *Manager) Forget(p port.Port) {
	if uid, ok := p.UniqueID(); ok {
		delete(m.remembered, uid)
	}
}

// Binding returns the remembered universe for a port unique ID.
func (m *Manager) Binding(uniqueID string) (uint, bool) {
	id, ok := m.remembered[uniqueID]
	return id, ok
}

// Bindings returns a copy of all remembered bindings.
func (m *Manager) Bindings() map[string]uint {
	return maps.Clone(m.remembered)
}

// Restore patches p to its remembered universe. It reports whether a
// binding was found. Ports without a unique ID are never restored.
func (m *Manager) Restore(p port.Port) (bool, error) {
	uid, ok := p.UniqueID()
	if !ok {
		return false, nil
	}
	universeID, ok := m.remembered[uid]
	if !ok {
		return false, nil
	}
	if err := m.bind(p, universeID, log.BindingRestore); err != nil {
		return false, err
	}
	return true, nil
}

// Load reads saved bindings and universe names from the store.
func (m *Manager) Load() error {
	if m.store == nil {
		return nil
	}

	state, err := m.store.Load()
	if err != nil {
		return fmt.Errorf("load bindings: %w", err)
	}
	if state == nil {
		return nil
	}

	maps.Copy(m.remembered, state.Bindings)
	m.universes.SetNames(state.UniverseNames)
	return nil
}

// Save persists the remembered bindings and universe names.
func (m *Manager) Save() error {
	if m.store == nil {
		return nil
	}

	state := persistence.NewState()
	state.Bindings = maps.Clone(m.remembered)
	state.UniverseNames = m.universes.Names()

	if err := m.store.Save(state); err != nil {
		return fmt.Errorf("save bindings: %w", err)
	}
	return nil
}
