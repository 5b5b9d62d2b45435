package universe

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/lla-project/llad/pkg/log"
	"github.com/lla-project/llad/pkg/metrics"
)

// Store errors.
var (
	ErrInvalidUniverseID = errors.New("invalid universe ID")
	ErrUniverseNotFound  = errors.New("universe not found")
	ErrUniverseInUse     = errors.New("universe has bound ports")
)

// Store owns all universes, creating them on demand.
// It is not safe for concurrent use.
type Store struct {
	universes map[uint]*Universe

	// names remembers names of universes that do not currently exist.
	names map[uint]string

	events  log.Logger
	metrics *metrics.Metrics
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithEventLogger sets the event logger handed to new universes.
func WithEventLogger(l log.Logger) StoreOption {
	return func(s *Store) {
		s.events = l
	}
}

// WithMetrics sets the metrics handed to new universes.
func WithMetrics(m *metrics.Metrics) StoreOption {
	return func(s *Store) {
		s.metrics = m
	}
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		universes: make(map[uint]*Universe),
		names:     make(map[uint]string),
		events:    log.NoopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultName returns the name given to a new universe.
func DefaultName(id uint) string {
	return fmt.Sprintf("Universe %d", id)
}

// Universe returns an existing universe or nil.
func (s *Store) Universe(id uint) *Universe {
	return s.universes[id]
}

// GetOrCreate returns the universe with the given ID, creating it if needed.
func (s *Store) GetOrCreate(id uint) (*Universe, error) {
	if id == 0 {
		return nil, ErrInvalidUniverseID
	}
	if u, exists := s.universes[id]; exists {
		return u, nil
	}

	name, remembered := s.names[id]
	if !remembered {
		name = DefaultName(id)
	}
	delete(s.names, id)

	u := New(id, name, s.events, s.metrics)
	s.universes[id] = u
	s.metrics.SetUniverses(len(s.universes))
	return u, nil
}

// All returns all universes ordered by ID.
func (s *Store) All() []*Universe {
	ids := slices.Sorted(maps.Keys(s.universes))
	result := make([]*Universe, 0, len(ids))
	for _, id := range ids {
		result = append(result, s.universes[id])
	}
	return result
}

// Count returns the number of universes.
func (s *Store) Count() int {
	return len(s.universes)
}

// Delete removes an inactive universe, remembering its name.
func (s *Store) Delete(id uint) error {
	u, exists := s.universes[id]
	if !exists {
		return ErrUniverseNotFound
	}
	if u.IsActive() {
		return ErrUniverseInUse
	}
	s.remove(u)
	return nil
}

// GarbageCollect removes all universes without bound ports and returns
// their IDs in ascending order.
func (s *Store) GarbageCollect() []uint {
	var removed []uint
	for _, u := range s.All() {
		if !u.IsActive() {
			s.remove(u)
			removed = append(removed, u.ID())
		}
	}
	return removed
}

func (s *Store) remove(u *Universe) {
	if u.Name() != DefaultName(u.ID()) {
		s.names[u.ID()] = u.Name()
	}
	delete(s.universes, u.ID())
	s.metrics.SetUniverses(len(s.universes))
}

// Names returns the non-default names of existing and remembered universes.
func (s *Store) Names() map[uint]string {
	result := maps.Clone(s.names)
	for id, u := range s.universes {
		if u.Name() != DefaultName(id) {
			result[id] = u.Name()
		} else {
			delete(result, id)
		}
	}
	return result
}

// SetNames restores universe names, applying them to existing universes
// and remembering the rest.
func (s *Store) SetNames(names map[uint]string) {
	for id, name := range names {
		if u, exists := s.universes[id]; exists {
			u.SetName(name)
			continue
		}
		s.names[id] = name
	}
}
