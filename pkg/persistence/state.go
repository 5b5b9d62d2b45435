package persistence

import (
	"errors"
	"maps"
	"time"
)

// StateVersion is the current version of the state format.
const StateVersion = 1

// ErrUnsupportedVersion is returned when loading state written by a newer
// format version.
var ErrUnsupportedVersion = errors.New("unsupported state version")

// State is the persisted daemon state.
type State struct {
	// Version is the state format version.
	Version int `json:"version"`

	// SavedAt is when the state was last saved.
	SavedAt time.Time `json:"saved_at"`

	// Bindings maps port unique IDs to universe IDs.
	Bindings map[string]uint `json:"bindings,omitempty"`

	// UniverseNames maps universe IDs to their names.
	UniverseNames map[uint]string `json:"universe_names,omitempty"`
}

// NewState creates an empty state.
func NewState() *State {
	return &State{
		Version:       StateVersion,
		Bindings:      make(map[string]uint),
		UniverseNames: make(map[uint]string),
	}
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	c := &State{
		Version:       s.Version,
		SavedAt:       s.SavedAt,
		Bindings:      maps.Clone(s.Bindings),
		UniverseNames: maps.Clone(s.UniverseNames),
	}
	c.normalize()
	return c
}

func (s *State) normalize() {
	if s.Bindings == nil {
		s.Bindings = make(map[string]uint)
	}
	if s.UniverseNames == nil {
		s.UniverseNames = make(map[uint]string)
	}
}

func checkVersion(version int) error {
	if version > StateVersion {
		return ErrUnsupportedVersion
	}
	return nil
}

// Store loads and saves State.
type Store interface {
	// Load returns the saved state, or nil, nil if nothing was saved.
	Load() (*State, error)

	// Save persists the state.
	Save(state *State) error

	// Clear removes any saved state.
	Clear() error
}
