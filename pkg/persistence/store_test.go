package persistence

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryBadgerStore(t *testing.T) *BadgerStore {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewBadgerStore(db)
}

func sampleState() *State {
	s := NewState()
	s.Bindings["1-0-0"] = 1
	s.Bindings["10-2-3"] = 7
	s.UniverseNames[1] = "Stage left"
	s.UniverseNames[7] = "Foyer"
	return s
}

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"file": func(t *testing.T) Store {
			return NewFileStore(filepath.Join(t.TempDir(), "nested", "state.json"))
		},
		"badger": func(t *testing.T) Store {
			return newMemoryBadgerStore(t)
		},
	}

	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			t.Run("LoadEmpty", func(t *testing.T) {
				store := open(t)
				state, err := store.Load()
				require.NoError(t, err)
				assert.Nil(t, state)
			})

			t.Run("SaveLoad", func(t *testing.T) {
				store := open(t)
				saved := sampleState()
				require.NoError(t, store.Save(saved))
				assert.False(t, saved.SavedAt.IsZero())

				loaded, err := store.Load()
				require.NoError(t, err)
				require.NotNil(t, loaded)
				assert.Equal(t, StateVersion, loaded.Version)
				assert.Equal(t, saved.Bindings, loaded.Bindings)
				assert.Equal(t, saved.UniverseNames, loaded.UniverseNames)
				assert.WithinDuration(t, saved.SavedAt, loaded.SavedAt, time.Second)
			})

			t.Run("SaveReplaces", func(t *testing.T) {
				store := open(t)
				require.NoError(t, store.Save(sampleState()))

				next := NewState()
				next.Bindings["1-0-0"] = 3
				require.NoError(t, store.Save(next))

				loaded, err := store.Load()
				require.NoError(t, err)
				assert.Equal(t, map[string]uint{"1-0-0": 3}, loaded.Bindings)
				assert.Empty(t, loaded.UniverseNames)
				assert.NotNil(t, loaded.UniverseNames)
			})

			t.Run("Clear", func(t *testing.T) {
				store := open(t)
				require.NoError(t, store.Save(sampleState()))
				require.NoError(t, store.Clear())

				loaded, err := store.Load()
				require.NoError(t, err)
				assert.Nil(t, loaded)

				// Clearing twice is fine.
				require.NoError(t, store.Clear())
			})
		})
	}
}

func TestFileStoreUnsupportedVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 99}`), 0644))

	_, err := NewFileStore(path).Load()
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0644))

	_, err := NewFileStore(path).Load()
	assert.Error(t, err)
}

func TestFileStoreNoTempLeftBehind(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "state.json"))
	require.NoError(t, store.Save(sampleState()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.json", entries[0].Name())
}

func TestBadgerStoreOnDisk(t *testing.T) {
	dir := t.TempDir()

	store, err := OpenBadgerStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save(sampleState()))
	require.NoError(t, store.Close())

	reopened, err := OpenBadgerStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, uint(7), loaded.Bindings["10-2-3"])
	assert.Equal(t, "Stage left", loaded.UniverseNames[1])
}

func TestStateClone(t *testing.T) {
	s := sampleState()
	c := s.Clone()
	c.Bindings["1-0-0"] = 42
	c.UniverseNames[1] = "changed"

	assert.Equal(t, uint(1), s.Bindings["1-0-0"])
	assert.Equal(t, "Stage left", s.UniverseNames[1])

	empty := (&State{}).Clone()
	assert.NotNil(t, empty.Bindings)
	assert.NotNil(t, empty.UniverseNames)
}
