package persistence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/goccy/go-json"
)

const (
	metaKey       = "meta"
	bindingPrefix = "binding/"
	namePrefix    = "name/"
)

type stateMeta struct {
	Version int       `json:"version"`
	SavedAt time.Time `json:"saved_at"`
}

// BadgerStore persists state in a badger database.
type BadgerStore struct {
	db    *badger.DB
	owned bool
}

// OpenBadgerStore opens or creates a badger database in dir.
func OpenBadgerStore(dir string) (*BadgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open badger state store: %w", err)
	}
	return &BadgerStore{db: db, owned: true}, nil
}

// NewBadgerStore wraps an open database. Close leaves it open.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Save replaces the stored state.
func (s *BadgerStore) Save(state *State) error {
	state.Version = StateVersion
	if state.SavedAt.IsZero() {
		state.SavedAt = time.Now()
	}

	meta, err := json.Marshal(stateMeta{Version: state.Version, SavedAt: state.SavedAt})
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for _, prefix := range []string{bindingPrefix, namePrefix} {
			if err := deletePrefix(txn, prefix); err != nil {
				return err
			}
		}

		if err := txn.Set([]byte(metaKey), meta); err != nil {
			return err
		}
		for uid, universe := range state.Bindings {
			value := strconv.FormatUint(uint64(universe), 10)
			if err := txn.Set([]byte(bindingPrefix+uid), []byte(value)); err != nil {
				return err
			}
		}
		for id, name := range state.UniverseNames {
			key := namePrefix + strconv.FormatUint(uint64(id), 10)
			if err := txn.Set([]byte(key), []byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
}

func deletePrefix(txn *badger.Txn, prefix string) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = []byte(prefix)

	it := txn.NewIterator(opts)
	var keys [][]byte
	for it.Rewind(); it.Valid(); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	it.Close()

	for _, k := range keys {
		if err := txn.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the stored state.
// Returns nil, nil if nothing was saved.
func (s *BadgerStore) Load() (*State, error) {
	var state *State

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(metaKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		var meta stateMeta
		if err := item.Value(func(v []byte) error {
			return json.Unmarshal(v, &meta)
		}); err != nil {
			return err
		}
		if err := checkVersion(meta.Version); err != nil {
			return err
		}

		st := NewState()
		st.Version = meta.Version
		st.SavedAt = meta.SavedAt

		if err := scan(txn, bindingPrefix, func(key string, value []byte) error {
			universe, err := strconv.ParseUint(string(value), 10, 0)
			if err != nil {
				return fmt.Errorf("binding %q: %w", key, err)
			}
			st.Bindings[key] = uint(universe)
			return nil
		}); err != nil {
			return err
		}

		if err := scan(txn, namePrefix, func(key string, value []byte) error {
			id, err := strconv.ParseUint(key, 10, 0)
			if err != nil {
				return fmt.Errorf("universe name %q: %w", key, err)
			}
			st.UniverseNames[uint(id)] = string(value)
			return nil
		}); err != nil {
			return err
		}

		state = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// scan calls fn for every key under prefix, with the prefix stripped.
func scan(txn *badger.Txn, prefix string, fn func(key string, value []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)

	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		value, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		key := strings.TrimPrefix(string(item.Key()), prefix)
		if err := fn(key, value); err != nil {
			return err
		}
	}
	return nil
}

// Clear removes all stored state.
func (s *BadgerStore) Clear() error {
	return s.db.DropAll()
}

// Close closes the database if the store opened it.
func (s *BadgerStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

var _ Store = (*BadgerStore)(nil)
