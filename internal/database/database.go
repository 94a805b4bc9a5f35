package database

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"sync"
)

// storageData maps scope -> key -> raw JSON value.
type storageData map[string]map[string]json.RawMessage

// JSONStorage is the persistent client storage of the storefront: a small
// key/value store, split into scopes (one per browser session), saved as a
// single JSON file after every write.
type JSONStorage struct {
	mu       sync.RWMutex
	data     storageData
	filePath string
	// scopes handed out, by name, so MoveScope can rename them in place
	scopes map[string]*Scope
}

// NewStorage opens (or creates) the storage file at path.
func NewStorage(path string) (*JSONStorage, error) {
	s := &JSONStorage{
		filePath: path,
		data:     storageData{},
		scopes:   map[string]*Scope{},
	}
	if err := s.loadData(); err != nil {
		var syntaxErr *json.SyntaxError
		if !errors.As(err, &syntaxErr) {
			return nil, err
		}
		// corrupt file, start over empty
		log.Printf("JSONStorage - Corrupt storage file %s, starting empty: %v", path, err)
		s.data = storageData{}
		if err := s.saveData(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *JSONStorage) loadData() error {
	if _, err := os.Stat(s.filePath); os.IsNotExist(err) {
		return s.saveData()
	}

	fileData, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}
	if len(fileData) == 0 {
		return nil
	}

	if err := json.Unmarshal(fileData, &s.data); err != nil {
		return err
	}
	if s.data == nil {
		s.data = storageData{}
	}
	return nil
}

func (s *JSONStorage) saveData() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.filePath, data, 0644)
}

// Scope returns the view of the storage that belongs to one session. The
// same name yields the same Scope until it is released.
func (s *JSONStorage) Scope(name string) *Scope {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sc, ok := s.scopes[name]; ok {
		return sc
	}
	sc := &Scope{store: s, name: name}
	s.scopes[name] = sc
	return sc
}

// HasScope reports whether anything is stored under name.
func (s *JSONStorage) HasScope(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[name]
	return ok
}

// MoveScope renames a scope, carrying its items along. Scopes
// already handed out for from keep working under the new name. Anything
// stored under to is replaced.
func (s *JSONStorage) MoveScope(from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sc, ok := s.scopes[from]; ok {
		sc.name = to
		delete(s.scopes, from)
		s.scopes[to] = sc
	}
	items, ok := s.data[from]
	if !ok {
		return nil
	}
	delete(s.data, from)
	s.data[to] = items
	log.Printf("JSONStorage.MoveScope - Moved %d items from %s to %s", len(items), from, to)
	return s.saveData()
}

// ReleaseScope forgets the Scope handed out for name. Stored items stay.
func (s *JSONStorage) ReleaseScope(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scopes, name)
}

func (s *JSONStorage) getItem(sc *Scope, key string) (json.RawMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.data[sc.name][key]
	if !ok {
		return nil, false
	}
	out := make(json.RawMessage, len(value))
	copy(out, value)
	return out, true
}

func (s *JSONStorage) setItem(sc *Scope, key string, value json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, ok := s.data[sc.name]
	if !ok {
		items = map[string]json.RawMessage{}
		s.data[sc.name] = items
	}
	items[key] = value
	return s.saveData()
}

func (s *JSONStorage) removeItem(sc *Scope, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, ok := s.data[sc.name]
	if !ok {
		return nil
	}
	if _, ok := items[key]; !ok {
		return nil
	}
	delete(items, key)
	if len(items) == 0 {
		delete(s.data, sc.name)
	}
	return s.saveData()
}

// Scope is one session's slice of the storage, with the same three calls a
// browser's localStorage offers.
type Scope struct {
	store *JSONStorage
	// name is guarded by store.mu
	name string
}

// GetItem returns the raw JSON stored under key.
func (sc *Scope) GetItem(key string) (json.RawMessage, bool) {
	return sc.store.getItem(sc, key)
}

// SetItem encodes value as JSON and stores it under key.
func (sc *Scope) SetItem(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return sc.store.setItem(sc, key, raw)
}

// RemoveItem deletes key. Removing a missing key is not an error.
func (sc *Scope) RemoveItem(key string) error {
	return sc.store.removeItem(sc, key)
}
