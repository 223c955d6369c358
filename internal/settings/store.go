package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sync"
)

// MemoryStore keeps values in process memory only.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]int{}}
}

func (store *MemoryStore) Get(key string, def int) int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	if v, ok := store.values[key]; ok {
		return v
	}
	return def
}

func (store *MemoryStore) Set(key string, value int) error {
	store.mu.Lock()
	store.values[key] = value
	store.mu.Unlock()
	return nil
}

func (store *MemoryStore) GetAll() map[string]int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return maps.Clone(store.values)
}

func (store *MemoryStore) SetAll(values map[string]int) error {
	store.mu.Lock()
	maps.Copy(store.values, values)
	store.mu.Unlock()
	return nil
}

// FileStore persists values as a flat JSON object, rewritten on every Set or SetAll.
type FileStore struct {
	mu     sync.RWMutex
	path   string
	values map[string]int
}

// OpenFileStore loads path if it exists. A missing file is an empty store; a file that is
// not a JSON object of integers is reported and the store starts empty.
func OpenFileStore(path string) (*FileStore, error) {
	store := &FileStore{path: path, values: map[string]int{}}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return store, nil
	}
	if err != nil {
		return store, fmt.Errorf("read settings %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &store.values); err != nil {
		store.values = map[string]int{}
		return store, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return store, nil
}

func (store *FileStore) Path() string { return store.path }

func (store *FileStore) Get(key string, def int) int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	if v, ok := store.values[key]; ok {
		return v
	}
	return def
}

func (store *FileStore) Set(key string, value int) error {
	return store.SetAll(map[string]int{key: value})
}

func (store *FileStore) GetAll() map[string]int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return maps.Clone(store.values)
}

// SetAll applies values with a single file rewrite. On a failed write the in-memory
// values are rolled back, so the store matches what is on disk.
func (store *FileStore) SetAll(values map[string]int) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	previous := maps.Clone(store.values)
	maps.Copy(store.values, values)
	if err := store.flushLocked(); err != nil {
		store.values = previous
		return err
	}
	return nil
}

// flushLocked writes through a temp file in the same directory and renames it into place.
func (store *FileStore) flushLocked() error {
	data, err := json.MarshalIndent(store.values, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(store.path)
	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("write settings %s: %w", store.path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write settings %s: %w", store.path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write settings %s: %w", store.path, err)
	}
	if err := os.Rename(tmpName, store.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write settings %s: %w", store.path, err)
	}
	return nil
}
