package anvil

import "sync"

// Registry maps region-file paths to a single shared, mutually-excluded
// RegionFile instance, so that a process never opens the same path twice
// concurrently — spec.md §5 assigns this responsibility to "the world
// layer above this core"; this is that layer's minimal implementation,
// mirroring the sync.RWMutex-guarded map in
// internal/server/world/world.go.
type Registry struct {
	mu    sync.Mutex
	files map[string]*registryEntry
}

type registryEntry struct {
	mu sync.Mutex
	rf *RegionFile
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{files: make(map[string]*registryEntry)}
}

// With opens (or reuses) the region file at path, locks it exclusively,
// runs fn, and unlocks it, all before returning. The RegionFile passed to
// fn must not be retained past the call — With serializes every caller
// across the whole process for a given path.
func (r *Registry) With(path string, fn func(rf *RegionFile) error) error {
	entry, err := r.entry(path)
	if err != nil {
		return err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.rf)
}

func (r *Registry) entry(path string) (*registryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.files[path]; ok {
		return e, nil
	}
	rf, err := OpenOrCreate(path)
	if err != nil {
		return nil, err
	}
	e := &registryEntry{rf: rf}
	r.files[path] = e
	return e, nil
}

// Close closes and forgets every RegionFile this registry has opened.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for path, e := range r.files {
		e.mu.Lock()
		if err := e.rf.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		e.mu.Unlock()
		delete(r.files, path)
	}
	return firstErr
}
