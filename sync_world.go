package bbecs

import "sync"

// SyncWorld guards a World with a read-write lock for hosts that touch it from
// more than one goroutine.
type SyncWorld struct {
	mu    sync.RWMutex
	world *World
}

// NewSyncWorld wraps w.
func NewSyncWorld(w *World) *SyncWorld {
	return &SyncWorld{world: w}
}

// Read runs fn under the shared lock. fn must not mutate the world or write
// through query refs.
func (s *SyncWorld) Read(fn func(*World) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.world)
}

// Write runs fn under the exclusive lock.
func (s *SyncWorld) Write(fn func(*World) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.world)
}
