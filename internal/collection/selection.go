package collection

import "sync"

// Selection tracks the "currently selected" entity as a reference into a
// Store. It never caches the entity: Current re-resolves on every read.
type Selection[E Entity] struct {
	store *Store[E]

	mu  sync.RWMutex
	id  ID
	set bool
}

// NewSelection builds an empty selection over store.
func NewSelection[E Entity](store *Store[E]) *Selection[E] {
	return &Selection[E]{store: store}
}

// Select points the selection at id. The id need not be loaded yet.
func (s *Selection[E]) Select(id ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
	s.set = true
}

// Clear drops the selection.
func (s *Selection[E]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = 0
	s.set = false
}

// ID returns the selected id, whether or not it currently resolves.
func (s *Selection[E]) ID() (ID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id, s.set
}

// Current resolves the selected entity against the live store.
func (s *Selection[E]) Current() (E, bool) {
	var zero E
	id, ok := s.ID()
	if !ok || s.store == nil {
		return zero, false
	}
	return s.store.Get(id)
}
