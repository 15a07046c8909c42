package collection

import (
	"context"
	"fmt"
	"sync"

	apperrors "github.com/louisbranch/royaltydesk/internal/platform/errors"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RemoteCall performs the server side of a mutation and returns the
// authoritative entity. A zero-ID result confirms the mutation without a body,
// and the optimistic value is kept.
type RemoteCall[E Entity] func(ctx context.Context) (E, error)

// Mutator applies optimistic updates to a Store. At most one mutation per
// entity may be in flight; a second one is rejected as busy, not queued.
type Mutator[E Entity] struct {
	store *Store[E]

	mu       sync.Mutex
	inflight map[ID]struct{}
}

// NewMutator builds a mutator over store.
func NewMutator[E Entity](store *Store[E]) *Mutator[E] {
	return &Mutator[E]{
		store:    store,
		inflight: make(map[ID]struct{}),
	}
}

// Pending reports whether a mutation for id is in flight.
func (m *Mutator[E]) Pending(id ID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.inflight[id]
	return ok
}

// Mutate applies patch to the store immediately, then runs remote. On success
// the server's entity replaces the local one; on failure the pre-mutation
// entity is restored and the classified error returned. If the entity is
// removed while remote runs, neither outcome brings it back.
func (m *Mutator[E]) Mutate(ctx context.Context, id ID, patch Patch[E], remote RemoteCall[E]) (E, error) {
	var zero E
	if ctx == nil {
		ctx = context.Background()
	}
	if err := validatePatch(patch); err != nil {
		return zero, err
	}
	if remote == nil {
		return zero, apperrors.E(apperrors.KindValidation, "remote call is required")
	}
	if !m.acquire(id) {
		return zero, apperrors.E(apperrors.KindBusy, fmt.Sprintf("%s %d has a mutation in flight", m.store.name, id))
	}
	defer m.release(id)

	ctx, span := m.store.tracer.Start(ctx, "collection.Mutate", trace.WithAttributes(
		attribute.String("collection.name", m.store.name),
		attribute.Int64("collection.entity_id", int64(id)),
	))
	defer span.End()

	prev, optimistic, err := m.store.patch(id, patch)
	if err != nil {
		span.SetStatus(otelcodes.Error, string(apperrors.KindOf(err)))
		return zero, err
	}

	confirmed, err := remote(ctx)
	if err == nil && confirmed.EntityID() != 0 && confirmed.EntityID() != id {
		err = apperrors.E(apperrors.KindNetwork, fmt.Sprintf("malformed response: expected %s %d, got %d", m.store.name, id, confirmed.EntityID()))
	}
	if err != nil {
		err = apperrors.FromTransport(err)
		m.store.swapIfPresent(id, prev)
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, string(apperrors.KindOf(err)))
		return zero, err
	}
	if confirmed.EntityID() == 0 {
		return optimistic, nil
	}
	m.store.swapIfPresent(id, confirmed)
	return confirmed, nil
}

func (m *Mutator[E]) acquire(id ID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, busy := m.inflight[id]; busy {
		return false
	}
	m.inflight[id] = struct{}{}
	return true
}

func (m *Mutator[E]) release(id ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inflight, id)
}

// swapIfPresent overwrites id only if it is still in an open store.
func (s *Store[E]) swapIfPresent(id ID, entity E) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	if _, ok := s.entities[id]; !ok {
		return false
	}
	s.entities[id] = entity
	s.version++
	return true
}
