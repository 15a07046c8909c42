// Package collection keeps remote collections in memory and derives filtered,
// grouped and sorted views from them.
//
// A Store owns the entities of one collection for the lifetime of a session.
// Views, selections and optimistic mutations all read through the Store, so a
// change made anywhere is visible everywhere on the next read.
package collection

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sync"

	apperrors "github.com/louisbranch/royaltydesk/internal/platform/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/louisbranch/royaltydesk/internal/collection"

// ErrSuperseded is returned by Load when a newer Load was dispatched before
// this one completed. The response was discarded and the store is unchanged.
var ErrSuperseded = errors.New("load superseded by a newer request")

// ID identifies one entity within a collection.
type ID int64

// Entity is any record with a stable unique identifier.
type Entity interface {
	EntityID() ID
}

// Status is the request lifecycle state of a Store.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusLoaded  Status = "loaded"
	StatusError   Status = "error"
)

// Fetcher loads the full contents of a collection for a query.
type Fetcher[E Entity] func(ctx context.Context, query url.Values) ([]E, error)

// Store holds one remote collection keyed by entity ID.
type Store[E Entity] struct {
	name   string
	fetch  Fetcher[E]
	tracer trace.Tracer

	mu       sync.RWMutex
	entities map[ID]E
	order    []ID
	status   Status
	lastErr  error
	version  uint64
	seq      uint64
	inflight map[uint64]context.CancelFunc
	closed   bool
}

// NewStore builds an empty store for the named collection. A nil fetcher
// makes every Load fail as unavailable.
func NewStore[E Entity](name string, fetch Fetcher[E]) *Store[E] {
	return &Store[E]{
		name:     name,
		fetch:    fetch,
		tracer:   otel.Tracer(tracerName),
		entities: make(map[ID]E),
		status:   StatusIdle,
		inflight: make(map[uint64]context.CancelFunc),
	}
}

// Name returns the collection name.
func (s *Store[E]) Name() string {
	return s.name
}

// Load replaces the whole collection with the fetch result.
//
// Loads are tagged with a sequence number: only the most recently dispatched
// load may write the store, so an older response arriving late is discarded
// and ErrSuperseded is returned to its caller. A failed load keeps the previous
// contents and records the error in Status and LastError.
func (s *Store[E]) Load(ctx context.Context, query url.Values) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return s.closedError()
	}
	s.seq++
	seq := s.seq
	loadCtx, cancel := context.WithCancel(ctx)
	s.inflight[seq] = cancel
	s.status = StatusLoading
	s.version++
	fetch := s.fetch
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inflight, seq)
		s.mu.Unlock()
		cancel()
	}()

	loadCtx, span := s.tracer.Start(loadCtx, "collection.Load", trace.WithAttributes(
		attribute.String("collection.name", s.name),
		attribute.Int64("collection.seq", int64(seq)),
	))
	defer span.End()

	var (
		items []E
		err   error
	)
	if fetch == nil {
		err = apperrors.E(apperrors.KindUnavailable, fmt.Sprintf("%s fetcher is not configured", s.name))
	} else {
		items, err = fetch(loadCtx, query)
	}

	var next map[ID]E
	var order []ID
	if err == nil {
		next, order, err = index(items)
	}
	err = apperrors.FromTransport(err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		span.SetAttributes(attribute.Bool("collection.discarded", true))
		return s.closedError()
	}
	if seq < s.seq {
		span.SetAttributes(attribute.Bool("collection.discarded", true))
		log.Printf("%s load #%d superseded by #%d, response discarded", s.name, seq, s.seq)
		return ErrSuperseded
	}
	s.version++
	if err != nil {
		s.status = StatusError
		s.lastErr = err
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, string(apperrors.KindOf(err)))
		return err
	}
	s.entities = next
	s.order = order
	s.status = StatusLoaded
	s.lastErr = nil
	span.SetAttributes(attribute.Int("collection.size", len(order)))
	return nil
}

// Restore seeds the collection from a previously persisted snapshot without
// touching the request status. It fails if a load is already in flight or
// has completed, so a stale snapshot never overwrites fresher data.
func (s *Store[E]) Restore(items []E) error {
	next, order, err := index(items)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.closedError()
	}
	if s.status != StatusIdle {
		return apperrors.E(apperrors.KindConflict, fmt.Sprintf("%s already loading or loaded", s.name))
	}
	s.entities = next
	s.order = order
	s.version++
	return nil
}

// Get returns the entity with id.
func (s *Store[E]) Get(id ID) (E, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entity, ok := s.entities[id]
	return entity, ok
}

// Len returns the number of entities in the store.
func (s *Store[E]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Snapshot returns the entities in insertion order. The slice is a copy.
func (s *Store[E]) Snapshot() []E {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]E, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entities[id])
	}
	return out
}

// Version increases on every observable change to the store.
func (s *Store[E]) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Status returns the request status.
func (s *Store[E]) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// LastError returns the error recorded by the most recent failed load.
func (s *Store[E]) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Patch merges a partial update into an existing entity.
func (s *Store[E]) Patch(id ID, patch Patch[E]) (E, error) {
	_, next, err := s.patch(id, patch)
	return next, err
}

// patch applies patch atomically and returns both the previous and the
// patched entity.
func (s *Store[E]) patch(id ID, patch Patch[E]) (E, E, error) {
	var zero E
	if err := validatePatch(patch); err != nil {
		return zero, zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return zero, zero, s.closedError()
	}
	prev, ok := s.entities[id]
	if !ok {
		return zero, zero, s.notFound(id)
	}
	next := patch.Apply(prev)
	if next.EntityID() != id {
		return zero, zero, apperrors.E(apperrors.KindValidation, fmt.Sprintf("patch changed %s id %d to %d", s.name, id, next.EntityID()))
	}
	s.entities[id] = next
	s.version++
	return prev, next, nil
}

// Insert adds a new entity. The ID must not already be present.
func (s *Store[E]) Insert(entity E) error {
	id := entity.EntityID()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.closedError()
	}
	if _, exists := s.entities[id]; exists {
		return apperrors.E(apperrors.KindConflict, fmt.Sprintf("%s %d already exists", s.name, id))
	}
	s.entities[id] = entity
	s.order = append(s.order, id)
	s.version++
	return nil
}

// Replace overwrites an existing entity with an authoritative version.
func (s *Store[E]) Replace(entity E) error {
	id := entity.EntityID()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.closedError()
	}
	if _, ok := s.entities[id]; !ok {
		return s.notFound(id)
	}
	s.entities[id] = entity
	s.version++
	return nil
}

// Remove deletes an entity. Selections referencing it resolve to none.
func (s *Store[E]) Remove(id ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.closedError()
	}
	if _, ok := s.entities[id]; !ok {
		return s.notFound(id)
	}
	delete(s.entities, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.version++
	return nil
}

// Close tears the store down. In-flight loads are canceled and their
// responses discarded; every later call fails as unavailable.
func (s *Store[E]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for seq, cancel := range s.inflight {
		cancel()
		delete(s.inflight, seq)
	}
	s.entities = make(map[ID]E)
	s.order = nil
	s.version++
}

func (s *Store[E]) closedError() error {
	return apperrors.E(apperrors.KindUnavailable, fmt.Sprintf("%s store is closed", s.name))
}

func (s *Store[E]) notFound(id ID) error {
	return apperrors.E(apperrors.KindNotFound, fmt.Sprintf("%s %d not found", s.name, id))
}

func index[E Entity](items []E) (map[ID]E, []ID, error) {
	next := make(map[ID]E, len(items))
	order := make([]ID, 0, len(items))
	for _, item := range items {
		id := item.EntityID()
		if _, dup := next[id]; dup {
			return nil, nil, apperrors.E(apperrors.KindNetwork, fmt.Sprintf("malformed response: duplicate id %d", id))
		}
		next[id] = item
		order = append(order, id)
	}
	return next, order, nil
}
