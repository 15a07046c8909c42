package collection

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	apperrors "github.com/louisbranch/royaltydesk/internal/platform/errors"
)

// FacetKind distinguishes value-set facets from numeric range facets.
type FacetKind int

const (
	// FacetSet matches an attribute against a set of accepted values.
	FacetSet FacetKind = iota
	// FacetRange buckets a numeric attribute and matches accepted bucket labels.
	FacetRange
)

// Bucket is one labelled numeric range of a range facet. Min is inclusive and
// Max exclusive; a Max of +Inf makes the bucket open-ended.
type Bucket struct {
	Label string
	Min   float64
	Max   float64
}

// OpenBucket builds the open-ended top bucket [min, +Inf).
func OpenBucket(label string, min float64) Bucket {
	return Bucket{Label: label, Min: min, Max: math.Inf(1)}
}

// Contains reports whether v falls into the bucket.
func (b Bucket) Contains(v float64) bool {
	if math.IsNaN(v) || v < b.Min {
		return false
	}
	return math.IsInf(b.Max, 1) || v < b.Max
}

// Facet declares one filterable attribute of E.
type Facet[E any] struct {
	Name string
	Kind FacetKind
	// Value extracts the attribute for set facets.
	Value func(E) string
	// Number extracts the attribute for range facets; ok=false never matches.
	Number  func(E) (float64, bool)
	Buckets []Bucket
}

// SortKey declares one sortable attribute of E. Compare returns a negative
// number when a sorts before b in ascending order.
type SortKey[E any] struct {
	Name    string
	Compare func(a, b E) int
}

// Schema lists the facets and sort keys a view of E accepts.
type Schema[E any] struct {
	facets map[string]Facet[E]
	sorts  map[string]SortKey[E]
}

// NewSchema validates and indexes facet and sort declarations.
func NewSchema[E any](facets []Facet[E], sorts []SortKey[E]) (*Schema[E], error) {
	schema := &Schema[E]{
		facets: make(map[string]Facet[E], len(facets)),
		sorts:  make(map[string]SortKey[E], len(sorts)),
	}
	for _, facet := range facets {
		name := strings.TrimSpace(facet.Name)
		if name == "" {
			return nil, fmt.Errorf("facet name is required")
		}
		if _, dup := schema.facets[name]; dup {
			return nil, fmt.Errorf("facet %q declared twice", name)
		}
		switch facet.Kind {
		case FacetSet:
			if facet.Value == nil {
				return nil, fmt.Errorf("facet %q requires a value accessor", name)
			}
		case FacetRange:
			if facet.Number == nil {
				return nil, fmt.Errorf("facet %q requires a number accessor", name)
			}
			if len(facet.Buckets) == 0 {
				return nil, fmt.Errorf("facet %q requires buckets", name)
			}
			seen := make(map[string]struct{}, len(facet.Buckets))
			for _, bucket := range facet.Buckets {
				if _, dup := seen[bucket.Label]; dup || bucket.Label == "" {
					return nil, fmt.Errorf("facet %q has an empty or duplicate bucket label %q", name, bucket.Label)
				}
				if !(bucket.Min < bucket.Max) {
					return nil, fmt.Errorf("facet %q bucket %q is empty", name, bucket.Label)
				}
				seen[bucket.Label] = struct{}{}
			}
		default:
			return nil, fmt.Errorf("facet %q has unknown kind %d", name, facet.Kind)
		}
		facet.Name = name
		schema.facets[name] = facet
	}
	for _, key := range sorts {
		name := strings.TrimSpace(key.Name)
		if name == "" || key.Compare == nil {
			return nil, fmt.Errorf("sort key %q requires a name and comparator", name)
		}
		if _, dup := schema.sorts[name]; dup {
			return nil, fmt.Errorf("sort key %q declared twice", name)
		}
		key.Name = name
		schema.sorts[name] = key
	}
	return schema, nil
}

// MustSchema is NewSchema for package-level declarations; it panics on error.
func MustSchema[E any](facets []Facet[E], sorts []SortKey[E]) *Schema[E] {
	schema, err := NewSchema(facets, sorts)
	if err != nil {
		panic("collection: " + err.Error())
	}
	return schema
}

// Facet returns the named facet declaration.
func (s *Schema[E]) Facet(name string) (Facet[E], bool) {
	facet, ok := s.facets[name]
	return facet, ok
}

// FacetNames returns the declared facet names in lexical order.
func (s *Schema[E]) FacetNames() []string {
	names := make([]string, 0, len(s.facets))
	for name := range s.facets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SortFields returns the declared sort key names in lexical order.
func (s *Schema[E]) SortFields() []string {
	names := make([]string, 0, len(s.sorts))
	for name := range s.sorts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Filters maps a facet name to its accepted values. Facets combine with AND,
// values within one facet combine with OR. A facet with no values is inactive.
type Filters map[string][]string

// With returns a copy of f with values added to facet.
func (f Filters) With(facet string, values ...string) Filters {
	out := make(Filters, len(f)+1)
	for name, existing := range f {
		out[name] = slices.Clone(existing)
	}
	out[facet] = append(out[facet], values...)
	return out
}

// SortSpec selects one sort key and its direction.
type SortSpec struct {
	Field string
	Desc  bool
}

// String renders the sort in order_by syntax.
func (s SortSpec) String() string {
	if s.Desc {
		return s.Field + " desc"
	}
	return s.Field
}

type predicate[E any] func(E) bool

// Compute returns the IDs of the entities in snapshot that pass every active
// facet, stably sorted by spec. Ties keep snapshot order. The result depends
// only on its arguments.
func Compute[E Entity](snapshot []E, schema *Schema[E], filters Filters, spec SortSpec) ([]ID, error) {
	if schema == nil {
		return nil, apperrors.E(apperrors.KindValidation, "view schema is required")
	}
	predicates, err := compilePredicates(schema, filters)
	if err != nil {
		return nil, err
	}
	var compare func(a, b E) int
	if spec.Field != "" {
		key, ok := schema.sorts[spec.Field]
		if !ok {
			return nil, apperrors.E(apperrors.KindValidation, fmt.Sprintf("unknown sort field %q", spec.Field))
		}
		compare = key.Compare
		if spec.Desc {
			compare = func(a, b E) int { return key.Compare(b, a) }
		}
	}

	matched := make([]E, 0, len(snapshot))
	for _, entity := range snapshot {
		if matchesAll(entity, predicates) {
			matched = append(matched, entity)
		}
	}
	if compare != nil {
		slices.SortStableFunc(matched, compare)
	}
	ids := make([]ID, len(matched))
	for i, entity := range matched {
		ids[i] = entity.EntityID()
	}
	return ids, nil
}

// View computes a derived view over the store's current snapshot.
func (s *Store[E]) View(schema *Schema[E], filters Filters, spec SortSpec) ([]ID, error) {
	return Compute(s.Snapshot(), schema, filters, spec)
}

// Resolve maps ids to the entities currently in the store, skipping ids that
// have since been removed.
func (s *Store[E]) Resolve(ids []ID) []E {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]E, 0, len(ids))
	for _, id := range ids {
		if entity, ok := s.entities[id]; ok {
			out = append(out, entity)
		}
	}
	return out
}

func matchesAll[E any](entity E, predicates []predicate[E]) bool {
	for _, match := range predicates {
		if !match(entity) {
			return false
		}
	}
	return true
}

func compilePredicates[E any](schema *Schema[E], filters Filters) ([]predicate[E], error) {
	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	sort.Strings(names)

	predicates := make([]predicate[E], 0, len(names))
	for _, name := range names {
		values := filters[name]
		facet, ok := schema.facets[name]
		if !ok {
			return nil, apperrors.E(apperrors.KindValidation, fmt.Sprintf("unknown filter facet %q", name))
		}
		if len(values) == 0 {
			continue
		}
		switch facet.Kind {
		case FacetRange:
			buckets, err := selectBuckets(facet, values)
			if err != nil {
				return nil, err
			}
			number := facet.Number
			predicates = append(predicates, func(entity E) bool {
				v, ok := number(entity)
				if !ok {
					return false
				}
				for _, bucket := range buckets {
					if bucket.Contains(v) {
						return true
					}
				}
				return false
			})
		default:
			accepted := make(map[string]struct{}, len(values))
			for _, value := range values {
				accepted[value] = struct{}{}
			}
			value := facet.Value
			predicates = append(predicates, func(entity E) bool {
				_, ok := accepted[value(entity)]
				return ok
			})
		}
	}
	return predicates, nil
}

func selectBuckets[E any](facet Facet[E], labels []string) ([]Bucket, error) {
	selected := make([]Bucket, 0, len(labels))
	for _, label := range labels {
		found := false
		for _, bucket := range facet.Buckets {
			if bucket.Label == label {
				selected = append(selected, bucket)
				found = true
				break
			}
		}
		if !found {
			return nil, apperrors.E(apperrors.KindValidation, fmt.Sprintf("unknown %s bucket %q", facet.Name, label))
		}
	}
	return selected, nil
}
