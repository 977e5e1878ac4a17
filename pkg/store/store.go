package store

import "context"

// Record is a persisted (or about-to-be persisted) entity instance. A record
// with an empty PK has no identity yet; the memory repository assigns one on
// insert.
type Record struct {
	PK    string
	Attrs map[string]any
}

// NewRecord builds an unsaved record from attribute values.
func NewRecord(attrs map[string]any) Record {
	copied := make(map[string]any, len(attrs))
	for key, value := range attrs {
		copied[key] = value
	}
	return Record{Attrs: copied}
}

// Get returns the named attribute value. Missing attributes report ok=false
// so callers can distinguish "absent" from "stored nil".
func (r Record) Get(name string) (any, bool) {
	if r.Attrs == nil {
		return nil, false
	}
	value, ok := r.Attrs[name]
	return value, ok
}

// Clone returns a deep-enough copy for the flat attribute maps records carry.
func (r Record) Clone() Record {
	copied := make(map[string]any, len(r.Attrs))
	for key, value := range r.Attrs {
		copied[key] = value
	}
	return Record{PK: r.PK, Attrs: copied}
}

// Query captures the filters an existence or list call applies.
type Query struct {
	// Match is an exact-value conjunction over named attributes. A nil value
	// matches records where the attribute is nil or absent.
	Match map[string]any
	// ExcludePK omits one identity from the result. Empty means no exclusion,
	// which is the right behaviour for unsaved instances.
	ExcludePK string
}

// QueryOption configures a Query.
type QueryOption func(*Query)

// Match filters on an exact-value conjunction of named attributes.
func Match(values map[string]any) QueryOption {
	return func(q *Query) {
		if len(values) == 0 {
			return
		}
		if q.Match == nil {
			q.Match = make(map[string]any, len(values))
		}
		for key, value := range values {
			q.Match[key] = value
		}
	}
}

// MatchField filters on a single attribute value.
func MatchField(name string, value any) QueryOption {
	return func(q *Query) {
		if q.Match == nil {
			q.Match = make(map[string]any, 1)
		}
		q.Match[name] = value
	}
}

// ExcludePK omits the record with the given identity.
func ExcludePK(pk string) QueryOption {
	return func(q *Query) {
		q.ExcludePK = pk
	}
}

// BuildQuery applies the options to an empty Query.
func BuildQuery(options ...QueryOption) Query {
	var q Query
	for _, opt := range options {
		if opt != nil {
			opt(&q)
		}
	}
	return q
}

// Repository is the persistence collaborator. Exists is the only call the
// validation path uses; it must be read-only and must not lock rows.
type Repository interface {
	Exists(ctx context.Context, entity string, options ...QueryOption) (bool, error)
	Get(ctx context.Context, entity, pk string) (Record, error)
	List(ctx context.Context, entity string, options ...QueryOption) ([]Record, error)
	Insert(ctx context.Context, entity string, record Record) (Record, error)
	Update(ctx context.Context, entity string, record Record) (Record, error)
	Delete(ctx context.Context, entity, pk string) error
}
