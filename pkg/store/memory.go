package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-modelforms/pkg/entity"
)

// Memory is an in-memory Repository keyed by the entity registry it was
// built with. Writes enforce every unconditional unique field set declared
// on the entity, mirroring what a relational backend does with declared
// constraints: validation may have been skipped or raced, the store still
// refuses the commit.
type Memory struct {
	registry *entity.Registry

	mu        sync.RWMutex
	tables    map[string]map[string]Record
	order     map[string][]string
	observers []Observer
}

// MemoryOption configures the repository.
type MemoryOption func(*Memory)

// WithObserver subscribes an observer to repository events.
func WithObserver(observer Observer) MemoryOption {
	return func(m *Memory) {
		if observer != nil {
			m.observers = append(m.observers, observer)
		}
	}
}

// NewMemory builds an empty repository over the given entity registry.
func NewMemory(registry *entity.Registry, options ...MemoryOption) *Memory {
	m := &Memory{
		registry: registry,
		tables:   make(map[string]map[string]Record),
		order:    make(map[string][]string),
	}
	for _, opt := range options {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Exists reports whether any record matches the query filters. The check is
// read-only and never mutates repository state.
func (m *Memory) Exists(ctx context.Context, entityName string, options ...QueryOption) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	query := BuildQuery(options...)

	m.mu.RLock()
	matched := false
	for _, pk := range m.order[entityName] {
		record := m.tables[entityName][pk]
		if query.ExcludePK != "" && record.PK == query.ExcludePK {
			continue
		}
		if matchesQuery(record, query) {
			matched = true
			break
		}
	}
	m.mu.RUnlock()

	m.notify(Event{
		Type:      EventExists,
		Entity:    entityName,
		PK:        query.ExcludePK,
		Fields:    matchFields(query),
		Matched:   matched,
		Timestamp: time.Now(),
	})
	return matched, nil
}

// Get returns the record with the given identity.
func (m *Memory) Get(ctx context.Context, entityName, pk string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.tables[entityName][pk]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s %q", ErrNotFound, entityName, pk)
	}
	return record.Clone(), nil
}

// List returns the matching records in insertion order.
func (m *Memory) List(ctx context.Context, entityName string, options ...QueryOption) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query := BuildQuery(options...)

	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Record
	for _, pk := range m.order[entityName] {
		record := m.tables[entityName][pk]
		if query.ExcludePK != "" && record.PK == query.ExcludePK {
			continue
		}
		if matchesQuery(record, query) {
			result = append(result, record.Clone())
		}
	}
	return result, nil
}

// Insert persists a new record, assigning an identity when the record has
// none. Declared unique field sets are enforced before the write lands.
func (m *Memory) Insert(ctx context.Context, entityName string, record Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	m.mu.Lock()
	if record.PK == "" {
		record.PK = uuid.NewString()
	} else if _, exists := m.tables[entityName][record.PK]; exists {
		m.mu.Unlock()
		return Record{}, fmt.Errorf("store: %s %q already exists", entityName, record.PK)
	}

	stored := record.Clone()
	if err := m.checkConstraintsLocked(entityName, stored); err != nil {
		m.mu.Unlock()
		m.notify(Event{
			Type:      EventIntegrity,
			Entity:    entityName,
			PK:        stored.PK,
			Timestamp: time.Now(),
			Err:       err,
		})
		return Record{}, err
	}

	if m.tables[entityName] == nil {
		m.tables[entityName] = make(map[string]Record)
	}
	m.tables[entityName][stored.PK] = stored
	m.order[entityName] = append(m.order[entityName], stored.PK)
	m.mu.Unlock()

	m.notify(Event{
		Type:      EventInsert,
		Entity:    entityName,
		PK:        stored.PK,
		Timestamp: time.Now(),
	})
	return stored.Clone(), nil
}

// Update replaces the attributes of an existing record.
func (m *Memory) Update(ctx context.Context, entityName string, record Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	if record.PK == "" {
		return Record{}, fmt.Errorf("store: update requires an identity for %s", entityName)
	}

	m.mu.Lock()
	if _, ok := m.tables[entityName][record.PK]; !ok {
		m.mu.Unlock()
		return Record{}, fmt.Errorf("%w: %s %q", ErrNotFound, entityName, record.PK)
	}

	stored := record.Clone()
	if err := m.checkConstraintsLocked(entityName, stored); err != nil {
		m.mu.Unlock()
		m.notify(Event{
			Type:      EventIntegrity,
			Entity:    entityName,
			PK:        stored.PK,
			Timestamp: time.Now(),
			Err:       err,
		})
		return Record{}, err
	}

	m.tables[entityName][stored.PK] = stored
	m.mu.Unlock()

	m.notify(Event{
		Type:      EventUpdate,
		Entity:    entityName,
		PK:        stored.PK,
		Timestamp: time.Now(),
	})
	return stored.Clone(), nil
}

// Delete removes a record by identity.
func (m *Memory) Delete(ctx context.Context, entityName, pk string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	if _, ok := m.tables[entityName][pk]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s %q", ErrNotFound, entityName, pk)
	}
	delete(m.tables[entityName], pk)

	kept := m.order[entityName][:0]
	for _, existing := range m.order[entityName] {
		if existing != pk {
			kept = append(kept, existing)
		}
	}
	m.order[entityName] = kept
	m.mu.Unlock()

	m.notify(Event{
		Type:      EventDelete,
		Entity:    entityName,
		PK:        pk,
		Timestamp: time.Now(),
	})
	return nil
}

func (m *Memory) checkConstraintsLocked(entityName string, record Record) error {
	if m.registry == nil || !m.registry.Has(entityName) {
		return nil
	}
	meta, err := m.registry.Get(entityName)
	if err != nil {
		return err
	}

	for _, set := range meta.UniqueFieldSets() {
		values := make(map[string]any, len(set))
		for _, fieldName := range set {
			value, _ := record.Get(fieldName)
			values[fieldName] = value
		}
		query := Query{Match: values, ExcludePK: record.PK}
		for _, pk := range m.order[entityName] {
			existing := m.tables[entityName][pk]
			if query.ExcludePK != "" && existing.PK == query.ExcludePK {
				continue
			}
			if matchesQuery(existing, query) {
				return &IntegrityError{
					Entity:     entityName,
					Constraint: "unique",
					Fields:     append([]string(nil), set...),
					PK:         record.PK,
				}
			}
		}
	}
	return nil
}

func (m *Memory) notify(event Event) {
	for _, observer := range m.observers {
		observer.OnEvent(event)
	}
}

func matchesQuery(record Record, query Query) bool {
	for name, want := range query.Match {
		got, _ := record.Get(name)
		if !valuesEqual(want, got) {
			return false
		}
	}
	return true
}

func matchFields(query Query) []string {
	if len(query.Match) == 0 {
		return nil
	}
	fields := make([]string, 0, len(query.Match))
	for name := range query.Match {
		fields = append(fields, name)
	}
	return fields
}

// valuesEqual compares attribute values with numeric widening so a cleaned
// int matches a stored int64 and vice versa.
func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return af == bf
		}
		return false
	}
	return a == b
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
