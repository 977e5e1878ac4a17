package entity

import (
	"errors"
	"fmt"
	"strings"
)

// FieldType is the simplified enum for the value kinds the forms layer can
// clean and compare.
type FieldType string

const (
	FieldTypeString    FieldType = "string"
	FieldTypeInteger   FieldType = "integer"
	FieldTypeDecimal   FieldType = "decimal"
	FieldTypeBoolean   FieldType = "boolean"
	FieldTypeReference FieldType = "reference"
)

// Message template keys recognised in Field.ErrorMessages.
const (
	MessageUnique   = "unique"
	MessageRequired = "required"
	MessageInvalid  = "invalid"
)

// DefaultUniqueMessage is the template interpolated when a composite
// uniqueness check fails. It is worded identically to the duplicate error the
// backing store reports at write time so the user experience does not depend
// on which layer caught the collision.
const DefaultUniqueMessage = "{model_name} with this {field_label} already exists."

// Field describes a single attribute of an entity type.
type Field struct {
	Name     string
	Type     FieldType
	Verbose  string
	Required bool

	// String constraints.
	MaxLength int

	// Decimal constraints, mirroring a max_digits/decimal_places pair.
	MaxDigits     int
	DecimalPlaces int

	// Positive restricts integer fields to values >= 0.
	Positive bool

	// Target names the entity type a reference field points at.
	Target string

	// ErrorMessages maps message keys (see Message* constants) to templates.
	// Missing keys fall back to package defaults.
	ErrorMessages map[string]string
}

// Constraint is a modern named uniqueness declaration. A constraint carrying
// a condition or expressions requires runtime evaluation the forms layer
// cannot perform, so only plain field-list constraints participate in
// validation; the rest are declared for the store and skipped here.
type Constraint struct {
	Name        string
	Fields      []string
	Condition   string
	Expressions []string
}

// Applicable reports whether the constraint can be checked by an exact-value
// lookup: a non-empty field list with no condition and no expressions.
func (c Constraint) Applicable() bool {
	return len(c.Fields) > 0 && strings.TrimSpace(c.Condition) == "" && len(c.Expressions) == 0
}

// Meta is the descriptor for one entity type.
type Meta struct {
	Name    string
	Verbose string
	Fields  []Field

	// UniqueTogether holds the legacy grouped-field declarations.
	UniqueTogether [][]string
	// Constraints holds the modern named declarations.
	Constraints []Constraint

	fieldIndex map[string]int
}

// MetaOption configures NewMeta.
type MetaOption func(*Meta)

// WithVerbose overrides the derived display name for the entity type.
func WithVerbose(verbose string) MetaOption {
	return func(m *Meta) {
		m.Verbose = strings.TrimSpace(verbose)
	}
}

// WithUniqueTogether declares legacy composite uniqueness groups.
func WithUniqueTogether(groups ...[]string) MetaOption {
	return func(m *Meta) {
		for _, group := range groups {
			m.UniqueTogether = append(m.UniqueTogether, append([]string(nil), group...))
		}
	}
}

// WithConstraints declares modern named uniqueness constraints.
func WithConstraints(constraints ...Constraint) MetaOption {
	return func(m *Meta) {
		m.Constraints = append(m.Constraints, constraints...)
	}
}

// NewMeta builds and validates an entity descriptor. Field labels and the
// entity display name are derived from identifiers when not set explicitly,
// and every field receives a default unique-violation message template.
func NewMeta(name string, fields []Field, options ...MetaOption) (*Meta, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, errors.New("entity: name is required")
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("entity %q: at least one field is required", trimmed)
	}

	meta := &Meta{
		Name:   trimmed,
		Fields: append([]Field(nil), fields...),
	}
	for _, opt := range options {
		if opt != nil {
			opt(meta)
		}
	}

	if meta.Verbose == "" {
		meta.Verbose = VerboseName(meta.Name)
	}

	meta.fieldIndex = make(map[string]int, len(meta.Fields))
	for i := range meta.Fields {
		field := &meta.Fields[i]
		field.Name = strings.TrimSpace(field.Name)
		if field.Name == "" {
			return nil, fmt.Errorf("entity %q: field %d has no name", meta.Name, i)
		}
		if _, exists := meta.fieldIndex[field.Name]; exists {
			return nil, fmt.Errorf("entity %q: duplicate field %q", meta.Name, field.Name)
		}
		if field.Type == "" {
			field.Type = FieldTypeString
		}
		if field.Verbose == "" {
			field.Verbose = VerboseName(field.Name)
		}
		if field.ErrorMessages == nil {
			field.ErrorMessages = make(map[string]string, 1)
		}
		if field.ErrorMessages[MessageUnique] == "" {
			field.ErrorMessages[MessageUnique] = DefaultUniqueMessage
		}
		meta.fieldIndex[field.Name] = i
	}

	for _, group := range meta.UniqueTogether {
		if len(group) == 0 {
			return nil, fmt.Errorf("entity %q: empty unique_together group", meta.Name)
		}
		for _, fieldName := range group {
			if _, ok := meta.fieldIndex[fieldName]; !ok {
				return nil, fmt.Errorf("entity %q: unique_together references unknown field %q", meta.Name, fieldName)
			}
		}
	}
	for _, constraint := range meta.Constraints {
		for _, fieldName := range constraint.Fields {
			if _, ok := meta.fieldIndex[fieldName]; !ok {
				return nil, fmt.Errorf("entity %q: constraint %q references unknown field %q", meta.Name, constraint.Name, fieldName)
			}
		}
	}

	return meta, nil
}

// MustMeta is NewMeta that panics on error, for descriptors defined at
// package initialisation.
func MustMeta(name string, fields []Field, options ...MetaOption) *Meta {
	meta, err := NewMeta(name, fields, options...)
	if err != nil {
		panic(err)
	}
	return meta
}

// Field returns the descriptor for the named field.
func (m *Meta) Field(name string) (Field, bool) {
	idx, ok := m.fieldIndex[name]
	if !ok {
		return Field{}, false
	}
	return m.Fields[idx], true
}

// FieldNames returns the declared field names in order.
func (m *Meta) FieldNames() []string {
	names := make([]string, 0, len(m.Fields))
	for _, field := range m.Fields {
		names = append(names, field.Name)
	}
	return names
}

// UniqueFieldSets enumerates every unconditional composite uniqueness group:
// the legacy unique-together tuples followed by the applicable named
// constraints, in declaration order. Conditional and expression-backed
// constraints are skipped.
func (m *Meta) UniqueFieldSets() [][]string {
	sets := make([][]string, 0, len(m.UniqueTogether)+len(m.Constraints))
	for _, group := range m.UniqueTogether {
		sets = append(sets, append([]string(nil), group...))
	}
	for _, constraint := range m.Constraints {
		if !constraint.Applicable() {
			continue
		}
		sets = append(sets, append([]string(nil), constraint.Fields...))
	}
	return sets
}

// UniqueMessage interpolates the named field's unique-violation template with
// the entity display name and field label.
func (m *Meta) UniqueMessage(fieldName string) string {
	field, ok := m.Field(fieldName)
	if !ok {
		return ""
	}
	template := field.ErrorMessages[MessageUnique]
	if template == "" {
		template = DefaultUniqueMessage
	}
	replacer := strings.NewReplacer(
		"{model_name}", Capfirst(m.Verbose),
		"{model}", m.Name,
		"{field_label}", field.Verbose,
		"{field}", field.Name,
	)
	return replacer.Replace(template)
}
