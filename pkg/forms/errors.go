package forms

import "sort"

// Errors accumulates validation messages keyed by field name. Message order
// within a field is preserved so renderers show problems in the order the
// pipeline found them.
type Errors map[string][]string

// Add appends a message to the named field's list. Empty messages are
// ignored.
func (e Errors) Add(field, message string) {
	if message == "" {
		return
	}
	e[field] = append(e[field], message)
}

// Merge appends every message from other, field by field.
func (e Errors) Merge(other Errors) {
	for field, messages := range other {
		e[field] = append(e[field], messages...)
	}
}

// Has reports whether the named field carries at least one message.
func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// Field returns a copy of the named field's messages.
func (e Errors) Field(field string) []string {
	messages := e[field]
	if len(messages) == 0 {
		return nil
	}
	return append([]string(nil), messages...)
}

// Fields returns the field names carrying errors, sorted.
func (e Errors) Fields() []string {
	if len(e) == 0 {
		return nil
	}
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
