// Package modelforms re-exports the commonly used types so applications can
// depend on a single import path for the typical flow: describe an entity,
// build a form over it, validate a submission (including composite
// uniqueness), and save.
package modelforms

import (
	"github.com/goliatone/go-modelforms/pkg/entity"
	"github.com/goliatone/go-modelforms/pkg/forms"
	"github.com/goliatone/go-modelforms/pkg/store"
)

// Meta describes an entity type: fields, labels, and uniqueness
// declarations.
type Meta = entity.Meta

// Field describes one entity attribute.
type Field = entity.Field

// Constraint is a named uniqueness declaration.
type Constraint = entity.Constraint

// Form binds submitted data to an entity instance.
type Form = forms.Form

// Errors accumulates validation messages keyed by field name.
type Errors = forms.Errors

// Record is a persisted or unsaved entity instance.
type Record = store.Record

// Repository is the persistence collaborator forms validate against.
type Repository = store.Repository

// NewMeta builds and validates an entity descriptor.
func NewMeta(name string, fields []Field, options ...entity.MetaOption) (*Meta, error) {
	return entity.NewMeta(name, fields, options...)
}

// NewForm builds a form over the given entity descriptor.
func NewForm(meta *Meta, options ...forms.Option) (*Form, error) {
	return forms.New(meta, options...)
}

// NewUniqueForm is NewForm with the composite-uniqueness clean step enabled.
func NewUniqueForm(meta *Meta, options ...forms.Option) (*Form, error) {
	options = append(options, forms.WithUniqueCheck())
	return forms.New(meta, options...)
}
