package forms

import (
	"strings"

	"github.com/goliatone/go-modelforms/pkg/store"
)

// Option configures a Form during construction.
type Option func(*Form)

// WithFields restricts the form to a subset of the entity's fields. The
// subset is resolved once, when New returns; it is never re-derived per
// request.
func WithFields(names ...string) Option {
	return func(f *Form) {
		for _, name := range names {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				f.fields = append(f.fields, trimmed)
			}
		}
	}
}

// WithInstance targets an existing record. Without it the form wraps a new,
// unsaved instance.
func WithInstance(record store.Record) Option {
	return func(f *Form) {
		f.instance = record.Clone()
	}
}

// WithRepository wires the query collaborator used for reference resolution,
// the uniqueness check, and Save.
func WithRepository(repo store.Repository) Option {
	return func(f *Form) {
		f.repo = repo
	}
}

// WithSanitizer runs submitted string values through the given sanitizer
// before any other cleaning.
func WithSanitizer(sanitizer Sanitizer) Option {
	return func(f *Form) {
		f.sanitizer = sanitizer
	}
}

// WithCleaner appends a custom clean step. Cleaners run after per-field
// cleaning in registration order, before the uniqueness check.
func WithCleaner(cleaner Cleaner) Option {
	return func(f *Form) {
		if cleaner != nil {
			f.cleaners = append(f.cleaners, cleaner)
		}
	}
}

// WithUniqueCheck enables the composite-uniqueness clean step. It is the
// last step of the pipeline and requires a repository to have any effect.
func WithUniqueCheck() Option {
	return func(f *Form) {
		f.uniqueCheck = true
	}
}
