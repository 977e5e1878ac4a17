package forms

import (
	"context"
	"fmt"

	"github.com/goliatone/go-modelforms/pkg/entity"
	"github.com/goliatone/go-modelforms/pkg/store"
)

// Cleaner is a post-field-validation step. It receives the form after
// per-field cleaning and returns any additional errors to merge into the
// combined report. The non-nil error return is reserved for infrastructure
// failures (for example the repository becoming unreachable); validation
// findings always travel through the Errors value.
type Cleaner interface {
	Clean(ctx context.Context, form *Form) (Errors, error)
}

// CleanerFunc adapts a function to the Cleaner interface.
type CleanerFunc func(ctx context.Context, form *Form) (Errors, error)

// Clean implements Cleaner.
func (f CleanerFunc) Clean(ctx context.Context, form *Form) (Errors, error) {
	return f(ctx, form)
}

// Form binds submitted data to one entity instance, which may be unsaved.
// The bound field set is fixed when New returns and may be a strict subset
// of the entity's fields; fields left off the form fall back to the
// instance's stored values during the uniqueness check.
type Form struct {
	meta     *entity.Meta
	fields   []string
	instance store.Record
	repo     store.Repository

	sanitizer   Sanitizer
	cleaners    []Cleaner
	uniqueCheck bool

	data      map[string]string
	bound     bool
	validated bool
	cleaned   map[string]any
	errs      Errors
}

// New builds a form over the given entity descriptor. Without WithFields the
// form exposes every declared field.
func New(meta *entity.Meta, options ...Option) (*Form, error) {
	if meta == nil {
		return nil, fmt.Errorf("forms: entity meta is required")
	}

	form := &Form{meta: meta}
	for _, opt := range options {
		if opt != nil {
			opt(form)
		}
	}

	if len(form.fields) == 0 {
		form.fields = meta.FieldNames()
	} else {
		for _, name := range form.fields {
			if _, ok := meta.Field(name); !ok {
				return nil, fmt.Errorf("forms: entity %q has no field %q", meta.Name, name)
			}
		}
	}

	return form, nil
}

// Bind stores the submitted raw data and resets any previous validation
// outcome. Keys outside the bound field set are ignored.
func (f *Form) Bind(data map[string]string) {
	f.data = make(map[string]string, len(data))
	for key, value := range data {
		f.data[key] = value
	}
	f.bound = true
	f.validated = false
	f.cleaned = nil
	f.errs = nil
}

// IsValid runs the validation pipeline once and caches the outcome until the
// form is re-bound. The error return reports infrastructure failures only;
// validation findings land in Errors.
func (f *Form) IsValid(ctx context.Context) (bool, error) {
	if f.validated {
		return len(f.errs) == 0, nil
	}
	if !f.bound {
		return false, nil
	}

	errs := make(Errors)

	cleaned, fieldErrs, err := f.cleanFields(ctx)
	if err != nil {
		return false, err
	}
	f.cleaned = cleaned
	errs.Merge(fieldErrs)

	// Custom clean steps run even when field cleaning reported problems so
	// the combined report covers everything in one pass.
	for _, cleaner := range f.cleaners {
		more, err := cleaner.Clean(ctx, f)
		if err != nil {
			return false, err
		}
		errs.Merge(more)
	}

	if f.uniqueCheck {
		more, err := CheckUnique(ctx, f)
		if err != nil {
			return false, err
		}
		errs.Merge(more)
	}

	f.errs = errs
	f.validated = true
	return len(errs) == 0, nil
}

// Errors returns the accumulated validation errors from the last IsValid run.
func (f *Form) Errors() Errors {
	return f.errs
}

// CleanedData returns the values that passed per-field validation. Fields
// that failed cleaning are absent.
func (f *Form) CleanedData() map[string]any {
	out := make(map[string]any, len(f.cleaned))
	for key, value := range f.cleaned {
		out[key] = value
	}
	return out
}

// CleanedValue returns the cleaned value for one field, reporting whether the
// field passed cleaning at all.
func (f *Form) CleanedValue(name string) (any, bool) {
	value, ok := f.cleaned[name]
	return value, ok
}

// RawValue returns the submitted raw string for a field.
func (f *Form) RawValue(name string) string {
	return f.data[name]
}

// Meta returns the entity descriptor backing the form.
func (f *Form) Meta() *entity.Meta { return f.meta }

// FieldNames returns the bound field names in declaration order.
func (f *Form) FieldNames() []string {
	return append([]string(nil), f.fields...)
}

// Instance returns the entity instance the form targets.
func (f *Form) Instance() store.Record { return f.instance }

// Repository returns the query collaborator, if one was configured.
func (f *Form) Repository() store.Repository { return f.repo }

// resolveValue produces the collision-check value for a field: the cleaned
// value when the field passed cleaning, the instance attribute otherwise,
// nil when neither is available.
func (f *Form) resolveValue(name string) any {
	if value, ok := f.cleaned[name]; ok {
		return value
	}
	if value, ok := f.instance.Get(name); ok {
		return value
	}
	return nil
}

// Save writes the cleaned values over the instance attributes and persists
// the result: an insert for unsaved instances, an update otherwise. The form
// must have passed validation first. The repository may still refuse the
// write with a store.IntegrityError if a concurrent change landed between
// validation and commit.
func (f *Form) Save(ctx context.Context) (store.Record, error) {
	if f.repo == nil {
		return store.Record{}, fmt.Errorf("forms: no repository configured for %q", f.meta.Name)
	}
	if !f.validated {
		return store.Record{}, fmt.Errorf("forms: %q was not validated before save", f.meta.Name)
	}
	if len(f.errs) > 0 {
		return store.Record{}, fmt.Errorf("forms: %q has validation errors", f.meta.Name)
	}

	record := f.instance.Clone()
	if record.Attrs == nil {
		record.Attrs = make(map[string]any, len(f.cleaned))
	}
	for name, value := range f.cleaned {
		record.Attrs[name] = value
	}

	var (
		saved store.Record
		err   error
	)
	if record.PK == "" {
		saved, err = f.repo.Insert(ctx, f.meta.Name, record)
	} else {
		saved, err = f.repo.Update(ctx, f.meta.Name, record)
	}
	if err != nil {
		return store.Record{}, err
	}
	f.instance = saved
	return saved, nil
}
