package forms

import (
	"context"
	"fmt"

	"github.com/goliatone/go-modelforms/pkg/store"
)

// CheckUnique validates the entity's composite uniqueness declarations
// against the repository. For every bound field that participates in at
// least one unconditional unique group, it resolves a concrete value for
// each field in that field's merged group (cleaned data first, instance
// attribute otherwise) and asks the repository whether another record holds
// that exact combination. The instance's own identity is always excluded,
// so editing a record back onto its own values never collides; for unsaved
// instances the exclusion is a no-op.
//
// Overlapping groups merge: a field that belongs to several groups is
// checked against the union of all their fields, not each group in
// isolation.
//
// The step usually runs via WithUniqueCheck but satisfies CleanerFunc, so it
// can also be registered explicitly with WithCleaner.
func CheckUnique(ctx context.Context, form *Form) (Errors, error) {
	errs := make(Errors)

	repo := form.Repository()
	if repo == nil {
		return errs, nil
	}

	meta := form.Meta()
	sets := meta.UniqueFieldSets()
	if len(sets) == 0 {
		return errs, nil
	}

	merged := make(map[string]map[string]struct{})
	for _, set := range sets {
		for _, name := range form.fields {
			if !containsField(set, name) {
				continue
			}
			group := merged[name]
			if group == nil {
				group = make(map[string]struct{}, len(set))
				merged[name] = group
			}
			for _, member := range set {
				group[member] = struct{}{}
			}
		}
	}

	instance := form.Instance()
	for _, name := range form.fields {
		group, ok := merged[name]
		if !ok {
			continue
		}

		match := make(map[string]any, len(group))
		for member := range group {
			match[member] = form.resolveValue(member)
		}

		exists, err := repo.Exists(ctx, meta.Name,
			store.Match(match),
			store.ExcludePK(instance.PK),
		)
		if err != nil {
			return errs, fmt.Errorf("forms: uniqueness check for %q: %w", name, err)
		}
		if exists {
			errs.Add(name, meta.UniqueMessage(name))
		}
	}

	return errs, nil
}

func containsField(set []string, name string) bool {
	for _, member := range set {
		if member == name {
			return true
		}
	}
	return false
}
