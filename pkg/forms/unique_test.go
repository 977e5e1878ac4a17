package forms_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-modelforms/pkg/entity"
	"github.com/goliatone/go-modelforms/pkg/forms"
	"github.com/goliatone/go-modelforms/pkg/store"
	"github.com/goliatone/go-modelforms/pkg/testsupport"
)

func TestTitleClashOnUniqueTogether(t *testing.T) {
	repo := store.NewMemory(testsupport.NewLibraryRegistry())
	library := testsupport.SeedLibrary(t, repo)
	ctx := context.Background()

	data := map[string]string{
		"title": "The Bourne Identity",
		"rrp":   "15.95",
	}

	// without the uniqueness step the clash goes unnoticed
	plain := mustForm(t, testsupport.BookMeta(),
		forms.WithFields("title", "rrp"),
		forms.WithInstance(library.Book2),
		forms.WithRepository(repo),
	)
	plain.Bind(data)
	valid, err := plain.IsValid(ctx)
	if err != nil {
		t.Fatalf("is valid: %v", err)
	}
	if !valid {
		t.Fatalf("plain form should validate, got %v", plain.Errors())
	}

	// with it the collision surfaces as a field error
	form := mustForm(t, testsupport.BookMeta(),
		forms.WithFields("title", "rrp"),
		forms.WithInstance(library.Book2),
		forms.WithRepository(repo),
		forms.WithUniqueCheck(),
	)
	form.Bind(data)
	valid, err = form.IsValid(ctx)
	if err != nil {
		t.Fatalf("is valid: %v", err)
	}
	if valid {
		t.Fatal("expected the title clash to fail validation")
	}

	want := forms.Errors{"title": {"Book with this title already exists."}}
	if diff := cmp.Diff(want, form.Errors()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestTitleClashAndInvalidDecimalReportTogether(t *testing.T) {
	repo := store.NewMemory(testsupport.NewLibraryRegistry())
	library := testsupport.SeedLibrary(t, repo)

	form := mustForm(t, testsupport.BookMeta(),
		forms.WithFields("title", "rrp"),
		forms.WithInstance(library.Book2),
		forms.WithRepository(repo),
		forms.WithUniqueCheck(),
	)
	form.Bind(map[string]string{
		"title": "The Bourne Identity",
		"rrp":   "1000",
	})

	if _, err := form.IsValid(context.Background()); err != nil {
		t.Fatalf("is valid: %v", err)
	}

	want := forms.Errors{
		"title": {"Book with this title already exists."},
		"rrp":   {"Ensure that there are no more than 3 digits before the decimal point."},
	}
	if diff := cmp.Diff(want, form.Errors()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestSelfExclusionOnEdit(t *testing.T) {
	repo := store.NewMemory(testsupport.NewLibraryRegistry())
	library := testsupport.SeedLibrary(t, repo)

	form := mustForm(t, testsupport.BookMeta(),
		forms.WithFields("title", "rrp"),
		forms.WithInstance(library.Book1),
		forms.WithRepository(repo),
		forms.WithUniqueCheck(),
	)
	form.Bind(map[string]string{
		"title": "The Bourne Identity",
		"rrp":   "9.20",
	})

	valid, err := form.IsValid(context.Background())
	if err != nil {
		t.Fatalf("is valid: %v", err)
	}
	if !valid {
		t.Fatalf("editing a record onto its own values must pass, got %v", form.Errors())
	}
}

func TestNamedConstraintClash(t *testing.T) {
	repo := store.NewMemory(testsupport.NewNewsstandRegistry())
	newsstand := testsupport.SeedNewsstand(t, repo)
	ctx := context.Background()

	form := mustForm(t, testsupport.MagazineMeta(),
		forms.WithFields("title", "issue_number"),
		forms.WithInstance(newsstand.Magazine2),
		forms.WithRepository(repo),
		forms.WithUniqueCheck(),
	)
	form.Bind(map[string]string{
		"title":        "Vogue",
		"issue_number": "2",
	})

	valid, err := form.IsValid(ctx)
	if err != nil {
		t.Fatalf("is valid: %v", err)
	}
	if valid {
		t.Fatal("expected the constraint clash to fail validation")
	}
	want := forms.Errors{"title": {"Magazine with this title already exists."}}
	if diff := cmp.Diff(want, form.Errors()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestNamedConstraintOnUnsavedInstance(t *testing.T) {
	repo := store.NewMemory(testsupport.NewNewsstandRegistry())
	newsstand := testsupport.SeedNewsstand(t, repo)
	ctx := context.Background()

	other, err := repo.Insert(ctx, "publisher", store.NewRecord(map[string]any{
		"name": "Hearst",
	}))
	if err != nil {
		t.Fatalf("insert publisher: %v", err)
	}

	// a new magazine reusing an existing (title, publisher) pair
	form := mustForm(t, testsupport.MagazineMeta(),
		forms.WithRepository(repo),
		forms.WithUniqueCheck(),
	)
	form.Bind(map[string]string{
		"title":        "Vogue",
		"publisher":    newsstand.Publisher.PK,
		"issue_number": "5",
	})
	valid, err := form.IsValid(ctx)
	if err != nil {
		t.Fatalf("is valid: %v", err)
	}
	if valid {
		t.Fatal("expected the unsaved clash to fail validation")
	}
	if !form.Errors().Has("title") {
		t.Fatalf("expected a title error, got %v", form.Errors())
	}

	// same title under a different publisher is fine
	form = mustForm(t, testsupport.MagazineMeta(),
		forms.WithRepository(repo),
		forms.WithUniqueCheck(),
	)
	form.Bind(map[string]string{
		"title":        "Vogue",
		"publisher":    other.PK,
		"issue_number": "5",
	})
	valid, err = form.IsValid(ctx)
	if err != nil {
		t.Fatalf("is valid: %v", err)
	}
	if !valid {
		t.Fatalf("distinct publisher should validate, got %v", form.Errors())
	}
}

func TestConditionalConstraintIsSkipped(t *testing.T) {
	meta := entity.MustMeta("magazine", []entity.Field{
		{Name: "title", Required: true},
		{Name: "publisher"},
		{Name: "archived", Type: entity.FieldTypeBoolean},
	}, entity.WithConstraints(entity.Constraint{
		Name:      "unique_active_title",
		Fields:    []string{"title", "publisher"},
		Condition: "archived = false",
	}))
	registry := entity.NewRegistry()
	registry.MustRegister(meta)

	repo := store.NewMemory(registry)
	ctx := context.Background()
	if _, err := repo.Insert(ctx, "magazine", store.NewRecord(map[string]any{
		"title":     "Vogue",
		"publisher": "conde-nast",
		"archived":  false,
	})); err != nil {
		t.Fatalf("insert: %v", err)
	}

	form := mustForm(t, meta,
		forms.WithRepository(repo),
		forms.WithUniqueCheck(),
	)
	form.Bind(map[string]string{
		"title":     "Vogue",
		"publisher": "conde-nast",
		"archived":  "false",
	})

	// the duplicate exists, but a conditional constraint is never evaluated
	valid, err := form.IsValid(ctx)
	if err != nil {
		t.Fatalf("is valid: %v", err)
	}
	if !valid {
		t.Fatalf("conditional constraint must be skipped, got %v", form.Errors())
	}
}

// Overlapping groups merge transitively: checking the shared field carries
// the union of every group it belongs to, so a value from a merged-but-not-
// triggering field acts as a precision filter.
func TestOverlappingGroupsMerge(t *testing.T) {
	meta := entity.MustMeta("route", []entity.Field{
		{Name: "origin"},
		{Name: "hub"},
		{Name: "destination"},
	}, entity.WithUniqueTogether(
		[]string{"origin", "hub"},
		[]string{"hub", "destination"},
	))
	registry := entity.NewRegistry()
	registry.MustRegister(meta)

	repo := store.NewMemory(registry)
	ctx := context.Background()
	if _, err := repo.Insert(ctx, "route", store.NewRecord(map[string]any{
		"origin":      "lhr",
		"hub":         "fra",
		"destination": "nrt",
	})); err != nil {
		t.Fatalf("insert: %v", err)
	}

	newForm := func(instance store.Record) *forms.Form {
		return mustForm(t, meta,
			forms.WithFields("origin", "hub"),
			forms.WithInstance(instance),
			forms.WithRepository(repo),
			forms.WithUniqueCheck(),
		)
	}

	// destination matches the stored record: the merged (origin, hub,
	// destination) lookup for hub hits.
	form := newForm(store.NewRecord(map[string]any{"destination": "nrt"}))
	form.Bind(map[string]string{"origin": "lhr", "hub": "fra"})
	valid, err := form.IsValid(ctx)
	if err != nil {
		t.Fatalf("is valid: %v", err)
	}
	if valid {
		t.Fatal("expected a collision when the merged field matches")
	}
	want := forms.Errors{
		"origin": {"Route with this origin already exists."},
		"hub":    {"Route with this hub already exists."},
	}
	if diff := cmp.Diff(want, form.Errors()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	// a different destination turns the hub hit into a miss even though
	// (origin, hub) still collides on its own group.
	form = newForm(store.NewRecord(map[string]any{"destination": "jfk"}))
	form.Bind(map[string]string{"origin": "lhr", "hub": "fra"})
	valid, err = form.IsValid(ctx)
	if err != nil {
		t.Fatalf("is valid: %v", err)
	}
	if valid {
		t.Fatal("expected the origin check to still collide")
	}
	want = forms.Errors{
		"origin": {"Route with this origin already exists."},
	}
	if diff := cmp.Diff(want, form.Errors()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestUniqueCheckWithoutRepositoryIsNoop(t *testing.T) {
	form := mustForm(t, testsupport.BookMeta(),
		forms.WithFields("title", "rrp"),
		forms.WithUniqueCheck(),
	)
	form.Bind(map[string]string{"title": "The Bourne Identity", "rrp": "9.20"})

	valid, err := form.IsValid(context.Background())
	if err != nil {
		t.Fatalf("is valid: %v", err)
	}
	if !valid {
		t.Fatalf("no repository means no uniqueness findings, got %v", form.Errors())
	}
}
