package entity_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-modelforms/pkg/entity"
)

func bookMeta(t *testing.T) *entity.Meta {
	t.Helper()

	meta, err := entity.NewMeta("book", []entity.Field{
		{Name: "title", Type: entity.FieldTypeString, Required: true, MaxLength: 100},
		{Name: "author", Type: entity.FieldTypeReference, Target: "author", Required: true},
		{Name: "rrp", Type: entity.FieldTypeDecimal, Required: true, MaxDigits: 5, DecimalPlaces: 2},
	}, entity.WithUniqueTogether([]string{"title", "author"}))
	if err != nil {
		t.Fatalf("new meta: %v", err)
	}
	return meta
}

func TestNewMetaDefaults(t *testing.T) {
	meta := bookMeta(t)

	if meta.Verbose != "book" {
		t.Fatalf("verbose name = %q, want %q", meta.Verbose, "book")
	}

	field, ok := meta.Field("rrp")
	if !ok {
		t.Fatal("rrp field not found")
	}
	if field.Verbose != "rrp" {
		t.Fatalf("rrp label = %q, want %q", field.Verbose, "rrp")
	}
	if field.ErrorMessages[entity.MessageUnique] != entity.DefaultUniqueMessage {
		t.Fatalf("unique template = %q, want default", field.ErrorMessages[entity.MessageUnique])
	}
}

func TestNewMetaRejectsUnknownGroupField(t *testing.T) {
	_, err := entity.NewMeta("book", []entity.Field{
		{Name: "title"},
	}, entity.WithUniqueTogether([]string{"title", "author"}))
	if err == nil {
		t.Fatal("expected error for unknown group field")
	}
}

func TestNewMetaRejectsDuplicateField(t *testing.T) {
	_, err := entity.NewMeta("book", []entity.Field{
		{Name: "title"},
		{Name: "title"},
	})
	if err == nil {
		t.Fatal("expected error for duplicate field")
	}
}

func TestUniqueFieldSets(t *testing.T) {
	meta, err := entity.NewMeta("magazine", []entity.Field{
		{Name: "title"},
		{Name: "publisher", Type: entity.FieldTypeReference, Target: "publisher"},
		{Name: "issue_number", Type: entity.FieldTypeInteger, Positive: true},
		{Name: "archived", Type: entity.FieldTypeBoolean},
	}, entity.WithConstraints(
		entity.Constraint{
			Name:   "unique_magazine_title_per_publisher",
			Fields: []string{"title", "publisher"},
		},
		entity.Constraint{
			Name:      "unique_active_issue",
			Fields:    []string{"publisher", "issue_number"},
			Condition: "archived = false",
		},
		entity.Constraint{
			Name:        "unique_lower_title",
			Fields:      []string{"title"},
			Expressions: []string{"lower(title)"},
		},
	))
	if err != nil {
		t.Fatalf("new meta: %v", err)
	}

	got := meta.UniqueFieldSets()
	want := [][]string{{"title", "publisher"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unique field sets mismatch (-want +got):\n%s", diff)
	}
}

func TestUniqueFieldSetsCombinesLegacyAndConstraints(t *testing.T) {
	meta, err := entity.NewMeta("edition", []entity.Field{
		{Name: "title"},
		{Name: "publisher"},
		{Name: "isbn"},
	},
		entity.WithUniqueTogether([]string{"title", "publisher"}),
		entity.WithConstraints(entity.Constraint{Name: "unique_isbn", Fields: []string{"isbn"}}),
	)
	if err != nil {
		t.Fatalf("new meta: %v", err)
	}

	got := meta.UniqueFieldSets()
	want := [][]string{{"title", "publisher"}, {"isbn"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unique field sets mismatch (-want +got):\n%s", diff)
	}
}

func TestUniqueMessage(t *testing.T) {
	meta := bookMeta(t)

	got := meta.UniqueMessage("title")
	want := "Book with this title already exists."
	if got != want {
		t.Fatalf("unique message = %q, want %q", got, want)
	}
}

func TestUniqueMessageCustomTemplate(t *testing.T) {
	meta, err := entity.NewMeta("magazine", []entity.Field{
		{
			Name: "title",
			ErrorMessages: map[string]string{
				entity.MessageUnique: "Duplicate {field_label} for {model_name}.",
			},
		},
	})
	if err != nil {
		t.Fatalf("new meta: %v", err)
	}

	got := meta.UniqueMessage("title")
	want := "Duplicate title for Magazine."
	if got != want {
		t.Fatalf("unique message = %q, want %q", got, want)
	}
}

func TestRegistry(t *testing.T) {
	registry := entity.NewRegistry()
	registry.MustRegister(bookMeta(t))

	if !registry.Has("book") {
		t.Fatal("expected book to be registered")
	}
	if err := registry.Register(bookMeta(t)); err == nil {
		t.Fatal("expected duplicate registration error")
	}
	if diff := cmp.Diff([]string{"book"}, registry.List()); diff != "" {
		t.Fatalf("registry list mismatch (-want +got):\n%s", diff)
	}
}
