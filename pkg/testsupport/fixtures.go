// Package testsupport provides the reference entity descriptors and seed
// data the test suites and examples share: a small library (authors and
// books carrying a legacy unique-together group) and a newsstand (publishers
// and magazines carrying a named unique constraint).
package testsupport

import (
	"context"
	"fmt"
	"os"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-modelforms/pkg/entity"
	"github.com/goliatone/go-modelforms/pkg/store"
)

// AuthorMeta describes a minimal author entity.
func AuthorMeta() *entity.Meta {
	return entity.MustMeta("author", []entity.Field{
		{Name: "name", Type: entity.FieldTypeString, Required: true, MaxLength: 100},
	})
}

// BookMeta describes a book with a legacy unique-together group over
// (title, author).
func BookMeta() *entity.Meta {
	return entity.MustMeta("book", []entity.Field{
		{Name: "title", Type: entity.FieldTypeString, Required: true, MaxLength: 100},
		{Name: "author", Type: entity.FieldTypeReference, Target: "author", Required: true},
		{Name: "rrp", Type: entity.FieldTypeDecimal, Required: true, MaxDigits: 5, DecimalPlaces: 2},
	}, entity.WithUniqueTogether([]string{"title", "author"}))
}

// PublisherMeta describes a minimal publisher entity.
func PublisherMeta() *entity.Meta {
	return entity.MustMeta("publisher", []entity.Field{
		{Name: "name", Type: entity.FieldTypeString, Required: true, MaxLength: 100},
	})
}

// MagazineMeta describes a magazine with a named constraint over
// (title, publisher).
func MagazineMeta() *entity.Meta {
	return entity.MustMeta("magazine", []entity.Field{
		{Name: "title", Type: entity.FieldTypeString, Required: true, MaxLength: 100},
		{Name: "publisher", Type: entity.FieldTypeReference, Target: "publisher", Required: true},
		{Name: "issue_number", Type: entity.FieldTypeInteger, Required: true, Positive: true},
	}, entity.WithConstraints(entity.Constraint{
		Name:   "unique_magazine_title_per_publisher",
		Fields: []string{"title", "publisher"},
	}))
}

// NewLibraryRegistry returns a registry with the author and book entities.
func NewLibraryRegistry() *entity.Registry {
	registry := entity.NewRegistry()
	registry.MustRegister(AuthorMeta())
	registry.MustRegister(BookMeta())
	return registry
}

// NewNewsstandRegistry returns a registry with the publisher and magazine
// entities.
func NewNewsstandRegistry() *entity.Registry {
	registry := entity.NewRegistry()
	registry.MustRegister(PublisherMeta())
	registry.MustRegister(MagazineMeta())
	return registry
}

// Library holds the canonical seeded records: one author with two books.
type Library struct {
	Author store.Record
	Book1  store.Record
	Book2  store.Record
}

// SeedLibrary inserts the canonical library data set.
func SeedLibrary(t *testing.T, repo store.Repository) Library {
	t.Helper()
	ctx := context.Background()

	author, err := repo.Insert(ctx, "author", store.NewRecord(map[string]any{
		"name": "Robert Ludlum",
	}))
	if err != nil {
		t.Fatalf("seed author: %v", err)
	}

	book1, err := repo.Insert(ctx, "book", store.NewRecord(map[string]any{
		"title":  "The Bourne Identity",
		"author": author.PK,
		"rrp":    "9.20",
	}))
	if err != nil {
		t.Fatalf("seed book1: %v", err)
	}
	book2, err := repo.Insert(ctx, "book", store.NewRecord(map[string]any{
		"title":  "The Bourne Supremacy",
		"author": author.PK,
		"rrp":    "10.50",
	}))
	if err != nil {
		t.Fatalf("seed book2: %v", err)
	}

	return Library{Author: author, Book1: book1, Book2: book2}
}

// Newsstand holds the canonical seeded records: one publisher with two
// magazines.
type Newsstand struct {
	Publisher store.Record
	Magazine1 store.Record
	Magazine2 store.Record
}

// SeedNewsstand inserts the canonical newsstand data set.
func SeedNewsstand(t *testing.T, repo store.Repository) Newsstand {
	t.Helper()
	ctx := context.Background()

	publisher, err := repo.Insert(ctx, "publisher", store.NewRecord(map[string]any{
		"name": "Conde Nast",
	}))
	if err != nil {
		t.Fatalf("seed publisher: %v", err)
	}

	magazine1, err := repo.Insert(ctx, "magazine", store.NewRecord(map[string]any{
		"title":        "Vogue",
		"publisher":    publisher.PK,
		"issue_number": int64(1),
	}))
	if err != nil {
		t.Fatalf("seed magazine1: %v", err)
	}
	magazine2, err := repo.Insert(ctx, "magazine", store.NewRecord(map[string]any{
		"title":        "GQ",
		"publisher":    publisher.PK,
		"issue_number": int64(1),
	}))
	if err != nil {
		t.Fatalf("seed magazine2: %v", err)
	}

	return Newsstand{Publisher: publisher, Magazine1: magazine1, Magazine2: magazine2}
}

// RecordFixture is one entry in a YAML record fixture file.
type RecordFixture struct {
	Entity string         `yaml:"entity"`
	PK     string         `yaml:"pk,omitempty"`
	Attrs  map[string]any `yaml:"attrs"`
}

// LoadRecords reads a YAML fixture file and inserts every record in order,
// returning the stored records keyed by "entity/pk".
func LoadRecords(t *testing.T, repo store.Repository, path string) map[string]store.Record {
	t.Helper()

	records, err := LoadRecordsFromPath(context.Background(), repo, path)
	if err != nil {
		t.Fatalf("load records: %v", err)
	}
	return records
}

// LoadRecordsFromPath is LoadRecords without the testing dependency, so
// examples can seed repositories from the same fixture files.
func LoadRecordsFromPath(ctx context.Context, repo store.Repository, path string) (map[string]store.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read fixture: %w", err)
	}

	var fixtures []RecordFixture
	if err := yaml.Unmarshal(data, &fixtures); err != nil {
		return nil, fmt.Errorf("testsupport: decode fixture: %w", err)
	}

	stored := make(map[string]store.Record, len(fixtures))
	for i, fixture := range fixtures {
		if fixture.Entity == "" {
			return nil, fmt.Errorf("testsupport: fixture %d has no entity", i)
		}
		record := store.Record{PK: fixture.PK, Attrs: fixture.Attrs}
		saved, err := repo.Insert(ctx, fixture.Entity, record)
		if err != nil {
			return nil, fmt.Errorf("testsupport: insert fixture %d (%s): %w", i, fixture.Entity, err)
		}
		stored[fixture.Entity+"/"+saved.PK] = saved
	}
	return stored, nil
}
