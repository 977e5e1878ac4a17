package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-modelforms/pkg/entity"
	"github.com/goliatone/go-modelforms/pkg/openapi"
	"github.com/goliatone/go-modelforms/pkg/store"
	"github.com/goliatone/go-modelforms/pkg/testsupport"
	"gopkg.in/yaml.v3"
)

type violation struct {
	file     string
	location string
	message  string
}

func main() {
	schemaPath := flag.String("schema", "", "OpenAPI document describing the entities")
	partial := flag.Bool("partial", false, "skip component schemas that cannot be mapped")
	flag.Usage = func() {
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s -schema doc.yaml [fixtures...]\n", filepath.Base(os.Args[0])); err != nil {
			panic(err)
		}
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "\nLint YAML record fixtures against the uniqueness constraints declared in an OpenAPI document.\n"); err != nil {
			panic(err)
		}
		flag.PrintDefaults()
	}
	flag.Parse()

	if *schemaPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	paths := flag.Args()
	if len(paths) == 0 {
		paths = []string{"examples/fixtures/library.yaml"}
	}

	ctx := context.Background()
	raw, err := os.ReadFile(*schemaPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read schema %s: %v\n", *schemaPath, err)
		os.Exit(1)
	}
	registry, err := openapi.LoadRegistry(ctx, raw, openapi.Options{AllowPartialDocuments: *partial})
	if err != nil {
		fmt.Fprintf(os.Stderr, "load schema %s: %v\n", *schemaPath, err)
		os.Exit(1)
	}

	var violations []violation
	for _, path := range paths {
		linted, err := lintFile(ctx, registry, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "lint %s: %v\n", path, err)
			os.Exit(1)
		}
		violations = append(violations, linted...)
	}

	if len(violations) > 0 {
		sort.Slice(violations, func(i, j int) bool {
			if violations[i].file == violations[j].file {
				if violations[i].location == violations[j].location {
					return violations[i].message < violations[j].message
				}
				return violations[i].location < violations[j].location
			}
			return violations[i].file < violations[j].file
		})
		for _, v := range violations {
			fmt.Fprintf(os.Stderr, "%s: %s -> %s\n", v.file, v.location, v.message)
		}
		os.Exit(1)
	}
}

// lintFile replays a fixture file into a fresh repository and reports every
// record whose insert trips a uniqueness constraint. Each file gets its own
// repository so violations never leak across files.
func lintFile(ctx context.Context, registry *entity.Registry, path string) ([]violation, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var fixtures []testsupport.RecordFixture
	if err := yaml.Unmarshal(raw, &fixtures); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}

	repo := store.NewMemory(registry)

	var result []violation
	for i, fixture := range fixtures {
		location := fmt.Sprintf("record %d (%s)", i, fixture.Entity)
		if fixture.Entity == "" {
			result = append(result, violation{file: path, location: fmt.Sprintf("record %d", i), message: "entity name is empty"})
			continue
		}
		if !registry.Has(fixture.Entity) {
			result = append(result, violation{file: path, location: location, message: fmt.Sprintf("unknown entity %q", fixture.Entity)})
			continue
		}
		record := store.Record{PK: fixture.PK, Attrs: fixture.Attrs}
		_, err := repo.Insert(ctx, fixture.Entity, record)
		switch {
		case err == nil:
		case store.IsUniqueViolation(err):
			var integrityErr *store.IntegrityError
			errors.As(err, &integrityErr)
			result = append(result, violation{
				file:     path,
				location: location,
				message:  fmt.Sprintf("duplicate value for (%s)", strings.Join(integrityErr.Fields, ", ")),
			})
		default:
			return nil, fmt.Errorf("insert fixture %d: %w", i, err)
		}
	}

	return result, nil
}
