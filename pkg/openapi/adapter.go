// Package openapi derives entity descriptors from an OpenAPI 3 document's
// component schemas, so services that already publish an API description can
// reuse it as the single source of field and uniqueness metadata. Uniqueness
// declarations travel in vendor extensions: `x-unique-together` holds legacy
// grouped-field lists, `x-unique-constraints` holds named constraints whose
// optional condition/expressions are preserved verbatim (the forms layer
// skips those at validation time).
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-modelforms/pkg/entity"
)

const (
	uniqueTogetherExtensionKey    = "x-unique-together"
	uniqueConstraintsExtensionKey = "x-unique-constraints"
	maxDigitsExtensionKey         = "x-max-digits"
	decimalPlacesExtensionKey     = "x-decimal-places"
	referenceExtensionKey         = "x-entity-ref"
	verboseExtensionKey           = "x-verbose-name"
)

// Options configures Load.
type Options struct {
	// AllowPartialDocuments skips component schemas that cannot be mapped
	// instead of failing the whole load.
	AllowPartialDocuments bool
}

// Load parses an OpenAPI 3 document and maps every object component schema
// to an entity descriptor. Entity names are the lower-cased component names;
// property names become field names, sorted for a deterministic field order.
func Load(ctx context.Context, raw []byte, opts Options) ([]*entity.Meta, error) {
	if len(raw) == 0 {
		return nil, errors.New("openapi adapter: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi adapter: load document: %w", err)
	}
	if spec.Components == nil || len(spec.Components.Schemas) == 0 {
		return nil, errors.New("openapi adapter: document has no component schemas")
	}

	names := make([]string, 0, len(spec.Components.Schemas))
	for name := range spec.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	var metas []*entity.Meta
	for _, name := range names {
		ref := spec.Components.Schemas[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		meta, err := convertSchema(name, ref.Value)
		if err != nil {
			if opts.AllowPartialDocuments {
				continue
			}
			return nil, err
		}
		metas = append(metas, meta)
	}

	if len(metas) == 0 && !opts.AllowPartialDocuments {
		return nil, errors.New("openapi adapter: no entity schemas extracted")
	}
	return metas, nil
}

// LoadRegistry is Load plus registration into a fresh entity registry.
func LoadRegistry(ctx context.Context, raw []byte, opts Options) (*entity.Registry, error) {
	metas, err := Load(ctx, raw, opts)
	if err != nil {
		return nil, err
	}
	registry := entity.NewRegistry()
	for _, meta := range metas {
		if err := registry.Register(meta); err != nil {
			return nil, fmt.Errorf("openapi adapter: %w", err)
		}
	}
	return registry, nil
}

func convertSchema(name string, schema *openapi3.Schema) (*entity.Meta, error) {
	entityName := strings.ToLower(strings.TrimSpace(name))
	if len(schema.Properties) == 0 {
		return nil, fmt.Errorf("openapi adapter: schema %q has no properties", name)
	}

	required := make(map[string]struct{}, len(schema.Required))
	for _, field := range schema.Required {
		required[field] = struct{}{}
	}

	propertyNames := make([]string, 0, len(schema.Properties))
	for propertyName := range schema.Properties {
		propertyNames = append(propertyNames, propertyName)
	}
	sort.Strings(propertyNames)

	fields := make([]entity.Field, 0, len(propertyNames))
	for _, propertyName := range propertyNames {
		ref := schema.Properties[propertyName]
		if ref == nil || ref.Value == nil {
			continue
		}
		field, err := convertField(name, propertyName, ref.Value)
		if err != nil {
			return nil, err
		}
		_, field.Required = required[propertyName]
		fields = append(fields, field)
	}

	var options []entity.MetaOption
	if verbose, ok := schema.Extensions[verboseExtensionKey].(string); ok && verbose != "" {
		options = append(options, entity.WithVerbose(verbose))
	}
	groups, err := extractUniqueTogether(name, schema.Extensions)
	if err != nil {
		return nil, err
	}
	if len(groups) > 0 {
		options = append(options, entity.WithUniqueTogether(groups...))
	}
	constraints, err := extractConstraints(name, schema.Extensions)
	if err != nil {
		return nil, err
	}
	if len(constraints) > 0 {
		options = append(options, entity.WithConstraints(constraints...))
	}

	meta, err := entity.NewMeta(entityName, fields, options...)
	if err != nil {
		return nil, fmt.Errorf("openapi adapter: schema %q: %w", name, err)
	}
	return meta, nil
}

func convertField(schemaName, propertyName string, property *openapi3.Schema) (entity.Field, error) {
	field := entity.Field{Name: propertyName}

	if target, ok := property.Extensions[referenceExtensionKey].(string); ok && target != "" {
		field.Type = entity.FieldTypeReference
		field.Target = strings.ToLower(strings.TrimSpace(target))
		return field, nil
	}

	switch firstSchemaType(property.Type) {
	case "string":
		if property.Format == "decimal" {
			field.Type = entity.FieldTypeDecimal
			field.MaxDigits = intExtension(property.Extensions, maxDigitsExtensionKey)
			field.DecimalPlaces = intExtension(property.Extensions, decimalPlacesExtensionKey)
		} else {
			field.Type = entity.FieldTypeString
			if property.MaxLength != nil {
				field.MaxLength = int(*property.MaxLength)
			}
		}
	case "integer":
		field.Type = entity.FieldTypeInteger
		if property.Min != nil && *property.Min >= 0 {
			field.Positive = true
		}
	case "number":
		field.Type = entity.FieldTypeDecimal
		field.MaxDigits = intExtension(property.Extensions, maxDigitsExtensionKey)
		field.DecimalPlaces = intExtension(property.Extensions, decimalPlacesExtensionKey)
	case "boolean":
		field.Type = entity.FieldTypeBoolean
	default:
		return entity.Field{}, fmt.Errorf("openapi adapter: schema %q property %q has unsupported type %q",
			schemaName, propertyName, firstSchemaType(property.Type))
	}

	return field, nil
}

func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func intExtension(extensions map[string]any, key string) int {
	switch v := extensions[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}

func extractUniqueTogether(schemaName string, extensions map[string]any) ([][]string, error) {
	raw, ok := extensions[uniqueTogetherExtensionKey]
	if !ok {
		return nil, nil
	}
	entries, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("openapi adapter: schema %q: %s must be a list of field lists",
			schemaName, uniqueTogetherExtensionKey)
	}

	groups := make([][]string, 0, len(entries))
	for i, entry := range entries {
		group, err := toStringSlice(entry)
		if err != nil || len(group) == 0 {
			return nil, fmt.Errorf("openapi adapter: schema %q: %s entry %d must be a non-empty field list",
				schemaName, uniqueTogetherExtensionKey, i)
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func extractConstraints(schemaName string, extensions map[string]any) ([]entity.Constraint, error) {
	raw, ok := extensions[uniqueConstraintsExtensionKey]
	if !ok {
		return nil, nil
	}
	entries, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("openapi adapter: schema %q: %s must be a list of constraint objects",
			schemaName, uniqueConstraintsExtensionKey)
	}

	constraints := make([]entity.Constraint, 0, len(entries))
	for i, entry := range entries {
		mapped, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("openapi adapter: schema %q: %s entry %d must be an object",
				schemaName, uniqueConstraintsExtensionKey, i)
		}

		constraint := entity.Constraint{}
		if name, ok := mapped["name"].(string); ok {
			constraint.Name = name
		}
		if condition, ok := mapped["condition"].(string); ok {
			constraint.Condition = condition
		}
		if fields, err := toStringSlice(mapped["fields"]); err == nil {
			constraint.Fields = fields
		}
		if expressions, err := toStringSlice(mapped["expressions"]); err == nil {
			constraint.Expressions = expressions
		}
		if len(constraint.Fields) == 0 && len(constraint.Expressions) == 0 {
			return nil, fmt.Errorf("openapi adapter: schema %q: constraint %d declares no fields",
				schemaName, i)
		}
		constraints = append(constraints, constraint)
	}
	return constraints, nil
}

func toStringSlice(value any) ([]string, error) {
	entries, ok := value.([]any)
	if !ok {
		return nil, errors.New("not a list")
	}
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		str, ok := entry.(string)
		if !ok || strings.TrimSpace(str) == "" {
			return nil, errors.New("not a string list")
		}
		out = append(out, strings.TrimSpace(str))
	}
	if len(out) == 0 {
		return nil, errors.New("empty list")
	}
	return out, nil
}
