package forms

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-modelforms/pkg/entity"
	"github.com/goliatone/go-modelforms/pkg/store"
)

// Sanitizer normalises submitted string input before cleaning. The
// bluemonday policies satisfy this interface.
type Sanitizer interface {
	Sanitize(raw string) string
}

// HTMLStripper returns a sanitizer that removes all markup from submitted
// strings.
func HTMLStripper() Sanitizer {
	return bluemonday.StrictPolicy()
}

// Field-level messages use fixed wording so a violation reads the same
// whichever layer reports it.
const (
	msgRequired       = "This field is required."
	msgWholeNumber    = "Enter a whole number."
	msgNumber         = "Enter a number."
	msgInvalidChoice  = "Select a valid choice. That choice is not one of the available choices."
	msgMaxLength      = "Ensure this value has at most %d characters (it has %d)."
	msgMinValue       = "Ensure this value is greater than or equal to %d."
	msgMaxTotalDigits = "Ensure that there are no more than %d digits in total."
	msgMaxPlaces      = "Ensure that there are no more than %d decimal places."
	msgMaxWholeDigits = "Ensure that there are no more than %d digits before the decimal point."
)

var validate = validator.New()

// cleanFields runs per-field validation over the bound data. Fields that
// fail cleaning are left out of the cleaned map so later steps can fall back
// to instance values.
func (f *Form) cleanFields(ctx context.Context) (map[string]any, Errors, error) {
	cleaned := make(map[string]any, len(f.fields))
	errs := make(Errors)

	for _, name := range f.fields {
		field, _ := f.meta.Field(name)
		raw := strings.TrimSpace(f.data[name])
		if f.sanitizer != nil && field.Type != entity.FieldTypeBoolean {
			raw = strings.TrimSpace(f.sanitizer.Sanitize(raw))
		}

		if raw == "" {
			if field.Required {
				errs.Add(name, msgRequired)
				continue
			}
			if field.Type == entity.FieldTypeString {
				cleaned[name] = ""
			} else {
				cleaned[name] = nil
			}
			continue
		}

		value, messages, err := f.cleanValue(ctx, field, raw)
		if err != nil {
			return nil, nil, err
		}
		if len(messages) > 0 {
			for _, message := range messages {
				errs.Add(name, message)
			}
			continue
		}
		cleaned[name] = value
	}

	return cleaned, errs, nil
}

func (f *Form) cleanValue(ctx context.Context, field entity.Field, raw string) (any, []string, error) {
	switch field.Type {
	case entity.FieldTypeString:
		return cleanString(field, raw)
	case entity.FieldTypeInteger:
		return cleanInteger(field, raw)
	case entity.FieldTypeDecimal:
		return cleanDecimal(field, raw)
	case entity.FieldTypeBoolean:
		return cleanBoolean(raw)
	case entity.FieldTypeReference:
		return f.cleanReference(ctx, field, raw)
	default:
		return raw, nil, nil
	}
}

func cleanString(field entity.Field, raw string) (any, []string, error) {
	if field.MaxLength > 0 {
		if err := validate.Var(raw, fmt.Sprintf("max=%d", field.MaxLength)); err != nil {
			return nil, []string{fmt.Sprintf(msgMaxLength, field.MaxLength, len([]rune(raw)))}, nil
		}
	}
	return raw, nil, nil
}

func cleanInteger(field entity.Field, raw string) (any, []string, error) {
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, []string{msgWholeNumber}, nil
	}
	if field.Positive {
		if err := validate.Var(value, "min=0"); err != nil {
			return nil, []string{fmt.Sprintf(msgMinValue, 0)}, nil
		}
	}
	return value, nil, nil
}

func cleanDecimal(field entity.Field, raw string) (any, []string, error) {
	whole, places, ok := decimalDigits(raw)
	if !ok {
		return nil, []string{msgNumber}, nil
	}
	if field.MaxDigits > 0 {
		total := whole + places
		switch {
		case total > field.MaxDigits:
			return nil, []string{fmt.Sprintf(msgMaxTotalDigits, field.MaxDigits)}, nil
		case places > field.DecimalPlaces:
			return nil, []string{fmt.Sprintf(msgMaxPlaces, field.DecimalPlaces)}, nil
		case whole > field.MaxDigits-field.DecimalPlaces:
			return nil, []string{fmt.Sprintf(msgMaxWholeDigits, field.MaxDigits-field.DecimalPlaces)}, nil
		}
	}
	return raw, nil, nil
}

func cleanBoolean(raw string) (any, []string, error) {
	switch strings.ToLower(raw) {
	case "true", "on", "1", "yes":
		return true, nil, nil
	case "false", "off", "0", "no":
		return false, nil, nil
	default:
		return nil, []string{msgInvalidChoice}, nil
	}
}

func (f *Form) cleanReference(ctx context.Context, field entity.Field, raw string) (any, []string, error) {
	if f.repo == nil || field.Target == "" {
		return raw, nil, nil
	}
	if _, err := f.repo.Get(ctx, field.Target, raw); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, []string{msgInvalidChoice}, nil
		}
		return nil, nil, fmt.Errorf("forms: resolve %s reference: %w", field.Target, err)
	}
	return raw, nil, nil
}

// decimalDigits reports the digit counts of a plain decimal literal: digits
// before the point (leading zeros dropped) and digits after it (trailing
// zeros kept, matching how stores treat declared precision).
func decimalDigits(raw string) (whole, places int, ok bool) {
	value := strings.TrimSpace(raw)
	value = strings.TrimPrefix(value, "+")
	value = strings.TrimPrefix(value, "-")
	if value == "" {
		return 0, 0, false
	}

	intPart := value
	fracPart := ""
	if idx := strings.IndexByte(value, '.'); idx >= 0 {
		intPart = value[:idx]
		fracPart = value[idx+1:]
	}
	if intPart == "" && fracPart == "" {
		return 0, 0, false
	}
	for _, part := range []string{intPart, fracPart} {
		for _, r := range part {
			if r < '0' || r > '9' {
				return 0, 0, false
			}
		}
	}

	trimmed := strings.TrimLeft(intPart, "0")
	return len(trimmed), len(fracPart), true
}
