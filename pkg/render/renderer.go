// Package render turns a bound form into HTML so handlers can re-present a
// submission together with its validation errors. Templates use pongo2
// syntax; the embedded default emits one labelled input per bound field with
// an error list underneath, and callers can swap in their own markup with
// WithTemplate.
package render

import (
	"fmt"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-modelforms/pkg/entity"
	"github.com/goliatone/go-modelforms/pkg/forms"
)

const defaultTemplate = `<form method="post">
{% for field in fields %}  <div class="field{% if field.Errors %} field-error{% endif %}">
    <label for="id_{{ field.Name }}">{{ field.Label }}</label>
    <input id="id_{{ field.Name }}" name="{{ field.Name }}" value="{{ field.Value }}">
{% if field.Errors %}    <ul class="errorlist">{% for message in field.Errors %}<li>{{ message }}</li>{% endfor %}</ul>
{% endif %}  </div>
{% endfor %}  <button type="submit">Save</button>
</form>
`

// FieldView is the per-field payload handed to the template.
type FieldView struct {
	Name   string
	Label  string
	Value  string
	Errors []string
}

// Renderer renders bound forms through a compiled pongo2 template.
type Renderer struct {
	template *pongo2.Template
}

// Option configures New.
type Option func(*config)

type config struct {
	template string
}

// WithTemplate replaces the embedded default template.
func WithTemplate(source string) Option {
	return func(cfg *config) {
		if source != "" {
			cfg.template = source
		}
	}
}

// New compiles the renderer's template.
func New(options ...Option) (*Renderer, error) {
	cfg := config{template: defaultTemplate}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	template, err := pongo2.FromString(cfg.template)
	if err != nil {
		return nil, fmt.Errorf("render: compile template: %w", err)
	}
	return &Renderer{template: template}, nil
}

// RenderForm produces markup for the form's bound fields, submitted values,
// and accumulated errors.
func (r *Renderer) RenderForm(form *forms.Form) (string, error) {
	if form == nil {
		return "", fmt.Errorf("render: form is required")
	}

	meta := form.Meta()
	errs := form.Errors()

	fields := make([]FieldView, 0, len(form.FieldNames()))
	for _, name := range form.FieldNames() {
		field, _ := meta.Field(name)
		fields = append(fields, FieldView{
			Name:   name,
			Label:  entity.Capfirst(field.Verbose),
			Value:  fieldValue(form, name),
			Errors: errs.Field(name),
		})
	}

	out, err := r.template.Execute(pongo2.Context{
		"entity": meta.Name,
		"title":  entity.Capfirst(meta.Verbose),
		"fields": fields,
	})
	if err != nil {
		return "", fmt.Errorf("render: execute template: %w", err)
	}
	return out, nil
}

// fieldValue prefers the submitted raw value so invalid input is re-shown
// for correction, falling back to the instance attribute for unbound fields.
func fieldValue(form *forms.Form, name string) string {
	if raw := form.RawValue(name); raw != "" {
		return raw
	}
	if value, ok := form.Instance().Get(name); ok && value != nil {
		return fmt.Sprint(value)
	}
	return ""
}
