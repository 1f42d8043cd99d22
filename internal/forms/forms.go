// Package forms implements declarative form binding and field validation.
package forms

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Rule validates a single field within its form and returns an error message,
// or "" when the field passes.
type Rule func(f *Form, name string) string

// Required fails when the submitted value is empty.
func Required() Rule {
	return func(f *Form, name string) string {
		if f.Value(name) == "" {
			return "This field is required."
		}
		return ""
	}
}

// MaxLength fails when the submitted value exceeds n characters.
func MaxLength(n int) Rule {
	return func(f *Form, name string) string {
		if len([]rune(f.Value(name))) > n {
			return fmt.Sprintf("Field cannot be longer than %d characters.", n)
		}
		return ""
	}
}

// EqualTo fails when the submitted value differs from another field's value.
func EqualTo(other, message string) Rule {
	return func(f *Form, name string) string {
		if f.Value(name) != f.Value(other) {
			return message
		}
		return ""
	}
}

// Field is a single named form input with its validation rules.
type Field struct {
	Name   string
	Label  string
	Value  string
	Secret bool
	Rules  []Rule
}

// Text declares a plain input field.
func Text(name, label string, rules ...Rule) *Field {
	return &Field{Name: name, Label: label, Rules: rules}
}

// Password declares a secret input field; its value is cleared before any
// re-render of the form.
func Password(name, label string, rules ...Rule) *Field {
	return &Field{Name: name, Label: label, Secret: true, Rules: rules}
}

// Form is an ordered set of fields plus per-field validation errors.
type Form struct {
	fields []*Field
	index  map[string]*Field
	Errors map[string][]string
}

// New assembles a form from the given fields.
func New(fields ...*Field) *Form {
	f := &Form{
		fields: fields,
		index:  make(map[string]*Field, len(fields)),
		Errors: make(map[string][]string),
	}
	for _, field := range fields {
		f.index[field.Name] = field
	}
	return f
}

// Bind reads the submitted value of every declared field from the request.
func (f *Form) Bind(c *fiber.Ctx) {
	for _, field := range f.fields {
		field.Value = c.FormValue(field.Name)
	}
}

// Validate runs every field's rules in declaration order against the full
// set of submitted values. It returns true when no rule failed.
func (f *Form) Validate() bool {
	f.Errors = make(map[string][]string)
	for _, field := range f.fields {
		for _, rule := range field.Rules {
			if msg := rule(f, field.Name); msg != "" {
				f.Errors[field.Name] = append(f.Errors[field.Name], msg)
			}
		}
	}
	return len(f.Errors) == 0
}

// Fields returns the fields in declaration order, for template rendering.
func (f *Form) Fields() []*Field {
	return f.fields
}

// Value returns the current value of the named field.
func (f *Form) Value(name string) string {
	if field, ok := f.index[name]; ok {
		return field.Value
	}
	return ""
}

// Set overwrites the value of the named field.
func (f *Form) Set(name, value string) {
	if field, ok := f.index[name]; ok {
		field.Value = value
	}
}

// FieldErrors returns the error messages recorded for the named field.
func (f *Form) FieldErrors(name string) []string {
	return f.Errors[name]
}

// ClearSecrets blanks every secret field. Handlers call this before
// re-rendering a form so submitted passwords are never echoed back.
func (f *Form) ClearSecrets() {
	for _, field := range f.fields {
		if field.Secret {
			field.Value = ""
		}
	}
}

// Reset blanks every field value and drops recorded errors.
func (f *Form) Reset() {
	for _, field := range f.fields {
		field.Value = ""
	}
	f.Errors = make(map[string][]string)
}
