package schema

import (
	"fmt"

	"github.com/roach88/confflow/internal/ir"
)

// Field is one typed entry of a schema section.
type Field struct {
	Name        string
	Type        FieldType
	Description string
	Required    bool
	Default     any
	HasDefault  bool
	Constraints []Constraint
}

// FieldOption configures a Field built by NewField.
type FieldOption func(*Field)

// Required marks the field as required.
func Required() FieldOption {
	return func(f *Field) { f.Required = true }
}

// Default sets the value used when the field is absent.
func Default(v any) FieldOption {
	return func(f *Field) {
		f.Default = v
		f.HasDefault = true
	}
}

// Describe sets the field description.
func Describe(text string) FieldOption {
	return func(f *Field) { f.Description = text }
}

// Constrain appends constraints to the field.
func Constrain(cs ...Constraint) FieldOption {
	return func(f *Field) { f.Constraints = append(f.Constraints, cs...) }
}

// NewField builds a field and checks that its default, if any, is a valid
// value for it.
func NewField(name string, t FieldType, opts ...FieldOption) (*Field, error) {
	name = string(ir.NormalizeIdentifier(name))
	if name == "" {
		return nil, fmt.Errorf("field name must not be empty")
	}
	if _, err := ParseFieldType(string(t)); err != nil {
		return nil, fmt.Errorf("field %s: %w", name, err)
	}

	f := &Field{Name: name, Type: t}
	for _, opt := range opts {
		opt(f)
	}
	if f.HasDefault {
		if err := f.Check(f.Default); err != nil {
			return nil, fmt.Errorf("field %s: default %v: %w", name, f.Default, err)
		}
	}
	return f, nil
}

// Check returns the first problem with value, or nil.
func (f *Field) Check(value any) error {
	if !f.Type.Accepts(value) {
		got, ok := TypeOf(value)
		if !ok {
			got = FieldType(fmt.Sprintf("%T", value))
		}
		return fmt.Errorf("expected %s, got %s", f.Type, got)
	}
	for _, c := range f.Constraints {
		if err := c.Check(value); err != nil {
			return err
		}
	}
	return nil
}

// Example returns the value a template shows for the field.
func (f *Field) Example() any {
	if f.HasDefault {
		return f.Default
	}
	return f.Type.Zero()
}
