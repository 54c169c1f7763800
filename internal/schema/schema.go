package schema

import (
	"errors"
	"fmt"
	"sort"

	"github.com/roach88/confflow/internal/ir"
)

// Schema describes one configuration section.
type Schema struct {
	Name        ir.Identifier
	Description string

	fields []*Field
	index  map[string]int
}

// ErrDuplicateField is returned when a schema declares a field twice.
var ErrDuplicateField = errors.New("duplicate field")

// New builds a schema. Field order is preserved.
func New(name, description string, fields ...*Field) (*Schema, error) {
	id := ir.NormalizeIdentifier(name)
	if id == "" {
		return nil, errors.New("schema name must not be empty")
	}
	s := &Schema{
		Name:        id,
		Description: description,
		index:       make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if f == nil {
			return nil, fmt.Errorf("schema %s: nil field", id)
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, fmt.Errorf("schema %s: %w %q", id, ErrDuplicateField, f.Name)
		}
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s, nil
}

// MustNew is New that panics on error.
func MustNew(name, description string, fields ...*Field) *Schema {
	s, err := New(name, description, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Fields returns the fields in declaration order.
func (s *Schema) Fields() []*Field {
	out := make([]*Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field looks up a field by name.
func (s *Schema) Field(name string) (*Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.fields[i], true
}

// FieldError is a problem with one field of a section.
type FieldError struct {
	Section ir.Identifier `json:"section"`
	Field   string        `json:"field,omitempty"`
	Message string        `json:"message"`
	Line    int           `json:"line,omitempty"`
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Section, e.Message)
	}
	return fmt.Sprintf("%s.%s: %s", e.Section, e.Field, e.Message)
}

// ValidateSection checks a decoded section body against the schema.
// A nil body is an empty section. Errors are returned in field
// declaration order, followed by unknown keys in sorted order.
func (s *Schema) ValidateSection(values map[string]any) []*FieldError {
	var errs []*FieldError
	for _, f := range s.fields {
		v, present := values[f.Name]
		if !present || v == nil {
			if f.Required {
				errs = append(errs, &FieldError{Section: s.Name, Field: f.Name, Message: "is required"})
			}
			continue
		}
		if err := f.Check(v); err != nil {
			errs = append(errs, &FieldError{Section: s.Name, Field: f.Name, Message: err.Error()})
		}
	}

	var unknown []string
	for k := range values {
		if _, ok := s.index[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		errs = append(errs, &FieldError{Section: s.Name, Field: k, Message: "unknown field"})
	}
	return errs
}

// Resolve returns a copy of values with defaults filled in for absent
// fields.
func (s *Schema) Resolve(values map[string]any) map[string]any {
	out := make(map[string]any, len(s.fields))
	for k, v := range values {
		out[k] = v
	}
	for _, f := range s.fields {
		if v, ok := out[f.Name]; (!ok || v == nil) && f.HasDefault {
			out[f.Name] = f.Default
		}
	}
	return out
}
