package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/confflow/internal/ir"
)

// CompileSchema parses a CUE value into a SchemaSpec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the schema struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`schema: Database: { fields: { host: { type: "string" } } }`)
//	spec, err := CompileSchema(v.LookupPath(cue.ParsePath("schema.Database")))
func CompileSchema(v cue.Value) (*ir.SchemaSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.SchemaSpec{Name: labelOf(v)}

	descVal := v.LookupPath(cue.ParsePath("description"))
	if descVal.Exists() {
		desc, err := descVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		spec.Description = desc
	}

	// fields is optional: a schema without fields is a toggle section
	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return spec, nil
	}

	iter, err := fieldsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		field, err := parseField(strings.Trim(iter.Label(), `"`), iter.Value())
		if err != nil {
			return nil, err
		}
		spec.Fields = append(spec.Fields, field)
	}

	return spec, nil
}

// parseField extracts one field declaration.
func parseField(name string, v cue.Value) (ir.FieldSpec, error) {
	field := ir.FieldSpec{Name: name}

	typeVal := v.LookupPath(cue.ParsePath("type"))
	if !typeVal.Exists() {
		return field, &CompileError{
			Field:   fmt.Sprintf("fields.%s.type", name),
			Message: "field type is required",
			Pos:     v.Pos(),
		}
	}
	typeName, err := typeVal.String()
	if err != nil {
		return field, formatCUEError(err)
	}
	field.Type = typeName

	descVal := v.LookupPath(cue.ParsePath("description"))
	if descVal.Exists() {
		if field.Description, err = descVal.String(); err != nil {
			return field, formatCUEError(err)
		}
	}

	reqVal := v.LookupPath(cue.ParsePath("required"))
	if reqVal.Exists() {
		if field.Required, err = reqVal.Bool(); err != nil {
			return field, formatCUEError(err)
		}
	}

	defVal := v.LookupPath(cue.ParsePath("default"))
	if defVal.Exists() {
		if field.Default, err = decodeValue(defVal); err != nil {
			return field, err
		}
	}

	consVal := v.LookupPath(cue.ParsePath("constraints"))
	if consVal.Exists() {
		consIter, err := consVal.List()
		if err != nil {
			return field, formatCUEError(err)
		}
		for consIter.Next() {
			c, err := parseConstraint(name, consIter.Value())
			if err != nil {
				return field, err
			}
			field.Constraints = append(field.Constraints, c)
		}
	}

	return field, nil
}

// parseConstraint extracts a {kind, value} constraint entry.
func parseConstraint(fieldName string, v cue.Value) (ir.ConstraintSpec, error) {
	var c ir.ConstraintSpec

	kindVal := v.LookupPath(cue.ParsePath("kind"))
	if !kindVal.Exists() {
		return c, &CompileError{
			Field:   fmt.Sprintf("fields.%s.constraints", fieldName),
			Message: "constraint requires 'kind' field",
			Pos:     v.Pos(),
		}
	}
	kind, err := kindVal.String()
	if err != nil {
		return c, formatCUEError(err)
	}
	c.Kind = kind

	valueVal := v.LookupPath(cue.ParsePath("value"))
	if valueVal.Exists() {
		if c.Value, err = decodeValue(valueVal); err != nil {
			return c, err
		}
	}

	return c, nil
}

// decodeValue converts a concrete CUE scalar or list into the Go shapes the
// schema package understands: string, int, float64, bool and []any.
func decodeValue(v cue.Value) (any, error) {
	switch v.Kind() {
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return s, nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return int(n), nil
	case cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return f, nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return b, nil
	case cue.NullKind:
		return nil, nil
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		items := []any{}
		for iter.Next() {
			item, err := decodeValue(iter.Value())
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil
	default:
		return nil, &CompileError{
			Field:   "value",
			Message: fmt.Sprintf("unsupported value kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// labelOf returns the last path selector of v with CUE quoting removed,
// e.g. `rule: "one-env": {...}` yields "one-env".
func labelOf(v cue.Value) string {
	labels := v.Path().Selectors()
	if len(labels) == 0 {
		return ""
	}
	return strings.Trim(labels[len(labels)-1].String(), `"`)
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// FormatCUEError converts a CUE error into a CompileError carrying the
// position of its first error, when it has one.
func FormatCUEError(err error) error {
	return formatCUEError(err)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
