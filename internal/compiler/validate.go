package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/confflow/internal/ir"
	"github.com/roach88/confflow/internal/schema"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	// SchemaSpec errors (E101-E109)
	ErrSchemaNameEmpty    = "E101" // schema name is required
	ErrInvalidFieldType   = "E104" // invalid type string
	ErrDuplicateName      = "E105" // duplicate field name
	ErrInvalidDefault     = "E106" // default does not fit its field
	ErrInvalidConstraint  = "E107" // unknown constraint or bad argument
	ErrFieldNameEmpty     = "E108" // field name is required
	ErrRequiredHasDefault = "E109" // required field declares a default

	// RuleSpec errors (E120-E129)
	ErrUnknownRuleKind = "E120" // unknown rule kind
	ErrInvalidN        = "E121" // missing, negative or unexpected n
	ErrInvalidTrigger  = "E122" // missing trigger or trigger on untriggered kind
	ErrEmptyItems      = "E123" // rule without items
	ErrTriggerInItems  = "E124" // trigger also listed in items
	ErrDuplicateItem   = "E125" // item listed twice
	ErrNExceedsItems   = "E126" // n larger than the number of items
	ErrEmptyName       = "E127" // empty item name or rule id
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates compiled IR against schema rules.
// Returns all errors found (does not fail-fast).
// Supports SchemaSpec and RuleSpec types.
func Validate(v any) []ValidationError {
	switch spec := v.(type) {
	case *ir.SchemaSpec:
		return validateSchemaSpec(spec)
	case ir.SchemaSpec:
		return validateSchemaSpec(&spec)
	case *ir.RuleSpec:
		return validateRuleSpec(spec)
	case ir.RuleSpec:
		return validateRuleSpec(&spec)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}
	}
}

// validateSchemaSpec validates a schema declaration.
func validateSchemaSpec(spec *ir.SchemaSpec) []ValidationError {
	var errs []ValidationError

	// E101: name is required
	if strings.TrimSpace(spec.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "schema name is required and must be non-empty",
			Code:    ErrSchemaNameEmpty,
		})
	}

	fieldNames := make(map[string]bool)
	for i, field := range spec.Fields {
		path := fmt.Sprintf("fields[%d]", i)

		// E108: field name is required
		if strings.TrimSpace(field.Name) == "" {
			errs = append(errs, ValidationError{
				Field:   path + ".name",
				Message: "field name is required",
				Code:    ErrFieldNameEmpty,
			})
		}

		// E105: duplicate field name
		if fieldNames[field.Name] {
			errs = append(errs, ValidationError{
				Field:   path + ".name",
				Message: fmt.Sprintf("duplicate field name: %q", field.Name),
				Code:    ErrDuplicateName,
			})
		}
		fieldNames[field.Name] = true

		// E104: check for valid type
		ft, err := schema.ParseFieldType(field.Type)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   path + ".type",
				Message: fmt.Sprintf("invalid type %q for field %q", field.Type, field.Name),
				Code:    ErrInvalidFieldType,
			})
			continue
		}

		// E107: constraints must exist and fit the field type
		var constraints []schema.Constraint
		for j, c := range field.Constraints {
			built, err := schema.NewConstraint(c.Kind, c.Value, ft)
			if err != nil {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.constraints[%d]", path, j),
					Message: err.Error(),
					Code:    ErrInvalidConstraint,
				})
				continue
			}
			constraints = append(constraints, built)
		}

		// E109: a default on a required field is never used
		if field.Required && field.Default != nil {
			errs = append(errs, ValidationError{
				Field:   path + ".default",
				Message: fmt.Sprintf("required field %q cannot declare a default", field.Name),
				Code:    ErrRequiredHasDefault,
			})
		}

		// E106: default must satisfy the field
		if field.Default != nil {
			f := &schema.Field{Name: field.Name, Type: ft, Constraints: constraints}
			if err := f.Check(field.Default); err != nil {
				errs = append(errs, ValidationError{
					Field:   path + ".default",
					Message: fmt.Sprintf("default %v for field %q: %v", field.Default, field.Name, err),
					Code:    ErrInvalidDefault,
				})
			}
		}
	}

	return errs
}

// validateRuleSpec validates a selection rule declaration.
func validateRuleSpec(spec *ir.RuleSpec) []ValidationError {
	var errs []ValidationError

	// E127: id is required
	if strings.TrimSpace(spec.ID) == "" {
		errs = append(errs, ValidationError{
			Field:   "id",
			Message: "rule id is required and must be non-empty",
			Code:    ErrEmptyName,
		})
	}

	// E120: kind must be known; nothing else is meaningful without it
	if !ir.ValidRuleKinds[spec.Kind] {
		errs = append(errs, ValidationError{
			Field:   "kind",
			Message: fmt.Sprintf("unknown rule kind %q", spec.Kind),
			Code:    ErrUnknownRuleKind,
		})
		return errs
	}

	// E121: n is required exactly for parameterised kinds
	switch {
	case ir.ParameterizedKinds[spec.Kind] && spec.N == nil:
		errs = append(errs, ValidationError{
			Field:   "n",
			Message: fmt.Sprintf("%s rules require n", spec.Kind),
			Code:    ErrInvalidN,
		})
	case ir.ParameterizedKinds[spec.Kind] && *spec.N < 0:
		errs = append(errs, ValidationError{
			Field:   "n",
			Message: fmt.Sprintf("n must be non-negative, got %d", *spec.N),
			Code:    ErrInvalidN,
		})
	case !ir.ParameterizedKinds[spec.Kind] && spec.N != nil:
		errs = append(errs, ValidationError{
			Field:   "n",
			Message: fmt.Sprintf("%s rules do not take n", spec.Kind),
			Code:    ErrInvalidN,
		})
	}

	// E122: trigger is required exactly for triggered kinds
	trigger := ir.NormalizeIdentifier(spec.Trigger)
	switch {
	case ir.TriggeredKinds[spec.Kind] && trigger == "":
		errs = append(errs, ValidationError{
			Field:   "trigger",
			Message: fmt.Sprintf("%s rules require a trigger", spec.Kind),
			Code:    ErrInvalidTrigger,
		})
	case !ir.TriggeredKinds[spec.Kind] && spec.Trigger != "":
		errs = append(errs, ValidationError{
			Field:   "trigger",
			Message: fmt.Sprintf("%s rules do not take a trigger", spec.Kind),
			Code:    ErrInvalidTrigger,
		})
	}

	// E123: items must be non-empty
	if len(spec.Items) == 0 {
		errs = append(errs, ValidationError{
			Field:   "items",
			Message: "rule requires at least one item",
			Code:    ErrEmptyItems,
		})
	}

	seen := make(map[ir.Identifier]bool)
	for i, raw := range spec.Items {
		item := ir.NormalizeIdentifier(raw)
		path := fmt.Sprintf("items[%d]", i)

		switch {
		case item == "":
			errs = append(errs, ValidationError{
				Field:   path,
				Message: "item name must be non-empty",
				Code:    ErrEmptyName,
			})
		case seen[item]:
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("duplicate item %q", item),
				Code:    ErrDuplicateItem,
			})
		case ir.TriggeredKinds[spec.Kind] && item == trigger:
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("trigger %q cannot also be an item", item),
				Code:    ErrTriggerInItems,
			})
		}
		seen[item] = true
	}

	// E126: n cannot exceed the item count
	if ir.ParameterizedKinds[spec.Kind] && spec.N != nil && *spec.N > len(seen) {
		errs = append(errs, ValidationError{
			Field:   "n",
			Message: fmt.Sprintf("n=%d exceeds the %d items", *spec.N, len(seen)),
			Code:    ErrNExceedsItems,
		})
	}

	return errs
}

// ValidationErrors joins a non-empty error list into a single error.
func ValidationErrors(errs []ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	joined := make([]error, len(errs))
	for i, e := range errs {
		joined[i] = e
	}
	return errors.Join(joined...)
}
