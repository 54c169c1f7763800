package compiler

import (
	"fmt"

	"github.com/roach88/confflow/internal/ir"
	"github.com/roach88/confflow/internal/rule"
	"github.com/roach88/confflow/internal/schema"
)

// BuildSchema turns a validated SchemaSpec into a schema.Schema.
func BuildSchema(spec *ir.SchemaSpec) (*schema.Schema, error) {
	if errs := Validate(spec); len(errs) > 0 {
		return nil, fmt.Errorf("schema %q: %w", spec.Name, ValidationErrors(errs))
	}

	fields := make([]*schema.Field, 0, len(spec.Fields))
	for _, fs := range spec.Fields {
		ft, err := schema.ParseFieldType(fs.Type)
		if err != nil {
			return nil, err
		}

		opts := []schema.FieldOption{schema.Describe(fs.Description)}
		if fs.Required {
			opts = append(opts, schema.Required())
		}
		if fs.Default != nil {
			opts = append(opts, schema.Default(fs.Default))
		}
		for _, cs := range fs.Constraints {
			c, err := schema.NewConstraint(cs.Kind, cs.Value, ft)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", fs.Name, err)
			}
			opts = append(opts, schema.Constrain(c))
		}

		f, err := schema.NewField(fs.Name, ft, opts...)
		if err != nil {
			return nil, fmt.Errorf("schema %q: %w", spec.Name, err)
		}
		fields = append(fields, f)
	}

	return schema.New(spec.Name, spec.Description, fields...)
}

// BuildRule turns a validated RuleSpec into an unfrozen rule.Rule named
// after the spec ID.
func BuildRule(spec *ir.RuleSpec) (*rule.Rule, error) {
	if errs := Validate(spec); len(errs) > 0 {
		return nil, fmt.Errorf("rule %q: %w", spec.ID, ValidationErrors(errs))
	}

	kind, err := rule.ParseKind(spec.Kind)
	if err != nil {
		return nil, err
	}
	items := ir.Identifiers(spec.Items...)
	trigger := ir.NormalizeIdentifier(spec.Trigger)

	var r *rule.Rule
	switch kind {
	case rule.KindMutuallyExclusive:
		r = rule.MutuallyExclusive(items...)
	case rule.KindAllOrNone:
		r = rule.AllOrNone(items...)
	case rule.KindOneOfGroup:
		r = rule.OneOfGroup(items...)
	case rule.KindExactlyN:
		r = rule.ExactlyN(*spec.N, items...)
	case rule.KindAtLeastN:
		r = rule.AtLeastN(*spec.N, items...)
	case rule.KindNotAll:
		r = rule.NotAll(items...)
	case rule.KindRequiresOneOf:
		r, err = rule.RequiresOneOf(trigger, items...)
	case rule.KindRequiresAll:
		r, err = rule.RequiresAll(trigger, items...)
	case rule.KindExcludes:
		r, err = rule.Excludes(trigger, items...)
	default:
		return nil, fmt.Errorf("rule %q: unhandled kind %s", spec.ID, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("rule %q: %w", spec.ID, err)
	}
	return r.Named(spec.ID), nil
}
