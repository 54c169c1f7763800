package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/confflow/internal/ir"
)

// CompileRule parses a CUE value into a RuleSpec.
//
// The CUE value should be the rule struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`rule: "one-env": { kind: "one_of_group", items: ["Dev", "Prod"] }`)
//	spec, err := CompileRule(v.LookupPath(cue.ParsePath(`rule."one-env"`)))
//
// Only the shape is checked here; Validate reports semantic problems such
// as unknown kinds or a missing n.
func CompileRule(v cue.Value) (*ir.RuleSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.RuleSpec{ID: labelOf(v)}

	kindVal := v.LookupPath(cue.ParsePath("kind"))
	if !kindVal.Exists() {
		return nil, &CompileError{
			Field:   "kind",
			Message: "rule kind is required",
			Pos:     v.Pos(),
		}
	}
	kind, err := kindVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	spec.Kind = kind

	nVal := v.LookupPath(cue.ParsePath("n"))
	if nVal.Exists() {
		n64, err := nVal.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		n := int(n64)
		spec.N = &n
	}

	triggerVal := v.LookupPath(cue.ParsePath("trigger"))
	if triggerVal.Exists() {
		if spec.Trigger, err = triggerVal.String(); err != nil {
			return nil, formatCUEError(err)
		}
	}

	itemsVal := v.LookupPath(cue.ParsePath("items"))
	if !itemsVal.Exists() {
		return nil, &CompileError{
			Field:   "items",
			Message: "rule items are required",
			Pos:     v.Pos(),
		}
	}
	iter, err := itemsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	spec.Items = []string{}
	for iter.Next() {
		item, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   fmt.Sprintf("items[%d]", len(spec.Items)),
				Message: "rule items must be schema names",
				Pos:     iter.Value().Pos(),
			}
		}
		spec.Items = append(spec.Items, item)
	}

	return spec, nil
}
