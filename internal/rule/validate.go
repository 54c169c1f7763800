package rule

import (
	"fmt"

	"github.com/roach88/confflow/internal/ir"
)

// Violation describes why a selection fails a rule.
type Violation struct {
	Rule    string          `json:"rule,omitempty"` // declaration name
	Kind    string          `json:"kind"`
	Items   []ir.Identifier `json:"items"`
	N       *int            `json:"n,omitempty"`
	Trigger ir.Identifier   `json:"trigger,omitempty"`
	Found   []ir.Identifier `json:"found"`
	Missing []ir.Identifier `json:"missing,omitempty"`
	Message string          `json:"message"`
}

// Error implements the error interface so a single violation can be
// returned or wrapped on its own.
func (v Violation) Error() string {
	if v.Rule != "" {
		return fmt.Sprintf("rule %q: %s", v.Rule, v.Message)
	}
	return v.Message
}

// Validate reports whether sel satisfies the rule. An unknown kind never
// validates.
func (r *Rule) Validate(sel ir.Selection) bool {
	found := len(sel.Intersect(r.items))

	switch r.kind {
	case KindMutuallyExclusive:
		return found <= 1
	case KindAllOrNone:
		return found == 0 || found == len(r.items)
	case KindOneOfGroup:
		return found == 1
	case KindExactlyN:
		return found == r.n
	case KindAtLeastN:
		return found >= r.n
	case KindNotAll:
		return found != len(r.items)
	case KindRequiresOneOf:
		return !sel.Has(r.trigger) || found > 0
	case KindRequiresAll:
		return !sel.Has(r.trigger) || found == len(r.items)
	case KindExcludes:
		return !sel.Has(r.trigger) || found == 0
	default:
		return false
	}
}

// Explain returns the violation for sel. The result is meaningful only
// when Validate(sel) is false.
func (r *Rule) Explain(sel ir.Selection) Violation {
	found := sel.Intersect(r.items)
	if found == nil {
		found = []ir.Identifier{}
	}

	v := Violation{
		Rule:  r.name,
		Kind:  r.kind.String(),
		Items: r.Items(),
		Found: found,
	}
	if r.kind.Parameterized() {
		n := r.n
		v.N = &n
	}
	if r.kind.Triggered() {
		v.Trigger = r.trigger
	}

	items := ir.FormatIdentifiers(r.items)
	foundSet := ir.FormatIdentifiers(found)

	switch r.kind {
	case KindMutuallyExclusive:
		v.Message = fmt.Sprintf("At most 1 of %s may be selected, found %d: %s", items, len(found), foundSet)
	case KindAllOrNone:
		v.Missing = r.missing(sel)
		v.Message = fmt.Sprintf("All or none of %s must be selected, found %d: %s, missing %s",
			items, len(found), foundSet, ir.FormatIdentifiers(v.Missing))
	case KindOneOfGroup:
		v.Message = fmt.Sprintf("Exactly 1 of %s must be selected, found %d: %s", items, len(found), foundSet)
	case KindExactlyN:
		v.Message = fmt.Sprintf("Exactly %d of %s must be selected, found %d: %s", r.n, items, len(found), foundSet)
	case KindAtLeastN:
		v.Message = fmt.Sprintf("At least %d of %s must be selected, found %d: %s", r.n, items, len(found), foundSet)
	case KindNotAll:
		v.Message = fmt.Sprintf("Not all of %s may be selected together", items)
	case KindRequiresOneOf:
		v.Message = fmt.Sprintf("%s requires at least 1 of %s, found none", r.trigger, items)
	case KindRequiresAll:
		v.Missing = r.missing(sel)
		v.Message = fmt.Sprintf("%s requires all of %s, missing %s", r.trigger, items, ir.FormatIdentifiers(v.Missing))
	case KindExcludes:
		v.Message = fmt.Sprintf("%s excludes %s, found %d: %s", r.trigger, items, len(found), foundSet)
	default:
		v.Message = fmt.Sprintf("unknown rule kind %s", r.kind)
	}
	return v
}

func (r *Rule) missing(sel ir.Selection) []ir.Identifier {
	var out []ir.Identifier
	for _, id := range r.items {
		if !sel.Has(id) {
			out = append(out, id)
		}
	}
	return out
}
