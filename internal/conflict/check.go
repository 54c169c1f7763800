package conflict

import (
	"errors"
	"fmt"

	"github.com/roach88/confflow/internal/ir"
	"github.com/roach88/confflow/internal/rule"
)

// ConflictError reports two rules that cannot coexist.
type ConflictError struct {
	First   *rule.Rule      // has the table entry's kind A
	Second  *rule.Rule      // has the table entry's kind B
	Overlap []ir.Identifier // items shared by both rules
	Reason  string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict between %s and %s on %s: %s",
		describe(e.First), describe(e.Second), ir.FormatIdentifiers(e.Overlap), e.detail())
}

func (e *ConflictError) detail() string {
	var n *int
	for _, r := range []*rule.Rule{e.First, e.Second} {
		if v, ok := r.N(); ok {
			n = &v
		}
	}
	if n == nil {
		return e.Reason
	}
	if e.First.Kind() == rule.KindAllOrNone {
		return fmt.Sprintf("%s (n=%d, size=%d)", e.Reason, *n, e.First.Len())
	}
	return fmt.Sprintf("%s (n=%d)", e.Reason, *n)
}

// Kinds returns the kinds of the two conflicting rules.
func (e *ConflictError) Kinds() (rule.Kind, rule.Kind) {
	return e.First.Kind(), e.Second.Kind()
}

func describe(r *rule.Rule) string {
	if r.Name() != "" {
		return fmt.Sprintf("%q %s", r.Name(), r)
	}
	return r.String()
}

// IsConflictError reports whether err is or wraps a ConflictError.
func IsConflictError(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// CheckPair returns the conflict between a and b, or nil.
func (t *Table) CheckPair(a, b *rule.Rule) *ConflictError {
	overlap := a.Overlap(b)
	if len(overlap) == 0 {
		return nil
	}

	entry, ok := t.Lookup(a.Kind(), b.Kind())
	if !ok {
		return nil
	}

	first, second := a, b
	if a.Kind() != entry.A {
		first, second = b, a
	}

	if entry.Condition != nil && !entry.Condition(first, second) {
		return nil
	}

	return &ConflictError{
		First:   first,
		Second:  second,
		Overlap: overlap,
		Reason:  entry.Reason,
	}
}

// Check returns the first conflict among every pair of rules, or nil.
// Pairs are visited in slice order.
func (t *Table) Check(rules []*rule.Rule) error {
	for i, a := range rules {
		for _, b := range rules[i+1:] {
			if ce := t.CheckPair(a, b); ce != nil {
				return ce
			}
		}
	}
	return nil
}

// Conflicts returns every conflicting pair among rules.
func (t *Table) Conflicts(rules []*rule.Rule) []*ConflictError {
	var out []*ConflictError
	for i, a := range rules {
		for _, b := range rules[i+1:] {
			if ce := t.CheckPair(a, b); ce != nil {
				out = append(out, ce)
			}
		}
	}
	return out
}

// Check runs DefaultTable().Check.
func Check(rules []*rule.Rule) error {
	return DefaultTable().Check(rules)
}
