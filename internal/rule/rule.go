package rule

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/confflow/internal/ir"
)

// Rule is a selection constraint over a set of schema identifiers.
//
// Only the fields relevant to the kind are meaningful: n for ExactlyN and
// AtLeastN, trigger for RequiresOneOf, RequiresAll and Excludes.
//
// INVARIANTS:
//   - items is sorted and free of duplicates
//   - trigger is never a member of items
//   - an ExactlyN rule grown through AddItem/AddItems never exceeds n items
//   - a frozen rule never changes
type Rule struct {
	kind    Kind
	items   []ir.Identifier
	n       int
	trigger ir.Identifier
	name    string
	frozen  bool
}

// MutuallyExclusive allows at most one of items to be selected.
func MutuallyExclusive(items ...ir.Identifier) *Rule {
	return newRule(KindMutuallyExclusive, items)
}

// AllOrNone requires either every item or none of them.
func AllOrNone(items ...ir.Identifier) *Rule {
	return newRule(KindAllOrNone, items)
}

// OneOfGroup requires exactly one of items.
func OneOfGroup(items ...ir.Identifier) *Rule {
	return newRule(KindOneOfGroup, items)
}

// NotAll forbids selecting every item at once.
func NotAll(items ...ir.Identifier) *Rule {
	return newRule(KindNotAll, items)
}

// ExactlyN requires exactly n of items. The declared items are taken as the
// complete set; later AddItem/AddItems calls are capped at n.
func ExactlyN(n int, items ...ir.Identifier) *Rule {
	r := newRule(KindExactlyN, items)
	r.n = n
	return r
}

// AtLeastN requires n or more of items.
func AtLeastN(n int, items ...ir.Identifier) *Rule {
	r := newRule(KindAtLeastN, items)
	r.n = n
	return r
}

// RequiresOneOf requires at least one of items whenever trigger is selected.
func RequiresOneOf(trigger ir.Identifier, items ...ir.Identifier) (*Rule, error) {
	return newTriggered(KindRequiresOneOf, trigger, items)
}

// RequiresAll requires every item whenever trigger is selected.
func RequiresAll(trigger ir.Identifier, items ...ir.Identifier) (*Rule, error) {
	return newTriggered(KindRequiresAll, trigger, items)
}

// Excludes forbids every item whenever trigger is selected.
func Excludes(trigger ir.Identifier, items ...ir.Identifier) (*Rule, error) {
	return newTriggered(KindExcludes, trigger, items)
}

func newRule(kind Kind, items []ir.Identifier) *Rule {
	r := &Rule{kind: kind}
	for _, id := range items {
		r.insert(normalize(id))
	}
	return r
}

func newTriggered(kind Kind, trigger ir.Identifier, items []ir.Identifier) (*Rule, error) {
	r := &Rule{kind: kind, trigger: normalize(trigger)}
	if err := r.AddItems(items...); err != nil {
		return nil, err
	}
	return r, nil
}

func normalize(id ir.Identifier) ir.Identifier {
	return ir.NormalizeIdentifier(string(id))
}

// Kind returns the rule's variant tag.
func (r *Rule) Kind() Kind { return r.kind }

// Items returns a sorted copy of the constrained identifiers.
func (r *Rule) Items() []ir.Identifier { return slices.Clone(r.items) }

// Len returns the number of constrained identifiers.
func (r *Rule) Len() int { return len(r.items) }

// N returns the cardinality parameter; ok is false for kinds without one.
func (r *Rule) N() (n int, ok bool) {
	return r.n, r.kind.Parameterized()
}

// Trigger returns the activating identifier; ok is false for unconditional kinds.
func (r *Rule) Trigger() (trigger ir.Identifier, ok bool) {
	return r.trigger, r.kind.Triggered()
}

// Name returns the declaration name, if one was given.
func (r *Rule) Name() string { return r.name }

// Named sets the declaration name used in messages. The name is not part of
// rule identity.
func (r *Rule) Named(name string) *Rule {
	r.name = name
	return r
}

// Contains reports whether id is one of the rule's items.
func (r *Rule) Contains(id ir.Identifier) bool {
	_, found := slices.BinarySearch(r.items, id)
	return found
}

// References returns every identifier the rule mentions: its items plus the
// trigger for conditional kinds.
func (r *Rule) References() []ir.Identifier {
	refs := r.Items()
	if t, ok := r.Trigger(); ok && t != "" {
		refs = append(refs, t)
	}
	return ir.SortIdentifiers(refs)
}

// AddItem adds one identifier.
func (r *Rule) AddItem(id ir.Identifier) error {
	return r.AddItems(id)
}

// AddItems adds identifiers atomically: either all are added or none.
func (r *Rule) AddItems(ids ...ir.Identifier) error {
	if r.frozen {
		return fmt.Errorf("%s: %w", r, ErrFrozen)
	}

	fresh := make([]ir.Identifier, 0, len(ids))
	for _, raw := range ids {
		id := normalize(raw)
		if r.kind.Triggered() && id == r.trigger {
			return fmt.Errorf("%s: %q: %w", r.kind.Label(), id, ErrTriggerInItems)
		}
		if r.Contains(id) || slices.Contains(fresh, id) {
			continue
		}
		fresh = append(fresh, id)
	}

	if r.kind == KindExactlyN && len(r.items)+len(fresh) > r.n {
		return fmt.Errorf("cannot add more than %d items to rule %s: %w", r.n, r.kind.Label(), ErrCapacity)
	}

	for _, id := range fresh {
		r.insert(id)
	}
	return nil
}

func (r *Rule) insert(id ir.Identifier) {
	i, found := slices.BinarySearch(r.items, id)
	if !found {
		r.items = slices.Insert(r.items, i, id)
	}
}

// Freeze marks the rule immutable. Engines freeze rules they commit.
func (r *Rule) Freeze() { r.frozen = true }

// Frozen reports whether Freeze has been called.
func (r *Rule) Frozen() bool { return r.frozen }

// Overlap returns the identifiers shared by the item sets of r and other.
func (r *Rule) Overlap(other *Rule) []ir.Identifier {
	var shared []ir.Identifier
	for _, id := range r.items {
		if other.Contains(id) {
			shared = append(shared, id)
		}
	}
	return shared
}

// Equal reports whether two rules have the same kind, items and parameter.
func (r *Rule) Equal(other *Rule) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.Key() == other.Key()
}

// Key returns a string identifying the rule's kind, parameter and items.
// Equal rules have equal keys. Identifiers are quoted, so separators inside
// a name cannot make two different rules collide.
func (r *Rule) Key() string {
	var b strings.Builder
	b.WriteString(r.kind.String())
	if r.kind.Parameterized() {
		b.WriteString("/n=")
		b.WriteString(strconv.Itoa(r.n))
	}
	if r.kind.Triggered() {
		b.WriteString("/trigger=")
		b.WriteString(strconv.Quote(string(r.trigger)))
	}
	b.WriteString("/{")
	for i, id := range r.items {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(string(id)))
	}
	b.WriteString("}")
	return b.String()
}

// String renders the rule, e.g. "Exactly-N(2){a,b,c}" or
// "Requires-One-Of(Cache){Mem,Redis}".
func (r *Rule) String() string {
	items := ir.FormatIdentifiers(r.items)
	switch {
	case r.kind.Parameterized():
		return fmt.Sprintf("%s(%d)%s", r.kind.Label(), r.n, items)
	case r.kind.Triggered():
		return fmt.Sprintf("%s(%s)%s", r.kind.Label(), r.trigger, items)
	default:
		return r.kind.Label() + items
	}
}
