package conflict

import (
	"fmt"

	"github.com/roach88/confflow/internal/rule"
)

// Condition decides whether a kind-level incompatibility fires for two
// concrete rules. a always has the entry's kind A and b its kind B.
type Condition func(a, b *rule.Rule) bool

// Entry declares that rules of kinds A and B conflict when their items
// overlap and Condition (if any) holds.
type Entry struct {
	A, B      rule.Kind
	Condition Condition // nil means the pair always conflicts
	Reason    string
}

type pairKey struct {
	lo, hi rule.Kind
}

func keyOf(a, b rule.Kind) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// Table is an immutable lookup of conflicting kind pairs.
type Table struct {
	entries []Entry
	index   map[pairKey]int
}

// NewTable builds a table. Kinds must be valid and each unordered pair may
// appear at most once.
func NewTable(entries ...Entry) (*Table, error) {
	t := &Table{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[pairKey]int, len(entries)),
	}
	for i, e := range entries {
		if !e.A.Valid() || !e.B.Valid() {
			return nil, fmt.Errorf("entry %d: invalid kind pair (%s, %s)", i, e.A, e.B)
		}
		key := keyOf(e.A, e.B)
		if _, dup := t.index[key]; dup {
			return nil, fmt.Errorf("entry %d: duplicate kind pair (%s, %s)", i, e.A.Label(), e.B.Label())
		}
		t.index[key] = len(t.entries)
		t.entries = append(t.entries, e)
	}
	return t, nil
}

// MustTable is like NewTable but panics on error.
func MustTable(entries ...Entry) *Table {
	t, err := NewTable(entries...)
	if err != nil {
		panic(err)
	}
	return t
}

// Entries returns the table entries in declaration order.
func (t *Table) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

// Lookup returns the entry for the unordered pair (a, b).
func (t *Table) Lookup(a, b rule.Kind) (Entry, bool) {
	i, ok := t.index[keyOf(a, b)]
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

func exactlyN(r *rule.Rule) int {
	n, _ := r.N()
	return n
}

var defaultTable = MustTable(
	Entry{
		A:      rule.KindMutuallyExclusive,
		B:      rule.KindAllOrNone,
		Reason: "mutual exclusion allows at most one item while all-or-none requires every item together",
	},
	Entry{
		A:      rule.KindMutuallyExclusive,
		B:      rule.KindOneOfGroup,
		Reason: "overlapping mutual exclusion and one-of-group should be declared as a single group",
	},
	Entry{
		A:      rule.KindMutuallyExclusive,
		B:      rule.KindRequiresOneOf,
		Reason: "requires-one-of items overlap a mutual exclusion group",
	},
	Entry{
		A: rule.KindMutuallyExclusive,
		B: rule.KindExactlyN,
		Condition: func(_, exactly *rule.Rule) bool {
			return exactlyN(exactly) > 1
		},
		Reason: "exactly n > 1 items contradicts at most one",
	},
	Entry{
		A:      rule.KindAllOrNone,
		B:      rule.KindOneOfGroup,
		Reason: "all-or-none requires every item while one-of-group requires exactly one",
	},
	Entry{
		A: rule.KindAllOrNone,
		B: rule.KindExactlyN,
		Condition: func(all, exactly *rule.Rule) bool {
			n := exactlyN(exactly)
			return n != 0 && n != all.Len()
		},
		Reason: "exactly n must be 0 or the size of the all-or-none group",
	},
	Entry{
		A:      rule.KindOneOfGroup,
		B:      rule.KindRequiresOneOf,
		Reason: "requires-one-of items overlap a one-of-group",
	},
	Entry{
		A: rule.KindOneOfGroup,
		B: rule.KindExactlyN,
		Condition: func(_, exactly *rule.Rule) bool {
			return exactlyN(exactly) != 1
		},
		Reason: "one-of-group requires exactly 1",
	},
	Entry{
		A: rule.KindRequiresOneOf,
		B: rule.KindExactlyN,
		Condition: func(_, exactly *rule.Rule) bool {
			return exactlyN(exactly) < 2
		},
		Reason: "exactly n < 2 overlaps a requires-one-of set",
	},
)

// DefaultTable returns the built-in conflict table.
func DefaultTable() *Table {
	return defaultTable
}
