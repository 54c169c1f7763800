package rule

import (
	"fmt"

	"github.com/roach88/confflow/internal/ir"
)

// Kind tags the variant of a Rule.
type Kind int

const (
	KindUnknown Kind = iota
	KindMutuallyExclusive
	KindAllOrNone
	KindOneOfGroup
	KindExactlyN
	KindAtLeastN
	KindNotAll
	KindRequiresOneOf
	KindRequiresAll
	KindExcludes
)

// Kinds lists every valid kind in declaration order.
var Kinds = []Kind{
	KindMutuallyExclusive,
	KindAllOrNone,
	KindOneOfGroup,
	KindExactlyN,
	KindAtLeastN,
	KindNotAll,
	KindRequiresOneOf,
	KindRequiresAll,
	KindExcludes,
}

var kindNames = map[Kind]string{
	KindMutuallyExclusive: ir.KindMutuallyExclusive,
	KindAllOrNone:         ir.KindAllOrNone,
	KindOneOfGroup:        ir.KindOneOfGroup,
	KindExactlyN:          ir.KindExactlyN,
	KindAtLeastN:          ir.KindAtLeastN,
	KindNotAll:            ir.KindNotAll,
	KindRequiresOneOf:     ir.KindRequiresOneOf,
	KindRequiresAll:       ir.KindRequiresAll,
	KindExcludes:          ir.KindExcludes,
}

var kindLabels = map[Kind]string{
	KindMutuallyExclusive: "Mutually-Exclusive",
	KindAllOrNone:         "All-Or-None",
	KindOneOfGroup:        "One-Of-Group",
	KindExactlyN:          "Exactly-N",
	KindAtLeastN:          "At-Least-N",
	KindNotAll:            "Not-All",
	KindRequiresOneOf:     "Requires-One-Of",
	KindRequiresAll:       "Requires-All",
	KindExcludes:          "Excludes",
}

// String returns the declaration name, e.g. "one_of_group".
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Label returns the human-readable name used in messages, e.g. "One-Of-Group".
func (k Kind) Label() string {
	if label, ok := kindLabels[k]; ok {
		return label
	}
	return k.String()
}

// Valid reports whether k is one of the nine rule kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// Parameterized reports whether rules of this kind carry n.
func (k Kind) Parameterized() bool {
	return k == KindExactlyN || k == KindAtLeastN
}

// Triggered reports whether rules of this kind carry a trigger.
func (k Kind) Triggered() bool {
	return k == KindRequiresOneOf || k == KindRequiresAll || k == KindExcludes
}

// ParseKind maps a declaration name to its Kind.
func ParseKind(name string) (Kind, error) {
	for kind, n := range kindNames {
		if n == name {
			return kind, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown rule kind %q", name)
}
