package ir

// SchemaSpec represents a compiled schema declaration.
type SchemaSpec struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Fields      []FieldSpec `json:"fields"`
}

// FieldSpec represents one typed field of a schema.
type FieldSpec struct {
	Name        string           `json:"name"`
	Type        string           `json:"type"` // "string", "int", "list<string>", ...
	Description string           `json:"description,omitempty"`
	Required    bool             `json:"required,omitempty"`
	Default     any              `json:"default,omitempty"`
	Constraints []ConstraintSpec `json:"constraints,omitempty"`
}

// ConstraintSpec names a value constraint and its argument.
type ConstraintSpec struct {
	Kind  string `json:"kind"`
	Value any    `json:"value,omitempty"`
}

// RuleSpec represents a compiled selection rule declaration.
type RuleSpec struct {
	ID      string   `json:"id"`
	Kind    string   `json:"kind"`
	N       *int     `json:"n,omitempty"`       // exactly_n, at_least_n
	Trigger string   `json:"trigger,omitempty"` // requires_one_of, requires_all, excludes
	Items   []string `json:"items"`
}

// Rule kind names as written in declarations.
const (
	KindMutuallyExclusive = "mutually_exclusive"
	KindAllOrNone         = "all_or_none"
	KindOneOfGroup        = "one_of_group"
	KindExactlyN          = "exactly_n"
	KindAtLeastN          = "at_least_n"
	KindNotAll            = "not_all"
	KindRequiresOneOf     = "requires_one_of"
	KindRequiresAll       = "requires_all"
	KindExcludes          = "excludes"
)

// ValidRuleKinds defines allowed rule kinds.
var ValidRuleKinds = map[string]bool{
	KindMutuallyExclusive: true,
	KindAllOrNone:         true,
	KindOneOfGroup:        true,
	KindExactlyN:          true,
	KindAtLeastN:          true,
	KindNotAll:            true,
	KindRequiresOneOf:     true,
	KindRequiresAll:       true,
	KindExcludes:          true,
}

// ParameterizedKinds take an integer n.
var ParameterizedKinds = map[string]bool{
	KindExactlyN: true,
	KindAtLeastN: true,
}

// TriggeredKinds take a trigger identifier.
var TriggeredKinds = map[string]bool{
	KindRequiresOneOf: true,
	KindRequiresAll:   true,
	KindExcludes:      true,
}
