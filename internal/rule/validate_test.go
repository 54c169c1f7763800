package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/confflow/internal/ir"
)

// mustTriggered unwraps a triggered rule constructor, panicking on error.
func mustTriggered(r *Rule, err error) *Rule {
	if err != nil {
		panic(err)
	}
	return r
}

func TestValidate(t *testing.T) {
	requiresOneOf, err := RequiresOneOf("T", "a", "b")
	require.NoError(t, err)
	requiresAll, err := RequiresAll("T", "a", "b")
	require.NoError(t, err)
	excludes, err := Excludes("T", "a", "b")
	require.NoError(t, err)

	tests := []struct {
		name  string
		rule  *Rule
		sel   []string
		valid bool
	}{
		{"mutually exclusive none", MutuallyExclusive("a", "b", "c"), nil, true},
		{"mutually exclusive one", MutuallyExclusive("a", "b", "c"), []string{"a", "x"}, true},
		{"mutually exclusive two", MutuallyExclusive("a", "b", "c"), []string{"a", "b"}, false},

		{"all or none empty", AllOrNone("a", "b"), []string{"x"}, true},
		{"all or none all", AllOrNone("a", "b"), []string{"a", "b", "x"}, true},
		{"all or none partial", AllOrNone("a", "b"), []string{"a"}, false},

		{"one of group one", OneOfGroup("a", "b"), []string{"b"}, true},
		{"one of group none", OneOfGroup("a", "b"), []string{"x"}, false},
		{"one of group two", OneOfGroup("a", "b"), []string{"a", "b"}, false},

		{"exactly two ok", ExactlyN(2, "a", "b", "c"), []string{"a", "c"}, true},
		{"exactly two short", ExactlyN(2, "a", "b", "c"), []string{"a"}, false},
		{"exactly two over", ExactlyN(2, "a", "b", "c"), []string{"a", "b", "c"}, false},
		{"exactly zero", ExactlyN(0, "a", "b"), nil, true},

		{"at least two ok", AtLeastN(2, "a", "b", "c"), []string{"a", "b", "c"}, true},
		{"at least two short", AtLeastN(2, "a", "b", "c"), []string{"c"}, false},
		{"at least zero", AtLeastN(0, "a"), nil, true},

		{"not all partial", NotAll("a", "b"), []string{"a"}, true},
		{"not all all", NotAll("a", "b"), []string{"a", "b"}, false},

		{"requires one of without trigger", requiresOneOf, []string{"x"}, true},
		{"requires one of satisfied", requiresOneOf, []string{"T", "b"}, true},
		{"requires one of violated", requiresOneOf, []string{"T"}, false},

		{"requires all without trigger", requiresAll, []string{"a"}, true},
		{"requires all satisfied", requiresAll, []string{"T", "a", "b"}, true},
		{"requires all violated", requiresAll, []string{"T", "a"}, false},

		{"excludes without trigger", excludes, []string{"a", "b"}, true},
		{"excludes satisfied", excludes, []string{"T"}, true},
		{"excludes violated", excludes, []string{"T", "b"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.rule.Validate(ir.NewSelection(tt.sel...)))
		})
	}
}

func TestValidateEmptySelection(t *testing.T) {
	empty := ir.NewSelection()

	accepting := map[string]*Rule{
		"mutually_exclusive": MutuallyExclusive("a", "b"),
		"all_or_none":        AllOrNone("a", "b"),
		"excludes":           mustTriggered(Excludes("T", "a")),
		"requires_one_of":    mustTriggered(RequiresOneOf("T", "a")),
		"requires_all":       mustTriggered(RequiresAll("T", "a")),
		"not_all":            NotAll("a", "b"),
	}
	for name, r := range accepting {
		assert.True(t, r.Validate(empty), "%s must accept the empty selection", name)
	}

	rejecting := map[string]*Rule{
		"one_of_group": OneOfGroup("a", "b"),
		"exactly_n":    ExactlyN(1, "a", "b"),
		"at_least_n":   AtLeastN(1, "a", "b"),
	}
	for name, r := range rejecting {
		assert.False(t, r.Validate(empty), "%s must reject the empty selection", name)
	}
}

func TestValidateUnknownKind(t *testing.T) {
	var r Rule
	assert.False(t, r.Validate(ir.NewSelection()))
}

func TestValidateIsRepeatable(t *testing.T) {
	r := OneOfGroup("a", "b")
	r.Freeze()
	sel := ir.NewSelection("a")
	for i := 0; i < 3; i++ {
		assert.True(t, r.Validate(sel))
	}
}

func TestExplainExactlyN(t *testing.T) {
	r := ExactlyN(1, "a", "b", "c").Named("pick-one")
	v := r.Explain(ir.NewSelection("a", "b"))

	assert.Equal(t, "exactly_n", v.Kind)
	assert.Equal(t, "pick-one", v.Rule)
	require.NotNil(t, v.N)
	assert.Equal(t, 1, *v.N)
	assert.Equal(t, []ir.Identifier{"a", "b"}, v.Found)
	assert.Equal(t, "Exactly 1 of {a,b,c} must be selected, found 2: {a,b}", v.Message)
	assert.Equal(t, `rule "pick-one": Exactly 1 of {a,b,c} must be selected, found 2: {a,b}`, v.Error())
}

func TestExplainMessages(t *testing.T) {
	tests := []struct {
		name    string
		rule    *Rule
		sel     []string
		message string
	}{
		{"mutually exclusive", MutuallyExclusive("a", "b"), []string{"a", "b"},
			"At most 1 of {a,b} may be selected, found 2: {a,b}"},
		{"all or none", AllOrNone("a", "b", "c"), []string{"a"},
			"All or none of {a,b,c} must be selected, found 1: {a}, missing {b,c}"},
		{"one of group", OneOfGroup("Dev", "Prod"), nil,
			"Exactly 1 of {Dev,Prod} must be selected, found 0: {}"},
		{"at least", AtLeastN(2, "a", "b"), []string{"b"},
			"At least 2 of {a,b} must be selected, found 1: {b}"},
		{"not all", NotAll("a", "b"), []string{"a", "b"},
			"Not all of {a,b} may be selected together"},
		{"requires one of", mustTriggered(RequiresOneOf("Cache", "Redis", "Mem")), []string{"Cache"},
			"Cache requires at least 1 of {Mem,Redis}, found none"},
		{"requires all", mustTriggered(RequiresAll("T", "a", "b")), []string{"T", "a"},
			"T requires all of {a,b}, missing {b}"},
		{"excludes", mustTriggered(Excludes("T", "a", "b")), []string{"T", "a"},
			"T excludes {a,b}, found 1: {a}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := ir.NewSelection(tt.sel...)
			require.False(t, tt.rule.Validate(sel))
			assert.Equal(t, tt.message, tt.rule.Explain(sel).Message)
		})
	}
}

func TestExplainTrigger(t *testing.T) {
	r := mustTriggered(RequiresAll("T", "a"))
	v := r.Explain(ir.NewSelection("T"))
	assert.Equal(t, ir.Identifier("T"), v.Trigger)
	assert.Equal(t, []ir.Identifier{"a"}, v.Missing)
	assert.Nil(t, v.N)
	assert.Empty(t, v.Found)
}
