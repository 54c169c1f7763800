package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstraints(t *testing.T) {
	tests := []struct {
		kind  string
		arg   any
		ft    FieldType
		good  any
		bad   any
		error string
	}{
		{"min_length", 3, TypeString, "abc", "ab", "length must be at least 3"},
		{"max_length", 2, TypeString, "ab", "abc", "length must be at most 2"},
		{"pattern", "[a-z]+", TypeString, "abc", "abc1", `must match "[a-z]+"`},
		{"starts_with", "db-", TypeString, "db-main", "main", `must start with "db-"`},
		{"ends_with", ".local", TypeString, "host.local", "host", `must end with ".local"`},
		{"contains", ":", TypeString, "a:b", "ab", `must contain ":"`},
		{"lowercase", nil, TypeString, "abc", "aBc", "must be lowercase"},
		{"uppercase", true, TypeString, "ABC", "aBC", "must be uppercase"},
		{"email", nil, TypeString, "ops@example.com", "ops", "must be an email address"},
		{"uuid", nil, TypeString, "0190a7f0-8f3c-7c4e-9a2b-3f1e2d4c5b6a", "not-a-uuid", "must be a UUID"},
		{"min", 1, TypeInt, 1, 0, "must be at least 1"},
		{"max", 10, TypeInt, 10, 11, "must be at most 10"},
		{"gt", 0.5, TypeFloat, 0.6, 0.5, "must be greater than 0.5"},
		{"lt", 100, TypeFloat, 99.9, 100, "must be less than 100"},
		{"multiple_of", 0.5, TypeFloat, 1.5, 1.2, "must be a multiple of 0.5"},
		{"positive", nil, TypeInt, 1, 0, "must be positive"},
		{"negative", nil, TypeFloat, -0.1, 0.0, "must be negative"},
		{"non_zero", nil, TypeInt, -1, 0, "must not be zero"},
		{"even", nil, TypeInt, 4, 3, "must be even"},
		{"odd", nil, TypeInt, 3, 4, "must be odd"},
		{"power_of_two", nil, TypeInt, 8, 6, "must be a power of two"},
		{"is_true", nil, TypeBool, true, false, "must be true"},
		{"is_false", nil, TypeBool, false, true, "must be false"},
		{"min_items", 2, TypeStringList, []any{"a", "b"}, []any{"a"}, "must have at least 2 items"},
		{"max_items", 1, TypeIntList, []any{1}, []any{1, 2}, "must have at most 1 items"},
		{"unique", nil, TypeStringList, []any{"a", "b"}, []any{"a", "b", "a"}, "items must be unique, a repeats"},
		{"expr", "value > 10", TypeInt, 11, 5, "must satisfy value > 10"},
		{"one_of", []any{"debug", "info"}, TypeString, "info", "trace", "must be one of [debug info]"},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			c, err := NewConstraint(tt.kind, tt.arg, tt.ft)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, c.Kind())

			assert.NoError(t, c.Check(tt.good))
			err = c.Check(tt.bad)
			require.Error(t, err)
			assert.Equal(t, tt.error, err.Error())
		})
	}
}

func TestConstraintKindsCoverTable(t *testing.T) {
	kinds := ConstraintKinds()
	assert.Len(t, kinds, len(constraintDefs))
	assert.IsIncreasing(t, kinds)
}

func TestElementConstraintsOnLists(t *testing.T) {
	c, err := NewConstraint("min_length", 2, TypeStringList)
	require.NoError(t, err)

	assert.NoError(t, c.Check([]any{"ab", "cd"}))
	err = c.Check([]any{"ab", "c"})
	require.Error(t, err)
	assert.Equal(t, "item 1: length must be at least 2", err.Error())
}

func TestOneOfComparesNumbersByValue(t *testing.T) {
	c := MustConstraint("one_of", []any{1, 2}, TypeFloat)
	assert.NoError(t, c.Check(2.0))
	assert.Error(t, c.Check(3))
}

func TestExprSeesListValues(t *testing.T) {
	c := MustConstraint("expr", "len(value) <= 2", TypeStringList)
	assert.NoError(t, c.Check([]any{"a"}))
	assert.Error(t, c.Check([]any{"a", "b", "c"}))
}

func TestNewConstraintErrors(t *testing.T) {
	tests := []struct {
		name string
		kind string
		arg  any
		ft   FieldType
	}{
		{"unknown kind", "shiny", nil, TypeString},
		{"wrong field type", "min", 1, TypeString},
		{"int only", "even", nil, TypeFloat},
		{"list only", "unique", nil, TypeString},
		{"negative length", "min_length", -1, TypeString},
		{"fractional length", "max_length", 1.5, TypeString},
		{"flag with value", "lowercase", "yes", TypeString},
		{"bad pattern", "pattern", "[", TypeString},
		{"non-string prefix", "starts_with", 3, TypeString},
		{"zero multiple", "multiple_of", 0, TypeInt},
		{"empty expression", "expr", "  ", TypeInt},
		{"bad expression", "expr", "value >", TypeInt},
		{"empty options", "one_of", []any{}, TypeString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConstraint(tt.kind, tt.arg, tt.ft)
			assert.Error(t, err)
		})
	}

	_, err := NewConstraint("shiny", nil, TypeString)
	assert.ErrorIs(t, err, ErrUnknownConstraint)
}
