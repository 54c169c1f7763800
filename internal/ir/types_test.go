package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFieldNaming(t *testing.T) {
	n := 2
	spec := RuleSpec{
		ID:      "pick-two",
		Kind:    KindExactlyN,
		N:       &n,
		Trigger: "",
		Items:   []string{"A", "B", "C"},
	}
	data, err := json.Marshal(spec)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"kind":"exactly_n"`)
	assert.Contains(t, string(data), `"n":2`)
	assert.NotContains(t, string(data), `"trigger"`, "empty trigger is omitted")

	field := FieldSpec{Name: "port", Type: "int", Required: true}
	data, err = json.Marshal(field)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"required":true`)
	assert.NotContains(t, string(data), `"constraints"`)
}

func TestEmptyStructMarshaling(t *testing.T) {
	tests := []struct {
		name string
		val  any
	}{
		{"SchemaSpec", SchemaSpec{}},
		{"FieldSpec", FieldSpec{}},
		{"ConstraintSpec", ConstraintSpec{}},
		{"RuleSpec", RuleSpec{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := json.Marshal(tt.val)
			require.NoError(t, err, "empty %s should marshal without panic", tt.name)
		})
	}
}

func TestKindTables(t *testing.T) {
	assert.Len(t, ValidRuleKinds, 9)
	for kind := range ParameterizedKinds {
		assert.True(t, ValidRuleKinds[kind], kind)
		assert.False(t, TriggeredKinds[kind], "%s cannot be both parameterized and triggered", kind)
	}
	for kind := range TriggeredKinds {
		assert.True(t, ValidRuleKinds[kind], kind)
	}
}
