package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/confflow/internal/ir"
	"github.com/roach88/confflow/internal/rule"
	"github.com/roach88/confflow/internal/schema"
)

func TestBuildSchema(t *testing.T) {
	s, err := BuildSchema(&ir.SchemaSpec{
		Name:        "Database",
		Description: "Primary database",
		Fields: []ir.FieldSpec{
			{Name: "host", Type: "string", Required: true, Description: "Hostname"},
			{Name: "port", Type: "int", Default: 5432, Constraints: []ir.ConstraintSpec{{Kind: "min", Value: 1}}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, ir.Identifier("Database"), s.Name)
	host, ok := s.Field("host")
	require.True(t, ok)
	assert.True(t, host.Required)
	assert.Equal(t, "Hostname", host.Description)

	port, ok := s.Field("port")
	require.True(t, ok)
	assert.Equal(t, schema.TypeInt, port.Type)
	assert.True(t, port.HasDefault)
	require.Len(t, port.Constraints, 1)

	errs := s.ValidateSection(map[string]any{"host": "db", "port": 0})
	require.Len(t, errs, 1)
	assert.Equal(t, "Database.port: must be at least 1", errs[0].Error())
}

func TestBuildSchemaRejectsInvalidSpec(t *testing.T) {
	_, err := BuildSchema(&ir.SchemaSpec{
		Name:   "Bad",
		Fields: []ir.FieldSpec{{Name: "f", Type: "number"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[E104]")
}

func TestBuildRule(t *testing.T) {
	tests := []struct {
		spec ir.RuleSpec
		want string
	}{
		{ir.RuleSpec{ID: "me", Kind: ir.KindMutuallyExclusive, Items: []string{"B", "A"}}, "Mutually-Exclusive{A,B}"},
		{ir.RuleSpec{ID: "aon", Kind: ir.KindAllOrNone, Items: []string{"A", "B"}}, "All-Or-None{A,B}"},
		{ir.RuleSpec{ID: "oog", Kind: ir.KindOneOfGroup, Items: []string{"Dev", "Prod"}}, "One-Of-Group{Dev,Prod}"},
		{ir.RuleSpec{ID: "en", Kind: ir.KindExactlyN, N: intPtr(2), Items: []string{"a", "b", "c"}}, "Exactly-N(2){a,b,c}"},
		{ir.RuleSpec{ID: "aln", Kind: ir.KindAtLeastN, N: intPtr(1), Items: []string{"a", "b"}}, "At-Least-N(1){a,b}"},
		{ir.RuleSpec{ID: "na", Kind: ir.KindNotAll, Items: []string{"a", "b"}}, "Not-All{a,b}"},
		{ir.RuleSpec{ID: "roo", Kind: ir.KindRequiresOneOf, Trigger: "Cache", Items: []string{"Redis", "Mem"}}, "Requires-One-Of(Cache){Mem,Redis}"},
		{ir.RuleSpec{ID: "ra", Kind: ir.KindRequiresAll, Trigger: "T", Items: []string{"a"}}, "Requires-All(T){a}"},
		{ir.RuleSpec{ID: "ex", Kind: ir.KindExcludes, Trigger: "T", Items: []string{"a"}}, "Excludes(T){a}"},
	}

	for _, tt := range tests {
		t.Run(tt.spec.ID, func(t *testing.T) {
			r, err := BuildRule(&tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.String())
			assert.Equal(t, tt.spec.ID, r.Name())
			assert.False(t, r.Frozen())
		})
	}
}

func TestBuildRuleKinds(t *testing.T) {
	r, err := BuildRule(&ir.RuleSpec{ID: "en", Kind: ir.KindExactlyN, N: intPtr(1), Items: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, rule.KindExactlyN, r.Kind())
	n, ok := r.N()
	assert.True(t, ok)
	assert.Equal(t, 1, n)
}

func TestBuildRuleRejectsInvalidSpec(t *testing.T) {
	_, err := BuildRule(&ir.RuleSpec{ID: "bad", Kind: ir.KindExcludes, Trigger: "T", Items: []string{"T"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `rule "bad"`)
	assert.Contains(t, err.Error(), "[E124]")
}
