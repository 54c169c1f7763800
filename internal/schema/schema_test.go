package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func databaseSchema(t *testing.T) *Schema {
	t.Helper()

	host, err := NewField("host", TypeString, Required(), Describe("Database host"))
	require.NoError(t, err)
	port, err := NewField("port", TypeInt,
		Default(5432),
		Constrain(MustConstraint("min", 1, TypeInt), MustConstraint("max", 65535, TypeInt)),
	)
	require.NoError(t, err)
	tags, err := NewField("tags", TypeStringList, Constrain(MustConstraint("unique", nil, TypeStringList)))
	require.NoError(t, err)

	s, err := New("Database", "Primary database", host, port, tags)
	require.NoError(t, err)
	return s
}

func TestNewFieldChecksDefault(t *testing.T) {
	_, err := NewField("port", TypeInt, Default(0), Constrain(MustConstraint("min", 1, TypeInt)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be at least 1")

	_, err = NewField("port", TypeInt, Default("http"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected int, got string")

	_, err = NewField(" ", TypeInt)
	assert.Error(t, err)

	_, err = NewField("port", FieldType("number"))
	assert.Error(t, err)
}

func TestFieldExample(t *testing.T) {
	withDefault, err := NewField("port", TypeInt, Default(5432))
	require.NoError(t, err)
	assert.Equal(t, 5432, withDefault.Example())

	bare, err := NewField("tags", TypeStringList)
	require.NoError(t, err)
	assert.Equal(t, []any{}, bare.Example())
}

func TestNewRejectsDuplicateFields(t *testing.T) {
	a, err := NewField("host", TypeString)
	require.NoError(t, err)
	b, err := NewField("host", TypeInt)
	require.NoError(t, err)

	_, err = New("Database", "", a, b)
	assert.ErrorIs(t, err, ErrDuplicateField)

	_, err = New("", "", a)
	assert.Error(t, err)
}

func TestSchemaFieldsKeepOrder(t *testing.T) {
	s := databaseSchema(t)

	var names []string
	for _, f := range s.Fields() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"host", "port", "tags"}, names)

	f, ok := s.Field("port")
	require.True(t, ok)
	assert.Equal(t, TypeInt, f.Type)
	_, ok = s.Field("user")
	assert.False(t, ok)
}

func TestValidateSection(t *testing.T) {
	s := databaseSchema(t)

	assert.Empty(t, s.ValidateSection(map[string]any{"host": "db", "port": 5433}))

	errs := s.ValidateSection(map[string]any{
		"port":  "x",
		"tags":  []any{"a", "a"},
		"zeta":  1,
		"alpha": true,
	})
	require.Len(t, errs, 5)
	assert.Equal(t, "Database.host: is required", errs[0].Error())
	assert.Equal(t, "Database.port: expected int, got string", errs[1].Error())
	assert.Equal(t, "Database.tags: items must be unique, a repeats", errs[2].Error())
	assert.Equal(t, "Database.alpha: unknown field", errs[3].Error())
	assert.Equal(t, "Database.zeta: unknown field", errs[4].Error())
}

func TestValidateSectionNullValues(t *testing.T) {
	s := databaseSchema(t)

	errs := s.ValidateSection(nil)
	require.Len(t, errs, 1)
	assert.Equal(t, "host", errs[0].Field)

	assert.Empty(t, s.ValidateSection(map[string]any{"host": "db", "port": nil}))
}

func TestResolveFillsDefaults(t *testing.T) {
	s := databaseSchema(t)

	in := map[string]any{"host": "db"}
	out := s.Resolve(in)

	assert.Equal(t, map[string]any{"host": "db", "port": 5432}, out)
	assert.NotContains(t, in, "port")
}
