package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/confflow/internal/ir"
)

const sample = `Prod:
  host: db.internal
  port: 5432
Cache:
Redis:
  tags: [a, b]
  ratio: 0.5
`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, ir.Identifiers("Prod", "Cache", "Redis"), doc.Names())
	assert.Equal(t, "{Cache,Prod,Redis}", doc.Selection().String())

	prod, ok := doc.Section("Prod")
	require.True(t, ok)
	assert.Equal(t, 1, prod.Line)
	assert.Equal(t, map[string]any{"host": "db.internal", "port": 5432}, prod.Values)
	assert.Equal(t, map[string]int{"host": 2, "port": 3}, prod.FieldLines)

	cache, ok := doc.Section("Cache")
	require.True(t, ok)
	assert.Nil(t, cache.Values, "null section is present with no values")
	assert.Equal(t, 4, cache.Line)

	redis, ok := doc.Section("Redis")
	require.True(t, ok)
	assert.Equal(t, []any{"a", "b"}, redis.Values["tags"])
	assert.Equal(t, 0.5, redis.Values["ratio"])

	_, ok = doc.Section("Dev")
	assert.False(t, ok)
}

func TestParseEmpty(t *testing.T) {
	for _, input := range []string{"", "# nothing selected\n", "~\n"} {
		doc, err := Parse([]byte(input))
		require.NoError(t, err)
		assert.Empty(t, doc.Sections)
		assert.Equal(t, 0, doc.Selection().Len())
	}
}

func TestParseAliases(t *testing.T) {
	doc, err := Parse([]byte("Base: &base\n  port: 1\nCopy: *base\n"))
	require.NoError(t, err)

	c, ok := doc.Section("Copy")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"port": 1}, c.Values)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"top-level list", "- Dev\n- Prod\n", "<document>:1: document must be a mapping of sections"},
		{"scalar section", "Dev: true\n", `<document>:1: section "Dev" must be a mapping`},
		{"list section", "Dev:\n  - a\n", `<document>:2: section "Dev" must be a mapping`},
		{"duplicate section", "Dev: {}\nDev: {}\n", `<document>:2: duplicate section "Dev"`},
		{"empty name", "'': {}\n", "<document>:1: section name must not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.True(t, IsParseError(err))
			assert.Equal(t, tt.message, err.Error())
		})
	}

	_, err := Parse([]byte("Dev: [unclosed\n"))
	assert.True(t, IsParseError(err))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Path)
	assert.Len(t, doc.Sections, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.False(t, IsParseError(err))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("Dev: 1\n"), 0o644))
	_, err = Load(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad+":1:")
}

func TestSectionLookupNormalises(t *testing.T) {
	doc, err := Parse([]byte("\"Cafe\\u0301\": {}\n"))
	require.NoError(t, err)

	_, ok := doc.Section("Café")
	assert.True(t, ok)
}
