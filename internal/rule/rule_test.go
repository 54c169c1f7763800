package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/confflow/internal/ir"
)

func TestConstructorsSortAndDedupeItems(t *testing.T) {
	r := MutuallyExclusive("c", "a", "b", "a")
	assert.Equal(t, []ir.Identifier{"a", "b", "c"}, r.Items())
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, KindMutuallyExclusive, r.Kind())
}

func TestItemsReturnsCopy(t *testing.T) {
	r := OneOfGroup("a", "b")
	items := r.Items()
	items[0] = "zzz"
	assert.Equal(t, []ir.Identifier{"a", "b"}, r.Items())
}

func TestParameterAccessors(t *testing.T) {
	n, ok := ExactlyN(2, "a", "b").N()
	assert.True(t, ok)
	assert.Equal(t, 2, n)

	_, ok = OneOfGroup("a").N()
	assert.False(t, ok)

	r, err := Excludes("T", "a")
	require.NoError(t, err)
	trigger, ok := r.Trigger()
	assert.True(t, ok)
	assert.Equal(t, ir.Identifier("T"), trigger)

	_, ok = NotAll("a").Trigger()
	assert.False(t, ok)
}

func TestTriggeredConstructorRejectsTriggerInItems(t *testing.T) {
	constructors := map[string]func(ir.Identifier, ...ir.Identifier) (*Rule, error){
		"requires_one_of": RequiresOneOf,
		"requires_all":    RequiresAll,
		"excludes":        Excludes,
	}
	for name, build := range constructors {
		t.Run(name, func(t *testing.T) {
			r, err := build("Cache", "Redis", "Cache")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrTriggerInItems)
			assert.Nil(t, r)
		})
	}
}

func TestAddItemRejectsTrigger(t *testing.T) {
	r, err := RequiresAll("Cache", "Redis")
	require.NoError(t, err)

	err = r.AddItem("Cache")
	assert.ErrorIs(t, err, ErrTriggerInItems)
	assert.Equal(t, []ir.Identifier{"Redis"}, r.Items())
}

func TestAddItemsIsAtomic(t *testing.T) {
	r, err := RequiresOneOf("Cache", "Redis")
	require.NoError(t, err)

	err = r.AddItems("Mem", "Cache")
	assert.ErrorIs(t, err, ErrTriggerInItems)
	assert.Equal(t, []ir.Identifier{"Redis"}, r.Items(), "Mem must not be added when the batch fails")
}

func TestExactlyNCapacity(t *testing.T) {
	r := ExactlyN(2)
	require.NoError(t, r.AddItem("a"))
	require.NoError(t, r.AddItem("b"))

	err := r.AddItem("c")
	assert.ErrorIs(t, err, ErrCapacity)
	assert.Equal(t, 2, r.Len())

	// Re-adding an existing item does not count against capacity
	assert.NoError(t, r.AddItem("a"))
}

func TestExactlyNAddItemsCapacity(t *testing.T) {
	r := ExactlyN(2, "a")
	err := r.AddItems("b", "c")
	assert.ErrorIs(t, err, ErrCapacity)
	assert.Equal(t, []ir.Identifier{"a"}, r.Items())
}

func TestExactlyNConstructorDeclaresFullSet(t *testing.T) {
	r := ExactlyN(1, "a", "b", "c")
	assert.Equal(t, 3, r.Len())
	assert.ErrorIs(t, r.AddItem("d"), ErrCapacity)
}

func TestAtLeastNIsNotCapped(t *testing.T) {
	r := AtLeastN(1, "a")
	assert.NoError(t, r.AddItems("b", "c"))
	assert.Equal(t, 3, r.Len())
}

func TestFreeze(t *testing.T) {
	r := NotAll("a", "b")
	assert.False(t, r.Frozen())
	r.Freeze()
	assert.True(t, r.Frozen())

	err := r.AddItem("c")
	assert.ErrorIs(t, err, ErrFrozen)
	assert.Equal(t, 2, r.Len())
}

func TestItemsAreNormalized(t *testing.T) {
	r := OneOfGroup(" Dev ", "Café")
	assert.True(t, r.Contains("Dev"))
	assert.True(t, r.Contains("Café"))
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name  string
		a, b  *Rule
		equal bool
	}{
		{"same kind and items", OneOfGroup("a", "b"), OneOfGroup("b", "a"), true},
		{"different kind", OneOfGroup("a", "b"), MutuallyExclusive("a", "b"), false},
		{"different items", OneOfGroup("a", "b"), OneOfGroup("a", "c"), false},
		{"different n", ExactlyN(1, "a", "b"), ExactlyN(2, "a", "b"), false},
		{"same n", AtLeastN(1, "a", "b"), AtLeastN(1, "a", "b"), true},
		{"name ignored", OneOfGroup("a").Named("x"), OneOfGroup("a").Named("y"), true},
		{"separator inside identifier", NotAll("a,b"), NotAll("a", "b"), false},
		{"brace inside identifier", NotAll("a}"), NotAll("a"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, tt.a.Equal(tt.b))
			assert.Equal(t, tt.equal, tt.a.Key() == tt.b.Key())
		})
	}
}

func TestEqualTriggers(t *testing.T) {
	a, err := Excludes("T1", "a")
	require.NoError(t, err)
	b, err := Excludes("T2", "a")
	require.NoError(t, err)
	c, err := Excludes("T1", "a")
	require.NoError(t, err)

	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(c))
}

func TestOverlap(t *testing.T) {
	a := OneOfGroup("A", "B")
	b := MutuallyExclusive("B", "C")
	assert.Equal(t, []ir.Identifier{"B"}, a.Overlap(b))
	assert.Empty(t, a.Overlap(NotAll("X", "Y")))
}

func TestReferencesIncludesTrigger(t *testing.T) {
	r, err := RequiresOneOf("Cache", "Redis", "Mem")
	require.NoError(t, err)
	assert.Equal(t, []ir.Identifier{"Cache", "Mem", "Redis"}, r.References())
	assert.Equal(t, []ir.Identifier{"a"}, NotAll("a").References())
}

func TestString(t *testing.T) {
	assert.Equal(t, "One-Of-Group{Dev,Prod}", OneOfGroup("Prod", "Dev").String())
	assert.Equal(t, "Exactly-N(2){a,b,c}", ExactlyN(2, "a", "b", "c").String())

	r, err := RequiresOneOf("Cache", "Redis", "Mem")
	require.NoError(t, err)
	assert.Equal(t, "Requires-One-Of(Cache){Mem,Redis}", r.String())
}
