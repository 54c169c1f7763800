package ir

// Selection is the set of identifiers present in a loaded document.
//
// A Selection is produced once per document load and never mutated
// afterwards; every method is read-only and safe for concurrent use.
type Selection struct {
	set map[Identifier]struct{}
}

// NewSelection builds a selection from raw names. Names are normalised and
// duplicates collapse.
func NewSelection(names ...string) Selection {
	return SelectionOf(Identifiers(names...)...)
}

// SelectionOf builds a selection from already-normalised identifiers.
func SelectionOf(ids ...Identifier) Selection {
	set := make(map[Identifier]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return Selection{set: set}
}

// Has reports whether id is selected.
func (s Selection) Has(id Identifier) bool {
	_, ok := s.set[id]
	return ok
}

// Len returns the number of selected identifiers.
func (s Selection) Len() int {
	return len(s.set)
}

// Identifiers returns the selected identifiers in sorted order.
func (s Selection) Identifiers() []Identifier {
	ids := make([]Identifier, 0, len(s.set))
	for id := range s.set {
		ids = append(ids, id)
	}
	return SortIdentifiers(ids)
}

// Intersect returns the members of ids that are selected, preserving the
// order of ids.
func (s Selection) Intersect(ids []Identifier) []Identifier {
	var out []Identifier
	for _, id := range ids {
		if s.Has(id) {
			out = append(out, id)
		}
	}
	return out
}

// String renders the selection as a sorted set literal.
func (s Selection) String() string {
	return FormatIdentifiers(s.Identifiers())
}
