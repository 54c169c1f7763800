package ir

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Identifier is the name of a configuration schema (a document section).
// It is the atomic unit selection rules reason about.
type Identifier string

// NormalizeIdentifier returns the NFC form of name with surrounding
// whitespace removed. Two identifiers that render the same always compare
// equal after normalisation.
func NormalizeIdentifier(name string) Identifier {
	return Identifier(norm.NFC.String(strings.TrimSpace(name)))
}

// Identifiers normalises every name.
func Identifiers(names ...string) []Identifier {
	ids := make([]Identifier, len(names))
	for i, name := range names {
		ids[i] = NormalizeIdentifier(name)
	}
	return ids
}

// SortIdentifiers sorts ids in place and returns them.
func SortIdentifiers(ids []Identifier) []Identifier {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// FormatIdentifiers renders ids as a sorted set literal, e.g. "{a,b,c}".
func FormatIdentifiers(ids []Identifier) string {
	sorted := SortIdentifiers(append([]Identifier(nil), ids...))
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = string(id)
	}
	return "{" + strings.Join(parts, ",") + "}"
}
