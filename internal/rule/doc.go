// Package rule defines selection rules: declarative constraints over which
// schema identifiers may be present together in a document.
//
// A Rule is a closed tagged union. The Kind tag selects one of nine
// variants and every operation (Validate, Explain, Equal) switches
// exhaustively over it; there is no per-kind type to inspect at runtime.
//
//	MutuallyExclusive   |items ∩ sel| ≤ 1
//	AllOrNone           items ∩ sel is empty or equals items
//	OneOfGroup          |items ∩ sel| = 1
//	ExactlyN(n)         |items ∩ sel| = n
//	AtLeastN(n)         |items ∩ sel| ≥ n
//	NotAll              items ∩ sel ≠ items
//	RequiresOneOf(t)    t ∈ sel ⇒ items ∩ sel ≠ ∅
//	RequiresAll(t)      t ∈ sel ⇒ items ⊆ sel
//	Excludes(t)         t ∈ sel ⇒ items ∩ sel = ∅
//
// Rules are built once, optionally grown with AddItem/AddItems, and frozen
// when an engine commits them. Validate and Explain are pure and safe to
// call concurrently on a frozen rule.
package rule
