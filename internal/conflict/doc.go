// Package conflict detects selection rules that cannot sensibly coexist.
//
// A Table lists incompatible pairs of rule kinds. Entries are keyed by the
// normalised (unordered) kind pair and may carry a Condition over the two
// rule instances, so parameterised kinds such as ExactlyN only conflict
// for some values of n. Two rules are only ever compared when their item
// sets overlap; disjoint rules never conflict.
//
// Check runs over every pair of a rule set, not just a candidate against
// the existing rules, so a registration that breaks consistency indirectly
// is still caught. Registration happens at startup over tens of rules, so
// the quadratic pass is fine.
//
// Analyze reports softer findings (requirement cycles, triggers that can
// never be selected) as warnings; it never rejects a rule set.
package conflict
