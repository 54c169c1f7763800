// Package engine owns the set of registered selection rules and validates
// document selections against it.
//
// ARCHITECTURE:
//
// Registration is transactional. AddRule and AddRules admit every
// candidate (known identifiers, no duplicates, non-negative parameters),
// then run the conflict table over the whole prospective rule set. Only if
// every check passes are the candidates frozen and committed; otherwise
// the engine is left exactly as it was.
//
// The engine is an explicitly constructed value. There is no process-wide
// instance: the hosting application builds one during setup and passes it
// to whatever validates documents.
//
// Thread-safety model:
//   - AddRule/AddRules take an exclusive lock
//   - ValidateSelection/Violations/Rules take a shared lock
//   - Registered rules are frozen and never mutated afterwards
//
// The intended usage is to finish all registration before the first
// validation, after which the engine is effectively read-only.
package engine
