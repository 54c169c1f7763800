// Package schema defines configuration schemas: named sections made of
// typed fields with value constraints, and the Registry that records
// which schema names exist.
//
// A Registry is the identifier source the rule engine consults before it
// accepts a rule, so rules can only name schemas that are declared.
package schema
