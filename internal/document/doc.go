// Package document loads YAML configuration documents.
//
// A document is a mapping from section name to a mapping of field values.
// The selection a document makes is the set of its top-level section
// names; a section whose value is null is selected with no values.
//
// Parsing keeps the yaml.v3 node tree long enough to record section order
// and source line numbers, so reports can point at the offending line.
package document
