// Package template renders a starter YAML document for a set of schemas.
//
// Every schema becomes a section holding its fields with their defaults.
// Schemas tied together by a selection rule are emitted as one commented
// block so the reader can see which sections to keep together or choose
// between.
package template
