// Package harness runs conformance scenarios against a spec directory.
//
// # Scenario Format
//
// Scenarios are YAML files. Each one names a spec directory and a list of
// documents with the outcome expected for each:
//
//	name: env_selection
//	description: "Exactly one environment may be configured"
//	specs: specs
//	cases:
//	  - name: dev_only
//	    document: |
//	      Dev:
//	        port: 8080
//	    expect: valid
//	  - name: both_envs
//	    document: |
//	      Dev:
//	        port: 8080
//	      Prod:
//	        host: example.com
//	    expect: invalid
//	    violations: [one-env]
//
// The specs path is resolved relative to the scenario file. Violations
// name the rules expected to fail; field_errors use "Section.field" paths
// and unknown_sections lists section names. Lists are compared as sets
// with multiplicity, so order does not matter.
//
// # Deterministic Output
//
// Every case is validated with a fixed report ID so results can be
// compared against golden files:
//
//	go test ./internal/harness -update
//
// regenerates testdata/golden.
package harness
