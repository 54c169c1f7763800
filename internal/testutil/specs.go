// Package testutil provides helpers for writing spec and document fixtures
// in tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// EnvSpecs declares two environments, a cache with two backends and a
// pair of observability toggles.
const EnvSpecs = `package specs

schema: Dev: {
	description: "Local development"
	fields: {
		host: {type: "string", default: "localhost"}
		port: {type: "int", required: true, constraints: [{kind: "min", value: 1}, {kind: "max", value: 65535}]}
	}
}

schema: Prod: {
	description: "Production"
	fields: {
		host: {type: "string", required: true}
		port: {type: "int", default: 443}
	}
}

schema: Cache: {}
schema: Redis: fields: url: {type: "string", required: true, constraints: [{kind: "starts_with", value: "redis://"}]}
schema: Mem: fields: size: {type: "int", default: 64, constraints: [{kind: "power_of_two"}]}
schema: Metrics: {}
schema: Tracing: {}

rule: "one-env": {kind: "one_of_group", items: ["Dev", "Prod"]}
rule: "cache-backend": {kind: "requires_one_of", trigger: "Cache", items: ["Redis", "Mem"]}
rule: "observability": {kind: "all_or_none", items: ["Metrics", "Tracing"]}
`

// WriteFile writes content to name under dir, creating parent
// directories, and returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create fixture dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}

// WriteSpecs writes files (name to content) into a fresh temporary
// directory and returns it.
func WriteSpecs(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		WriteFile(t, dir, name, content)
	}
	return dir
}

// EnvSpecsDir writes EnvSpecs into a fresh temporary directory.
func EnvSpecsDir(t *testing.T) string {
	t.Helper()
	return WriteSpecs(t, map[string]string{"env.cue": EnvSpecs})
}
