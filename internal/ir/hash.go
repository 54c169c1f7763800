package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// DomainSpecs prefixes spec digests. The version suffix allows the
// encoding to change without colliding with older digests.
const DomainSpecs = "confflow/specs/v1"

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SpecDigest returns a content digest of a compiled spec set.
// Declaration order does not affect the digest: schemas are sorted by
// name, rules by ID, and rule items by value.
func SpecDigest(schemas []SchemaSpec, rules []RuleSpec) (string, error) {
	sortedSchemas := append([]SchemaSpec(nil), schemas...)
	sort.Slice(sortedSchemas, func(i, j int) bool {
		return sortedSchemas[i].Name < sortedSchemas[j].Name
	})

	sortedRules := make([]RuleSpec, len(rules))
	for i, r := range rules {
		r.Items = append([]string(nil), r.Items...)
		sort.Strings(r.Items)
		sortedRules[i] = r
	}
	sort.Slice(sortedRules, func(i, j int) bool {
		return sortedRules[i].ID < sortedRules[j].ID
	})

	data, err := json.Marshal(struct {
		Version string       `json:"version"`
		Schemas []SchemaSpec `json:"schemas"`
		Rules   []RuleSpec   `json:"rules"`
	}{SpecVersion, sortedSchemas, sortedRules})
	if err != nil {
		return "", fmt.Errorf("SpecDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSpecs, data), nil
}
