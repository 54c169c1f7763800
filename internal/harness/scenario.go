package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
// Scenarios load a spec directory and check a series of documents against
// it, asserting on the outcome of each.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs is the directory of CUE specs to load.
	// Relative paths are resolved against the scenario file location.
	Specs string `yaml:"specs"`

	// Cases are validated in order against the loaded specs.
	Cases []Case `yaml:"cases"`

	// ReportID is the fixed report ID used for every case.
	// If empty, defaults to "scenario-report" for deterministic golden file comparison.
	ReportID string `yaml:"report_id,omitempty"`
}

// Case is one document and the outcome expected for it.
type Case struct {
	// Name identifies the case within its scenario.
	Name string `yaml:"name"`

	// Document is the YAML document to validate.
	Document string `yaml:"document"`

	// Expect is either "valid" or "invalid".
	Expect string `yaml:"expect"`

	// Violations names the rules expected to fail.
	Violations []string `yaml:"violations,omitempty"`

	// FieldErrors lists the expected field errors as "Section.field".
	FieldErrors []string `yaml:"field_errors,omitempty"`

	// UnknownSections lists the sections expected to have no schema.
	UnknownSections []string `yaml:"unknown_sections,omitempty"`
}

// Expectation constants.
const (
	ExpectValid   = "valid"
	ExpectInvalid = "invalid"
)

// DefaultReportID is the report ID used when a scenario does not set one.
const DefaultReportID = "scenario-report"

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// The specs path is resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the specs path relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := parseScenario(data)
	if err != nil {
		return nil, err
	}

	// Resolve spec path relative to base path BEFORE validation
	if scenario.Specs != "" && !filepath.IsAbs(scenario.Specs) && basePath != "" {
		scenario.Specs = filepath.Join(basePath, scenario.Specs)
	}

	// Validate required fields (now with resolved paths)
	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return scenario, nil
}

func parseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "violation:" vs "violations:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Specs == "" {
		return fmt.Errorf("specs directory is required")
	}

	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	// Validate spec path exists
	info, err := os.Stat(s.Specs)
	if os.IsNotExist(err) {
		return fmt.Errorf("specs directory not found: %s", s.Specs)
	}
	if err == nil && !info.IsDir() {
		return fmt.Errorf("specs must be a directory: %s", s.Specs)
	}

	// Validate cases
	names := make(map[string]bool, len(s.Cases))
	for i, c := range s.Cases {
		if err := validateCase(i, &c); err != nil {
			return err
		}
		if names[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate case name %q", i, c.Name)
		}
		names[c.Name] = true
	}

	return nil
}

// validateCase validates a single case.
func validateCase(index int, c *Case) error {
	if c.Name == "" {
		return fmt.Errorf("cases[%d]: name is required", index)
	}

	switch c.Expect {
	case ExpectValid:
		if len(c.Violations) > 0 || len(c.FieldErrors) > 0 || len(c.UnknownSections) > 0 {
			return fmt.Errorf("cases[%d]: a valid case cannot list expected issues", index)
		}
	case ExpectInvalid:
	case "":
		return fmt.Errorf("cases[%d]: expect is required", index)
	default:
		return fmt.Errorf("cases[%d]: unknown expectation %q", index, c.Expect)
	}

	return nil
}
