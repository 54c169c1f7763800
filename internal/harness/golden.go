package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders a scenario result as stable text: one line per case
// with its outcome, followed by the report issues indented beneath it.
func Snapshot(name string, result *Result) []byte {
	var buf strings.Builder

	fmt.Fprintf(&buf, "scenario: %s\n", name)
	for _, c := range result.Cases {
		status := "pass"
		if !c.Pass {
			status = "FAIL"
		}
		outcome := "unparsed"
		if c.Report != nil {
			outcome = validity(c.Report)
		}
		fmt.Fprintf(&buf, "case %s: %s (%s)\n", c.Name, outcome, status)
		if c.Report != nil {
			for _, issue := range c.Report.Issues() {
				fmt.Fprintf(&buf, "  %s\n", issue)
			}
		}
	}
	return []byte(buf.String())
}

// RunWithGolden executes a scenario and compares the outcome against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if the specs fail to load.
// Test failure (via goldie) occurs if the outcome doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, Snapshot(scenarioName, result))

	return nil
}
