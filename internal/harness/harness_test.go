package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/confflow/internal/testutil"
)

func TestRun(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/env_selection.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Cases, 5)
	for _, c := range result.Cases {
		assert.True(t, c.Pass, c.Name)
		require.NotNil(t, c.Report, c.Name)
		assert.Equal(t, DefaultReportID, c.Report.ID)
	}
}

func TestRun_ReportsMismatches(t *testing.T) {
	scenario := &Scenario{
		Name:        "mismatch",
		Description: "Expectations that do not hold",
		Specs:       testutil.EnvSpecsDir(t),
		ReportID:    "fixed-1",
		Cases: []Case{
			{Name: "wrong_validity", Document: "Dev:\n  port: 80\n", Expect: ExpectInvalid},
			{Name: "wrong_rule", Document: "Dev:\n  port: 80\nProd:\n  host: h\n", Expect: ExpectInvalid, Violations: []string{"observability"}},
			{Name: "unparsable", Document: "- a\n- b\n", Expect: ExpectValid},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Cases, 3)
	assert.Equal(t, "fixed-1", result.Cases[0].Report.ID)

	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "wrong_validity: assertion failed: validity")
	assert.Contains(t, result.Errors[1], "wrong_rule: assertion failed: violations")
	assert.Contains(t, result.Errors[1], "expected: [observability]")
	assert.Contains(t, result.Errors[1], "actual: [one-env]")
	assert.Contains(t, result.Errors[2], "unparsable: document does not parse")
	assert.Nil(t, result.Cases[2].Report)
}

func TestRun_SpecLoadFailure(t *testing.T) {
	dir := testutil.WriteSpecs(t, map[string]string{"bad.cue": "schema: {"})
	scenario := &Scenario{
		Name:        "broken",
		Description: "Specs that do not parse",
		Specs:       dir,
		Cases:       []Case{{Name: "a", Expect: ExpectValid}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load specs")
}

func TestRunFile(t *testing.T) {
	scenario, result, err := RunFile("testdata/scenarios/env_selection.yaml")
	require.NoError(t, err)
	assert.Equal(t, "env_selection", scenario.Name)
	assert.True(t, result.Pass)

	_, _, err = RunFile("testdata/scenarios/missing.yaml")
	require.Error(t, err)
}
