package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/confflow/internal/manager"
)

func TestRunWithGolden(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/env_selection.yaml")
	require.NoError(t, err)

	// Regenerate with:
	//   go test ./internal/harness -run TestRunWithGolden -update
	require.NoError(t, RunWithGolden(t, scenario))
}

func TestSnapshot(t *testing.T) {
	result := NewResult()
	result.AddCase(CaseResult{Name: "ok", Pass: true, Report: &manager.Report{ID: "r"}})
	result.AddCase(CaseResult{Name: "broken", Errors: []string{"document does not parse"}})

	got := string(Snapshot("demo", result))
	assert.Equal(t, "scenario: demo\ncase ok: valid (pass)\ncase broken: unparsed (FAIL)\n", got)
	assert.False(t, result.Pass)
	assert.Equal(t, []string{"broken: document does not parse"}, result.Errors)
}
