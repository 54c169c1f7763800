package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/confflow/internal/document"
	"github.com/roach88/confflow/internal/loader"
	"github.com/roach88/confflow/internal/manager"
)

// Harness is the test execution engine.
// It validates scenario documents with a deterministic report ID.
type Harness struct {
	manager *manager.Manager
	logger  *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario loads its specs into a fresh manager for isolation.
//
// Execution flow:
// 1. Load and build the specs directory
// 2. Parse and validate each case document
// 3. Compare every report with its expectation
// 4. Return result with pass/fail, reports, and errors
//
// Spec load failures are returned as errors; case failures are recorded
// in the result.
func Run(scenario *Scenario) (*Result, error) {
	reportID := scenario.ReportID
	if reportID == "" {
		reportID = DefaultReportID
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	m, err := loader.Open(scenario.Specs,
		manager.WithLogger(logger),
		manager.WithIDGenerator(manager.NewFixedGenerator(reportID)))
	if err != nil {
		return nil, fmt.Errorf("failed to load specs: %w", err)
	}

	h := &Harness{manager: m, logger: logger}

	result := NewResult()
	for _, c := range scenario.Cases {
		result.AddCase(h.runCase(c))
	}
	return result, nil
}

// RunFile loads the scenario at path and runs it.
func RunFile(path string) (*Scenario, *Result, error) {
	scenario, err := LoadScenario(path)
	if err != nil {
		return nil, nil, err
	}
	result, err := Run(scenario)
	if err != nil {
		return scenario, nil, err
	}
	return scenario, result, nil
}

// runCase validates one case document. A document that does not parse
// fails the case.
func (h *Harness) runCase(c Case) CaseResult {
	cr := CaseResult{Name: c.Name}

	doc, err := document.Parse([]byte(c.Document))
	if err != nil {
		cr.Errors = append(cr.Errors, fmt.Sprintf("document does not parse: %v", err))
		return cr
	}

	cr.Report = h.manager.Validate(doc)
	for _, err := range EvaluateCase(c, cr.Report) {
		cr.Errors = append(cr.Errors, err.Error())
	}
	cr.Pass = len(cr.Errors) == 0

	h.logger.Debug("case evaluated", "case", c.Name, "pass", cr.Pass)
	return cr
}
