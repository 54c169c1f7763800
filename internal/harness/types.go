package harness

import "github.com/roach88/confflow/internal/manager"

// CaseResult is the outcome of one scenario case.
type CaseResult struct {
	Name   string          `json:"name"`
	Pass   bool            `json:"pass"`
	Report *manager.Report `json:"report,omitempty"`

	// Errors contains assertion failures for this case.
	Errors []string `json:"errors,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every case matched its expectation.
	Pass bool `json:"pass"`

	Cases []CaseResult `json:"cases"`

	// Errors contains every case failure, prefixed with the case name.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Cases:  []CaseResult{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddCase records a case outcome. A failing case fails the result.
func (r *Result) AddCase(c CaseResult) {
	r.Cases = append(r.Cases, c)
	for _, err := range c.Errors {
		r.AddError(c.Name + ": " + err)
	}
}
