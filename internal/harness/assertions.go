package harness

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/confflow/internal/manager"
)

// AssertionError is returned when a case does not produce its expected
// outcome. It includes the full report to help debug the failure.
type AssertionError struct {
	Type     string   // Which part of the outcome differed
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Issues   []string // Every issue in the report
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  actual: %s\n", e.Actual)

	if len(e.Issues) > 0 {
		fmt.Fprintf(&buf, "\nreport:\n")
		for i, issue := range e.Issues {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, issue)
		}
	}

	return buf.String()
}

// Assertion types.
const (
	AssertValidity        = "validity"
	AssertViolations      = "violations"
	AssertFieldErrors     = "field_errors"
	AssertUnknownSections = "unknown_sections"
)

// EvaluateCase compares a report against the case expectation and returns
// every mismatch.
func EvaluateCase(c Case, report *manager.Report) []error {
	var errs []error

	wantValid := c.Expect == ExpectValid
	if report.Valid() != wantValid {
		errs = append(errs, &AssertionError{
			Type:     AssertValidity,
			Expected: c.Expect,
			Actual:   validity(report),
			Issues:   report.Issues(),
		})
	}

	if wantValid {
		return errs
	}

	violations := make([]string, len(report.Violations))
	for i, v := range report.Violations {
		violations[i] = v.Rule
		if violations[i] == "" {
			violations[i] = v.Kind
		}
	}
	if err := assertSet(AssertViolations, c.Violations, violations, report); err != nil {
		errs = append(errs, err)
	}

	fields := make([]string, len(report.FieldErrors))
	for i, fe := range report.FieldErrors {
		fields[i] = fmt.Sprintf("%s.%s", fe.Section, fe.Field)
	}
	if err := assertSet(AssertFieldErrors, c.FieldErrors, fields, report); err != nil {
		errs = append(errs, err)
	}

	unknown := make([]string, len(report.UnknownSections))
	for i, u := range report.UnknownSections {
		unknown[i] = string(u.Name)
	}
	if err := assertSet(AssertUnknownSections, c.UnknownSections, unknown, report); err != nil {
		errs = append(errs, err)
	}

	return errs
}

// assertSet compares expected and actual as multisets.
func assertSet(kind string, expected, actual []string, report *manager.Report) error {
	want := sorted(expected)
	got := sorted(actual)
	if strings.Join(want, "\x00") == strings.Join(got, "\x00") {
		return nil
	}
	return &AssertionError{
		Type:     kind,
		Expected: formatList(want),
		Actual:   formatList(got),
		Issues:   report.Issues(),
	}
}

func validity(report *manager.Report) string {
	if report.Valid() {
		return ExpectValid
	}
	return ExpectInvalid
}

func sorted(values []string) []string {
	out := append([]string(nil), values...)
	sort.Strings(out)
	return out
}

func formatList(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	return "[" + strings.Join(values, ", ") + "]"
}
