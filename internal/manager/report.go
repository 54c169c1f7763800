package manager

import (
	"fmt"
	"strings"

	"github.com/roach88/confflow/internal/ir"
	"github.com/roach88/confflow/internal/rule"
	"github.com/roach88/confflow/internal/schema"
)

// Report is the outcome of validating one document.
type Report struct {
	ID              string               `json:"id"`
	Path            string               `json:"path,omitempty"`
	Selection       []ir.Identifier      `json:"selection"`
	UnknownSections []SectionRef         `json:"unknown_sections,omitempty"`
	FieldErrors     []*schema.FieldError `json:"field_errors,omitempty"`
	Violations      []rule.Violation     `json:"violations,omitempty"`
}

// SectionRef points at a document section.
type SectionRef struct {
	Name ir.Identifier `json:"name"`
	Line int           `json:"line,omitempty"`
}

// Valid reports whether the document passed every check.
func (r *Report) Valid() bool {
	return len(r.UnknownSections) == 0 && len(r.FieldErrors) == 0 && len(r.Violations) == 0
}

// IssueCount returns the number of problems found.
func (r *Report) IssueCount() int {
	return len(r.UnknownSections) + len(r.FieldErrors) + len(r.Violations)
}

// Issues renders every problem as one line, unknown sections first, then
// field errors, then rule violations.
func (r *Report) Issues() []string {
	var out []string
	for _, u := range r.UnknownSections {
		out = append(out, r.at(u.Line)+fmt.Sprintf("unknown section %q", u.Name))
	}
	for _, fe := range r.FieldErrors {
		out = append(out, r.at(fe.Line)+fe.Error())
	}
	for _, v := range r.Violations {
		out = append(out, v.Error())
	}
	return out
}

func (r *Report) at(line int) string {
	switch {
	case r.Path != "" && line > 0:
		return fmt.Sprintf("%s:%d: ", r.Path, line)
	case r.Path != "":
		return r.Path + ": "
	case line > 0:
		return fmt.Sprintf("line %d: ", line)
	default:
		return ""
	}
}

// InvalidDocumentError is returned by operations that need a valid
// document.
type InvalidDocumentError struct {
	Report *Report
}

func (e *InvalidDocumentError) Error() string {
	issues := e.Report.Issues()
	name := e.Report.Path
	if name == "" {
		name = "document"
	}
	if len(issues) == 1 {
		return fmt.Sprintf("%s is invalid: %s", name, issues[0])
	}
	return fmt.Sprintf("%s is invalid: %d issues: %s", name, len(issues), strings.Join(issues, "; "))
}
