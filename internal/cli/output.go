package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/confflow/internal/compiler"
)

// Process exit codes, carried to main by ExitError.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // a document, scenario or rule set was rejected
	ExitCommandError = 2 // confflow could not run: bad path, unreadable specs
)

// ExitError is returned by a command that has already written its output.
// main only needs the code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError returns an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError returns an ExitError caused by err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the code of the ExitError in err's chain, or
// ExitFailure for any other error.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Response is the envelope written under --format json. T is the result
// of the command: CheckResult, ValidationResult, TemplateResult or
// TestResult.
type Response[T any] struct {
	Status   string         `json:"status"` // "ok" or "error"
	Data     *T             `json:"data,omitempty"`
	Error    *ResponseError `json:"error,omitempty"`
	ReportID string         `json:"report_id,omitempty"` // set when exactly one document was validated
}

// ResponseError names why a command did not succeed. Code is a loader code
// (E00x), a declaration code (E1xx), E_INVALID_DOCUMENT or E_TEST_FAILED.
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OutputFormatter writes command results to Out, as JSON or text, and
// verbose diagnostics to Diag.
type OutputFormatter struct {
	JSON    bool
	Out     io.Writer
	Diag    io.Writer // nil falls back to Out
	Verbose bool
}

// writeResponse writes resp as indented JSON.
func writeResponse[T any](f *OutputFormatter, resp Response[T]) error {
	enc := json.NewEncoder(f.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// writeOK writes data as a successful response.
func writeOK[T any](f *OutputFormatter, data T) error {
	return writeResponse(f, Response[T]{Status: "ok", Data: &data})
}

// commandError reports a failure that kept the command from running and
// returns the ExitError for it.
func (f *OutputFormatter) commandError(code, message string) error {
	if f.JSON {
		_ = writeResponse(f, Response[struct{}]{
			Status: "error",
			Error:  &ResponseError{Code: code, Message: message},
		})
	} else {
		fmt.Fprintf(f.Out, "Error [%s]: %s\n", code, message)
	}
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// declarationErrors reports specs that load but are wrong: bad
// declarations or rules the engine refused.
func (f *OutputFormatter) declarationErrors(errs []compiler.ValidationError) error {
	summary := fmt.Sprintf("validation failed with %d error(s)", len(errs))
	if f.JSON {
		if err := writeResponse(f, Response[CheckResult]{
			Status: "error",
			Data:   &CheckResult{Valid: false, Errors: errs},
			Error:  &ResponseError{Code: errs[0].Code, Message: errs[0].Message},
		}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, summary)
	}

	fmt.Fprintln(f.Out, "✗ Validation failed")
	fmt.Fprintln(f.Out)
	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(f.Out, "%s:%d\n", err.Field, err.Line)
		}
		fmt.Fprintf(f.Out, "  %s: %s\n\n", err.Code, err.Message)
	}
	return NewExitError(ExitFailure, summary)
}

// Verbosef writes a diagnostic line when verbose output is on.
func (f *OutputFormatter) Verbosef(format string, args ...any) {
	if f.Verbose {
		fmt.Fprintf(f.DiagWriter(), format+"\n", args...)
	}
}

// DiagWriter returns the writer for logs and verbose output.
func (f *OutputFormatter) DiagWriter() io.Writer {
	if f.Diag != nil {
		return f.Diag
	}
	return f.Out
}
