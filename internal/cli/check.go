package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/confflow/internal/compiler"
	"github.com/roach88/confflow/internal/conflict"
	"github.com/roach88/confflow/internal/ir"
	"github.com/roach88/confflow/internal/loader"
	"github.com/roach88/confflow/internal/manager"
)

// CheckResult holds the outcome of checking a spec directory.
type CheckResult struct {
	Valid    bool                       `json:"valid"`
	Files    int                        `json:"files"`
	Schemas  int                        `json:"schemas"`
	Rules    int                        `json:"rules"`
	Digest   string                     `json:"digest,omitempty"`
	Warnings []conflict.Warning         `json:"warnings,omitempty"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <specs-dir>",
		Short: "Check schemas and selection rules",
		Long: `Load, compile and validate the CUE specs in a directory, then register
every rule to detect conflicts between them.

Static analysis findings (requirement cycles, triggers that can never be
selected) are reported as warnings and do not fail the check.

Exit codes:
  0 - Specs are consistent
  1 - Invalid declarations or conflicting rules
  2 - Command error (directory not found, unreadable CUE, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runCheck(opts *RootOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	m, loadResult, err := openSpecs(opts, specsDir, formatter)
	if err != nil {
		return err
	}

	formatter.Verbosef("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)

	digest, err := ir.SpecDigest(loadResult.Schemas, loadResult.Rules)
	if err != nil {
		return formatter.commandError(loader.ErrCodeGeneric, fmt.Sprintf("failed to digest specs: %v", err))
	}
	formatter.Verbosef("Spec digest: %s", digest)

	result := CheckResult{
		Valid:    true,
		Files:    loadResult.FileCount,
		Schemas:  m.Registry().Len(),
		Rules:    m.Engine().Len(),
		Digest:   digest,
		Warnings: m.Warnings(),
	}

	if formatter.JSON {
		return writeOK(formatter, result)
	}

	w := formatter.Out
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "%s: %s\n", warning.Level, warning.Message)
	}
	fmt.Fprintf(w, "✓ %d schema(s), %d rule(s) in %d file(s)\n", result.Schemas, result.Rules, result.Files)
	return nil
}

// newFormatter builds the formatter for a command: results on stdout,
// diagnostics on stderr.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		JSON:    opts.Format == "json",
		Out:     cmd.OutOrStdout(),
		Diag:    cmd.ErrOrStderr(),
		Verbose: opts.Verbose,
	}
}

// openSpecs loads specDir into a manager. Every failure has already been
// written to the formatter when an error is returned.
func openSpecs(opts *RootOptions, specsDir string, formatter *OutputFormatter) (*manager.Manager, *loader.LoadResult, error) {
	loadResult, loadErrors := loader.LoadSpecs(specsDir, loader.LoadModeCollectAll)

	// Directory not found, no files, unparsable CUE
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *loader.LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return nil, nil, formatter.commandError(loadErr.Code, loadErr.Message)
		}
		return nil, nil, formatter.commandError(loader.ErrCodeGeneric, loadErrors[0].Error())
	}

	if len(loadErrors) > 0 {
		return nil, nil, formatter.declarationErrors(loadErrorsToValidation(loadErrors))
	}

	schemas, rules, err := loadResult.Build()
	if err != nil {
		return nil, nil, formatter.commandError(loader.ErrCodeGeneric, err.Error())
	}

	logger := opts.Logger(formatter.DiagWriter())
	m, err := manager.New(schemas, rules, manager.WithLogger(logger))
	if err != nil {
		return nil, nil, formatter.declarationErrors([]compiler.ValidationError{{
			Field:   "rules",
			Message: err.Error(),
			Code:    loader.ErrCodeRejected,
		}})
	}
	return m, loadResult, nil
}

// loadErrorsToValidation flattens loader errors into validation errors
// carrying their line numbers.
func loadErrorsToValidation(errs []error) []compiler.ValidationError {
	out := make([]compiler.ValidationError, 0, len(errs))
	for _, err := range errs {
		var loadErr *loader.LoadError
		if !errors.As(err, &loadErr) {
			out = append(out, compiler.ValidationError{Field: "load", Message: err.Error(), Code: loader.ErrCodeGeneric})
			continue
		}
		ve := compiler.ValidationError{Field: "load", Message: loadErr.Message, Code: loadErr.Code}
		if loadErr.Pos.IsValid() {
			ve.Field = loadErr.Pos.Filename()
			ve.Line = loadErr.Pos.Line()
		}
		out = append(out, ve)
	}
	return out
}
