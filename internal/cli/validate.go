package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/roach88/confflow/internal/document"
	"github.com/roach88/confflow/internal/loader"
	"github.com/roach88/confflow/internal/manager"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Watch    bool          // re-validate on change
	Debounce time.Duration // quiet period before re-validating
}

// DocumentResult is the outcome of validating one document.
type DocumentResult struct {
	Path   string          `json:"path"`
	Valid  bool            `json:"valid"`
	Report *manager.Report `json:"report,omitempty"`
	Error  string          `json:"error,omitempty"` // the document could not be read or parsed
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool             `json:"valid"`
	Documents []DocumentResult `json:"documents"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <specs-dir> <document|glob>...",
		Short: "Validate configuration documents",
		Long: `Validate YAML configuration documents against the specs in a directory.

Each document's sections are checked against their schemas and the set of
sections present is checked against every selection rule. Arguments may be
file paths or glob patterns such as "config/**/*.yaml".

Exit codes:
  0 - All documents valid
  1 - One or more documents invalid
  2 - Command error (invalid specs directory, no matching documents, etc.)

Examples:
  confflow validate ./specs config.yaml
  confflow validate ./specs "envs/**/*.yaml" --format json
  confflow validate ./specs config.yaml --watch`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "re-validate when specs or documents change")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", DefaultDebounce, "quiet period before re-validating in watch mode")

	return cmd
}

func runValidate(opts *ValidateOptions, specsDir string, patterns []string, cmd *cobra.Command) error {
	err := validateOnce(opts, specsDir, patterns, cmd)
	if !opts.Watch {
		return err
	}

	formatter := newFormatter(opts.RootOptions, cmd)
	logger := opts.Logger(formatter.DiagWriter())
	w, werr := newWatcher(watchRoots(specsDir, patterns), opts.Debounce, logger)
	if werr != nil {
		return WrapExitError(ExitCommandError, "failed to start watcher", werr)
	}
	defer w.Close()

	formatter.Verbosef("Watching %s for changes", specsDir)
	return w.Run(cmd.Context(), func() {
		// Failures are already reported; keep watching.
		_ = validateOnce(opts, specsDir, patterns, cmd)
	})
}

// validateOnce loads the specs, validates every matching document and
// writes the results.
func validateOnce(opts *ValidateOptions, specsDir string, patterns []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	m, _, err := openSpecs(opts.RootOptions, specsDir, formatter)
	if err != nil {
		return err
	}

	files, err := expandDocuments(patterns)
	if err != nil {
		return formatter.commandError(loader.ErrCodeNotFound, err.Error())
	}

	result := ValidationResult{Valid: true, Documents: make([]DocumentResult, 0, len(files))}
	for _, path := range files {
		formatter.Verbosef("Validating %s", path)
		dr := validateDocument(m, path)
		if !dr.Valid {
			result.Valid = false
		}
		result.Documents = append(result.Documents, dr)
	}

	if formatter.JSON {
		return outputValidationJSON(formatter, result)
	}
	return outputValidationText(formatter, result)
}

func validateDocument(m *manager.Manager, path string) DocumentResult {
	doc, err := document.Load(path)
	if err != nil {
		return DocumentResult{Path: path, Error: err.Error()}
	}
	report := m.Validate(doc)
	return DocumentResult{Path: path, Valid: report.Valid(), Report: report}
}

// expandDocuments resolves paths and glob patterns to document files.
// A pattern that matches nothing is an error, as is a missing path.
func expandDocuments(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, p := range patterns {
		if !isGlob(p) {
			info, err := os.Stat(p)
			if err != nil {
				return nil, fmt.Errorf("document not found: %s", p)
			}
			if info.IsDir() {
				return nil, fmt.Errorf("document is a directory: %s", p)
			}
			add(p)
			continue
		}

		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no documents match %q", p)
		}
		sort.Strings(matches)
		for _, m := range matches {
			add(m)
		}
	}
	return files, nil
}

func isGlob(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}

// watchRoots returns the specs directory plus the directories the document
// arguments live in. Glob bases are watched recursively.
func watchRoots(specsDir string, patterns []string) []watchRoot {
	roots := []watchRoot{{Path: specsDir, Recursive: true}}
	seen := map[string]bool{specsDir: true}
	for _, p := range patterns {
		root := watchRoot{Path: filepath.Dir(p)}
		if isGlob(p) {
			base, _ := doublestar.SplitPattern(filepath.ToSlash(p))
			root = watchRoot{Path: filepath.FromSlash(base), Recursive: true}
		}
		if !seen[root.Path] {
			seen[root.Path] = true
			roots = append(roots, root)
		}
	}
	return roots
}

func outputValidationJSON(formatter *OutputFormatter, result ValidationResult) error {
	response := Response[ValidationResult]{Status: "ok", Data: &result}
	if len(result.Documents) == 1 && result.Documents[0].Report != nil {
		response.ReportID = result.Documents[0].Report.ID
	}

	invalid := countInvalid(result)
	if invalid > 0 {
		response.Status = "error"
		response.Error = &ResponseError{
			Code:    "E_INVALID_DOCUMENT",
			Message: fmt.Sprintf("%d of %d document(s) invalid", invalid, len(result.Documents)),
		}
	}

	if err := writeResponse(formatter, response); err != nil {
		return err
	}
	if invalid > 0 {
		return NewExitError(ExitFailure, response.Error.Message)
	}
	return nil
}

func outputValidationText(formatter *OutputFormatter, result ValidationResult) error {
	w := formatter.Out
	for _, dr := range result.Documents {
		if dr.Valid {
			fmt.Fprintf(w, "✓ %s\n", dr.Path)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", dr.Path)
		if dr.Error != "" {
			fmt.Fprintf(w, "  %s\n", dr.Error)
			continue
		}
		for _, issue := range dr.Report.Issues() {
			fmt.Fprintf(w, "  %s\n", issue)
		}
	}

	if invalid := countInvalid(result); invalid > 0 {
		msg := fmt.Sprintf("%d of %d document(s) invalid", invalid, len(result.Documents))
		fmt.Fprintln(w)
		fmt.Fprintln(w, msg)
		return NewExitError(ExitFailure, msg)
	}
	return nil
}

func countInvalid(result ValidationResult) int {
	n := 0
	for _, dr := range result.Documents {
		if !dr.Valid {
			n++
		}
	}
	return n
}
