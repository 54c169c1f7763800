// Package loader discovers, compiles and validates CUE spec directories and
// builds them into schemas and rules.
package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/token"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/roach88/confflow/internal/compiler"
	"github.com/roach88/confflow/internal/ir"
	"github.com/roach88/confflow/internal/manager"
	"github.com/roach88/confflow/internal/rule"
	"github.com/roach88/confflow/internal/schema"
)

// LoadMode controls how errors are handled during spec loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// SpecPattern matches the spec files under a directory.
const SpecPattern = "**/*.cue"

// LoadResult contains the results of loading specs from a directory.
type LoadResult struct {
	Schemas   []ir.SchemaSpec
	Rules     []ir.RuleSpec
	CUEValue  cue.Value // The unified CUE value for additional processing
	Files     []string  // CUE files found, sorted
	FileCount int       // Number of CUE files found
}

// LoadError represents an error that occurred during spec loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE file unreadable or unparsable
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE files do not unify
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeRejected    = "E008" // Rules rejected at registration (conflict, duplicate, unknown schema)
)

// LoadSpecs loads, compiles and validates the CUE specs under dir.
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all errors.
func LoadSpecs(dir string, mode LoadMode) (*LoadResult, []error) {
	var errs []error

	// Verify directory exists
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("specs directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing specs directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	// Find CUE files
	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	// Compile every file and unify them into one value
	ctx := cuecontext.New()
	var value cue.Value
	for i, path := range cueFiles {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}}
		}
		v := ctx.CompileBytes(data, cue.Filename(path))
		if err := v.Err(); err != nil {
			return nil, []error{convertCUEError(ErrCodeLoadFailed, err)}
		}
		if i == 0 {
			value = v
		} else {
			value = value.Unify(v)
		}
	}
	// Err only reports top-level failures; conflicts between files sit deeper.
	if err := value.Validate(); err != nil {
		return nil, []error{convertCUEError(ErrCodeBuildFailed, err)}
	}

	result := &LoadResult{
		CUEValue:  value,
		Files:     cueFiles,
		FileCount: len(cueFiles),
	}

	// Extract schemas
	schemasVal := value.LookupPath(cue.ParsePath("schema"))
	if schemasVal.Exists() {
		iter, iterErr := schemasVal.Fields()
		if iterErr != nil {
			errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating schemas: %v", iterErr)})
			if mode == LoadModeFailFast {
				return result, errs
			}
		} else {
			for iter.Next() {
				spec, compileErr := compiler.CompileSchema(iter.Value())
				if compileErr == nil {
					compileErr = validationError(compiler.Validate(spec), iter.Value().Pos())
				}
				if compileErr != nil {
					errs = append(errs, convertCompileError(compileErr, "schema."+iter.Label()))
					if mode == LoadModeFailFast {
						return result, errs
					}
					continue
				}
				result.Schemas = append(result.Schemas, *spec)
			}
		}
	}

	// Extract rules
	rulesVal := value.LookupPath(cue.ParsePath("rule"))
	if rulesVal.Exists() {
		iter, iterErr := rulesVal.Fields()
		if iterErr != nil {
			errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating rules: %v", iterErr)})
			if mode == LoadModeFailFast {
				return result, errs
			}
		} else {
			for iter.Next() {
				spec, compileErr := compiler.CompileRule(iter.Value())
				if compileErr == nil {
					compileErr = validationError(compiler.Validate(spec), iter.Value().Pos())
				}
				if compileErr != nil {
					errs = append(errs, convertCompileError(compileErr, "rule."+iter.Label()))
					if mode == LoadModeFailFast {
						return result, errs
					}
					continue
				}
				result.Rules = append(result.Rules, *spec)
			}
		}
	}

	// Check if we found anything
	if len(result.Schemas) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no schemas found in specs"})
	}

	return result, errs
}

// FindCUEFiles returns every .cue file under dir, sorted.
func FindCUEFiles(dir string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), SpecPattern)
	if err != nil {
		return nil, err
	}
	files := make([]string, len(matches))
	for i, m := range matches {
		files[i] = filepath.Join(dir, filepath.FromSlash(m))
	}
	sort.Strings(files)
	return files, nil
}

// Build turns the loaded specs into schemas and rules. Rules are named
// after their declaration IDs.
func (r *LoadResult) Build() ([]*schema.Schema, []*rule.Rule, error) {
	schemas := make([]*schema.Schema, 0, len(r.Schemas))
	for i := range r.Schemas {
		s, err := compiler.BuildSchema(&r.Schemas[i])
		if err != nil {
			return nil, nil, err
		}
		schemas = append(schemas, s)
	}

	rules := make([]*rule.Rule, 0, len(r.Rules))
	for i := range r.Rules {
		rl, err := compiler.BuildRule(&r.Rules[i])
		if err != nil {
			return nil, nil, err
		}
		rules = append(rules, rl)
	}
	return schemas, rules, nil
}

// Open loads the specs under dir and returns a manager for them. Load
// errors are joined; the first registration error is returned as is.
func Open(dir string, opts ...manager.Option) (*manager.Manager, error) {
	result, errs := LoadSpecs(dir, LoadModeCollectAll)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	schemas, rules, err := result.Build()
	if err != nil {
		return nil, err
	}
	return manager.New(schemas, rules, opts...)
}

// specValidationError carries compiler validation errors with the position
// of the declaration they belong to.
type specValidationError struct {
	errs []compiler.ValidationError
	pos  token.Pos
}

func (e *specValidationError) Error() string {
	msgs := make([]string, len(e.errs))
	for i, ve := range e.errs {
		msgs[i] = ve.Error()
	}
	return strings.Join(msgs, "; ")
}

func validationError(errs []compiler.ValidationError, pos token.Pos) error {
	if len(errs) == 0 {
		return nil
	}
	return &specValidationError{errs: errs, pos: pos}
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: fmt.Sprintf("%s: %s", context, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}

	var specErr *specValidationError
	if errors.As(err, &specErr) {
		first := specErr.errs[0]
		msg := fmt.Sprintf("%s: %s: %s", context, first.Field, first.Message)
		if len(specErr.errs) > 1 {
			msg += fmt.Sprintf(" (and %d more)", len(specErr.errs)-1)
		}
		return &LoadError{Code: first.Code, Message: msg, Pos: specErr.pos}
	}

	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// convertCUEError keeps the first position of a raw CUE error.
func convertCUEError(code string, err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(compiler.FormatCUEError(err), &compileErr) {
		return &LoadError{Code: code, Message: compileErr.Message, Pos: compileErr.Pos}
	}
	return &LoadError{Code: code, Message: err.Error()}
}

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case field == "kind":
		return compiler.ErrUnknownRuleKind
	case field == "n":
		return compiler.ErrInvalidN
	case field == "trigger":
		return compiler.ErrInvalidTrigger
	case field == "items":
		return compiler.ErrEmptyItems
	case strings.HasSuffix(field, ".type"):
		return compiler.ErrInvalidFieldType
	case strings.HasSuffix(field, ".constraints"):
		return compiler.ErrInvalidConstraint
	case field == "cue":
		return ErrCodeLoadFailed
	default:
		return ErrCodeGeneric
	}
}
