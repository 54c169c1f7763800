package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/confflow/internal/ir"
	"github.com/roach88/confflow/internal/rule"
)

// RuleError represents a rule rejected at registration for a reason other
// than a conflict with another rule.
type RuleError struct {
	// Code identifies the error category.
	Code RuleErrorCode

	// Message is a human-readable description.
	Message string

	// Rule is the rejected rule.
	Rule *rule.Rule

	// Identifiers lists the offending identifiers (for UNKNOWN_IDENTIFIER).
	Identifiers []ir.Identifier
}

// RuleErrorCode categorizes registration errors.
type RuleErrorCode string

const (
	// ErrCodeInvalidRule indicates a nil rule or a rule of unknown kind.
	ErrCodeInvalidRule RuleErrorCode = "INVALID_RULE"

	// ErrCodeDuplicateRule indicates an equal rule is already registered.
	ErrCodeDuplicateRule RuleErrorCode = "DUPLICATE_RULE"

	// ErrCodeUnknownIdentifier indicates the rule names an unregistered schema.
	ErrCodeUnknownIdentifier RuleErrorCode = "UNKNOWN_IDENTIFIER"

	// ErrCodeEmptyRule indicates the rule constrains no items.
	ErrCodeEmptyRule RuleErrorCode = "EMPTY_RULE"

	// ErrCodeMissingTrigger indicates a conditional rule without a trigger.
	ErrCodeMissingTrigger RuleErrorCode = "MISSING_TRIGGER"

	// ErrCodeUnsatisfiable indicates a negative n.
	ErrCodeUnsatisfiable RuleErrorCode = "UNSATISFIABLE_RULE"
)

// Error implements the error interface.
func (e *RuleError) Error() string {
	if e.Rule != nil {
		return fmt.Sprintf("%s: %s (rule=%s)", e.Code, e.Message, e.Rule)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsDuplicateError returns true if err is a duplicate registration error.
// Uses errors.As to handle wrapped errors.
func IsDuplicateError(err error) bool {
	var re *RuleError
	if errors.As(err, &re) {
		return re.Code == ErrCodeDuplicateRule
	}
	return false
}

// IsUnknownIdentifierError returns true if err names unregistered schemas.
func IsUnknownIdentifierError(err error) bool {
	var re *RuleError
	if errors.As(err, &re) {
		return re.Code == ErrCodeUnknownIdentifier
	}
	return false
}

// ValidationError reports a selection rejected by one or more rules.
type ValidationError struct {
	Selection  ir.Selection
	Violations []rule.Violation
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	switch len(e.Violations) {
	case 0:
		return fmt.Sprintf("selection %s rejected", e.Selection)
	case 1:
		return fmt.Sprintf("selection %s violates 1 rule: %s", e.Selection, e.Violations[0].Error())
	default:
		return fmt.Sprintf("selection %s violates %d rules: %s (and %d more)",
			e.Selection, len(e.Violations), e.Violations[0].Error(), len(e.Violations)-1)
	}
}

// IsValidationError returns true if err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
