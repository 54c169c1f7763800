package engine

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/roach88/confflow/internal/conflict"
	"github.com/roach88/confflow/internal/ir"
	"github.com/roach88/confflow/internal/rule"
)

// IdentifierSource reports which identifiers are registered schemas.
// Implemented by schema.Registry.
type IdentifierSource interface {
	Contains(id ir.Identifier) bool
}

// Engine holds the registered selection rules.
//
// INVARIANTS:
//   - No two registered rules are Equal
//   - No pair of registered rules conflicts under the engine's table
//   - Registered rules are frozen
//   - rules keeps registration order, so reports are deterministic
type Engine struct {
	mu     sync.RWMutex
	rules  []*rule.Rule
	keys   map[string]bool
	table  *conflict.Table
	source IdentifierSource
	logger *slog.Logger
}

// Option allows configuration of engine parameters.
type Option func(*Engine)

// WithTable replaces the default conflict table.
func WithTable(t *conflict.Table) Option {
	return func(e *Engine) {
		e.table = t
	}
}

// WithIdentifierSource makes registration reject rules that name
// identifiers unknown to src.
func WithIdentifierSource(src IdentifierSource) Option {
	return func(e *Engine) {
		e.source = src
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an empty Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		keys:   make(map[string]bool),
		table:  conflict.DefaultTable(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddRule registers r. On any error the engine is unchanged.
//
// An ExactlyN or AtLeastN rule whose n exceeds its items is registered; it
// rejects every selection. Only a negative n is refused.
func (e *Engine) AddRule(r *rule.Rule) error {
	return e.AddRules(r)
}

// AddRules registers rules as one batch: either all are committed or none.
// The conflict check runs once over the existing rules plus the batch.
func (e *Engine) AddRules(rules ...*rule.Rule) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	batch := make(map[string]bool, len(rules))
	for _, r := range rules {
		if err := e.admit(r, batch); err != nil {
			e.logger.Warn("rule rejected", "rule", describe(r), "error", err)
			return err
		}
		batch[r.Key()] = true
	}

	prospective := make([]*rule.Rule, 0, len(e.rules)+len(rules))
	prospective = append(prospective, e.rules...)
	prospective = append(prospective, rules...)
	if err := e.table.Check(prospective); err != nil {
		e.logger.Warn("rule rejected", "error", err)
		return err
	}

	for _, r := range rules {
		r.Freeze()
		e.rules = append(e.rules, r)
		e.keys[r.Key()] = true
		e.logger.Info("rule registered",
			"rule", describe(r),
			"kind", r.Kind().String(),
			"items", ir.FormatIdentifiers(r.Items()))
	}
	return nil
}

// admit runs the per-rule checks that do not involve other rules, plus
// duplicate detection against the engine and the current batch.
func (e *Engine) admit(r *rule.Rule, batch map[string]bool) error {
	if r == nil || !r.Kind().Valid() {
		return &RuleError{Code: ErrCodeInvalidRule, Message: "rule is nil or of unknown kind", Rule: r}
	}

	if r.Len() == 0 {
		return &RuleError{Code: ErrCodeEmptyRule, Message: "rule constrains no items", Rule: r}
	}

	if trigger, ok := r.Trigger(); ok && trigger == "" {
		return &RuleError{Code: ErrCodeMissingTrigger, Message: "conditional rule has no trigger", Rule: r}
	}

	// n above the item count is accepted: the rule can never be met, and
	// the conflict table decides whether that clashes with other rules.
	if n, ok := r.N(); ok && n < 0 {
		return &RuleError{
			Code:    ErrCodeUnsatisfiable,
			Message: fmt.Sprintf("n=%d must not be negative", n),
			Rule:    r,
		}
	}

	if e.source != nil {
		var unknown []ir.Identifier
		for _, id := range r.References() {
			if !e.source.Contains(id) {
				unknown = append(unknown, id)
			}
		}
		if len(unknown) > 0 {
			return &RuleError{
				Code:        ErrCodeUnknownIdentifier,
				Message:     fmt.Sprintf("schemas in rule are not registered: %s", ir.FormatIdentifiers(unknown)),
				Rule:        r,
				Identifiers: unknown,
			}
		}
	}

	if e.keys[r.Key()] || batch[r.Key()] {
		return &RuleError{Code: ErrCodeDuplicateRule, Message: "rule is already registered", Rule: r}
	}

	return nil
}

// ValidateSelection returns nil if every registered rule accepts sel, or a
// *ValidationError listing every rule that rejects it.
func (e *Engine) ValidateSelection(sel ir.Selection) error {
	violations := e.Violations(sel)
	if len(violations) == 0 {
		e.logger.Debug("selection valid", "selection", sel.String())
		return nil
	}
	e.logger.Debug("selection rejected", "selection", sel.String(), "violations", len(violations))
	return &ValidationError{Selection: sel, Violations: violations}
}

// Violations returns the violation of every rule that rejects sel, in
// registration order. A nil result means sel is valid.
func (e *Engine) Violations(sel ir.Selection) []rule.Violation {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []rule.Violation
	for _, r := range e.rules {
		if !r.Validate(sel) {
			out = append(out, r.Explain(sel))
		}
	}
	return out
}

// Rules returns the registered rules in registration order.
func (e *Engine) Rules() []*rule.Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.rules)
}

// Len returns the number of registered rules.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.rules)
}

func describe(r *rule.Rule) string {
	if r == nil {
		return "<nil>"
	}
	if r.Name() != "" {
		return r.Name() + " " + r.String()
	}
	return r.String()
}
