package manager

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/confflow/internal/conflict"
	"github.com/roach88/confflow/internal/document"
	"github.com/roach88/confflow/internal/engine"
	"github.com/roach88/confflow/internal/ir"
	"github.com/roach88/confflow/internal/rule"
	"github.com/roach88/confflow/internal/schema"
	"github.com/roach88/confflow/internal/template"
)

// Manager ties a schema registry to a rule engine and validates documents
// against both.
//
// Thread-safety: after New returns, all methods are safe for concurrent
// use.
type Manager struct {
	registry *schema.Registry
	engine   *engine.Engine
	table    *conflict.Table
	ids      IDGenerator
	logger   *slog.Logger
}

// Option allows configuration of manager parameters.
type Option func(*Manager)

// WithLogger sets the logger shared by the manager and its engine.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithIDGenerator sets the report ID generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(m *Manager) {
		m.ids = g
	}
}

// WithTable replaces the conflict table used by the engine.
func WithTable(t *conflict.Table) Option {
	return func(m *Manager) {
		m.table = t
	}
}

// New registers schemas, then registers rules as one batch in an engine
// that only accepts rules naming those schemas.
func New(schemas []*schema.Schema, rules []*rule.Rule, opts ...Option) (*Manager, error) {
	m := &Manager{
		table:  conflict.DefaultTable(),
		ids:    UUIDv7Generator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}

	registry, err := schema.NewRegistry(schemas...)
	if err != nil {
		return nil, err
	}
	m.registry = registry

	m.engine = engine.New(
		engine.WithIdentifierSource(registry),
		engine.WithTable(m.table),
		engine.WithLogger(m.logger),
	)
	if len(rules) > 0 {
		if err := m.engine.AddRules(rules...); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Registry returns the schema registry.
func (m *Manager) Registry() *schema.Registry { return m.registry }

// Engine returns the rule engine.
func (m *Manager) Engine() *engine.Engine { return m.engine }

// Warnings runs static analysis over the registered rules.
func (m *Manager) Warnings() []conflict.Warning {
	return conflict.Analyze(m.engine.Rules())
}

// ValidateSelection checks sel against the rules only.
func (m *Manager) ValidateSelection(sel ir.Selection) error {
	return m.engine.ValidateSelection(sel)
}

// Validate checks every section of doc against its schema and the
// selection against the rules. All problems are collected in the report.
func (m *Manager) Validate(doc *document.Document) *Report {
	sel := doc.Selection()
	report := &Report{
		ID:        m.ids.Generate(),
		Path:      doc.Path,
		Selection: sel.Identifiers(),
	}

	for _, section := range doc.Sections {
		s, ok := m.registry.Get(section.Name)
		if !ok {
			report.UnknownSections = append(report.UnknownSections, SectionRef{Name: section.Name, Line: section.Line})
			continue
		}
		for _, fe := range s.ValidateSection(section.Values) {
			if line, ok := section.FieldLines[fe.Field]; ok {
				fe.Line = line
			} else {
				fe.Line = section.Line
			}
			report.FieldErrors = append(report.FieldErrors, fe)
		}
	}

	report.Violations = m.engine.Violations(sel)

	m.logger.Debug("document validated",
		"report", report.ID,
		"path", doc.Path,
		"selection", sel.String(),
		"valid", report.Valid(),
		"issues", report.IssueCount())
	return report
}

// Resolve validates doc and returns every section's values with defaults
// applied. Unknown sections are an error, like any other issue.
func (m *Manager) Resolve(doc *document.Document) (map[ir.Identifier]map[string]any, error) {
	report := m.Validate(doc)
	if !report.Valid() {
		return nil, &InvalidDocumentError{Report: report}
	}

	out := make(map[ir.Identifier]map[string]any, len(doc.Sections))
	for _, section := range doc.Sections {
		s, _ := m.registry.Get(section.Name)
		out[section.Name] = s.Resolve(section.Values)
	}
	return out, nil
}

// Template renders the starter document for the registered schemas.
func (m *Manager) Template(w io.Writer, opts template.Options) error {
	if err := template.Render(w, m.registry.Schemas(), m.engine.Rules(), opts); err != nil {
		return fmt.Errorf("render template: %w", err)
	}
	return nil
}
