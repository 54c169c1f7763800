package document

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/confflow/internal/ir"
)

// Section is one top-level entry of a document.
type Section struct {
	Name ir.Identifier

	// Values holds the decoded field values; nil for a null section.
	Values map[string]any

	Line       int
	FieldLines map[string]int
}

// Document is a parsed configuration document.
type Document struct {
	Path     string
	Sections []*Section

	index map[ir.Identifier]int
}

// ParseError is a document that could not be read as sections.
type ParseError struct {
	Path    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	prefix := e.Path
	if prefix == "" {
		prefix = "<document>"
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", prefix, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// IsParseError checks if an error is a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// Load reads and parses the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return parse(path, data)
}

// Parse parses document bytes. An empty document has no sections.
func Parse(data []byte) (*Document, error) {
	return parse("", data)
}

func parse(path string, data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &ParseError{Path: path, Message: err.Error()}
	}

	doc := &Document{Path: path, index: make(map[ir.Identifier]int)}
	if root.Kind == 0 || len(root.Content) == 0 {
		return doc, nil
	}

	top := resolve(root.Content[0])
	if top.Kind == yaml.ScalarNode && top.Tag == "!!null" {
		return doc, nil
	}
	if top.Kind != yaml.MappingNode {
		return nil, &ParseError{Path: path, Line: top.Line, Message: "document must be a mapping of sections"}
	}

	for i := 0; i+1 < len(top.Content); i += 2 {
		keyNode, valueNode := top.Content[i], resolve(top.Content[i+1])

		name := ir.NormalizeIdentifier(keyNode.Value)
		if name == "" {
			return nil, &ParseError{Path: path, Line: keyNode.Line, Message: "section name must not be empty"}
		}
		if _, dup := doc.index[name]; dup {
			return nil, &ParseError{Path: path, Line: keyNode.Line, Message: fmt.Sprintf("duplicate section %q", name)}
		}

		section, err := parseSection(path, name, keyNode.Line, valueNode)
		if err != nil {
			return nil, err
		}
		doc.index[name] = len(doc.Sections)
		doc.Sections = append(doc.Sections, section)
	}

	return doc, nil
}

func parseSection(path string, name ir.Identifier, line int, node *yaml.Node) (*Section, error) {
	section := &Section{Name: name, Line: line, FieldLines: make(map[string]int)}

	switch {
	case node.Kind == yaml.ScalarNode && node.Tag == "!!null":
		return section, nil
	case node.Kind != yaml.MappingNode:
		return nil, &ParseError{
			Path:    path,
			Line:    node.Line,
			Message: fmt.Sprintf("section %q must be a mapping", name),
		}
	}

	values := make(map[string]any, len(node.Content)/2)
	if err := node.Decode(&values); err != nil {
		return nil, &ParseError{Path: path, Line: node.Line, Message: fmt.Sprintf("section %q: %v", name, err)}
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		section.FieldLines[node.Content[i].Value] = node.Content[i].Line
	}
	section.Values = values
	return section, nil
}

// resolve follows an alias to its anchor.
func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// Selection returns the set of section names.
func (d *Document) Selection() ir.Selection {
	return ir.SelectionOf(d.Names()...)
}

// Names returns the section names in document order.
func (d *Document) Names() []ir.Identifier {
	names := make([]ir.Identifier, len(d.Sections))
	for i, s := range d.Sections {
		names[i] = s.Name
	}
	return names
}

// Section looks up a section by name.
func (d *Document) Section(name ir.Identifier) (*Section, bool) {
	i, ok := d.index[ir.NormalizeIdentifier(string(name))]
	if !ok {
		return nil, false
	}
	return d.Sections[i], true
}
