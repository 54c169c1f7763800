package template

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/confflow/internal/ir"
	"github.com/roach88/confflow/internal/rule"
	"github.com/roach88/confflow/internal/schema"
)

const rulerWidth = 40

// Options controls rendering.
type Options struct {
	// Descriptions adds schema descriptions and per-field type comments.
	Descriptions bool

	// Header lines are written first, each as a comment.
	Header []string
}

// Group is a block of sections rendered together.
type Group struct {
	Title   string
	Members []ir.Identifier
}

// Groups derives the template blocks from rules. MutuallyExclusive and
// OneOfGroup rules become "Pick only one" blocks, AllOrNone rules
// "Enable all or none" blocks. A schema belongs to the first group that
// claims it; groups left with no members are dropped.
func Groups(names []ir.Identifier, rules []*rule.Rule) []Group {
	registered := ir.SelectionOf(names...)
	claimed := make(map[ir.Identifier]bool)

	var groups []Group
	for _, r := range rules {
		var title string
		switch r.Kind() {
		case rule.KindMutuallyExclusive, rule.KindOneOfGroup:
			title = "Pick only one"
		case rule.KindAllOrNone:
			title = "Enable all or none"
		default:
			continue
		}

		var members []ir.Identifier
		for _, name := range names {
			if r.Contains(name) && registered.Has(name) && !claimed[name] {
				members = append(members, name)
				claimed[name] = true
			}
		}
		if len(members) > 0 {
			groups = append(groups, Group{Title: title, Members: members})
		}
	}
	return groups
}

// Render writes the template for schemas, in order, grouped by rules.
func Render(w io.Writer, schemas []*schema.Schema, rules []*rule.Rule, opts Options) error {
	names := make([]ir.Identifier, len(schemas))
	byName := make(map[ir.Identifier]*schema.Schema, len(schemas))
	for i, s := range schemas {
		names[i] = s.Name
		byName[s.Name] = s
	}

	groups := Groups(names, rules)
	groupOf := make(map[ir.Identifier]int)
	for i, g := range groups {
		for _, m := range g.Members {
			groupOf[m] = i
		}
	}

	bw := bufio.NewWriter(w)
	r := &renderer{w: bw, opts: opts}

	for _, line := range opts.Header {
		r.comment(line)
	}
	r.started = len(opts.Header) > 0

	done := make(map[ir.Identifier]bool)
	for _, name := range names {
		if done[name] {
			continue
		}
		if r.started {
			r.line("")
		}
		r.started = true

		gi, grouped := groupOf[name]
		if !grouped {
			if err := r.section(byName[name]); err != nil {
				return err
			}
			done[name] = true
			continue
		}

		g := groups[gi]
		ruler := strings.Repeat("-", rulerWidth)
		r.comment(ruler)
		r.comment(fmt.Sprintf("%s: %s", g.Title, ir.FormatIdentifiers(g.Members)))
		r.comment(ruler)
		for _, m := range g.Members {
			if err := r.section(byName[m]); err != nil {
				return err
			}
			done[m] = true
		}
		r.comment(ruler)
	}

	if r.err != nil {
		return r.err
	}
	return bw.Flush()
}

type renderer struct {
	w       *bufio.Writer
	opts    Options
	started bool
	err     error
}

func (r *renderer) line(s string) {
	if r.err != nil {
		return
	}
	_, r.err = r.w.WriteString(s + "\n")
}

func (r *renderer) comment(s string) {
	if s == "" {
		r.line("#")
		return
	}
	r.line("# " + s)
}

func (r *renderer) section(s *schema.Schema) error {
	if r.opts.Descriptions && s.Description != "" {
		r.comment(s.Description)
	}

	fields := s.Fields()
	if len(fields) == 0 {
		r.line(string(s.Name) + ": {}")
		return r.err
	}

	r.line(string(s.Name) + ":")
	for _, f := range fields {
		value, err := encodeValue(f.Example())
		if err != nil {
			return fmt.Errorf("schema %s field %s: %w", s.Name, f.Name, err)
		}
		entry := fmt.Sprintf("  %s: %s", f.Name, value)
		if r.opts.Descriptions {
			entry += "  # " + fieldComment(f)
		}
		r.line(entry)
	}
	return r.err
}

func fieldComment(f *schema.Field) string {
	c := "Type: " + string(f.Type)
	if f.Required {
		c += " (required)"
	}
	if f.Description != "" {
		c += " - " + f.Description
	}
	return c
}

// encodeValue renders a value as a single-line YAML fragment. Lists use
// flow style.
func encodeValue(v any) (string, error) {
	var node yaml.Node
	if err := node.Encode(v); err != nil {
		return "", err
	}
	if node.Kind == yaml.SequenceNode {
		node.Style = yaml.FlowStyle
	}
	dropTags(&node)
	out, err := yaml.Marshal(&node)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(string(out), "\n"), nil
}

// dropTags clears non-string scalar tags so integral floats print as plain
// numbers instead of "!!float 0".
func dropTags(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode && n.Tag != "!!str" {
		n.Tag = ""
	}
	for _, c := range n.Content {
		dropTags(c)
	}
}
