package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/confflow/internal/loader"
	"github.com/roach88/confflow/internal/template"
)

// TemplateOptions holds flags for the template command.
type TemplateOptions struct {
	*RootOptions
	Output       string // write to file instead of stdout
	Descriptions bool   // include description and type comments
}

// TemplateResult is the JSON payload of the template command.
type TemplateResult struct {
	Path     string `json:"path,omitempty"`
	Template string `json:"template,omitempty"`
}

// NewTemplateCommand creates the template command.
func NewTemplateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TemplateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "template <specs-dir>",
		Short: "Generate a starter configuration document",
		Long: `Render a YAML document with every schema as a section, filled in with
defaults. Schemas governed by the same pick-one or all-or-none rule are
grouped under a comment block.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the template to a file")
	cmd.Flags().BoolVar(&opts.Descriptions, "descriptions", false, "include description and type comments")

	return cmd
}

func runTemplate(opts *TemplateOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	m, _, err := openSpecs(opts.RootOptions, specsDir, formatter)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	topts := template.Options{
		Descriptions: opts.Descriptions,
		Header:       []string{fmt.Sprintf("Generated by confflow from %s", specsDir)},
	}
	if err := m.Template(&buf, topts); err != nil {
		return formatter.commandError(loader.ErrCodeGeneric, err.Error())
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, buf.Bytes(), 0o644); err != nil {
			return formatter.commandError(loader.ErrCodeWriteFailed, fmt.Sprintf("failed to write template: %v", err))
		}
		formatter.Verbosef("Wrote %d bytes to %s", buf.Len(), opts.Output)
		if formatter.JSON {
			return writeOK(formatter, TemplateResult{Path: opts.Output})
		}
		fmt.Fprintf(formatter.Out, "✓ Template written to %s\n", opts.Output)
		return nil
	}

	if formatter.JSON {
		return writeOK(formatter, TemplateResult{Template: buf.String()})
	}
	_, err = formatter.Out.Write(buf.Bytes())
	return err
}
