package commands

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/kg-project/sparqlq/internal/examples"
	"github.com/spf13/cobra"
)

// NewExamplesCommand creates the examples command.
func NewExamplesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "examples",
		Short: "List example queries",
		Long: `List the built-in example queries and those loaded from examples_file.

Examples can be run with 'sparqlq query --example <label>' or loaded in the
REPL with '.example <label>'.`,
		Example: `  sparqlq examples
  sparqlq examples show "All triples"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			return renderExampleList(cmd.OutOrStdout(), cmdCtx.Library)
		},
	}

	cmd.AddCommand(newExamplesShowCommand())
	return cmd
}

func newExamplesShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <label>",
		Short: "Print the query of an example",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			cfg, err := getConfig(cmd)
			if err != nil {
				return nil, cobra.ShellCompDirectiveError
			}
			lib, err := cfg.ExampleLibrary()
			if err != nil {
				return nil, cobra.ShellCompDirectiveError
			}
			return lib.List(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			q, ok := cmdCtx.Library.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown example %q", args[0])
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), q)
			return nil
		},
	}
}

func renderExampleList(w io.Writer, lib *examples.Library) error {
	if lib.Len() == 0 {
		_, _ = fmt.Fprintln(w, "(no examples)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Label", "Description"})
	for _, ex := range lib.Examples() {
		t.AppendRow(table.Row{ex.Label, ex.Description})
	}
	t.Render()
	return nil
}
