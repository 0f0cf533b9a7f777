package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/kg-project/sparqlq/internal/cli/config"
	"github.com/kg-project/sparqlq/internal/controller"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format  string
	Input   string
	Example string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [QUERY]",
		Short: "Run a SPARQL query against the configured endpoint",
		Long: `Run a SPARQL query against the configured repository and print the result table.

The query is taken from the arguments, from --input, from a named example,
or from piped stdin. When invoked without a query on a terminal, enters
interactive REPL mode.`,
		Example: `  # Run a query directly
  sparqlq query "SELECT ?s ?p ?o WHERE {?s ?p ?o} LIMIT 10"

  # Run a built-in example
  sparqlq query --example "All triples"

  # Read the query from a file, output CSV
  sparqlq query -i classes.rq --format csv

  # Pipe a query in
  cat query.rq | sparqlq query --format json

  # Interactive mode against a named endpoint profile
  sparqlq -t local query`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: table, json, csv, md, rdf (default from config)")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read the query from file")
	cmd.Flags().StringVarP(&opts.Example, "example", "e", "", "Run the example with this label")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return config.OutputFormats, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	format := opts.Format
	if format == "" {
		format = cmdCtx.Cfg.OutputFormat
	}
	if !slices.Contains(config.OutputFormats, format) {
		return fmt.Errorf("invalid format %q (expected one of: %s)", format, strings.Join(config.OutputFormats, ", "))
	}

	var query string
	switch {
	case len(args) > 0:
		query = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		query = string(content)
	case opts.Example != "":
		q, ok := cmdCtx.Library.Lookup(opts.Example)
		if !ok {
			return fmt.Errorf("unknown example %q (run 'sparqlq examples' to list them)", opts.Example)
		}
		query = q
	case !stdinIsTerminal(cmd):
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		query = string(content)
	default:
		// No input, TTY detected - enter REPL mode
		return runQueryREPL(cmd, cmdCtx, format)
	}

	if strings.TrimSpace(query) == "" {
		return errors.New("no query given")
	}

	ctl := cmdCtx.NewController(controller.WithInitialQuery(query))
	st := ctl.Execute(cmd.Context())
	if st.Phase == controller.PhaseFailure {
		return errors.New(st.Error)
	}
	return renderResults(cmd.OutOrStdout(), st.Result, format)
}

// stdinIsTerminal reports whether the command reads from an interactive terminal.
func stdinIsTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.InOrStdin().(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}
