package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	initSuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	initHeaderStyle  = lipgloss.NewStyle().Bold(true)
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a sparqlq.yaml configuration",
		Long: `Create a sparqlq.yaml configuration file for a SPARQL endpoint.

Use --example to also create endpoint profiles, an examples.yaml with extra
example queries, and a queries/ directory with a query file.`,
		Example: `  # Initialize in current directory
  sparqlq init

  # Initialize with profiles and example queries
  sparqlq init --example

  # Initialize in a new directory
  sparqlq init my-graph --example

  # Force overwrite existing config
  sparqlq init --force`,
		Args: cobra.MaximumNArgs(1),
		// init writes the config; there is nothing to load yet.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			template := "minimal"
			if example {
				template = "example"
			}
			return runInit(cmd.OutOrStdout(), dir, template, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&example, "example", false, "Also create endpoint profiles and example queries")

	return cmd
}

func runInit(w io.Writer, dir, template string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, "sparqlq.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.New("sparqlq.yaml already exists. Use --force to overwrite")
	}

	if err := copyTemplate(template, dir, force); err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	files, err := listTemplateFiles(template)
	if err != nil {
		return err
	}
	groups := groupTemplateFiles(files)

	for _, section := range []struct{ title, key string }{
		{"Configuration", "config"},
		{"Examples", "examples"},
		{"Queries", "queries"},
	} {
		if len(groups[section.key]) == 0 {
			continue
		}
		_, _ = fmt.Fprintln(w, initHeaderStyle.Render(section.title))
		for _, f := range groups[section.key] {
			_, _ = fmt.Fprintf(w, "  %s %s\n", initSuccessStyle.Render("✓"), f)
		}
		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintln(w, initSuccessStyle.Render("sparqlq initialized!"))
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Next steps:")
	_, _ = fmt.Fprintln(w, "  1. Set endpoint.base_url and endpoint.repository in sparqlq.yaml")
	_, _ = fmt.Fprintln(w, "  2. Run 'sparqlq doctor' to check the endpoint is reachable")
	_, _ = fmt.Fprintln(w, "  3. Run 'sparqlq query' to start the interactive prompt")

	return nil
}
