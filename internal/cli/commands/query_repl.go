package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"
	"github.com/kg-project/sparqlq/internal/cli/config"
	"github.com/kg-project/sparqlq/internal/controller"
	"github.com/spf13/cobra"
)

const (
	replPrompt         = "sparql> "
	replContinuePrompt = "   ...> "
)

var (
	replErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	replMutedStyle = lipgloss.NewStyle().Faint(true)
	replTitleStyle = lipgloss.NewStyle().Bold(true)
)

// repl holds the interactive session state. Lines accumulate into a buffer
// until an empty line submits it through the controller.
type repl struct {
	ctl    *controller.Controller
	out    io.Writer
	errOut io.Writer
	format string
	buf    []string
}

func runQueryREPL(cmd *cobra.Command, cmdCtx *CommandContext, format string) error {
	ctx := cmd.Context()
	ctl := cmdCtx.NewController()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile(),
		AutoComplete:    newREPLCompleter(ctl.Library().List()),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	r := &repl{
		ctl:    ctl,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
		format: format,
	}

	_, _ = fmt.Fprintln(r.out, replTitleStyle.Render("SPARQL Query REPL")+" "+replMutedStyle.Render("("+cmdCtx.Endpoint.String()+")"))
	_, _ = fmt.Fprintln(r.out, "Type .help for commands, .quit to exit. An empty line runs the query.")
	_, _ = fmt.Fprintln(r.out)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			r.buf = nil
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		if r.handleLine(ctx, line) {
			break
		}
		if len(r.buf) > 0 {
			rl.SetPrompt(replContinuePrompt)
		} else {
			rl.SetPrompt(replPrompt)
		}
	}

	return nil
}

// handleLine processes one input line and reports whether the session should end.
func (r *repl) handleLine(ctx context.Context, line string) bool {
	trimmed := strings.TrimSpace(line)

	if len(r.buf) == 0 {
		if trimmed == "" {
			return false
		}
		if strings.HasPrefix(trimmed, ".") {
			return r.handleDotCommand(ctx, trimmed)
		}
	}

	if trimmed == "" {
		query := strings.Join(r.buf, "\n")
		r.buf = nil
		r.ctl.SetQuery(query)
		r.run(ctx)
		return false
	}

	r.buf = append(r.buf, strings.TrimRight(line, " \t\r"))
	return false
}

// run executes the controller's current query and prints the outcome.
func (r *repl) run(ctx context.Context) {
	if strings.TrimSpace(r.ctl.State().Query) == "" {
		_, _ = fmt.Fprintln(r.errOut, replErrorStyle.Render("No query to run"))
		return
	}

	start := time.Now()
	st := r.ctl.Execute(ctx)
	elapsed := time.Since(start).Round(time.Millisecond)

	switch st.Phase {
	case controller.PhaseFailure:
		_, _ = fmt.Fprintln(r.errOut, replErrorStyle.Render("Error: "+st.Error))
	case controller.PhaseSuccess:
		if err := renderResults(r.out, st.Result, r.format); err != nil {
			_, _ = fmt.Fprintf(r.errOut, "Error: %v\n", err)
		}
		_, _ = fmt.Fprintln(r.out, replMutedStyle.Render(fmt.Sprintf("Time: %s", elapsed)))
	}
	_, _ = fmt.Fprintln(r.out)
}

func (r *repl) handleDotCommand(ctx context.Context, line string) bool {
	command, arg, _ := strings.Cut(line, " ")
	command = strings.ToLower(command)
	arg = strings.TrimSpace(arg)

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(r.out)

	case ".run":
		r.run(ctx)

	case ".show":
		q := r.ctl.State().Query
		if q == "" {
			_, _ = fmt.Fprintln(r.out, replMutedStyle.Render("(no query)"))
		} else {
			_, _ = fmt.Fprintln(r.out, q)
		}

	case ".examples":
		if err := renderExampleList(r.out, r.ctl.Library()); err != nil {
			_, _ = fmt.Fprintf(r.errOut, "Error: %v\n", err)
		}

	case ".example":
		if arg == "" {
			_, _ = fmt.Fprintln(r.errOut, "Usage: .example <label>")
			break
		}
		if !r.ctl.SelectExample(arg) {
			_, _ = fmt.Fprintln(r.errOut, replErrorStyle.Render(fmt.Sprintf("Unknown example: %s (type .examples to list them)", arg)))
			break
		}
		_, _ = fmt.Fprintln(r.out, r.ctl.State().Query)
		_, _ = fmt.Fprintln(r.out, replMutedStyle.Render("Type .run to execute"))

	case ".endpoint":
		_, _ = fmt.Fprintln(r.out, r.ctl.Endpoint().String())

	case ".format":
		if arg == "" {
			_, _ = fmt.Fprintf(r.out, "Format: %s\n", r.format)
			break
		}
		if !slices.Contains(config.OutputFormats, arg) {
			_, _ = fmt.Fprintf(r.errOut, "Unknown format: %s (expected one of: %s)\n", arg, strings.Join(config.OutputFormats, ", "))
			break
		}
		r.format = arg

	case ".clear":
		_, _ = fmt.Fprint(r.out, "\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(r.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help             Show this help message
  .run              Run the current query again
  .show             Print the current query
  .examples         List example queries
  .example <label>  Load an example as the current query
  .endpoint         Show the endpoint queries are sent to
  .format <fmt>     Set the output format (table, json, csv, md, rdf)
  .clear            Clear the screen
  .quit / .exit     Exit the REPL

Tips:
  - Queries may span several lines; an empty line runs them
  - Commands are only recognized at the start of a new query
  - Use arrow keys to navigate history
  - Tab completion works for commands and example labels
`
	_, _ = fmt.Fprintln(w, help)
}

// historyFile returns the REPL history path under the user cache directory,
// or "" when it cannot be created.
func historyFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "sparqlq")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return ""
	}
	return filepath.Join(dir, "query_history")
}

// newREPLCompleter creates a readline completer for dot-commands and example labels.
func newREPLCompleter(labels []string) *readline.PrefixCompleter {
	exampleItems := make([]readline.PrefixCompleterInterface, len(labels))
	for i, label := range labels {
		exampleItems[i] = readline.PcItem(label)
	}
	formatItems := make([]readline.PrefixCompleterInterface, len(config.OutputFormats))
	for i, f := range config.OutputFormats {
		formatItems[i] = readline.PcItem(f)
	}

	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".run"),
		readline.PcItem(".show"),
		readline.PcItem(".examples"),
		readline.PcItem(".example", exampleItems...),
		readline.PcItem(".endpoint"),
		readline.PcItem(".format", formatItems...),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
