package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kg-project/sparqlq/internal/controller"
	"github.com/kg-project/sparqlq/pkg/endpoint"
	"github.com/kg-project/sparqlq/pkg/executor"
	"github.com/kg-project/sparqlq/pkg/sparql"
	"github.com/spf13/cobra"
)

// probeQuery returns exactly one row on any SPARQL 1.1 endpoint.
const probeQuery = "SELECT (1 AS ?ok) WHERE {}"

// Check statuses.
const (
	statusPass  = "pass"
	statusWarn  = "warn"
	statusError = "error"
	statusSkip  = "skip"
)

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	Format string // Output format: text, md, json
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the configuration and the SPARQL endpoint",
		Long: `Check that the configuration loads and that the endpoint answers queries.

The doctor command sends a trivial query with the configured method and then
with the other method, and reports:
- The endpoint and configuration in use
- Health checks grouped by category (Config, Endpoint)
- Actionable recommendations for failed checks

Output adapts to the output setting:
  - table (default): Styled output with colors
  - md: Markdown
  - json: Machine-readable format`,
		Example: `  # Check the default endpoint
  sparqlq doctor

  # Check a profile, output as JSON
  sparqlq -t remote doctor --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, md, json")

	return cmd
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Summary         EndpointSummary `json:"summary"`
	HealthChecks    []HealthCheck   `json:"health_checks"`
	Recommendations []string        `json:"recommendations"`
	IssueCount      int             `json:"issue_count"`
}

// EndpointSummary describes the configuration under test.
type EndpointSummary struct {
	RepositoryURL string `json:"repository_url"`
	Method        string `json:"method"`
	Timeout       string `json:"timeout"`
	ConfigFile    string `json:"config_file,omitempty"`
	Target        string `json:"target,omitempty"`
	Examples      int    `json:"examples"`
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Group   string   `json:"group"`
	Status  string   `json:"status"` // "pass", "warn", "error", "skip"
	Details []string `json:"details,omitempty"`

	recommendation string
}

func runDoctor(cmd *cobra.Command, opts *DoctorOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	format := opts.Format
	if format == "" {
		switch cmdCtx.Cfg.OutputFormat {
		case "json", "md":
			format = cmdCtx.Cfg.OutputFormat
		default:
			format = "text"
		}
	}

	runner := executor.New(executor.WithLogger(cmdCtx.Logger))
	out := buildDoctorOutput(cmd.Context(), cmdCtx, runner)

	w := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "md", "markdown":
		renderDoctorMarkdown(w, out)
	case "text":
		renderDoctorText(w, out)
	default:
		return fmt.Errorf("unknown format %q (expected text, md, or json)", format)
	}
	return nil
}

func buildDoctorOutput(ctx context.Context, cmdCtx *CommandContext, runner controller.Runner) *DoctorOutput {
	ep := cmdCtx.Endpoint
	out := &DoctorOutput{
		Summary: EndpointSummary{
			RepositoryURL: ep.RepositoryURL(),
			Method:        ep.Method.String(),
			Timeout:       ep.Timeout.String(),
			ConfigFile:    cmdCtx.Cfg.File,
			Target:        cmdCtx.Cfg.Target,
			Examples:      cmdCtx.Library.Len(),
		},
	}

	checks := configChecks(cmdCtx)
	checks = append(checks, endpointChecks(ctx, runner, ep)...)

	for _, c := range checks {
		if c.Status == statusWarn || c.Status == statusError {
			out.IssueCount++
		}
		if c.recommendation != "" {
			out.Recommendations = append(out.Recommendations, c.recommendation)
		}
	}
	out.HealthChecks = checks
	return out
}

func configChecks(cmdCtx *CommandContext) []HealthCheck {
	file := HealthCheck{ID: "CF01", Name: "Configuration file", Group: "config", Status: statusPass}
	if cmdCtx.Cfg.File != "" {
		file.Details = []string{cmdCtx.Cfg.File}
	} else {
		file.Status = statusWarn
		file.Details = []string{"no sparqlq.yaml found, using defaults"}
		file.recommendation = "Run 'sparqlq init' to create a sparqlq.yaml for your endpoint"
	}

	// A broken examples file already fails config loading, so reaching here means it loaded.
	exs := HealthCheck{ID: "CF02", Name: "Example library", Group: "config", Status: statusPass}
	exs.Details = []string{fmt.Sprintf("%d examples", cmdCtx.Library.Len())}
	if f := cmdCtx.Cfg.ExamplesFile; f != "" {
		exs.Details = append(exs.Details, "loaded "+f)
	}

	return []HealthCheck{file, exs}
}

// endpointChecks probes the endpoint with the configured method, then with
// the other one to tell whether switching would help.
func endpointChecks(ctx context.Context, runner controller.Runner, ep endpoint.Config) []HealthCheck {
	reach := HealthCheck{ID: "EP01", Name: "Endpoint reachable", Group: "endpoint", Status: statusPass}
	status := HealthCheck{ID: "EP02", Name: "Query accepted", Group: "endpoint", Status: statusPass}
	results := HealthCheck{ID: "EP03", Name: "SPARQL JSON results", Group: "endpoint", Status: statusPass}

	_, err := runner.Run(ctx, probeQuery, ep)
	qe, _ := sparql.AsQueryError(err)
	switch {
	case err == nil:
	case qe == nil || qe.Kind == sparql.KindTransport:
		reach.Status = statusError
		reach.Details = []string{controller.Message(err)}
		reach.recommendation = fmt.Sprintf("Check that %s is running and endpoint.base_url is correct", ep.BaseURL)
		status.Status, results.Status = statusSkip, statusSkip
	case qe.Kind == sparql.KindHTTPStatus:
		status.Status = statusError
		status.Details = []string{controller.Message(err)}
		status.recommendation = statusRecommendation(qe.StatusCode)
		results.Status = statusSkip
	case qe.Kind == sparql.KindMalformedResponse:
		results.Status = statusError
		results.Details = []string{controller.Message(err)}
		results.recommendation = "Check that the URL points at a SPARQL endpoint that returns application/sparql-results+json"
	}

	other := ep
	other.Method = endpoint.MethodGet
	if ep.Method == endpoint.MethodGet {
		other.Method = endpoint.MethodPost
	}
	alt := HealthCheck{ID: "EP04", Name: other.Method.String() + " method", Group: "endpoint", Status: statusPass}
	if reach.Status == statusError {
		alt.Status = statusSkip
	} else if _, altErr := runner.Run(ctx, probeQuery, other); altErr != nil {
		alt.Details = []string{controller.Message(altErr)}
		if err == nil {
			// The configured method works; the other one is informational.
			alt.Status = statusSkip
			alt.Details = append(alt.Details, "not needed, "+ep.Method.String()+" works")
		} else {
			alt.Status = statusWarn
		}
	} else if err != nil {
		alt.Details = []string{"works where " + ep.Method.String() + " fails"}
		alt.recommendation = fmt.Sprintf("Set endpoint.method to %s", other.Method)
	}

	return []HealthCheck{reach, status, results, alt}
}

func statusRecommendation(code int) string {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return "Set endpoint.username and endpoint.password for this repository"
	case http.StatusNotFound:
		return "Check endpoint.repository; the server has no repository at that URL"
	case http.StatusMethodNotAllowed:
		return "The server rejects this method; try the other endpoint.method"
	default:
		return "Check the server logs for the rejected probe query"
	}
}

var (
	doctorHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	doctorBold   = lipgloss.NewStyle().Bold(true)
	doctorMuted  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	doctorStatus = map[string]lipgloss.Style{
		statusPass:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		statusWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		statusError: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		statusSkip:  doctorMuted,
	}
	doctorIcons = map[string]string{
		statusPass:  "✓",
		statusWarn:  "!",
		statusError: "✗",
		statusSkip:  "-",
	}
)

func renderDoctorText(w io.Writer, out *DoctorOutput) {
	p := func(format string, args ...any) { _, _ = fmt.Fprintf(w, format, args...) }

	p("\n%s\n%s\n\n", doctorHeader.Render("sparqlq Endpoint Health Report"), doctorMuted.Render(strings.Repeat("=", 55)))

	p("%s\n", doctorBold.Render("Endpoint"))
	p("   %s %s (timeout %s)\n", out.Summary.Method, out.Summary.RepositoryURL, out.Summary.Timeout)
	if out.Summary.ConfigFile != "" {
		p("   Config: %s\n", out.Summary.ConfigFile)
	}
	if out.Summary.Target != "" {
		p("   Profile: %s\n", out.Summary.Target)
	}
	p("\n%s\n\n", doctorBold.Render("Health Checks"))

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			p("%s\n%s\n", doctorBold.Render("   "+titleCaser.String(currentGroup)), doctorMuted.Render("   "+strings.Repeat("-", 40)))
		}
		icon := doctorStatus[check.Status].Render(doctorIcons[check.Status])
		p("   %s %s: %s\n", icon, check.ID, check.Name)
		for _, d := range check.Details {
			p("%s\n", doctorMuted.Render("       - "+d))
		}
	}
	p("\n")

	if out.IssueCount == 0 {
		p("   %s\n\n", doctorStatus[statusPass].Render("All checks passed"))
		return
	}
	p("   %s\n\n", doctorStatus[statusWarn].Render(fmt.Sprintf("%d issues found", out.IssueCount)))

	if len(out.Recommendations) > 0 {
		p("%s\n", doctorBold.Render("Recommendations"))
		for i, rec := range out.Recommendations {
			p("   %d. %s\n", i+1, rec)
		}
		p("\n")
	}
}

func renderDoctorMarkdown(w io.Writer, out *DoctorOutput) {
	p := func(format string, args ...any) { _, _ = fmt.Fprintf(w, format, args...) }

	p("# sparqlq Endpoint Health Report\n\n")
	p("## Endpoint\n\n")
	p("- **URL**: %s\n", out.Summary.RepositoryURL)
	p("- **Method**: %s\n", out.Summary.Method)
	p("- **Timeout**: %s\n", out.Summary.Timeout)
	if out.Summary.ConfigFile != "" {
		p("- **Config**: %s\n", out.Summary.ConfigFile)
	}
	if out.Summary.Target != "" {
		p("- **Profile**: %s\n", out.Summary.Target)
	}
	p("- **Examples**: %d\n\n", out.Summary.Examples)

	p("## Health Checks\n\n")
	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			p("### %s\n\n", titleCaser.String(currentGroup))
		}
		p("- **[%s]** %s: %s\n", strings.ToUpper(check.Status), check.ID, check.Name)
		for _, d := range check.Details {
			p("  - %s\n", d)
		}
	}
	p("\n")

	if len(out.Recommendations) > 0 {
		p("## Recommendations\n\n")
		for i, rec := range out.Recommendations {
			p("%d. %s\n", i+1, rec)
		}
		p("\n")
	}
}
