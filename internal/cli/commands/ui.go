package commands

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/kg-project/sparqlq/internal/controller"
	"github.com/kg-project/sparqlq/internal/ui"
	"github.com/spf13/cobra"
)

// UIOptions holds options for the ui command.
type UIOptions struct {
	Port      int
	NoBrowser bool
}

// NewUICommand creates the ui command.
func NewUICommand() *cobra.Command {
	opts := &UIOptions{}

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Start the web query UI",
		Long: `Start a local web server with a query editor bound to the configured endpoint.

The UI provides:
- A query editor with the example library
- Live result table updated over server-sent events
- The same last-request-wins semantics as the REPL`,
		Example: `  # Start UI on default port
  sparqlq ui

  # Start on custom port
  sparqlq ui --port 3000

  # Start without auto-opening browser
  sparqlq ui --no-browser`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUI(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default from ui.port)")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")

	return cmd
}

func runUI(cmd *cobra.Command, opts *UIOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	// Get UI config with defaults; CLI flags override config file
	uiCfg := cmdCtx.Cfg.GetUIConfig()
	port := uiCfg.Port
	if opts.Port != 0 {
		port = opts.Port
	}
	autoOpen := uiCfg.AutoOpen && !opts.NoBrowser

	server := ui.NewServer(ui.Config{
		Controller: cmdCtx.NewController(controller.WithInitialQuery(cmdCtx.InitialQuery())),
		Port:       port,
		Logger:     cmdCtx.Logger,
	})

	url := "http://" + server.Addr()
	if autoOpen {
		go openBrowser(url)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Starting UI server on %s (%s)\n", url, cmdCtx.Endpoint)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

	return server.Serve(cmd.Context())
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
