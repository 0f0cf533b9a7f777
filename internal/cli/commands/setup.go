package commands

import (
	"fmt"
	"log/slog"

	"github.com/kg-project/sparqlq/internal/cli/config"
	"github.com/kg-project/sparqlq/internal/controller"
	"github.com/kg-project/sparqlq/internal/examples"
	"github.com/kg-project/sparqlq/pkg/endpoint"
	"github.com/kg-project/sparqlq/pkg/executor"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Endpoint endpoint.Config
	Library  *examples.Library
}

// NewCommandContext resolves the configuration, endpoint, and example library
// for a command.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg, err := getConfig(cmd)
	if err != nil {
		return nil, err
	}

	ep, err := cfg.EndpointConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint configuration: %w", err)
	}

	lib, err := cfg.ExampleLibrary()
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Endpoint: ep,
		Library:  lib,
	}, nil
}

// NewController builds a query controller bound to the command's endpoint.
func (c *CommandContext) NewController(opts ...controller.Option) *controller.Controller {
	exec := executor.New(executor.WithLogger(c.Logger))
	opts = append([]controller.Option{controller.WithLogger(c.Logger)}, opts...)
	return controller.New(exec, c.Endpoint, c.Library, opts...)
}

// InitialQuery returns the query editors start with: the first example, if any.
func (c *CommandContext) InitialQuery() string {
	if exs := c.Library.Examples(); len(exs) > 0 {
		return exs[0].Query
	}
	return ""
}

// getConfig returns the configuration loaded by the root command, or loads it
// from the command's flags when the command runs standalone.
func getConfig(cmd *cobra.Command) (*config.Config, error) {
	if cfg := config.GetConfig(cmd.Context()); cfg != nil {
		return cfg, nil
	}
	return config.LoadConfig("", "", cmd.Flags())
}
