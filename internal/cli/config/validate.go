package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/kg-project/sparqlq/internal/examples"
	"github.com/kg-project/sparqlq/pkg/endpoint"
)

// OutputFormats lists the accepted values of the output setting.
var OutputFormats = []string{"table", "json", "csv", "md", "rdf"}

// Validate checks settings that can be verified without network access.
func (c *Config) Validate() error {
	if !slices.Contains(OutputFormats, c.OutputFormat) {
		return fmt.Errorf("invalid output format %q (expected one of: %s)",
			c.OutputFormat, strings.Join(OutputFormats, ", "))
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.EndpointConfig(); err != nil {
		return fmt.Errorf("invalid endpoint configuration: %w\nHint: set endpoint.base_url and endpoint.repository in sparqlq.yaml or use --base-url and --repository", err)
	}
	return nil
}

// Level returns the slog level for the configuration. Verbose forces debug.
func (c *Config) Level() (slog.Level, error) {
	if c.Verbose {
		return slog.LevelDebug, nil
	}
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelWarn, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// EndpointConfig builds the immutable endpoint descriptor queries are sent to.
func (c *Config) EndpointConfig() (endpoint.Config, error) {
	e := c.Endpoint
	opts := []endpoint.Option{endpoint.WithTimeout(e.Timeout)}
	if e.Username != "" {
		opts = append(opts, endpoint.WithBasicAuth(e.Username, e.Password))
	}
	return endpoint.New(e.BaseURL, e.Repository, e.Method, opts...)
}

// ExampleLibrary returns the built-in examples followed by those from
// examples_file, if set.
func (c *Config) ExampleLibrary() (*examples.Library, error) {
	lib := examples.Default()
	if c.ExamplesFile == "" {
		return lib, nil
	}
	extra, err := examples.LoadFile(c.ExamplesFile)
	if err != nil {
		return nil, err
	}
	return lib.Extend(extra...)
}
