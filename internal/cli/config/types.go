// Package config provides configuration management for the sparqlq CLI.
//
// Configuration is layered with koanf: defaults, then a sparqlq.yaml file,
// then SPARQLQ_ environment variables, then explicitly set command-line flags.
package config

import (
	"time"

	"github.com/kg-project/sparqlq/pkg/endpoint"
)

// Default configuration values.
const (
	DefaultBaseURL    = "https://kg-project.fly.dev:7200"
	DefaultRepository = "kg-01"
	DefaultMethod     = "POST"
	DefaultTimeout    = 30 * time.Second
	DefaultOutput     = "table"
	DefaultLogLevel   = "warn"
	DefaultUIPort     = 8766
)

// EndpointConfig is the file/env/flag form of an endpoint. It is converted
// into an immutable endpoint.Config before use.
type EndpointConfig struct {
	BaseURL    string          `koanf:"base_url"`
	Repository string          `koanf:"repository"`
	Method     endpoint.Method `koanf:"method"`
	Timeout    time.Duration   `koanf:"timeout"`
	Username   string          `koanf:"username"`
	Password   string          `koanf:"password"`
}

// UIConfig holds configuration for the web UI server.
type UIConfig struct {
	Port     int  `koanf:"port"`
	AutoOpen bool `koanf:"auto_open"`
}

// DefaultUIConfig returns a UIConfig with default values.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Port:     DefaultUIPort,
		AutoOpen: true,
	}
}

// Config holds all CLI configuration options.
type Config struct {
	Endpoint     EndpointConfig            `koanf:"endpoint"`
	Endpoints    map[string]EndpointConfig `koanf:"endpoints"`
	ExamplesFile string                    `koanf:"examples_file"`
	OutputFormat string                    `koanf:"output"`
	LogLevel     string                    `koanf:"log_level"`
	Verbose      bool                      `koanf:"verbose"`
	UI           *UIConfig                 `koanf:"ui"`

	// Target is the endpoint profile applied on top of Endpoint, if any.
	Target string `koanf:"-"`
	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

// GetUIConfig returns the UI config with defaults applied for any unset values.
func (c *Config) GetUIConfig() *UIConfig {
	if c.UI == nil {
		return DefaultUIConfig()
	}
	ui := *c.UI
	if ui.Port == 0 {
		ui.Port = DefaultUIPort
	}
	return &ui
}
