// Package endpoint describes how to reach and address a remote SPARQL repository.
package endpoint

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kg-project/sparqlq/pkg/sparql"
)

// Method selects how the query is transmitted.
type Method int

// Supported transmission methods.
const (
	// MethodGet sends the query as a percent-encoded "query" URL parameter.
	MethodGet Method = iota + 1
	// MethodPost sends the query verbatim as an application/sparql-query body.
	MethodPost
)

// QueryContentType is the Content-Type used for POST bodies.
const QueryContentType = "application/sparql-query"

// DefaultUserAgent identifies the client to the endpoint.
const DefaultUserAgent = "sparqlq/0.1"

// String returns the HTTP verb.
func (m Method) String() string {
	switch m {
	case MethodGet:
		return "GET"
	case MethodPost:
		return "POST"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod parses a case-insensitive HTTP verb.
func ParseMethod(s string) (Method, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "GET":
		return MethodGet, nil
	case "POST":
		return MethodPost, nil
	default:
		return 0, fmt.Errorf("unsupported method %q (expected GET or POST)", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (m Method) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Config addresses one repository on a remote endpoint. It is a value type:
// switching endpoints means building a new Config.
type Config struct {
	BaseURL      string
	RepositoryID string
	Method       Method
	Accept       string
	Timeout      time.Duration
	Username     string
	Password     string
	UserAgent    string
}

// Option customizes a Config built by New.
type Option func(*Config)

// WithTimeout bounds each request. Zero means no deadline beyond the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithBasicAuth sets credentials for secured repositories.
func WithBasicAuth(username, password string) Option {
	return func(c *Config) {
		c.Username = username
		c.Password = password
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Config) { c.UserAgent = ua }
}

// New builds and validates an endpoint configuration.
func New(baseURL, repositoryID string, method Method, opts ...Option) (Config, error) {
	cfg := Config{
		BaseURL:      strings.TrimSpace(baseURL),
		RepositoryID: strings.TrimSpace(repositoryID),
		Method:       method,
		Accept:       sparql.MediaType,
		UserAgent:    DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration can address a repository.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("endpoint base URL is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid endpoint base URL %q: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid endpoint base URL %q: scheme must be http or https", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid endpoint base URL %q: missing host", c.BaseURL)
	}
	if c.RepositoryID == "" {
		return errors.New("repository id is required")
	}
	if c.Method != MethodGet && c.Method != MethodPost {
		return fmt.Errorf("unsupported method %s", c.Method)
	}
	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	return nil
}

// RepositoryURL returns {baseUrl}/repositories/{repositoryId}.
func (c Config) RepositoryURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/repositories/" + url.PathEscape(c.RepositoryID)
}

// String summarizes the endpoint for logs and status lines. Credentials are omitted.
func (c Config) String() string {
	return fmt.Sprintf("%s %s", c.Method, c.RepositoryURL())
}
