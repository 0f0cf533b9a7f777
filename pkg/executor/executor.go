// Package executor sends SPARQL queries to a remote repository and normalizes
// the SPARQL-results-JSON response into a sparql.ResultSet.
package executor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kg-project/sparqlq/pkg/endpoint"
	"github.com/kg-project/sparqlq/pkg/sparql"
)

// RequestIDHeader carries a per-run identifier for correlating endpoint logs.
const RequestIDHeader = "X-Request-ID"

// maxErrorDrain bounds how much of an error response body is read before the
// connection is released.
const maxErrorDrain = 64 << 10

// Executor runs queries against the endpoint described by an endpoint.Config.
// It holds no per-query state and is safe for concurrent use.
type Executor struct {
	client *http.Client
	logger *slog.Logger
}

// Option customizes an Executor.
type Option func(*Executor)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Executor) { e.client = c }
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// New creates an Executor.
func New(opts ...Option) *Executor {
	e := &Executor{client: http.DefaultClient}
	for _, opt := range opts {
		opt(e)
	}
	if e.client == nil {
		e.client = http.DefaultClient
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	return e
}

// Run executes query against cfg. A single attempt is made; failures are
// returned as *sparql.QueryError (transport, HTTP status, or malformed response).
func (e *Executor) Run(ctx context.Context, query string, cfg endpoint.Config) (*sparql.ResultSet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid endpoint configuration: %w", err)
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	req, err := newRequest(ctx, query, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	logger := e.logger.With(
		slog.String("request_id", requestID),
		slog.String("method", req.Method),
		slog.String("url", cfg.RepositoryURL()),
	)

	start := time.Now()
	logger.Debug("sending SPARQL query")

	resp, err := e.client.Do(req)
	if err != nil {
		logger.Debug("SPARQL request failed", "error", err)
		return nil, sparql.NewTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorDrain))
		logger.Debug("SPARQL endpoint returned error status", "status", resp.StatusCode)
		return nil, sparql.NewHTTPStatusError(resp.StatusCode, statusText(resp))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, sparql.NewTransportError(fmt.Errorf("reading response: %w", err))
	}

	rs, err := sparql.ParseResults(body)
	if err != nil {
		logger.Debug("SPARQL response could not be parsed", "error", err)
		return nil, err
	}

	logger.Debug("SPARQL query completed",
		"status", resp.StatusCode,
		"rows", rs.Len(),
		"duration", time.Since(start))
	return rs, nil
}

// newRequest builds the HTTP request for cfg.Method. GET and POST differ only
// in where the query travels; headers are shared.
func newRequest(ctx context.Context, query string, cfg endpoint.Config) (*http.Request, error) {
	target := cfg.RepositoryURL()

	var (
		req *http.Request
		err error
	)
	switch cfg.Method {
	case endpoint.MethodGet:
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, target+"?query="+EncodeQuery(query), nil)
	case endpoint.MethodPost:
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(query))
		if err == nil {
			req.Header.Set("Content-Type", endpoint.QueryContentType)
		}
	default:
		return nil, fmt.Errorf("unsupported method %s", cfg.Method)
	}
	if err != nil {
		return nil, err
	}

	accept := cfg.Accept
	if accept == "" {
		accept = sparql.MediaType
	}
	req.Header.Set("Accept", accept)
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}
	if cfg.Username != "" {
		req.SetBasicAuth(cfg.Username, cfg.Password)
	}
	return req, nil
}

// EncodeQuery percent-encodes a query for use as a URL parameter value.
// Spaces become %20 rather than '+', so the value decodes to the original
// bytes under both query and path unescaping.
func EncodeQuery(query string) string {
	return strings.ReplaceAll(url.QueryEscape(query), "+", "%20")
}

// statusText returns the reason phrase without the leading status code.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprintf("%d", resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
