// Package controller holds the query tool's state machine: the current query,
// the execution phase, and the latest result or error.
//
// The controller has no terminal state. Every Submit is accepted; when
// submissions overlap, only the most recent one may publish its outcome.
package controller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kg-project/sparqlq/internal/examples"
	"github.com/kg-project/sparqlq/pkg/endpoint"
	"github.com/kg-project/sparqlq/pkg/sparql"
)

// Phase is the execution phase visible to the presentation layer.
type Phase int

// Phases.
const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseFailure
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseFailure:
		return "failure"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Runner executes a query against an endpoint. *executor.Executor implements it.
type Runner interface {
	Run(ctx context.Context, query string, cfg endpoint.Config) (*sparql.ResultSet, error)
}

// State is a snapshot of the observable fields.
// Result is set only in PhaseSuccess and Error only in PhaseFailure.
type State struct {
	Query  string
	Phase  Phase
	Result *sparql.ResultSet
	Error  string
	// Seq is the sequence number of the latest submission (0 before the first).
	Seq uint64
}

// Controller coordinates query edits, example selection, and execution.
type Controller struct {
	runner   Runner
	endpoint endpoint.Config
	library  *examples.Library
	logger   *slog.Logger

	mu        sync.Mutex
	state     State
	listeners map[chan struct{}]struct{}
}

// Option customizes a Controller.
type Option func(*Controller)

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithInitialQuery sets the query a new controller starts with.
func WithInitialQuery(q string) Option {
	return func(c *Controller) { c.state.Query = q }
}

// New creates a controller in PhaseIdle. A nil library behaves as an empty one.
func New(runner Runner, cfg endpoint.Config, lib *examples.Library, opts ...Option) *Controller {
	if lib == nil {
		lib, _ = examples.New()
	}
	c := &Controller{
		runner:    runner,
		endpoint:  cfg,
		library:   lib,
		listeners: make(map[chan struct{}]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// Endpoint returns the endpoint queries are sent to.
func (c *Controller) Endpoint() endpoint.Config { return c.endpoint }

// Library returns the example library.
func (c *Controller) Library() *examples.Library { return c.library }

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetQuery replaces the current query. The phase is unchanged.
func (c *Controller) SetQuery(text string) {
	c.mu.Lock()
	changed := c.state.Query != text
	c.state.Query = text
	c.mu.Unlock()

	if changed {
		c.broadcast()
	}
}

// SelectExample loads the example with the given label into the current query.
// Unknown labels leave the query unchanged and return false.
func (c *Controller) SelectExample(label string) bool {
	q, ok := c.library.Lookup(label)
	if !ok {
		c.logger.Debug("unknown example", "label", label)
		return false
	}
	c.SetQuery(q)
	return true
}

// Submit starts executing the current query and returns its sequence number
// and a channel closed once the run has resolved. A run whose sequence number
// is no longer the latest when it completes is discarded. Superseded runs are
// not cancelled.
func (c *Controller) Submit(ctx context.Context) (uint64, <-chan struct{}) {
	c.mu.Lock()
	c.state.Seq++
	seq := c.state.Seq
	query := c.state.Query
	c.state.Phase = PhaseLoading
	c.state.Result = nil
	c.state.Error = ""
	c.mu.Unlock()

	c.logger.Debug("query submitted", "seq", seq, "endpoint", c.endpoint.String())
	c.broadcast()

	done := make(chan struct{})
	go func() {
		defer close(done)
		rs, err := c.run(ctx, query)
		c.complete(seq, rs, err)
	}()
	return seq, done
}

// Execute submits the current query and waits for that run to resolve.
// The returned state reflects the latest submission, which may be a newer one.
func (c *Controller) Execute(ctx context.Context) State {
	_, done := c.Submit(ctx)
	<-done
	return c.State()
}

// run calls the runner, converting a panic into an error so that every
// submission resolves.
func (c *Controller) run(ctx context.Context, query string) (rs *sparql.ResultSet, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("executor panic: %v", r)
		}
	}()
	return c.runner.Run(ctx, query, c.endpoint)
}

func (c *Controller) complete(seq uint64, rs *sparql.ResultSet, err error) {
	c.mu.Lock()
	if seq != c.state.Seq {
		latest := c.state.Seq
		c.mu.Unlock()
		c.logger.Debug("discarding superseded result", "seq", seq, "latest", latest)
		return
	}
	if err != nil {
		c.state.Phase = PhaseFailure
		c.state.Result = nil
		c.state.Error = Message(err)
	} else {
		if rs == nil {
			rs = &sparql.ResultSet{}
		}
		c.state.Phase = PhaseSuccess
		c.state.Result = rs
		c.state.Error = ""
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Info("query failed", "seq", seq, "error", err)
	} else {
		c.logger.Debug("query succeeded", "seq", seq, "rows", rs.Len())
	}
	c.broadcast()
}

// Message converts an execution error into the text shown to users.
func Message(err error) string {
	if err == nil {
		return ""
	}
	qe, ok := sparql.AsQueryError(err)
	if !ok {
		return "query failed: " + err.Error()
	}
	switch qe.Kind {
	case sparql.KindTransport:
		return "could not reach SPARQL endpoint: " + qe.Detail
	case sparql.KindHTTPStatus:
		return fmt.Sprintf("SPARQL endpoint returned HTTP %d %s", qe.StatusCode, qe.StatusText)
	case sparql.KindMalformedResponse:
		return "malformed SPARQL response: " + qe.Detail
	default:
		return "query failed: " + qe.Error()
	}
}
