// Package features provides shared test utilities for UI feature tests.
package features

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kg-project/sparqlq/internal/controller"
	"github.com/kg-project/sparqlq/internal/examples"
	"github.com/kg-project/sparqlq/internal/testutil"
	"github.com/kg-project/sparqlq/pkg/endpoint"
	"github.com/kg-project/sparqlq/pkg/executor"
)

// SampleResults is a SPARQL-results-JSON document with one row.
const SampleResults = `{"head":{"vars":["s","p","o"]},"results":{"bindings":[{"s":{"type":"uri","value":"http://ex/1"},"p":{"type":"uri","value":"http://ex/2"},"o":{"type":"literal","value":"hello"}}]}}`

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Controller *controller.Controller
	Endpoint   *httptest.Server
	Library    *examples.Library
}

// SetupTestFixture creates a controller wired to a mock SPARQL endpoint served
// by handler. A nil handler answers every query with SampleResults.
func SetupTestFixture(t *testing.T, handler http.HandlerFunc) *TestFixture {
	t.Helper()

	if handler == nil {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/sparql-results+json")
			_, _ = w.Write([]byte(SampleResults))
		}
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg, err := endpoint.New(srv.URL, "kg-test", endpoint.MethodPost)
	require.NoError(t, err)

	logger := testutil.NewTestLogger(t)
	lib := examples.Default()
	ctl := controller.New(
		executor.New(executor.WithLogger(logger)),
		cfg,
		lib,
		controller.WithLogger(logger),
	)

	return &TestFixture{
		Controller: ctl,
		Endpoint:   srv,
		Library:    lib,
	}
}

// SignalsRequest builds a datastar POST request carrying the given JSON signals.
func SignalsRequest(target, signals string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(signals))
	req.Header.Set("Content-Type", "application/json")
	return req
}
