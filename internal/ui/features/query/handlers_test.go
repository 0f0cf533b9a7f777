package query

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kg-project/sparqlq/internal/controller"
	"github.com/kg-project/sparqlq/internal/testutil"
	"github.com/kg-project/sparqlq/internal/ui/features"
	"github.com/kg-project/sparqlq/internal/ui/features/query/components"
	"github.com/kg-project/sparqlq/pkg/sparql"
)

func setupTestHandlers(t *testing.T, endpoint http.HandlerFunc) (*Handlers, *features.TestFixture) {
	t.Helper()
	fixture := features.SetupTestFixture(t, endpoint)
	return NewHandlers(fixture.Controller, testutil.NewTestLogger(t)), fixture
}

func waitResolved(t *testing.T, ctl *controller.Controller) controller.State {
	t.Helper()
	require.Eventually(t, func() bool {
		return ctl.State().Phase != controller.PhaseLoading
	}, 2*time.Second, 10*time.Millisecond)
	return ctl.State()
}

// =============================================================================
// QueryPage Tests
// =============================================================================

func TestQueryPage(t *testing.T) {
	h, fixture := setupTestHandlers(t, nil)
	fixture.Controller.SetQuery(`SELECT ?s WHERE { ?s ?p "x" }`)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.QueryPage(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	for _, want := range []string{
		"<!doctype html>",
		"<title>sparqlq - kg-test</title>",
		"data-init",
		"/sse",
		"/api/query/execute",
		"All triples",
		"/repositories/kg-test",
		`id="state"`,
		"Run a query to see results.",
	} {
		assert.Contains(t, body, want, "response should contain %q", want)
	}
	// Signals are JSON inside an escaped attribute.
	assert.Contains(t, body, "&#34;query&#34;")
}

func TestQueryPage_RendersCurrentResult(t *testing.T) {
	h, fixture := setupTestHandlers(t, nil)
	fixture.Controller.SetQuery("SELECT ?s ?p ?o WHERE {?s ?p ?o}")
	st := fixture.Controller.Execute(context.Background())
	require.Equal(t, controller.PhaseSuccess, st.Phase)

	rec := httptest.NewRecorder()
	h.QueryPage(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	body := rec.Body.String()
	assert.Contains(t, body, "<th>s</th><th>p</th><th>o</th>")
	assert.Contains(t, body, "<td>hello</td>")
	assert.Contains(t, body, "1 rows")
}

// =============================================================================
// ExecuteSSE Tests
// =============================================================================

func TestExecuteSSE_Success(t *testing.T) {
	bodies := make(chan string, 1)
	h, fixture := setupTestHandlers(t, func(w http.ResponseWriter, r *http.Request) {
		buf := new(strings.Builder)
		_, _ = io.Copy(buf, r.Body)
		bodies <- buf.String()
		_, _ = w.Write([]byte(features.SampleResults))
	})

	req := features.SignalsRequest("/api/query/execute", `{"query":"SELECT ?s ?p ?o WHERE {?s ?p ?o} LIMIT 10"}`)
	rec := httptest.NewRecorder()
	h.ExecuteSSE(rec, req)

	body := rec.Body.String()
	assert.Contains(t, body, "event: datastar-patch-elements")
	assert.Contains(t, body, `id="state"`)

	st := waitResolved(t, fixture.Controller)
	require.Equal(t, controller.PhaseSuccess, st.Phase)
	assert.Equal(t, "SELECT ?s ?p ?o WHERE {?s ?p ?o} LIMIT 10", st.Query)
	assert.Equal(t, []string{"s", "p", "o"}, st.Result.Variables)
	assert.Equal(t, "SELECT ?s ?p ?o WHERE {?s ?p ?o} LIMIT 10", <-bodies)
}

func TestExecuteSSE_DetachedFromRequest(t *testing.T) {
	release := make(chan struct{})
	h, fixture := setupTestHandlers(t, func(w http.ResponseWriter, _ *http.Request) {
		<-release
		_, _ = w.Write([]byte(features.SampleResults))
	})

	ctx, cancel := context.WithCancel(context.Background())
	req := features.SignalsRequest("/api/query/execute", `{"query":"ASK {}"}`).WithContext(ctx)
	h.ExecuteSSE(httptest.NewRecorder(), req)
	cancel()
	close(release)

	st := waitResolved(t, fixture.Controller)
	assert.Equal(t, controller.PhaseSuccess, st.Phase, "cancelling the request must not cancel the run")
}

func TestExecuteSSE_Failure(t *testing.T) {
	h, fixture := setupTestHandlers(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	h.ExecuteSSE(httptest.NewRecorder(), features.SignalsRequest("/api/query/execute", `{"query":"SELECT * WHERE {}"}`))

	st := waitResolved(t, fixture.Controller)
	assert.Equal(t, controller.PhaseFailure, st.Phase)
	assert.Contains(t, st.Error, "500")
}

func TestExecuteSSE_BadSignals(t *testing.T) {
	h, fixture := setupTestHandlers(t, nil)

	rec := httptest.NewRecorder()
	h.ExecuteSSE(rec, features.SignalsRequest("/api/query/execute", `{not json`))

	assert.Contains(t, rec.Body.String(), "failed to read signals")
	assert.Equal(t, controller.PhaseIdle, fixture.Controller.State().Phase)
}

// =============================================================================
// ExampleSSE Tests
// =============================================================================

func TestExampleSSE(t *testing.T) {
	h, fixture := setupTestHandlers(t, nil)

	rec := httptest.NewRecorder()
	h.ExampleSSE(rec, features.SignalsRequest("/api/query/example", `{"example":"All triples"}`))

	body := rec.Body.String()
	assert.Contains(t, body, "event: datastar-patch-signals")
	assert.Contains(t, body, "SELECT ?s ?p ?o WHERE {?s ?p ?o} LIMIT 10")
	assert.Equal(t, "SELECT ?s ?p ?o WHERE {?s ?p ?o} LIMIT 10", fixture.Controller.State().Query)
	assert.Equal(t, controller.PhaseIdle, fixture.Controller.State().Phase)
}

func TestExampleSSE_Unknown(t *testing.T) {
	h, fixture := setupTestHandlers(t, nil)
	fixture.Controller.SetQuery("original")

	rec := httptest.NewRecorder()
	h.ExampleSSE(rec, features.SignalsRequest("/api/query/example", `{"example":"unknown-label"}`))

	assert.Contains(t, rec.Body.String(), "unknown-label")
	assert.NotContains(t, rec.Body.String(), "datastar-patch-signals")
	assert.Equal(t, "original", fixture.Controller.State().Query)
}

// =============================================================================
// StateSSE Tests
// =============================================================================

func TestStateSSE_SendsInitialAndUpdates(t *testing.T) {
	h, fixture := setupTestHandlers(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/sse", nil)
	ctx, cancel := context.WithTimeout(req.Context(), 300*time.Millisecond)
	defer cancel()
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		h.StateSSE(rec, req)
		close(done)
	}()

	// Wait a bit then change state
	time.Sleep(50 * time.Millisecond)
	fixture.Controller.SetQuery("SELECT ?x WHERE { ?x ?y ?z }")

	<-done

	body := rec.Body.String()
	eventCount := strings.Count(body, "event:")
	assert.GreaterOrEqual(t, eventCount, 2, "should have initial event plus one from the update")
	assert.Contains(t, body, `id="state"`)
}

func TestStateSSE_InitialOnly(t *testing.T) {
	h, _ := setupTestHandlers(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/sse", nil)
	ctx, cancel := context.WithTimeout(req.Context(), 50*time.Millisecond)
	defer cancel()
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()
	h.StateSSE(rec, req)

	assert.Equal(t, 1, strings.Count(rec.Body.String(), "event:"))
}

// =============================================================================
// Rendering
// =============================================================================

func TestStateComponent(t *testing.T) {
	rs, err := sparql.ParseResults([]byte(`{"head":{"vars":["a","b"]},"results":{"bindings":[{"a":{"type":"literal","value":"<x>"}}]}}`))
	require.NoError(t, err)

	tests := []struct {
		name     string
		state    controller.State
		wantBody []string
	}{
		{
			name:     "idle",
			state:    controller.State{Phase: controller.PhaseIdle},
			wantBody: []string{"phase-idle", "Run a query to see results."},
		},
		{
			name:     "loading",
			state:    controller.State{Phase: controller.PhaseLoading},
			wantBody: []string{"phase-loading", "Running query..."},
		},
		{
			name:     "failure",
			state:    controller.State{Phase: controller.PhaseFailure, Error: "SPARQL endpoint returned HTTP 500 Internal Server Error"},
			wantBody: []string{"phase-failure", "HTTP 500"},
		},
		{
			name:     "success escapes values and keeps unbound cells empty",
			state:    controller.State{Phase: controller.PhaseSuccess, Result: rs},
			wantBody: []string{"phase-success", "<td>&lt;x&gt;</td><td></td>", "1 rows"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf strings.Builder
			require.NoError(t, components.State(newStateData(tt.state)).Render(context.Background(), &buf))
			for _, want := range tt.wantBody {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestHealthz(t *testing.T) {
	h, _ := setupTestHandlers(t, nil)
	rec := httptest.NewRecorder()
	h.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
