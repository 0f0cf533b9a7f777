package commands

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kg-project/sparqlq/internal/cli/config"
	"github.com/kg-project/sparqlq/internal/cli/testutil"
	"github.com/kg-project/sparqlq/internal/examples"
	"github.com/kg-project/sparqlq/pkg/endpoint"
	"github.com/kg-project/sparqlq/pkg/sparql"
)

// methodRunner answers per HTTP method.
type methodRunner map[endpoint.Method]error

func (m methodRunner) Run(_ context.Context, _ string, cfg endpoint.Config) (*sparql.ResultSet, error) {
	if err := m[cfg.Method]; err != nil {
		return nil, err
	}
	return &sparql.ResultSet{Variables: []string{"ok"}}, nil
}

func doctorContext(t *testing.T, method endpoint.Method) *CommandContext {
	t.Helper()
	ep, err := endpoint.New("http://localhost:7200", "kg-test", method)
	require.NoError(t, err)
	return &CommandContext{
		Cfg:      &config.Config{File: "/tmp/sparqlq.yaml"},
		Endpoint: ep,
		Library:  examples.Default(),
	}
}

func statuses(out *DoctorOutput) map[string]string {
	m := make(map[string]string, len(out.HealthChecks))
	for _, c := range out.HealthChecks {
		m[c.ID] = c.Status
	}
	return m
}

func TestBuildDoctorOutput(t *testing.T) {
	tests := []struct {
		name       string
		method     endpoint.Method
		runner     methodRunner
		want       map[string]string
		wantIssues int
		wantRec    string
	}{
		{
			name:   "all pass",
			method: endpoint.MethodPost,
			runner: methodRunner{},
			want:   map[string]string{"CF01": "pass", "CF02": "pass", "EP01": "pass", "EP02": "pass", "EP03": "pass", "EP04": "pass"},
		},
		{
			name:   "unreachable",
			method: endpoint.MethodPost,
			runner: methodRunner{
				endpoint.MethodPost: sparql.NewTransportError(errors.New("connection refused")),
				endpoint.MethodGet:  sparql.NewTransportError(errors.New("connection refused")),
			},
			want:       map[string]string{"EP01": "error", "EP02": "skip", "EP03": "skip", "EP04": "skip"},
			wantIssues: 1,
			wantRec:    "is running",
		},
		{
			name:   "unauthorized",
			method: endpoint.MethodPost,
			runner: methodRunner{
				endpoint.MethodPost: sparql.NewHTTPStatusError(http.StatusUnauthorized, "Unauthorized"),
				endpoint.MethodGet:  sparql.NewHTTPStatusError(http.StatusUnauthorized, "Unauthorized"),
			},
			want:       map[string]string{"EP01": "pass", "EP02": "error", "EP03": "skip", "EP04": "warn"},
			wantIssues: 2,
			wantRec:    "endpoint.username",
		},
		{
			name:   "other method works",
			method: endpoint.MethodGet,
			runner: methodRunner{
				endpoint.MethodGet: sparql.NewHTTPStatusError(http.StatusMethodNotAllowed, "Method Not Allowed"),
			},
			want:       map[string]string{"EP02": "error", "EP04": "pass"},
			wantIssues: 1,
			wantRec:    "Set endpoint.method to POST",
		},
		{
			name:   "only configured method works",
			method: endpoint.MethodPost,
			runner: methodRunner{
				endpoint.MethodGet: sparql.NewHTTPStatusError(http.StatusMethodNotAllowed, "Method Not Allowed"),
			},
			want:       map[string]string{"EP02": "pass", "EP03": "pass", "EP04": "skip"},
			wantIssues: 0,
		},
		{
			name:   "not sparql",
			method: endpoint.MethodPost,
			runner: methodRunner{
				endpoint.MethodPost: sparql.NewMalformedResponseError("invalid JSON", nil),
			},
			want:       map[string]string{"EP02": "pass", "EP03": "error"},
			wantIssues: 1,
			wantRec:    "application/sparql-results+json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := buildDoctorOutput(context.Background(), doctorContext(t, tt.method), tt.runner)

			got := statuses(out)
			for id, want := range tt.want {
				assert.Equal(t, want, got[id], "check %s", id)
			}
			assert.Equal(t, tt.wantIssues, out.IssueCount)
			if tt.wantRec != "" {
				assert.Contains(t, strings.Join(out.Recommendations, "\n"), tt.wantRec)
			}
		})
	}
}

func TestBuildDoctorOutput_NoConfigFile(t *testing.T) {
	cmdCtx := doctorContext(t, endpoint.MethodPost)
	cmdCtx.Cfg.File = ""

	out := buildDoctorOutput(context.Background(), cmdCtx, methodRunner{})

	assert.Equal(t, "warn", statuses(out)["CF01"])
	assert.Equal(t, 1, out.IssueCount)
	assert.Contains(t, out.Recommendations, "Run 'sparqlq init' to create a sparqlq.yaml for your endpoint")
}

func TestDoctorCommand(t *testing.T) {
	ep := testutil.NewEndpoint(t, http.StatusOK, `{"head":{"vars":["ok"]},"results":{"bindings":[{"ok":{"type":"literal","value":"1"}}]}}`)
	dir := testutil.SetupTestProject(t, ep.URL)

	t.Run("json", func(t *testing.T) {
		out, err := executeCommand(t, NewDoctorCommand(), dir, "", "--format", "json")
		require.NoError(t, err)

		var got DoctorOutput
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, 0, got.IssueCount)
		assert.Equal(t, ep.URL+"/repositories/kg-test", got.Summary.RepositoryURL)
		assert.Len(t, got.HealthChecks, 6)
	})

	t.Run("markdown", func(t *testing.T) {
		out, err := executeCommand(t, NewDoctorCommand(), dir, "", "--format", "md")
		require.NoError(t, err)
		assert.Contains(t, out, "# sparqlq Endpoint Health Report")
		assert.Contains(t, out, "### Endpoint")
		assert.Contains(t, out, "**[PASS]** EP01")
		testutil.AssertNoANSI(t, out)
	})

	t.Run("text", func(t *testing.T) {
		out, err := executeCommand(t, NewDoctorCommand(), dir, "")
		require.NoError(t, err)
		assert.Contains(t, testutil.StripANSI(out), "All checks passed")
	})

	// Both methods were probed on every run.
	methods := map[string]bool{}
	for _, r := range ep.Requests() {
		methods[r.Method] = true
		assert.Equal(t, probeQuery, r.Query)
	}
	assert.True(t, methods[http.MethodGet])
	assert.True(t, methods[http.MethodPost])
}
