// Package main provides tests for the sparqlq CLI.
package main

import (
	"bytes"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kg-project/sparqlq/internal/cli"
	"github.com/kg-project/sparqlq/internal/cli/testutil"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// Keep the upward config search away from any real sparqlq.yaml.
	t.Chdir(t.TempDir())

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	output, err := runCLI(t, "version")
	if err != nil {
		t.Errorf("version command error = %v", err)
	}
	if !strings.Contains(output, "sparqlq v") {
		t.Errorf("version output should contain 'sparqlq v', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	output, err := runCLI(t, "--help")
	if err != nil {
		t.Errorf("help command error = %v", err)
	}

	expectedCommands := []string{"query", "examples", "tui", "ui", "doctor", "init", "completion", "version"}
	for _, expected := range expectedCommands {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestQueryCommandFlags(t *testing.T) {
	ep := testutil.NewEndpoint(t, http.StatusOK, testutil.PeopleResults)

	query := "SELECT ?name WHERE { ?s ?p ?name } # all + more"
	output, err := runCLI(t,
		"--base-url", ep.URL,
		"--repository", "kg-flags",
		"--method", "GET",
		"query", query,
	)
	if err != nil {
		t.Fatalf("query command error = %v", err)
	}
	if !strings.Contains(output, "Alice") {
		t.Errorf("query output should contain 'Alice', got: %s", output)
	}

	reqs := ep.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	if reqs[0].Method != http.MethodGet {
		t.Errorf("method = %s, want GET", reqs[0].Method)
	}
	if reqs[0].Path != "/repositories/kg-flags" {
		t.Errorf("path = %s, want /repositories/kg-flags", reqs[0].Path)
	}
	if reqs[0].Query != query {
		t.Errorf("query = %q, want %q", reqs[0].Query, query)
	}
}

func TestQueryCommandProfile(t *testing.T) {
	ep := testutil.NewEndpoint(t, http.StatusOK, testutil.PeopleResults)
	dir := testutil.SetupTestProject(t, ep.URL)

	_, err := runCLI(t,
		"--config", filepath.Join(dir, "sparqlq.yaml"),
		"--target", "staging",
		"query", "ASK {}",
	)
	if err != nil {
		t.Fatalf("query command error = %v", err)
	}

	reqs := ep.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	if reqs[0].Path != "/repositories/kg-staging" || reqs[0].Method != http.MethodGet {
		t.Errorf("profile not applied: %s %s", reqs[0].Method, reqs[0].Path)
	}
}

func TestQueryCommandEnv(t *testing.T) {
	ep := testutil.NewEndpoint(t, http.StatusOK, testutil.PeopleResults)
	t.Setenv("SPARQLQ_ENDPOINT_BASE_URL", ep.URL)
	t.Setenv("SPARQLQ_ENDPOINT_REPOSITORY", "kg-env")

	output, err := runCLI(t, "--output", "csv", "query", "SELECT 1")
	if err != nil {
		t.Fatalf("query command error = %v", err)
	}
	if !strings.Contains(output, "name,age") {
		t.Errorf("csv output should contain header, got: %s", output)
	}

	reqs := ep.Requests()
	if len(reqs) != 1 || reqs[0].Path != "/repositories/kg-env" {
		t.Errorf("env config not applied: %+v", reqs)
	}
}

func TestInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"bad method", []string{"--method", "PUT", "query", "ASK {}"}, "method"},
		{"bad output", []string{"--output", "xml", "query", "ASK {}"}, "output"},
		{"unknown profile", []string{"--target", "nope", "query", "ASK {}"}, `unknown endpoint profile "nope"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestCompletionCommand(t *testing.T) {
	output, err := runCLI(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion command error = %v", err)
	}
	if !strings.Contains(output, "sparqlq") {
		t.Errorf("completion script should mention sparqlq, got: %s", output[:min(len(output), 200)])
	}
}
