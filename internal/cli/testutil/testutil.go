// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
)

// PeopleResults is a SPARQL-results-JSON document with two rows, one of them
// leaving ?age unbound.
const PeopleResults = `{
  "head": {"vars": ["name", "age"]},
  "results": {"bindings": [
    {"name": {"type": "literal", "value": "Alice"}, "age": {"type": "literal", "value": "30", "datatype": "http://www.w3.org/2001/XMLSchema#integer"}},
    {"name": {"type": "literal", "value": "Bob", "xml:lang": "en"}}
  ]}
}`

// Request is a query request seen by a test endpoint.
type Request struct {
	Method      string
	Path        string
	ContentType string
	Query       string
}

// Endpoint is a fake SPARQL endpoint that records the queries it receives.
type Endpoint struct {
	*httptest.Server

	mu       sync.Mutex
	requests []Request
}

// NewEndpoint starts an endpoint answering every query with status and body.
func NewEndpoint(t *testing.T, status int, body string) *Endpoint {
	t.Helper()

	e := &Endpoint{}
	e.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := Request{
			Method:      r.Method,
			Path:        r.URL.Path,
			ContentType: r.Header.Get("Content-Type"),
		}
		if r.Method == http.MethodGet {
			req.Query = r.URL.Query().Get("query")
		} else {
			b, _ := io.ReadAll(r.Body)
			req.Query = string(b)
		}
		e.mu.Lock()
		e.requests = append(e.requests, req)
		e.mu.Unlock()

		w.Header().Set("Content-Type", "application/sparql-results+json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(e.Close)
	return e
}

// Requests returns a copy of the requests received so far.
func (e *Endpoint) Requests() []Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Request, len(e.requests))
	copy(out, e.requests)
	return out
}

// SetupTestProject creates a temporary directory holding a sparqlq.yaml that
// points at baseURL and an examples file with one extra example.
func SetupTestProject(t *testing.T, baseURL string) string {
	t.Helper()

	tmpDir := t.TempDir()

	cfg := `endpoint:
  base_url: ` + baseURL + `
  repository: kg-test
  method: POST
  timeout: 5s
examples_file: examples.yaml
output: table
endpoints:
  staging:
    repository: kg-staging
    method: GET
`
	if err := os.WriteFile(filepath.Join(tmpDir, "sparqlq.yaml"), []byte(cfg), 0600); err != nil {
		t.Fatalf("failed to create sparqlq.yaml: %v", err)
	}

	exs := `- label: People
  description: Everyone with a name
  query: SELECT ?name ?age WHERE { ?p <http://xmlns.com/foaf/0.1/name> ?name }
`
	if err := os.WriteFile(filepath.Join(tmpDir, "examples.yaml"), []byte(exs), 0600); err != nil {
		t.Fatalf("failed to create examples.yaml: %v", err)
	}

	return tmpDir
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// StripANSI removes ANSI escape codes.
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// AssertValidMarkdownTable checks that every non-empty line is a pipe table
// row with the same number of cells as the header.
func AssertValidMarkdownTable(t *testing.T, md string) {
	t.Helper()

	lines := strings.Split(strings.TrimSpace(md), "\n")
	if len(lines) < 2 {
		t.Errorf("markdown table needs a header and separator, got %q", md)
		return
	}
	want := cellCount(lines[0])
	for i, line := range lines {
		if !strings.HasPrefix(line, "|") || !strings.HasSuffix(line, "|") {
			t.Errorf("line %d is not a table row: %q", i+1, line)
			continue
		}
		if got := cellCount(line); got != want {
			t.Errorf("line %d has %d cells, header has %d: %q", i+1, got, want, line)
		}
	}
}

// cellCount counts unescaped pipes minus one.
func cellCount(line string) int {
	return strings.Count(strings.ReplaceAll(line, `\|`, ""), "|") - 1
}
