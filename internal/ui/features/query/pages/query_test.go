package pages

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kg-project/sparqlq/internal/examples"
	"github.com/kg-project/sparqlq/internal/ui/features/query/components"
)

func TestQueryPage(t *testing.T) {
	var buf strings.Builder
	err := QueryPage(QueryPageData{
		Title:    "sparqlq - kg-01",
		Endpoint: "POST http://localhost:7200/repositories/kg-01",
		Signals:  `{"query":"ASK {}","example":""}`,
		Examples: []examples.Example{{Label: "Types & counts", Description: "Classes", Query: "SELECT ..."}},
		State:    components.StateData{Phase: "idle"},
	}).Render(context.Background(), &buf)
	require.NoError(t, err)

	html := buf.String()
	assert.True(t, strings.HasPrefix(html, "<!doctype html>"))
	assert.Contains(t, html, "<title>sparqlq - kg-01</title>")
	assert.Contains(t, html, `data-signals="{&#34;query&#34;:&#34;ASK {}&#34;,&#34;example&#34;:&#34;&#34;}"`)
	assert.Contains(t, html, `<option value="Types &amp; counts" title="Classes">Types &amp; counts</option>`)
	assert.Contains(t, html, `<section id="state" class="results phase-idle">`)
	assert.True(t, strings.HasSuffix(html, "</html>\n"))
}
