// Package pages provides the full-page templ components of the query feature.
package pages

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/kg-project/sparqlq/internal/examples"
	"github.com/kg-project/sparqlq/internal/ui/features/query/components"
)

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

// QueryPageData is the data for the full query page.
type QueryPageData struct {
	Title    string
	Endpoint string
	// Signals is the initial datastar signals object as JSON.
	Signals  string
	Examples []examples.Example
	State    components.StateData
}

// QueryPage renders the editor page with the result panel already filled in.
func QueryPage(d QueryPageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, pageHead(d)); err != nil {
			return err
		}
		if err := components.State(d.State).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n  </main>\n</body>\n</html>\n")
		return err
	})
}

func pageHead(d QueryPageData) string {
	var b strings.Builder
	b.WriteString(`<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>` + templ.EscapeString(d.Title) + `</title>
  <link rel="stylesheet" href="/static/app.css">
  <script type="module" src="` + datastarScript + `"></script>
</head>
<body data-signals="` + templ.EscapeString(d.Signals) + `" data-init="@get('/sse')">
  <header class="topbar">
    <h1>SPARQL Query</h1>
    <span class="endpoint">` + templ.EscapeString(d.Endpoint) + `</span>
  </header>
  <main class="layout">
    <section class="editor">
      <label for="example">Example</label>
      <select id="example" data-bind:example data-on:change="@post('/api/query/example')">
        <option value="">Choose an example...</option>`)
	for _, ex := range d.Examples {
		b.WriteString("\n        <option value=\"" + templ.EscapeString(ex.Label) + "\" title=\"" +
			templ.EscapeString(ex.Description) + "\">" + templ.EscapeString(ex.Label) + "</option>")
	}
	b.WriteString(`
      </select>
      <textarea id="query" rows="12" spellcheck="false" data-bind:query></textarea>
      <button id="run" data-on:click="@post('/api/query/execute')">Run query</button>
    </section>
    `)
	return b.String()
}
