// Package components provides the templ components of the query feature.
package components

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

// StateData is the result panel's view of the controller state.
type StateData struct {
	Phase     string
	Loading   bool
	Success   bool
	Failure   bool
	Error     string
	Variables []string
	Rows      [][]string
	RowCount  int
}

// State renders the result panel. Datastar morphs it by its id.
func State(d StateData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<section id="state" class="results phase-`)
		b.WriteString(templ.EscapeString(d.Phase))
		b.WriteString(`">`)

		switch {
		case d.Loading:
			b.WriteString(`<p class="status">Running query...</p>`)
		case d.Failure:
			b.WriteString(`<p class="status error">`)
			b.WriteString(templ.EscapeString(d.Error))
			b.WriteString(`</p>`)
		case d.Success:
			b.WriteString(`<p class="status">`)
			b.WriteString(strconv.Itoa(d.RowCount))
			b.WriteString(` rows</p>`)
			writeTable(&b, d.Variables, d.Rows)
		default:
			b.WriteString(`<p class="status muted">Run a query to see results.</p>`)
		}

		b.WriteString(`</section>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeTable(b *strings.Builder, vars []string, rows [][]string) {
	b.WriteString(`<table><thead><tr>`)
	for _, v := range vars {
		b.WriteString(`<th>`)
		b.WriteString(templ.EscapeString(v))
		b.WriteString(`</th>`)
	}
	b.WriteString(`</tr></thead><tbody>`)
	for _, row := range rows {
		b.WriteString(`<tr>`)
		for _, cell := range row {
			b.WriteString(`<td>`)
			b.WriteString(templ.EscapeString(cell))
			b.WriteString(`</td>`)
		}
		b.WriteString(`</tr>`)
	}
	b.WriteString(`</tbody></table>`)
}
