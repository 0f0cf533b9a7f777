package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/kg-project/sparqlq/pkg/sparql"
)

// renderResults writes rs to w in the given format. Unbound cells render as "".
func renderResults(w io.Writer, rs *sparql.ResultSet, format string) error {
	switch format {
	case "json":
		return renderJSON(w, rs)
	case "csv":
		return renderCSV(w, rs)
	case "md", "markdown":
		return renderMarkdown(w, rs)
	case "rdf":
		return renderTable(w, rs, termCell)
	case "table", "":
		return renderTable(w, rs, valueCell)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

type cellFunc func(row sparql.Row, variable string) string

func valueCell(row sparql.Row, variable string) string {
	return row.Cell(variable)
}

// termCell renders the bound term in N-Triples form.
func termCell(row sparql.Row, variable string) string {
	t, ok := row.Get(variable)
	if !ok {
		return ""
	}
	return t.String()
}

func renderTable(w io.Writer, rs *sparql.ResultSet, cell cellFunc) error {
	if rs.Len() == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	// Variable names are case-sensitive.
	t.Style().Format.Header = text.FormatDefault

	headerRow := make(table.Row, len(rs.Variables))
	for i, v := range rs.Variables {
		headerRow[i] = v
	}
	t.AppendHeader(headerRow)

	for _, result := range rs.Rows {
		row := make(table.Row, len(rs.Variables))
		for i, v := range rs.Variables {
			row[i] = cell(result, v)
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", rs.Len())
	return nil
}

// renderJSON writes one object per row holding only the bound variables.
func renderJSON(w io.Writer, rs *sparql.ResultSet) error {
	results := make([]map[string]string, 0, rs.Len())
	if rs != nil {
		for _, row := range rs.Rows {
			obj := make(map[string]string, len(row))
			for _, v := range rs.Variables {
				if t, ok := row.Get(v); ok {
					obj[v] = t.Value
				}
			}
			results = append(results, obj)
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func renderCSV(w io.Writer, rs *sparql.ResultSet) error {
	cw := csv.NewWriter(w)
	if rs != nil {
		if err := cw.Write(rs.Variables); err != nil {
			return err
		}
		if err := cw.WriteAll(rs.Cells()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func renderMarkdown(w io.Writer, rs *sparql.ResultSet) error {
	if rs.Len() == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(rs.Variables, " | "))
	seps := make([]string, len(rs.Variables))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, cells := range rs.Cells() {
		for i, c := range cells {
			cells[i] = escapeMarkdown(c)
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
	}
	return nil
}

var markdownEscaper = strings.NewReplacer("|", `\|`, "\r\n", "<br>", "\n", "<br>")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
