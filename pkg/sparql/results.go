package sparql

import (
	"encoding/json"
)

// MediaType is the SPARQL-results-JSON media type.
const MediaType = "application/sparql-results+json"

// Row maps variable names to bound terms. A variable missing from the map is unbound.
type Row map[string]Term

// Get returns the term bound to variable, if any.
func (r Row) Get(variable string) (Term, bool) {
	t, ok := r[variable]
	return t, ok
}

// Cell returns the display value for variable: the term's value, or "" when unbound.
func (r Row) Cell(variable string) string {
	if t, ok := r[variable]; ok {
		return t.Value
	}
	return ""
}

// ResultSet is a normalized SPARQL SELECT result.
// Variables keep the order declared in head.vars; rows keep the order received.
type ResultSet struct {
	Variables []string
	Rows      []Row
}

// Len returns the number of rows.
func (rs *ResultSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}

// Cells returns the result as a rectangular table of display values,
// one column per declared variable.
func (rs *ResultSet) Cells() [][]string {
	if rs == nil {
		return nil
	}
	out := make([][]string, len(rs.Rows))
	for i, row := range rs.Rows {
		cells := make([]string, len(rs.Variables))
		for j, v := range rs.Variables {
			cells[j] = row.Cell(v)
		}
		out[i] = cells
	}
	return out
}

// document mirrors the parts of SPARQL-results-JSON we read. Pointers and nil
// slices distinguish absent members from empty ones.
type document struct {
	Head *struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results *struct {
		Bindings []map[string]json.RawMessage `json:"bindings"`
	} `json:"results"`
}

type bindingEntry struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Datatype string `json:"datatype"`
	Lang     string `json:"xml:lang"`
}

// ParseResults decodes a SPARQL-results-JSON document.
//
// Columns always come from head.vars, so rows with heterogeneous variable sets
// still produce a complete, order-stable header. Binding members that are not
// declared variables are ignored; entries that cannot be read as a term are
// left unbound.
func ParseResults(data []byte) (*ResultSet, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, NewMalformedResponseError(err.Error(), err)
	}
	if doc.Head == nil || doc.Head.Vars == nil {
		return nil, NewMalformedResponseError("missing head.vars", nil)
	}
	if doc.Results == nil || doc.Results.Bindings == nil {
		return nil, NewMalformedResponseError("missing results.bindings", nil)
	}

	vars := make([]string, len(doc.Head.Vars))
	copy(vars, doc.Head.Vars)

	rows := make([]Row, 0, len(doc.Results.Bindings))
	for _, binding := range doc.Results.Bindings {
		row := make(Row, len(vars))
		for _, v := range vars {
			raw, ok := binding[v]
			if !ok {
				continue
			}
			if term, ok := decodeTerm(raw); ok {
				row[v] = term
			}
		}
		rows = append(rows, row)
	}

	return &ResultSet{Variables: vars, Rows: rows}, nil
}

func decodeTerm(raw json.RawMessage) (Term, bool) {
	var entry bindingEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Term{}, false
	}
	return newTerm(entry.Type, entry.Value, entry.Datatype, entry.Lang)
}
