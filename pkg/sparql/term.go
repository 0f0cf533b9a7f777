// Package sparql provides the data model for SPARQL SELECT results: RDF terms,
// result sets, and the error taxonomy shared by query executors.
package sparql

import (
	"github.com/cayleygraph/quad"
)

// TermType discriminates the kind of RDF term bound to a variable.
type TermType int

// Term types as they appear in SPARQL-results-JSON.
const (
	TermURI TermType = iota + 1
	TermLiteral
	TermBlankNode
)

// String returns the SPARQL JSON type token.
func (t TermType) String() string {
	switch t {
	case TermURI:
		return "uri"
	case TermLiteral:
		return "literal"
	case TermBlankNode:
		return "bnode"
	default:
		return "unknown"
	}
}

// parseTermType maps a SPARQL JSON "type" token to a TermType.
// "typed-literal" is the pre-recommendation spelling still emitted by some endpoints.
func parseTermType(s string) (TermType, bool) {
	switch s {
	case "uri":
		return TermURI, true
	case "literal", "typed-literal":
		return TermLiteral, true
	case "bnode":
		return TermBlankNode, true
	default:
		return 0, false
	}
}

// Term is a single RDF term bound to a variable in one solution row.
// Datatype and Language are only set on literals and never both.
type Term struct {
	Value    string
	Type     TermType
	Datatype string
	Language string
}

// IsLiteral reports whether the term is a literal.
func (t Term) IsLiteral() bool { return t.Type == TermLiteral }

// Quad converts the term to its cayley quad representation.
func (t Term) Quad() quad.Value {
	switch t.Type {
	case TermURI:
		return quad.IRI(t.Value)
	case TermBlankNode:
		return quad.BNode(t.Value)
	}
	switch {
	case t.Language != "":
		return quad.LangString{Value: quad.String(t.Value), Lang: t.Language}
	case t.Datatype != "":
		return quad.TypedString{Value: quad.String(t.Value), Type: quad.IRI(t.Datatype)}
	default:
		return quad.String(t.Value)
	}
}

// String renders the term in N-Triples notation.
func (t Term) String() string {
	return quad.StringOf(t.Quad())
}

// newTerm builds a term from one decoded binding entry, normalizing the
// literal-only attributes. The second result is false for unknown types.
func newTerm(typ, value, datatype, lang string) (Term, bool) {
	tt, ok := parseTermType(typ)
	if !ok {
		return Term{}, false
	}
	term := Term{Value: value, Type: tt}
	if tt != TermLiteral {
		return term, true
	}
	if lang != "" {
		term.Language = lang
	} else {
		term.Datatype = datatype
	}
	return term, true
}
