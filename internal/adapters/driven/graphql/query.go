package graphql

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// Query is a parsed GraphQL query document with a single query operation.
type Query struct {
	name string
	text string
}

// ParseQuery parses text and checks it holds exactly one query
// operation.
func ParseQuery(text string) (Query, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: text})
	if err != nil {
		return Query{}, fmt.Errorf("parse query: %w", err)
	}
	if len(doc.Operations) != 1 {
		return Query{}, fmt.Errorf("query document has %d operations, want 1", len(doc.Operations))
	}
	op := doc.Operations[0]
	if op.Operation != ast.Query {
		return Query{}, fmt.Errorf("operation %q is a %s, want query", op.Name, op.Operation)
	}
	return Query{name: op.Name, text: text}, nil
}

// MustParseQuery is like ParseQuery but panics on error.
func MustParseQuery(text string) Query {
	q, err := ParseQuery(text)
	if err != nil {
		panic(err)
	}
	return q
}

// Name returns the operation name.
func (q Query) Name() string { return q.name }

// String returns the query text.
func (q Query) String() string { return q.text }
