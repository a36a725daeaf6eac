package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ssargent/tabula/pkg/dataframe"
	"github.com/ssargent/tabula/pkg/val"
)

// ErrInvalidQuery is returned for a malformed FieldQuery.
var ErrInvalidQuery = errors.New("invalid query")

// operators in match order: two-character forms first.
var operators = []string{">=", "<=", "!=", "=", ">", "<"}

// FieldQuery represents a single column condition
type FieldQuery struct {
	Field    string // Column name (e.g., "goals", "name")
	Operator string // Comparison operator: "=", "!=", ">", "<", ">=", "<="
	Value    string // Literal, read as the variant of each compared cell
}

// ParseFieldQuery reads a condition written as "<column><op><literal>",
// e.g. "goals>=100" or "nationality = Argentine". Surrounding spaces are
// trimmed from the column and the literal.
func ParseFieldQuery(expr string) (FieldQuery, error) {
	best, at := "", -1
	for _, op := range operators {
		if i := strings.Index(expr, op); i >= 0 && (at < 0 || i < at || i == at && len(op) > len(best)) {
			best, at = op, i
		}
	}
	if at < 0 {
		return FieldQuery{}, fmt.Errorf("%w: no operator in %q", ErrInvalidQuery, expr)
	}
	q := FieldQuery{
		Field:    strings.TrimSpace(expr[:at]),
		Operator: best,
		Value:    strings.TrimSpace(expr[at+len(best):]),
	}
	return q, q.Validate()
}

// Validate checks if the query is properly formed
func (q *FieldQuery) Validate() error {
	if q.Field == "" {
		return fmt.Errorf("%w: field name cannot be empty", ErrInvalidQuery)
	}
	if q.Operator == "" {
		return fmt.Errorf("%w: operator cannot be empty", ErrInvalidQuery)
	}
	for _, op := range operators {
		if q.Operator == op {
			return nil
		}
	}
	return fmt.Errorf("%w: invalid operator: %s", ErrInvalidQuery, q.Operator)
}

// String renders q in the form ParseFieldQuery reads.
func (q FieldQuery) String() string {
	return q.Field + " " + q.Operator + " " + q.Value
}

// Matches reports whether cell satisfies q. The literal is parsed as the
// cell's variant; a literal that does not parse as that variant never
// matches.
func (q *FieldQuery) Matches(cell val.Value) bool {
	lit, err := val.Parse(q.Value, cell.Kind())
	if err != nil {
		return false
	}
	c, ok := cell.Compare(lit)
	if !ok {
		return false
	}
	switch q.Operator {
	case "=":
		return c == 0
	case "!=":
		return c != 0
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	}
	return false
}

// QueryResult represents a single matching row
type QueryResult struct {
	Row    int         // Row index in the queried frame
	Values []val.Value // Row cells in header order
}

// QueryIterator provides streaming access to query results
type QueryIterator interface {
	Next() bool
	Result() QueryResult
	Close() error
}

// QueryEngine handles query execution against a frame
type QueryEngine interface {
	ExecuteQuery(ctx context.Context, frameID string, df *dataframe.DataFrame, query FieldQuery) (QueryIterator, error)
	ExecuteRangeQuery(ctx context.Context, frameID string, df *dataframe.DataFrame, startQuery, endQuery FieldQuery) (QueryIterator, error)
}
