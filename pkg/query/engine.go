package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/ssargent/tabula/pkg/dataframe"
	"github.com/ssargent/tabula/pkg/index"
	"github.com/ssargent/tabula/pkg/logging"
	"github.com/ssargent/tabula/pkg/val"
)

// checkEvery is how many rows a scan reads between context checks.
const checkEvery = 1024

// SimpleQueryEngine answers equality queries from hash indexes where the
// column allows it and scans otherwise.
type SimpleQueryEngine struct {
	indexManager *index.IndexManager
}

// NewSimpleQueryEngine creates a new query engine. indexManager may be
// nil, in which case every query scans.
func NewSimpleQueryEngine(indexManager *index.IndexManager) *SimpleQueryEngine {
	return &SimpleQueryEngine{indexManager: indexManager}
}

// ExecuteQuery executes a single field query
func (qe *SimpleQueryEngine) ExecuteQuery(ctx context.Context, frameID string, df *dataframe.DataFrame, query FieldQuery) (QueryIterator, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	if query.Operator == "=" && qe.indexManager != nil && frameID != "" {
		rows, ok := qe.lookup(frameID, df, query)
		if ok {
			return newIterator(df, rows), nil
		}
	}

	rows, err := scan(ctx, df, query)
	if err != nil {
		return nil, err
	}
	return newIterator(df, rows), nil
}

// ExecuteRangeQuery executes a query bounded by two conditions on the same
// column, e.g. goals >= 10 and goals < 100
func (qe *SimpleQueryEngine) ExecuteRangeQuery(ctx context.Context, frameID string, df *dataframe.DataFrame, startQuery, endQuery FieldQuery) (QueryIterator, error) {
	if err := startQuery.Validate(); err != nil {
		return nil, fmt.Errorf("invalid start query: %w", err)
	}
	if err := endQuery.Validate(); err != nil {
		return nil, fmt.Errorf("invalid end query: %w", err)
	}
	if startQuery.Field != endQuery.Field {
		return nil, fmt.Errorf("%w: range query fields must match: %s != %s", ErrInvalidQuery, startQuery.Field, endQuery.Field)
	}

	rows, err := scan(ctx, df, startQuery, endQuery)
	if err != nil {
		return nil, err
	}
	return newIterator(df, rows), nil
}

// lookup answers an equality query from the column index. ok is false when
// the column cannot be indexed or the literal does not parse as its variant.
func (qe *SimpleQueryEngine) lookup(frameID string, df *dataframe.DataFrame, query FieldQuery) ([]int, bool) {
	idx, err := qe.indexManager.GetOrBuild(frameID, df, query.Field)
	if err != nil {
		if !errors.Is(err, dataframe.ErrHeaderNotFound) {
			logging.WithFrame(frameID).Debug("index unavailable, scanning", "column", query.Field, "error", err)
		}
		return nil, false
	}
	if df.Height() == 0 {
		return []int{}, true
	}
	lit, err := val.Parse(query.Value, idx.Kind())
	if err != nil {
		return []int{}, true
	}
	rows, err := idx.Lookup(lit)
	if err != nil {
		return nil, false
	}
	return rows, true
}

// Execute returns the rows of df matching every condition, in order.
func Execute(df *dataframe.DataFrame, queries ...FieldQuery) ([]int, error) {
	for _, q := range queries {
		if err := q.Validate(); err != nil {
			return nil, err
		}
	}
	return scan(context.Background(), df, queries...)
}

// Filter returns a new frame holding the rows of df matching every
// condition. The display mode is carried over.
func Filter(df *dataframe.DataFrame, queries ...FieldQuery) (*dataframe.DataFrame, error) {
	rows, err := Execute(df, queries...)
	if err != nil {
		return nil, err
	}
	return Select(df, rows)
}

// Select returns a new frame holding rows of df in the given order.
func Select(df *dataframe.DataFrame, rows []int) (*dataframe.DataFrame, error) {
	values := make([]val.Value, 0, len(rows)*df.Width())
	for _, r := range rows {
		row, ok := df.RowValues(r)
		if !ok {
			return nil, fmt.Errorf("%w: row %d of %d", dataframe.ErrDimensionMismatch, r, df.Height())
		}
		values = append(values, row...)
	}
	out, err := dataframe.New(df.Headers(), values, df.Width(), len(rows))
	if err != nil {
		return nil, err
	}
	out.SetDisplayMode(df.DisplayMode())
	return out, nil
}

func scan(ctx context.Context, df *dataframe.DataFrame, queries ...FieldQuery) ([]int, error) {
	cols := make([][]*val.Value, len(queries))
	for i, q := range queries {
		col, ok := df.Col(q.Field)
		if !ok {
			return nil, fmt.Errorf("%w: %s", dataframe.ErrHeaderNotFound, q.Field)
		}
		cols[i] = col
	}

	rows := []int{}
	for r := 0; r < df.Height(); r++ {
		if r%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		match := true
		for i := range queries {
			if !queries[i].Matches(*cols[i][r]) {
				match = false
				break
			}
		}
		if match {
			rows = append(rows, r)
		}
	}
	return rows, nil
}

// simpleIterator implements QueryIterator over matched rows
type simpleIterator struct {
	df    *dataframe.DataFrame
	rows  []int
	index int
}

func newIterator(df *dataframe.DataFrame, rows []int) *simpleIterator {
	return &simpleIterator{df: df, rows: rows}
}

func (it *simpleIterator) Next() bool {
	if it.index < len(it.rows) {
		it.index++
		return true
	}
	return false
}

func (it *simpleIterator) Result() QueryResult {
	if it.index > 0 && it.index <= len(it.rows) {
		row := it.rows[it.index-1]
		values, _ := it.df.RowValues(row)
		return QueryResult{Row: row, Values: values}
	}
	return QueryResult{}
}

func (it *simpleIterator) Close() error {
	return nil
}

// Collect drains it and returns the matched row indexes.
func Collect(it QueryIterator) ([]int, error) {
	rows := []int{}
	for it.Next() {
		rows = append(rows, it.Result().Row)
	}
	return rows, it.Close()
}
