package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/tabula/pkg/dataframe"
	"github.com/ssargent/tabula/pkg/index"
	"github.com/ssargent/tabula/pkg/val"
)

const playersCSV = `name,nationality,xg,goals
Lionel Messi,Argentine,66.66,66
C. Ronaldo,Portugal,-0.69,3
Darwin Nunez,Uruguay,69.69,6969
M. Balotelli,Italy,8.88,888
Lautaro,Argentine,8.88,66
`

var playerFields = []dataframe.Field{
	{Name: "name", Type: "string"},
	{Name: "nationality", Type: "string"},
	{Name: "xg", Type: "float64"},
	{Name: "goals", Type: "uint"},
}

func untyped(t *testing.T) *dataframe.DataFrame {
	t.Helper()
	df, err := dataframe.ReadString(playersCSV)
	require.NoError(t, err)
	return df
}

func typed(t *testing.T) *dataframe.DataFrame {
	t.Helper()
	df, err := dataframe.ReadStringAs(playersCSV, playerFields)
	require.NoError(t, err)
	return df
}

func TestExecute(t *testing.T) {
	df := untyped(t)

	tests := []struct {
		name    string
		queries []FieldQuery
		want    []int
	}{
		{name: "equality", queries: []FieldQuery{{Field: "nationality", Operator: "=", Value: "Argentine"}}, want: []int{0, 4}},
		{name: "greater", queries: []FieldQuery{{Field: "goals", Operator: ">", Value: "100"}}, want: []int{2, 3}},
		{name: "float", queries: []FieldQuery{{Field: "xg", Operator: "<", Value: "9"}}, want: []int{1, 3, 4}},
		{
			name: "conjunction",
			queries: []FieldQuery{
				{Field: "xg", Operator: "=", Value: "8.88"},
				{Field: "goals", Operator: "<", Value: "100"},
			},
			want: []int{4},
		},
		{name: "no match", queries: []FieldQuery{{Field: "name", Operator: "=", Value: "Pele"}}, want: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Execute(df, tt.queries...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rows)
		})
	}

	_, err := Execute(df, FieldQuery{Field: "assists", Operator: "=", Value: "1"})
	assert.ErrorIs(t, err, dataframe.ErrHeaderNotFound)

	_, err = Execute(df, FieldQuery{Field: "goals", Operator: "~"})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestFilter(t *testing.T) {
	df := typed(t)

	out, err := Filter(df, FieldQuery{Field: "goals", Operator: "=", Value: "66"})
	require.NoError(t, err)

	assert.Equal(t, df.Headers(), out.Headers())
	assert.Equal(t, 2, out.Height())
	assert.Equal(t, val.DisplayQuoted, out.DisplayMode())
	cell, _ := out.Cell(1, "name")
	assert.Equal(t, "Lautaro", cell.String())

	_, err = Select(df, []int{9})
	assert.ErrorIs(t, err, dataframe.ErrDimensionMismatch)
}

func TestSimpleQueryEngine_IndexedEquality(t *testing.T) {
	im := index.NewIndexManager()
	engine := NewSimpleQueryEngine(im)
	df := typed(t)
	ctx := context.Background()

	it, err := engine.ExecuteQuery(ctx, "players", df, FieldQuery{Field: "nationality", Operator: "=", Value: "Argentine"})
	require.NoError(t, err)
	rows, err := Collect(it)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 4}, rows)
	assert.Equal(t, []string{"nationality"}, im.Columns("players"))

	it, err = engine.ExecuteQuery(ctx, "players", df, FieldQuery{Field: "goals", Operator: "=", Value: "888"})
	require.NoError(t, err)
	require.True(t, it.Next())
	res := it.Result()
	assert.Equal(t, 3, res.Row)
	assert.Equal(t, "M. Balotelli", res.Values[0].String())
	assert.False(t, it.Next())
	assert.Equal(t, QueryResult{}, it.Result())
	require.NoError(t, it.Close())

	// Literal that is not a Usize never matches.
	it, err = engine.ExecuteQuery(ctx, "players", df, FieldQuery{Field: "goals", Operator: "=", Value: "-1"})
	require.NoError(t, err)
	rows, _ = Collect(it)
	assert.Empty(t, rows)
}

func TestSimpleQueryEngine_ScanFallback(t *testing.T) {
	im := index.NewIndexManager()
	engine := NewSimpleQueryEngine(im)
	df := typed(t)
	ctx := context.Background()

	it, err := engine.ExecuteQuery(ctx, "players", df, FieldQuery{Field: "xg", Operator: "=", Value: "8.88"})
	require.NoError(t, err)
	rows, _ := Collect(it)
	assert.Equal(t, []int{3, 4}, rows)
	assert.Empty(t, im.Columns("players"))

	it, err = NewSimpleQueryEngine(nil).ExecuteQuery(ctx, "", df, FieldQuery{Field: "goals", Operator: ">=", Value: "888"})
	require.NoError(t, err)
	rows, _ = Collect(it)
	assert.Equal(t, []int{2, 3}, rows)

	_, err = engine.ExecuteQuery(ctx, "players", df, FieldQuery{Field: "missing", Operator: "=", Value: "1"})
	assert.ErrorIs(t, err, dataframe.ErrHeaderNotFound)
}

func TestSimpleQueryEngine_ExecuteRangeQuery(t *testing.T) {
	engine := NewSimpleQueryEngine(nil)
	df := untyped(t)
	ctx := context.Background()

	it, err := engine.ExecuteRangeQuery(ctx, "", df,
		FieldQuery{Field: "goals", Operator: ">=", Value: "66"},
		FieldQuery{Field: "goals", Operator: "<", Value: "1000"})
	require.NoError(t, err)
	rows, _ := Collect(it)
	assert.Equal(t, []int{0, 3, 4}, rows)

	_, err = engine.ExecuteRangeQuery(ctx, "", df,
		FieldQuery{Field: "goals", Operator: ">=", Value: "66"},
		FieldQuery{Field: "xg", Operator: "<", Value: "1"})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = engine.ExecuteRangeQuery(ctx, "", df, FieldQuery{}, FieldQuery{Field: "goals", Operator: "<", Value: "1"})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestSimpleQueryEngine_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSimpleQueryEngine(nil).ExecuteQuery(ctx, "", untyped(t), FieldQuery{Field: "goals", Operator: ">", Value: "1"})
	assert.ErrorIs(t, err, context.Canceled)
}
