package index

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/tabula/pkg/dataframe"
	"github.com/ssargent/tabula/pkg/val"
)

var playerFields = []dataframe.Field{
	{Name: "name", Type: "string"},
	{Name: "nationality", Type: "string"},
	{Name: "xg", Type: "float64"},
	{Name: "goals", Type: "uint"},
}

const playersCSV = `name,nationality,xg,goals
Lionel Messi,Argentine,66.66,66
C. Ronaldo,Portugal,-0.69,3
Darwin Nunez,Uruguay,69.69,6969
Lautaro,Argentine,8.88,66
`

func typedPlayers(t *testing.T) *dataframe.DataFrame {
	t.Helper()
	df, err := dataframe.ReadStringAs(playersCSV, playerFields)
	require.NoError(t, err)
	return df
}

func TestBuild_Lookup(t *testing.T) {
	df := typedPlayers(t)

	idx, err := Build(df, "nationality")
	require.NoError(t, err)
	assert.Equal(t, "nationality", idx.Column())
	assert.Equal(t, val.KindString, idx.Kind())
	assert.Equal(t, 3, idx.Len())

	rows, err := idx.Lookup(val.FromString("Argentine"))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3}, rows)

	rows, err = idx.Lookup(val.FromString("France"))
	require.NoError(t, err)
	assert.Empty(t, rows)

	goals, err := Build(df, "goals")
	require.NoError(t, err)
	rows, err = goals.Lookup(val.FromUsize(66))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3}, rows)

	_, err = goals.Lookup(val.FromFloat64(66))
	assert.ErrorIs(t, err, val.ErrUnhashable)
}

func TestBuild_Errors(t *testing.T) {
	df := typedPlayers(t)

	_, err := Build(df, "xg")
	assert.ErrorIs(t, err, val.ErrUnhashable)

	_, err = Build(df, "missing")
	assert.ErrorIs(t, err, dataframe.ErrHeaderNotFound)

	untyped, err := dataframe.ReadString("a\n1\n2\n")
	require.NoError(t, err)
	_, err = Build(untyped, "a")
	assert.ErrorIs(t, err, val.ErrUnhashable)

	mixed, err := dataframe.New([]string{"a"}, []val.Value{val.FromString("x"), val.FromUsize(1)}, 1, 2)
	require.NoError(t, err)
	_, err = Build(mixed, "a")
	assert.ErrorIs(t, err, val.ErrIncompatibleType)
}

func TestIndexManager_GetOrBuild(t *testing.T) {
	im := NewIndexManager()
	df := typedPlayers(t)

	first, err := im.GetOrBuild("frame-1", df, "name")
	require.NoError(t, err)
	second, err := im.GetOrBuild("frame-1", df, "name")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, []string{"name"}, im.Columns("frame-1"))

	other, err := im.GetOrBuild("frame-2", df, "name")
	require.NoError(t, err)
	assert.NotSame(t, first, other)

	im.Invalidate("frame-1")
	assert.Empty(t, im.Columns("frame-1"))
	rebuilt, err := im.GetOrBuild("frame-1", df, "name")
	require.NoError(t, err)
	assert.NotSame(t, first, rebuilt)

	_, err = im.GetOrBuild("frame-1", df, "xg")
	assert.ErrorIs(t, err, val.ErrUnhashable)
	assert.Equal(t, []string{"name"}, im.Columns("frame-1"))
}

func TestIndexManager_Concurrent(t *testing.T) {
	im := NewIndexManager()
	df := typedPlayers(t)

	var wg sync.WaitGroup
	results := make([]*ColumnIndex, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			idx, err := im.GetOrBuild("frame", df, "nationality")
			if err == nil {
				results[i] = idx
			}
		}(i)
	}
	wg.Wait()

	for _, idx := range results {
		assert.Same(t, results[0], idx)
	}
}
