package dataframe

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/tabula/pkg/val"
)

var playerFields = []Field{
	{Name: "name", Type: "string"},
	{Name: "nationality", Type: "string"},
	{Name: "xg", Type: "float64"},
	{Name: "goals", Type: "uint"},
}

const shuffledCSV = `nationality,name,xg,goals
Argentine,Lionel Messi,66.66,66
Portugal,C. Ronaldo,-0.69,3
Uruguay,Darwin Nunez,69.69,6969
Italy,M. Balotelli,8.88,888
`

func TestReadStringAs_Projection(t *testing.T) {
	df, err := ReadStringAs(shuffledCSV, playerFields)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "nationality", "xg", "goals"}, df.Headers())
	assert.Equal(t, 4, df.Width())
	assert.Equal(t, 4, df.Height())
	assert.Equal(t, val.DisplayQuoted, df.DisplayMode())

	wantNames := []string{"Lionel Messi", "C. Ronaldo", "Darwin Nunez", "M. Balotelli"}
	for i, want := range wantNames {
		row, ok := df.Row(i)
		require.True(t, ok)
		assert.Equal(t, want, row["name"].String())
	}

	goals, _ := df.Col("goals")
	assert.True(t, goals[3].Equal(val.FromUsize(888)))
	assert.True(t, goals[3].IsUsize())

	xg, _ := df.Col("xg")
	assert.True(t, xg[1].Equal(val.FromFloat64(-0.69)))
}

func TestReadStringAs_DropsMissingFields(t *testing.T) {
	fields := []Field{
		{Name: "goals", Type: "uint"},
		{Name: "assists", Type: "uint"},
		{Name: "name", Type: "string"},
	}
	df, err := ReadStringAs(shuffledCSV, fields)
	require.NoError(t, err)

	assert.Equal(t, []string{"goals", "name"}, df.Headers())
	row, ok := df.Row(2)
	require.True(t, ok)
	assert.Equal(t, "6969", row["goals"].String())
	assert.Equal(t, "Darwin Nunez", row["name"].String())
}

func TestReadStringAs_InvalidDataType(t *testing.T) {
	fields := []Field{{Name: "goals", Type: "bool"}}

	_, err := ReadStringAs(shuffledCSV, fields)
	require.ErrorIs(t, err, ErrInvalidDataType)
	assert.Contains(t, err.Error(), "bool")

	_, err = ReadStringAs("goals\n", fields)
	assert.ErrorIs(t, err, ErrInvalidDataType)
}

func TestReadStringAs_ParseFailure(t *testing.T) {
	fields := []Field{{Name: "xg", Type: "uint"}}

	_, err := ReadStringAs(shuffledCSV, fields)
	require.ErrorIs(t, err, ErrParse)
	assert.Contains(t, err.Error(), "row 0 column xg")
}

func TestReadStringAs_NormalizesIntegers(t *testing.T) {
	fields := []Field{{Name: "n", Type: "int8"}, {Name: "f", Type: "float32"}}

	df, err := ReadStringAs("n,f\n300,2\n", fields)
	require.NoError(t, err)
	row, _ := df.Row(0)
	assert.Equal(t, val.KindUsize, row["n"].Kind())
	assert.Equal(t, val.KindUsize, row["f"].Kind())

	_, err = ReadStringAs("n,f\n-1,2\n", fields)
	assert.ErrorIs(t, err, ErrParse)
}

func TestReadStringAs_ExactTypes(t *testing.T) {
	fields := []Field{{Name: "n", Type: "int8"}, {Name: "f", Type: "float32"}, {Name: "s", Type: "string"}}

	df, err := ReadStringAs("n,f,s\n-3,2.5,x\n", fields, WithExactTypes(), WithDisplayMode(val.DisplayRaw))
	require.NoError(t, err)
	row, _ := df.Row(0)
	assert.Equal(t, val.KindInt8, row["n"].Kind())
	assert.Equal(t, val.KindFloat32, row["f"].Kind())
	assert.Equal(t, "x", row["s"].Format(df.DisplayMode()))

	_, err = ReadStringAs("n\n300\n", fields[:1], WithExactTypes())
	assert.ErrorIs(t, err, ErrParse)
}

func TestReadStringAs_Ragged(t *testing.T) {
	_, err := ReadStringAs("name,goals\nx\n", playerFields)
	assert.ErrorIs(t, err, ErrRaggedRow)
}

func TestReadCSVAs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "players.csv")
	require.NoError(t, os.WriteFile(path, []byte(shuffledCSV), 0600))

	df, err := ReadCSVAs(path, playerFields)
	require.NoError(t, err)
	assert.Equal(t, 4, df.Height())
	assert.Contains(t, df.String(), `"Lionel Messi"`)

	_, err = ReadCSVAs(path+".missing", playerFields)
	assert.ErrorIs(t, err, ErrIO)

	df, err = ReadAs(strings.NewReader(shuffledCSV), playerFields)
	require.NoError(t, err)
	assert.Equal(t, "name", df.Headers()[0])
}
