package sqlexport

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/ssargent/tabula/pkg/dataframe"
	"github.com/ssargent/tabula/pkg/val"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// Every pooled connection would get its own in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestColumnType(t *testing.T) {
	assert.Equal(t, "TEXT", ColumnType(val.KindString))
	assert.Equal(t, "INTEGER", ColumnType(val.KindUsize))
	assert.Equal(t, "INTEGER", ColumnType(val.KindInt8))
	assert.Equal(t, "REAL", ColumnType(val.KindFloat32))
	assert.Equal(t, "TEXT", ColumnType(val.KindInt128))
	assert.Equal(t, "TEXT", ColumnType(val.KindUInt128))
}

func TestCreateStatement(t *testing.T) {
	df, err := dataframe.ReadString("name,goals,xg\nSaka,12,9.5\n")
	require.NoError(t, err)

	assert.Equal(t,
		`CREATE TABLE "players" ("name" TEXT, "goals" INTEGER, "xg" REAL)`,
		CreateStatement("players", df))
	assert.Equal(t, `CREATE TABLE "a""b" ("name" TEXT, "goals" INTEGER, "xg" REAL)`,
		CreateStatement(`a"b`, df))
}

func TestExport(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	df, err := dataframe.ReadStringAs(
		"name,goals,xg\nSaka,12,9.5\nOdegaard,18,7.25\n",
		[]dataframe.Field{
			{Name: "name", Type: "string"},
			{Name: "goals", Type: "uint64"},
			{Name: "xg", Type: "float64"},
		},
		dataframe.WithExactTypes(),
	)
	require.NoError(t, err)

	require.NoError(t, Export(ctx, db, "players", df))

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM players`).Scan(&count))
	assert.Equal(t, 2, count)

	var name string
	var goals int64
	var xg float64
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT name, goals, xg FROM players WHERE name = ?`, "Saka").Scan(&name, &goals, &xg))
	assert.Equal(t, "Saka", name)
	assert.Equal(t, int64(12), goals)
	assert.Equal(t, 9.5, xg)

	var total int64
	require.NoError(t, db.QueryRowContext(ctx, `SELECT SUM(goals) FROM players`).Scan(&total))
	assert.Equal(t, int64(30), total)
}

func TestExport_ReplacesTable(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	first, err := dataframe.ReadString("a\n1\n2\n3\n")
	require.NoError(t, err)
	require.NoError(t, Export(ctx, db, "t", first))

	second, err := dataframe.ReadString("b\nx\n")
	require.NoError(t, err)
	require.NoError(t, Export(ctx, db, "t", second))

	var b string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT b FROM t`).Scan(&b))
	assert.Equal(t, "x", b)
}

func TestExport_HeaderOnly(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	df, err := dataframe.ReadString("a,b\n")
	require.NoError(t, err)
	require.NoError(t, Export(ctx, db, "empty", df))

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM empty`).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestExport_EmptyTableName(t *testing.T) {
	df, err := dataframe.ReadString("a\n1\n")
	require.NoError(t, err)
	assert.ErrorIs(t, Export(context.Background(), openDB(t), " ", df), ErrEmptyTable)
}

func TestExport_NoColumns(t *testing.T) {
	df, err := dataframe.ReadString("")
	require.NoError(t, err)
	assert.ErrorIs(t, Export(context.Background(), openDB(t), "t", df), ErrNoColumns)
}
