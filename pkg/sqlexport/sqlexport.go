// Package sqlexport writes DataFrames into SQL tables through
// database/sql. Statements are rendered for SQLite, PostgreSQL or MySQL;
// the package-level helpers use SQLite.
package sqlexport

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ssargent/tabula/pkg/dataframe"
	"github.com/ssargent/tabula/pkg/logging"
	"github.com/ssargent/tabula/pkg/val"
)

var (
	// ErrEmptyTable is returned when the target table name is blank.
	ErrEmptyTable = errors.New("table name is empty")
	// ErrNoColumns is returned for a frame without headers.
	ErrNoColumns = errors.New("frame has no columns")
	// ErrUnknownDialect is returned by ParseDialect.
	ErrUnknownDialect = errors.New("unknown sql dialect")
)

// ColumnType returns the SQLite column type a variant is stored as.
func ColumnType(k val.Kind) string { return SQLite.ColumnType(k) }

// CreateStatement returns the SQLite CREATE TABLE statement for df.
func CreateStatement(table string, df *dataframe.DataFrame) string {
	return SQLite.CreateStatement(table, df)
}

// CreateStatement returns the CREATE TABLE statement for df. Column types
// follow dataframe.ColumnKind.
func (d Dialect) CreateStatement(table string, df *dataframe.DataFrame) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (", d.Quote(table))
	for i, h := range df.Headers() {
		if i > 0 {
			b.WriteString(", ")
		}
		k, _ := df.ColumnKind(h)
		fmt.Fprintf(&b, "%s %s", d.Quote(h), d.ColumnType(k))
	}
	b.WriteString(")")
	return b.String()
}

// InsertStatement returns the parameterized single-row INSERT for a table
// of width columns.
func (d Dialect) InsertStatement(table string, width int) string {
	marks := make([]string, width)
	for i := range marks {
		marks[i] = d.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s VALUES (%s)", d.Quote(table), strings.Join(marks, ", "))
}

// Option configures Export.
type Option func(*exportOptions)

type exportOptions struct {
	dialect Dialect
}

// WithDialect renders statements for d instead of SQLite.
func WithDialect(d Dialect) Option {
	return func(o *exportOptions) { o.dialect = d }
}

// Export creates table and inserts every row of df in one transaction.
// An existing table with the same name is replaced. MySQL commits DDL
// implicitly, so there only the inserts are atomic.
func Export(ctx context.Context, db *sql.DB, table string, df *dataframe.DataFrame, opts ...Option) error {
	o := exportOptions{dialect: SQLite}
	for _, opt := range opts {
		opt(&o)
	}
	d := o.dialect

	if strings.TrimSpace(table) == "" {
		return ErrEmptyTable
	}
	if df.Width() == 0 {
		return ErrNoColumns
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+d.Quote(table)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, d.CreateStatement(table, df)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}

	if df.Height() > 0 {
		stmt, err := tx.PrepareContext(ctx, d.InsertStatement(table, df.Width()))
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		args := make([]any, df.Width())
		for r := 0; r < df.Height(); r++ {
			row, _ := df.RowValues(r)
			for i, v := range row {
				args[i] = sqlValue(v)
			}
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return fmt.Errorf("failed to insert row %d: %w", r, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit export: %w", err)
	}
	logging.Info("exported frame", "dialect", d.String(), "table", table, "rows", df.Height(), "columns", df.Width())
	return nil
}

// sqlValue converts v into a driver argument. Unsigned values above
// math.MaxInt64 and 128-bit integers are bound as their decimal text. The
// exact numeric columns of PostgreSQL and MySQL keep them whole; a SQLite
// INTEGER column stores the former as REAL.
func sqlValue(v val.Value) any {
	switch k := v.Kind(); {
	case k == val.KindString:
		s, _ := v.AsString()
		return s
	case k == val.KindInt128 || k == val.KindUInt128:
		return v.Format(val.DisplayRaw)
	case k.IsSigned():
		n, _ := v.Int()
		return n
	case k.IsUnsigned():
		n, _ := v.Uint()
		if n > math.MaxInt64 {
			return v.Format(val.DisplayRaw)
		}
		return int64(n)
	default:
		f, _ := v.Float()
		return f
	}
}
