package sqlexport

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ssargent/tabula/pkg/val"
)

// Dialect selects the SQL flavor of generated statements.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
	MySQL
)

// String returns the dialect name.
func (d Dialect) String() string {
	switch d {
	case SQLite:
		return "sqlite"
	case Postgres:
		return "postgres"
	case MySQL:
		return "mysql"
	default:
		return fmt.Sprintf("Dialect(%d)", int(d))
	}
}

// Driver returns the database/sql driver name registered for d.
func (d Dialect) Driver() string { return d.String() }

// ParseDialect returns the dialect named by s.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(s) {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	case "mysql", "mariadb":
		return MySQL, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDialect, s)
	}
}

// ColumnType returns the column type a variant is stored as. Values that
// do not fit a signed 64-bit column use the dialect's exact numeric type,
// or TEXT on SQLite.
func (d Dialect) ColumnType(k val.Kind) string {
	switch d {
	case Postgres:
		switch {
		case k == val.KindInt128 || k == val.KindUInt128:
			return "NUMERIC(39, 0)"
		case k == val.KindUsize || k == val.KindUInt64:
			return "NUMERIC(20, 0)"
		case k.IsSigned() || k.IsUnsigned():
			return "BIGINT"
		case k == val.KindFloat32:
			return "REAL"
		case k.IsFloat():
			return "DOUBLE PRECISION"
		}
		return "TEXT"

	case MySQL:
		switch {
		case k == val.KindInt128 || k == val.KindUInt128:
			return "DECIMAL(39, 0)"
		case k.IsUnsigned():
			return "BIGINT UNSIGNED"
		case k.IsSigned():
			return "BIGINT"
		case k == val.KindFloat32:
			return "FLOAT"
		case k.IsFloat():
			return "DOUBLE"
		}
		return "TEXT"

	default:
		switch {
		case k == val.KindInt128 || k == val.KindUInt128:
			return "TEXT"
		case k.IsSigned() || k.IsUnsigned():
			return "INTEGER"
		case k.IsFloat():
			return "REAL"
		}
		return "TEXT"
	}
}

// Quote returns name as a quoted identifier.
func (d Dialect) Quote(name string) string {
	if d == MySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Placeholder returns the bind parameter for the i-th argument, counting
// from 1.
func (d Dialect) Placeholder(i int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(i)
	}
	return "?"
}
