// Package dataframe provides a column-major, fixed-dimension table of
// val.Value cells with header-based column and row access.
//
// A DataFrame is built once by a decoder (ReadString, ReadStringAs) or by
// New, and afterwards only changes through Loc and Apply. It is not safe
// for concurrent use; callers serialize access to a given instance.
package dataframe

import (
	"fmt"

	"github.com/ssargent/tabula/pkg/val"
)

// DataFrame stores width*height values in row order: data[i] belongs to
// column i%width and row i/width.
type DataFrame struct {
	headers []string
	data    []val.Value
	width   int
	height  int
	mode    val.DisplayMode
}

// New builds a DataFrame from headers and row-ordered values.
// It fails with ErrDimensionMismatch unless len(headers) == width and
// len(values) == width*height.
func New(headers []string, values []val.Value, width, height int) (*DataFrame, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: negative size %dx%d", ErrDimensionMismatch, width, height)
	}
	if len(headers) != width {
		return nil, fmt.Errorf("%w: %d headers for width %d", ErrDimensionMismatch, len(headers), width)
	}
	if len(values) != width*height {
		return nil, fmt.Errorf("%w: %d values for %dx%d", ErrDimensionMismatch, len(values), width, height)
	}
	return &DataFrame{
		headers: headers,
		data:    values,
		width:   width,
		height:  height,
	}, nil
}

// Headers returns a copy of the column names in order.
func (df *DataFrame) Headers() []string {
	out := make([]string, len(df.headers))
	copy(out, df.headers)
	return out
}

// Width returns the number of columns.
func (df *DataFrame) Width() int { return df.width }

// Height returns the number of rows.
func (df *DataFrame) Height() int { return df.height }

// DisplayMode returns how String cells are rendered.
func (df *DataFrame) DisplayMode() val.DisplayMode { return df.mode }

// SetDisplayMode changes how String cells are rendered.
func (df *DataFrame) SetDisplayMode(mode val.DisplayMode) { df.mode = mode }

// ColumnIndex returns the position of the first header equal to name.
func (df *DataFrame) ColumnIndex(name string) (int, bool) {
	for i, h := range df.headers {
		if h == name {
			return i, true
		}
	}
	return -1, false
}

// Col returns the cells of the named column in row order. An unknown
// column is not an error: it reports false.
func (df *DataFrame) Col(name string) ([]*val.Value, bool) {
	idx, ok := df.ColumnIndex(name)
	if !ok {
		return nil, false
	}
	out := make([]*val.Value, 0, df.height)
	for i := idx; i < len(df.data); i += df.width {
		out = append(out, &df.data[i])
	}
	return out, true
}

// ColumnKind returns the single variant the named column is stored as.
// A column whose cells share one variant keeps it. Int64 mixed with
// Float64, as inference yields for numeric columns, widens to Float64.
// Any other mix, and an empty column, reports String.
func (df *DataFrame) ColumnKind(name string) (val.Kind, bool) {
	cells, ok := df.Col(name)
	if !ok {
		return val.KindString, false
	}
	if len(cells) == 0 {
		return val.KindString, true
	}
	numeric := func(k val.Kind) bool { return k == val.KindInt64 || k == val.KindFloat64 }
	k := cells[0].Kind()
	for _, c := range cells[1:] {
		switch {
		case c.Kind() == k:
		case numeric(k) && numeric(c.Kind()):
			k = val.KindFloat64
		default:
			return val.KindString, true
		}
	}
	return k, true
}

// Row returns row idx keyed by header. It reports false when idx is out of
// range. With duplicate headers the last column wins.
func (df *DataFrame) Row(idx int) (map[string]*val.Value, bool) {
	if idx < 0 || idx >= df.height {
		return nil, false
	}
	out := make(map[string]*val.Value, df.width)
	start := idx * df.width
	for i, h := range df.headers {
		out[h] = &df.data[start+i]
	}
	return out, true
}

// RowValues returns row idx as values in header order.
func (df *DataFrame) RowValues(idx int) ([]val.Value, bool) {
	if idx < 0 || idx >= df.height {
		return nil, false
	}
	out := make([]val.Value, df.width)
	copy(out, df.data[idx*df.width:(idx+1)*df.width])
	return out, true
}

// Cell returns the value at row idx of the named column.
func (df *DataFrame) Cell(idx int, name string) (*val.Value, bool) {
	col, ok := df.ColumnIndex(name)
	if !ok || idx < 0 || idx >= df.height {
		return nil, false
	}
	return &df.data[idx*df.width+col], true
}

// Loc applies fn in place to every cell of the named column, in row order.
// An unknown column fails with ErrHeaderNotFound and leaves the frame
// untouched. The first error returned by fn stops the walk and is
// returned, wrapped with ErrOther when it matches no package error; rows
// already visited keep their new values.
func (df *DataFrame) Loc(name string, fn func(v *val.Value) error) error {
	idx, ok := df.ColumnIndex(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrHeaderNotFound, name)
	}
	for i := idx; i < len(df.data); i += df.width {
		if err := fn(&df.data[i]); err != nil {
			return fmt.Errorf("column %s row %d: %w", name, i/df.width, categorize(err))
		}
	}
	return nil
}

// Apply replaces every cell of the named column with fn's result. It has
// the same failure semantics as Loc.
func (df *DataFrame) Apply(name string, fn func(v val.Value) (val.Value, error)) error {
	return df.Loc(name, func(v *val.Value) error {
		out, err := fn(*v)
		if err != nil {
			return err
		}
		*v = out
		return nil
	})
}
