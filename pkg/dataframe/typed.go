package dataframe

import (
	"fmt"
	"io"

	"github.com/ssargent/tabula/pkg/val"
)

// Field binds a CSV column name to the Go type its cells decode into.
// Generated loaders carry a []Field literal built from a struct declaration.
type Field struct {
	Name string
	Type string
}

type decodeOptions struct {
	exact bool
	mode  val.DisplayMode
}

// Option configures a schema-driven decode.
type Option func(*decodeOptions)

// WithExactTypes decodes each field into the variant matching its declared
// width and sign (val.ParseExact) instead of the normalizing table.
func WithExactTypes() Option {
	return func(o *decodeOptions) { o.exact = true }
}

// WithDisplayMode overrides the quoted rendering of schema-driven frames.
func WithDisplayMode(mode val.DisplayMode) Option {
	return func(o *decodeOptions) { o.mode = mode }
}

// ReadStringAs decodes input against fields. Columns are selected by name
// and reordered to field order; fields absent from the header are dropped.
// Every selected cell is parsed as its field's declared type and the first
// unsupported type or unparsable cell fails the whole decode. The result's
// headers are the kept field names.
func ReadStringAs(input string, fields []Field, opts ...Option) (*DataFrame, error) {
	o := decodeOptions{mode: val.DisplayQuoted}
	for _, opt := range opts {
		opt(&o)
	}
	parse, supported := val.ParseDeclared, val.NormalizedKind
	if o.exact {
		parse, supported = val.ParseExact, val.DeclaredKind
	}

	s, err := splitInput(input)
	if err != nil {
		return nil, err
	}

	kept, positions := project(s.headers, fields)
	for _, f := range kept {
		if _, ok := supported(f.Type); !ok {
			return nil, fmt.Errorf("field %s: %w: %s", f.Name, ErrInvalidDataType, f.Type)
		}
	}

	data := make([]val.Value, 0, len(kept)*s.height)
	for r := 0; r < s.height; r++ {
		for i, p := range positions {
			v, err := parse(s.cells[r*s.width+p], kept[i].Type)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", r, kept[i].Name, err)
			}
			data = append(data, v)
		}
	}

	headers := make([]string, len(kept))
	for i, f := range kept {
		headers[i] = f.Name
	}
	df, err := New(headers, data, len(kept), s.height)
	if err != nil {
		return nil, err
	}
	df.mode = o.mode
	return df, nil
}

// ReadAs consumes r entirely and decodes it like ReadStringAs.
func ReadAs(r io.Reader, fields []Field, opts ...Option) (*DataFrame, error) {
	input, err := readAll(r)
	if err != nil {
		return nil, err
	}
	return ReadStringAs(input, fields, opts...)
}

// ReadCSVAs reads the file at path and decodes it like ReadStringAs.
func ReadCSVAs(path string, fields []Field, opts ...Option) (*DataFrame, error) {
	input, err := readPath(path)
	if err != nil {
		return nil, err
	}
	return ReadStringAs(input, fields, opts...)
}

// project returns the fields found in headers, in field order, and the
// header position of each.
func project(headers []string, fields []Field) ([]Field, []int) {
	kept := make([]Field, 0, len(fields))
	positions := make([]int, 0, len(fields))
	for _, f := range fields {
		for i, h := range headers {
			if h == f.Name {
				kept = append(kept, f)
				positions = append(positions, i)
				break
			}
		}
	}
	return kept, positions
}
