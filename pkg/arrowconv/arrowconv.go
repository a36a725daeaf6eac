// Package arrowconv converts DataFrames to Apache Arrow records and
// Parquet files and back.
//
// Each column maps to the Arrow type of its cells' variant. Variants
// Arrow has no exact counterpart for are carried in a wider or textual
// type and restored on the way back from the "tabula.kinds" schema
// metadata: Isize and Usize travel as int64 and uint64, UInt128 as its
// decimal text, Int128 as decimal128(38, 0).
package arrowconv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/ssargent/tabula/pkg/dataframe"
	"github.com/ssargent/tabula/pkg/val"
)

const (
	kindsKey   = "tabula.kinds"
	displayKey = "tabula.display"
)

// ErrUnsupportedType is returned for an Arrow column with no Value variant.
var ErrUnsupportedType = errors.New("unsupported arrow type")

func arrowType(k val.Kind) arrow.DataType {
	switch k {
	case val.KindIsize, val.KindInt64:
		return arrow.PrimitiveTypes.Int64
	case val.KindUsize, val.KindUInt64:
		return arrow.PrimitiveTypes.Uint64
	case val.KindInt32:
		return arrow.PrimitiveTypes.Int32
	case val.KindUInt32:
		return arrow.PrimitiveTypes.Uint32
	case val.KindInt16:
		return arrow.PrimitiveTypes.Int16
	case val.KindUInt16:
		return arrow.PrimitiveTypes.Uint16
	case val.KindInt8:
		return arrow.PrimitiveTypes.Int8
	case val.KindUInt8:
		return arrow.PrimitiveTypes.Uint8
	case val.KindFloat64:
		return arrow.PrimitiveTypes.Float64
	case val.KindFloat32:
		return arrow.PrimitiveTypes.Float32
	case val.KindInt128:
		return &arrow.Decimal128Type{Precision: 38, Scale: 0}
	default:
		return arrow.BinaryTypes.String
	}
}

// Schema returns the Arrow schema df converts to.
func Schema(df *dataframe.DataFrame) *arrow.Schema {
	headers := df.Headers()
	fields := make([]arrow.Field, len(headers))
	kinds := make([]string, len(headers))
	for i, h := range headers {
		k, _ := df.ColumnKind(h)
		kinds[i] = k.String()
		fields[i] = arrow.Field{Name: h, Type: arrowType(k)}
	}
	md := arrow.NewMetadata(
		[]string{kindsKey, displayKey},
		[]string{strings.Join(kinds, ","), df.DisplayMode().String()},
	)
	return arrow.NewSchema(fields, &md)
}

// ToRecord converts df into a single Arrow record. The caller must
// Release it.
func ToRecord(df *dataframe.DataFrame) (arrow.Record, error) {
	schema := Schema(df)
	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()

	for i, h := range df.Headers() {
		cells, _ := df.Col(h)
		fb := b.Field(i)
		fb.Reserve(len(cells))
		for _, c := range cells {
			if err := appendCell(fb, *c); err != nil {
				return nil, fmt.Errorf("column %s: %w", h, err)
			}
		}
	}
	return b.NewRecord(), nil
}

func appendCell(b array.Builder, v val.Value) error {
	switch bb := b.(type) {
	case *array.StringBuilder:
		bb.Append(v.Format(val.DisplayRaw))
	case *array.Int64Builder:
		n, err := v.Int()
		if err != nil {
			return err
		}
		bb.Append(n)
	case *array.Uint64Builder:
		n, err := v.Uint()
		if err != nil {
			return err
		}
		bb.Append(n)
	case *array.Int32Builder:
		n, _ := v.Int()
		bb.Append(int32(n))
	case *array.Uint32Builder:
		n, _ := v.Uint()
		bb.Append(uint32(n))
	case *array.Int16Builder:
		n, _ := v.Int()
		bb.Append(int16(n))
	case *array.Uint16Builder:
		n, _ := v.Uint()
		bb.Append(uint16(n))
	case *array.Int8Builder:
		n, _ := v.Int()
		bb.Append(int8(n))
	case *array.Uint8Builder:
		n, _ := v.Uint()
		bb.Append(uint8(n))
	case *array.Float64Builder:
		f, err := v.Float()
		if err != nil {
			n, ierr := v.Int()
			if ierr != nil {
				return err
			}
			f = float64(n)
		}
		bb.Append(f)
	case *array.Float32Builder:
		f, _ := v.Float()
		bb.Append(float32(f))
	case *array.Decimal128Builder:
		n, err := v.AsInt128()
		if err != nil {
			return err
		}
		bb.Append(n)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, b.Type())
	}
	return nil
}

// FromRecord converts an Arrow record into a DataFrame. Null cells become
// empty Strings.
func FromRecord(rec arrow.Record) (*dataframe.DataFrame, error) {
	return fromColumns(rec.Schema(), int(rec.NumRows()), func(c int) []arrow.Array {
		return []arrow.Array{rec.Column(c)}
	})
}

// FromTable converts an Arrow table into a DataFrame.
func FromTable(tbl arrow.Table) (*dataframe.DataFrame, error) {
	return fromColumns(tbl.Schema(), int(tbl.NumRows()), func(c int) []arrow.Array {
		return tbl.Column(c).Data().Chunks()
	})
}

func fromColumns(schema *arrow.Schema, height int, chunks func(int) []arrow.Array) (*dataframe.DataFrame, error) {
	fields := schema.Fields()
	kinds := storedKinds(schema, len(fields))

	width := len(fields)
	headers := make([]string, width)
	values := make([]val.Value, width*height)
	for c, f := range fields {
		headers[c] = f.Name
		if dt, ok := f.Type.(*arrow.Decimal128Type); ok && dt.Scale != 0 {
			return nil, fmt.Errorf("column %s: %w: %s", f.Name, ErrUnsupportedType, f.Type)
		}
		row := 0
		for _, arr := range chunks(c) {
			for i := 0; i < arr.Len(); i++ {
				v, err := cellAt(arr, i, kinds[c])
				if err != nil {
					return nil, fmt.Errorf("column %s row %d: %w", f.Name, row, err)
				}
				values[row*width+c] = v
				row++
			}
		}
	}

	df, err := dataframe.New(headers, values, width, height)
	if err != nil {
		return nil, err
	}
	if i := schema.Metadata().FindKey(displayKey); i >= 0 {
		if mode, err := val.ParseDisplayMode(schema.Metadata().Values()[i]); err == nil {
			df.SetDisplayMode(mode)
		}
	}
	return df, nil
}

// storedKinds reads the per-column variants written by Schema. Columns
// without a stored variant get -1 and keep their natural mapping.
func storedKinds(schema *arrow.Schema, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = -1
	}
	i := schema.Metadata().FindKey(kindsKey)
	if i < 0 {
		return out
	}
	names := strings.Split(schema.Metadata().Values()[i], ",")
	if len(names) != n {
		return out
	}
	for c, name := range names {
		if k, ok := val.ParseKind(name); ok {
			out[c] = int(k)
		}
	}
	return out
}

func cellAt(arr arrow.Array, i int, stored int) (val.Value, error) {
	if arr.IsNull(i) {
		return val.FromString(""), nil
	}
	switch a := arr.(type) {
	case *array.String:
		if stored == int(val.KindUInt128) {
			return val.Parse(a.Value(i), val.KindUInt128)
		}
		return val.FromString(a.Value(i)), nil
	case *array.LargeString:
		return val.FromString(a.Value(i)), nil
	case *array.Int64:
		if stored == int(val.KindIsize) {
			return val.FromIsize(int(a.Value(i))), nil
		}
		return val.FromInt64(a.Value(i)), nil
	case *array.Uint64:
		if stored == int(val.KindUsize) {
			return val.FromUsize(uint(a.Value(i))), nil
		}
		return val.FromUint64(a.Value(i)), nil
	case *array.Int32:
		return val.FromInt32(a.Value(i)), nil
	case *array.Uint32:
		return val.FromUint32(a.Value(i)), nil
	case *array.Int16:
		return val.FromInt16(a.Value(i)), nil
	case *array.Uint16:
		return val.FromUint16(a.Value(i)), nil
	case *array.Int8:
		return val.FromInt8(a.Value(i)), nil
	case *array.Uint8:
		return val.FromUint8(a.Value(i)), nil
	case *array.Float64:
		return val.FromFloat64(a.Value(i)), nil
	case *array.Float32:
		return val.FromFloat32(a.Value(i)), nil
	case *array.Decimal128:
		return val.FromInt128(a.Value(i)), nil
	default:
		return val.Value{}, fmt.Errorf("%w: %s", ErrUnsupportedType, arr.DataType())
	}
}

// WriteParquet writes df to a Snappy-compressed Parquet file at path.
func WriteParquet(df *dataframe.DataFrame, path string) error {
	rec, err := ToRecord(df)
	if err != nil {
		return err
	}
	defer rec.Release()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer f.Close()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	w, err := pqarrow.NewFileWriter(rec.Schema(), f, props, arrowProps)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := w.Write(rec); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write parquet record: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

func openParquet(path string) (*pqarrow.FileReader, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	pf, err := file.NewParquetReader(f, file.WithReadProps(&parquet.ReaderProperties{}))
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("failed to create parquet reader: %w", err)
	}
	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, memory.NewGoAllocator())
	if err != nil {
		pf.Close()
		f.Close()
		return nil, nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}
	return fr, func() {
		pf.Close()
		f.Close()
	}, nil
}

// ReadParquet loads the Parquet file at path into a DataFrame.
func ReadParquet(ctx context.Context, path string) (*dataframe.DataFrame, error) {
	fr, closeFn, err := openParquet(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	tbl, err := fr.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	defer tbl.Release()

	return FromTable(tbl)
}

// ReadParquetSchema returns the Arrow schema of the Parquet file at path.
func ReadParquetSchema(path string) (*arrow.Schema, error) {
	fr, closeFn, err := openParquet(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	return fr.Schema()
}
