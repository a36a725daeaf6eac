package dataframe

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/ssargent/tabula/pkg/val"
)

// split is the raw shape of a delimited input: header cells plus every data
// cell flattened in row order.
type split struct {
	headers []string
	cells   []string
	width   int
	height  int
}

// splitInput breaks input on newlines and each line on commas. Blank lines
// are skipped and a trailing carriage return is dropped. Every data line
// must have as many cells as the header line.
func splitInput(input string) (*split, error) {
	s := &split{}
	for n, line := range strings.Split(input, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		cells := strings.Split(line, ",")
		if s.headers == nil {
			s.headers = cells
			s.width = len(cells)
			continue
		}
		if len(cells) != s.width {
			return nil, fmt.Errorf("%w: line %d has %d cells, want %d", ErrRaggedRow, n+1, len(cells), s.width)
		}
		s.cells = append(s.cells, cells...)
		s.height++
	}
	return s, nil
}

// ReadString decodes input inferring every cell's type with val.Infer.
func ReadString(input string) (*DataFrame, error) {
	s, err := splitInput(input)
	if err != nil {
		return nil, err
	}
	data := make([]val.Value, len(s.cells))
	for i, c := range s.cells {
		data[i] = val.Infer(c)
	}
	df, err := New(s.headers, data, s.width, s.height)
	if err != nil {
		return nil, err
	}
	if df.headers == nil {
		df.headers = []string{}
	}
	df.mode = val.DisplayRaw
	return df, nil
}

// Read consumes r entirely and decodes it like ReadString.
func Read(r io.Reader) (*DataFrame, error) {
	input, err := readAll(r)
	if err != nil {
		return nil, err
	}
	return ReadString(input)
}

// ReadCSV reads the file at path and decodes it like ReadString.
func ReadCSV(path string) (*DataFrame, error) {
	input, err := readPath(path)
	if err != nil {
		return nil, err
	}
	return ReadString(input)
}

// ReadFile reads name from fsys and decodes it like ReadString.
func ReadFile(fsys fs.FS, name string) (*DataFrame, error) {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return ReadString(string(b))
}

func readAll(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrIO, err)
	}
	return string(b), nil
}

func readPath(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrIO, err)
	}
	return string(b), nil
}
