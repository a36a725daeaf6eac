package index

import (
	"fmt"
	"sync"

	"github.com/ssargent/tabula/pkg/dataframe"
	"github.com/ssargent/tabula/pkg/val"
)

// ColumnIndex maps the hash of each cell in one column to the rows that
// hold it. Only String and Usize columns can be indexed.
type ColumnIndex struct {
	column  string
	kind    val.Kind
	buckets map[uint64][]int
	values  []val.Value
}

// Build indexes column of df. Every cell must be hashable and of one
// variant.
func Build(df *dataframe.DataFrame, column string) (*ColumnIndex, error) {
	cells, ok := df.Col(column)
	if !ok {
		return nil, fmt.Errorf("%w: %s", dataframe.ErrHeaderNotFound, column)
	}

	idx := &ColumnIndex{
		column:  column,
		buckets: make(map[uint64][]int),
		values:  make([]val.Value, len(cells)),
	}
	for row, cell := range cells {
		if row == 0 {
			idx.kind = cell.Kind()
		} else if cell.Kind() != idx.kind {
			return nil, fmt.Errorf("column %s row %d: %w: mixed %s and %s", column, row, val.ErrIncompatibleType, idx.kind, cell.Kind())
		}
		h, err := cell.Hash()
		if err != nil {
			return nil, fmt.Errorf("column %s row %d: %w", column, row, err)
		}
		idx.buckets[h] = append(idx.buckets[h], row)
		idx.values[row] = *cell
	}
	return idx, nil
}

// Column returns the indexed column name.
func (idx *ColumnIndex) Column() string { return idx.column }

// Kind returns the variant of the indexed cells. It is meaningless for an
// index over an empty column.
func (idx *ColumnIndex) Kind() val.Kind { return idx.kind }

// Len returns the number of distinct keys.
func (idx *ColumnIndex) Len() int { return len(idx.buckets) }

// Lookup returns the rows whose cell equals v, in ascending order.
func (idx *ColumnIndex) Lookup(v val.Value) ([]int, error) {
	h, err := v.Hash()
	if err != nil {
		return nil, err
	}
	var rows []int
	for _, row := range idx.buckets[h] {
		if idx.values[row].Equal(v) {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// IndexManager caches column indexes per frame.
type IndexManager struct {
	indexes map[string]map[string]*ColumnIndex
	mutex   sync.RWMutex
}

// NewIndexManager creates a new index manager
func NewIndexManager() *IndexManager {
	return &IndexManager{indexes: make(map[string]map[string]*ColumnIndex)}
}

// GetOrBuild returns the cached index of column for frameID, building it
// from df on first use.
func (im *IndexManager) GetOrBuild(frameID string, df *dataframe.DataFrame, column string) (*ColumnIndex, error) {
	im.mutex.RLock()
	idx, ok := im.indexes[frameID][column]
	im.mutex.RUnlock()
	if ok {
		return idx, nil
	}

	idx, err := Build(df, column)
	if err != nil {
		return nil, err
	}

	im.mutex.Lock()
	defer im.mutex.Unlock()
	if cached, ok := im.indexes[frameID][column]; ok {
		return cached, nil
	}
	if im.indexes[frameID] == nil {
		im.indexes[frameID] = make(map[string]*ColumnIndex)
	}
	im.indexes[frameID][column] = idx
	return idx, nil
}

// Invalidate drops every cached index of frameID. Call it after a frame
// is mutated or deleted.
func (im *IndexManager) Invalidate(frameID string) {
	im.mutex.Lock()
	defer im.mutex.Unlock()
	delete(im.indexes, frameID)
}

// Columns returns the indexed column names of frameID.
func (im *IndexManager) Columns(frameID string) []string {
	im.mutex.RLock()
	defer im.mutex.RUnlock()
	out := make([]string, 0, len(im.indexes[frameID]))
	for c := range im.indexes[frameID] {
		out = append(out, c)
	}
	return out
}
