// Package storage persists DataFrame snapshots in a pebble-backed catalog.
// Frames are keyed by KSUID, so listing the catalog yields frames in
// creation order.
package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/tabula/pkg/codec"
	"github.com/ssargent/tabula/pkg/dataframe"
	"github.com/ssargent/tabula/pkg/logging"
)

// ErrFrameNotFound is returned for an id with no stored frame.
var ErrFrameNotFound = errors.New("frame not found")

var (
	framePrefix = []byte("frame/")
	namePrefix  = []byte("name/")
)

// FrameInfo describes a stored frame without decoding its cells.
type FrameInfo struct {
	ID         ksuid.KSUID `json:"id"`
	Name       string      `json:"name"`
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	Size       int         `json:"size"`
	Compressed bool        `json:"compressed"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Options configures a Catalog.
type Options struct {
	// Compress zstd-compresses new snapshots.
	Compress bool
	// InMemory keeps the catalog in memory; the path is ignored.
	InMemory bool
}

// Catalog stores frame snapshots in pebble.
type Catalog struct {
	db    *pebble.DB
	codec *codec.FrameCodec
}

// Open opens or creates the catalog at path.
func Open(path string, opts Options) (*Catalog, error) {
	po := &pebble.Options{}
	if opts.InMemory {
		po.FS = vfs.NewMem()
	}
	db, err := pebble.Open(path, po)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	var copts []codec.Option
	if opts.Compress {
		copts = append(copts, codec.WithCompression())
	}
	return &Catalog{db: db, codec: codec.NewFrameCodec(copts...)}, nil
}

// Save stores df under a new id.
func (c *Catalog) Save(name string, df *dataframe.DataFrame) (ksuid.KSUID, error) {
	id := ksuid.New()
	if err := c.put(id, name, df); err != nil {
		return ksuid.Nil, err
	}
	logging.WithFrame(id.String()).Debug("frame saved", "name", name, "rows", df.Height())
	return id, nil
}

// Update replaces the snapshot stored under id.
func (c *Catalog) Update(id ksuid.KSUID, df *dataframe.DataFrame) error {
	name, err := c.name(id)
	if err != nil {
		return err
	}
	return c.put(id, name, df)
}

func (c *Catalog) put(id ksuid.KSUID, name string, df *dataframe.DataFrame) error {
	data, err := c.codec.Encode(df)
	if err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}

	b := c.db.NewBatch()
	defer b.Close()
	if err := b.Set(frameKey(id), data, nil); err != nil {
		return err
	}
	if err := b.Set(nameKey(id), []byte(name), nil); err != nil {
		return err
	}
	return b.Commit(pebble.Sync)
}

// Load decodes the frame stored under id.
func (c *Catalog) Load(id ksuid.KSUID) (*dataframe.DataFrame, error) {
	data, err := c.get(frameKey(id))
	if err != nil {
		return nil, err
	}
	df, err := c.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("frame %s: %w", id, err)
	}
	return df, nil
}

// Info returns the metadata of the frame stored under id.
func (c *Catalog) Info(id ksuid.KSUID) (*FrameInfo, error) {
	data, err := c.get(frameKey(id))
	if err != nil {
		return nil, err
	}
	name, err := c.name(id)
	if err != nil {
		return nil, err
	}
	return info(id, name, data)
}

// Delete removes the frame stored under id.
func (c *Catalog) Delete(id ksuid.KSUID) error {
	if _, err := c.get(frameKey(id)); err != nil {
		return err
	}
	b := c.db.NewBatch()
	defer b.Close()
	if err := b.Delete(frameKey(id), nil); err != nil {
		return err
	}
	if err := b.Delete(nameKey(id), nil); err != nil {
		return err
	}
	return b.Commit(pebble.Sync)
}

// List returns every stored frame in creation order.
func (c *Catalog) List() ([]FrameInfo, error) {
	iter, err := c.db.NewIter(&pebble.IterOptions{
		LowerBound: framePrefix,
		UpperBound: prefixEnd(framePrefix),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	out := []FrameInfo{}
	for iter.First(); iter.Valid(); iter.Next() {
		id, err := ksuid.FromBytes(iter.Key()[len(framePrefix):])
		if err != nil {
			return nil, fmt.Errorf("bad catalog key: %w", err)
		}
		name, err := c.name(id)
		if err != nil {
			return nil, err
		}
		fi, err := info(id, name, iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, *fi)
	}
	return out, iter.Error()
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) get(key []byte) ([]byte, error) {
	data, closer, err := c.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrFrameNotFound, keyID(key))
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	return append([]byte(nil), data...), nil
}

func (c *Catalog) name(id ksuid.KSUID) (string, error) {
	data, err := c.get(nameKey(id))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func info(id ksuid.KSUID, name string, data []byte) (*FrameInfo, error) {
	h, err := codec.ReadHeader(data)
	if err != nil {
		return nil, fmt.Errorf("frame %s: %w", id, err)
	}
	return &FrameInfo{
		ID:         id,
		Name:       name,
		Width:      int(h.Width),
		Height:     int(h.Height),
		Size:       len(data),
		Compressed: h.Compressed(),
		CreatedAt:  id.Time(),
	}, nil
}

func frameKey(id ksuid.KSUID) []byte {
	return append(append([]byte(nil), framePrefix...), id.Bytes()...)
}

func nameKey(id ksuid.KSUID) []byte {
	return append(append([]byte(nil), namePrefix...), id.Bytes()...)
}

func keyID(key []byte) string {
	for _, p := range [][]byte{framePrefix, namePrefix} {
		if len(key) > len(p) && string(key[:len(p)]) == string(p) {
			if id, err := ksuid.FromBytes(key[len(p):]); err == nil {
				return id.String()
			}
		}
	}
	return string(key)
}

// prefixEnd returns the smallest key greater than every key with prefix p.
func prefixEnd(p []byte) []byte {
	end := append([]byte(nil), p...)
	end[len(end)-1]++
	return end
}
