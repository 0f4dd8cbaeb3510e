package snapshot

import (
	"bytes"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// Version is the frame version written by Encode.
const Version uint8 = 1

const defaultWindow = 64

// Source is a sequence that can be read by rank range.
type Source[T any] interface {
	Len() int
	Get(start, end int, out []T) (int, error)
}

// Target is a sequence a snapshot can be restored into.
type Target[T any] interface {
	Len() int
	Insert(at int, items []T) error
}

type frame struct {
	Version       uint8  `msgpack:"version"`
	BlockCapacity int    `msgpack:"block_capacity"`
	Count         int    `msgpack:"count"`
	Checksum      uint64 `msgpack:"checksum"`
	Payload       []byte `msgpack:"payload"`
}

// Snapshot is a decoded, verified item sequence.
type Snapshot[T any] struct {
	Version       uint8
	BlockCapacity int // block capacity of the index it was taken from
	Items         []T
}

// Len returns the number of items in the snapshot.
func (s *Snapshot[T]) Len() int {
	return len(s.Items)
}

// Encode writes every item of src to w as one frame. Items are read in
// windows of capacity items; capacity is also recorded in the frame.
func Encode[T any](w io.Writer, src Source[T], capacity int) error {
	if capacity <= 0 {
		capacity = defaultWindow
	}
	n := src.Len()

	var payload bytes.Buffer
	enc := msgpack.GetEncoder()
	defer msgpack.PutEncoder(enc)
	enc.Reset(&payload)

	if err := enc.EncodeArrayLen(n); err != nil {
		return fmt.Errorf("encode item count: %w", err)
	}
	window := make([]T, capacity)
	for start := 0; start < n; {
		end := min(start+capacity, n)
		got, err := src.Get(start, end, window)
		if err != nil {
			return fmt.Errorf("read items [%d, %d): %w", start, end, err)
		}
		if got == 0 {
			return fmt.Errorf("read items [%d, %d): source returned nothing", start, end)
		}
		for i := range got {
			if err := enc.Encode(window[i]); err != nil {
				return fmt.Errorf("encode item %d: %w", start+i, err)
			}
		}
		start += got
	}

	f := frame{
		Version:       Version,
		BlockCapacity: capacity,
		Count:         n,
		Checksum:      xxhash.Sum64(payload.Bytes()),
		Payload:       payload.Bytes(),
	}
	enc.Reset(w)
	if err := enc.Encode(&f); err != nil {
		return fmt.Errorf("write snapshot frame: %w", err)
	}
	return nil
}

// Decode reads one frame from r and verifies it.
func Decode[T any](r io.Reader) (*Snapshot[T], error) {
	dec := msgpack.GetDecoder()
	defer msgpack.PutDecoder(dec)
	dec.Reset(r)

	var f frame
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("read snapshot frame: %w", err)
	}
	if f.Version != Version {
		return nil, fmt.Errorf("version %d: %w", f.Version, ErrUnsupportedVersion)
	}
	if sum := xxhash.Sum64(f.Payload); sum != f.Checksum {
		return nil, fmt.Errorf("payload hash %016x, frame says %016x: %w", sum, f.Checksum, ErrChecksumMismatch)
	}
	if f.Count < 0 {
		return nil, fmt.Errorf("negative count %d: %w", f.Count, ErrCorrupt)
	}

	dec.Reset(bytes.NewReader(f.Payload))
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return nil, fmt.Errorf("decode item count: %w", err)
	}
	if n != f.Count {
		return nil, fmt.Errorf("payload holds %d items, frame says %d: %w", n, f.Count, ErrCorrupt)
	}
	// Every encoded item takes at least one byte.
	if n > len(f.Payload) {
		return nil, fmt.Errorf("%d items in a %d byte payload: %w", n, len(f.Payload), ErrCorrupt)
	}

	items := make([]T, n)
	for i := range items {
		if err := dec.Decode(&items[i]); err != nil {
			return nil, fmt.Errorf("decode item %d: %w", i, err)
		}
	}
	return &Snapshot[T]{
		Version:       f.Version,
		BlockCapacity: f.BlockCapacity,
		Items:         items,
	}, nil
}

// Restore inserts the snapshot's items into dst, which must be empty.
func (s *Snapshot[T]) Restore(dst Target[T]) error {
	if dst.Len() != 0 {
		return fmt.Errorf("target holds %d items: %w", dst.Len(), ErrTargetNotEmpty)
	}
	if len(s.Items) == 0 {
		return nil
	}
	if err := dst.Insert(0, s.Items); err != nil {
		return fmt.Errorf("restore %d items: %w", len(s.Items), err)
	}
	return nil
}
