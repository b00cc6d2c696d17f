// Package chunk reads and writes chunk containers: a count byte, an index of
// (offset, size) pairs and the concatenated entry payloads.
package chunk

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// Container format errors.
var (
	ErrInvalidFormat = errors.New("invalid chunk container")
	ErrTruncated     = errors.New("truncated chunk container")
	ErrOutOfRange    = errors.New("chunk index out of range")
)

const (
	countSize = 1
	indexSize = 8 // offset u32 + size u32
	// MaxEntries is the largest entry count the one-byte header can hold.
	MaxEntries = 255
)

// Entry locates one payload relative to the end of the index table.
type Entry struct {
	Offset uint32
	Size   uint32
}

// Container is a parsed chunk container. Entry slices borrow from the
// container's backing buffer, so the container must outlive them.
type Container struct {
	entries []Entry
	payload []byte
}

// Parse indexes a chunk container held in memory.
func Parse(data []byte) (*Container, error) {
	if len(data) < countSize {
		return nil, fmt.Errorf("%w: missing entry count", ErrInvalidFormat)
	}

	count := int(data[0])
	if count == 0 {
		return nil, fmt.Errorf("%w: zero entries", ErrInvalidFormat)
	}

	tableEnd := countSize + count*indexSize
	if len(data) < tableEnd {
		return nil, fmt.Errorf("%w: index table needs %d bytes, have %d", ErrInvalidFormat, tableEnd, len(data))
	}

	c := &Container{
		entries: make([]Entry, count),
		payload: data[tableEnd:],
	}

	for i := 0; i < count; i++ {
		off := countSize + i*indexSize
		e := Entry{
			Offset: binary.LittleEndian.Uint32(data[off:]),
			Size:   binary.LittleEndian.Uint32(data[off+4:]),
		}
		if uint64(e.Offset)+uint64(e.Size) > uint64(len(c.payload)) {
			return nil, fmt.Errorf("%w: entry %d spans %d+%d, payload is %d bytes",
				ErrTruncated, i, e.Offset, e.Size, len(c.payload))
		}
		c.entries[i] = e
	}

	return c, nil
}

// Open reads and indexes a chunk container file.
func Open(path string) (*Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading chunk file: %w", err)
	}
	return Parse(data)
}

// Count returns the number of entries.
func (c *Container) Count() int {
	return len(c.entries)
}

// Entries returns a copy of the index table.
func (c *Container) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Size returns the payload size in bytes (everything after the index table).
func (c *Container) Size() int {
	return len(c.payload)
}

// Entry returns the payload of entry i. The returned slice aliases the
// container and must not be modified.
func (c *Container) Entry(i int) ([]byte, error) {
	if i < 0 || i >= len(c.entries) {
		return nil, fmt.Errorf("%w: %d (have %d)", ErrOutOfRange, i, len(c.entries))
	}
	e := c.entries[i]
	end := e.Offset + e.Size
	return c.payload[e.Offset:end:end], nil
}

// Reader returns a cursor restricted to entry i.
func (c *Container) Reader(i int) (*Reader, error) {
	data, err := c.Entry(i)
	if err != nil {
		return nil, err
	}
	return NewReader(data), nil
}
