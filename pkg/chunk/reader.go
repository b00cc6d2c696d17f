package chunk

import (
	"encoding/binary"
	"errors"
)

// ErrShortRead is returned when a read would run past the end of the entry.
var ErrShortRead = errors.New("short read")

// Reader is a bounded little-endian cursor over one entry's bytes.
// A failed read leaves the position unchanged.
type Reader struct {
	data []byte
	pos  int
}

// NewReader returns a cursor over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Len returns the total number of bytes visible to the cursor.
func (r *Reader) Len() int { return len(r.data) }

// Pos returns the current read position.
func (r *Reader) Pos() int { return r.pos }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.pos }

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || n > len(r.data)-r.pos {
		return nil, ErrShortRead
	}
	b := r.data[r.pos : r.pos+n : r.pos+n]
	r.pos += n
	return b, nil
}

// U8 reads one byte.
func (r *Reader) U8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// I8 reads one signed byte.
func (r *Reader) I8() (int8, error) {
	v, err := r.U8()
	return int8(v), err
}

// U16 reads a little-endian uint16.
func (r *Reader) U16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// U32 reads a little-endian uint32.
func (r *Reader) U32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Bytes returns the next n bytes without copying. The slice aliases the
// entry and must not be modified.
func (r *Reader) Bytes(n int) ([]byte, error) {
	return r.take(n)
}

// Skip advances the position by n bytes.
func (r *Reader) Skip(n int) error {
	_, err := r.take(n)
	return err
}
