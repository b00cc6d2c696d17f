package chunk

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
)

// Pack writes payloads as a chunk container. Entries are laid out back to
// back in the given order.
func Pack(w io.Writer, payloads [][]byte) error {
	if len(payloads) == 0 || len(payloads) > MaxEntries {
		return fmt.Errorf("%w: %d entries (want 1..%d)", ErrInvalidFormat, len(payloads), MaxEntries)
	}

	var total uint64
	for i, p := range payloads {
		total += uint64(len(p))
		if total > math.MaxUint32 {
			return fmt.Errorf("%w: entry %d pushes payload past 4 GiB", ErrInvalidFormat, i)
		}
	}

	bw := bufio.NewWriter(w)
	if err := bw.WriteByte(byte(len(payloads))); err != nil {
		return err
	}

	var offset uint32
	var pair [indexSize]byte
	for _, p := range payloads {
		binary.LittleEndian.PutUint32(pair[0:], offset)
		binary.LittleEndian.PutUint32(pair[4:], uint32(len(p)))
		if _, err := bw.Write(pair[:]); err != nil {
			return err
		}
		offset += uint32(len(p))
	}

	for _, p := range payloads {
		if _, err := bw.Write(p); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// PackFiles reads each input file and writes them as one container to out.
func PackFiles(out string, inputs []string) error {
	payloads := make([][]byte, 0, len(inputs))
	for _, in := range inputs {
		data, err := os.ReadFile(in)
		if err != nil {
			return fmt.Errorf("reading %s: %w", in, err)
		}
		payloads = append(payloads, data)
	}

	if dir := filepath.Dir(out); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}

	if err := Pack(f, payloads); err != nil {
		f.Close()
		return fmt.Errorf("packing %s: %w", out, err)
	}
	return f.Close()
}
