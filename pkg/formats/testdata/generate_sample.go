//go:build ignore

// This program generates a sample chunk container for unit tests.
// Run with: go run generate_sample.go
package main

import (
	"bytes"
	"encoding/binary"
	"os"

	"github.com/Faultbox/mobispr/pkg/chunk"
)

var magic = []byte{0xDF, 0x03, 0x01, 0x01, 0x01, 0x01}

func main() {
	entries := [][]byte{
		checkerSprite(),
		rleSprite(),
	}

	var buf bytes.Buffer
	if err := chunk.Pack(&buf, entries); err != nil {
		panic(err)
	}
	if err := os.WriteFile("sample.f", buf.Bytes(), 0644); err != nil {
		panic(err)
	}

	println("Generated sample.f:", buf.Len(), "bytes")
	println("  - entry 0: 8x8 I2 checkerboard, one pose of four tiles")
	println("  - entry 1: 4x4 I127RLE tile, two 4444 palettes, one animation")
}

// checkerSprite is one 8x8 1-bit tile placed four times in a 2x2 grid.
func checkerSprite() []byte {
	var buf bytes.Buffer
	buf.Write(magic)

	binary.Write(&buf, binary.LittleEndian, uint16(1)) // tiles
	buf.Write([]byte{8, 8})

	binary.Write(&buf, binary.LittleEndian, uint16(4)) // composite entries
	buf.Write([]byte{0, 0, 0, 0})
	buf.Write([]byte{0, 8, 0, 1}) // flip-x
	buf.Write([]byte{0, 0, 8, 2}) // flip-y
	buf.Write([]byte{0, 8, 8, 3}) // rotate 180

	binary.Write(&buf, binary.LittleEndian, uint16(1)) // poses
	buf.Write([]byte{4, 0, 0, 0})
	buf.Write([]byte{0, 0, 16, 16}) // pose bounds

	binary.Write(&buf, binary.LittleEndian, uint16(0)) // animation frames
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // animations

	binary.Write(&buf, binary.LittleEndian, uint16(0x6505)) // RGB565
	buf.Write([]byte{1, 2})
	binary.Write(&buf, binary.LittleEndian, uint16(0xF81F)) // transparent
	binary.Write(&buf, binary.LittleEndian, uint16(0xFFFF)) // white

	binary.Write(&buf, binary.LittleEndian, uint16(0x0200)) // I2
	tile := []byte{0xAA, 0x55, 0xAA, 0x55, 0xAA, 0x55, 0xAA, 0x55}
	binary.Write(&buf, binary.LittleEndian, uint16(len(tile)))
	buf.Write(tile)

	return buf.Bytes()
}

// rleSprite is one 4x4 run-length tile with a two-frame animation.
func rleSprite() []byte {
	var buf bytes.Buffer
	buf.Write(magic)

	binary.Write(&buf, binary.LittleEndian, uint16(1))
	buf.Write([]byte{4, 4})

	binary.Write(&buf, binary.LittleEndian, uint16(1))
	buf.Write([]byte{0, 0xFE, 0xFE, 0}) // centred on the origin

	binary.Write(&buf, binary.LittleEndian, uint16(1))
	buf.Write([]byte{1, 0, 0, 0})
	buf.Write([]byte{0xFE, 0xFE, 4, 4})

	binary.Write(&buf, binary.LittleEndian, uint16(2))
	buf.Write([]byte{0, 2, 0, 0, 0}) // pose 0 for 2 ticks
	buf.Write([]byte{0, 2, 1, 0, 1}) // pose 0 flipped, nudged right

	binary.Write(&buf, binary.LittleEndian, uint16(1))
	buf.Write([]byte{2, 0, 0, 0})

	binary.Write(&buf, binary.LittleEndian, uint16(0x4444))
	buf.Write([]byte{2, 3})
	binary.Write(&buf, binary.LittleEndian, []uint16{0x0000, 0xFF00, 0xF00F}) // palette 0
	binary.Write(&buf, binary.LittleEndian, []uint16{0x0000, 0xF0F0, 0xFFF0}) // palette 1

	binary.Write(&buf, binary.LittleEndian, uint16(0x27F1)) // I127RLE
	tile := []byte{0x84, 1, 0x88, 2, 0x84, 0}
	binary.Write(&buf, binary.LittleEndian, uint16(len(tile)))
	buf.Write(tile)

	return buf.Bytes()
}
