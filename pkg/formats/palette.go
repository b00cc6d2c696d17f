package formats

import (
	"encoding/binary"
	"fmt"
)

// PixelFormat identifies how palette colours are stored.
type PixelFormat uint16

// Palette pixel formats.
const (
	PixelFormat8888 PixelFormat = 0x8888 // ARGB8888
	PixelFormat4444 PixelFormat = 0x4444 // ARGB4444
	PixelFormat1555 PixelFormat = 0x5515 // ARGB1555, bit 15 gates visibility
	PixelFormat0565 PixelFormat = 0x6505 // RGB565, 0xF81F is transparent
)

// transparent565 is the RGB565 colour-key (pure magenta).
const transparent565 = 0xF81F

// BytesPerColor returns the stored size of one colour, or 0 if the format is unknown.
func (f PixelFormat) BytesPerColor() int {
	switch f {
	case PixelFormat8888:
		return 4
	case PixelFormat4444, PixelFormat1555, PixelFormat0565:
		return 2
	}
	return 0
}

// String returns a readable format name.
func (f PixelFormat) String() string {
	switch f {
	case PixelFormat8888:
		return "ARGB8888"
	case PixelFormat4444:
		return "ARGB4444"
	case PixelFormat1555:
		return "ARGB1555"
	case PixelFormat0565:
		return "RGB565"
	}
	return fmt.Sprintf("PixelFormat(0x%04X)", uint16(f))
}

// Palette is one colour table. Colours are packed 0xAARRGGBB.
type Palette struct {
	Colors []uint32
}

// Len returns the number of colours.
func (p *Palette) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Colors)
}

// Color returns colour i, or 0 (transparent black) when i is out of range.
func (p *Palette) Color(i int) uint32 {
	if p == nil || i < 0 || i >= len(p.Colors) {
		return 0
	}
	return p.Colors[i]
}

// PaletteSet holds every palette of a sprite. All palettes have the same length.
type PaletteSet []Palette

// Get returns palette i.
func (s PaletteSet) Get(i int) (*Palette, error) {
	if i < 0 || i >= len(s) {
		return nil, fmt.Errorf("%w: palette %d (have %d)", ErrOutOfRange, i, len(s))
	}
	return &s[i], nil
}

// DecodePalettes converts paletteCount tables of colorsPerPalette colours
// stored in format into RGBA.
func DecodePalettes(data []byte, format PixelFormat, paletteCount, colorsPerPalette int) (PaletteSet, error) {
	bpc := format.BytesPerColor()
	if bpc == 0 {
		return nil, fmt.Errorf("%w: palette format %s", ErrInvalidFormat, format)
	}
	if paletteCount <= 0 || colorsPerPalette <= 0 {
		return nil, fmt.Errorf("%w: %d palettes of %d colors", ErrInvalidFormat, paletteCount, colorsPerPalette)
	}

	stride := colorsPerPalette * bpc
	if len(data) < paletteCount*stride {
		return nil, fmt.Errorf("%w: palette data needs %d bytes, have %d",
			ErrTruncatedSpriteData, paletteCount*stride, len(data))
	}

	set := make(PaletteSet, paletteCount)
	for i := range set {
		raw := data[i*stride : (i+1)*stride]
		colors := make([]uint32, colorsPerPalette)
		for j := range colors {
			colors[j] = decodeColor(raw[j*bpc:], format)
		}
		set[i] = Palette{Colors: colors}
	}

	return set, nil
}

// decodeColor expands one stored colour to 0xAARRGGBB.
func decodeColor(b []byte, format PixelFormat) uint32 {
	switch format {
	case PixelFormat8888:
		return binary.LittleEndian.Uint32(b)

	case PixelFormat4444:
		c := uint32(binary.LittleEndian.Uint16(b))
		return (c&0xF000)<<16 | (c&0xF000)<<12 | // A
			(c&0x0F00)<<12 | (c&0x0F00)<<8 | // R
			(c&0x00F0)<<8 | (c&0x00F0)<<4 | // G
			(c&0x000F)<<4 | (c & 0x000F) // B

	case PixelFormat1555:
		c := uint32(binary.LittleEndian.Uint16(b))
		if c&0x8000 == 0 {
			return 0
		}
		return 0xFF000000 | (c&0x7C00)<<9 | (c&0x03E0)<<6 | (c&0x001F)<<3

	case PixelFormat0565:
		c := uint32(binary.LittleEndian.Uint16(b))
		if c == transparent565 {
			return 0
		}
		return 0xFF000000 | (c&0xF800)<<8 | (c&0x07E0)<<5 | (c&0x001F)<<3
	}
	return 0
}
