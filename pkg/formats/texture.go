package formats

import (
	"fmt"
	"image"
)

// EncodeFormat identifies how a tile's palette indices are packed.
type EncodeFormat uint16

// Tile pixel encodings.
const (
	EncodeI2      EncodeFormat = 0x0200 // 1 bit per pixel, MSB first
	EncodeI4      EncodeFormat = 0x0400 // 2 bits per pixel, MSB first
	EncodeI16     EncodeFormat = 0x1600 // 4 bits per pixel, high nibble first
	EncodeI256    EncodeFormat = 0x5602 // 1 byte per pixel
	EncodeI127RLE EncodeFormat = 0x27F1 // literal <= 127, else run of (b-128) of next index
	EncodeI256RLE EncodeFormat = 0x56F2 // run of b of next index if b <= 127, else (b-128) literals
)

// Valid reports whether the encoding is one the decoder understands.
func (f EncodeFormat) Valid() bool {
	switch f {
	case EncodeI2, EncodeI4, EncodeI16, EncodeI256, EncodeI127RLE, EncodeI256RLE:
		return true
	}
	return false
}

// String returns a readable encoding name.
func (f EncodeFormat) String() string {
	switch f {
	case EncodeI2:
		return "I2"
	case EncodeI4:
		return "I4"
	case EncodeI16:
		return "I16"
	case EncodeI256:
		return "I256"
	case EncodeI127RLE:
		return "I127RLE"
	case EncodeI256RLE:
		return "I256RLE"
	}
	return fmt.Sprintf("EncodeFormat(0x%04X)", uint16(f))
}

// Texture is a decoded tile. Pixels are packed 0xAARRGGBB in raster order.
type Texture struct {
	Width  int
	Height int
	Pixels []uint32
}

// At returns the pixel at (x, y), or 0 outside the texture.
func (t *Texture) At(x, y int) uint32 {
	if x < 0 || y < 0 || x >= t.Width || y >= t.Height {
		return 0
	}
	return t.Pixels[y*t.Width+x]
}

// Bytes returns the pixels as R, G, B, A bytes (non-premultiplied).
func (t *Texture) Bytes() []byte {
	out := make([]byte, len(t.Pixels)*4)
	for i, c := range t.Pixels {
		out[i*4] = byte(c >> 16)
		out[i*4+1] = byte(c >> 8)
		out[i*4+2] = byte(c)
		out[i*4+3] = byte(c >> 24)
	}
	return out
}

// NRGBA converts the texture to a standard library image.
func (t *Texture) NRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, t.Width, t.Height))
	copy(img.Pix, t.Bytes())
	return img
}

// pixelWriter appends colours to a fixed buffer, dropping anything past the end.
type pixelWriter struct {
	pixels []uint32
	pos    int
}

func (w *pixelWriter) put(c uint32) {
	if w.pos < len(w.pixels) {
		w.pixels[w.pos] = c
	}
	w.pos++
}

func (w *pixelWriter) full() bool {
	return w.pos >= len(w.pixels)
}

// DecodeTexture expands encoded palette indices into a w×h texture, then
// upscales it by scale using nearest-neighbour replication. Out-of-range
// palette indices decode to 0, and pixels past w×h are discarded.
func DecodeTexture(data []byte, format EncodeFormat, pal *Palette, w, h, scale int) (*Texture, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("%w: tile encoding %s", ErrInvalidFormat, format)
	}
	if pal == nil {
		return nil, ErrNilPalette
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidImageSize, w, h)
	}
	if scale < 1 {
		scale = 1
	}

	pw := &pixelWriter{pixels: make([]uint32, w*h)}

	switch format {
	case EncodeI2:
		for _, b := range data {
			for shift := 7; shift >= 0; shift-- {
				pw.put(pal.Color(int(b>>shift) & 0x1))
			}
		}

	case EncodeI4:
		for _, b := range data {
			for shift := 6; shift >= 0; shift -= 2 {
				pw.put(pal.Color(int(b>>shift) & 0x3))
			}
		}

	case EncodeI16:
		for _, b := range data {
			pw.put(pal.Color(int(b >> 4)))
			pw.put(pal.Color(int(b & 0xF)))
		}

	case EncodeI256:
		for _, b := range data {
			pw.put(pal.Color(int(b)))
		}

	case EncodeI127RLE:
		decodeI127RLE(pw, data, pal)

	case EncodeI256RLE:
		decodeI256RLE(pw, data, pal)
	}

	tex := &Texture{Width: w, Height: h, Pixels: pw.pixels}
	if scale > 1 {
		tex = tex.Scale(scale)
	}
	return tex, nil
}

func decodeI127RLE(pw *pixelWriter, data []byte, pal *Palette) {
	for i := 0; i < len(data); i++ {
		b := int(data[i])
		if b <= 127 {
			pw.put(pal.Color(b))
			continue
		}

		i++
		if i >= len(data) {
			return
		}
		c := pal.Color(int(data[i]))
		for n := b - 128; n > 0 && !pw.full(); n-- {
			pw.put(c)
		}
	}
}

func decodeI256RLE(pw *pixelWriter, data []byte, pal *Palette) {
	for i := 0; i < len(data); i++ {
		b := int(data[i])
		if b <= 127 {
			i++
			if i >= len(data) {
				return
			}
			c := pal.Color(int(data[i]))
			for n := b; n > 0 && !pw.full(); n-- {
				pw.put(c)
			}
			continue
		}

		for n := b - 128; n > 0; n-- {
			i++
			if i >= len(data) {
				return
			}
			pw.put(pal.Color(int(data[i])))
		}
	}
}

// Scale returns a copy enlarged by an integer factor with nearest-neighbour
// sampling: output (x, y) copies source (x/factor, y/factor).
func (t *Texture) Scale(factor int) *Texture {
	if factor <= 1 {
		out := &Texture{Width: t.Width, Height: t.Height, Pixels: make([]uint32, len(t.Pixels))}
		copy(out.Pixels, t.Pixels)
		return out
	}

	w, h := t.Width*factor, t.Height*factor
	out := &Texture{Width: w, Height: h, Pixels: make([]uint32, w*h)}
	for y := 0; y < h; y++ {
		src := t.Pixels[(y/factor)*t.Width:]
		row := out.Pixels[y*w : (y+1)*w]
		for x := range row {
			row[x] = src[x/factor]
		}
	}
	return out
}
