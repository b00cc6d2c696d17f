package formats

import (
	"encoding/binary"
	"errors"
	"reflect"
	"testing"
)

func u16le(vals ...uint16) []byte {
	out := make([]byte, 0, len(vals)*2)
	for _, v := range vals {
		out = binary.LittleEndian.AppendUint16(out, v)
	}
	return out
}

func TestDecodePalettes_Formats(t *testing.T) {
	tests := []struct {
		name     string
		format   PixelFormat
		data     []byte
		expected uint32
	}{
		{"8888 verbatim", PixelFormat8888, []byte{0x44, 0x33, 0x22, 0x11}, 0x11223344},
		{"4444 nibble replication", PixelFormat4444, u16le(0xF1A5), 0xFF11AA55},
		{"4444 partial alpha", PixelFormat4444, u16le(0x8000), 0x88000000},
		{"1555 visible white", PixelFormat1555, u16le(0xFFFF), 0xFFF8F8F8},
		{"1555 red channel", PixelFormat1555, u16le(0x8000 | 0x1F<<10), 0xFFF80000},
		{"1555 bit15 clear", PixelFormat1555, u16le(0x7FFF), 0x00000000},
		{"565 white", PixelFormat0565, u16le(0xFFFF), 0xFFF8FCF8},
		{"565 green", PixelFormat0565, u16le(0x07E0), 0xFF00FC00},
		{"565 transparent key", PixelFormat0565, u16le(0xF81F), 0x00000000},
		{"565 black is opaque", PixelFormat0565, u16le(0x0000), 0xFF000000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := DecodePalettes(tt.data, tt.format, 1, 1)
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if got := set[0].Color(0); got != tt.expected {
				t.Errorf("got 0x%08X, expected 0x%08X", got, tt.expected)
			}
		})
	}
}

func TestDecodePalettes_Deterministic(t *testing.T) {
	data := u16le(0x1234, 0xABCD, 0xF81F, 0x0001, 0x8001, 0xFFFF)
	a, err := DecodePalettes(data, PixelFormat0565, 2, 3)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	b, _ := DecodePalettes(data, PixelFormat0565, 2, 3)
	if !reflect.DeepEqual(a, b) {
		t.Error("decoding the same bytes twice gave different palettes")
	}
}

func TestDecodePalettes_Alignment(t *testing.T) {
	// Each palette consumes exactly colors*bpc bytes, so palette 1 starts at byte 4.
	data := u16le(0xFFFF, 0xFFFF, 0x001F, 0xF800)
	set, err := DecodePalettes(data, PixelFormat0565, 2, 2)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(set) != 2 || set[1].Len() != 2 {
		t.Fatalf("expected 2 palettes of 2 colors, got %d", len(set))
	}
	if set[1].Color(0) != 0xFF0000F8 {
		t.Errorf("palette 1 color 0: got 0x%08X", set[1].Color(0))
	}
	if set[1].Color(1) != 0xFFF80000 {
		t.Errorf("palette 1 color 1: got 0x%08X", set[1].Color(1))
	}
}

func TestDecodePalettes_Errors(t *testing.T) {
	tests := []struct {
		name    string
		format  PixelFormat
		count   int
		colors  int
		data    []byte
		wantErr error
	}{
		{"unknown format", PixelFormat(0x1234), 1, 1, []byte{0, 0}, ErrInvalidFormat},
		{"zero palettes", PixelFormat0565, 0, 1, []byte{0, 0}, ErrInvalidFormat},
		{"zero colors", PixelFormat0565, 1, 0, []byte{0, 0}, ErrInvalidFormat},
		{"short data", PixelFormat8888, 1, 2, []byte{0, 0, 0, 0}, ErrTruncatedSpriteData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePalettes(tt.data, tt.format, tt.count, tt.colors)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestPalette_ColorOutOfRange(t *testing.T) {
	p := &Palette{Colors: []uint32{0xFF112233}}
	if p.Color(1) != 0 || p.Color(-1) != 0 {
		t.Error("out-of-range color index should yield 0")
	}
	var nilPal *Palette
	if nilPal.Color(0) != 0 || nilPal.Len() != 0 {
		t.Error("nil palette should behave as empty")
	}

	set := PaletteSet{*p}
	if _, err := set.Get(1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestPixelFormat_BytesPerColor(t *testing.T) {
	cases := map[PixelFormat]int{
		PixelFormat8888: 4,
		PixelFormat4444: 2,
		PixelFormat1555: 2,
		PixelFormat0565: 2,
		0x0000:          0,
	}
	for f, want := range cases {
		if got := f.BytesPerColor(); got != want {
			t.Errorf("%s: got %d, want %d", f, got, want)
		}
	}
}
