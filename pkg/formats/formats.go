// Package formats decodes the sprite records stored in chunk containers:
// palettes, palette-indexed pixel planes and the sprite tables that compose
// tiles into poses and animations.
package formats

import "errors"

// Errors shared by the palette, texture and sprite decoders.
var (
	ErrInvalidFormat    = errors.New("invalid format")
	ErrOutOfRange       = errors.New("index out of range")
	ErrNilPalette       = errors.New("nil palette")
	ErrInvalidImageSize = errors.New("invalid image dimensions")
)
