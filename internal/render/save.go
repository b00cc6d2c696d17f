package render

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
)

// Image file formats accepted by Save.
const (
	FormatPNG = "png"
	FormatBMP = "bmp"
)

// ValidFormat reports whether format can be written by Save.
func ValidFormat(format string) bool {
	switch strings.ToLower(format) {
	case FormatPNG, FormatBMP:
		return true
	}
	return false
}

// Save writes img to path in the given format, creating parent directories.
func Save(img image.Image, path, format string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}

	switch strings.ToLower(format) {
	case FormatPNG:
		err = png.Encode(file, img)
	case FormatBMP:
		err = bmp.Encode(file, img)
	default:
		err = fmt.Errorf("unsupported image format %q", format)
	}
	if err != nil {
		file.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return file.Close()
}
