package main

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/mobispr/internal/assets"
	"github.com/Faultbox/mobispr/internal/config"
	"github.com/Faultbox/mobispr/pkg/chunk"
	"github.com/Faultbox/mobispr/pkg/formats"
)

// tinySprite is one 2x2 I256 tile placed once by a single pose.
func tinySprite() []byte {
	var buf bytes.Buffer
	le := binary.LittleEndian
	buf.Write(formats.SpriteMagic[:])

	binary.Write(&buf, le, uint16(1)) // tiles
	buf.Write([]byte{2, 2})
	binary.Write(&buf, le, uint16(1)) // composites
	buf.Write([]byte{0, 0, 0, 0})
	binary.Write(&buf, le, uint16(1)) // poses
	buf.Write([]byte{1, 0, 0, 0})
	buf.Write([]byte{0, 0, 2, 2})     // pose bounds
	binary.Write(&buf, le, uint16(0)) // animation frames
	binary.Write(&buf, le, uint16(0)) // animations

	binary.Write(&buf, le, uint16(formats.PixelFormat8888))
	buf.Write([]byte{1, 2})
	buf.Write([]byte{0x00, 0x00, 0xFF, 0xFF}) // red
	buf.Write([]byte{0x00, 0x00, 0x00, 0x00}) // transparent

	binary.Write(&buf, le, uint16(formats.EncodeI256))
	binary.Write(&buf, le, uint16(4))
	buf.Write([]byte{0, 1, 1, 0})
	return buf.Bytes()
}

// withEmptyTile appends a 0x0 tile with no data to a tinySprite record and
// places it in the pose next to the 2x2 tile.
func withEmptyTile() []byte {
	var buf bytes.Buffer
	le := binary.LittleEndian
	buf.Write(formats.SpriteMagic[:])

	binary.Write(&buf, le, uint16(2))
	buf.Write([]byte{2, 2, 0, 0})
	binary.Write(&buf, le, uint16(2))
	buf.Write([]byte{0, 0, 0, 0})
	buf.Write([]byte{1, 0, 0, 0})
	binary.Write(&buf, le, uint16(1))
	buf.Write([]byte{2, 0, 0, 0})
	buf.Write([]byte{0, 0, 2, 2})
	binary.Write(&buf, le, uint16(0))
	binary.Write(&buf, le, uint16(0))

	binary.Write(&buf, le, uint16(formats.PixelFormat8888))
	buf.Write([]byte{1, 2})
	buf.Write([]byte{0x00, 0x00, 0xFF, 0xFF})
	buf.Write([]byte{0x00, 0x00, 0x00, 0x00})

	binary.Write(&buf, le, uint16(formats.EncodeI256))
	binary.Write(&buf, le, uint16(4))
	buf.Write([]byte{0, 1, 1, 0})
	binary.Write(&buf, le, uint16(0))
	return buf.Bytes()
}

// writeArchive packs payloads into a container file and returns its path.
func writeArchive(t *testing.T, payloads ...[]byte) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, chunk.Pack(&buf, payloads))
	path := filepath.Join(t.TempDir(), "packed.f")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func newManager(t *testing.T) *assets.Manager {
	t.Helper()
	mgr, err := assets.NewManager(4)
	require.NoError(t, err)
	t.Cleanup(mgr.Close)
	return mgr
}

func TestExportEntries(t *testing.T) {
	path := writeArchive(t,
		tinySprite(),
		[]byte("plain data entry"),
		formats.SpriteMagic[:],
		withEmptyTile(),
	)
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Export.Workers = 2

	results, err := exportEntries(newManager(t), path, dir, cfg)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.NoError(t, results[0].err)
	assert.Equal(t, 1, results[0].tiles)
	assert.Equal(t, 1, results[0].poses)

	assert.True(t, results[1].skipped)
	assert.NoError(t, results[1].err)

	assert.False(t, results[2].skipped)
	assert.ErrorIs(t, results[2].err, formats.ErrTruncatedSpriteData)

	// The 0x0 tile is neither written nor fatal to the pose.
	assert.NoError(t, results[3].err)
	assert.Equal(t, 1, results[3].tiles)
	assert.Equal(t, 1, results[3].poses)
	assert.NoFileExists(t, filepath.Join(dir, "entry_003", "tile_001.png"))

	f, err := os.Open(filepath.Join(dir, "entry_000", "tile_000.png"))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)

	assert.Equal(t, 2, img.Bounds().Dx())
	r, _, _, a := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xFFFF), r)
	assert.Equal(t, uint32(0xFFFF), a)
	_, _, _, a = img.At(1, 0).RGBA()
	assert.Zero(t, a)

	assert.FileExists(t, filepath.Join(dir, "entry_000", "pose_000.png"))
	assert.NoDirExists(t, filepath.Join(dir, "entry_001"))
}

func TestExportTilesBadPalette(t *testing.T) {
	spr, err := formats.ParseSprite(tinySprite())
	require.NoError(t, err)
	defer spr.Close()

	cfg := config.Default()
	cfg.Decode.Palette = 3
	_, err = exportTiles(spr, t.TempDir(), cfg)
	assert.ErrorIs(t, err, formats.ErrOutOfRange)
}

func TestExportTilesBMP(t *testing.T) {
	spr, err := formats.ParseSprite(tinySprite(), formats.WithScale(2))
	require.NoError(t, err)
	defer spr.Close()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Export.Format = "BMP"

	n, err := exportTiles(spr, dir, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.FileExists(t, filepath.Join(dir, "tile_000.bmp"))
}

func TestExportEntriesMissingArchive(t *testing.T) {
	_, err := exportEntries(newManager(t), filepath.Join(t.TempDir(), "nope.f"), t.TempDir(), config.Default())
	assert.Error(t, err)
}
