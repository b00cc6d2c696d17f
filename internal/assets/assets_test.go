package assets

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/mobispr/pkg/chunk"
	"github.com/Faultbox/mobispr/pkg/formats"
)

// spriteRecord is one 1x1 I256 tile with a single opaque colour.
func spriteRecord() []byte {
	var buf bytes.Buffer
	le := binary.LittleEndian
	buf.Write(formats.SpriteMagic[:])

	binary.Write(&buf, le, uint16(1))
	buf.Write([]byte{1, 1})
	binary.Write(&buf, le, uint16(0)) // composites
	binary.Write(&buf, le, uint16(0)) // poses
	binary.Write(&buf, le, uint16(0)) // animation frames
	binary.Write(&buf, le, uint16(0)) // animations

	binary.Write(&buf, le, uint16(formats.PixelFormat8888))
	buf.Write([]byte{1, 1})
	buf.Write([]byte{0x00, 0x00, 0xFF, 0xFF})

	binary.Write(&buf, le, uint16(formats.EncodeI256))
	binary.Write(&buf, le, uint16(1))
	buf.WriteByte(0)
	return buf.Bytes()
}

func writeArchive(t *testing.T, payloads ...[]byte) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, chunk.Pack(&buf, payloads))
	path := filepath.Join(t.TempDir(), "sprites.f")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func TestManagerSprite(t *testing.T) {
	path := writeArchive(t, spriteRecord(), []byte("not a sprite"), spriteRecord())

	m, err := NewManager(0, formats.WithScale(2))
	require.NoError(t, err)
	defer m.Close()

	spr, err := m.Sprite(path, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, spr.Scale())

	again, err := m.Sprite(path, 0)
	require.NoError(t, err)
	assert.Same(t, spr, again, "second lookup hits the cache")

	other, err := m.Sprite(path, 2)
	require.NoError(t, err)
	assert.NotSame(t, spr, other)
	assert.Equal(t, 2, m.CachedSprites())

	_, err = m.Sprite(path, 1)
	assert.ErrorIs(t, err, formats.ErrInvalidSpriteMagic)

	_, err = m.Sprite(path, 3)
	assert.ErrorIs(t, err, chunk.ErrOutOfRange)
}

func TestManagerArchiveOpenedOnce(t *testing.T) {
	path := writeArchive(t, spriteRecord())

	m, err := NewManager(4)
	require.NoError(t, err)
	defer m.Close()

	a, err := m.Archive(path)
	require.NoError(t, err)

	// The cached container survives the file going away.
	require.NoError(t, os.Remove(path))
	b, err := m.Archive(path)
	require.NoError(t, err)
	assert.Same(t, a, b)

	_, err = m.Archive(filepath.Join(t.TempDir(), "missing.f"))
	assert.Error(t, err)
}

func TestManagerEvictsSprites(t *testing.T) {
	path := writeArchive(t, spriteRecord(), spriteRecord(), spriteRecord())

	m, err := NewManager(2)
	require.NoError(t, err)
	defer m.Close()

	first, err := m.Sprite(path, 0)
	require.NoError(t, err)
	_, err = first.CachedTexture(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, first.CachedCount())

	for i := 1; i < 3; i++ {
		_, err := m.Sprite(path, i)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, m.CachedSprites())
	assert.Zero(t, first.CachedCount(), "evicted sprite releases its textures")

	reparsed, err := m.Sprite(path, 0)
	require.NoError(t, err)
	assert.NotSame(t, first, reparsed)
}

func TestManagerClose(t *testing.T) {
	path := writeArchive(t, spriteRecord())

	m, err := NewManager(4)
	require.NoError(t, err)

	spr, err := m.Sprite(path, 0)
	require.NoError(t, err)
	_, err = spr.CachedTexture(0, 0)
	require.NoError(t, err)

	m.Close()
	assert.Zero(t, m.CachedSprites())
	assert.Zero(t, spr.CachedCount())

	// The file is gone, so a lookup after Close must reopen and fail.
	require.NoError(t, os.Remove(path))
	_, err = m.Sprite(path, 0)
	assert.Error(t, err)
}

func TestManagerConcurrentLookups(t *testing.T) {
	path := writeArchive(t, spriteRecord(), spriteRecord())

	m, err := NewManager(4)
	require.NoError(t, err)
	defer m.Close()

	var wg sync.WaitGroup
	got := make([]*formats.Sprite, 16)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			spr, err := m.Sprite(path, i%2)
			if err == nil {
				got[i] = spr
			}
		}(i)
	}
	wg.Wait()

	for i := range got {
		require.NotNil(t, got[i])
		assert.Same(t, got[i%2], got[i])
	}
}
