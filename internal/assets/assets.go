// Package assets opens sprite archives once and caches parsed sprites.
package assets

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Faultbox/mobispr/pkg/chunk"
	"github.com/Faultbox/mobispr/pkg/formats"
)

// DefaultCacheSize is the number of parsed sprites kept when none is given.
const DefaultCacheSize = 32

type spriteKey struct {
	archive string
	entry   int
}

// Manager hands out archives by path and sprites by (archive, entry).
// Sprites evicted from the cache have their texture caches released.
type Manager struct {
	archives map[string]*chunk.Container
	sprites  *lru.Cache[spriteKey, *formats.Sprite]
	opts     []formats.SpriteOption
	mu       sync.Mutex
}

// NewManager creates a manager that parses sprites with opts and keeps at
// most size of them. A size of zero or less uses DefaultCacheSize.
func NewManager(size int, opts ...formats.SpriteOption) (*Manager, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.NewWithEvict(size, func(_ spriteKey, spr *formats.Sprite) {
		spr.Close()
	})
	if err != nil {
		return nil, fmt.Errorf("creating sprite cache: %w", err)
	}
	return &Manager{
		archives: make(map[string]*chunk.Container),
		sprites:  cache,
		opts:     opts,
	}, nil
}

// Archive opens the container at path, or returns the one already open.
func (m *Manager) Archive(path string) (*chunk.Container, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.archives[path]; ok {
		return c, nil
	}
	c, err := chunk.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", path, err)
	}
	m.archives[path] = c
	return c, nil
}

// Sprite parses entry of the archive at path, or returns the cached sprite.
// The sprite is owned by the manager; callers must not Close it.
func (m *Manager) Sprite(path string, entry int) (*formats.Sprite, error) {
	key := spriteKey{archive: path, entry: entry}
	if spr, ok := m.sprites.Get(key); ok {
		return spr, nil
	}

	c, err := m.Archive(path)
	if err != nil {
		return nil, err
	}
	r, err := c.Reader(entry)
	if err != nil {
		return nil, err
	}
	spr, err := formats.ParseSpriteReader(r, m.opts...)
	if err != nil {
		return nil, fmt.Errorf("entry %d: %w", entry, err)
	}

	// Another goroutine may have parsed the same entry meanwhile
	if prev, ok, _ := m.sprites.PeekOrAdd(key, spr); ok {
		spr.Close()
		return prev, nil
	}
	return spr, nil
}

// CachedSprites returns the number of parsed sprites held.
func (m *Manager) CachedSprites() int {
	return m.sprites.Len()
}

// Close releases every cached sprite and forgets open archives.
func (m *Manager) Close() {
	m.sprites.Purge()

	m.mu.Lock()
	m.archives = make(map[string]*chunk.Container)
	m.mu.Unlock()
}
