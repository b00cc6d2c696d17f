package formats

import (
	"errors"
	"fmt"
	"os"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Faultbox/mobispr/pkg/chunk"
)

// Sprite format errors.
var (
	ErrInvalidSpriteMagic  = errors.New("invalid sprite magic")
	ErrTruncatedSpriteData = errors.New("truncated sprite data")
)

// SpriteMagic is the 6-byte signature at the start of every sprite record.
var SpriteMagic = [6]byte{0xDF, 0x03, 0x01, 0x01, 0x01, 0x01}

// TileDim is the unscaled size of one tile.
type TileDim struct {
	Width  int
	Height int
}

// TileRef places a tile inside a composite pose. X and Y are already scaled.
type TileRef struct {
	Tile      int
	X, Y      int
	Transform Transform
}

// Group selects Count consecutive entries of a list starting at Offset.
type Group struct {
	Count  int
	Offset int
}

// Rect is a scaled bounding rectangle relative to the pose origin.
type Rect struct {
	X, Y          int
	Width, Height int
}

// AnimationFrame shows composite pose Pose for Ticks ticks, offset by X, Y.
type AnimationFrame struct {
	Pose      int
	Ticks     int
	X, Y      int
	Transform Transform
}

type tileSpan struct {
	offset int
	length int
}

type textureKey struct {
	tile    int
	palette int
}

// Sprite is a parsed sprite record. Tile pixels stay encoded until a texture
// is requested; decoded textures can be memoized per (tile, palette).
type Sprite struct {
	scale int

	dims        []TileDim
	composites  []TileRef
	poses       []Group
	poseBounds  []Rect
	animFrames  []AnimationFrame
	animations  []Group
	pixelFormat PixelFormat
	palettes    PaletteSet
	encoding    EncodeFormat
	tileData    []byte
	tileSpans   []tileSpan

	mu      sync.Mutex
	current int
	cache   *lru.Cache[textureKey, *Texture]
}

type spriteOptions struct {
	scale     int
	cacheSize int
}

// SpriteOption configures ParseSprite.
type SpriteOption func(*spriteOptions)

// WithScale multiplies tile textures and all placement offsets by n (n >= 1).
func WithScale(n int) SpriteOption {
	return func(o *spriteOptions) {
		if n >= 1 {
			o.scale = n
		}
	}
}

// WithCacheSize bounds the decoded-texture cache. Zero means one slot per
// (tile, palette) pair.
func WithCacheSize(n int) SpriteOption {
	return func(o *spriteOptions) {
		if n >= 0 {
			o.cacheSize = n
		}
	}
}

// ParseSprite parses a sprite record from raw bytes.
func ParseSprite(data []byte, opts ...SpriteOption) (*Sprite, error) {
	return ParseSpriteReader(chunk.NewReader(data), opts...)
}

// ParseSpriteFile parses a standalone sprite record from disk.
func ParseSpriteFile(path string, opts ...SpriteOption) (*Sprite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sprite file: %w", err)
	}
	return ParseSprite(data, opts...)
}

// ParseSpriteReader parses a sprite record from a chunk cursor. Nothing is
// returned unless the whole record parses.
func ParseSpriteReader(r *chunk.Reader, opts ...SpriteOption) (*Sprite, error) {
	o := spriteOptions{scale: 1}
	for _, opt := range opts {
		opt(&o)
	}

	magic, err := r.Bytes(len(SpriteMagic))
	if err != nil {
		return nil, fmt.Errorf("%w: reading magic", ErrTruncatedSpriteData)
	}
	if [6]byte(magic) != SpriteMagic {
		return nil, ErrInvalidSpriteMagic
	}

	spr := &Sprite{scale: o.scale}

	if err := spr.parseTiles(r); err != nil {
		return nil, err
	}
	if err := spr.parseComposites(r); err != nil {
		return nil, err
	}
	if err := spr.parseAnimations(r); err != nil {
		return nil, err
	}
	if err := spr.parsePalettes(r); err != nil {
		return nil, err
	}
	if err := spr.parseTileData(r); err != nil {
		return nil, err
	}
	if err := spr.validate(); err != nil {
		return nil, err
	}

	size := o.cacheSize
	if size == 0 {
		size = len(spr.dims) * len(spr.palettes)
	}
	spr.cache, err = lru.New[textureKey, *Texture](size)
	if err != nil {
		return nil, fmt.Errorf("creating texture cache: %w", err)
	}

	return spr, nil
}

func (s *Sprite) parseTiles(r *chunk.Reader) error {
	count, err := r.U16()
	if err != nil {
		return fmt.Errorf("%w: reading tile count", ErrTruncatedSpriteData)
	}
	if count == 0 {
		return fmt.Errorf("%w: sprite has no tiles", ErrInvalidFormat)
	}

	raw, err := r.Bytes(int(count) * 2)
	if err != nil {
		return fmt.Errorf("%w: reading tile dimensions", ErrTruncatedSpriteData)
	}

	s.dims = make([]TileDim, count)
	for i := range s.dims {
		s.dims[i] = TileDim{Width: int(raw[i*2]), Height: int(raw[i*2+1])}
	}
	return nil
}

func (s *Sprite) parseComposites(r *chunk.Reader) error {
	count, err := r.U16()
	if err != nil {
		return fmt.Errorf("%w: reading composite count", ErrTruncatedSpriteData)
	}
	raw, err := r.Bytes(int(count) * 4)
	if err != nil {
		return fmt.Errorf("%w: reading composite list", ErrTruncatedSpriteData)
	}

	s.composites = make([]TileRef, count)
	for i := range s.composites {
		b := raw[i*4:]
		s.composites[i] = TileRef{
			Tile:      int(b[0]),
			X:         int(int8(b[1])) * s.scale,
			Y:         int(int8(b[2])) * s.scale,
			Transform: Transform(b[3]),
		}
	}

	s.poses, err = readGroups(r, "composite groups")
	if err != nil {
		return err
	}

	raw, err = r.Bytes(len(s.poses) * 4)
	if err != nil {
		return fmt.Errorf("%w: reading composite bounds", ErrTruncatedSpriteData)
	}
	s.poseBounds = make([]Rect, len(s.poses))
	for i := range s.poseBounds {
		b := raw[i*4:]
		s.poseBounds[i] = Rect{
			X:      int(int8(b[0])) * s.scale,
			Y:      int(int8(b[1])) * s.scale,
			Width:  int(b[2]) * s.scale,
			Height: int(b[3]) * s.scale,
		}
	}
	return nil
}

func (s *Sprite) parseAnimations(r *chunk.Reader) error {
	count, err := r.U16()
	if err != nil {
		return fmt.Errorf("%w: reading animation frame count", ErrTruncatedSpriteData)
	}
	raw, err := r.Bytes(int(count) * 5)
	if err != nil {
		return fmt.Errorf("%w: reading animation frames", ErrTruncatedSpriteData)
	}

	s.animFrames = make([]AnimationFrame, count)
	for i := range s.animFrames {
		b := raw[i*5:]
		s.animFrames[i] = AnimationFrame{
			Pose:      int(b[0]),
			Ticks:     int(b[1]),
			X:         int(int8(b[2])) * s.scale,
			Y:         int(int8(b[3])) * s.scale,
			Transform: Transform(b[4]),
		}
	}

	s.animations, err = readGroups(r, "animation groups")
	return err
}

// readGroups reads a u16 count followed by {count u8, pad u8, offset u16} records.
func readGroups(r *chunk.Reader, what string) ([]Group, error) {
	count, err := r.U16()
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s count", ErrTruncatedSpriteData, what)
	}
	raw, err := r.Bytes(int(count) * 4)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s", ErrTruncatedSpriteData, what)
	}

	groups := make([]Group, count)
	for i := range groups {
		b := raw[i*4:]
		groups[i] = Group{
			Count:  int(b[0]),
			Offset: int(b[2]) | int(b[3])<<8,
		}
	}
	return groups, nil
}

func (s *Sprite) parsePalettes(r *chunk.Reader) error {
	format, err := r.U16()
	if err != nil {
		return fmt.Errorf("%w: reading palette format", ErrTruncatedSpriteData)
	}
	count, err := r.U8()
	if err != nil {
		return fmt.Errorf("%w: reading palette count", ErrTruncatedSpriteData)
	}
	colors, err := r.U8()
	if err != nil {
		return fmt.Errorf("%w: reading palette size", ErrTruncatedSpriteData)
	}

	s.pixelFormat = PixelFormat(format)
	bpc := s.pixelFormat.BytesPerColor()
	if bpc == 0 {
		return fmt.Errorf("%w: palette format %s", ErrInvalidFormat, s.pixelFormat)
	}

	raw, err := r.Bytes(int(count) * int(colors) * bpc)
	if err != nil {
		return fmt.Errorf("%w: reading palette data", ErrTruncatedSpriteData)
	}

	s.palettes, err = DecodePalettes(raw, s.pixelFormat, int(count), int(colors))
	if err != nil {
		return fmt.Errorf("decoding palettes: %w", err)
	}
	return nil
}

func (s *Sprite) parseTileData(r *chunk.Reader) error {
	encoding, err := r.U16()
	if err != nil {
		return fmt.Errorf("%w: reading tile encoding", ErrTruncatedSpriteData)
	}
	// Unknown encodings are reported per tile by DecodeTexture.
	s.encoding = EncodeFormat(encoding)

	blocks := make([][]byte, len(s.dims))
	total := 0
	for i := range blocks {
		n, err := r.U16()
		if err != nil {
			return fmt.Errorf("%w: reading tile %d length", ErrTruncatedSpriteData, i)
		}
		blocks[i], err = r.Bytes(int(n))
		if err != nil {
			return fmt.Errorf("%w: reading tile %d data", ErrTruncatedSpriteData, i)
		}
		total += int(n)
	}

	s.tileData = make([]byte, 0, total)
	s.tileSpans = make([]tileSpan, len(blocks))
	for i, b := range blocks {
		s.tileSpans[i] = tileSpan{offset: len(s.tileData), length: len(b)}
		s.tileData = append(s.tileData, b...)
	}
	return nil
}

// validate checks that every table reference points inside its target table.
// Animation frames may name missing poses; Pose reports that when drawn.
func (s *Sprite) validate() error {
	for i, ref := range s.composites {
		if ref.Tile >= len(s.dims) {
			return fmt.Errorf("%w: composite %d references tile %d of %d",
				ErrInvalidFormat, i, ref.Tile, len(s.dims))
		}
	}
	for i, g := range s.poses {
		if g.Count > 0 && g.Offset+g.Count > len(s.composites) {
			return fmt.Errorf("%w: composite group %d spans %d+%d of %d",
				ErrInvalidFormat, i, g.Offset, g.Count, len(s.composites))
		}
	}
	for i, g := range s.animations {
		if g.Count > 0 && g.Offset+g.Count > len(s.animFrames) {
			return fmt.Errorf("%w: animation group %d spans %d+%d of %d",
				ErrInvalidFormat, i, g.Offset, g.Count, len(s.animFrames))
		}
	}
	return nil
}

// Scale returns the integer scale the sprite was parsed with.
func (s *Sprite) Scale() int { return s.scale }

// TileCount returns the number of tiles.
func (s *Sprite) TileCount() int { return len(s.dims) }

// PaletteCount returns the number of palettes.
func (s *Sprite) PaletteCount() int { return len(s.palettes) }

// PaletteFormat returns the stored palette pixel format.
func (s *Sprite) PaletteFormat() PixelFormat { return s.pixelFormat }

// EncodeFormat returns the encoding shared by every tile.
func (s *Sprite) EncodeFormat() EncodeFormat { return s.encoding }

// Palettes returns the decoded palettes. The slice must not be modified.
func (s *Sprite) Palettes() PaletteSet { return s.palettes }

// Dimensions returns the unscaled size of tile i.
func (s *Sprite) Dimensions(i int) (TileDim, error) {
	if i < 0 || i >= len(s.dims) {
		return TileDim{}, fmt.Errorf("%w: tile %d (have %d)", ErrOutOfRange, i, len(s.dims))
	}
	return s.dims[i], nil
}

// CompositeList returns every placed tile. The slice must not be modified.
func (s *Sprite) CompositeList() []TileRef { return s.composites }

// CompositeGroups returns the pose table. The slice must not be modified.
func (s *Sprite) CompositeGroups() []Group { return s.poses }

// GroupBounds returns the bounding rectangle stored for each pose.
func (s *Sprite) GroupBounds() []Rect { return s.poseBounds }

// AnimationFrames returns the animation frame table. The slice must not be modified.
func (s *Sprite) AnimationFrames() []AnimationFrame { return s.animFrames }

// AnimationGroups returns the animation table. The slice must not be modified.
func (s *Sprite) AnimationGroups() []Group { return s.animations }

// Pose returns the tiles placed by composite group i.
func (s *Sprite) Pose(i int) ([]TileRef, error) {
	if i < 0 || i >= len(s.poses) {
		return nil, fmt.Errorf("%w: pose %d (have %d)", ErrOutOfRange, i, len(s.poses))
	}
	g := s.poses[i]
	if g.Count == 0 {
		return nil, nil
	}
	return s.composites[g.Offset : g.Offset+g.Count], nil
}

// Animation returns the frames of animation group i.
func (s *Sprite) Animation(i int) ([]AnimationFrame, error) {
	if i < 0 || i >= len(s.animations) {
		return nil, fmt.Errorf("%w: animation %d (have %d)", ErrOutOfRange, i, len(s.animations))
	}
	g := s.animations[i]
	if g.Count == 0 {
		return nil, nil
	}
	return s.animFrames[g.Offset : g.Offset+g.Count], nil
}

// TileData returns the still-encoded pixel bytes of tile i.
func (s *Sprite) TileData(i int) ([]byte, error) {
	if i < 0 || i >= len(s.tileSpans) {
		return nil, fmt.Errorf("%w: tile %d (have %d)", ErrOutOfRange, i, len(s.tileSpans))
	}
	sp := s.tileSpans[i]
	end := sp.offset + sp.length
	return s.tileData[sp.offset:end:end], nil
}

// Texture decodes tile with the given palette at the sprite's scale. The
// result is owned by the caller.
func (s *Sprite) Texture(tile, palette int) (*Texture, error) {
	data, err := s.TileData(tile)
	if err != nil {
		return nil, err
	}
	pal, err := s.palettes.Get(palette)
	if err != nil {
		return nil, err
	}
	d := s.dims[tile]
	return DecodeTexture(data, s.encoding, pal, d.Width, d.Height, s.scale)
}

// CachedTexture is Texture memoized per (tile, palette). The returned texture
// is shared and must not be modified. Safe for concurrent use.
func (s *Sprite) CachedTexture(tile, palette int) (*Texture, error) {
	key := textureKey{tile: tile, palette: palette}
	if tex, ok := s.cache.Get(key); ok {
		return tex, nil
	}

	tex, err := s.Texture(tile, palette)
	if err != nil {
		return nil, err
	}
	if prev, ok, _ := s.cache.PeekOrAdd(key, tex); ok {
		return prev, nil
	}
	return tex, nil
}

// CurrentPalette returns the palette used by Tile.
func (s *Sprite) CurrentPalette() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SetPalette selects the palette used by Tile.
func (s *Sprite) SetPalette(i int) error {
	if i < 0 || i >= len(s.palettes) {
		return fmt.Errorf("%w: palette %d (have %d)", ErrOutOfRange, i, len(s.palettes))
	}
	s.mu.Lock()
	s.current = i
	s.mu.Unlock()
	return nil
}

// Tile returns the cached texture of tile i in the current palette.
func (s *Sprite) Tile(i int) (*Texture, error) {
	return s.CachedTexture(i, s.CurrentPalette())
}

// Prefetch decodes every tile of a palette into the cache.
func (s *Sprite) Prefetch(palette int) error {
	if _, err := s.palettes.Get(palette); err != nil {
		return err
	}
	for i := range s.dims {
		if _, err := s.CachedTexture(i, palette); err != nil {
			return fmt.Errorf("decoding tile %d: %w", i, err)
		}
	}
	return nil
}

// CachedCount returns the number of decoded textures held in the cache.
func (s *Sprite) CachedCount() int {
	return s.cache.Len()
}

// FreePaletteCache drops every cached texture decoded with palette.
func (s *Sprite) FreePaletteCache(palette int) {
	for _, key := range s.cache.Keys() {
		if key.palette == palette {
			s.cache.Remove(key)
		}
	}
}

// Close releases all cached textures.
func (s *Sprite) Close() {
	s.cache.Purge()
}
