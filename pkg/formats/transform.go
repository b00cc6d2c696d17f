package formats

// Transform is the 2-bit orientation code attached to a placed tile.
type Transform uint8

// Tile transforms. Child and parent transforms combine with XOR.
const (
	TransformNone Transform = 0
	// TransformFlipX mirrors horizontally.
	TransformFlipX Transform = 1
	// TransformFlipY mirrors horizontally then rotates 180°, i.e. mirrors vertically.
	TransformFlipY Transform = 2
	// TransformRotate180 rotates 180°.
	TransformRotate180 Transform = TransformFlipX | TransformFlipY
)

// FlipsX reports whether columns are mirrored.
func (t Transform) FlipsX() bool { return t&TransformFlipX != 0 }

// FlipsY reports whether rows are mirrored.
func (t Transform) FlipsY() bool { return t&TransformFlipY != 0 }

// Combine applies t inside parent (for a tile drawn inside a flipped frame).
func (t Transform) Combine(parent Transform) Transform {
	return (t ^ parent) & TransformRotate180
}

// String returns a readable transform name.
func (t Transform) String() string {
	switch t & TransformRotate180 {
	case TransformFlipX:
		return "flip-x"
	case TransformFlipY:
		return "flip-y"
	case TransformRotate180:
		return "rotate-180"
	}
	return "none"
}

// Transformed returns a copy of the texture with t applied. Dimensions are
// unchanged since every supported transform keeps the bounding box.
func (tex *Texture) Transformed(t Transform) *Texture {
	out := &Texture{Width: tex.Width, Height: tex.Height, Pixels: make([]uint32, len(tex.Pixels))}
	fx, fy := t.FlipsX(), t.FlipsY()
	for y := 0; y < tex.Height; y++ {
		sy := y
		if fy {
			sy = tex.Height - 1 - y
		}
		for x := 0; x < tex.Width; x++ {
			sx := x
			if fx {
				sx = tex.Width - 1 - x
			}
			out.Pixels[y*tex.Width+x] = tex.Pixels[sy*tex.Width+sx]
		}
	}
	return out
}
