// Package render composes sprite tiles into poses and animation frames on a
// CPU canvas, and writes the result as image files.
package render

import (
	"image"

	"github.com/Faultbox/mobispr/pkg/formats"
)

// Canvas is an NRGBA image whose sprite origin sits at Origin.
type Canvas struct {
	Image  *image.NRGBA
	Origin image.Point
}

// NewCanvas allocates a transparent canvas covering bounds, where bounds is
// expressed relative to the sprite origin.
func NewCanvas(bounds image.Rectangle) *Canvas {
	return &Canvas{
		Image:  image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy())),
		Origin: image.Pt(-bounds.Min.X, -bounds.Min.Y),
	}
}

// DrawTexture blends tex, oriented by tr, with its top-left corner at (x, y)
// relative to the sprite origin. Pixels outside the canvas are clipped.
func (c *Canvas) DrawTexture(tex *formats.Texture, x, y int, tr formats.Transform) {
	if tr != formats.TransformNone {
		tex = tex.Transformed(tr)
	}

	dst := c.Image
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	left := c.Origin.X + x
	top := c.Origin.Y + y

	for py := 0; py < tex.Height; py++ {
		dy := top + py
		if dy < 0 || dy >= h {
			continue
		}
		row := tex.Pixels[py*tex.Width : (py+1)*tex.Width]
		for px, src := range row {
			dx := left + px
			if dx < 0 || dx >= w {
				continue
			}
			blend(dst.Pix[dy*dst.Stride+dx*4:], src)
		}
	}
}

// blend composites a 0xAARRGGBB colour over a straight-alpha RGBA pixel.
func blend(p []byte, c uint32) {
	sa := int(c >> 24)
	if sa == 0 {
		return
	}
	sr, sg, sb := int(c>>16&0xFF), int(c>>8&0xFF), int(c&0xFF)
	if sa == 255 {
		p[0], p[1], p[2], p[3] = byte(sr), byte(sg), byte(sb), 255
		return
	}

	da := int(p[3])
	outA := sa + da*(255-sa)/255
	if outA == 0 {
		return
	}
	p[0] = byte((sr*sa + int(p[0])*da*(255-sa)/255) / outA)
	p[1] = byte((sg*sa + int(p[1])*da*(255-sa)/255) / outA)
	p[2] = byte((sb*sa + int(p[2])*da*(255-sa)/255) / outA)
	p[3] = byte(outA)
}
