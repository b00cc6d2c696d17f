package render

import (
	"errors"
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/Faultbox/mobispr/internal/logger"
	"github.com/Faultbox/mobispr/pkg/formats"
)

// ErrEmpty is returned when a pose or frame covers no pixels.
var ErrEmpty = errors.New("nothing to render")

// tileRect returns the area covered by a placed tile in sprite coordinates.
func tileRect(spr *formats.Sprite, ref formats.TileRef, x, y int) image.Rectangle {
	d, err := spr.Dimensions(ref.Tile)
	if err != nil {
		return image.Rectangle{}
	}
	s := spr.Scale()
	p := image.Pt(x+ref.X, y+ref.Y)
	return image.Rectangle{Min: p, Max: p.Add(image.Pt(d.Width*s, d.Height*s))}
}

// PoseBounds returns the union of every tile rectangle in composite group pose.
func PoseBounds(spr *formats.Sprite, pose int) (image.Rectangle, error) {
	return poseBoundsAt(spr, pose, 0, 0)
}

func poseBoundsAt(spr *formats.Sprite, pose, x, y int) (image.Rectangle, error) {
	refs, err := spr.Pose(pose)
	if err != nil {
		return image.Rectangle{}, err
	}
	var r image.Rectangle
	for _, ref := range refs {
		r = r.Union(tileRect(spr, ref, x, y))
	}
	return r, nil
}

// AnimationFrameBounds returns the area covered by animation frame frame.
func AnimationFrameBounds(spr *formats.Sprite, frame int) (image.Rectangle, error) {
	frames := spr.AnimationFrames()
	if frame < 0 || frame >= len(frames) {
		return image.Rectangle{}, fmt.Errorf("%w: animation frame %d (have %d)", formats.ErrOutOfRange, frame, len(frames))
	}
	f := frames[frame]
	if !hasPose(spr, f.Pose) {
		return image.Rectangle{}, nil
	}
	return poseBoundsAt(spr, f.Pose, f.X, f.Y)
}

// AnimationBounds returns the area covered by any frame of animation anim.
func AnimationBounds(spr *formats.Sprite, anim int) (image.Rectangle, error) {
	frames, err := spr.Animation(anim)
	if err != nil {
		return image.Rectangle{}, err
	}
	var r image.Rectangle
	for _, f := range frames {
		if !hasPose(spr, f.Pose) {
			continue
		}
		b, err := poseBoundsAt(spr, f.Pose, f.X, f.Y)
		if err != nil {
			return image.Rectangle{}, err
		}
		r = r.Union(b)
	}
	return r, nil
}

// hasPose reports whether pose names an existing composite group.
func hasPose(spr *formats.Sprite, pose int) bool {
	return pose >= 0 && pose < len(spr.CompositeGroups())
}

// DrawPose draws composite group pose with its origin at (x, y). Each tile's
// own transform is combined with tr. Tiles with no pixels are skipped.
func DrawPose(c *Canvas, spr *formats.Sprite, palette, pose, x, y int, tr formats.Transform) error {
	refs, err := spr.Pose(pose)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		if d, err := spr.Dimensions(ref.Tile); err == nil && (d.Width == 0 || d.Height == 0) {
			logger.Debug("skipping empty tile", zap.Int("pose", pose), zap.Int("tile", ref.Tile))
			continue
		}
		tex, err := spr.CachedTexture(ref.Tile, palette)
		if err != nil {
			return fmt.Errorf("decoding tile %d: %w", ref.Tile, err)
		}
		c.DrawTexture(tex, x+ref.X, y+ref.Y, ref.Transform.Combine(tr))
	}
	return nil
}

// DrawAnimationFrame draws the pose referenced by animation frame frame,
// offset by the frame's position. A frame naming a missing pose draws nothing.
func DrawAnimationFrame(c *Canvas, spr *formats.Sprite, palette, frame, x, y int, tr formats.Transform) error {
	frames := spr.AnimationFrames()
	if frame < 0 || frame >= len(frames) {
		return fmt.Errorf("%w: animation frame %d (have %d)", formats.ErrOutOfRange, frame, len(frames))
	}
	f := frames[frame]
	if !hasPose(spr, f.Pose) {
		logger.Debug("skipping frame with missing pose", zap.Int("frame", frame), zap.Int("pose", f.Pose))
		return nil
	}
	return DrawPose(c, spr, palette, f.Pose, x+f.X, y+f.Y, f.Transform.Combine(tr))
}

// RenderPose draws one pose onto a canvas sized to fit it.
func RenderPose(spr *formats.Sprite, palette, pose int) (*Canvas, error) {
	bounds, err := PoseBounds(spr, pose)
	if err != nil {
		return nil, err
	}
	if bounds.Empty() {
		return nil, fmt.Errorf("%w: pose %d", ErrEmpty, pose)
	}

	c := NewCanvas(bounds)
	if err := DrawPose(c, spr, palette, pose, 0, 0, formats.TransformNone); err != nil {
		return nil, err
	}
	logger.Debug("rendered pose",
		zap.Int("pose", pose),
		zap.Int("palette", palette),
		zap.Stringer("bounds", bounds))
	return c, nil
}

// RenderAnimation draws every frame of animation anim onto equally sized
// canvases so they can be played back or written as a sequence.
func RenderAnimation(spr *formats.Sprite, palette, anim int) ([]*Canvas, error) {
	frames, err := spr.Animation(anim)
	if err != nil {
		return nil, err
	}
	bounds, err := AnimationBounds(spr, anim)
	if err != nil {
		return nil, err
	}
	if bounds.Empty() {
		return nil, fmt.Errorf("%w: animation %d", ErrEmpty, anim)
	}

	g := spr.AnimationGroups()[anim]
	out := make([]*Canvas, 0, len(frames))
	for i := range frames {
		c := NewCanvas(bounds)
		if err := DrawAnimationFrame(c, spr, palette, g.Offset+i, 0, 0, formats.TransformNone); err != nil {
			return nil, fmt.Errorf("animation %d frame %d: %w", anim, i, err)
		}
		out = append(out, c)
	}
	logger.Debug("rendered animation",
		zap.Int("animation", anim),
		zap.Int("frames", len(out)),
		zap.Stringer("bounds", bounds))
	return out, nil
}

// RenderTile returns tile decoded with palette as a standalone image.
func RenderTile(spr *formats.Sprite, tile, palette int) (*image.NRGBA, error) {
	tex, err := spr.CachedTexture(tile, palette)
	if err != nil {
		return nil, err
	}
	return tex.NRGBA(), nil
}
