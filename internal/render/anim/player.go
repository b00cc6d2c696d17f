// Package anim drives animation playback timing for parsed sprites.
package anim

import (
	"time"

	"github.com/Faultbox/mobispr/pkg/formats"
)

// DefaultTick is the duration of one animation tick (15 ticks per second).
const DefaultTick = time.Second / 15

// Player steps through the frames of one animation group. Each frame stays
// on screen for its Ticks count; frames with zero ticks last one tick.
type Player struct {
	frames  []formats.AnimationFrame
	first   int
	tick    time.Duration
	loop    bool
	current int
	elapsed time.Duration
	done    bool
}

// NewPlayer returns a looping player for animation anim of spr. A tick of
// zero or less uses DefaultTick.
func NewPlayer(spr *formats.Sprite, anim int, tick time.Duration) (*Player, error) {
	frames, err := spr.Animation(anim)
	if err != nil {
		return nil, err
	}
	if tick <= 0 {
		tick = DefaultTick
	}
	return &Player{
		frames: frames,
		first:  spr.AnimationGroups()[anim].Offset,
		tick:   tick,
		loop:   true,
		done:   len(frames) == 0,
	}, nil
}

// SetLoop controls whether playback wraps to the first frame.
func (p *Player) SetLoop(loop bool) {
	p.loop = loop
}

func (p *Player) frameDuration(i int) time.Duration {
	ticks := p.frames[i].Ticks
	if ticks < 1 {
		ticks = 1
	}
	return time.Duration(ticks) * p.tick
}

// Advance moves playback forward by dt and returns the current frame.
func (p *Player) Advance(dt time.Duration) formats.AnimationFrame {
	if len(p.frames) == 0 {
		return formats.AnimationFrame{}
	}
	if p.done {
		return p.frames[p.current]
	}

	p.elapsed += dt
	for p.elapsed >= p.frameDuration(p.current) {
		p.elapsed -= p.frameDuration(p.current)
		if p.current+1 < len(p.frames) {
			p.current++
			continue
		}
		if !p.loop {
			p.elapsed = 0
			p.done = true
			break
		}
		p.current = 0
	}
	return p.frames[p.current]
}

// Frame returns the index of the current frame within the animation.
func (p *Player) Frame() int { return p.current }

// FrameIndex returns the current frame's index into Sprite.AnimationFrames.
func (p *Player) FrameIndex() int { return p.first + p.current }

// Len returns the number of frames in the animation.
func (p *Player) Len() int { return len(p.frames) }

// Done reports whether a non-looping animation has reached its last frame.
func (p *Player) Done() bool { return p.done }

// Duration returns the length of one pass through the animation.
func (p *Player) Duration() time.Duration {
	var d time.Duration
	for i := range p.frames {
		d += p.frameDuration(i)
	}
	return d
}

// Reset rewinds playback to the first frame.
func (p *Player) Reset() {
	p.current = 0
	p.elapsed = 0
	p.done = len(p.frames) == 0
}
