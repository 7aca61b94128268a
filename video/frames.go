package video

import (
	"fmt"
	"image"
	"image/draw"
)

// Frames is an in-memory [Source] over a fixed list of frames.
//
// Create instances with [NewFrames].
type Frames struct {
	info   Info
	frames []*image.RGBA
	size   image.Point
	rate   int
	pos    int
}

// NewFrames creates a [Frames] source playing frames at rate frames per
// second. Frames smaller than the first are padded, larger ones cropped, so
// every read has the same size. It returns [ErrInvalidSource] for an empty
// list, a non-positive rate, or an empty first frame.
func NewFrames(frames []image.Image, rate int) (*Frames, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no frames", ErrInvalidSource)
	}

	size := frames[0].Bounds().Size()

	info := Info{
		Path:       "memory",
		Container:  "memory",
		FrameCount: len(frames),
		FrameRate:  rate,
		Width:      size.X,
		Height:     size.Y,
	}

	err := info.Validate()
	if err != nil {
		return nil, err
	}

	rect := image.Rectangle{Max: size}
	converted := make([]*image.RGBA, len(frames))

	for i, f := range frames {
		dst := image.NewRGBA(rect)
		draw.Draw(dst, rect, f, f.Bounds().Min, draw.Src)
		converted[i] = dst
	}

	info.DurationSeconds = float64(len(frames)) / float64(rate)

	return &Frames{
		info:   info,
		frames: converted,
		size:   size,
		rate:   rate,
	}, nil
}

// Info describes the frames.
func (f *Frames) Info() Info { return f.info }

// FrameCount implements [Source].
func (f *Frames) FrameCount() int { return len(f.frames) }

// FrameRate implements [Source].
func (f *Frames) FrameRate() int { return f.rate }

// Size implements [Source].
func (f *Frames) Size() image.Point { return f.size }

// Position implements [Source].
func (f *Frames) Position() int { return f.pos }

// ReadNextFrame returns a copy of the frame at the current position, so
// callers may modify it freely.
func (f *Frames) ReadNextFrame() (*image.RGBA, error) {
	if f.pos >= len(f.frames) {
		return nil, ErrEndOfStream
	}

	src := f.frames[f.pos]
	f.pos++

	dst := &image.RGBA{
		Pix:    make([]byte, len(src.Pix)),
		Stride: src.Stride,
		Rect:   src.Rect,
	}
	copy(dst.Pix, src.Pix)

	return dst, nil
}

// Seek implements [Source].
func (f *Frames) Seek(frame int) error {
	if frame < 0 || frame >= len(f.frames) {
		return fmt.Errorf("%w: seek to frame %d of %d", ErrInvalidArgument, frame, len(f.frames))
	}

	f.pos = frame

	return nil
}

// Close implements [Source]. It is a no-op.
func (f *Frames) Close() error { return nil }
