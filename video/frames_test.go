package video_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/rotoplay/video"
)

// numbered returns n frames of the given size, each filled with a gray level
// equal to its index.
func numbered(n, w, h int) []image.Image {
	frames := make([]image.Image, n)
	for i := range frames {
		img := image.NewRGBA(image.Rect(0, 0, w, h))
		for y := range h {
			for x := range w {
				img.SetRGBA(x, y, color.RGBA{R: uint8(i), G: uint8(i), B: uint8(i), A: 255})
			}
		}

		frames[i] = img
	}

	return frames
}

func TestNewFrames(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		frames []image.Image
		rate   int
		err    error
	}{
		"valid": {
			frames: numbered(3, 4, 2),
			rate:   5,
		},
		"no frames": {
			frames: nil,
			rate:   5,
			err:    video.ErrInvalidSource,
		},
		"zero frame rate": {
			frames: numbered(3, 4, 2),
			rate:   0,
			err:    video.ErrInvalidSource,
		},
		"negative frame rate": {
			frames: numbered(3, 4, 2),
			rate:   -1,
			err:    video.ErrInvalidSource,
		},
		"empty frame": {
			frames: []image.Image{image.NewRGBA(image.Rectangle{})},
			rate:   5,
			err:    video.ErrInvalidSource,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			src, err := video.NewFrames(tc.frames, tc.rate)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, len(tc.frames), src.FrameCount())
			assert.Equal(t, tc.rate, src.FrameRate())
			assert.Equal(t, image.Pt(4, 2), src.Size())
			assert.Equal(t, 0, src.Position())
		})
	}
}

func TestFramesRead(t *testing.T) {
	t.Parallel()

	src, err := video.NewFrames(numbered(4, 3, 3), 10)
	require.NoError(t, err)

	for i := range 4 {
		assert.Equal(t, i, src.Position())

		frame, err := src.ReadNextFrame()
		require.NoError(t, err)
		require.NotNil(t, frame)
		assert.Equal(t, uint8(i), frame.RGBAAt(1, 1).R)
		assert.Equal(t, image.Rect(0, 0, 3, 3), frame.Bounds())
	}

	assert.Equal(t, 4, src.Position())

	_, err = src.ReadNextFrame()
	require.ErrorIs(t, err, video.ErrEndOfStream)
}

func TestFramesReadReturnsCopy(t *testing.T) {
	t.Parallel()

	src, err := video.NewFrames(numbered(1, 2, 2), 1)
	require.NoError(t, err)

	first, err := src.ReadNextFrame()
	require.NoError(t, err)

	first.SetRGBA(0, 0, color.RGBA{R: 200, A: 255})

	require.NoError(t, src.Seek(0))

	second, err := src.ReadNextFrame()
	require.NoError(t, err)
	assert.Equal(t, uint8(0), second.RGBAAt(0, 0).R, "mutating a read frame must not affect the source")
}

func TestFramesNormalizesSize(t *testing.T) {
	t.Parallel()

	frames := []image.Image{
		image.NewRGBA(image.Rect(0, 0, 4, 4)),
		image.NewRGBA(image.Rect(0, 0, 8, 2)),
		image.NewGray(image.Rect(10, 10, 12, 12)),
	}

	src, err := video.NewFrames(frames, 24)
	require.NoError(t, err)

	for range frames {
		frame, err := src.ReadNextFrame()
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 4, 4), frame.Bounds())
	}
}

func TestFramesSeek(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		frame int
		err   error
	}{
		"first":        {frame: 0},
		"last":         {frame: 4},
		"negative":     {frame: -1, err: video.ErrInvalidArgument},
		"past the end": {frame: 5, err: video.ErrInvalidArgument},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			src, err := video.NewFrames(numbered(5, 1, 1), 5)
			require.NoError(t, err)

			err = src.Seek(tc.frame)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				assert.Equal(t, 0, src.Position())

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.frame, src.Position())

			frame, err := src.ReadNextFrame()
			require.NoError(t, err)
			assert.Equal(t, uint8(tc.frame), frame.RGBAAt(0, 0).R)
		})
	}
}

func TestFramesLoopingLaw(t *testing.T) {
	t.Parallel()

	const n = 6

	src, err := video.NewFrames(numbered(n, 1, 1), 5)
	require.NoError(t, err)

	var got []uint8

	for range n + 1 {
		frame, err := src.ReadNextFrame()
		require.NoError(t, err)

		got = append(got, frame.RGBAAt(0, 0).R)

		if src.Position() == src.FrameCount() {
			require.NoError(t, src.Seek(0))
		}
	}

	assert.Equal(t, []uint8{0, 1, 2, 3, 4, 5, 0}, got)
}
