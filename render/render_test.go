package render_test

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/rotoplay/render"
)

var (
	red   = color.RGBA{R: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

func filled(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}

	return img
}

func TestFit(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		src        image.Image
		cols, rows int
		want       image.Rectangle
		covered    []image.Point
		padded     []image.Point
	}{
		"same size": {
			src:  filled(4, 2, red),
			cols: 4, rows: 1,
			want:    image.Rect(0, 0, 4, 2),
			covered: []image.Point{{0, 0}, {3, 1}},
		},
		"pillarboxed": {
			src:  filled(2, 2, red),
			cols: 8, rows: 1,
			want:    image.Rect(0, 0, 8, 2),
			covered: []image.Point{{3, 0}, {4, 1}},
			padded:  []image.Point{{0, 0}, {7, 1}},
		},
		"letterboxed": {
			src:  filled(4, 2, red),
			cols: 4, rows: 4,
			want:    image.Rect(0, 0, 4, 8),
			covered: []image.Point{{0, 3}, {3, 4}},
			padded:  []image.Point{{0, 0}, {3, 7}},
		},
		"downscaled": {
			src:  filled(64, 64, red),
			cols: 8, rows: 4,
			want:    image.Rect(0, 0, 8, 8),
			covered: []image.Point{{0, 0}, {7, 7}},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := render.Fit(tc.src, tc.cols, tc.rows)
			require.NotNil(t, got)
			assert.Equal(t, tc.want, got.Bounds())

			for _, p := range tc.covered {
				assert.Equal(t, red, got.RGBAAt(p.X, p.Y), "pixel %v", p)
			}

			for _, p := range tc.padded {
				c := got.RGBAAt(p.X, p.Y)
				assert.Equal(t, [3]uint8{}, [3]uint8{c.R, c.G, c.B}, "pixel %v", p)
			}
		})
	}
}

func TestFitEmpty(t *testing.T) {
	t.Parallel()

	assert.Nil(t, render.Fit(filled(4, 4, red), 0, 10))
	assert.Nil(t, render.Fit(filled(4, 4, red), 10, 0))
	assert.Nil(t, render.Fit(image.NewRGBA(image.Rectangle{}), 10, 10))
}

func TestFrame(t *testing.T) {
	t.Parallel()

	mixed := image.NewRGBA(image.Rect(0, 0, 2, 2))
	mixed.SetRGBA(0, 0, red)
	mixed.SetRGBA(1, 0, green)
	mixed.SetRGBA(0, 1, blue)
	mixed.SetRGBA(1, 1, white)

	tcs := map[string]struct {
		img        *image.RGBA
		cols, rows int
		want       string
	}{
		"distinct colors": {
			img:  mixed,
			cols: 2, rows: 1,
			want: "\033[38;2;255;0;0m\033[48;2;0;0;255m▀" +
				"\033[38;2;0;255;0m\033[48;2;255;255;255m▀" +
				"\033[0m",
		},
		"repeated colors are not re-emitted": {
			img:  filled(3, 2, red),
			cols: 3, rows: 1,
			want: "\033[38;2;255;0;0m\033[48;2;255;0;0m▀▀▀\033[0m",
		},
		"rows are separated by newlines": {
			img:  filled(1, 4, green),
			cols: 1, rows: 2,
			want: strings.Join([]string{
				"\033[38;2;0;255;0m\033[48;2;0;255;0m▀\033[0m",
				"\033[38;2;0;255;0m\033[48;2;0;255;0m▀\033[0m",
			}, "\n"),
		},
		"odd height leaves bottom black": {
			img:  filled(1, 1, white),
			cols: 1, rows: 1,
			want: "\033[38;2;255;255;255m\033[48;2;0;0;0m▀\033[0m",
		},
		"nil image": {
			img:  nil,
			cols: 4, rows: 4,
			want: "",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var sb strings.Builder

			sb.WriteString("stale")

			render.Frame(tc.img, tc.cols, tc.rows, &sb)
			assert.Equal(t, tc.want, sb.String())
		})
	}
}
