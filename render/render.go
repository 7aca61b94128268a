// Package render draws frames as ANSI-colored half-block characters.
//
// Each terminal cell shows two vertical pixels: the top pixel is the
// foreground color and the bottom pixel the background color of a "▀" (upper
// half block). Frames are first fitted to the cell grid with [Fit], then
// encoded with [Frame].
package render

import (
	"image"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
)

// Fit scales img to fit within cols x rows terminal cells (2*rows pixels
// tall), preserving aspect ratio. The image is centered and padded with
// black. It returns nil if the grid or the image is empty.
func Fit(img image.Image, cols, rows int) *image.RGBA {
	pixW := cols
	pixH := rows * 2

	srcBounds := img.Bounds()
	srcW := srcBounds.Dx()
	srcH := srcBounds.Dy()

	if pixW <= 0 || pixH <= 0 || srcW <= 0 || srcH <= 0 {
		return nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, pixW, pixH))

	scale := min(float64(pixW)/float64(srcW), float64(pixH)/float64(srcH))

	newW := max(int(float64(srcW)*scale), 1)
	newH := max(int(float64(srcH)*scale), 1)

	offsetX := (pixW - newW) / 2
	offsetY := (pixH - newH) / 2

	dstRect := image.Rect(offsetX, offsetY, offsetX+newW, offsetY+newH)
	draw.ApproxBiLinear.Scale(dst, dstRect, img, srcBounds, draw.Src, nil)

	return dst
}

// Frame writes cols x rows half-block cells for img to w. Color escape
// sequences are only emitted when a cell's colors differ from the previous
// cell on the same line, and every line ends with a reset.
func Frame(img *image.RGBA, cols, rows int, w *strings.Builder) {
	w.Reset()

	if img == nil {
		return
	}

	b := img.Bounds()
	w.Grow(rows * (cols*4 + 48))

	for row := range rows {
		topY := b.Min.Y + row*2
		botY := topY + 1

		var fg, bg color.RGBA

		for x := range cols {
			px := b.Min.X + x

			var top, bot color.RGBA
			if topY < b.Max.Y && px < b.Max.X {
				top = img.RGBAAt(px, topY)
			}

			if botY < b.Max.Y && px < b.Max.X {
				bot = img.RGBAAt(px, botY)
			}

			if x == 0 || top != fg {
				writeColor(w, "38", top)

				fg = top
			}

			if x == 0 || bot != bg {
				writeColor(w, "48", bot)

				bg = bot
			}

			w.WriteString("▀")
		}

		w.WriteString("\033[0m")

		if row < rows-1 {
			w.WriteByte('\n')
		}
	}
}

// writeColor writes a 24-bit SGR color sequence; layer is "38" for the
// foreground and "48" for the background.
func writeColor(w *strings.Builder, layer string, c color.RGBA) {
	w.WriteString("\033[")
	w.WriteString(layer)
	w.WriteString(";2;")
	w.WriteString(strconv.Itoa(int(c.R)))
	w.WriteByte(';')
	w.WriteString(strconv.Itoa(int(c.G)))
	w.WriteByte(';')
	w.WriteString(strconv.Itoa(int(c.B)))
	w.WriteByte('m')
}
