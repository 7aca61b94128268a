// Package rotate turns frames about their midpoint.
//
// Angles are in degrees, positive counter-clockwise as seen on screen. The
// output keeps the input dimensions; regions not covered by the rotated image
// are filled with opaque black.
package rotate

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Matrix returns the source-to-destination affine transform that rotates by
// angle degrees about center and scales by scale. It matches OpenCV's
// getRotationMatrix2D, so a positive angle rotates counter-clockwise in image
// coordinates (y down).
func Matrix(center image.Point, angle, scale float64) f64.Aff3 {
	return MatrixAt(f64.Vec2{float64(center.X), float64(center.Y)}, angle, scale)
}

// MatrixAt is like [Matrix] but takes a continuous center, so the pivot can
// sit between pixels.
func MatrixAt(center f64.Vec2, angle, scale float64) f64.Aff3 {
	sin, cos := sincos(angle)

	alpha := scale * cos
	beta := scale * sin
	cx, cy := center[0], center[1]

	return f64.Aff3{
		alpha, beta, (1-alpha)*cx - beta*cy,
		-beta, alpha, beta*cx + (1-alpha)*cy,
	}
}

// sincos returns exact values for quarter turns so they map pixel centers
// onto pixel centers.
func sincos(angle float64) (float64, float64) {
	switch Normalize(angle) {
	case 0:
		return 0, 1
	case 90:
		return 1, 0
	case 180:
		return 0, -1
	case 270:
		return -1, 0
	}

	return math.Sincos(angle * math.Pi / 180)
}

// Normalize reduces angle to [0, 360).
func Normalize(angle float64) float64 {
	a := math.Mod(angle, 360)
	if a < 0 {
		a += 360
	}

	return a
}

// Rotator rotates frames in place, reusing one scratch buffer across calls.
// The zero value is ready to use. Not safe for concurrent use.
type Rotator struct {
	scratch *image.RGBA
}

// Apply rotates frame in place by angle degrees about the geometric center
// of the frame. Half turns, and quarter turns of frames whose width and
// height differ by an even number, map pixels onto pixels exactly; other
// angles are sampled bilinearly.
func (r *Rotator) Apply(frame *image.RGBA, angle int) {
	deg := Normalize(float64(angle))
	if deg == 0 {
		return
	}

	b := frame.Bounds()
	if b.Empty() {
		return
	}

	if r.scratch == nil || r.scratch.Rect != b {
		r.scratch = image.NewRGBA(b)
	}

	draw.Draw(r.scratch, b, frame, b.Min, draw.Src)
	draw.Draw(frame, b, image.NewUniform(color.RGBA{A: 0xff}), image.Point{}, draw.Src)

	// Pixel (x, y) covers [x, x+1), so the midpoint of an odd side is a
	// pixel center.
	center := f64.Vec2{
		float64(b.Min.X) + float64(b.Dx())/2,
		float64(b.Min.Y) + float64(b.Dy())/2,
	}
	m := MatrixAt(center, deg, 1)

	var interp draw.Transformer = draw.ApproxBiLinear
	if math.Mod(deg, 90) == 0 {
		interp = draw.NearestNeighbor
	}

	interp.Transform(frame, m, r.scratch, b, draw.Src, nil)
}
