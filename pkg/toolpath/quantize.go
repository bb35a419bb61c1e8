package toolpath

import (
	"math"
	"strconv"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Coordinates are emitted at a fixed 3-decimal precision with a
// round-half-toward-zero policy, so program output is reproducible
// bit-for-bit across runs. Closure checks use the same quantization,
// never raw floating-point equality.
const (
	precision = 3
	scale     = 1000
)

// Quantize rounds x to the emission precision, ties toward zero.
// Quantization is idempotent: Quantize(Quantize(x)) == Quantize(x).
func Quantize(x float64) float64 {
	s := math.Abs(x) * scale
	f := math.Floor(s)
	if s-f > 0.5 {
		f++
	}
	if f == 0 {
		return 0 // avoid -0.000 in output
	}
	return math.Copysign(f/scale, x)
}

// Coord formats a coordinate for program output.
func Coord(x float64) string {
	return strconv.FormatFloat(Quantize(x), 'f', precision, 64)
}

// SamePoint reports whether two points are equal after quantization.
func SamePoint(a, b v2.Vec) bool {
	return Quantize(a.X) == Quantize(b.X) && Quantize(a.Y) == Quantize(b.Y)
}
