package toolpath

import (
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/beamcut/pkg/kernel"
)

// Direction is the rotation sense of a circular cut move.
type Direction int

const (
	Clockwise Direction = iota
	Counterclockwise
)

// Mnemonic returns the machine command for the rotation sense.
func (d Direction) Mnemonic() string {
	if d == Counterclockwise {
		return "G03"
	}
	return "G02"
}

// axisSnapEpsilon is the tolerance for snapping sin/cos at axis-aligned
// offset angles. Trigonometric evaluation of e.g. cos(90°) yields a
// value near but not exactly zero, which would otherwise leak a
// spurious offset component into the program; whenever one component
// sits within this distance of ±1 the other is forced to exactly 0.
// This is a deliberate approximation, not incidental rounding.
const axisSnapEpsilon = 1e-9

// ArcParams are the circular-interpolation parameters for one arc
// move: rotation sense and the I/J vector from the motion's start
// point to the arc center, in the machine's sign convention.
type ArcParams struct {
	Dir     Direction
	OffsetX float64
	OffsetY float64
}

// cross returns the z component of a × b.
func cross(a, b v2.Vec) float64 {
	return a.X*b.Y - a.Y*b.X
}

// signOrOne normalizes v to exactly +1 or -1. The degenerate zero case
// defaults to +1.
func signOrOne(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v / math.Abs(v)
}

// SolveArc computes the rotation sense and center offset for an arc or
// circle curve. The rotation sense comes from the cross product of the
// start-to-center offset with a sampled on-curve midpoint; the offset
// components come from the offset vector's angle against the machine's
// +X axis, axis-snapped and with X negated to match the machine's I/J
// convention.
func SolveArc(k kernel.Kernel, c kernel.Curve) (ArcParams, error) {
	center, ok := k.Center(c)
	if !ok {
		return ArcParams{}, fmt.Errorf("toolpath: %s curve has no center point", k.Kind(c))
	}

	t0, t1 := k.Domain(c)
	start := k.Evaluate(c, t0)
	offset := start.Sub(center)
	radius := offset.Length()
	if radius == 0 {
		return ArcParams{}, fmt.Errorf("toolpath: degenerate arc with zero radius")
	}

	// A quarter point avoids collinearity with the center on full
	// circles, where the half point is diametrically opposite the start.
	frac := 0.5
	if k.Kind(c) == kernel.KindCircle {
		frac = 0.25
	}
	mid := k.Evaluate(c, t0+(t1-t0)*frac)

	dir := Clockwise
	if signOrOne(cross(offset, mid.Sub(center))) > 0 {
		dir = Counterclockwise
	}

	// Angle between the offset vector and world +X, in [0°, 180°],
	// widened to the full circle by the cross-product sign.
	angle := math.Acos(math.Max(-1, math.Min(1, offset.X/radius))) * 180 / math.Pi
	if signOrOne(cross(offset, v2.Vec{X: 1, Y: 0})) < 0 {
		angle = 360 - angle
	}

	rad := angle * math.Pi / 180
	cosA := math.Cos(rad)
	sinA := math.Sin(rad)
	if math.Abs(math.Abs(sinA)-1) <= axisSnapEpsilon {
		cosA = 0
	}
	if math.Abs(math.Abs(cosA)-1) <= axisSnapEpsilon {
		sinA = 0
	}

	return ArcParams{
		Dir:     dir,
		OffsetX: -cosA * radius,
		OffsetY: sinA * radius,
	}, nil
}
