// Package kernel defines the abstract curve-geometry kernel interface.
// Implementations (bezier, or an adapter over a host CAD system) answer
// geometric queries about opaque planar curves behind this interface. The
// kernel abstraction allows swapping curve math without changing the
// toolpath pipeline.
package kernel

import (
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Kind classifies a curve for per-kind toolpath dispatch.
type Kind int

const (
	KindLine Kind = iota
	KindPolyline
	KindArc
	KindCircle
	KindEllipse
	KindFreeform  // NURBS, splines, anything without a circular representation
	KindComposite // polycurve; exploded into sub-elements during synthesis
)

// String returns the lower-case name used in summaries and logs.
func (k Kind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindPolyline:
		return "polyline"
	case KindArc:
		return "arc"
	case KindCircle:
		return "circle"
	case KindEllipse:
		return "ellipse"
	case KindFreeform:
		return "curve"
	case KindComposite:
		return "polycurve"
	}
	return "unknown"
}

// Containment is the result of a planar closed-curve containment query.
type Containment int

const (
	Disjoint Containment = iota
	Intersecting
	ChildInsideParent
	ParentInsideChild
)

// BBox is an axis-aligned bounding box in working-plane coordinates.
type BBox struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// ContainsStrict reports whether o lies strictly inside b on all four
// bounds. Touching extents do not count as containment.
func (b BBox) ContainsStrict(o BBox) bool {
	return o.MinX > b.MinX && o.MaxX < b.MaxX &&
		o.MinY > b.MinY && o.MaxY < b.MaxY
}

// Intersects reports whether b and o overlap or touch.
func (b BBox) Intersects(o BBox) bool {
	return o.MinX <= b.MaxX && o.MaxX >= b.MinX &&
		o.MinY <= b.MaxY && o.MaxY >= b.MinY
}

// Extend grows b to include o.
func (b BBox) Extend(o BBox) BBox {
	return BBox{
		MinX: min(b.MinX, o.MinX),
		MaxX: max(b.MaxX, o.MaxX),
		MinY: min(b.MinY, o.MinY),
		MaxY: max(b.MaxY, o.MaxY),
	}
}

// Curve is an opaque handle to a planar curve held by a geometry kernel.
// Implementations wrap their internal representation. Handles are never
// duplicated or mutated by the pipeline; reordering only permutes them.
type Curve interface {
	// BoundingBox returns the axis-aligned extents in the working plane.
	BoundingBox() BBox
}

// Kernel is the abstract curve-geometry query interface. All pipeline
// stages consume curve geometry exclusively through these queries; the
// core never reimplements curve mathematics itself.
//
// Parameters passed to Evaluate, Curvature and Split live in the domain
// reported by Domain for that curve.
type Kernel interface {
	// Kind classifies the curve.
	Kind(c Curve) Kind

	// Domain returns the parameter interval (t0, t1) of the curve.
	Domain(c Curve) (t0, t1 float64)

	// Evaluate returns the point on the curve at parameter t.
	Evaluate(c Curve, t float64) v2.Vec

	// Curvature returns the unsigned curvature magnitude at parameter t.
	Curvature(c Curve, t float64) float64

	// Length returns the arc length of the curve.
	Length(c Curve) float64

	// Area returns the magnitude of the enclosed planar area. It is only
	// meaningful for closed curves; open curves report 0.
	Area(c Curve) float64

	// Center returns the center point for circle, arc and ellipse kinds.
	// The bool is false for kinds that have no center.
	Center(c Curve) (v2.Vec, bool)

	// IsClosed reports whether the curve is natively closed.
	IsClosed(c Curve) bool

	// IsClosable reports whether an open curve can be closed within the
	// kernel's closing tolerance.
	IsClosable(c Curve) bool

	// Close returns a closed variant of an open curve. The original
	// handle remains valid; callers replace it with the returned one.
	Close(c Curve) (Curve, error)

	// IsPlanar reports whether the curve lies in the working plane.
	IsPlanar(c Curve) bool

	// Containment reports the planar relation between two closed curves.
	Containment(parent, child Curve) Containment

	// Split divides the curve at parameter t, returning the pieces in
	// parameter order.
	Split(c Curve, t float64) ([]Curve, error)

	// Explode decomposes a composite or polyline into its sub-elements
	// in path order.
	Explode(c Curve) ([]Curve, error)
}
