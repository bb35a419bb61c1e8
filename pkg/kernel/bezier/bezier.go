// Package bezier implements the kernel.Kernel interface using the
// honnef.co/go/curve 2-D curve library. It is the reference backend:
// curves are built analytically from lines, circular arcs, ellipses and
// cubic Bézier segments, and every query is answered in closed form or
// by adaptive sampling of the underlying primitives.
//
// All curve domains are normalized to [0, 1].
package bezier

import (
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"honnef.co/go/curve"

	"github.com/chazu/beamcut/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

const (
	// closeTolerance is the maximum start/end gap an open curve may have
	// and still be considered closable.
	closeTolerance = 0.01

	// closedEpsilon is the gap below which a curve counts as natively
	// closed.
	closedEpsilon = 1e-9

	// containmentSamples is the number of points sampled per curve when
	// answering a closed-curve containment query.
	containmentSamples = 32

	// areaSamples is the polygonization density used for the area of
	// closed curves that have no closed-form area.
	areaSamples = 256

	// lengthAccuracy is the accuracy passed to arc-length and perimeter
	// evaluations of the underlying library.
	lengthAccuracy = 1e-6

	twoPi = 2 * math.Pi
)

// pt converts a working-plane vector to a library point.
func pt(v v2.Vec) curve.Point { return curve.Pt(v.X, v.Y) }

// vec converts a library point back to a working-plane vector.
func vec(p curve.Point) v2.Vec { return v2.Vec{X: p.X, Y: p.Y} }

func fromRect(r curve.Rect) kernel.BBox {
	r = r.Abs()
	return kernel.BBox{MinX: r.X0, MaxX: r.X1, MinY: r.Y0, MaxY: r.Y1}
}

// Kernel answers geometry queries for curves built by this package's
// constructors. The zero value is not usable; call New.
type Kernel struct{}

// New returns a new bezier Kernel.
func New() *Kernel {
	return &Kernel{}
}

// --- curve handle types ---

// line is a straight segment.
type line struct {
	seg curve.Line
}

func (l *line) BoundingBox() kernel.BBox { return fromRect(l.seg.BoundingBox()) }

// polyline is a sequence of straight segments through pts.
type polyline struct {
	pts []v2.Vec
}

func (p *polyline) BoundingBox() kernel.BBox {
	b := kernel.BBox{MinX: p.pts[0].X, MaxX: p.pts[0].X, MinY: p.pts[0].Y, MaxY: p.pts[0].Y}
	for _, q := range p.pts[1:] {
		b = b.Extend(kernel.BBox{MinX: q.X, MaxX: q.X, MinY: q.Y, MaxY: q.Y})
	}
	return b
}

// arc is a circular arc. A full circle is an arc with |sweep| == 2π.
type arc struct {
	center v2.Vec
	radius float64
	start  float64 // start angle in radians
	sweep  float64 // signed sweep in radians; positive is counterclockwise
}

func (a *arc) full() bool { return math.Abs(a.sweep) >= twoPi-closedEpsilon }

func (a *arc) BoundingBox() kernel.BBox {
	shape := curve.Arc{
		Center:     pt(a.center),
		Radii:      curve.Vec(a.radius, a.radius),
		StartAngle: a.start,
		SweepAngle: a.sweep,
	}
	return fromRect(shape.BoundingBox())
}

// ellipse is a full ellipse, parametrized counterclockwise from the
// rotated +X axis point.
type ellipse struct {
	shape curve.Ellipse
}

func (e *ellipse) BoundingBox() kernel.BBox { return fromRect(e.shape.BoundingBox()) }

// freeform is a cubic Bézier spline. Parameter space is divided evenly
// across the segments.
type freeform struct {
	segs []curve.CubicBez
}

func (f *freeform) BoundingBox() kernel.BBox {
	b := fromRect(f.segs[0].BoundingBox())
	for _, s := range f.segs[1:] {
		b = b.Extend(fromRect(s.BoundingBox()))
	}
	return b
}

// composite is a polycurve: an ordered chain of sub-curves where each
// sub-curve starts where the previous one ends.
type composite struct {
	subs []kernel.Curve
}

func (c *composite) BoundingBox() kernel.BBox {
	b := c.subs[0].BoundingBox()
	for _, s := range c.subs[1:] {
		b = b.Extend(s.BoundingBox())
	}
	return b
}

// --- constructors ---

// Line creates a straight segment from p0 to p1.
func Line(p0, p1 v2.Vec) kernel.Curve {
	return &line{seg: curve.Line{P0: pt(p0), P1: pt(p1)}}
}

// Polyline creates a polyline through the given points. At least two
// points are required.
func Polyline(pts ...v2.Vec) kernel.Curve {
	if len(pts) < 2 {
		panic(fmt.Sprintf("bezier.Polyline: need at least 2 points, got %d", len(pts)))
	}
	cp := make([]v2.Vec, len(pts))
	copy(cp, pts)
	return &polyline{pts: cp}
}

// Arc creates a circular arc around center with the given radius,
// starting at startAngle (radians from +X) and sweeping by sweep
// radians. Positive sweep is counterclockwise.
func Arc(center v2.Vec, radius, startAngle, sweep float64) kernel.Curve {
	if radius <= 0 {
		panic(fmt.Sprintf("bezier.Arc: radius must be positive, got %g", radius))
	}
	return &arc{center: center, radius: radius, start: startAngle, sweep: sweep}
}

// Circle creates a full counterclockwise circle with its start point on
// the +X side of the center.
func Circle(center v2.Vec, radius float64) kernel.Curve {
	return Arc(center, radius, 0, twoPi)
}

// Ellipse creates a full counterclockwise ellipse with semi-axes rx, ry
// rotated by rotation radians.
func Ellipse(center v2.Vec, rx, ry, rotation float64) kernel.Curve {
	if rx <= 0 || ry <= 0 {
		panic(fmt.Sprintf("bezier.Ellipse: radii must be positive, got (%g, %g)", rx, ry))
	}
	return &ellipse{shape: curve.NewEllipse(pt(center), curve.Vec(rx, ry), rotation)}
}

// Cubic creates a single cubic Bézier segment.
func Cubic(p0, p1, p2, p3 v2.Vec) kernel.Curve {
	return &freeform{segs: []curve.CubicBez{{P0: pt(p0), P1: pt(p1), P2: pt(p2), P3: pt(p3)}}}
}

// Spline creates a cubic Bézier spline from control points. The number
// of points must be 3n+1 for n segments; consecutive segments share
// their boundary point.
func Spline(ctrl ...v2.Vec) kernel.Curve {
	if len(ctrl) < 4 || (len(ctrl)-1)%3 != 0 {
		panic(fmt.Sprintf("bezier.Spline: need 3n+1 control points, got %d", len(ctrl)))
	}
	n := (len(ctrl) - 1) / 3
	segs := make([]curve.CubicBez, n)
	for i := 0; i < n; i++ {
		segs[i] = curve.CubicBez{
			P0: pt(ctrl[3*i]),
			P1: pt(ctrl[3*i+1]),
			P2: pt(ctrl[3*i+2]),
			P3: pt(ctrl[3*i+3]),
		}
	}
	return &freeform{segs: segs}
}

// Composite creates a polycurve from sub-curves laid end to end. The
// caller is responsible for continuity between consecutive sub-curves.
func Composite(subs ...kernel.Curve) kernel.Curve {
	if len(subs) == 0 {
		panic("bezier.Composite: need at least one sub-curve")
	}
	cp := make([]kernel.Curve, len(subs))
	copy(cp, subs)
	return &composite{subs: cp}
}
