package bezier

import (
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"honnef.co/go/curve"

	"github.com/chazu/beamcut/pkg/kernel"
)

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Kind classifies the curve.
func (k *Kernel) Kind(c kernel.Curve) kernel.Kind {
	switch cc := c.(type) {
	case *line:
		return kernel.KindLine
	case *polyline:
		return kernel.KindPolyline
	case *arc:
		if cc.full() {
			return kernel.KindCircle
		}
		return kernel.KindArc
	case *ellipse:
		return kernel.KindEllipse
	case *freeform:
		return kernel.KindFreeform
	case *composite:
		return kernel.KindComposite
	}
	return kernel.KindFreeform
}

// Domain returns the normalized parameter interval [0, 1].
func (k *Kernel) Domain(c kernel.Curve) (t0, t1 float64) {
	return 0, 1
}

// Evaluate returns the point at parameter t. Parameters outside the
// domain are clamped to it.
func (k *Kernel) Evaluate(c kernel.Curve, t float64) v2.Vec {
	t = clamp01(t)
	switch cc := c.(type) {
	case *line:
		return vec(cc.seg.Eval(t))

	case *polyline:
		return cc.evalByLength(t)

	case *arc:
		theta := cc.start + cc.sweep*t
		return cc.center.Add(v2.Vec{
			X: cc.radius * math.Cos(theta),
			Y: cc.radius * math.Sin(theta),
		})

	case *ellipse:
		return evalEllipse(cc.shape, t)

	case *freeform:
		seg, local := cc.segAt(t)
		return vec(seg.Eval(local))

	case *composite:
		sub, local := k.subAt(cc, t)
		return k.Evaluate(sub, local)
	}
	return v2.Vec{}
}

// evalByLength evaluates a polyline with the parameter proportional to
// arc length, so equal parameter steps cover equal distances.
func (p *polyline) evalByLength(t float64) v2.Vec {
	total := 0.0
	for i := 1; i < len(p.pts); i++ {
		total += p.pts[i].Sub(p.pts[i-1]).Length()
	}
	want := t * total
	run := 0.0
	for i := 1; i < len(p.pts); i++ {
		d := p.pts[i].Sub(p.pts[i-1]).Length()
		if run+d >= want || i == len(p.pts)-1 {
			if d == 0 {
				return p.pts[i]
			}
			f := (want - run) / d
			return p.pts[i-1].Add(p.pts[i].Sub(p.pts[i-1]).MulScalar(clamp01(f)))
		}
		run += d
	}
	return p.pts[len(p.pts)-1]
}

// segAt maps a spline parameter to (segment, local parameter).
func (f *freeform) segAt(t float64) (curve.CubicBez, float64) {
	u := t * float64(len(f.segs))
	i := int(u)
	if i >= len(f.segs) {
		i = len(f.segs) - 1
	}
	return f.segs[i], clamp01(u - float64(i))
}

func evalEllipse(e curve.Ellipse, t float64) v2.Vec {
	center := e.Center()
	radii := e.Radii()
	rot := e.Rotation()
	theta := twoPi * t
	lx := radii.X * math.Cos(theta)
	ly := radii.Y * math.Sin(theta)
	return v2.Vec{
		X: center.X + lx*math.Cos(rot) - ly*math.Sin(rot),
		Y: center.Y + lx*math.Sin(rot) + ly*math.Cos(rot),
	}
}

// subAt maps a composite parameter to (sub-curve, local parameter) with
// the parameter proportional to arc length across sub-curves.
func (k *Kernel) subAt(c *composite, t float64) (kernel.Curve, float64) {
	total := 0.0
	lens := make([]float64, len(c.subs))
	for i, s := range c.subs {
		lens[i] = k.Length(s)
		total += lens[i]
	}
	want := t * total
	run := 0.0
	for i, s := range c.subs {
		if run+lens[i] >= want || i == len(c.subs)-1 {
			if lens[i] == 0 {
				return s, 0
			}
			return s, clamp01((want - run) / lens[i])
		}
		run += lens[i]
	}
	return c.subs[len(c.subs)-1], 1
}

// Curvature returns the unsigned curvature magnitude at parameter t.
func (k *Kernel) Curvature(c kernel.Curve, t float64) float64 {
	t = clamp01(t)
	switch cc := c.(type) {
	case *line, *polyline:
		return 0

	case *arc:
		return 1 / cc.radius

	case *ellipse:
		radii := cc.shape.Radii()
		theta := twoPi * t
		s, co := math.Sin(theta), math.Cos(theta)
		denom := math.Pow(radii.X*radii.X*s*s+radii.Y*radii.Y*co*co, 1.5)
		if denom == 0 {
			return 0
		}
		return radii.X * radii.Y / denom

	case *freeform:
		seg, local := cc.segAt(t)
		return cubicCurvature(seg, local)

	case *composite:
		sub, local := k.subAt(cc, t)
		return k.Curvature(sub, local)
	}
	return 0
}

// cubicCurvature computes |v × a| / |v|³ from the first and second
// derivatives of the segment.
func cubicCurvature(seg curve.CubicBez, t float64) float64 {
	d1 := seg.Differentiate()
	vp := d1.Eval(t)
	d2 := d1.Differentiate()
	ap := d2.Eval(t)
	speed2 := vp.X*vp.X + vp.Y*vp.Y
	if speed2 == 0 {
		return 0
	}
	cross := vp.X*ap.Y - vp.Y*ap.X
	return math.Abs(cross) / math.Pow(speed2, 1.5)
}

// Length returns the arc length of the curve.
func (k *Kernel) Length(c kernel.Curve) float64 {
	switch cc := c.(type) {
	case *line:
		return cc.seg.Length()

	case *polyline:
		total := 0.0
		for i := 1; i < len(cc.pts); i++ {
			total += cc.pts[i].Sub(cc.pts[i-1]).Length()
		}
		return total

	case *arc:
		return math.Abs(cc.sweep) * cc.radius

	case *ellipse:
		return cc.shape.Perimeter(lengthAccuracy)

	case *freeform:
		total := 0.0
		for _, s := range cc.segs {
			total += s.Arclen(lengthAccuracy)
		}
		return total

	case *composite:
		total := 0.0
		for _, s := range cc.subs {
			total += k.Length(s)
		}
		return total
	}
	return 0
}

// Area returns the magnitude of the enclosed planar area for closed
// curves, 0 otherwise.
func (k *Kernel) Area(c kernel.Curve) float64 {
	if !k.IsClosed(c) {
		return 0
	}
	switch cc := c.(type) {
	case *arc:
		return math.Pi * cc.radius * cc.radius

	case *ellipse:
		return math.Abs(cc.shape.Area())

	case *polyline:
		return math.Abs(shoelace(cc.pts))

	case *freeform:
		return math.Abs(k.outline(cc).SignedArea())

	case *composite:
		pts := make([]v2.Vec, areaSamples)
		for i := range pts {
			pts[i] = k.Evaluate(cc, float64(i)/areaSamples)
		}
		return math.Abs(shoelace(pts))
	}
	return 0
}

// shoelace returns the signed area of the polygon through pts.
func shoelace(pts []v2.Vec) float64 {
	sum := 0.0
	for i := range pts {
		a := pts[i]
		b := pts[(i+1)%len(pts)]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

// Center returns the center point for circle, arc and ellipse kinds.
func (k *Kernel) Center(c kernel.Curve) (v2.Vec, bool) {
	switch cc := c.(type) {
	case *arc:
		return cc.center, true
	case *ellipse:
		return vec(cc.shape.Center()), true
	}
	return v2.Vec{}, false
}

// gap returns the start/end distance of the curve.
func (k *Kernel) gap(c kernel.Curve) float64 {
	return k.Evaluate(c, 1).Sub(k.Evaluate(c, 0)).Length()
}

// IsClosed reports whether the curve is natively closed.
func (k *Kernel) IsClosed(c kernel.Curve) bool {
	switch cc := c.(type) {
	case *line:
		return false
	case *arc:
		return cc.full()
	case *ellipse:
		return true
	}
	return k.gap(c) <= closedEpsilon
}

// IsClosable reports whether an open curve's endpoint gap is within the
// closing tolerance. Lines are never closable: closing one yields a
// degenerate area.
func (k *Kernel) IsClosable(c kernel.Curve) bool {
	if k.IsClosed(c) {
		return false
	}
	if _, isLine := c.(*line); isLine {
		return false
	}
	return k.gap(c) <= closeTolerance
}

// Close returns a closed variant of an open curve: polylines get their
// first vertex appended, other closable curves are wrapped in a
// composite with a closing linear segment.
func (k *Kernel) Close(c kernel.Curve) (kernel.Curve, error) {
	if k.IsClosed(c) {
		return c, nil
	}
	if !k.IsClosable(c) {
		return nil, fmt.Errorf("bezier: endpoint gap %g exceeds closing tolerance %g", k.gap(c), closeTolerance)
	}
	if p, ok := c.(*polyline); ok {
		pts := make([]v2.Vec, len(p.pts)+1)
		copy(pts, p.pts)
		pts[len(pts)-1] = p.pts[0]
		return &polyline{pts: pts}, nil
	}
	closing := Line(k.Evaluate(c, 1), k.Evaluate(c, 0))
	if comp, ok := c.(*composite); ok {
		subs := make([]kernel.Curve, len(comp.subs)+1)
		copy(subs, comp.subs)
		subs[len(subs)-1] = closing
		return &composite{subs: subs}, nil
	}
	return &composite{subs: []kernel.Curve{c, closing}}, nil
}

// IsPlanar always reports true: this backend is strictly 2-D.
func (k *Kernel) IsPlanar(c kernel.Curve) bool {
	return true
}

// outline returns a Bézier path outlining a closed curve, used for
// winding and area queries. Curves without an exact path representation
// are polygonized.
func (k *Kernel) outline(c kernel.Curve) curve.BezPath {
	var path curve.BezPath
	switch cc := c.(type) {
	case *polyline:
		path = append(path, curve.MoveTo(pt(cc.pts[0])))
		for _, q := range cc.pts[1:] {
			path = append(path, curve.LineTo(pt(q)))
		}

	case *freeform:
		path = append(path, curve.MoveTo(cc.segs[0].P0))
		for _, s := range cc.segs {
			path = append(path, curve.CubicTo(s.P1, s.P2, s.P3))
		}

	default:
		path = append(path, curve.MoveTo(pt(k.Evaluate(c, 0))))
		for i := 1; i < areaSamples; i++ {
			path = append(path, curve.LineTo(pt(k.Evaluate(c, float64(i)/areaSamples))))
		}
	}
	return append(path, curve.ClosePath())
}

// contains reports whether a point lies inside a closed curve.
func (k *Kernel) contains(c kernel.Curve, p v2.Vec) bool {
	switch cc := c.(type) {
	case *arc:
		return p.Sub(cc.center).Length() < cc.radius
	case *ellipse:
		return cc.shape.Contains(pt(p))
	}
	return k.outline(c).Winding(pt(p)) != 0
}

// Containment reports the planar relation between two closed curves.
// It samples points along both curves and tests them against the other
// curve's interior, which is exact for all convex cases and accurate to
// the sampling density otherwise.
func (k *Kernel) Containment(parent, child kernel.Curve) kernel.Containment {
	if !parent.BoundingBox().Intersects(child.BoundingBox()) {
		return kernel.Disjoint
	}

	inside := 0
	for i := 0; i < containmentSamples; i++ {
		p := k.Evaluate(child, float64(i)/containmentSamples)
		if k.contains(parent, p) {
			inside++
		}
	}
	switch inside {
	case containmentSamples:
		return kernel.ChildInsideParent
	case 0:
		reverse := 0
		for i := 0; i < containmentSamples; i++ {
			p := k.Evaluate(parent, float64(i)/containmentSamples)
			if k.contains(child, p) {
				reverse++
			}
		}
		if reverse == containmentSamples {
			return kernel.ParentInsideChild
		}
		if reverse == 0 {
			return kernel.Disjoint
		}
		return kernel.Intersecting
	default:
		return kernel.Intersecting
	}
}

// Split divides the curve at parameter t.
func (k *Kernel) Split(c kernel.Curve, t float64) ([]kernel.Curve, error) {
	t = clamp01(t)
	switch cc := c.(type) {
	case *line:
		mid := cc.seg.Eval(t)
		return []kernel.Curve{
			&line{seg: curve.Line{P0: cc.seg.P0, P1: mid}},
			&line{seg: curve.Line{P0: mid, P1: cc.seg.P1}},
		}, nil

	case *arc:
		at := cc.sweep * t
		return []kernel.Curve{
			&arc{center: cc.center, radius: cc.radius, start: cc.start, sweep: at},
			&arc{center: cc.center, radius: cc.radius, start: cc.start + at, sweep: cc.sweep - at},
		}, nil

	case *polyline:
		return cc.split(t)

	case *freeform:
		u := t * float64(len(cc.segs))
		i := int(u)
		if i >= len(cc.segs) {
			i = len(cc.segs) - 1
		}
		local := clamp01(u - float64(i))
		left := append([]curve.CubicBez{}, cc.segs[:i]...)
		left = append(left, cc.segs[i].Subsegment(0, local))
		right := []curve.CubicBez{cc.segs[i].Subsegment(local, 1)}
		right = append(right, cc.segs[i+1:]...)
		return []kernel.Curve{&freeform{segs: left}, &freeform{segs: right}}, nil
	}
	return nil, fmt.Errorf("bezier: split is not supported for %s curves", k.Kind(c))
}

// split divides a polyline at the arc-length parameter t.
func (p *polyline) split(t float64) ([]kernel.Curve, error) {
	total := 0.0
	for i := 1; i < len(p.pts); i++ {
		total += p.pts[i].Sub(p.pts[i-1]).Length()
	}
	want := t * total
	run := 0.0
	for i := 1; i < len(p.pts); i++ {
		d := p.pts[i].Sub(p.pts[i-1]).Length()
		if run+d >= want {
			f := 1.0
			if d > 0 {
				f = (want - run) / d
			}
			mid := p.pts[i-1].Add(p.pts[i].Sub(p.pts[i-1]).MulScalar(clamp01(f)))
			left := append([]v2.Vec{}, p.pts[:i]...)
			left = append(left, mid)
			right := append([]v2.Vec{mid}, p.pts[i:]...)
			if len(left) < 2 || len(right) < 2 {
				break
			}
			return []kernel.Curve{&polyline{pts: left}, &polyline{pts: right}}, nil
		}
		run += d
	}
	return nil, fmt.Errorf("bezier: split parameter %g lands on a polyline endpoint", t)
}

// Explode decomposes a composite into its sub-curves, or a polyline
// into its individual segments.
func (k *Kernel) Explode(c kernel.Curve) ([]kernel.Curve, error) {
	switch cc := c.(type) {
	case *composite:
		subs := make([]kernel.Curve, len(cc.subs))
		copy(subs, cc.subs)
		return subs, nil

	case *polyline:
		segs := make([]kernel.Curve, 0, len(cc.pts)-1)
		for i := 1; i < len(cc.pts); i++ {
			segs = append(segs, Line(cc.pts[i-1], cc.pts[i]))
		}
		return segs, nil
	}
	return nil, fmt.Errorf("bezier: %s curves cannot be exploded", k.Kind(c))
}
