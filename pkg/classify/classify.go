// Package classify converts raw kernel curve handles into immutable
// descriptor records consumed by every downstream toolpath stage. It
// also enforces the machine's working envelope: curves outside it are
// excluded up front and counted, never processed.
package classify

import (
	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/beamcut/pkg/kernel"
)

// Envelope is the machine's working area [0, MaxX] × [0, MaxY] in
// millimetres. It is threaded explicitly from the machine profile to
// the classifier; there is no process-wide bounds state.
type Envelope struct {
	MaxX float64
	MaxY float64
}

// Contains reports whether b lies entirely within the envelope.
func (e Envelope) Contains(b kernel.BBox) bool {
	return b.MinX >= 0 && b.MaxX <= e.MaxX &&
		b.MinY >= 0 && b.MaxY <= e.MaxY
}

// Descriptor summarizes one input curve's geometry and classification.
// Descriptors are immutable after creation: sorting and synthesis only
// permute references, never rewrite fields.
type Descriptor struct {
	// Curve is the opaque kernel handle. If the input curve was closed
	// during classification this is the closed replacement handle.
	Curve kernel.Curve

	Kind   kernel.Kind
	Closed bool

	// Area is the enclosed planar area magnitude. Valid iff Closed.
	Area float64

	Start v2.Vec
	End   v2.Vec

	// Center is valid iff HasCenter (circle, arc and ellipse kinds).
	Center    v2.Vec
	HasCenter bool

	Bounds kernel.BBox
}

// Report counts curves excluded or degraded during classification.
// The counts are surfaced to the operator once, in aggregate, after
// classification completes.
type Report struct {
	// OutOfBounds counts curves whose bounding box exceeds the envelope.
	OutOfBounds int
	// NonPlanar counts curves not representable in the working plane.
	NonPlanar int
	// Unclosable counts open curves that looked closable but failed to
	// close. They are kept open and still processed.
	Unclosable int
}

// Total returns the number of curves excluded from processing.
func (r Report) Total() int {
	return r.OutOfBounds + r.NonPlanar
}

// Merge returns the element-wise sum of two reports.
func (r Report) Merge(o Report) Report {
	return Report{
		OutOfBounds: r.OutOfBounds + o.OutOfBounds,
		NonPlanar:   r.NonPlanar + o.NonPlanar,
		Unclosable:  r.Unclosable + o.Unclosable,
	}
}

// Interpret builds one descriptor per in-envelope planar curve. Curves
// out of bounds or off the working plane are excluded and counted. Open
// curves that are geometrically closable are closed once, permanently,
// before their descriptor is created; closing failures keep the curve
// open and are counted.
func Interpret(k kernel.Kernel, curves []kernel.Curve, env Envelope) ([]*Descriptor, Report) {
	var report Report
	descs := make([]*Descriptor, 0, len(curves))

	for _, c := range curves {
		bounds := c.BoundingBox()
		if !env.Contains(bounds) {
			report.OutOfBounds++
			continue
		}
		if !k.IsPlanar(c) {
			report.NonPlanar++
			continue
		}

		closed := k.IsClosed(c)
		if !closed && k.IsClosable(c) {
			replacement, err := k.Close(c)
			if err != nil {
				report.Unclosable++
			} else {
				c = replacement
				bounds = c.BoundingBox()
				closed = true
			}
		}

		var area float64
		if closed {
			area = k.Area(c)
		}

		t0, t1 := k.Domain(c)
		center, hasCenter := k.Center(c)

		descs = append(descs, &Descriptor{
			Curve:     c,
			Kind:      k.Kind(c),
			Closed:    closed,
			Area:      area,
			Start:     k.Evaluate(c, t0),
			End:       k.Evaluate(c, t1),
			Center:    center,
			HasCenter: hasCenter,
			Bounds:    bounds,
		})
	}

	return descs, report
}
