package toolpath

import (
	"fmt"
	"strings"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/beamcut/pkg/classify"
	"github.com/chazu/beamcut/pkg/kernel"
)

// Stats accumulates processing counts and travel lengths for one pass.
type Stats struct {
	Curves     int // arcs, circles, ellipses and free-form curves
	Polycurves int
	Polylines  int
	Lines      int

	// Unprocessed counts descriptors excluded because linearization
	// produced no result.
	Unprocessed int

	// ActiveLength is the total distance cut, in mm. PassiveLength is
	// the total rapid distance between cuts, starting from the origin.
	ActiveLength  float64
	PassiveLength float64
}

// Duration estimates the pass run time in seconds at the given cutting
// and rapid speeds, before acceleration compensation.
func (s Stats) Duration(cutSpeed, rapidSpeed float64) float64 {
	var d float64
	if cutSpeed > 0 {
		d += s.ActiveLength / cutSpeed
	}
	if rapidSpeed > 0 {
		d += s.PassiveLength / rapidSpeed
	}
	return d
}

// Synthesizer consumes an ordered descriptor sequence and emits the
// motion program for one pass. Per descriptor it emits a rapid move to
// the start point, a laser-on marker, the cut moves for the curve's
// kind, and a laser-off marker, accumulating statistics as it goes.
type Synthesizer struct {
	k    kernel.Kernel
	cfg  Config
	buf  strings.Builder
	st   Stats
	prev v2.Vec // previous descriptor end point; the origin initially
}

// NewSynthesizer creates a Synthesizer for one pass.
func NewSynthesizer(k kernel.Kernel, cfg Config) *Synthesizer {
	return &Synthesizer{k: k, cfg: cfg}
}

// Program returns the program text emitted so far.
func (s *Synthesizer) Program() string { return s.buf.String() }

// Stats returns the statistics accumulated so far.
func (s *Synthesizer) Stats() Stats { return s.st }

// EmitAll emits every descriptor in order.
func (s *Synthesizer) EmitAll(descs []*classify.Descriptor) {
	for _, d := range descs {
		s.Emit(d)
	}
}

// Emit appends the commands for one descriptor. Descriptors whose
// linearization fails are excluded and counted as unprocessed.
func (s *Synthesizer) Emit(d *classify.Descriptor) {
	switch d.Kind {
	case kernel.KindLine:
		s.beginCut(d.Start)
		s.linearTo(d.End)
		s.endCut()
		s.st.Lines++

	case kernel.KindPolyline:
		s.emitPolyline(d)
		s.st.Polylines++

	case kernel.KindArc:
		params, err := SolveArc(s.k, d.Curve)
		if err != nil {
			s.st.Unprocessed++
			return
		}
		s.beginCut(d.Start)
		s.arcTo(params, d.End)
		s.endCut()
		s.st.Curves++

	case kernel.KindCircle:
		if !s.emitCircle(d) {
			return
		}
		s.st.Curves++

	case kernel.KindComposite:
		if !s.emitComposite(d) {
			return
		}
		s.st.Polycurves++

	default: // ellipse, free-form
		pts, err := Linearize(s.k, d.Curve, s.cfg)
		if err != nil {
			s.st.Unprocessed++
			return
		}
		s.beginCut(d.Start)
		for _, p := range pts {
			s.linearTo(p)
		}
		s.endCut()
		s.st.Curves++
	}

	s.st.ActiveLength += s.k.Length(d.Curve)
	s.st.PassiveLength += d.Start.Sub(s.prev).Length()
	s.prev = d.End
}

// emitPolyline cuts each exploded segment with a linear move, without
// stopping the laser between segments.
func (s *Synthesizer) emitPolyline(d *classify.Descriptor) {
	subs, err := s.k.Explode(d.Curve)
	if err != nil {
		// A polyline that cannot be exploded is a single segment.
		subs = []kernel.Curve{d.Curve}
	}
	s.beginCut(d.Start)
	for _, sub := range subs {
		_, t1 := s.k.Domain(sub)
		s.linearTo(s.k.Evaluate(sub, t1))
	}
	s.endCut()
}

// emitCircle cuts a full circle as two half-domain arcs back to back.
// A single circular move cannot be trusted here: floating-point error
// in start + offset - center makes the controller reject the move, so
// the circle is halved and any residual quantized gap after the second
// arc is closed with one linear move.
func (s *Synthesizer) emitCircle(d *classify.Descriptor) bool {
	t0, t1 := s.k.Domain(d.Curve)
	halves, err := s.k.Split(d.Curve, t0+(t1-t0)/2)
	if err != nil {
		s.st.Unprocessed++
		return false
	}

	type halfArc struct {
		params ArcParams
		end    v2.Vec
	}
	arcs := make([]halfArc, 0, len(halves))
	for _, half := range halves {
		params, err := SolveArc(s.k, half)
		if err != nil {
			s.st.Unprocessed++
			return false
		}
		_, ht1 := s.k.Domain(half)
		arcs = append(arcs, halfArc{params: params, end: s.k.Evaluate(half, ht1)})
	}

	s.beginCut(d.Start)
	last := d.Start
	for _, a := range arcs {
		s.arcTo(a.params, a.end)
		last = a.end
	}
	if !SamePoint(last, d.Start) {
		// Accumulated rounding across the halves left a gap of at
		// least one quantized unit; close it rather than fail the cut.
		s.linearTo(d.Start)
	}
	s.endCut()
	return true
}

// emitComposite explodes a polycurve once and dispatches each
// sub-element through the per-kind logic, keeping the laser on across
// sub-element boundaries.
func (s *Synthesizer) emitComposite(d *classify.Descriptor) bool {
	subs, err := s.k.Explode(d.Curve)
	if err != nil {
		s.st.Unprocessed++
		return false
	}

	s.beginCut(d.Start)
	for _, sub := range subs {
		_, t1 := s.k.Domain(sub)
		subEnd := s.k.Evaluate(sub, t1)

		switch s.k.Kind(sub) {
		case kernel.KindArc, kernel.KindCircle:
			params, err := SolveArc(s.k, sub)
			if err != nil {
				s.linearTo(subEnd)
				continue
			}
			s.arcTo(params, subEnd)

		case kernel.KindLine, kernel.KindPolyline:
			s.linearTo(subEnd)

		default:
			pts, err := Linearize(s.k, sub, s.cfg)
			if err != nil {
				// Keep the path continuous even when a sub-element
				// cannot be approximated.
				s.linearTo(subEnd)
				continue
			}
			for _, p := range pts {
				s.linearTo(p)
			}
		}
	}
	s.endCut()
	return true
}

// beginCut emits the rapid move to the cut start and the laser-on
// marker.
func (s *Synthesizer) beginCut(start v2.Vec) {
	fmt.Fprintf(&s.buf, "\nG00 X%s Y%s\nM12\n", Coord(start.X), Coord(start.Y))
}

// endCut emits the laser-off marker.
func (s *Synthesizer) endCut() {
	s.buf.WriteString("M22\n")
}

func (s *Synthesizer) linearTo(p v2.Vec) {
	fmt.Fprintf(&s.buf, "G01 X%s Y%s\n", Coord(p.X), Coord(p.Y))
}

func (s *Synthesizer) arcTo(params ArcParams, end v2.Vec) {
	fmt.Fprintf(&s.buf, "%s X%s Y%s I%s J%s\n",
		params.Dir.Mnemonic(),
		Coord(end.X), Coord(end.Y),
		Coord(params.OffsetX), Coord(params.OffsetY))
}
