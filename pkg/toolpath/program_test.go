package toolpath

import (
	"math"
	"strings"
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/beamcut/pkg/classify"
	"github.com/chazu/beamcut/pkg/kernel"
	"github.com/chazu/beamcut/pkg/kernel/bezier"
)

func describe(t *testing.T, k kernel.Kernel, c kernel.Curve) *classify.Descriptor {
	t.Helper()
	descs, report := classify.Interpret(k, []kernel.Curve{c}, classify.Envelope{MaxX: 1000, MaxY: 1000})
	if len(descs) != 1 || report.Total() != 0 {
		t.Fatalf("Interpret() = %d descriptors, report %+v", len(descs), report)
	}
	return descs[0]
}

func TestEmitLine(t *testing.T) {
	k := bezier.New()
	s := NewSynthesizer(k, DefaultConfig())
	s.Emit(describe(t, k, bezier.Line(v2.Vec{X: 0, Y: 0}, v2.Vec{X: 100, Y: 0})))

	want := "\nG00 X0.000 Y0.000\nM12\nG01 X100.000 Y0.000\nM22\n"
	if got := s.Program(); got != want {
		t.Errorf("Program() = %q, want %q", got, want)
	}
	st := s.Stats()
	if st.Lines != 1 {
		t.Errorf("Lines = %d, want 1", st.Lines)
	}
	if st.ActiveLength != 100 {
		t.Errorf("ActiveLength = %v, want 100", st.ActiveLength)
	}
	if st.PassiveLength != 0 {
		t.Errorf("PassiveLength = %v, want 0 for a cut starting at the origin", st.PassiveLength)
	}
}

func TestEmitPolylineKeepsLaserOn(t *testing.T) {
	k := bezier.New()
	s := NewSynthesizer(k, DefaultConfig())
	s.Emit(describe(t, k, bezier.Polyline(
		v2.Vec{X: 10, Y: 10},
		v2.Vec{X: 20, Y: 10},
		v2.Vec{X: 20, Y: 20},
	)))

	want := "\nG00 X10.000 Y10.000\nM12\nG01 X20.000 Y10.000\nG01 X20.000 Y20.000\nM22\n"
	if got := s.Program(); got != want {
		t.Errorf("Program() = %q, want %q", got, want)
	}
	if st := s.Stats(); st.Polylines != 1 {
		t.Errorf("Polylines = %d, want 1", st.Polylines)
	}
}

func TestEmitCircleAsTwoHalfArcs(t *testing.T) {
	// Radius 10 circle at (50,50) starting at (60,50): two G03 halves
	// with exact axis-aligned center offsets and no closing move.
	k := bezier.New()
	s := NewSynthesizer(k, DefaultConfig())
	s.Emit(describe(t, k, bezier.Circle(v2.Vec{X: 50, Y: 50}, 10)))

	want := "\nG00 X60.000 Y50.000\nM12\n" +
		"G03 X40.000 Y50.000 I-10.000 J0.000\n" +
		"G03 X60.000 Y50.000 I10.000 J0.000\n" +
		"M22\n"
	if got := s.Program(); got != want {
		t.Errorf("Program() = %q, want %q", got, want)
	}
	if st := s.Stats(); st.Curves != 1 {
		t.Errorf("Curves = %d, want 1", st.Curves)
	}
}

func TestEmitCircleClosesResidualGap(t *testing.T) {
	// Quantized half-arc endpoints never leave a gap on an exact
	// circle, so the closure move count across a spread of circles
	// must be zero or, where rounding does bite, exactly one G01 back
	// to the start per circle.
	k := bezier.New()
	for _, r := range []float64{10, 7.3, 0.061, 123.456} {
		s := NewSynthesizer(k, DefaultConfig())
		d := describe(t, k, bezier.Circle(v2.Vec{X: 200, Y: 200}, r))
		s.Emit(d)

		prog := s.Program()
		closes := strings.Count(prog, "G01")
		if closes > 1 {
			t.Errorf("radius %v: %d closing moves, want at most 1", r, closes)
		}
		if closes == 1 {
			wantClose := "G01 X" + Coord(d.Start.X) + " Y" + Coord(d.Start.Y) + "\n"
			if !strings.Contains(prog, wantClose) {
				t.Errorf("radius %v: closing move does not return to start: %q", r, prog)
			}
		}
	}
}

func TestEmitEllipseLinearized(t *testing.T) {
	k := bezier.New()
	s := NewSynthesizer(k, DefaultConfig())
	d := describe(t, k, bezier.Ellipse(v2.Vec{X: 100, Y: 100}, 40, 15, 0))
	s.Emit(d)

	prog := s.Program()
	if !strings.HasPrefix(prog, "\nG00 X140.000 Y100.000\nM12\n") {
		t.Errorf("program does not open with a rapid to the ellipse start: %q", prog[:40])
	}
	if strings.Contains(prog, "G02") || strings.Contains(prog, "G03") {
		t.Error("ellipse must be linearized, not emitted as arcs")
	}
	// The final cut move must land on the quantized exact end point.
	lines := strings.Split(strings.TrimSuffix(prog, "M22\n"), "\n")
	last := lines[len(lines)-2]
	want := "G01 X" + Coord(d.End.X) + " Y" + Coord(d.End.Y)
	if last != want {
		t.Errorf("last cut move = %q, want %q", last, want)
	}
}

func TestEmitCompositeKeepsLaserOn(t *testing.T) {
	// Half circle joined to its chord: one M12/M22 pair around an arc
	// move and a linear move.
	k := bezier.New()
	half := bezier.Arc(v2.Vec{X: 50, Y: 50}, 10, 0, math.Pi)
	chord := bezier.Line(v2.Vec{X: 40, Y: 50}, v2.Vec{X: 60, Y: 50})
	s := NewSynthesizer(k, DefaultConfig())
	s.Emit(describe(t, k, bezier.Composite(half, chord)))

	prog := s.Program()
	if strings.Count(prog, "M12") != 1 || strings.Count(prog, "M22") != 1 {
		t.Errorf("composite must cut in one laser stroke, got %q", prog)
	}
	if !strings.Contains(prog, "G03 X40.000 Y50.000 I-10.000 J0.000\n") {
		t.Errorf("missing half-arc move in %q", prog)
	}
	if !strings.Contains(prog, "G01 X60.000 Y50.000\n") {
		t.Errorf("missing chord move in %q", prog)
	}
	if st := s.Stats(); st.Polycurves != 1 {
		t.Errorf("Polycurves = %d, want 1", st.Polycurves)
	}
}

func TestPassiveLengthAccumulates(t *testing.T) {
	k := bezier.New()
	s := NewSynthesizer(k, DefaultConfig())
	// First rapid from the origin to (30,40): 50mm. Second rapid from
	// (130,40) to (130,140): 100mm.
	s.Emit(describe(t, k, bezier.Line(v2.Vec{X: 30, Y: 40}, v2.Vec{X: 130, Y: 40})))
	s.Emit(describe(t, k, bezier.Line(v2.Vec{X: 130, Y: 140}, v2.Vec{X: 30, Y: 140})))

	st := s.Stats()
	if st.PassiveLength != 150 {
		t.Errorf("PassiveLength = %v, want 150", st.PassiveLength)
	}
	if st.ActiveLength != 200 {
		t.Errorf("ActiveLength = %v, want 200", st.ActiveLength)
	}
}

func TestStatsDuration(t *testing.T) {
	st := Stats{ActiveLength: 1000, PassiveLength: 200}
	got := st.Duration(50, 45)
	want := 1000.0/50 + 200.0/45
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Duration(50, 45) = %v, want %v", got, want)
	}
	if d := (Stats{ActiveLength: 100}).Duration(0, 45); d != 0 {
		t.Errorf("Duration with zero cut speed = %v, want 0", d)
	}
}
