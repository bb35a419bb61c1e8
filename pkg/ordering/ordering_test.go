package ordering

import (
	"math"
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/beamcut/pkg/classify"
	"github.com/chazu/beamcut/pkg/kernel"
	"github.com/chazu/beamcut/pkg/kernel/bezier"
)

func interpret(t *testing.T, k kernel.Kernel, curves ...kernel.Curve) []*classify.Descriptor {
	t.Helper()
	descs, report := classify.Interpret(k, curves, classify.Envelope{MaxX: 10000, MaxY: 10000})
	if len(descs) != len(curves) || report.Total() != 0 {
		t.Fatalf("Interpret() kept %d of %d curves, report %+v", len(descs), len(curves), report)
	}
	return descs
}

func radiusForArea(area float64) float64 {
	return math.Sqrt(area / math.Pi)
}

func position(t *testing.T, order []*classify.Descriptor, d *classify.Descriptor) int {
	t.Helper()
	for i, o := range order {
		if o == d {
			return i
		}
	}
	t.Fatalf("descriptor %+v missing from order", d.Bounds)
	return -1
}

func TestSortUnnestedClosedByAreaAscending(t *testing.T) {
	// Three disjoint circles of areas 100, 50, 10: discovery order is
	// area-descending, so the emitted order after reversal is
	// area-ascending.
	k := bezier.New()
	descs := interpret(t, k,
		bezier.Circle(v2.Vec{X: 100, Y: 100}, radiusForArea(100)),
		bezier.Circle(v2.Vec{X: 300, Y: 100}, radiusForArea(10)),
		bezier.Circle(v2.Vec{X: 500, Y: 100}, radiusForArea(50)),
	)

	order := Sort(k, descs, Options{})
	if len(order) != 3 {
		t.Fatalf("Sort() returned %d descriptors, want 3", len(order))
	}
	var areas []float64
	for _, d := range order {
		areas = append(areas, d.Area)
	}
	for i, want := range []float64{10, 50, 100} {
		if math.Abs(areas[i]-want) > 1 {
			t.Errorf("order[%d].Area = %v, want about %v (full order %v)", i, areas[i], want, areas)
		}
	}
}

func TestSortOpenChildBeforeClosedParent(t *testing.T) {
	// A closed square fully containing an open line: the line must be
	// cut before the square, or it falls with the cut-out piece.
	k := bezier.New()
	square := bezier.Polyline(
		v2.Vec{X: 100, Y: 100}, v2.Vec{X: 120, Y: 100},
		v2.Vec{X: 120, Y: 120}, v2.Vec{X: 100, Y: 120}, v2.Vec{X: 100, Y: 100},
	)
	inner := bezier.Line(v2.Vec{X: 105, Y: 110}, v2.Vec{X: 115, Y: 110})
	descs := interpret(t, k, square, inner)

	order := Sort(k, descs, Options{})
	if position(t, order, descs[1]) >= position(t, order, descs[0]) {
		t.Error("open child emitted after its containing square")
	}
}

func TestSortNestedClosedChildrenFirst(t *testing.T) {
	// outer ⊃ middle ⊃ inner, plus a separate circle: every child must
	// be emitted before its parent.
	k := bezier.New()
	outer := bezier.Circle(v2.Vec{X: 200, Y: 200}, 100)
	middle := bezier.Circle(v2.Vec{X: 200, Y: 200}, 50)
	inner := bezier.Circle(v2.Vec{X: 200, Y: 200}, 10)
	aside := bezier.Circle(v2.Vec{X: 600, Y: 200}, 30)
	descs := interpret(t, k, outer, middle, inner, aside)

	order := Sort(k, descs, Options{})
	pOuter := position(t, order, descs[0])
	pMiddle := position(t, order, descs[1])
	pInner := position(t, order, descs[2])
	if !(pInner < pMiddle && pMiddle < pOuter) {
		t.Errorf("nesting order violated: inner=%d middle=%d outer=%d", pInner, pMiddle, pOuter)
	}
}

func TestSortDeterministic(t *testing.T) {
	k := bezier.New()
	build := func() []*classify.Descriptor {
		return interpret(t, k,
			bezier.Circle(v2.Vec{X: 100, Y: 100}, 20),
			bezier.Circle(v2.Vec{X: 100, Y: 100}, 5),
			bezier.Line(v2.Vec{X: 300, Y: 10}, v2.Vec{X: 340, Y: 10}),
			bezier.Line(v2.Vec{X: 300, Y: 50}, v2.Vec{X: 340, Y: 50}),
			bezier.Circle(v2.Vec{X: 500, Y: 100}, 20),
		)
	}

	first := Sort(k, build(), Options{})
	for run := 0; run < 5; run++ {
		again := Sort(k, build(), Options{})
		for i := range first {
			if first[i].Bounds != again[i].Bounds {
				t.Fatalf("run %d diverged at position %d: %+v vs %+v",
					run, i, first[i].Bounds, again[i].Bounds)
			}
		}
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	k := bezier.New()
	descs := interpret(t, k,
		bezier.Circle(v2.Vec{X: 100, Y: 100}, 5),
		bezier.Circle(v2.Vec{X: 300, Y: 100}, 20),
	)
	snapshot := append([]*classify.Descriptor{}, descs...)
	Sort(k, descs, Options{})
	for i := range descs {
		if descs[i] != snapshot[i] {
			t.Fatalf("input slice reordered at %d", i)
		}
	}
}

func TestDisperse(t *testing.T) {
	mk := func(n int) []*classify.Descriptor {
		out := make([]*classify.Descriptor, n)
		for i := range out {
			out[i] = &classify.Descriptor{Start: v2.Vec{X: float64(i)}}
		}
		return out
	}

	t.Run("round robin", func(t *testing.T) {
		descs := mk(7)
		got := disperse(descs, 3)
		// Groups: [0 3 6] [1 4] [2 5].
		want := []int{0, 3, 6, 1, 4, 2, 5}
		for i, w := range want {
			if got[i] != descs[w] {
				t.Errorf("position %d = item %v, want item %d", i, got[i].Start.X, w)
			}
		}
	})

	t.Run("small input passes through", func(t *testing.T) {
		descs := mk(4)
		got := disperse(descs, 5)
		for i := range descs {
			if got[i] != descs[i] {
				t.Fatalf("small input reordered at %d", i)
			}
		}
	})

	t.Run("zero group size uses default", func(t *testing.T) {
		descs := mk(12)
		got := disperse(descs, 0)
		if got[1] != descs[DefaultGroupSize] {
			t.Errorf("second item = %v, want item %d", got[1].Start.X, DefaultGroupSize)
		}
	})
}

func TestSortDisperseSpreadsOpenCuts(t *testing.T) {
	// Ten parallel open segments: dispersal must break the linear
	// start-point sweep so consecutive cuts are no longer adjacent.
	k := bezier.New()
	var curves []kernel.Curve
	for i := 0; i < 10; i++ {
		x := float64(10 + 20*i)
		curves = append(curves, bezier.Line(v2.Vec{X: x, Y: 10}, v2.Vec{X: x, Y: 90}))
	}
	descs := interpret(t, k, curves...)

	plain := Sort(k, descs, Options{})
	spread := Sort(k, descs, Options{Disperse: true})

	adjacent := func(order []*classify.Descriptor) int {
		n := 0
		for i := 1; i < len(order); i++ {
			if math.Abs(order[i].Start.X-order[i-1].Start.X) <= 20 {
				n++
			}
		}
		return n
	}
	if a, b := adjacent(spread), adjacent(plain); a >= b {
		t.Errorf("dispersal left %d adjacent pairs, plain sweep has %d", a, b)
	}
}
