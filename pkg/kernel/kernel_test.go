package kernel

import "testing"

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindLine, "line"},
		{KindPolyline, "polyline"},
		{KindArc, "arc"},
		{KindCircle, "circle"},
		{KindEllipse, "ellipse"},
		{KindFreeform, "curve"},
		{KindComposite, "polycurve"},
		{Kind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}

func TestBBoxContainsStrict(t *testing.T) {
	outer := BBox{MinX: 0, MaxX: 10, MinY: 0, MaxY: 10}
	tests := []struct {
		name  string
		inner BBox
		want  bool
	}{
		{"well inside", BBox{MinX: 2, MaxX: 8, MinY: 2, MaxY: 8}, true},
		{"identical", outer, false},
		{"touching one edge", BBox{MinX: 0, MaxX: 5, MinY: 2, MaxY: 8}, false},
		{"overhanging", BBox{MinX: 5, MaxX: 15, MinY: 2, MaxY: 8}, false},
		{"disjoint", BBox{MinX: 20, MaxX: 30, MinY: 20, MaxY: 30}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outer.ContainsStrict(tt.inner); got != tt.want {
				t.Errorf("ContainsStrict(%+v) = %v, want %v", tt.inner, got, tt.want)
			}
		})
	}
}

func TestBBoxIntersects(t *testing.T) {
	a := BBox{MinX: 0, MaxX: 10, MinY: 0, MaxY: 10}
	tests := []struct {
		name string
		b    BBox
		want bool
	}{
		{"overlap", BBox{MinX: 5, MaxX: 15, MinY: 5, MaxY: 15}, true},
		{"contained", BBox{MinX: 2, MaxX: 8, MinY: 2, MaxY: 8}, true},
		{"touching edge", BBox{MinX: 10, MaxX: 20, MinY: 0, MaxY: 10}, true},
		{"disjoint x", BBox{MinX: 11, MaxX: 20, MinY: 0, MaxY: 10}, false},
		{"disjoint y", BBox{MinX: 0, MaxX: 10, MinY: 11, MaxY: 20}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Intersects(tt.b); got != tt.want {
				t.Errorf("Intersects(%+v) = %v, want %v", tt.b, got, tt.want)
			}
			// Intersection is symmetric.
			if got := tt.b.Intersects(a); got != tt.want {
				t.Errorf("reverse Intersects(%+v) = %v, want %v", a, got, tt.want)
			}
		})
	}
}

func TestBBoxExtend(t *testing.T) {
	a := BBox{MinX: 0, MaxX: 5, MinY: 0, MaxY: 5}
	b := BBox{MinX: 3, MaxX: 10, MinY: -2, MaxY: 4}
	got := a.Extend(b)
	want := BBox{MinX: 0, MaxX: 10, MinY: -2, MaxY: 5}
	if got != want {
		t.Errorf("Extend() = %+v, want %+v", got, want)
	}
}
