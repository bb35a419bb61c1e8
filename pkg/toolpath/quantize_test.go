package toolpath

import (
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

func TestQuantize(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"zero", 0, 0},
		{"exact", 1.234, 1.234},
		{"rounds down", 1.23449, 1.234},
		{"rounds up", 1.23451, 1.235},
		{"tie goes toward zero", 1.2345, 1.234},
		{"negative tie goes toward zero", -1.2345, -1.234},
		{"negative rounds away", -1.23451, -1.235},
		{"tiny negative collapses to plain zero", -0.0001, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Quantize(tt.in); got != tt.want {
				t.Errorf("Quantize(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestQuantizeIdempotent(t *testing.T) {
	values := []float64{0, 1.2345, -1.2345, 99.9994999, -0.0005, 123.456789, 60, 50.0004}
	for _, v := range values {
		once := Quantize(v)
		if twice := Quantize(once); twice != once {
			t.Errorf("Quantize(Quantize(%v)) = %v, want %v", v, twice, once)
		}
	}
}

func TestQuantizeNoNegativeZero(t *testing.T) {
	if got := Coord(-0.0001); got != "0.000" {
		t.Errorf("Coord(-0.0001) = %q, want %q", got, "0.000")
	}
}

func TestCoord(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{60, "60.000"},
		{-10, "-10.000"},
		{1.2345, "1.234"},
		{0.1 + 0.2, "0.300"},
	}
	for _, tt := range tests {
		if got := Coord(tt.in); got != tt.want {
			t.Errorf("Coord(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSamePoint(t *testing.T) {
	a := v2.Vec{X: 1.0004, Y: 2}
	b := v2.Vec{X: 1.0001, Y: 2.0002}
	if !SamePoint(a, b) {
		t.Errorf("SamePoint(%v, %v) = false, want true", a, b)
	}
	c := v2.Vec{X: 1.002, Y: 2}
	if SamePoint(a, c) {
		t.Errorf("SamePoint(%v, %v) = true, want false", a, c)
	}
}
