// Package scene reads the JSON scene document the CLI consumes: two
// layers of curve elements, one to engrave and one to cut. Elements
// are validated before any geometry is constructed, so a malformed
// document is reported in full instead of failing on the first bad
// entry.
package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/beamcut/pkg/kernel"
	"github.com/chazu/beamcut/pkg/kernel/bezier"
)

// Element is one curve description in a scene document. Exactly the
// fields for its Type are consulted; the rest are ignored.
type Element struct {
	Type string `json:"type"`

	// line
	From []float64 `json:"from,omitempty"`
	To   []float64 `json:"to,omitempty"`

	// polyline, cubic, spline
	Points [][]float64 `json:"points,omitempty"`

	// arc, circle, ellipse
	Center   []float64 `json:"center,omitempty"`
	Radius   float64   `json:"radius,omitempty"`
	Start    float64   `json:"start,omitempty"`    // degrees
	Sweep    float64   `json:"sweep,omitempty"`    // degrees, signed
	RX       float64   `json:"rx,omitempty"`       // ellipse semi-axes
	RY       float64   `json:"ry,omitempty"`
	Rotation float64   `json:"rotation,omitempty"` // degrees

	// composite
	Elements []Element `json:"elements,omitempty"`
}

// Document is a decoded and validated scene.
type Document struct {
	Engrave []kernel.Curve
	Cut     []kernel.Curve
}

// rawDocument is the on-disk shape.
type rawDocument struct {
	Engrave []Element `json:"engrave"`
	Cut     []Element `json:"cut"`
}

// ElementError describes one invalid element. Path locates the element
// in the document, e.g. "cut[3]" or "cut[3].elements[0]".
type ElementError struct {
	Path    string
	Message string
}

func (e ElementError) Error() string {
	return fmt.Sprintf("scene: %s: %s", e.Path, e.Message)
}

// ValidationError aggregates every invalid element found in a document.
type ValidationError struct {
	Errors []ElementError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Error()
	}
	return strings.Join(msgs, "\n")
}

// Load decodes and validates a scene document, building the curves
// through the bezier backend.
func Load(r io.Reader) (*Document, error) {
	var raw rawDocument
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("scene: decoding document: %w", err)
	}

	var errs []ElementError
	for i, el := range raw.Engrave {
		errs = append(errs, validate(el, fmt.Sprintf("engrave[%d]", i))...)
	}
	for i, el := range raw.Cut {
		errs = append(errs, validate(el, fmt.Sprintf("cut[%d]", i))...)
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	doc := &Document{
		Engrave: make([]kernel.Curve, len(raw.Engrave)),
		Cut:     make([]kernel.Curve, len(raw.Cut)),
	}
	for i, el := range raw.Engrave {
		doc.Engrave[i] = build(el)
	}
	for i, el := range raw.Cut {
		doc.Cut[i] = build(el)
	}
	return doc, nil
}

// LoadFile reads a scene document from disk.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// validate collects every problem with one element. The geometry
// constructors panic on malformed input, so validation must be
// complete before build runs.
func validate(el Element, path string) []ElementError {
	bad := func(format string, args ...any) ElementError {
		return ElementError{Path: path, Message: fmt.Sprintf(format, args...)}
	}
	var errs []ElementError

	point := func(name string, p []float64) {
		if len(p) != 2 {
			errs = append(errs, bad("%s must be a [x, y] pair, got %d values", name, len(p)))
		}
	}
	points := func(p [][]float64, min int) {
		if len(p) < min {
			errs = append(errs, bad("needs at least %d points, got %d", min, len(p)))
		}
		for i, pt := range p {
			point(fmt.Sprintf("points[%d]", i), pt)
		}
	}

	switch el.Type {
	case "line":
		point("from", el.From)
		point("to", el.To)
	case "polyline":
		points(el.Points, 2)
	case "arc":
		point("center", el.Center)
		if el.Radius <= 0 {
			errs = append(errs, bad("radius must be positive, got %g", el.Radius))
		}
		if el.Sweep == 0 {
			errs = append(errs, bad("sweep must be non-zero"))
		}
	case "circle":
		point("center", el.Center)
		if el.Radius <= 0 {
			errs = append(errs, bad("radius must be positive, got %g", el.Radius))
		}
	case "ellipse":
		point("center", el.Center)
		if el.RX <= 0 || el.RY <= 0 {
			errs = append(errs, bad("semi-axes must be positive, got %g and %g", el.RX, el.RY))
		}
	case "cubic":
		points(el.Points, 4)
		if len(el.Points) > 4 {
			errs = append(errs, bad("a cubic takes exactly 4 points, got %d", len(el.Points)))
		}
	case "spline":
		points(el.Points, 4)
		if len(el.Points) >= 4 && (len(el.Points)-1)%3 != 0 {
			errs = append(errs, bad("a spline takes 3n+1 control points, got %d", len(el.Points)))
		}
	case "composite":
		if len(el.Elements) == 0 {
			errs = append(errs, bad("composite needs at least one element"))
		}
		for i, sub := range el.Elements {
			errs = append(errs, validate(sub, fmt.Sprintf("%s.elements[%d]", path, i))...)
		}
	case "":
		errs = append(errs, bad("missing element type"))
	default:
		errs = append(errs, bad("unknown element type %q", el.Type))
	}
	return errs
}

func vec(p []float64) v2.Vec { return v2.Vec{X: p[0], Y: p[1]} }

func vecs(ps [][]float64) []v2.Vec {
	out := make([]v2.Vec, len(ps))
	for i, p := range ps {
		out[i] = vec(p)
	}
	return out
}

func rad(deg float64) float64 { return deg * math.Pi / 180 }

// build constructs the backend curve for a validated element.
func build(el Element) kernel.Curve {
	switch el.Type {
	case "line":
		return bezier.Line(vec(el.From), vec(el.To))
	case "polyline":
		return bezier.Polyline(vecs(el.Points)...)
	case "arc":
		return bezier.Arc(vec(el.Center), el.Radius, rad(el.Start), rad(el.Sweep))
	case "circle":
		return bezier.Circle(vec(el.Center), el.Radius)
	case "ellipse":
		return bezier.Ellipse(vec(el.Center), el.RX, el.RY, rad(el.Rotation))
	case "cubic":
		pts := vecs(el.Points)
		return bezier.Cubic(pts[0], pts[1], pts[2], pts[3])
	case "spline":
		return bezier.Spline(vecs(el.Points)...)
	case "composite":
		subs := make([]kernel.Curve, len(el.Elements))
		for i, sub := range el.Elements {
			subs[i] = build(sub)
		}
		return bezier.Composite(subs...)
	}
	panic("scene: build called on unvalidated element")
}
