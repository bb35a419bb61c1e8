package toolpath

import (
	"errors"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/beamcut/pkg/kernel"
)

// ErrNoApproximation is returned when linearization produces no chord
// points for a curve. The caller excludes the curve from the program
// and reports it as unprocessed.
var ErrNoApproximation = errors.New("toolpath: linearization produced no points")

// Cubic response curve mapping normalized curvature to the chord-length
// blend factor. The coefficients are tuned empirically against cut
// quality on the production machine; treat them as an opaque parameter
// set.
const (
	blendA = -1.97142
	blendB = 2.9585
	blendC = 0.0129348
	blendD = 0.0
)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Linearize approximates a curve with an ordered list of chord points.
// The target chord length at each position is the convex combination of
// cfg.MinSegment and cfg.MaxSegment weighted by the blend of the
// normalized local curvature; constant-curvature domains stay at
// MinSegment. The returned list never duplicates the curve's start
// point under quantization, and always terminates with the curve's
// exact end point regardless of scan-step rounding.
func Linearize(k kernel.Kernel, c kernel.Curve, cfg Config) ([]v2.Vec, error) {
	t0, t1 := k.Domain(c)
	length := k.Length(c)
	if length <= 0 || t1 <= t0 {
		return nil, ErrNoApproximation
	}

	// The scan step is expressed in mm of arc and converted to a
	// parameter step for this curve, keeping the scan much finer than
	// any emitted segment regardless of curve length.
	step := (t1 - t0) * cfg.ScanResolution / length
	if step <= 0 {
		return nil, ErrNoApproximation
	}

	// Pre-scan the whole domain for the curvature range.
	kMin := k.Curvature(c, t0)
	kMax := kMin
	for t := t0 + step; t <= t1; t += step {
		kappa := k.Curvature(c, t)
		if kappa < kMin {
			kMin = kappa
		}
		if kappa > kMax {
			kMax = kappa
		}
	}

	start := k.Evaluate(c, t0)
	end := k.Evaluate(c, t1)

	var raw []v2.Vec
	cur := start
	t := t0
	for t < t1 {
		kappa := k.Curvature(c, t)
		norm := 0.0
		if kMax > kMin {
			// Constant-curvature domains keep norm at 0.
			norm = (kappa - kMin) / (kMax - kMin)
		}
		blend := clamp01(blendA*norm*norm*norm + blendB*norm*norm + blendC*norm + blendD)
		target := blend*cfg.MaxSegment + (1-blend)*cfg.MinSegment

		// Advance until the chord from the last emitted point reaches
		// the target length or the domain end is passed.
		dist := 0.0
		var next v2.Vec
		for dist < target {
			t += step
			if t > t1 {
				break
			}
			next = k.Evaluate(c, t)
			dist = next.Sub(cur).Length()
		}
		if t > t1 {
			break
		}
		raw = append(raw, cur)
		cur = next
	}

	if len(raw) == 0 {
		return nil, ErrNoApproximation
	}

	pts := make([]v2.Vec, 0, len(raw)+1)
	for _, p := range raw {
		if SamePoint(p, start) {
			continue
		}
		pts = append(pts, p)
	}
	// The exact end point closes the approximation; the last scanned
	// point generally falls short of it.
	return append(pts, end), nil
}
