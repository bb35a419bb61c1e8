// Package toolpath turns an ordered descriptor sequence into a textual
// motion program for the laser cutter, using the machine's full range
// of motion: rapid slews (G00), linear cuts (G01) and circular cuts
// (G02/G03) with I/J center offsets, bracketed by laser start/stop
// markers (M12/M22). It also accumulates the active and passive travel
// statistics used for run-time estimation.
package toolpath

// Config carries the per-run machine and approximation parameters.
type Config struct {
	// CutSpeed and EngraveSpeed are the material feed rates in mm/s.
	CutSpeed     float64
	EngraveSpeed float64

	// RapidSpeed is the G00 slew speed in mm/s.
	RapidSpeed float64

	// EstimateFactor scales the duration estimate to compensate for
	// acceleration ramps the speeds alone do not capture.
	EstimateFactor float64

	// MinSegment and MaxSegment bound the chord length of linearized
	// curves, in mm. The blend between them follows the normalized
	// local curvature.
	MinSegment float64
	MaxSegment float64

	// ScanResolution is the arc distance in mm covered by one parameter
	// step while scanning a curve during linearization. It must be much
	// finer than MinSegment.
	ScanResolution float64

	// GroupSize is the number of round-robin groups for the dispersal
	// sort, when enabled.
	GroupSize int
}

// DefaultConfig returns the production parameters. Speeds come from the
// material profile and are zero here.
func DefaultConfig() Config {
	return Config{
		RapidSpeed:     45,
		EstimateFactor: 1,
		MinSegment:     0.1,
		MaxSegment:     5.5,
		ScanResolution: 0.025,
		GroupSize:      5,
	}
}
