// Package beamcut converts planar 2-D curves into a motion program for
// a CO2 laser/plasma cutter. The pipeline is a strict sequential
// transform over a geometry kernel: classify curve handles into
// descriptors, order them so nested shapes are cut before the shapes
// enclosing them, then synthesize rapid, linear and circular motion
// commands with deterministic 3-decimal coordinates.
package beamcut

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chazu/beamcut/pkg/classify"
	"github.com/chazu/beamcut/pkg/kernel"
	"github.com/chazu/beamcut/pkg/ordering"
	"github.com/chazu/beamcut/pkg/profile"
	"github.com/chazu/beamcut/pkg/toolpath"
)

// ErrAborted is returned when the confirmation hook declines to
// continue after classification warnings.
var ErrAborted = errors.New("beamcut: run aborted by operator")

// WarningKind identifies an aggregate classification warning.
type WarningKind int

const (
	WarnOutOfBounds WarningKind = iota
	WarnNonPlanar
	WarnUnclosable
)

// Warning is one aggregate condition surfaced after classification.
// Warnings are presented once, with a single continue/abort decision,
// never per object.
type Warning struct {
	Kind  WarningKind
	Count int
}

func (w Warning) String() string {
	switch w.Kind {
	case WarnOutOfBounds:
		return fmt.Sprintf("%d objects outside the workable area", w.Count)
	case WarnNonPlanar:
		return fmt.Sprintf("%d objects not planar", w.Count)
	case WarnUnclosable:
		return fmt.Sprintf("%d objects could not be closed and stay open", w.Count)
	}
	return fmt.Sprintf("%d objects affected", w.Count)
}

// ConfirmFunc decides whether to continue after classification
// warnings. It is the planner's hook for an interactive confirmation
// prompt; returning false aborts the run.
type ConfirmFunc func(warnings []Warning) bool

// Pass is the outcome of one program pass (engrave or cut).
type Pass struct {
	Gcode  string
	Stats  toolpath.Stats
	Report classify.Report

	// Duration is the estimated pass time in seconds, before
	// acceleration compensation.
	Duration float64
}

// Result is the outcome of a full planning run.
type Result struct {
	Engrave *Pass // nil when no engrave curves were given
	Cut     *Pass // nil when no cut curves were given

	// Program is the assembled machine program: summary header,
	// startup block, engrave and cut passes with their power/feed
	// preambles, shutdown block.
	Program string

	// Duration is the total estimate including the acceleration
	// compensation factor.
	Duration time.Duration

	// Summary is the human-readable run report.
	Summary string
}

// Planner runs the full pipeline for one machine profile and material.
type Planner struct {
	Kernel   kernel.Kernel
	Profile  *profile.Profile
	Material *profile.Material

	// Config holds the toolpath parameters. Zero fields are filled
	// from DefaultConfig and the material's speeds.
	Config toolpath.Config

	// Disperse selects the heat-mitigation sort for open cuts. Callers
	// typically enable it when Material.HeatSensitive reports true and
	// the operator accepts the longer run time.
	Disperse bool

	// Confirm, when set, is consulted once with any aggregate
	// classification warnings. A nil hook always continues.
	Confirm ConfirmFunc

	// SourceName names the source document in the program header.
	SourceName string
}

// config returns the effective toolpath configuration.
func (p *Planner) config() toolpath.Config {
	cfg := p.Config
	def := toolpath.DefaultConfig()
	if cfg.RapidSpeed == 0 {
		cfg.RapidSpeed = def.RapidSpeed
	}
	if cfg.EstimateFactor == 0 {
		cfg.EstimateFactor = def.EstimateFactor
	}
	if cfg.MinSegment == 0 {
		cfg.MinSegment = def.MinSegment
	}
	if cfg.MaxSegment == 0 {
		cfg.MaxSegment = def.MaxSegment
	}
	if cfg.ScanResolution == 0 {
		cfg.ScanResolution = def.ScanResolution
	}
	if cfg.GroupSize == 0 {
		cfg.GroupSize = def.GroupSize
	}
	if cfg.CutSpeed == 0 {
		cfg.CutSpeed = p.Material.CuttingSpeed
	}
	if cfg.EngraveSpeed == 0 {
		cfg.EngraveSpeed = p.Material.EngravingSpeed
	}
	return cfg
}

// Plan classifies, orders and synthesizes both passes and assembles
// the final program. Curves for either pass may be empty; the
// corresponding program section is omitted entirely.
func (p *Planner) Plan(engrave, cut []kernel.Curve) (*Result, error) {
	if p.Kernel == nil {
		return nil, errors.New("beamcut: planner needs a geometry kernel")
	}
	if p.Profile == nil || p.Material == nil {
		return nil, errors.New("beamcut: planner needs a profile and material")
	}
	if err := p.Profile.Usable(); err != nil {
		return nil, err
	}
	if len(engrave) == 0 && len(cut) == 0 {
		return nil, errors.New("beamcut: no curves to process")
	}

	cfg := p.config()
	env := classify.Envelope{MaxX: p.Profile.MaxX, MaxY: p.Profile.MaxY}

	logger().Info("interpreting curves",
		"engrave", len(engrave), "cut", len(cut),
		"envelope_x", env.MaxX, "envelope_y", env.MaxY)

	engraveDescs, engraveReport := classify.Interpret(p.Kernel, engrave, env)
	cutDescs, cutReport := classify.Interpret(p.Kernel, cut, env)
	report := engraveReport.Merge(cutReport)

	if warnings := collectWarnings(report); len(warnings) > 0 {
		logger().Warn("classification warnings",
			"out_of_bounds", report.OutOfBounds,
			"non_planar", report.NonPlanar,
			"unclosable", report.Unclosable)
		if p.Confirm != nil && !p.Confirm(warnings) {
			return nil, ErrAborted
		}
	}

	res := &Result{}
	opts := ordering.Options{Disperse: p.Disperse, GroupSize: cfg.GroupSize}

	if len(engraveDescs) > 0 {
		res.Engrave = p.runPass("engrave", engraveDescs, engraveReport, opts, cfg, cfg.EngraveSpeed)
	}
	if len(cutDescs) > 0 {
		res.Cut = p.runPass("cut", cutDescs, cutReport, opts, cfg, cfg.CutSpeed)
	}

	var total float64
	if res.Engrave != nil {
		total += res.Engrave.Duration
	}
	if res.Cut != nil {
		total += res.Cut.Duration
	}
	res.Duration = time.Duration(total * cfg.EstimateFactor * float64(time.Second)).Truncate(time.Second)

	res.Summary = p.summary(res, report)
	res.Program = p.assemble(res)

	logger().Info("program synthesized",
		"duration", res.Duration,
		"bytes", len(res.Program))
	return res, nil
}

// runPass sorts and synthesizes one pass.
func (p *Planner) runPass(name string, descs []*classify.Descriptor, report classify.Report, opts ordering.Options, cfg toolpath.Config, speed float64) *Pass {
	logger().Info("sorting pass", "pass", name, "objects", len(descs), "disperse", opts.Disperse)
	sorted := ordering.Sort(p.Kernel, descs, opts)

	syn := toolpath.NewSynthesizer(p.Kernel, cfg)
	syn.EmitAll(sorted)

	stats := syn.Stats()
	if stats.Unprocessed > 0 {
		logger().Warn("curves left unprocessed", "pass", name, "count", stats.Unprocessed)
	}
	return &Pass{
		Gcode:    syn.Program(),
		Stats:    stats,
		Report:   report,
		Duration: stats.Duration(speed, cfg.RapidSpeed),
	}
}

func collectWarnings(r classify.Report) []Warning {
	var out []Warning
	if r.OutOfBounds > 0 {
		out = append(out, Warning{Kind: WarnOutOfBounds, Count: r.OutOfBounds})
	}
	if r.NonPlanar > 0 {
		out = append(out, Warning{Kind: WarnNonPlanar, Count: r.NonPlanar})
	}
	if r.Unclosable > 0 {
		out = append(out, Warning{Kind: WarnUnclosable, Count: r.Unclosable})
	}
	return out
}

// num formats a profile number without a forced decimal tail.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func passDuration(sec float64) string {
	return time.Duration(sec * float64(time.Second)).Truncate(time.Second).String()
}

// summary builds the run report embedded in the program header. The
// summary is deliberately free of timestamps so identical inputs
// produce byte-identical programs.
func (p *Planner) summary(res *Result, report classify.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Settings profile: %s\n", p.Profile.Name)
	if p.SourceName != "" {
		fmt.Fprintf(&b, "Source document: %s\n", p.SourceName)
	}
	fmt.Fprintf(&b, "Material profile: %s\n\n", p.Material.Name)

	writePass := func(label string, pass *Pass) {
		if pass == nil {
			return
		}
		st := pass.Stats
		if st.Curves > 0 {
			fmt.Fprintf(&b, "%s curves processed: %d\n", label, st.Curves)
		}
		if st.Polycurves > 0 {
			fmt.Fprintf(&b, "%s polycurves processed: %d\n", label, st.Polycurves)
		}
		if st.Polylines > 0 {
			fmt.Fprintf(&b, "%s polylines processed: %d\n", label, st.Polylines)
		}
		if st.Lines > 0 {
			fmt.Fprintf(&b, "%s lines processed: %d\n", label, st.Lines)
		}
		fmt.Fprintf(&b, "Total %s length: %d mm\n", strings.ToLower(label), int(st.ActiveLength))
		fmt.Fprintf(&b, "%s time: %s\n\n", label, passDuration(pass.Duration))
	}
	writePass("Engraving", res.Engrave)
	writePass("Cutting", res.Cut)

	unprocessed := 0
	if res.Engrave != nil {
		unprocessed += res.Engrave.Stats.Unprocessed
	}
	if res.Cut != nil {
		unprocessed += res.Cut.Stats.Unprocessed
	}
	fmt.Fprintf(&b, "Skipped objects: %d\n", report.NonPlanar+unprocessed)
	fmt.Fprintf(&b, "Skipped out of bounds objects: %d\n\n", report.OutOfBounds)
	fmt.Fprintf(&b, "Total estimated time: %s\n", res.Duration)

	return b.String()
}

// assemble concatenates the final program: summary comment, startup
// block, per-pass power and feed preambles with their commands, and
// the shutdown block.
func (p *Planner) assemble(res *Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "(\n%s)\n\n", res.Summary)

	b.WriteString("(Startup commands)\n")
	b.WriteString(p.Profile.Startup)
	b.WriteString("\n")
	if p.SourceName != "" {
		fmt.Fprintf(&b, "G00 COriginalFilename-%s\n", p.SourceName)
	}
	fmt.Fprintf(&b, "G00 CLaserProfile-%s\n", p.Material.Name)
	fmt.Fprintf(&b, "G00 CTimeEstimate-%s\n", res.Duration)

	if res.Engrave != nil {
		b.WriteString("\n(Engraving commands)\n")
		fmt.Fprintf(&b, "G97 S%s\n", num(p.Material.EngravingPower))
		fmt.Fprintf(&b, "G98 P265 E%s\n", num(p.Material.EngravingPulse))
		fmt.Fprintf(&b, "G01 F%s\n", num(p.Material.EngravingSpeed))
		b.WriteString(res.Engrave.Gcode)
		b.WriteString("\n")
	}
	if res.Cut != nil {
		b.WriteString("\n(Cutting commands)\n")
		fmt.Fprintf(&b, "G97 S%s\n", num(p.Material.CuttingPower))
		fmt.Fprintf(&b, "G98 P265 E%s\n", num(p.Material.CuttingPulse))
		fmt.Fprintf(&b, "G01 F%s\n", num(p.Material.CuttingSpeed))
		b.WriteString(res.Cut.Gcode)
		b.WriteString("\n")
	}

	b.WriteString("(Shutdown commands)\n")
	b.WriteString(p.Profile.Shutdown)
	b.WriteString("\n")
	return b.String()
}
