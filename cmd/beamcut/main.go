// Command beamcut converts a scene of 2-D curves into a laser cutter
// program. It loads a machine settings profile from a file or the
// settings server, interprets the scene through the bezier geometry
// backend, and writes the generated program next to the scene file.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	beamcut "github.com/chazu/beamcut"
	"github.com/chazu/beamcut/pkg/kernel/bezier"
	"github.com/chazu/beamcut/pkg/profile"
	"github.com/chazu/beamcut/pkg/scene"
)

func main() {
	var (
		profileSrc = flag.String("profile", "", "settings profile: a local file or an http(s) URL (required)")
		material   = flag.String("material", "", "material name from the profile (required)")
		out        = flag.String("o", "", "output path (default: scene path with a .nc extension)")
		disperse   = flag.Bool("disperse", false, "spread open cuts to limit local heating (slower)")
		yes        = flag.Bool("y", false, "continue past classification warnings without prompting")
		verbose    = flag.Bool("v", false, "log pipeline progress")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: beamcut -profile <file|url> -material <name> scene.json\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *verbose {
		beamcut.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	}

	if flag.NArg() != 1 || *profileSrc == "" || *material == "" {
		flag.Usage()
		os.Exit(2)
	}
	scenePath := flag.Arg(0)

	if err := run(scenePath, *profileSrc, *material, *out, *disperse, *yes); err != nil {
		fmt.Fprintln(os.Stderr, "beamcut:", err)
		os.Exit(1)
	}
}

func run(scenePath, profileSrc, materialName, out string, disperse, yes bool) error {
	prof, err := loadProfile(profileSrc)
	if err != nil {
		return err
	}
	mat, ok := prof.Material(materialName)
	if !ok {
		return fmt.Errorf("material %q not in profile; available: %s",
			materialName, strings.Join(prof.MaterialNames(), ", "))
	}

	doc, err := scene.LoadFile(scenePath)
	if err != nil {
		return err
	}

	if mat.HeatSensitive() && !disperse {
		fmt.Println("Note: this material warps under concentrated heat; consider -disperse.")
	}

	p := &beamcut.Planner{
		Kernel:     bezier.New(),
		Profile:    prof,
		Material:   mat,
		Disperse:   disperse,
		SourceName: filepath.Base(scenePath),
	}
	if !yes {
		p.Confirm = promptConfirm
	}

	res, err := p.Plan(doc.Engrave, doc.Cut)
	if err != nil {
		return err
	}

	if out == "" {
		out = strings.TrimSuffix(scenePath, filepath.Ext(scenePath)) + ".nc"
	}
	if err := os.WriteFile(out, []byte(res.Program), 0o644); err != nil {
		return err
	}
	if _, err := os.Stat(out); err != nil {
		return fmt.Errorf("program file was not created: %w", err)
	}

	fmt.Print(res.Summary)
	fmt.Printf("\nProgram written to %s\n", out)
	return nil
}

// loadProfile reads the settings document from a URL or a local file.
func loadProfile(src string) (*profile.Profile, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return profile.Fetch(ctx, src)
	}
	return profile.LoadFile(src)
}

// promptConfirm shows aggregate classification warnings and asks once
// whether to continue.
func promptConfirm(warnings []beamcut.Warning) bool {
	for _, w := range warnings {
		fmt.Println("Warning:", w)
	}
	fmt.Print("Continue? [y/N] ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
