// Package profile loads the machine and material settings document the
// laser operators publish for each cutter: working envelope, per-material
// speed/power/pulse parameters, and the startup/shutdown command blocks
// wrapped around every program. The document is JSON, fetched from the
// settings server or read from a local file.
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// Material is one material entry from the settings document. Speeds are
// mm/s, powers and pulses are controller units passed through verbatim.
type Material struct {
	Name           string  `json:"MaterialName"`
	CuttingSpeed   float64 `json:"CuttingSpeed"`
	CuttingPower   float64 `json:"CuttingPower"`
	CuttingPulse   float64 `json:"CuttingPulse"`
	EngravingSpeed float64 `json:"EngravingSpeed"`
	EngravingPower float64 `json:"EngravingPower"`
	EngravingPulse float64 `json:"EngravingPulse"`
}

// HeatSensitive reports whether the material is prone to localized
// overheating and warping, which makes the dispersal sort worth
// suggesting. Acrylic is the known offender.
func (m *Material) HeatSensitive() bool {
	name := strings.ToLower(m.Name)
	return strings.Contains(name, "akryl") || strings.Contains(name, "acrylic")
}

// Profile is the full settings document.
type Profile struct {
	Name           string `json:"Name"`
	Offline        int    `json:"Offline"`
	OfflineMessage string `json:"OfflineMessage"`
	CurrentVersion string `json:"CurrentVersion"`
	UpdateAddress  string `json:"UpdateAddress"`

	// MaxX and MaxY define the working envelope [0, MaxX] × [0, MaxY]
	// in millimetres.
	MaxX float64 `json:"Max_X"`
	MaxY float64 `json:"Max_Y"`

	// Startup and Shutdown are literal command blocks emitted before
	// and after the generated program.
	Startup  string `json:"Start-up"`
	Shutdown string `json:"End"`

	Materials []Material `json:"Materials"`
}

// Usable returns an error if the profile declares the machine offline.
func (p *Profile) Usable() error {
	if p.Offline != 0 {
		if p.OfflineMessage != "" {
			return fmt.Errorf("profile: machine offline: %s", p.OfflineMessage)
		}
		return fmt.Errorf("profile: machine offline")
	}
	return nil
}

// Material returns the entry with the given name, case-insensitively.
func (p *Profile) Material(name string) (*Material, bool) {
	for i := range p.Materials {
		if strings.EqualFold(p.Materials[i].Name, name) {
			return &p.Materials[i], true
		}
	}
	return nil, false
}

// MaterialNames lists the available material names in document order.
func (p *Profile) MaterialNames() []string {
	names := make([]string, len(p.Materials))
	for i := range p.Materials {
		names[i] = p.Materials[i].Name
	}
	return names
}

// Load decodes a settings document.
func Load(r io.Reader) (*Profile, error) {
	var p Profile
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("profile: decoding settings: %w", err)
	}
	if p.MaxX <= 0 || p.MaxY <= 0 {
		return nil, fmt.Errorf("profile: invalid working envelope %gx%g", p.MaxX, p.MaxY)
	}
	return &p, nil
}

// LoadFile reads a settings document from disk.
func LoadFile(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Fetch retrieves a settings document from the settings server.
func Fetch(ctx context.Context, url string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile: fetching settings: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("profile: settings server returned %s", resp.Status)
	}
	return Load(resp.Body)
}
