package render

import (
	"fmt"

	"github.com/pascal-r/glyphcast/internal/asciify"
)

// PathPreference selects which render paths the converter may use.
type PathPreference int

const (
	// PreferAccelerated uses the parallel path when the startup probe
	// succeeded, with the reference path as fallback.
	PreferAccelerated PathPreference = iota
	// CPUOnly pins conversion to the reference path.
	CPUOnly
)

// Settings is the conversion settings snapshot. Each frame's conversion reads
// it exactly once at frame start; updates take effect on the next frame.
type Settings struct {
	Ramp          asciify.Ramp
	CellSize      int     // pixels per grid cell
	Density       float64 // reserved for ramp-selection pressure; carried, not applied
	Background    asciify.RGB
	ColorAccuracy float64 // 0 = brightness gray, 1 = full sampled color
	Path          PathPreference
}

// DefaultSettings returns the stock conversion settings.
func DefaultSettings() Settings {
	return Settings{
		Ramp:          asciify.DefaultRamp,
		CellSize:      8,
		Density:       1,
		Background:    asciify.RGB{},
		ColorAccuracy: 1,
		Path:          PreferAccelerated,
	}
}

// Validate rejects settings no renderer can act on.
func (s Settings) Validate() error {
	if err := s.Ramp.Validate(); err != nil {
		return err
	}
	if s.CellSize < 1 {
		return fmt.Errorf("render: cell size must be positive, got %d", s.CellSize)
	}
	if s.ColorAccuracy < 0 || s.ColorAccuracy > 1 {
		return fmt.Errorf("render: color accuracy %v outside [0,1]", s.ColorAccuracy)
	}
	return nil
}

// Patch is a partial settings update; nil fields keep their current value.
type Patch struct {
	Ramp          *asciify.Ramp
	CellSize      *int
	Density       *float64
	Background    *asciify.RGB
	ColorAccuracy *float64
	Path          *PathPreference
}

// Apply merges the patch over s and returns the result.
func (s Settings) Apply(p Patch) Settings {
	if p.Ramp != nil {
		s.Ramp = *p.Ramp
	}
	if p.CellSize != nil {
		s.CellSize = *p.CellSize
	}
	if p.Density != nil {
		s.Density = *p.Density
	}
	if p.Background != nil {
		s.Background = *p.Background
	}
	if p.ColorAccuracy != nil {
		s.ColorAccuracy = *p.ColorAccuracy
	}
	if p.Path != nil {
		s.Path = *p.Path
	}
	return s
}
