package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/harmonica"
)

// smoothBar is a progress indicator whose fill position is driven through a
// spring, so seeks glide instead of jumping.
type smoothBar struct {
	spring harmonica.Spring
	pos    float64
	vel    float64
}

func newSmoothBar(fps int) smoothBar {
	return smoothBar{spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 0.9)}
}

// step advances the spring toward the target ratio and returns the smoothed
// position.
func (b *smoothBar) step(target float64) float64 {
	if target < 0 {
		target = 0
	}
	if target > 1 {
		target = 1
	}
	b.pos, b.vel = b.spring.Update(b.pos, b.vel, target)
	return b.pos
}

func renderProgressBar(ratio float64, width int) string {
	if width < 10 {
		width = 10
	}
	barWidth := width - 2

	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio * float64(barWidth))
	return strings.Repeat("━", filled) + strings.Repeat("─", barWidth-filled)
}

func renderVolumePercent(vol float64) string {
	return fmt.Sprintf("vol %d%%", int(vol*100))
}

func spaces(n int) string {
	if n < 0 {
		n = 0
	}
	return strings.Repeat(" ", n)
}
