package termview

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
)

// ColorMode describes how much color the terminal can take.
type ColorMode uint8

const (
	ColorOff  ColorMode = iota // NO_COLOR or dumb terminal
	ColorANSI                  // basic 16-color
	Color256                   // 256-color cube
	ColorTrue                  // 24-bit truecolor
)

func (m ColorMode) String() string {
	switch m {
	case ColorOff:
		return "off"
	case ColorANSI:
		return "ansi16"
	case Color256:
		return "ansi256"
	case ColorTrue:
		return "truecolor"
	default:
		return "unknown"
	}
}

var (
	detectOnce sync.Once
	termMode   ColorMode
)

// DetectColorMode probes the terminal's color capabilities once per process.
func DetectColorMode() ColorMode {
	detectOnce.Do(func() {
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			termMode = ColorOff
			return
		}
		term := strings.ToLower(os.Getenv("TERM"))
		ct := strings.ToLower(os.Getenv("COLORTERM"))
		switch {
		case strings.Contains(ct, "truecolor"), strings.Contains(ct, "24bit"):
			termMode = ColorTrue
		case strings.Contains(term, "256color"):
			termMode = Color256
		case term == "dumb":
			termMode = ColorOff
		case term == "" && runtime.GOOS == "windows":
			termMode = ColorANSI
		case term == "":
			termMode = ColorOff
		default:
			termMode = ColorANSI
		}
	})
	return termMode
}

const ansiReset = "\x1b[0m"

// fg returns the foreground escape for an RGB color in this mode. Empty when
// colors are off.
func (m ColorMode) fg(r, g, b uint8) string {
	switch m {
	case ColorTrue:
		return fmt.Sprintf("\x1b[38;2;%d;%d;%dm", r, g, b)
	case Color256:
		return fmt.Sprintf("\x1b[38;5;%dm", cube256(r, g, b))
	case ColorANSI:
		i := nearest16(r, g, b)
		if i < 8 {
			return fmt.Sprintf("\x1b[%dm", 30+i)
		}
		return fmt.Sprintf("\x1b[%dm", 90+i-8)
	default:
		return ""
	}
}

// bg returns the background escape for an RGB color in this mode.
func (m ColorMode) bg(r, g, b uint8) string {
	switch m {
	case ColorTrue:
		return fmt.Sprintf("\x1b[48;2;%d;%d;%dm", r, g, b)
	case Color256:
		return fmt.Sprintf("\x1b[48;5;%dm", cube256(r, g, b))
	case ColorANSI:
		i := nearest16(r, g, b)
		if i < 8 {
			return fmt.Sprintf("\x1b[%dm", 40+i)
		}
		return fmt.Sprintf("\x1b[%dm", 100+i-8)
	default:
		return ""
	}
}

// cube256 maps RGB into the 6x6x6 color cube region of the 256-color palette.
func cube256(r, g, b uint8) int {
	return 16 + 36*(int(r)*5/255) + 6*(int(g)*5/255) + int(b)*5/255
}

// nearest16 finds the closest ANSI 16 palette index by squared RGB distance.
func nearest16(r, g, b uint8) int {
	best, bestDist := 0, 1<<31-1
	for i, c := range ansi16Palette {
		dr := int(r) - int(c[0])
		dg := int(g) - int(c[1])
		db := int(b) - int(c[2])
		if d := dr*dr + dg*dg + db*db; d < bestDist {
			bestDist, best = d, i
		}
	}
	return best
}

var ansi16Palette = [16][3]uint8{
	{0, 0, 0},       // black
	{205, 49, 49},   // red
	{13, 188, 121},  // green
	{229, 229, 16},  // yellow
	{36, 114, 200},  // blue
	{188, 63, 188},  // magenta
	{17, 168, 205},  // cyan
	{229, 229, 229}, // white
	{102, 102, 102}, // bright black
	{241, 76, 76},   // bright red
	{35, 209, 139},  // bright green
	{245, 245, 67},  // bright yellow
	{59, 142, 234},  // bright blue
	{214, 112, 214}, // bright magenta
	{41, 184, 219},  // bright cyan
	{255, 255, 255}, // bright white
}
