package asciify

import "testing"

func TestGlyphIndexFormula(t *testing.T) {
	tests := []struct {
		brightness float64
		want       int
	}{
		{0, 0},
		{0.05, 0},
		{0.299, 2}, // floor(0.299 * 9)
		{0.5, 4},
		{0.999, 8},
		{1, 9},
	}
	for _, tt := range tests {
		if got := DefaultRamp.GlyphIndex(tt.brightness); got != tt.want {
			t.Errorf("GlyphIndex(%v) = %d, want %d", tt.brightness, got, tt.want)
		}
	}
}

func TestGlyphIndexClampsOutOfRangeBrightness(t *testing.T) {
	if got := DefaultRamp.GlyphIndex(-0.5); got != 0 {
		t.Errorf("GlyphIndex(-0.5) = %d, want 0", got)
	}
	if got := DefaultRamp.GlyphIndex(2.0); got != len(DefaultRamp)-1 {
		t.Errorf("GlyphIndex(2.0) = %d, want %d", got, len(DefaultRamp)-1)
	}
}

func TestGlyphIndexMonotonic(t *testing.T) {
	prev := 0
	for i := 0; i <= 1000; i++ {
		b := float64(i) / 1000
		idx := DefaultRamp.GlyphIndex(b)
		if idx < prev {
			t.Fatalf("mapping not monotonic: brightness %v maps to %d after %d", b, idx, prev)
		}
		prev = idx
	}
}

func TestValidateRejectsEmptyRamp(t *testing.T) {
	if err := Ramp(nil).Validate(); err != ErrEmptyRamp {
		t.Fatalf("expected ErrEmptyRamp, got %v", err)
	}
	if err := DefaultRamp.Validate(); err != nil {
		t.Fatalf("default ramp should validate, got %v", err)
	}
}

func TestDefaultRampShape(t *testing.T) {
	if len(DefaultRamp) != 10 {
		t.Fatalf("default ramp has %d glyphs, want 10", len(DefaultRamp))
	}
	if DefaultRamp[0] != ' ' {
		t.Fatalf("default ramp should start with space, got %q", DefaultRamp[0])
	}
}
