package util

import (
	"fmt"
	"time"
)

// FormatDuration formats a duration as m:ss, or h:mm:ss past the hour.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatTimestamp formats a duration for ffmpeg -ss (HH:MM:SS.mmm).
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	totalSec := d.Seconds()
	h := int(totalSec) / 3600
	m := (int(totalSec) % 3600) / 60
	sec := totalSec - float64(h*3600+m*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", h, m, sec)
}
