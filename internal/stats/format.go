package stats

import (
	"fmt"

	"github.com/shini4i/moninet/internal/usage"
)

const (
	// Binary unit multipliers (1024-based).
	kib = 1024
	mib = kib * 1024
)

// FormatSpeed formats a rate already expressed in unit, e.g. "0.10 MB/s".
func FormatSpeed(value float64, unit Unit) string {
	return fmt.Sprintf("%.2f %s", value, unit)
}

// FormatSize formats a byte count as megabytes below 1024 MB and gigabytes above.
// The unit is picked before rounding, so values just under 1024 MB print as "1024.00 MB".
func FormatSize(bytes uint64) string {
	mb := float64(bytes) / mib
	if mb < 1024 {
		return fmt.Sprintf("%.2f MB", mb)
	}
	return fmt.Sprintf("%.2f GB", mb/1024)
}

// View selects which line pairs a shell shows.
type View struct {
	ShowSpeed      bool
	ShowTotalUsage bool
}

// SpeedLines returns the upload and download speed labels.
func SpeedLines(s SpeedSample) (up, down string) {
	return "↑ : " + FormatSpeed(s.Upload, s.Unit), "↓ : " + FormatSpeed(s.Download, s.Unit)
}

// UsageLines returns the upload and download total-usage labels.
func UsageLines(t usage.Totals) (up, down string) {
	return "↑ : " + FormatSize(t.Uploaded), "↓ : " + FormatSize(t.Downloaded)
}

// Lines returns the labels enabled by the view, speed first.
func (v View) Lines(r Reading) []string {
	lines := make([]string, 0, 4)
	if v.ShowSpeed {
		up, down := SpeedLines(r.Speed)
		lines = append(lines, up, down)
	}
	if v.ShowTotalUsage {
		up, down := UsageLines(r.Totals)
		lines = append(lines, up, down)
	}
	return lines
}
