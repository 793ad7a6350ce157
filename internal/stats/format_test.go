package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shini4i/moninet/internal/usage"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		name     string
		bytes    uint64
		expected string
	}{
		{"zero", 0, "0.00 MB"},
		{"one megabyte", mib, "1.00 MB"},
		{"just under boundary", megabytes(1023.99), "1023.99 MB"},
		{"rounds up below boundary", 1024*mib - 1000, "1024.00 MB"},
		{"boundary", 1024 * mib, "1.00 GB"},
		{"one and a half gigabytes", 1536 * mib, "1.50 GB"},
		{"first-run scenario", 1_100_000, "1.05 MB"},
		{"terabyte scale stays in GB", 1024 * 1024 * mib, "1024.00 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatSize(tt.bytes))
		})
	}
}

func TestFormatSpeed(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		unit     Unit
		expected string
	}{
		{"zero", 0, UnitMegabytes, "0.00 MB/s"},
		{"scenario upload", 100000.0 / 1048576.0, UnitMegabytes, "0.10 MB/s"},
		{"megabits", 0.762939453125, UnitMegabits, "0.76 Mbps"},
		{"large", 118.5, UnitMegabytes, "118.50 MB/s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatSpeed(tt.value, tt.unit))
		})
	}
}

func TestView_Lines(t *testing.T) {
	reading := Reading{
		Speed:  SpeedSample{UploadBytesPerSec: 100_000, DownloadBytesPerSec: 50_000}.In(UnitMegabytes),
		Totals: usage.Totals{Uploaded: 1_100_000, Downloaded: 2 * 1024 * mib},
	}

	tests := []struct {
		name     string
		view     View
		expected []string
	}{
		{"nothing", View{}, []string{}},
		{"speed only", View{ShowSpeed: true}, []string{"↑ : 0.10 MB/s", "↓ : 0.05 MB/s"}},
		{"usage only", View{ShowTotalUsage: true}, []string{"↑ : 1.05 MB", "↓ : 2.00 GB"}},
		{
			"both",
			View{ShowSpeed: true, ShowTotalUsage: true},
			[]string{"↑ : 0.10 MB/s", "↓ : 0.05 MB/s", "↑ : 1.05 MB", "↓ : 2.00 GB"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.view.Lines(reading))
		})
	}
}

func megabytes(mb float64) uint64 {
	return uint64(mb * mib)
}
