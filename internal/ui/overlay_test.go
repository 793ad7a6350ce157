package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shini4i/moninet/internal/stats"
	"github.com/shini4i/moninet/internal/usage"
)

func TestOverlayRows(t *testing.T) {
	reading := stats.Reading{
		Speed:  stats.SpeedSample{Upload: 0.1, Download: 2.5, Unit: stats.UnitMegabytes},
		Totals: usage.Totals{Uploaded: 512 * 1048576, Downloaded: 1024 * 1048576},
	}

	tests := []struct {
		name string
		view stats.View
		want []overlayRow
	}{
		{
			name: "speed only",
			view: stats.View{ShowSpeed: true},
			want: []overlayRow{
				{"↑ : 0.10 MB/s", cssClassUpload},
				{"↓ : 2.50 MB/s", cssClassDownload},
			},
		},
		{
			name: "usage only",
			view: stats.View{ShowTotalUsage: true},
			want: []overlayRow{
				{"↑ : 512.00 MB", cssClassUpload},
				{"↓ : 1.00 GB", cssClassDownload},
			},
		},
		{
			name: "speed then usage",
			view: stats.View{ShowSpeed: true, ShowTotalUsage: true},
			want: []overlayRow{
				{"↑ : 0.10 MB/s", cssClassUpload},
				{"↓ : 2.50 MB/s", cssClassDownload},
				{"↑ : 512.00 MB", cssClassUpload},
				{"↓ : 1.00 GB", cssClassDownload},
			},
		},
		{
			name: "nothing",
			view: stats.View{},
			want: []overlayRow{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, overlayRows(tt.view, reading))
		})
	}
}

func TestOverlayCSS_DefinesRowClasses(t *testing.T) {
	for _, class := range []string{cssClassUpload, cssClassDownload, cssClassHint} {
		assert.Contains(t, overlayCSS, "."+class+" ")
	}
}
