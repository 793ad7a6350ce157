// Package metrics exposes sampler readings as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/shini4i/moninet/internal/stats"
)

const (
	directionUpload   = "upload"
	directionDownload = "download"
)

// Registry holds every moninet collector. It is separate from the default
// registry so tests and embedders see only these series.
var Registry = prometheus.NewRegistry()

var (
	// SpeedBytesPerSecond is the last tick's throughput, labelled by direction.
	SpeedBytesPerSecond = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "moninet",
		Name:      "speed_bytes_per_second",
		Help:      "Throughput measured on the last tick.",
	}, []string{"direction"})
	// UsageBytes is the cumulative usage since the last reset, labelled by direction.
	UsageBytes = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "moninet",
		Name:      "usage_bytes",
		Help:      "Cumulative bytes since the last reset.",
	}, []string{"direction"})
	// CounterResetsTotal counts ticks where an OS counter was lower than the previous sample.
	CounterResetsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "moninet",
		Name:      "counter_resets_total",
		Help:      "Times an OS byte counter went backwards (reboot or rollover).",
	}, []string{"direction"})
	// PersistErrorsTotal counts failed writes of the usage record.
	PersistErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "moninet",
		Name:      "persist_errors_total",
		Help:      "Failed writes of the usage record.",
	})
	// TicksTotal counts sampler ticks that produced a reading.
	TicksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "moninet",
		Name:      "ticks_total",
		Help:      "Sampler ticks that produced a reading.",
	})
)

func init() {
	Registry.MustRegister(
		SpeedBytesPerSecond,
		UsageBytes,
		CounterResetsTotal,
		PersistErrorsTotal,
		TicksTotal,

		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Observe records a published reading. Register it with Collector.OnReading.
func Observe(r stats.Reading) {
	SpeedBytesPerSecond.WithLabelValues(directionUpload).Set(r.Speed.UploadBytesPerSec)
	SpeedBytesPerSecond.WithLabelValues(directionDownload).Set(r.Speed.DownloadBytesPerSec)
	UsageBytes.WithLabelValues(directionUpload).Set(float64(r.Totals.Uploaded))
	UsageBytes.WithLabelValues(directionDownload).Set(float64(r.Totals.Downloaded))

	if r.Delta.SentReset {
		CounterResetsTotal.WithLabelValues(directionUpload).Inc()
	}
	if r.Delta.ReceivedReset {
		CounterResetsTotal.WithLabelValues(directionDownload).Inc()
	}
	if r.PersistFailed {
		PersistErrorsTotal.Inc()
	}
	if r.Kind == stats.ReadingTick {
		TicksTotal.Inc()
	}
}
