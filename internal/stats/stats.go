// Package stats turns periodic counter snapshots into throughput and cumulative usage.
package stats

import (
	"errors"
	"fmt"
	"time"

	"github.com/shini4i/moninet/internal/counters"
	"github.com/shini4i/moninet/internal/usage"
)

// ErrInvalidPeriod is returned when the sample period is not a positive duration.
var ErrInvalidPeriod = errors.New("sample period must be positive")

// Unit is the display unit for throughput.
type Unit string

const (
	// UnitMegabytes renders rates in binary megabytes per second.
	UnitMegabytes Unit = "MB/s"
	// UnitMegabits renders rates in binary megabits per second.
	UnitMegabits Unit = "Mbps"
)

// ParseUnit parses a unit name as written in the config file.
func ParseUnit(s string) (Unit, error) {
	switch Unit(s) {
	case UnitMegabytes, "":
		return UnitMegabytes, nil
	case UnitMegabits:
		return UnitMegabits, nil
	default:
		return "", fmt.Errorf("unknown speed unit %q", s)
	}
}

// Toggle returns the other unit.
func (u Unit) Toggle() Unit {
	if u == UnitMegabits {
		return UnitMegabytes
	}
	return UnitMegabits
}

// Convert renders a bytes-per-second rate in this unit.
func (u Unit) Convert(bytesPerSec float64) float64 {
	if u == UnitMegabits {
		return MegabitsPerSecond(bytesPerSec)
	}
	return MegabytesPerSecond(bytesPerSec)
}

// SamplerState is what the sampler carries from one tick to the next.
type SamplerState struct {
	// Previous is the snapshot read on the last tick.
	Previous counters.Snapshot
	// Period is the nominal time between ticks.
	Period time.Duration
}

// NewSamplerState creates the state for the first tick.
func NewSamplerState(initial counters.Snapshot, period time.Duration) (SamplerState, error) {
	if period <= 0 {
		return SamplerState{}, ErrInvalidPeriod
	}
	return SamplerState{Previous: initial, Period: period}, nil
}

// SpeedSample is the instantaneous throughput computed on one tick.
type SpeedSample struct {
	// Upload is the send rate expressed in Unit.
	Upload float64
	// Download is the receive rate expressed in Unit.
	Download float64
	// Unit is the unit Upload and Download are expressed in.
	Unit Unit

	// UploadBytesPerSec is the raw send rate.
	UploadBytesPerSec float64
	// DownloadBytesPerSec is the raw receive rate.
	DownloadBytesPerSec float64
}

// In returns the same sample rendered in another unit.
func (s SpeedSample) In(unit Unit) SpeedSample {
	s.Unit = unit
	s.Upload = unit.Convert(s.UploadBytesPerSec)
	s.Download = unit.Convert(s.DownloadBytesPerSec)
	return s
}

// Delta is the per-direction byte difference between two consecutive snapshots.
type Delta struct {
	Sent     uint64
	Received uint64

	// SentReset is set when the send counter went backwards (reboot or rollover).
	SentReset bool
	// ReceivedReset is set when the receive counter went backwards.
	ReceivedReset bool
}

// ReadingKind tells why a Reading was published.
type ReadingKind int

const (
	// ReadingInitial is published once when the collector starts.
	ReadingInitial ReadingKind = iota
	// ReadingTick is published after every sampler tick.
	ReadingTick
	// ReadingCommand is published after a reset or unit change.
	ReadingCommand
)

// String returns the kind name used in logs.
func (k ReadingKind) String() string {
	switch k {
	case ReadingInitial:
		return "initial"
	case ReadingTick:
		return "tick"
	case ReadingCommand:
		return "command"
	default:
		return "unknown"
	}
}

// Reading is what the collector hands to presentation shells.
type Reading struct {
	Kind   ReadingKind
	Speed  SpeedSample
	Totals usage.Totals
	Delta  Delta

	// PersistFailed is set when saving the totals after this update failed.
	PersistFailed bool

	// Timestamp is when this reading was produced.
	Timestamp time.Time
}
