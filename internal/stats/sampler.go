package stats

import "github.com/shini4i/moninet/internal/counters"

const bytesPerMegabyte = 1024 * 1024

// MegabytesPerSecond converts bytes per second to binary megabytes per second.
func MegabytesPerSecond(bytesPerSec float64) float64 {
	return bytesPerSec / bytesPerMegabyte
}

// MegabitsPerSecond converts bytes per second to binary megabits per second.
func MegabitsPerSecond(bytesPerSec float64) float64 {
	return bytesPerSec * 8 / bytesPerMegabyte
}

// ClampDelta returns curr-prev, or zero with reset set when the counter went backwards.
func ClampDelta(prev, curr uint64) (delta uint64, reset bool) {
	if curr < prev {
		return 0, true
	}
	return curr - prev, false
}

// ComputeDelta compares two snapshots direction by direction.
func ComputeDelta(prev, curr counters.Snapshot) Delta {
	var d Delta
	d.Sent, d.SentReset = ClampDelta(prev.BytesSent, curr.BytesSent)
	d.Received, d.ReceivedReset = ClampDelta(prev.BytesReceived, curr.BytesReceived)
	return d
}

// Tick advances the sampler by one period. It is pure: the caller owns state and
// replaces it with the returned value. Rates divide by the nominal period, not the
// measured elapsed time.
func Tick(state SamplerState, current counters.Snapshot, unit Unit) (SpeedSample, Delta, SamplerState) {
	delta := ComputeDelta(state.Previous, current)

	var upRate, downRate float64
	if seconds := state.Period.Seconds(); seconds > 0 {
		upRate = float64(delta.Sent) / seconds
		downRate = float64(delta.Received) / seconds
	}

	sample := SpeedSample{
		UploadBytesPerSec:   upRate,
		DownloadBytesPerSec: downRate,
	}.In(unit)

	next := SamplerState{Previous: current, Period: state.Period}
	return sample, delta, next
}
