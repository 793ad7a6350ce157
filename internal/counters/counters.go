// Package counters reads cumulative network byte counters from the operating system.
package counters

import (
	"context"
	"errors"
	"fmt"

	psnet "github.com/shirou/gopsutil/v4/net"
)

// ErrNoCounters is returned when the OS reports no counters at all.
var ErrNoCounters = errors.New("no network counters reported")

// Snapshot holds cumulative counters for all selected interfaces, read at one instant.
type Snapshot struct {
	// BytesSent is the cumulative number of bytes transmitted.
	BytesSent uint64
	// BytesReceived is the cumulative number of bytes received.
	BytesReceived uint64
}

// Source provides the current cumulative counters.
// Implementations must be cheap enough to call on every sampler tick.
type Source interface {
	Read(ctx context.Context) (Snapshot, error)
}

// SystemSource reads the combined counters of every interface via gopsutil.
type SystemSource struct {
	ioCounters func(ctx context.Context, pernic bool) ([]psnet.IOCountersStat, error)
}

// Compile-time check that SystemSource implements Source.
var _ Source = (*SystemSource)(nil)

// NewSystemSource creates a source for the OS-wide combined counters.
func NewSystemSource() *SystemSource {
	return &SystemSource{ioCounters: psnet.IOCountersWithContext}
}

// Read returns the combined counters of all interfaces.
func (s *SystemSource) Read(ctx context.Context) (Snapshot, error) {
	stats, err := s.ioCounters(ctx, false)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read io counters: %w", err)
	}
	if len(stats) == 0 {
		return Snapshot{}, ErrNoCounters
	}

	// With pernic=false gopsutil returns a single "all" entry, but sum anyway
	// in case a platform hands back per-interface rows.
	var snap Snapshot
	for _, st := range stats {
		snap.BytesSent += st.BytesSent
		snap.BytesReceived += st.BytesRecv
	}
	return snap, nil
}

// NewSource picks the source for the given interface list.
// An empty list selects the OS-wide combined counters.
func NewSource(interfaces []string) (Source, error) {
	if len(interfaces) == 0 {
		return NewSystemSource(), nil
	}
	names, err := ResolveInterfaces(interfaces)
	if err != nil {
		return nil, err
	}
	return NewSysfsSource(DefaultSysfsRoot, names), nil
}
