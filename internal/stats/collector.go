package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/shini4i/moninet/internal/counters"
	"github.com/shini4i/moninet/internal/usage"
)

// DefaultPeriod is the default interval between counter reads.
const DefaultPeriod = time.Second

var (
	// ErrCollectorRunning is returned by Start when the collector is already running.
	ErrCollectorRunning = errors.New("collector already running")
	// ErrCollectorStopped is returned by commands sent to a collector that is not running.
	ErrCollectorStopped = errors.New("collector not running")
)

// UsageStore is the persistence the collector needs for cumulative totals.
type UsageStore interface {
	Load(fallback counters.Snapshot) (usage.Totals, error)
	Save(totals usage.Totals) error
	Reset() (usage.Totals, error)
}

// Options configures a Collector.
type Options struct {
	// Period is the interval between counter reads. Zero means DefaultPeriod.
	Period time.Duration
	// Unit is the initial display unit. Empty means UnitMegabytes.
	Unit Unit
	// Clock drives the sampling timer. Nil means the wall clock.
	Clock clock.Clock
}

type commandKind int

const (
	commandReset commandKind = iota
	commandSetUnit
	commandToggleUnit
)

type command struct {
	kind  commandKind
	unit  Unit
	reply chan commandResult
}

type commandResult struct {
	reading Reading
	err     error
}

// Collector samples the counter source on a fixed period, accumulates usage
// totals and persists them after every change.
//
// All accounting state is owned by a single goroutine; commands from UI code are
// sent to it over a channel, so ticks and commands never interleave.
type Collector struct {
	source counters.Source
	store  UsageStore
	clock  clock.Clock
	period time.Duration

	// Owned by the loop goroutine once started.
	state  SamplerState
	totals usage.Totals
	unit   Unit
	speed  SpeedSample

	mu        sync.RWMutex
	latest    Reading
	callbacks []func(Reading)
	running   bool
	starting  bool // Set while Start reads the initial counters

	commands chan command
	stopChan chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewCollector creates a collector. It fails if the period is negative.
func NewCollector(source counters.Source, store UsageStore, opts Options) (*Collector, error) {
	if source == nil || store == nil {
		return nil, errors.New("collector requires a counter source and a usage store")
	}

	period := opts.Period
	if period == 0 {
		period = DefaultPeriod
	}
	if period < 0 {
		return nil, ErrInvalidPeriod
	}

	unit := opts.Unit
	if unit == "" {
		unit = UnitMegabytes
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}

	return &Collector{
		source:   source,
		store:    store,
		clock:    clk,
		period:   period,
		unit:     unit,
		commands: make(chan command),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// OnReading registers a callback invoked with every published reading.
// Callbacks run on the collector goroutine and must not block; register them before Start.
func (c *Collector) OnReading(callback func(Reading)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callbacks = append(c.callbacks, callback)
}

// Start reads the initial counters, loads the persisted totals (seeding them from
// the counters when no valid record exists) and begins sampling.
// A stopped collector cannot be started again.
func (c *Collector) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running || c.starting {
		c.mu.Unlock()
		return ErrCollectorRunning
	}
	c.starting = true
	c.mu.Unlock()

	started := false
	defer func() {
		if !started {
			c.mu.Lock()
			c.starting = false
			c.mu.Unlock()
		}
	}()

	select {
	case <-c.stopChan:
		return ErrCollectorStopped
	default:
	}

	initial, err := c.source.Read(ctx)
	if err != nil {
		return fmt.Errorf("read initial counters: %w", err)
	}

	totals, err := c.store.Load(initial)
	if err != nil {
		slog.Info("Usage record not loaded, seeding totals from current counters", "error", err)
	}

	state, err := NewSamplerState(initial, c.period)
	if err != nil {
		return err
	}

	c.state = state
	c.totals = totals
	c.speed = SpeedSample{}.In(c.unit)

	// The timer is created here rather than in the loop so a tick cannot be missed
	// between Start returning and the goroutine getting scheduled.
	timer := c.clock.Timer(c.period)

	c.mu.Lock()
	c.running = true
	c.starting = false
	c.mu.Unlock()
	started = true

	c.publish(ReadingInitial, Delta{}, false)

	go c.loop(ctx, timer)

	slog.Info("Collector started", "period", c.period, "unit", c.unit,
		"total_upload", totals.Uploaded, "total_download", totals.Downloaded)
	return nil
}

// Stop stops re-arming the timer and waits for the loop to exit.
// Every mutation is already on disk, so no final flush happens.
func (c *Collector) Stop() {
	c.mu.RLock()
	running := c.running
	c.mu.RUnlock()

	c.stopOnce.Do(func() {
		close(c.stopChan)
	})
	if running {
		<-c.done
	}
}

// IsRunning reports whether the sampling loop is active.
func (c *Collector) IsRunning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running
}

// Period returns the sampling period.
func (c *Collector) Period() time.Duration {
	return c.period
}

// Latest returns the most recently published reading.
func (c *Collector) Latest() Reading {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latest
}

// Reset zeroes the cumulative totals and persists them.
func (c *Collector) Reset() (usage.Totals, error) {
	res, err := c.send(command{kind: commandReset})
	if err != nil {
		return usage.Totals{}, err
	}
	return res.reading.Totals, res.err
}

// ToggleUnit switches between MB/s and Mbps and returns the new unit.
func (c *Collector) ToggleUnit() (Unit, error) {
	res, err := c.send(command{kind: commandToggleUnit})
	if err != nil {
		return "", err
	}
	return res.reading.Speed.Unit, nil
}

// SetUnit selects the display unit.
func (c *Collector) SetUnit(unit Unit) error {
	if unit != UnitMegabytes && unit != UnitMegabits {
		return fmt.Errorf("unknown speed unit %q", unit)
	}
	_, err := c.send(command{kind: commandSetUnit, unit: unit})
	return err
}

func (c *Collector) send(cmd command) (commandResult, error) {
	if !c.IsRunning() {
		return commandResult{}, ErrCollectorStopped
	}
	cmd.reply = make(chan commandResult, 1)
	select {
	case c.commands <- cmd:
	case <-c.done:
		return commandResult{}, ErrCollectorStopped
	case <-c.stopChan:
		return commandResult{}, ErrCollectorStopped
	}
	return <-cmd.reply, nil
}

func (c *Collector) loop(ctx context.Context, timer *clock.Timer) {
	defer func() {
		timer.Stop()
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
		close(c.done)
		slog.Info("Collector stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopChan:
			return
		case cmd := <-c.commands:
			cmd.reply <- c.handle(cmd)
		case <-timer.C:
			delta, persistFailed, ok := c.tick(ctx)
			// Re-arm only once the tick has finished so ticks never overlap.
			timer.Reset(c.period)
			if ok {
				c.publish(ReadingTick, delta, persistFailed)
			}
		}
	}
}

// tick reads the counters and advances speed and totals. It reports false when
// the counters could not be read; the previous snapshot is kept for the next try.
func (c *Collector) tick(ctx context.Context) (Delta, bool, bool) {
	current, err := c.source.Read(ctx)
	if err != nil {
		slog.Debug("Failed to read counters, skipping tick", "error", err)
		return Delta{}, false, false
	}

	speed, delta, next := Tick(c.state, current, c.unit)
	if delta.SentReset {
		slog.Warn("Sent counter went backwards", "previous", c.state.Previous.BytesSent, "current", current.BytesSent)
	}
	if delta.ReceivedReset {
		slog.Warn("Received counter went backwards", "previous", c.state.Previous.BytesReceived, "current", current.BytesReceived)
	}

	c.state = next
	c.speed = speed
	c.totals = c.totals.Add(delta.Sent, delta.Received)

	persistFailed := false
	if err := c.store.Save(c.totals); err != nil {
		slog.Warn("Failed to persist usage totals", "error", err)
		persistFailed = true
	}
	return delta, persistFailed, true
}

func (c *Collector) handle(cmd command) commandResult {
	var err error
	switch cmd.kind {
	case commandReset:
		c.totals, err = c.store.Reset()
		if err != nil {
			slog.Warn("Failed to persist usage reset", "error", err)
		}
		slog.Info("Usage totals reset")
	case commandToggleUnit:
		c.unit = c.unit.Toggle()
		c.speed = c.speed.In(c.unit)
	case commandSetUnit:
		c.unit = cmd.unit
		c.speed = c.speed.In(c.unit)
	}
	reading := c.publish(ReadingCommand, Delta{}, err != nil)
	return commandResult{reading: reading, err: err}
}

// publish stores the reading as latest and hands it to the callbacks.
func (c *Collector) publish(kind ReadingKind, delta Delta, persistFailed bool) Reading {
	reading := Reading{
		Kind:          kind,
		Speed:         c.speed,
		Totals:        c.totals,
		Delta:         delta,
		PersistFailed: persistFailed,
		Timestamp:     c.clock.Now(),
	}

	c.mu.Lock()
	c.latest = reading
	callbacks := append([]func(Reading){}, c.callbacks...)
	c.mu.Unlock()

	for _, cb := range callbacks {
		cb(reading)
	}
	return reading
}
