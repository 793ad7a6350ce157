// Package display holds the presentation state shared by every shell: which
// line pairs are visible and the speed unit. Toggles are remembered in the
// config file so the overlay comes back the way it was left.
package display

import (
	"log/slog"
	"sync"

	"github.com/shini4i/moninet/internal/config"
	"github.com/shini4i/moninet/internal/stats"
	"github.com/shini4i/moninet/internal/usage"
)

// Sampler is the part of the collector a shell drives.
type Sampler interface {
	Latest() stats.Reading
	Reset() (usage.Totals, error)
	ToggleUnit() (stats.Unit, error)
}

// Controller serializes view toggles and forwards sampler commands.
// It is safe for concurrent use.
type Controller struct {
	sampler Sampler
	cfg     *config.Manager // nil disables persistence

	mu        sync.RWMutex
	view      stats.View
	listeners []func(stats.View)
}

// NewController creates a controller starting from the configured view.
func NewController(sampler Sampler, cfg *config.Manager) *Controller {
	view := config.DefaultConfig().View()
	if cfg != nil {
		view = cfg.GetConfig().View()
	}
	return &Controller{
		sampler: sampler,
		cfg:     cfg,
		view:    view,
	}
}

// OnViewChange registers a callback invoked after every view toggle.
func (c *Controller) OnViewChange(callback func(stats.View)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, callback)
}

// View returns the current view.
func (c *Controller) View() stats.View {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view
}

// Latest returns the sampler's most recent reading.
func (c *Controller) Latest() stats.Reading {
	return c.sampler.Latest()
}

// Lines renders a reading with the current view.
func (c *Controller) Lines(r stats.Reading) []string {
	return c.View().Lines(r)
}

// ToggleTotalUsage shows or hides the cumulative usage lines.
func (c *Controller) ToggleTotalUsage() stats.View {
	return c.updateView(func(v *stats.View) { v.ShowTotalUsage = !v.ShowTotalUsage })
}

// ToggleSpeed shows or hides the speed lines.
func (c *Controller) ToggleSpeed() stats.View {
	return c.updateView(func(v *stats.View) { v.ShowSpeed = !v.ShowSpeed })
}

// ToggleUnit switches the speed unit and remembers the choice.
func (c *Controller) ToggleUnit() (stats.Unit, error) {
	unit, err := c.sampler.ToggleUnit()
	if err != nil {
		return "", err
	}
	c.persist(func(cfg *config.Config) { cfg.SpeedUnit = string(unit) })
	slog.Info("Speed unit changed", "unit", unit)
	return unit, nil
}

// Reset zeroes the cumulative totals.
func (c *Controller) Reset() (usage.Totals, error) {
	return c.sampler.Reset()
}

func (c *Controller) updateView(mutate func(v *stats.View)) stats.View {
	c.mu.Lock()
	mutate(&c.view)
	view := c.view
	listeners := append([]func(stats.View){}, c.listeners...)
	c.mu.Unlock()

	c.persist(func(cfg *config.Config) {
		cfg.ShowSpeed = view.ShowSpeed
		cfg.ShowTotalUsage = view.ShowTotalUsage
	})
	slog.Debug("View changed", "show_speed", view.ShowSpeed, "show_total_usage", view.ShowTotalUsage)

	for _, l := range listeners {
		l(view)
	}
	return view
}

// persist writes a config change. A failure is logged; the in-memory toggle stays.
func (c *Controller) persist(mutator func(cfg *config.Config)) {
	if c.cfg == nil {
		return
	}
	if err := c.cfg.UpdateField(mutator); err != nil {
		slog.Error("Failed to persist config change", "error", err)
	}
}
