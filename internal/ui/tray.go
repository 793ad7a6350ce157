// Package ui provides the GTK4/libadwaita shell for moninet: the borderless
// speed overlay, its context menu, the system tray icon and notifications.
package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"fyne.io/systray"

	"github.com/shini4i/moninet/internal/stats"
)

var (
	// ErrTrayAlreadyRunning is returned when attempting to modify callbacks after Run() has been called.
	ErrTrayAlreadyRunning = errors.New("cannot modify callbacks after TrayIcon.Run() is called")
	// ErrTrayRunTwice is returned when Run() is called more than once.
	ErrTrayRunTwice = errors.New("TrayIcon.Run() called twice")
	// ErrTrayMissingCallbacks is returned when Run() is called without all required callbacks set.
	ErrTrayMissingCallbacks = errors.New("all tray actions must have a callback before calling Run()")
	// ErrTrayUnknownAction is returned when a callback is registered for an action the tray has no item for.
	ErrTrayUnknownAction = errors.New("action has no tray menu item")
)

// trayActions lists the clickable tray items in menu order.
var trayActions = []menuEntry{
	{"Toggle Total Usage", ActionToggleTotalUsage},
	{"Toggle Speed Display", ActionToggleSpeed},
	{"Toggle Speed Unit", ActionToggleUnit},
	{"Reset Data Usage", ActionResetUsage},
	{"Show", ActionShow},
	{"Exit", ActionQuit},
}

func isTrayAction(action Action) bool {
	for _, e := range trayActions {
		if e.Action == action {
			return true
		}
	}
	return false
}

// TrayIcon manages the system tray icon and menu.
type TrayIcon struct {
	mu sync.RWMutex

	// Last rendered texts
	speedText   string
	usageText   string
	tooltipText string

	// Menu items
	menuSpeed *systray.MenuItem
	menuUsage *systray.MenuItem
	items     map[Action]*systray.MenuItem

	// Callbacks - must be set before Run() is called
	callbacks map[Action]func()

	// Icon (set once in NewTrayIcon, read-only after initialization)
	icon []byte

	// Done channel to signal goroutine termination
	done chan struct{}

	// Lifecycle flags
	running   bool
	closeOnce sync.Once
}

// NewTrayIcon creates a new system tray icon manager.
func NewTrayIcon() *TrayIcon {
	speed, usage, tooltip := trayTexts(stats.Reading{Speed: stats.SpeedSample{Unit: stats.UnitMegabytes}})
	return &TrayIcon{
		speedText:   speed,
		usageText:   usage,
		tooltipText: tooltip,
		callbacks:   make(map[Action]func()),
		icon:        iconPNG,
		done:        make(chan struct{}),
	}
}

// On registers the callback run when the tray item for action is clicked.
// Must be called before Run(). Returns ErrTrayAlreadyRunning if called after Run().
func (t *TrayIcon) On(action Action, callback func()) error {
	if !isTrayAction(action) {
		return fmt.Errorf("%w: %s", ErrTrayUnknownAction, action)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return ErrTrayAlreadyRunning
	}
	t.callbacks[action] = callback
	return nil
}

// SetReading updates the speed and usage items and the tooltip.
func (t *TrayIcon) SetReading(r stats.Reading) {
	speed, usage, tooltip := trayTexts(r)

	t.mu.Lock()
	t.speedText = speed
	t.usageText = usage
	t.tooltipText = tooltip
	menuSpeed, menuUsage := t.menuSpeed, t.menuUsage
	t.mu.Unlock()

	if menuSpeed == nil {
		return // Not initialized yet
	}
	menuSpeed.SetTitle(speed)
	menuUsage.SetTitle(usage)
	systray.SetTooltip(tooltip)
}

// trayTexts renders a reading for the tray: a speed line, a usage line and the tooltip.
func trayTexts(r stats.Reading) (speed, usage, tooltip string) {
	speed = fmt.Sprintf("↑ %s  ↓ %s",
		stats.FormatSpeed(r.Speed.Upload, r.Speed.Unit),
		stats.FormatSpeed(r.Speed.Download, r.Speed.Unit))
	usage = fmt.Sprintf("Total ↑ %s  ↓ %s",
		stats.FormatSize(r.Totals.Uploaded),
		stats.FormatSize(r.Totals.Downloaded))
	tooltip = "MoniNet - " + speed
	if r.PersistFailed {
		tooltip += " (usage not saved)"
	}
	return speed, usage, tooltip
}

// Run starts the system tray icon. This should be called in a goroutine
// as it blocks until the tray is closed. Every tray action must have a
// callback registered with On before calling Run().
// Returns ErrTrayMissingCallbacks if any callback is not set.
// Returns ErrTrayRunTwice if called more than once.
func (t *TrayIcon) Run() error {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return ErrTrayRunTwice
	}

	if err := t.validateCallbacks(); err != nil {
		t.mu.Unlock()
		return err
	}

	t.running = true
	t.mu.Unlock()

	systray.Run(t.onReady, t.onExit)
	return nil
}

// validateCallbacks must be called with t.mu held.
func (t *TrayIcon) validateCallbacks() error {
	for _, e := range trayActions {
		if t.callbacks[e.Action] == nil {
			return fmt.Errorf("%w: missing %s", ErrTrayMissingCallbacks, e.Action)
		}
	}
	return nil
}

// Quit closes the system tray icon and terminates the click handler goroutines.
// Safe to call multiple times.
func (t *TrayIcon) Quit() {
	t.closeOnce.Do(func() {
		close(t.done)
		systray.Quit()
	})
}

// onReady is called when the tray is ready to be configured.
func (t *TrayIcon) onReady() {
	t.mu.Lock()
	defer t.mu.Unlock()

	systray.SetIcon(t.icon)
	systray.SetTitle("MoniNet")
	systray.SetTooltip(t.tooltipText)

	t.menuSpeed = systray.AddMenuItem(t.speedText, "Current network speed")
	t.menuSpeed.Disable()
	t.menuUsage = systray.AddMenuItem(t.usageText, "Total data usage")
	t.menuUsage.Disable()

	systray.AddSeparator()

	t.items = make(map[Action]*systray.MenuItem, len(trayActions))
	for i, e := range trayActions {
		// Show and Exit sit in their own group.
		if e.Action == ActionShow && i > 0 {
			systray.AddSeparator()
		}
		item := systray.AddMenuItem(e.Label, e.Label)
		t.items[e.Action] = item
		go t.handleClicks(e.Action, item, t.callbacks[e.Action])
	}

	slog.Info("System tray initialized")
}

// onExit is called when the tray is being closed.
func (t *TrayIcon) onExit() {
	slog.Info("System tray closed")
}

// handleClicks runs callback for every click on item until the tray quits.
func (t *TrayIcon) handleClicks(action Action, item *systray.MenuItem, callback func()) {
	for {
		select {
		case <-t.done:
			return
		case _, ok := <-item.ClickedCh:
			if !ok {
				return
			}
			slog.Debug("Tray item clicked", "action", action)
			callback()
		}
	}
}
