package ui

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/shini4i/moninet/internal/config"
	"github.com/shini4i/moninet/internal/display"
	"github.com/shini4i/moninet/internal/stats"
)

const (
	// AppID is the application identifier following reverse DNS notation.
	AppID = "com.github.shini4i.moninet"
)

// Version is the application version, set at build time via ldflags.
var Version = "dev"

// App represents the GTK shell.
// It manages the GTK application lifecycle and wires the overlay, tray and
// notifications to the display controller.
type App struct {
	app     *adw.Application
	overlay *Overlay
	tray    *TrayIcon

	// Services
	configManager *config.Manager
	controller    *display.Controller

	// Notification manager
	notifier *Notifier

	// Raised when a tick fails to persist, cleared by the next good one.
	persistFailed atomic.Bool

	// Readings that arrive before activation are rendered on activate.
	mu      sync.Mutex
	pending *stats.Reading
}

// AppDeps holds the services the GTK shell needs.
type AppDeps struct {
	Config     *config.Manager
	Controller *display.Controller
}

// NewApp creates a new application instance.
func NewApp(deps *AppDeps) *App {
	// Single-instance is enforced by the control socket, not by GApplication.
	gtkApp := adw.NewApplication(AppID, gio.ApplicationNonUnique)

	a := &App{
		app:           gtkApp,
		tray:          NewTrayIcon(),
		configManager: deps.Config,
		controller:    deps.Controller,
		notifier:      NewNotifier(gtkApp),
	}
	a.notifier.SetEnabled(deps.Config.GetConfig().ShowNotifications)

	deps.Controller.OnViewChange(func(stats.View) {
		glib.IdleAdd(func() {
			a.render(a.controller.Latest())
		})
	})
	return a
}

// Run starts the GTK application and blocks until it exits.
// Returns the exit code from the GTK application.
func (a *App) Run(args []string) int {
	a.app.ConnectActivate(func() {
		a.onActivate()
	})

	a.app.ConnectShutdown(func() {
		a.onShutdown()
	})

	return a.app.Run(args)
}

// onActivate creates the overlay and the tray and shows the overlay.
func (a *App) onActivate() {
	if a.overlay != nil {
		a.overlay.Present()
		return
	}

	a.registerActions()
	a.initTray()

	a.overlay = NewOverlay(a.app)

	a.mu.Lock()
	pending := a.pending
	a.pending = nil
	a.mu.Unlock()
	if pending != nil {
		a.render(*pending)
	} else {
		a.render(a.controller.Latest())
	}

	// Keep app running while the overlay is hidden (tray mode)
	a.app.Hold()
	a.overlay.Present()
}

// HandleReading is registered as a collector callback. It may be called from
// any goroutine; GTK updates are dispatched to the main thread.
func (a *App) HandleReading(r stats.Reading) {
	a.tray.SetReading(r)

	if persistFailureRaised(&a.persistFailed, r) {
		a.notifier.Notify(NotifyPersistFailed, a.configManager.UsageFile())
	}

	glib.IdleAdd(func() {
		if a.overlay == nil {
			a.mu.Lock()
			a.pending = &r
			a.mu.Unlock()
			return
		}
		a.render(r)
	})
}

// persistFailureRaised records the persist state of r and reports whether it
// just went from saved to failed. Unit changes write nothing, so a command
// reading only counts when it failed to persist (a reset).
func persistFailureRaised(flag *atomic.Bool, r stats.Reading) bool {
	switch {
	case r.Kind == stats.ReadingInitial:
		return false
	case r.Kind == stats.ReadingCommand && !r.PersistFailed:
		return false
	}
	return !flag.Swap(r.PersistFailed) && r.PersistFailed
}

// render must run on the GTK main thread.
func (a *App) render(r stats.Reading) {
	if a.overlay == nil {
		return
	}
	a.overlay.Render(a.controller.View(), r)
}

// Restore shows the overlay, typically because a second instance was launched.
// Safe to call from any goroutine.
func (a *App) Restore() {
	glib.IdleAdd(func() {
		if a.overlay != nil {
			a.overlay.Present()
		}
	})
	a.notifier.Notify(NotifyAlreadyRunning, "")
}

// registerActions registers one application action per menu command.
func (a *App) registerActions() {
	for _, action := range allActions() {
		simple := gio.NewSimpleAction(string(action), nil)
		simple.ConnectActivate(func(param *glib.Variant) {
			a.dispatch(action)
		})
		a.app.AddAction(simple)
	}

	a.registerAccelerators()
}

// registerAccelerators sets up keyboard shortcuts for common actions.
func (a *App) registerAccelerators() {
	a.app.SetAccelsForAction(ActionQuit.Detailed(), []string{"<Control>q"})
	a.app.SetAccelsForAction(ActionPreferences.Detailed(), []string{"<Control>comma"})
	a.app.SetAccelsForAction(ActionToggleUnit.Detailed(), []string{"<Control>u"})
}

// dispatch runs a menu command. It must be called on the GTK main thread.
// Commands that reach the collector run in their own goroutine so a slow
// disk never blocks the main loop.
func (a *App) dispatch(action Action) {
	slog.Debug("Action", "action", action)

	switch action {
	case ActionToggleTotalUsage:
		a.controller.ToggleTotalUsage()
	case ActionToggleSpeed:
		a.controller.ToggleSpeed()
	case ActionToggleUnit:
		go func() {
			if _, err := a.controller.ToggleUnit(); err != nil {
				slog.Error("Failed to toggle speed unit", "error", err)
			}
		}()
	case ActionResetUsage:
		go a.resetUsage()
	case ActionHide:
		if a.overlay != nil {
			a.overlay.Hide()
		}
	case ActionShow:
		if a.overlay != nil {
			a.overlay.Present()
		}
	case ActionPreferences:
		a.ShowPreferencesDialog()
	case ActionAbout:
		a.ShowAboutDialog()
	case ActionQuit:
		a.Quit()
	default:
		slog.Warn("Unknown action", "action", action)
	}
}

func (a *App) resetUsage() {
	if _, err := a.controller.Reset(); err != nil {
		slog.Error("Failed to reset data usage", "error", err)
		a.notifier.Notify(NotifyPersistFailed, a.configManager.UsageFile())
		return
	}
	a.notifier.Notify(NotifyUsageReset, "")
}

// Quit terminates the application gracefully.
func (a *App) Quit() {
	if a.app != nil {
		a.app.Quit()
	}
}

// Stop quits the application from any goroutine.
func (a *App) Stop() {
	glib.IdleAdd(a.Quit)
}

// ShowAboutDialog displays the application's about dialog.
func (a *App) ShowAboutDialog() {
	if a.overlay == nil {
		return
	}

	about := adw.NewAboutDialog()
	about.SetApplicationName("MoniNet")
	about.SetApplicationIcon("network-transmit-receive-symbolic")
	about.SetDeveloperName("shini4i")
	about.SetVersion(Version)
	about.SetWebsite("https://github.com/shini4i/moninet")
	about.SetIssueURL("https://github.com/shini4i/moninet/issues")
	about.SetLicenseType(gtk.LicenseGPL30)
	about.SetComments("Network speed and data usage overlay")

	about.Present(a.overlay.window)
}

// ShowPreferencesDialog displays the application preferences window.
func (a *App) ShowPreferencesDialog() {
	if a.overlay == nil {
		return
	}

	prefs := NewPreferencesWindow(a.overlay)

	cfg := a.configManager.GetConfig()
	prefs.SetNotificationsEnabled(cfg.ShowNotifications)
	prefs.SetUsageFile(a.configManager.UsageFile())

	prefs.OnNotificationsChanged(func(enabled bool) {
		a.notifier.SetEnabled(enabled)
		a.updateConfigField(func(cfg *config.Config) {
			cfg.ShowNotifications = enabled
		})
		slog.Info("Notifications setting changed", "enabled", enabled)
	})

	prefs.Present()
}

// updateConfigField atomically updates a single config field and persists the change.
func (a *App) updateConfigField(mutator func(cfg *config.Config)) {
	if err := a.configManager.UpdateField(mutator); err != nil {
		slog.Error("Failed to persist config change", "error", err)
	}
}

// initTray registers the tray callbacks and starts the tray.
func (a *App) initTray() {
	a.tray.SetReading(a.controller.Latest())

	// Errors are programmer errors: every callback is set before Run.
	for _, entry := range trayActions {
		action := entry.Action
		if err := a.tray.On(action, func() {
			glib.IdleAdd(func() {
				a.dispatch(action)
			})
		}); err != nil {
			slog.Error("Failed to register tray callback", "action", action, "error", err)
		}
	}

	// Start tray in background (error logged but not fatal - tray is optional)
	go func() {
		if err := a.tray.Run(); err != nil {
			slog.Error("Tray icon error", "error", err)
		}
	}()
}

// onShutdown handles application shutdown, cleaning up resources.
func (a *App) onShutdown() {
	slog.Info("Application shutting down")

	a.tray.Quit()

	slog.Info("Shutdown complete")
}
