package ui

import (
	"log/slog"
	"sync/atomic"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
)

// NotificationType identifies the type of notification to display.
type NotificationType int

const (
	// NotifyAlreadyRunning tells the user a second launch found this instance.
	NotifyAlreadyRunning NotificationType = iota
	// NotifyUsageReset confirms the totals were zeroed.
	NotifyUsageReset
	// NotifyPersistFailed reports that the usage record could not be written.
	NotifyPersistFailed
)

type notification struct {
	id    string
	title string
	body  string
	icon  string
}

// message builds the notification text. detail is the usage file path for
// NotifyPersistFailed and ignored otherwise.
func message(notifyType NotificationType, detail string) (notification, bool) {
	switch notifyType {
	case NotifyAlreadyRunning:
		return notification{
			id:    "instance",
			title: "MoniNet",
			body:  "Another instance is already running.",
			icon:  "network-transmit-receive-symbolic",
		}, true
	case NotifyUsageReset:
		return notification{
			id:    "usage",
			title: "Data Usage Reset",
			body:  "Total upload and download were set to zero.",
			icon:  "edit-clear-symbolic",
		}, true
	case NotifyPersistFailed:
		return notification{
			id:    "usage",
			title: "Data Usage Not Saved",
			body:  "Could not write " + detail + ". Totals are kept in memory.",
			icon:  "dialog-warning-symbolic",
		}, true
	default:
		return notification{}, false
	}
}

// Notifier sends desktop notifications.
// All methods are safe for concurrent access.
type Notifier struct {
	app     *adw.Application
	enabled atomic.Bool
}

// NewNotifier creates a new notification manager.
// The app parameter should be a GTK Application that supports sending notifications.
func NewNotifier(app *adw.Application) *Notifier {
	n := &Notifier{
		app: app,
	}
	n.enabled.Store(true)
	return n
}

// SetEnabled enables or disables notifications.
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled.Store(enabled)
}

// IsEnabled returns whether notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	return n.enabled.Load()
}

// Notify sends a desktop notification.
// This method is safe to call from any goroutine - GTK operations are
// dispatched to the main thread via glib.IdleAdd().
func (n *Notifier) Notify(notifyType NotificationType, detail string) {
	if !n.enabled.Load() || n.app == nil {
		return
	}

	msg, ok := message(notifyType, detail)
	if !ok {
		return
	}

	glib.IdleAdd(func() {
		notif := gio.NewNotification(msg.title)
		notif.SetBody(msg.body)
		notif.SetIcon(gio.NewThemedIcon(msg.icon))

		// Notifications with the same id replace each other.
		n.app.SendNotification(msg.id, notif)

		slog.Debug("Notification sent", "title", msg.title, "body", msg.body)
	})
}
