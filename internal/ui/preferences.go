package ui

import (
	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
)

// PreferencesWindow shows application preferences.
type PreferencesWindow struct {
	window *adw.PreferencesWindow

	// Settings widgets
	notificationsSwitch *adw.SwitchRow
	usageFileRow        *adw.ActionRow

	// Callbacks
	onNotificationsChanged func(enabled bool)

	// Track previous state to detect changes
	prevNotifications bool
}

// NewPreferencesWindow creates a new preferences window.
func NewPreferencesWindow(parent *Overlay) *PreferencesWindow {
	pw := &PreferencesWindow{}
	pw.setupWindow(parent)
	return pw
}

// setupWindow creates the preferences window UI.
func (pw *PreferencesWindow) setupWindow(parent *Overlay) {
	pw.window = adw.NewPreferencesWindow()
	pw.window.SetTitle("Preferences")
	pw.window.SetModal(true)
	pw.window.SetDefaultSize(400, 300)

	if parent != nil && parent.window != nil {
		pw.window.SetTransientFor(&parent.window.Window)
	}

	generalPage := adw.NewPreferencesPage()
	generalPage.SetTitle("General")
	generalPage.SetIconName("preferences-system-symbolic")

	behaviorGroup := adw.NewPreferencesGroup()
	behaviorGroup.SetTitle("Behavior")

	pw.notificationsSwitch = adw.NewSwitchRow()
	pw.notificationsSwitch.SetTitle("Desktop Notifications")
	pw.notificationsSwitch.SetSubtitle("Show notices for data usage resets and save failures")
	pw.notificationsSwitch.SetActive(true)
	pw.prevNotifications = true
	behaviorGroup.Add(pw.notificationsSwitch)

	storageGroup := adw.NewPreferencesGroup()
	storageGroup.SetTitle("Data Usage")

	pw.usageFileRow = adw.NewActionRow()
	pw.usageFileRow.SetTitle("Usage File")
	pw.usageFileRow.SetSubtitleSelectable(true)
	storageGroup.Add(pw.usageFileRow)

	generalPage.Add(behaviorGroup)
	generalPage.Add(storageGroup)
	pw.window.Add(generalPage)

	// Handle window close to trigger callbacks
	pw.window.ConnectCloseRequest(func() bool {
		pw.handleClose()
		return false // Allow close
	})
}

// handleClose is called when the preferences window is closed.
func (pw *PreferencesWindow) handleClose() {
	if pw.notificationsSwitch.Active() != pw.prevNotifications {
		if pw.onNotificationsChanged != nil {
			pw.onNotificationsChanged(pw.notificationsSwitch.Active())
		}
	}
}

// Present shows the preferences window.
func (pw *PreferencesWindow) Present() {
	pw.window.Present()
}

// SetNotificationsEnabled sets the notifications toggle state.
func (pw *PreferencesWindow) SetNotificationsEnabled(enabled bool) {
	pw.notificationsSwitch.SetActive(enabled)
	pw.prevNotifications = enabled
}

// SetUsageFile shows where the usage totals are stored.
func (pw *PreferencesWindow) SetUsageFile(path string) {
	pw.usageFileRow.SetSubtitle(path)
}

// OnNotificationsChanged registers a callback for notification setting changes.
func (pw *PreferencesWindow) OnNotificationsChanged(callback func(enabled bool)) {
	pw.onNotificationsChanged = callback
}
