package ui

import (
	"log/slog"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/shini4i/moninet/internal/stats"
)

const (
	cssClassUpload   = "moninet-upload"
	cssClassDownload = "moninet-download"
	cssClassHint     = "moninet-hint"

	hiddenHint = "(speed and usage hidden)"
)

// overlayCSS styles the labels: bold 8pt, green upload and red download.
const overlayCSS = `
.moninet-overlay { padding: 2px 6px; }
.moninet-upload { color: #2ea043; font-weight: bold; font-size: 8pt; }
.moninet-download { color: #da3633; font-weight: bold; font-size: 8pt; }
.moninet-hint { font-size: 8pt; opacity: 0.6; }
`

// overlayRow is one visible label of the overlay.
type overlayRow struct {
	Text  string
	Class string
}

// overlayRows renders a reading into the label rows the view enables.
// Lines come in upload/download pairs.
func overlayRows(view stats.View, r stats.Reading) []overlayRow {
	lines := view.Lines(r)
	rows := make([]overlayRow, len(lines))
	for i, line := range lines {
		class := cssClassUpload
		if i%2 == 1 {
			class = cssClassDownload
		}
		rows[i] = overlayRow{Text: line, Class: class}
	}
	return rows
}

// Overlay is the borderless always-small window showing speed and usage.
// All methods must be called on the GTK main thread.
type Overlay struct {
	window *adw.ApplicationWindow
	box    *gtk.Box
	labels [4]*gtk.Label
	hint   *gtk.Label
	menu   *gtk.PopoverMenu
}

// NewOverlay creates the overlay window. It is not shown until Present.
func NewOverlay(app *adw.Application) *Overlay {
	o := &Overlay{}
	o.setupWindow(app)
	o.setupContextMenu()
	return o
}

// setupWindow creates the undecorated window and its labels.
func (o *Overlay) setupWindow(app *adw.Application) {
	loadOverlayCSS()

	o.window = adw.NewApplicationWindow(&app.Application)
	o.window.SetTitle("MoniNet")
	o.window.SetDecorated(false)
	o.window.SetResizable(false)

	// Closing the overlay (e.g. Alt+F4) hides it; the tray can bring it back.
	o.window.ConnectCloseRequest(func() bool {
		glib.IdleAdd(func() {
			o.window.SetVisible(false)
		})
		return true
	})

	o.box = gtk.NewBox(gtk.OrientationVertical, 0)
	o.box.AddCSSClass("moninet-overlay")

	for i := range o.labels {
		label := gtk.NewLabel("")
		label.SetXAlign(0)
		label.SetVisible(false)
		o.labels[i] = label
		o.box.Append(label)
	}

	o.hint = gtk.NewLabel(hiddenHint)
	o.hint.AddCSSClass(cssClassHint)
	o.hint.SetVisible(false)
	o.box.Append(o.hint)

	// The handle lets the user drag the undecorated window around.
	handle := gtk.NewWindowHandle()
	handle.SetChild(o.box)
	o.window.SetContent(handle)
}

// setupContextMenu attaches the right-click menu to the label box.
func (o *Overlay) setupContextMenu() {
	model := gio.NewMenu()
	for _, section := range contextMenu() {
		part := gio.NewMenu()
		for _, entry := range section {
			part.Append(entry.Label, entry.Action.Detailed())
		}
		model.AppendSection("", part)
	}

	o.menu = gtk.NewPopoverMenuFromModel(model)
	o.menu.SetParent(o.box)
	o.menu.SetHasArrow(false)

	gesture := gtk.NewGestureClick()
	gesture.SetButton(gdk.BUTTON_SECONDARY)
	gesture.ConnectPressed(func(nPress int, x, y float64) {
		o.menu.Popup()
	})
	o.box.AddController(gesture)
}

// loadOverlayCSS installs the label styles for the default display.
func loadOverlayCSS() {
	display := gdk.DisplayGetDefault()
	if display == nil {
		slog.Warn("No default display, overlay styles not loaded")
		return
	}
	provider := gtk.NewCSSProvider()
	provider.LoadFromData(overlayCSS)
	gtk.StyleContextAddProviderForDisplay(display, provider, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)
}

// Render shows the rows the view enables for the reading.
func (o *Overlay) Render(view stats.View, r stats.Reading) {
	rows := overlayRows(view, r)
	for i, label := range o.labels {
		if i >= len(rows) {
			label.SetVisible(false)
			continue
		}
		label.SetLabel(rows[i].Text)
		label.RemoveCSSClass(cssClassUpload)
		label.RemoveCSSClass(cssClassDownload)
		label.AddCSSClass(rows[i].Class)
		label.SetVisible(true)
	}
	o.hint.SetVisible(len(rows) == 0)
}

// Present shows the overlay and raises it.
func (o *Overlay) Present() {
	o.window.Present()
}

// Hide hides the overlay. The application keeps running in the tray.
func (o *Overlay) Hide() {
	o.window.SetVisible(false)
}

// IsVisible reports whether the overlay is shown.
func (o *Overlay) IsVisible() bool {
	return o.window.IsVisible()
}

// Window returns the underlying window, used as a dialog parent.
func (o *Overlay) Window() *adw.ApplicationWindow {
	return o.window
}
