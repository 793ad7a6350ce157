package ui

// Action names one user command. The same names back the overlay context menu,
// the tray menu and the GTK application actions ("app.<name>").
type Action string

const (
	ActionToggleTotalUsage Action = "toggle-total-usage"
	ActionToggleSpeed      Action = "toggle-speed"
	ActionToggleUnit       Action = "toggle-unit"
	ActionResetUsage       Action = "reset-usage"
	ActionHide             Action = "hide"
	ActionShow             Action = "show"
	ActionPreferences      Action = "preferences"
	ActionAbout            Action = "about"
	ActionQuit             Action = "quit"
)

// Detailed returns the action name as used in a menu model.
func (a Action) Detailed() string {
	return "app." + string(a)
}

// menuSection is a group of entries drawn between separators.
type menuSection []menuEntry

type menuEntry struct {
	Label  string
	Action Action
}

// contextMenu lists the right-click menu of the overlay.
func contextMenu() []menuSection {
	return []menuSection{
		{
			{"Toggle Total Usage", ActionToggleTotalUsage},
			{"Toggle Speed Display", ActionToggleSpeed},
			{"Toggle Speed Unit (MB/s / Mbps)", ActionToggleUnit},
			{"Reset Data Usage", ActionResetUsage},
		},
		{
			{"Hide", ActionHide},
		},
		{
			{"Preferences", ActionPreferences},
			{"About MoniNet", ActionAbout},
			{"Exit", ActionQuit},
		},
	}
}

// allActions returns every action exactly once.
func allActions() []Action {
	return []Action{
		ActionToggleTotalUsage,
		ActionToggleSpeed,
		ActionToggleUnit,
		ActionResetUsage,
		ActionHide,
		ActionShow,
		ActionPreferences,
		ActionAbout,
		ActionQuit,
	}
}
