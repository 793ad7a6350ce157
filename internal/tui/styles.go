package tui

import "github.com/charmbracelet/lipgloss"

var (
	UploadStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")).
			Bold(true)

	DownloadStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("160")).
			Bold(true)

	FrameStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)
