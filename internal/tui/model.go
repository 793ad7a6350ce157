// Package tui renders the overlay in a terminal with bubbletea.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/shini4i/moninet/internal/display"
	"github.com/shini4i/moninet/internal/stats"
)

type readingMsg stats.Reading

type commandDoneMsg struct {
	action string
	err    error
}

// Feed hands readings from the collector goroutine to the program. Only the
// newest reading is kept, so a slow terminal never stalls the sampler.
type Feed struct {
	ch chan stats.Reading
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{ch: make(chan stats.Reading, 1)}
}

// Publish offers a reading, replacing one that has not been consumed yet.
// Register it with Collector.OnReading.
func (f *Feed) Publish(r stats.Reading) {
	for {
		select {
		case f.ch <- r:
			return
		default:
		}
		select {
		case <-f.ch:
		default:
		}
	}
}

func (f *Feed) wait() tea.Cmd {
	return func() tea.Msg {
		return readingMsg(<-f.ch)
	}
}

// Model is the bubbletea model of the terminal overlay.
type Model struct {
	ctrl    *display.Controller
	feed    *Feed
	reading stats.Reading
	keys    keyMap
	help    help.Model
	status  string
}

// New creates the model. The first frame shows the controller's latest reading.
func New(ctrl *display.Controller, feed *Feed) Model {
	return Model{
		ctrl:    ctrl,
		feed:    feed,
		reading: ctrl.Latest(),
		keys:    defaultKeyMap(),
		help:    help.New(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.feed.wait()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case readingMsg:
		m.reading = stats.Reading(msg)
		if m.reading.PersistFailed {
			m.status = "usage record could not be saved"
		}
		return m, m.feed.wait()

	case commandDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s failed: %v", msg.action, msg.err)
		} else {
			m.status = ""
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Totals):
			m.ctrl.ToggleTotalUsage()
		case key.Matches(msg, m.keys.Speed):
			m.ctrl.ToggleSpeed()
		case key.Matches(msg, m.keys.Unit):
			return m, m.run("unit toggle", func() error {
				_, err := m.ctrl.ToggleUnit()
				return err
			})
		case key.Matches(msg, m.keys.Reset):
			return m, m.run("reset", func() error {
				_, err := m.ctrl.Reset()
				return err
			})
		}
	}
	return m, nil
}

// run executes a sampler command off the update loop.
func (m Model) run(action string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return commandDoneMsg{action: action, err: fn()}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	lines := m.ctrl.Lines(m.reading)

	var b strings.Builder
	if len(lines) == 0 {
		b.WriteString(MutedStyle.Render("(speed and usage hidden)"))
	}
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		if strings.HasPrefix(line, "↑") {
			b.WriteString(UploadStyle.Render(line))
		} else {
			b.WriteString(DownloadStyle.Render(line))
		}
	}

	parts := []string{FrameStyle.Render(b.String())}
	if m.status != "" {
		parts = append(parts, StatusStyle.Render(m.status))
	}
	parts = append(parts, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Run starts the terminal overlay and blocks until the user quits or ctx ends.
func Run(ctx context.Context, ctrl *display.Controller, feed *Feed) error {
	p := tea.NewProgram(New(ctrl, feed), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("terminal overlay: %w", err)
	}
	return nil
}
