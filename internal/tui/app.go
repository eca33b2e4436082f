package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/screwctl/internal/session"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenPanel Screen = "panel"
	ScreenPorts Screen = "ports"
)

// AppModel is the top-level model that switches between the control panel
// and the port picker.
type AppModel struct {
	CurrentScreen Screen

	Panel PanelModel
	Ports PortsModel

	feed   *Feed
	width  int
	height int
}

// Options configures the application
type Options struct {
	// Feed delivers link callbacks; nil when the session has no link
	Feed *Feed

	// Lister overrides serial port enumeration
	Lister PortLister
}

// NewAppModel creates the application for s
func NewAppModel(ctx context.Context, s *session.Session, opts Options) AppModel {
	return AppModel{
		CurrentScreen: ScreenPanel,
		Panel:         NewPanelModel(ctx, s),
		Ports:         NewPortsModel(opts.Lister, s.Settings().Serial.Port),
		feed:          opts.Feed,
	}
}

// Init starts listening to the device link
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.feed.waitForStatus(), m.feed.waitForText())
}

// Update handles messages and screen transitions
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.Panel.SetSize(msg.Width, msg.Height)
		m.Ports.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case linkStatusMsg:
		m.Panel, cmd = m.Panel.Update(msg)
		return m, tea.Batch(cmd, m.feed.waitForStatus())

	case receivedMsg:
		m.Panel, cmd = m.Panel.Update(msg)
		return m, tea.Batch(cmd, m.feed.waitForText())

	case openPortsMsg:
		m.CurrentScreen = ScreenPorts
		return m, m.Ports.Scan()

	case portChosenMsg:
		m.CurrentScreen = ScreenPanel
		m.Panel.Connect(msg.port)
		return m, nil

	case portsClosedMsg:
		m.CurrentScreen = ScreenPanel
		return m, nil
	}

	switch m.CurrentScreen {
	case ScreenPorts:
		m.Ports, cmd = m.Ports.Update(msg)
	default:
		m.Panel, cmd = m.Panel.Update(msg)
	}
	return m, cmd
}

// View renders the current screen inside the application frame
func (m AppModel) View() string {
	if m.CurrentScreen == ScreenPorts {
		return RenderApplicationContainer(m.Ports.View(), m.Panel.Badge(), m.Ports.HelpView(), m.width, m.height)
	}
	return RenderApplicationContainer(m.Panel.View(), m.Panel.Badge(), m.Panel.HelpView(), m.width, m.height)
}

// Run starts the interactive control panel and blocks until the operator
// quits.
func Run(ctx context.Context, s *session.Session, opts Options) error {
	p := tea.NewProgram(NewAppModel(ctx, s, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
