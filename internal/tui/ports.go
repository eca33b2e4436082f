package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/screwctl/internal/devicelink"
)

// Messages for the port picker
type scanStartMsg struct{}
type scanCompleteMsg struct {
	ports []string
	err   error
}

// portChosenMsg is sent when the operator picks a port
type portChosenMsg struct {
	port string
}

// portsClosedMsg is sent when the picker is dismissed without a choice
type portsClosedMsg struct{}

// PortLister returns the serial ports present on this machine
type PortLister func() ([]string, error)

type portItem struct {
	name       string
	configured bool
}

func (p portItem) FilterValue() string { return p.name }

type portDelegate struct{}

func (d portDelegate) Height() int { return 1 }
func (d portDelegate) Spacing() int { return 0 }
func (d portDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d portDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	p, ok := item.(portItem)
	if !ok {
		return
	}

	line := p.name
	if p.configured {
		line += SubtitleStyle.Render("  (configured)")
	}

	if index == m.Index() {
		fmt.Fprint(w, SelectedListItemStyle.Render("▸ "+line))
		return
	}
	fmt.Fprint(w, ListItemStyle.Render(line))
}

// PortsModel lists serial ports and lets the operator pick one or type a
// name that was not found.
type PortsModel struct {
	Scanning      bool
	PortList      list.Model
	Err           error
	ManualMode    bool
	NameInput     textinput.Model
	Spinner       spinner.Model
	ScanStartTime time.Time
	Help          help.Model

	lister     PortLister
	configured string
	width      int
	height     int
}

// NewPortsModel creates a picker. configured is the port from the settings
// file and is marked in the list.
func NewPortsModel(lister PortLister, configured string) PortsModel {
	if lister == nil {
		lister = devicelink.ListPorts
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	input := textinput.New()
	input.Placeholder = "/dev/ttyUSB0"
	input.CharLimit = 128
	input.Width = 40

	portList := list.New([]list.Item{}, portDelegate{}, 0, 0)
	portList.Title = "Serial Ports"
	portList.SetShowStatusBar(false)
	portList.SetShowHelp(false)
	portList.SetFilteringEnabled(false)
	portList.Styles.Title = SectionTitleStyle

	return PortsModel{
		PortList:   portList,
		NameInput:  input,
		Spinner:    s,
		Help:       help.New(),
		lister:     lister,
		configured: configured,
	}
}

// Scan starts a port scan
func (m PortsModel) Scan() tea.Cmd {
	lister := m.lister
	return tea.Batch(
		func() tea.Msg { return scanStartMsg{} },
		func() tea.Msg {
			ports, err := lister()
			return scanCompleteMsg{ports: ports, err: err}
		},
		m.Spinner.Tick,
	)
}

// SetSize resizes the list
func (m *PortsModel) SetSize(width, height int) {
	m.width, m.height = width, height
	m.PortList.SetWidth(width - 6)
	m.PortList.SetHeight(height - 10)
}

// Update handles messages for the picker
func (m PortsModel) Update(msg tea.Msg) (PortsModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.ManualMode {
			return m.updateManualMode(msg)
		}
		return m.updateNormalMode(msg)

	case scanStartMsg:
		m.Scanning = true
		m.ScanStartTime = time.Now()
		return m, nil

	case scanCompleteMsg:
		m.Scanning = false
		m.Err = msg.err
		items := make([]list.Item, 0, len(msg.ports))
		for _, name := range msg.ports {
			items = append(items, portItem{name: name, configured: name == m.configured})
		}
		m.PortList.SetItems(items)
		return m, nil

	case spinner.TickMsg:
		if !m.Scanning {
			return m, nil
		}
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m PortsModel) updateNormalMode(msg tea.KeyMsg) (PortsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, portsKeys.Back):
		return m, func() tea.Msg { return portsClosedMsg{} }

	case key.Matches(msg, portsKeys.Select):
		if m.Scanning {
			return m, nil
		}
		if item, ok := m.PortList.SelectedItem().(portItem); ok {
			return m, choosePort(item.name)
		}
		return m, nil

	case key.Matches(msg, portsKeys.Rescan):
		if m.Scanning {
			return m, nil
		}
		m.PortList.SetItems([]list.Item{})
		m.Err = nil
		return m, m.Scan()

	case key.Matches(msg, portsKeys.Manual):
		m.ManualMode = true
		m.NameInput.SetValue(m.configured)
		return m, m.NameInput.Focus()
	}

	var cmd tea.Cmd
	if !m.Scanning {
		m.PortList, cmd = m.PortList.Update(msg)
	}
	return m, cmd
}

func (m PortsModel) updateManualMode(msg tea.KeyMsg) (PortsModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.ManualMode = false
		m.NameInput.Blur()
		return m, nil

	case "enter":
		name := strings.TrimSpace(m.NameInput.Value())
		if name == "" {
			return m, nil
		}
		m.ManualMode = false
		m.NameInput.Blur()
		return m, choosePort(name)
	}

	var cmd tea.Cmd
	m.NameInput, cmd = m.NameInput.Update(msg)
	return m, cmd
}

func choosePort(name string) tea.Cmd {
	return func() tea.Msg { return portChosenMsg{port: name} }
}

// View renders the picker body
func (m PortsModel) View() string {
	var b strings.Builder

	switch {
	case m.ManualMode:
		b.WriteString(SectionTitleStyle.Render("Enter Port Name"))
		b.WriteString("\n\n")
		b.WriteString(InputBoxStyle.Render(m.NameInput.View()))
		b.WriteString("\n\n")
		b.WriteString(SubtitleStyle.Render("enter to connect, esc to cancel"))

	case m.Scanning:
		elapsed := time.Since(m.ScanStartTime).Truncate(100 * time.Millisecond)
		b.WriteString(fmt.Sprintf("%s Looking for serial ports... %s", m.Spinner.View(), SubtitleStyle.Render(elapsed.String())))

	case m.Err != nil:
		b.WriteString(ErrorBoxStyle.Render(devicelink.GetShortErrorMessage(m.Err)))
		if hint := devicelink.GetTroubleshootingHint(m.Err); hint != "" {
			b.WriteString("\n\n")
			b.WriteString(SubtitleStyle.Render(hint))
		}
		b.WriteString("\n\n")
		b.WriteString(SubtitleStyle.Render("Press m to enter a port name"))

	case len(m.PortList.Items()) == 0:
		b.WriteString(SectionTitleStyle.Render("No serial ports found"))
		b.WriteString("\n\n")
		b.WriteString(SubtitleStyle.Render("Plug in the screwdriver controller and press s to rescan, or m to enter a name"))

	default:
		b.WriteString(m.PortList.View())
	}

	return b.String()
}

// HelpView renders the footer help for the picker
func (m PortsModel) HelpView() string {
	return m.Help.View(portsKeys)
}
