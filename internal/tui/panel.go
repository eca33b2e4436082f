package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/muurk/screwctl/internal/command"
	"github.com/muurk/screwctl/internal/config"
	"github.com/muurk/screwctl/internal/devicelink"
	"github.com/muurk/screwctl/internal/exchange"
	"github.com/muurk/screwctl/internal/lockgate"
	"github.com/muurk/screwctl/internal/logging"
	"github.com/muurk/screwctl/internal/preset"
	"github.com/muurk/screwctl/internal/session"
	"github.com/muurk/screwctl/internal/ui"
)

// inputMode is what the line editor is collecting
type inputMode int

const (
	inputNone inputMode = iota
	inputValue
	inputRename
	inputImport
	inputExport
)

// openPortsMsg asks the app to show the port picker
type openPortsMsg struct{}

// statusLine is the last message shown to the operator. It is shared by
// pointer so that session events delivered during Update land in the model
// bubbletea keeps.
type statusLine struct {
	text  string
	isErr bool
}

func (s *statusLine) ok(text string) {
	s.text, s.isErr = text, false
}

func (s *statusLine) fail(err error) {
	s.text, s.isErr = devicelink.GetShortErrorMessage(err), true
}

// PanelModel is the main control screen: gauges, value buttons, the screw
// list and the lock.
type PanelModel struct {
	session *session.Session
	status  *statusLine
	ctx     context.Context

	focus    command.Parameter
	mode     inputMode
	input    textinput.Model
	lastRx   string
	showHelp bool
	help     help.Model

	readFile  func(string) ([]byte, error)
	writeFile func(string, []byte) error
	copyText  func(string) error

	width  int
	height int
}

// NewPanelModel creates the panel for s
func NewPanelModel(ctx context.Context, s *session.Session) PanelModel {
	if ctx == nil {
		ctx = context.Background()
	}

	input := textinput.New()
	input.CharLimit = 256
	input.Width = 40

	st := &statusLine{}
	s.Subscribe(func(e session.Event) {
		switch e.Kind {
		case session.EventNotice:
			st.ok(e.Message)
		case session.EventLink:
			if e.Err != nil {
				st.fail(e.Err)
				return
			}
			st.ok(e.Message)
		case session.EventLock:
			st.ok(e.Message)
		}
	})

	return PanelModel{
		session:   s,
		status:    st,
		ctx:       ctx,
		focus:     command.Torque,
		input:     input,
		help:      help.New(),
		readFile:  os.ReadFile,
		writeFile: func(path string, data []byte) error { return os.WriteFile(path, data, 0o644) },
		copyText:  clipboard.WriteAll,
	}
}

// SetSize records the terminal size
func (m *PanelModel) SetSize(width, height int) {
	m.width, m.height = width, height
	m.help.Width = width - 4
}

// Editing reports whether the line editor has focus
func (m PanelModel) Editing() bool {
	return m.mode != inputNone
}

// Update handles messages for the panel
func (m PanelModel) Update(msg tea.Msg) (PanelModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.mode != inputNone {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)

	case linkStatusMsg:
		m.session.LinkChanged(msg.status)
		return m, nil

	case receivedMsg:
		m.lastRx = strings.TrimSpace(msg.text)
		return m, nil
	}

	return m, nil
}

func (m PanelModel) updateKeys(msg tea.KeyMsg) (PanelModel, tea.Cmd) {
	k := panelKeys

	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit

	case key.Matches(msg, k.Help):
		m.showHelp = !m.showHelp

	case key.Matches(msg, k.Up):
		m.session.Navigate(-1)

	case key.Matches(msg, k.Down):
		m.session.Navigate(1)

	case key.Matches(msg, k.Focus):
		m.focus = otherParameter(m.focus)

	case key.Matches(msg, k.Dec):
		m.check(m.session.Step(m.focus, -1))

	case key.Matches(msg, k.Inc):
		m.check(m.session.Step(m.focus, 1))

	case key.Matches(msg, k.DecFast):
		m.check(m.session.Step(m.focus, -10))

	case key.Matches(msg, k.IncFast):
		m.check(m.session.Step(m.focus, 10))

	case key.Matches(msg, k.Buttons):
		index := int(msg.Runes[0] - '1')
		m.check(m.session.PressButton(m.focus, index))

	case key.Matches(msg, k.Value):
		if m.refuse(lockgate.ActionAdjust) {
			break
		}
		return m.startInput(inputValue, "", "")

	case key.Matches(msg, k.Lock):
		m.session.ToggleLock()

	case key.Matches(msg, k.Connect):
		return m.toggleConnection()

	case key.Matches(msg, k.Ports):
		if m.refuse(lockgate.ActionConnect) {
			break
		}
		return m, func() tea.Msg { return openPortsMsg{} }

	case key.Matches(msg, k.Add):
		if p, err := m.session.Add(); err != nil {
			m.status.fail(err)
		} else {
			m.status.ok("Added " + p.Name)
		}

	case key.Matches(msg, k.Delete):
		if m.check(m.session.Delete()) {
			m.status.ok("Screw deleted")
		}

	case key.Matches(msg, k.Rename):
		if m.refuse(lockgate.ActionRename) {
			break
		}
		p, ok := m.session.View().SelectedPreset()
		if !ok {
			m.status.ok(ui.EmptyListText)
			break
		}
		return m.startInput(inputRename, p.Name, "Screw name")

	case key.Matches(msg, k.Import):
		if m.refuse(lockgate.ActionImport) {
			break
		}
		return m.startInput(inputImport, "", exchange.Filename(exchange.XLSX))

	case key.Matches(msg, k.Export):
		if m.refuse(lockgate.ActionExport) {
			break
		}
		return m.startInput(inputExport, exchange.Filename(exchange.XLSX), "")

	case key.Matches(msg, k.Copy):
		data, _, err := m.session.Export(exchange.CSV)
		if err != nil {
			m.status.fail(err)
			break
		}
		if err := m.copyText(string(data)); err != nil {
			m.status.fail(fmt.Errorf("copy to clipboard: %w", err))
			break
		}
		m.status.ok(fmt.Sprintf("Copied %d screws to the clipboard", len(m.session.View().Presets)))
	}

	return m, nil
}

// check reports err on the status line and returns whether it was nil
func (m PanelModel) check(err error) bool {
	if err != nil {
		m.status.fail(err)
		return false
	}
	return true
}

// refuse reports a lock refusal for a without calling into the session
func (m PanelModel) refuse(a lockgate.Action) bool {
	controls := m.session.Controls()
	if controls.Permits(a) {
		return false
	}
	if controls.State == lockgate.Locked {
		m.status.fail(lockgate.ErrLocked)
	} else {
		m.status.fail(lockgate.ErrUnlocked)
	}
	return true
}

func (m PanelModel) toggleConnection() (PanelModel, tea.Cmd) {
	if m.refuse(lockgate.ActionConnect) {
		return m, nil
	}
	if m.session.View().Connected {
		m.check(m.session.Disconnect())
		return m, nil
	}
	if m.session.Settings().Serial.Port == "" {
		return m, func() tea.Msg { return openPortsMsg{} }
	}
	m.Connect("")
	return m, nil
}

// Connect opens the device link on port, or the configured port when empty.
// Refusals that never reach the link still land in the status line.
func (m PanelModel) Connect(port string) {
	if err := m.session.Connect(m.ctx, port); err != nil {
		logging.Warn("Connect failed", zap.String("port", port), zap.Error(err))
		m.status.fail(err)
	}
}

func (m PanelModel) startInput(mode inputMode, value, placeholder string) (PanelModel, tea.Cmd) {
	m.mode = mode
	if mode == inputValue {
		values := m.session.View().Values
		value = preset.FormatValue(values.Torque)
		if m.focus == command.Speed {
			value = preset.FormatValue(values.Speed)
		}
	}
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m PanelModel) endInput() PanelModel {
	m.mode = inputNone
	m.input.Blur()
	m.input.SetValue("")
	return m
}

func (m PanelModel) updateInput(msg tea.KeyMsg) (PanelModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.endInput(), nil

	case "enter":
		mode, text := m.mode, strings.TrimSpace(m.input.Value())
		m = m.endInput()
		m.submit(mode, text)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m PanelModel) submit(mode inputMode, text string) {
	switch mode {
	case inputValue:
		m.check(m.session.SetText(m.focus, text))

	case inputRename:
		m.check(m.session.Rename(text))

	case inputImport:
		if text == "" {
			return
		}
		data, err := m.readFile(text)
		if err != nil {
			m.status.fail(fmt.Errorf("read %s: %w", text, err))
			return
		}
		if _, err := m.session.Import(data, filepath.Base(text)); err != nil {
			m.status.fail(err)
		}

	case inputExport:
		if text == "" {
			return
		}
		f, ok := exchange.ForFilename(text)
		if !ok {
			f = exchange.XLSX
			text += "." + f.Extension()
		}
		data, _, err := m.session.Export(f)
		if err != nil {
			m.status.fail(err)
			return
		}
		if err := m.writeFile(text, data); err != nil {
			m.status.fail(fmt.Errorf("write %s: %w", text, err))
			return
		}
		logging.Info("Exported presets", zap.String("file", text), zap.String("format", f.Name()))
		m.status.ok("Exported to " + text)
	}
}

func otherParameter(p command.Parameter) command.Parameter {
	if p == command.Torque {
		return command.Speed
	}
	return command.Torque
}

// Badge renders the lock state for the header
func (m PanelModel) Badge() string {
	if m.session.Controls().State == lockgate.Locked {
		return LockedBadgeStyle.Render("LOCKED")
	}
	return UnlockedBadgeStyle.Render("UNLOCKED")
}

// View renders the panel body
func (m PanelModel) View() string {
	v := m.session.View()
	settings := m.session.Settings()
	width := m.width
	if width == 0 {
		width = MinTerminalWidth
	}

	sections := []string{
		m.renderLink(v),
		m.renderControl(command.Torque, v.Values.Torque, settings.Torque, v.Controls.RangeEnabled, gaugeWidth(width)),
		m.renderControl(command.Speed, v.Values.Speed, settings.Speed, v.Controls.RangeEnabled, gaugeWidth(width)),
		m.renderList(v),
	}

	if m.mode != inputNone {
		sections = append(sections, InputBoxStyle.Render(inputTitle(m.mode, m.focus)+" "+m.input.View()))
	}
	if m.status.text != "" {
		if m.status.isErr {
			sections = append(sections, RenderError(m.status.text))
		} else {
			sections = append(sections, RenderOK(m.status.text))
		}
	}
	if m.showHelp {
		sections = append(sections, m.help.FullHelpView(panelKeys.FullHelp()))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// HelpView renders the footer help
func (m PanelModel) HelpView() string {
	return m.help.ShortHelpView(panelKeys.ShortHelp())
}

func (m PanelModel) renderLink(v session.View) string {
	var line string
	if v.Connected {
		line = StatusOKStyle.Render("● Connected " + v.Port)
	} else {
		line = DisabledStyle.Render("○ Disconnected")
	}
	if m.lastRx != "" {
		line += SubtitleStyle.Render("   device: " + m.lastRx)
	}
	return line + "\n"
}

func (m PanelModel) renderControl(p command.Parameter, value float64, r config.Range, enabled bool, barWidth int) string {
	label := "  " + p.Label()
	if p == m.focus {
		label = ui.SelectedMarker + " " + p.Label()
	}
	if p == m.focus && enabled {
		label = FocusedLabelStyle.Render(label)
	} else {
		label = LabelStyle.Render(label)
	}

	gauge := ui.Gauge(label, value, r, barWidth)

	buttons := make([]string, len(r.Buttons))
	for i, b := range r.Buttons {
		text := fmt.Sprintf("%d:%s", i+1, preset.FormatValue(b))
		if enabled {
			buttons[i] = ButtonStyle.Render(text)
		} else {
			buttons[i] = ButtonStyle.Foreground(SubtleColor).Render(text)
		}
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, buttons...)

	return lipgloss.JoinVertical(lipgloss.Left, gauge, "         "+row)
}

func (m PanelModel) renderList(v session.View) string {
	var b strings.Builder
	b.WriteString(SectionTitleStyle.Render("Screws"))
	b.WriteString("\n")

	if len(v.Presets) == 0 {
		b.WriteString(DisabledStyle.Render("  " + ui.EmptyListText))
		return b.String()
	}

	nameWidth := 0
	for _, p := range v.Presets {
		nameWidth = max(nameWidth, lipgloss.Width(p.Name))
	}

	for i, p := range v.Presets {
		line := fmt.Sprintf("%-*s  %s", nameWidth, p.Name, ui.PresetLine(p))
		if i == v.Selected {
			b.WriteString(SelectedListItemStyle.Render(ui.SelectedMarker + " " + line))
		} else {
			b.WriteString(ListItemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	nav := fmt.Sprintf("%d of %d", v.Selected+1, len(v.Presets))
	if !v.CanPrev {
		nav = "  " + nav
	} else {
		nav = "↑ " + nav
	}
	if v.CanNext {
		nav += " ↓"
	}
	b.WriteString(SubtitleStyle.Render(nav))
	return b.String()
}

func inputTitle(mode inputMode, focus command.Parameter) string {
	switch mode {
	case inputValue:
		return focus.Label() + ":"
	case inputRename:
		return "Name:"
	case inputImport:
		return "Import from:"
	case inputExport:
		return "Export to:"
	default:
		return ""
	}
}

// Status returns the status line and whether it reports an error
func (m PanelModel) Status() (string, bool) {
	return m.status.text, m.status.isErr
}
