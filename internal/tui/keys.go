package tui

import "github.com/charmbracelet/bubbles/key"

// panelKeyMap defines keybindings for the control panel
type panelKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Focus   key.Binding
	Dec     key.Binding
	Inc     key.Binding
	DecFast key.Binding
	IncFast key.Binding
	Value   key.Binding
	Buttons key.Binding
	Lock    key.Binding
	Connect key.Binding
	Ports   key.Binding
	Add     key.Binding
	Delete  key.Binding
	Rename  key.Binding
	Import  key.Binding
	Export  key.Binding
	Copy    key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// ShortHelp returns the footer bindings
func (k panelKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Lock, k.Connect, k.Help, k.Quit}
}

// FullHelp returns every binding grouped by column
func (k panelKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Lock, k.Help, k.Quit},
		{k.Focus, k.Dec, k.Inc, k.DecFast, k.IncFast, k.Value, k.Buttons},
		{k.Connect, k.Ports},
		{k.Add, k.Delete, k.Rename, k.Import, k.Export, k.Copy},
	}
}

var panelKeys = panelKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "previous screw"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "next screw"),
	),
	Focus: key.NewBinding(
		key.WithKeys("tab", "shift+tab"),
		key.WithHelp("tab", "torque/speed"),
	),
	Dec: key.NewBinding(
		key.WithKeys("left", "-"),
		key.WithHelp("←/-", "step down"),
	),
	Inc: key.NewBinding(
		key.WithKeys("right", "+", "="),
		key.WithHelp("→/+", "step up"),
	),
	DecFast: key.NewBinding(
		key.WithKeys("pgdown", "shift+left"),
		key.WithHelp("pgdn", "10 steps down"),
	),
	IncFast: key.NewBinding(
		key.WithKeys("pgup", "shift+right"),
		key.WithHelp("pgup", "10 steps up"),
	),
	Value: key.NewBinding(
		key.WithKeys("enter", "v"),
		key.WithHelp("enter", "type value"),
	),
	Buttons: key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
		key.WithHelp("1-9", "value buttons"),
	),
	Lock: key.NewBinding(
		key.WithKeys("l", " "),
		key.WithHelp("l", "lock/unlock"),
	),
	Connect: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "connect/disconnect"),
	),
	Ports: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "choose port"),
	),
	Add: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add screw"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d", "delete"),
		key.WithHelp("d", "delete screw"),
	),
	Rename: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "rename"),
	),
	Import: key.NewBinding(
		key.WithKeys("i"),
		key.WithHelp("i", "import file"),
	),
	Export: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "export file"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy as csv"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// portsKeyMap defines keybindings for the port picker
type portsKeyMap struct {
	Select key.Binding
	Rescan key.Binding
	Manual key.Binding
	Back   key.Binding
}

func (k portsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Rescan, k.Manual, k.Back}
}

func (k portsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var portsKeys = portsKeyMap{
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "use port"),
	),
	Rescan: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "rescan"),
	),
	Manual: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "enter manually"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
}
